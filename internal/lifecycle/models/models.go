// Package models defines the persisted record shapes owned by the result
// lifecycle: content-addressed package records with their state machine, and
// the (package, rule-set)-keyed evaluation cache entries.
package models

import (
	"time"

	"github.com/google/uuid"

	evalmodels "corpcheck/internal/evaluation/models"
)

// StateType is the package-record state machine: PENDING moves to SUCCEEDED
// or FAILED exactly once; FAILED is terminal.
type StateType string

const (
	StatePending   StateType = "PENDING"
	StateSucceeded StateType = "SUCCEEDED"
	StateFailed    StateType = "FAILED"
)

// TimeoutMessage is the fixed failure message for lazily timed-out records.
const TimeoutMessage = "timeout"

// State is the current lifecycle position of a package record.
type State struct {
	Type    StateType `json:"type"`
	Date    time.Time `json:"date"`
	Message string    `json:"message,omitempty"`
}

// PackageData is the payload the external tree builder reports back on
// completion: the dependency tree, per-package ecosystem metadata, and the
// names it could not resolve.
type PackageData struct {
	Tree            *evalmodels.DependencyNode        `json:"tree"`
	Meta            map[string]evalmodels.PackageMeta `json:"meta"`
	UnknownPackages []string                          `json:"unknownPackages"`
}

// PackageRecord is a content-addressed validation request. At most one record
// per hash carries Latest=true at any time; the lifecycle flips Latest off
// when a record is superseded.
type PackageRecord struct {
	ID           uuid.UUID      `json:"id"`
	Hash         string         `json:"hash"`
	PackageName  string         `json:"packageName"`
	IsProduction bool           `json:"isProduction"`
	Date         time.Time      `json:"date"`
	State        State          `json:"state"`
	Latest       bool           `json:"latest"`
	Data         *PackageData   `json:"data,omitempty"`
	Meta         map[string]any `json:"meta,omitempty"`
}

// EvaluationRecord caches one scored result per (package, rule-set hash)
// pair. RuleSet keeps the raw caller-supplied policy document; an empty
// RuleSetHash is the valid, distinct key for "no rule set override".
type EvaluationRecord struct {
	ID          uuid.UUID                   `json:"id"`
	PackageID   uuid.UUID                   `json:"packageInfoId"`
	Date        time.Time                   `json:"date"`
	RuleSet     string                      `json:"ruleSet,omitempty"`
	RuleSetHash string                      `json:"ruleSetHash,omitempty"`
	Result      *evalmodels.FinalEvaluation `json:"result,omitempty"`
}

// PackageIdentity is the caller-supplied input a validation request is
// content-addressed by: either a manifest tuple (packageJSON plus lock files)
// or a registry coordinate (name and version).
type PackageIdentity struct {
	PackageName  string `json:"packageName"`
	Version      string `json:"version,omitempty"`
	IsProduction bool   `json:"isProduction"`
	PackageJSON  string `json:"packageJSON,omitempty"`
	PackageLock  string `json:"packageLock,omitempty"`
	YarnLock     string `json:"yarnLock,omitempty"`
}

// FromManifest reports whether the identity carries a package manifest rather
// than a registry coordinate.
func (p PackageIdentity) FromManifest() bool {
	return p.PackageJSON != ""
}

// Task is the fire-and-forget handoff to the external tree builder.
type Task struct {
	CID          uuid.UUID `json:"cid"`
	PackageName  string    `json:"pkg"`
	Version      string    `json:"version,omitempty"`
	IsProduction bool      `json:"production"`
	PackageJSON  string    `json:"packageJSON,omitempty"`
	PackageLock  string    `json:"packageLock,omitempty"`
	YarnLock     string    `json:"yarnLock,omitempty"`
}
