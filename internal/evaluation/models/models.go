// Package models defines the dependency tree and scoring result shapes shared
// by the rule evaluators, the tree scorer, and the record lifecycle.
package models

// License captures what is known about a dependency's license declaration.
type License struct {
	Type           string `json:"type"`
	HasLicenseFile bool   `json:"hasLicenseFile"`
	IsPrivate      bool   `json:"isPrivate"`
}

// DependencyNode is one node of a package's dependency tree. The tree is
// produced by an external builder and is treated as immutable input.
type DependencyNode struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	License      License           `json:"license"`
	Dependencies []*DependencyNode `json:"dependencies"`
}

// NpmScores holds registry ecosystem scores. Nil fields mean the registry
// reported no value for that dimension.
type NpmScores struct {
	Quality     *float64 `json:"quality"`
	Popularity  *float64 `json:"popularity"`
	Maintenance *float64 `json:"maintenance"`
}

// PackageMeta is per-package ecosystem metadata, keyed by package name in a
// flat map supplied alongside the tree. Entries may be absent for unknown
// packages.
type PackageMeta struct {
	NpmScores *NpmScores `json:"npmScores"`
}

// LogType grades a finding's severity.
type LogType string

const (
	LogError   LogType = "ERROR"
	LogWarning LogType = "WARNING"
	LogInfo    LogType = "INFO"
)

// Log is a single human-readable finding produced by a rule evaluator.
// Findings are the product of scoring, not failures.
type Log struct {
	Message string  `json:"message"`
	Type    LogType `json:"type"`
	Meta    any     `json:"meta,omitempty"`
}

// Evaluation is the output of one rule evaluator for one tree node.
// Score is normalized to [0,1].
type Evaluation struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
	Logs        []Log   `json:"logs"`
}

// NodeEvaluation mirrors the DependencyNode shape with per-rule results.
// NodeScore is the product of the node's own evaluation scores and all child
// node scores.
type NodeEvaluation struct {
	NodeName     string            `json:"nodeName"`
	NodeVersion  string            `json:"nodeVersion"`
	Evaluations  []Evaluation      `json:"evaluations"`
	NodeScore    float64           `json:"nodeScore"`
	Dependencies []*NodeEvaluation `json:"dependencies"`
}

// Qualification is the three-valued verdict derived from the root node score.
type Qualification string

const (
	QualificationRecommended Qualification = "RECOMMENDED"
	QualificationAccepted    Qualification = "ACCEPTED"
	QualificationRejected    Qualification = "REJECTED"
)

// Qualification thresholds on the root node score.
const (
	recommendedThreshold = 0.8
	acceptedThreshold    = 0.5
)

// QualificationFor maps a root node score to its verdict. Boundaries are
// inclusive: 0.8 is RECOMMENDED and 0.5 is ACCEPTED.
func QualificationFor(score float64) Qualification {
	switch {
	case score >= recommendedThreshold:
		return QualificationRecommended
	case score >= acceptedThreshold:
		return QualificationAccepted
	default:
		return QualificationRejected
	}
}

// FinalEvaluation is the full scored tree plus the top-level verdict.
type FinalEvaluation struct {
	RootEvaluation *NodeEvaluation `json:"rootEvaluation"`
	Qualification  Qualification   `json:"qualification"`
}
