package httptransport

import (
	"encoding/json"

	"github.com/google/uuid"

	"corpcheck/internal/lifecycle/models"
	dErrors "corpcheck/pkg/domain-errors"
)

// ValidationRequest is the POST /validation body. Either a registry
// coordinate (packageName, optionally version) or a manifest tuple
// (packageJSON plus lock files) must be present. RuleSet is kept raw: the
// lifecycle hashes and stores the exact caller-supplied document.
type ValidationRequest struct {
	PackageName  string          `json:"packageName,omitempty"`
	Version      string          `json:"version,omitempty"`
	IsProduction bool            `json:"isProduction,omitempty"`
	PackageJSON  string          `json:"packageJSON,omitempty"`
	PackageLock  string          `json:"packageLock,omitempty"`
	YarnLock     string          `json:"yarnLock,omitempty"`
	RuleSet      json.RawMessage `json:"ruleSet,omitempty"`
	Force        bool            `json:"force,omitempty"`
}

// Validate checks the request carries a usable package identity.
func (r ValidationRequest) Validate() error {
	if r.PackageName == "" && r.PackageJSON == "" {
		return dErrors.New(dErrors.CodeBadRequest, "packageName or packageJSON is required")
	}
	return nil
}

// Identity builds the content-addressed package identity.
func (r ValidationRequest) Identity() models.PackageIdentity {
	return models.PackageIdentity{
		PackageName:  r.PackageName,
		Version:      r.Version,
		IsProduction: r.IsProduction,
		PackageJSON:  r.PackageJSON,
		PackageLock:  r.PackageLock,
		YarnLock:     r.YarnLock,
	}
}

// CompletionRequest is the POST /complete body reported by the tree builder.
type CompletionRequest struct {
	CID     uuid.UUID           `json:"cid"`
	Data    *models.PackageData `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
	Message string              `json:"message,omitempty"`
}

// WorkerError normalizes the worker's failure reporting: an explicit error
// wins, a message without data counts as one.
func (r CompletionRequest) WorkerError() string {
	if r.Error != "" {
		return r.Error
	}
	if r.Data == nil && r.Message != "" {
		return r.Message
	}
	return ""
}
