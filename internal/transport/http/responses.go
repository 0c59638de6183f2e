package httptransport

import (
	"time"

	"github.com/google/uuid"

	"corpcheck/internal/badge"
	evalmodels "corpcheck/internal/evaluation/models"
	"corpcheck/internal/lifecycle/models"
)

// ValidationResponse is the POST /validation reply: the record identity, its
// lifecycle state, and the scored result when already available.
type ValidationResponse struct {
	CID          uuid.UUID                   `json:"cid"`
	PackageName  string                      `json:"packageName,omitempty"`
	State        models.State                `json:"state"`
	EvaluationID uuid.UUID                   `json:"evaluationId"`
	Result       *evalmodels.FinalEvaluation `json:"result,omitempty"`
}

// NewValidationResponse projects the records onto the wire shape.
func NewValidationResponse(pkg *models.PackageRecord, evaluation *models.EvaluationRecord) ValidationResponse {
	return ValidationResponse{
		CID:          pkg.ID,
		PackageName:  pkg.PackageName,
		State:        pkg.State,
		EvaluationID: evaluation.ID,
		Result:       evaluation.Result,
	}
}

// EvaluationSummary is one cached evaluation of a package.
type EvaluationSummary struct {
	ID          uuid.UUID                   `json:"id"`
	Date        time.Time                   `json:"date"`
	RuleSetHash string                      `json:"ruleSetHash,omitempty"`
	Result      *evalmodels.FinalEvaluation `json:"result,omitempty"`
}

// PackageResponse is the GET /validation/{cid} reply.
type PackageResponse struct {
	CID          uuid.UUID           `json:"cid"`
	PackageName  string              `json:"packageName,omitempty"`
	IsProduction bool                `json:"isProduction"`
	Date         time.Time           `json:"date"`
	State        models.State        `json:"state"`
	Evaluations  []EvaluationSummary `json:"evaluations"`
}

// NewPackageResponse projects a record and its evaluations onto the wire
// shape.
func NewPackageResponse(pkg *models.PackageRecord, evaluations []*models.EvaluationRecord) PackageResponse {
	summaries := make([]EvaluationSummary, 0, len(evaluations))
	for _, rec := range evaluations {
		summaries = append(summaries, EvaluationSummary{
			ID:          rec.ID,
			Date:        rec.Date,
			RuleSetHash: rec.RuleSetHash,
			Result:      rec.Result,
		})
	}
	return PackageResponse{
		CID:          pkg.ID,
		PackageName:  pkg.PackageName,
		IsProduction: pkg.IsProduction,
		Date:         pkg.Date,
		State:        pkg.State,
		Evaluations:  summaries,
	}
}

// BadgeResponse is the GET /badge reply.
type BadgeResponse struct {
	Badge badge.State `json:"badge"`
}
