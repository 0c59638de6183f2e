// Package evaluators holds the per-node scoring rules applied by the tree
// scorer. Evaluators are pure and synchronous: one node in, one Evaluation
// out, no I/O. The set is fixed at build time; the scorer dispatches over an
// explicit ordered list rather than runtime registration.
package evaluators

import (
	"corpcheck/internal/evaluation/models"
	"corpcheck/internal/evaluation/rules"
)

// Evaluator scores a single dependency-tree node against the resolved policy.
//
// Policy violations are reported as findings inside the Evaluation, never as
// errors. A non-nil error signals a precondition failure (e.g. missing
// required metadata) that the caller must surface as a failed record.
type Evaluator interface {
	Name() string
	Evaluate(node *models.DependencyNode, meta map[string]models.PackageMeta, ruleSet rules.RuleSet, unknownPackages []string, depth int) (models.Evaluation, error)
}

// All returns the full evaluator set in its canonical order.
func All() []Evaluator {
	return []Evaluator{License{}, Version{}, NpmScores{}}
}
