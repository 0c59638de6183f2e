// Package evaluation scores dependency trees against a resolved qualification
// policy. Scoring is pure, synchronous CPU work: for fixed inputs the output
// is bit-for-bit identical, so it is safe on any number of concurrent workers
// without coordination.
package evaluation

import (
	"fmt"

	"corpcheck/internal/evaluation/evaluators"
	"corpcheck/internal/evaluation/models"
	"corpcheck/internal/evaluation/rules"
)

// Scorer applies the full evaluator set to every node of a dependency tree
// and folds child scores into their parents multiplicatively.
type Scorer struct {
	evaluators []evaluators.Evaluator
}

// NewScorer builds a scorer over the canonical evaluator set.
func NewScorer() *Scorer {
	return &Scorer{evaluators: evaluators.All()}
}

// Score walks the tree depth-first from depth 0 and returns the scored tree
// plus the top-level qualification.
//
// Each node's score is the product of its own evaluation scores and of all
// child node scores. The fold is intentionally unattenuated by depth: a
// severely rejected leaf drags down every ancestor no matter how deep it
// sits. Depth awareness lives in the individual rules, not here.
func (s *Scorer) Score(tree *models.DependencyNode, meta map[string]models.PackageMeta, ruleSet rules.RuleSet, unknownPackages []string) (*models.FinalEvaluation, error) {
	if tree == nil {
		return nil, fmt.Errorf("dependency tree is required")
	}
	root, err := s.scoreNode(tree, meta, ruleSet, unknownPackages, 0)
	if err != nil {
		return nil, err
	}
	return &models.FinalEvaluation{
		RootEvaluation: root,
		Qualification:  models.QualificationFor(root.NodeScore),
	}, nil
}

func (s *Scorer) scoreNode(node *models.DependencyNode, meta map[string]models.PackageMeta, ruleSet rules.RuleSet, unknownPackages []string, depth int) (*models.NodeEvaluation, error) {
	result := &models.NodeEvaluation{
		NodeName:     node.Name,
		NodeVersion:  node.Version,
		Evaluations:  make([]models.Evaluation, 0, len(s.evaluators)),
		Dependencies: make([]*models.NodeEvaluation, 0, len(node.Dependencies)),
	}

	score := 1.0
	for _, evaluator := range s.evaluators {
		eval, err := evaluator.Evaluate(node, meta, ruleSet, unknownPackages, depth)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s for %s@%s: %w", evaluator.Name(), node.Name, node.Version, err)
		}
		result.Evaluations = append(result.Evaluations, eval)
		score *= eval.Score
	}

	for _, child := range node.Dependencies {
		childEval, err := s.scoreNode(child, meta, ruleSet, unknownPackages, depth+1)
		if err != nil {
			return nil, err
		}
		result.Dependencies = append(result.Dependencies, childEval)
		score *= childEval.NodeScore
	}

	result.NodeScore = score
	return result, nil
}
