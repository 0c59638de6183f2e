package license

import (
	"fmt"
	"strings"

	"corpcheck/internal/evaluation/models"
)

// Evaluate checks a parsed SPDX expression against policy lists and returns
// the findings. Both lists are matched case-insensitively. An empty result
// means the expression satisfies the policy.
//
// Conjunction semantics: an OR node is clean when either branch is clean,
// otherwise the findings of both branches are surfaced so the caller sees why
// every alternative failed. An AND node always concatenates both branches'
// findings. Malformed nodes are a data condition and produce a single ERROR
// finding, never an error.
func Evaluate(node *Node, include, exclude []string) []models.Log {
	switch {
	case node.IsLeaf():
		return evaluateLeaf(node.License, include, exclude)
	case node != nil && node.Conjunction == Or:
		left := Evaluate(node.Left, include, exclude)
		if len(left) == 0 {
			return nil
		}
		right := Evaluate(node.Right, include, exclude)
		if len(right) == 0 {
			return nil
		}
		return append(left, right...)
	case node != nil && node.Conjunction == And:
		return append(
			Evaluate(node.Left, include, exclude),
			Evaluate(node.Right, include, exclude)...,
		)
	default:
		return []models.Log{{
			Message: fmt.Sprintf("Invalid license: %s", node.String()),
			Type:    models.LogError,
		}}
	}
}

func evaluateLeaf(id string, include, exclude []string) []models.Log {
	if containsFold(exclude, id) {
		return []models.Log{forbidden(id)}
	}
	if len(include) > 0 && !containsFold(include, id) {
		return []models.Log{forbidden(id)}
	}
	return nil
}

func forbidden(id string) models.Log {
	return models.Log{
		Message: fmt.Sprintf("Forbidden license: %s", id),
		Type:    models.LogError,
	}
}

func containsFold(list []string, id string) bool {
	for _, entry := range list {
		if strings.EqualFold(entry, id) {
			return true
		}
	}
	return false
}
