package evaluators

import (
	"fmt"

	"corpcheck/internal/evaluation/license"
	"corpcheck/internal/evaluation/models"
	"corpcheck/internal/evaluation/rules"
)

// License checks a node's SPDX license declaration against the policy's
// include/exclude lists.
type License struct{}

func (License) Name() string { return "license" }

func (License) Evaluate(node *models.DependencyNode, _ map[string]models.PackageMeta, ruleSet rules.RuleSet, _ []string, depth int) (models.Evaluation, error) {
	rule := ruleSet.License
	eval := models.Evaluation{
		Name:        "license",
		Description: "License policy compliance",
		Score:       1,
		Logs:        []models.Log{},
	}

	// The rule only applies down to the configured depth.
	if depth > rule.Depth {
		return eval, nil
	}

	raw := node.License.Type
	if raw == "" {
		if rule.LicenseRequired {
			eval.Score = 0
			eval.Logs = append(eval.Logs, models.Log{
				Message: "Missing license",
				Type:    models.LogError,
			})
		}
		return eval, nil
	}

	parsed, err := license.Parse(raw)
	if err != nil {
		// Malformed license strings are a data condition, not an error.
		eval.Score = 0
		eval.Logs = append(eval.Logs, models.Log{
			Message: fmt.Sprintf("Invalid license: %s", raw),
			Type:    models.LogError,
		})
		return eval, nil
	}

	if logs := license.Evaluate(parsed, rule.Include, rule.Exclude); len(logs) > 0 {
		eval.Score = 0
		eval.Logs = append(eval.Logs, logs...)
	}
	return eval, nil
}
