package evaluators

import (
	"fmt"
	"math"

	"corpcheck/internal/evaluation/models"
	"corpcheck/internal/evaluation/rules"
)

// NpmScores computes a weighted average of the registry's quality, popularity
// and maintenance scores.
//
// Unlike the license and version evaluators this one has no fallback for
// absent metadata: missing npm scores for the node are a hard precondition
// failure the caller must surface.
type NpmScores struct{}

func (NpmScores) Name() string { return "npm-scores" }

func (NpmScores) Evaluate(node *models.DependencyNode, meta map[string]models.PackageMeta, ruleSet rules.RuleSet, _ []string, _ int) (models.Evaluation, error) {
	eval := models.Evaluation{
		Name:        "npm-scores",
		Description: "Registry ecosystem scores",
		Logs:        []models.Log{},
	}

	entry, ok := meta[node.Name]
	if !ok || entry.NpmScores == nil {
		return eval, fmt.Errorf("missing npm scores for package %s", node.Name)
	}

	rule := ruleSet.NpmScores
	scores := entry.NpmScores
	parts := []struct {
		label  string
		value  *float64
		weight float64
	}{
		{"Quality", scores.Quality, rule.QualityWeight},
		{"Popularity", scores.Popularity, rule.PopularityWeight},
		{"Maintenance", scores.Maintenance, rule.MaintenanceWeight},
	}

	var weightSum, weightedSum float64
	for _, part := range parts {
		weightSum += part.weight
		if part.value == nil {
			// Absent sub-scores count as 0 in the average but are
			// reported as unknown rather than a percentage.
			eval.Logs = append(eval.Logs, models.Log{
				Message: fmt.Sprintf("%s: unknown", part.label),
				Type:    models.LogWarning,
			})
			continue
		}
		value := *part.value
		weightedSum += part.weight * value
		logType := models.LogInfo
		if value < 0.5 {
			logType = models.LogWarning
		}
		eval.Logs = append(eval.Logs, models.Log{
			Message: fmt.Sprintf("%s: %d%%", part.label, int(math.Round(value*100))),
			Type:    logType,
		})
	}

	if weightSum > 0 {
		eval.Score = weightedSum / weightSum
	}
	return eval, nil
}
