package evaluators

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"corpcheck/internal/evaluation/models"
	"corpcheck/internal/evaluation/rules"
)

// Version compares a node's version against the policy minimum using semantic
// version ordering and surfaces unresolved packages.
type Version struct{}

func (Version) Name() string { return "version" }

func (Version) Evaluate(node *models.DependencyNode, _ map[string]models.PackageMeta, ruleSet rules.RuleSet, unknownPackages []string, depth int) (models.Evaluation, error) {
	rule := ruleSet.Version
	eval := models.Evaluation{
		Name:        "version",
		Description: "Version policy compliance",
		Score:       1,
		Logs:        []models.Log{},
	}

	withinRigorousDepth := depth <= rule.RigorousDepth

	// Unknown-package findings are advisory and suppressed beyond the
	// rigorous depth.
	if withinRigorousDepth {
		for _, name := range unknownPackages {
			eval.Logs = append(eval.Logs, models.Log{
				Message: fmt.Sprintf("Unknown package: %s", name),
				Type:    models.LogWarning,
			})
		}
	}

	if belowMinimum(node.Version, rule.MinVersion) {
		if rule.IsRigorous && withinRigorousDepth {
			eval.Score = 0
			eval.Logs = append(eval.Logs, models.Log{
				Message: versionMessage(node.Version, rule.MinVersion),
				Type:    models.LogError,
			})
		} else {
			eval.Score = rule.RetributionScore
			eval.Logs = append(eval.Logs, models.Log{
				Message: versionMessage(node.Version, rule.MinVersion),
				Type:    models.LogWarning,
			})
		}
	}
	return eval, nil
}

// belowMinimum reports whether version violates the policy minimum. An
// unparseable minimum disables the check; an unparseable node version counts
// as a violation (data condition).
func belowMinimum(version, minVersion string) bool {
	minimum, err := semver.NewVersion(minVersion)
	if err != nil {
		return false
	}
	parsed, err := semver.NewVersion(version)
	if err != nil {
		return true
	}
	return parsed.LessThan(minimum)
}

func versionMessage(version, minVersion string) string {
	return fmt.Sprintf("Version %s is below the required minimum %s", version, minVersion)
}
