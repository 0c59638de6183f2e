package evaluators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corpcheck/internal/evaluation/models"
	"corpcheck/internal/evaluation/rules"
)

func licenseNode(licenseType string) *models.DependencyNode {
	return &models.DependencyNode{
		Name:    "left-pad",
		Version: "1.3.0",
		License: models.License{Type: licenseType},
	}
}

func TestLicenseEvaluate(t *testing.T) {
	t.Run("missing license without requirement passes", func(t *testing.T) {
		eval, err := License{}.Evaluate(licenseNode(""), nil, rules.Default(), nil, 0)
		require.NoError(t, err)
		assert.Equal(t, 1.0, eval.Score)
		assert.Empty(t, eval.Logs)
	})

	t.Run("missing license with requirement fails", func(t *testing.T) {
		ruleSet := rules.Default()
		ruleSet.License.LicenseRequired = true

		eval, err := License{}.Evaluate(licenseNode(""), nil, ruleSet, nil, 0)
		require.NoError(t, err)
		assert.Zero(t, eval.Score)
		require.Len(t, eval.Logs, 1)
		assert.Equal(t, "Missing license", eval.Logs[0].Message)
		assert.Equal(t, models.LogError, eval.Logs[0].Type)
	})

	t.Run("invalid SPDX expression is a finding not an error", func(t *testing.T) {
		eval, err := License{}.Evaluate(licenseNode("MIT AND"), nil, rules.Default(), nil, 0)
		require.NoError(t, err)
		assert.Zero(t, eval.Score)
		require.Len(t, eval.Logs, 1)
		assert.Equal(t, "Invalid license: MIT AND", eval.Logs[0].Message)
	})

	t.Run("excluded license scores zero case-insensitively", func(t *testing.T) {
		ruleSet := rules.Default()
		ruleSet.License.Exclude = []string{"MIT"}

		eval, err := License{}.Evaluate(licenseNode("mit"), nil, ruleSet, nil, 0)
		require.NoError(t, err)
		assert.Zero(t, eval.Score)
		require.Len(t, eval.Logs, 1)
		assert.Equal(t, "Forbidden license: mit", eval.Logs[0].Message)
		assert.Equal(t, models.LogError, eval.Logs[0].Type)
	})

	t.Run("allowed license passes", func(t *testing.T) {
		ruleSet := rules.Default()
		ruleSet.License.Include = []string{"MIT", "ISC"}

		eval, err := License{}.Evaluate(licenseNode("MIT"), nil, ruleSet, nil, 0)
		require.NoError(t, err)
		assert.Equal(t, 1.0, eval.Score)
		assert.Empty(t, eval.Logs)
	})

	t.Run("OR expression recovers through a clean branch", func(t *testing.T) {
		ruleSet := rules.Default()
		ruleSet.License.Exclude = []string{"GPL-3.0"}

		eval, err := License{}.Evaluate(licenseNode("MIT OR GPL-3.0"), nil, ruleSet, nil, 0)
		require.NoError(t, err)
		assert.Equal(t, 1.0, eval.Score)
	})

	t.Run("rule is skipped beyond the configured depth", func(t *testing.T) {
		ruleSet := rules.Default()
		ruleSet.License.Exclude = []string{"MIT"}
		ruleSet.License.Depth = 1

		eval, err := License{}.Evaluate(licenseNode("MIT"), nil, ruleSet, nil, 2)
		require.NoError(t, err)
		assert.Equal(t, 1.0, eval.Score)
		assert.Empty(t, eval.Logs)
	})
}
