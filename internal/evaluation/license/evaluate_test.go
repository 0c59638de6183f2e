package license

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corpcheck/internal/evaluation/models"
)

func mustParse(t *testing.T, raw string) *Node {
	t.Helper()
	node, err := Parse(raw)
	require.NoError(t, err)
	return node
}

func TestEvaluateLeaf(t *testing.T) {
	t.Run("no lists means every license passes", func(t *testing.T) {
		logs := Evaluate(mustParse(t, "MIT"), nil, nil)
		assert.Empty(t, logs)
	})

	t.Run("excluded license is forbidden", func(t *testing.T) {
		logs := Evaluate(mustParse(t, "MIT"), nil, []string{"MIT"})
		require.Len(t, logs, 1)
		assert.Equal(t, models.LogError, logs[0].Type)
		assert.Equal(t, "Forbidden license: MIT", logs[0].Message)
	})

	t.Run("exclusion matches case-insensitively", func(t *testing.T) {
		logs := Evaluate(mustParse(t, "mit"), nil, []string{"MIT"})
		require.Len(t, logs, 1)
		assert.Equal(t, "Forbidden license: mit", logs[0].Message)
	})

	t.Run("exclude wins over include", func(t *testing.T) {
		logs := Evaluate(mustParse(t, "MIT"), []string{"MIT"}, []string{"MIT"})
		require.Len(t, logs, 1)
	})

	t.Run("non-empty include rejects absent ids", func(t *testing.T) {
		logs := Evaluate(mustParse(t, "GPL-3.0"), []string{"MIT", "Apache-2.0"}, nil)
		require.Len(t, logs, 1)
		assert.Equal(t, "Forbidden license: GPL-3.0", logs[0].Message)
	})

	t.Run("include matches case-insensitively", func(t *testing.T) {
		logs := Evaluate(mustParse(t, "apache-2.0"), []string{"Apache-2.0"}, nil)
		assert.Empty(t, logs)
	})
}

func TestEvaluateConjunctions(t *testing.T) {
	t.Run("OR is clean when either branch is clean", func(t *testing.T) {
		logs := Evaluate(mustParse(t, "MIT OR GPL-3.0"), nil, []string{"GPL-3.0"})
		assert.Empty(t, logs)
	})

	t.Run("OR surfaces both branches when neither is clean", func(t *testing.T) {
		logs := Evaluate(mustParse(t, "MIT OR GPL-3.0"), nil, []string{"MIT", "GPL-3.0"})
		require.Len(t, logs, 2)
		assert.Equal(t, "Forbidden license: MIT", logs[0].Message)
		assert.Equal(t, "Forbidden license: GPL-3.0", logs[1].Message)
	})

	t.Run("AND concatenates both branches", func(t *testing.T) {
		logs := Evaluate(mustParse(t, "MIT AND GPL-3.0"), nil, []string{"MIT", "GPL-3.0"})
		assert.Len(t, logs, 2)
	})

	t.Run("AND fails when only one branch fails", func(t *testing.T) {
		logs := Evaluate(mustParse(t, "MIT AND GPL-3.0"), nil, []string{"GPL-3.0"})
		require.Len(t, logs, 1)
		assert.Equal(t, "Forbidden license: GPL-3.0", logs[0].Message)
	})

	t.Run("nested expression", func(t *testing.T) {
		// (MIT OR GPL-3.0) AND BSD-3-Clause: the OR side recovers via
		// MIT, the AND side fails on BSD-3-Clause.
		logs := Evaluate(mustParse(t, "(MIT OR GPL-3.0) AND BSD-3-Clause"), []string{"MIT"}, nil)
		require.Len(t, logs, 1)
		assert.Equal(t, "Forbidden license: BSD-3-Clause", logs[0].Message)
	})
}

func TestEvaluateInvalidNode(t *testing.T) {
	logs := Evaluate(&Node{}, nil, nil)
	require.Len(t, logs, 1)
	assert.Equal(t, models.LogError, logs[0].Type)
	assert.Contains(t, logs[0].Message, "Invalid license:")
}
