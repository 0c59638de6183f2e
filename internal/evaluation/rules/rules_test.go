package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultReturnsFreshCopies(t *testing.T) {
	first := Default()
	first.License.Include = append(first.License.Include, "MIT")
	assert.Empty(t, Default().License.Include)
}

func TestResolve(t *testing.T) {
	t.Run("nil input yields defaults", func(t *testing.T) {
		assert.Equal(t, Default(), Resolve(nil))
	})

	t.Run("blank input yields defaults", func(t *testing.T) {
		assert.Equal(t, Default(), Resolve([]byte("   \n")))
	})

	t.Run("malformed input yields defaults", func(t *testing.T) {
		assert.Equal(t, Default(), Resolve([]byte("{not json")))
	})

	t.Run("partial merge preserves untouched defaults", func(t *testing.T) {
		resolved := Resolve([]byte(`{"license": {"include": ["MIT"]}}`))

		expected := Default()
		expected.License.Include = []string{"MIT"}
		assert.Equal(t, expected, resolved)
		// Sibling rules must be untouched.
		assert.Equal(t, Default().Version, resolved.Version)
		assert.Equal(t, Default().NpmScores, resolved.NpmScores)
	})

	t.Run("arrays are replaced wholesale", func(t *testing.T) {
		resolved := Resolve([]byte(`{"license": {"exclude": ["GPL-3.0"]}}`))
		require.Equal(t, []string{"GPL-3.0"}, resolved.License.Exclude)

		resolved = Resolve([]byte(`{"license": {"exclude": []}}`))
		assert.Empty(t, resolved.License.Exclude)
	})

	t.Run("scalars are replaced outright", func(t *testing.T) {
		resolved := Resolve([]byte(`{"version": {"minVersion": "2.0.0", "isRigorous": true}}`))
		assert.Equal(t, "2.0.0", resolved.Version.MinVersion)
		assert.True(t, resolved.Version.IsRigorous)
		// Unmentioned fields keep their defaults.
		assert.Equal(t, 0.5, resolved.Version.RetributionScore)
		assert.Equal(t, 2, resolved.Version.RigorousDepth)
	})

	t.Run("zero values win over defaults when explicit", func(t *testing.T) {
		resolved := Resolve([]byte(`{"version": {"retributionScore": 0}}`))
		assert.Zero(t, resolved.Version.RetributionScore)
	})
}

func TestHash(t *testing.T) {
	t.Run("empty input hashes to the empty key", func(t *testing.T) {
		assert.Empty(t, Hash(nil))
		assert.Empty(t, Hash([]byte("  ")))
	})

	t.Run("identical input hashes identically", func(t *testing.T) {
		raw := []byte(`{"license": {"include": ["MIT"]}}`)
		assert.Equal(t, Hash(raw), Hash(raw))
	})

	t.Run("different input hashes differently", func(t *testing.T) {
		a := Hash([]byte(`{"license": {"include": ["MIT"]}}`))
		b := Hash([]byte(`{"license": {"include": ["ISC"]}}`))
		assert.NotEqual(t, a, b)
	})
}
