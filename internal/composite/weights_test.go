package composite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/livability-cli/internal/model"
)

func writeWeights(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadWeightSet_EmptyPathReturnsDefaults(t *testing.T) {
	set, err := LoadWeightSet("")
	require.NoError(t, err)
	assert.Equal(t, DefaultWeightSet(), set)
}

func TestLoadWeightSet_PartialOverride(t *testing.T) {
	path := writeWeights(t, `
composite:
  crime: 0.30
  lifestyle: 0.17
  schools: 0.15
  transit: 0.15
  healthcare: 0.13
  housing: 0.05
  diversity: 0.05
transit:
  count: 0.5
  density: 0.5
`)

	set, err := LoadWeightSet(path)
	require.NoError(t, err)

	assert.InDelta(t, 0.30, set.Composite[model.DomainCrime], 1e-9)
	assert.InDelta(t, 0.5, set.Transit.Count, 1e-9)
	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultWeightSet().Crime, set.Crime)
	assert.Equal(t, DefaultWeightSet().Healthcare, set.Healthcare)
}

func TestLoadWeightSet_RejectsNonConvexOverride(t *testing.T) {
	path := writeWeights(t, `
crime:
  rate: 0.9
  violent: 0.9
  property: 0.9
`)

	_, err := LoadWeightSet(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum")
}

func TestLoadWeightSet_MissingFile(t *testing.T) {
	_, err := LoadWeightSet(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
