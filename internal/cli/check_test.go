package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/factoryledger/internal/accounting"
)

const brokenTree = `
group:
  name: Broken
  children:
    - building:
        building: smelter
        settings: {miner: {resource: iron_ore}}
    - building:
        building: teleporter
    - group:
        name: Fine
        children:
          - building:
              building: coal_generator
              settings: {generator: {fuel: fuel}}
          - building: {}
`

func TestCheck_Clean(t *testing.T) {
	catalog := catalogDir(t)
	tree := writeFile(t, t.TempDir(), "plant.yaml", plantTree)

	stdout, _, err := execute(t, "check", tree, "--catalog", catalog)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ 2 building(s) in 3 group(s), no violations")
}

func TestCheck_Violations(t *testing.T) {
	catalog := catalogDir(t)
	tree := writeFile(t, t.TempDir(), "broken.yaml", brokenTree)

	stdout, _, err := execute(t, "check", tree, "--catalog", catalog, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse[CheckResult](t, stdout)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeViolations, resp.Error.Code)

	assert.False(t, resp.Data.Valid)
	assert.Equal(t, 4, resp.Data.Buildings)
	assert.Equal(t, 2, resp.Data.Groups)

	got := make([][2]string, len(resp.Data.Violations))
	for i, v := range resp.Data.Violations {
		got[i] = [2]string{v.Path, v.Code}
	}
	assert.Equal(t, [][2]string{
		{"/0", accounting.ViolationShape},
		{"/1", accounting.ViolationUnknown},
		{"/2/0", accounting.ViolationSelection},
	}, got)
}

func TestCheck_ViolationsText(t *testing.T) {
	catalog := catalogDir(t)
	tree := writeFile(t, t.TempDir(), "broken.yaml", brokenTree)

	stdout, _, err := execute(t, "check", tree, "--catalog", catalog)
	require.Error(t, err)
	assert.Contains(t, stdout, "✗ 3 violation(s)")
	assert.Contains(t, stdout, "/1 UNKNOWN_BUILDING")
}
