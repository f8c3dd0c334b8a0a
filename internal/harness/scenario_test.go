package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: minimal
description: "Rename the root"
catalog_cue: |
  item: ore: name: "Ore"
tree:
  group: {name: Root, children: []}
steps:
  - target: /
    request: {type: rename, name: Factory}
assertions:
  - type: node_name
    equals: Factory
`

func TestParseScenario_Minimal(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	require.NotNil(t, s.Tree.Group)
	assert.Equal(t, "Root", s.Tree.Group.Name)
	require.Len(t, s.Steps, 1)
	assert.Equal(t, "/", s.Steps[0].Target)
	assert.Equal(t, "rename", s.Steps[0].Request["type"])
	assert.Equal(t, "", s.Steps[0].Expect)
	require.Len(t, s.Assertions, 1)
	assert.Equal(t, AssertNodeName, s.Assertions[0].Type)
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(minimalScenario + "assertion: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: `description: d
catalog_cue: "item: a: name: \"A\""
tree: {group: {name: R, children: []}}
steps: [{target: /, request: {type: rename, name: X}}]`,
			want: "name is required",
		},
		{
			name: "missing catalog",
			yaml: `name: n
description: d
tree: {group: {name: R, children: []}}
steps: [{target: /, request: {type: rename, name: X}}]`,
			want: "catalog or catalog_cue is required",
		},
		{
			name: "both catalogs",
			yaml: `name: n
description: d
catalog: a.cue
catalog_cue: "item: a: name: \"A\""
tree: {group: {name: R, children: []}}
steps: [{target: /, request: {type: rename, name: X}}]`,
			want: "mutually exclusive",
		},
		{
			name: "building root",
			yaml: `name: n
description: d
catalog_cue: "item: a: name: \"A\""
tree: {building: {}}
steps: [{target: /, request: {type: rename, name: X}}]`,
			want: "tree must be a group",
		},
		{
			name: "no steps",
			yaml: `name: n
description: d
catalog_cue: "item: a: name: \"A\""
tree: {group: {name: R, children: []}}
steps: []`,
			want: "steps list is required",
		},
		{
			name: "step without type",
			yaml: `name: n
description: d
catalog_cue: "item: a: name: \"A\""
tree: {group: {name: R, children: []}}
steps: [{target: /, request: {name: X}}]`,
			want: "steps[0]: request type is required",
		},
		{
			name: "unknown assertion",
			yaml: `name: n
description: d
catalog_cue: "item: a: name: \"A\""
tree: {group: {name: R, children: []}}
steps: [{target: /, request: {type: rename, name: X}}]
assertions: [{type: trace_contains}]`,
			want: `unknown assertion type "trace_contains"`,
		},
		{
			name: "count missing",
			yaml: `name: n
description: d
catalog_cue: "item: a: name: \"A\""
tree: {group: {name: R, children: []}}
steps: [{target: /, request: {type: rename, name: X}}]
assertions: [{type: leaf_count}]`,
			want: "count is required for leaf_count",
		},
		{
			name: "rate without item",
			yaml: `name: n
description: d
catalog_cue: "item: a: name: \"A\""
tree: {group: {name: R, children: []}}
steps: [{target: /, request: {type: rename, name: X}}]
assertions: [{type: balance, power: 1, rate: 2}]`,
			want: "item and rate must be given together",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_ResolvesCatalogRelativeToFile(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "rejections.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "catalog", "sample.cue"), s.Catalog)
}

func TestLoadScenario_MissingCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	content := `name: n
description: d
catalog: nowhere.cue
tree: {group: {name: R, children: []}}
steps: [{target: /, request: {type: rename, name: X}}]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog not found")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadDir_SortedByFileName(t *testing.T) {
	scenarios, err := LoadDir(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)

	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"move_between_groups", "power_plant", "rejections", "reorder_groups"}, names)
}
