package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/factoryledger/internal/accounting"
	"github.com/roach88/factoryledger/internal/edit"
	"github.com/roach88/factoryledger/internal/store"
	"github.com/roach88/factoryledger/internal/testutil"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

// inlineScenario builds a scenario over the sample catalog with root
// Root[Iron[miner_mk1 on iron_ore]].
func inlineScenario(steps []Step, assertions ...Assertion) *Scenario {
	return &Scenario{
		Name:        "inline",
		Description: "inline",
		CatalogCUE:  testutil.SampleCatalogCUE,
		Tree: accounting.NodeDoc{Group: &accounting.GroupDoc{
			Name: "Root",
			Children: []accounting.NodeDoc{{Group: &accounting.GroupDoc{
				Name: "Iron",
				Children: []accounting.NodeDoc{{Building: &accounting.BuildingDoc{
					Building: testutil.MinerMk1,
					Settings: &accounting.SettingsDoc{Miner: &accounting.ResourceDoc{Resource: testutil.IronOre}},
				}}},
			}}},
		}},
		Steps:      steps,
		Assertions: assertions,
	}
}

func TestRun_TestdataScenariosPass(t *testing.T) {
	for _, name := range []string{"move_between_groups", "power_plant", "rejections", "reorder_groups"} {
		t.Run(name, func(t *testing.T) {
			result, err := Run(loadTestScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_RecordsStepsAndEdits(t *testing.T) {
	result, err := Run(loadTestScenario(t, "rejections"))
	require.NoError(t, err)

	require.Len(t, result.Steps, 12)
	require.Len(t, result.Edits, 12)

	first := result.Steps[0]
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, int64(2), first.Seq, "seq 1 is the initial revision")
	assert.Equal(t, "/", first.Target)
	assert.Equal(t, "move_node /0 -> /0/0", first.Request)
	assert.Equal(t, string(edit.CodeDegenerateMove), first.Outcome)
	assert.False(t, first.Changed)
	require.NotEmpty(t, first.Diagnostics)
	assert.Equal(t, edit.LevelError, first.Diagnostics[0].Level)

	last := result.Steps[11]
	assert.Equal(t, ExpectOK, last.Outcome)
	assert.False(t, last.Changed)

	assert.Equal(t, "edit-000001", result.Edits[0].ID)
	assert.Equal(t, store.OutcomeRejected, result.Edits[0].Outcome)
	assert.Equal(t, store.OutcomeUnchanged, result.Edits[11].Outcome)
}

func TestRun_Deterministic(t *testing.T) {
	s := loadTestScenario(t, "power_plant")

	r1, err := Run(s)
	require.NoError(t, err)
	r2, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, r1.Edits, r2.Edits)
	assert.Equal(t, accounting.MustNodeHash(r1.Root), accounting.MustNodeHash(r2.Root))
}

func TestRun_UnexpectedOutcomeFails(t *testing.T) {
	s := inlineScenario([]Step{
		{Target: "/0/0", Request: map[string]any{"type": "rename", "name": "X"}},
		{Target: "/0", Request: map[string]any{"type": "rename", "name": "Ore"}, Expect: "INDEX_OUT_OF_RANGE"},
	})

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "step 0")
	assert.Contains(t, result.Errors[0], "expected ok, got STRUCTURAL_MISMATCH")
	assert.Contains(t, result.Errors[1], "step 1")
	assert.Contains(t, result.Errors[1], "expected INDEX_OUT_OF_RANGE, got ok")
}

func TestRun_ExpectIsCaseInsensitive(t *testing.T) {
	s := inlineScenario([]Step{
		{Target: "/0/0", Request: map[string]any{"type": "rename", "name": "X"}, Expect: "structural_mismatch"},
	})

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_FailedAssertionReported(t *testing.T) {
	count := 5
	s := inlineScenario(
		[]Step{{Target: "/", Request: map[string]any{"type": "copy_child", "index": 0}}},
		Assertion{Type: AssertLeafCount, Path: "/", Count: &count},
	)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "assertions[0]")
	assert.Contains(t, result.Errors[0], "Expected: 5 buildings")
	assert.Contains(t, result.Errors[0], "Actual: 2 buildings")
}

func TestRun_MalformedStep(t *testing.T) {
	tests := []struct {
		name string
		step Step
		want string
	}{
		{"bad target", Step{Target: "/x", Request: map[string]any{"type": "rename", "name": "X"}}, "invalid path segment"},
		{"unknown request", Step{Target: "/", Request: map[string]any{"type": "explode"}}, "unknown request type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(inlineScenario([]Step{tt.step}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "step 0")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRun_InvalidCatalog(t *testing.T) {
	s := inlineScenario([]Step{{Target: "/", Request: map[string]any{"type": "rename", "name": "X"}}})
	s.CatalogCUE = `
recipe: bad: {
	name: "Bad"
	time: 1
	ingredients: [{item: "ghost", amount: 1}]
	products: []
}
`
	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid catalog")
}

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest(map[string]any{"type": "move_node", "src": []any{0, 1}, "dest": []any{1}})
	require.NoError(t, err)
	assert.Equal(t, edit.MoveNode{Src: edit.Path{0, 1}, Dest: edit.Path{1}}, req)

	req, err = DecodeRequest(map[string]any{
		"type":  "add_child",
		"child": map[string]any{"group": map[string]any{"name": "New", "children": []any{}}},
	})
	require.NoError(t, err)
	add, ok := req.(edit.AddChild)
	require.True(t, ok)
	assert.Equal(t, "New", add.Child.(accounting.Group).Name)
}
