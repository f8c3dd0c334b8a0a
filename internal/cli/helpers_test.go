package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/factoryledger/internal/testutil"
)

// plantTree has an Iron group with a miner and a smelter, and an empty
// Copper group. Root balance: -9 MW, +30 iron_ore, +30 iron_ingot.
const plantTree = `
group:
  name: Plant
  children:
    - group:
        name: Iron
        children:
          - building:
              building: miner_mk1
              settings: {miner: {resource: iron_ore}}
          - building:
              building: smelter
              settings: {manufacturer: {recipe: iron_ingot}}
    - group:
        name: Copper
        children: []
`

// plantTreeJSON is plantTree with explicit clock speeds, as JSON.
const plantTreeJSON = `{"group":{"name":"Plant","children":[
  {"group":{"name":"Iron","children":[
    {"building":{"building":"miner_mk1","settings":{"miner":{"resource":"iron_ore","clock_speed":1}}}},
    {"building":{"building":"smelter","settings":{"manufacturer":{"recipe":"iron_ingot","clock_speed":1}}}}
  ]}},
  {"group":{"name":"Copper","children":[]}}
]}}`

// reworkScript moves the smelter into Copper, switches it to copper and
// makes one deliberately rejected request.
const reworkScript = `
name: rework
steps:
  - target: /0/1
    request: {type: move_node, src: [0, 1], dest: [1, 0]}
  - target: /1/0
    request: {type: change_recipe, recipe: copper_ingot}
  - target: /0
    request: {type: delete_child, index: 5}
    expect: INDEX_OUT_OF_RANGE
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// catalogDir writes the sample catalog into a fresh directory.
func catalogDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "catalog.cue", testutil.SampleCatalogCUE)
	return dir
}

// execute runs the root command with args.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

type response[T any] struct {
	Status string    `json:"status"`
	Data   T         `json:"data"`
	Error  *CLIError `json:"error"`
}

func decodeResponse[T any](t *testing.T, out string) response[T] {
	t.Helper()
	var resp response[T]
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}
