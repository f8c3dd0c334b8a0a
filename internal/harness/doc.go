// Package harness runs scripted edit scenarios against an accounting tree.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: move_smelter_to_copper
//	description: "Move a smelter between groups"
//	catalog: ../catalog            # .cue file or directory, relative to the scenario
//	tree:
//	  group:
//	    name: Root
//	    children:
//	      - group: {name: Iron, children: [...]}
//	steps:
//	  - target: /
//	    request: {type: move_node, src: [0, 1], dest: [1, 0]}
//	    expect: ok                 # or an error code such as DEGENERATE_MOVE
//	assertions:
//	  - type: child_count
//	    path: /1
//	    count: 1
//
// An inline catalog may be given with catalog_cue instead of catalog.
//
// # Assertion Types
//
//   - node_name: the group at path has the given name
//   - building: the building at path has the given building id ("" for none)
//   - building_kind: the building's kind is manufacturer, miner, generator, pump or none
//   - settings: the building's settings equal the given settings document
//   - leaf_count: the subtree at path has count buildings
//   - child_count: the group at path has count children
//   - balance: the subtree's power and/or one item rate
//   - unchanged: the final tree is identical to the initial one
//
// # Properties
//
// After every step the harness checks that applied moves kept every building
// and that no building's settings disagree with its kind. A violation fails
// the scenario even when every assertion passes.
//
// # Deterministic Testing
//
// Each scenario runs in its own in-memory store with a fixed graph id, a
// deterministic clock and sequential edit ids, so the edit log and final tree
// are identical across runs. RunWithGolden compares the final tree's
// canonical JSON against testdata/golden/<name>.golden.
package harness
