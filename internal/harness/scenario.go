package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/factoryledger/internal/accounting"
)

// Scenario is one scripted edit session with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Catalog is a .cue file or a directory of them. Relative paths are
	// resolved against the scenario file's directory.
	Catalog string `yaml:"catalog,omitempty"`

	// CatalogCUE is an inline catalog, used when Catalog is empty.
	CatalogCUE string `yaml:"catalog_cue,omitempty"`

	// Tree is the initial root. It must be a group.
	Tree accounting.NodeDoc `yaml:"tree"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`

	// Assertions are checked against the final tree.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step sends one request to one node.
type Step struct {
	// Target is the node the request is sent to, e.g. "/0/1"; "/" is the root.
	Target string `yaml:"target"`

	// Request is the request in its JSON form, written as YAML:
	// {type: rename, name: Iron}.
	Request map[string]any `yaml:"request"`

	// Expect is "ok" (the default) or the error code the step must fail with.
	Expect string `yaml:"expect,omitempty"`
}

// ExpectOK is the expectation of a step that must succeed.
const ExpectOK = "ok"

// Assertion checks one property of the final tree.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Path addresses the node checked; "/" or empty is the root.
	Path string `yaml:"path,omitempty"`

	// Equals is the expected string for node_name, building and building_kind.
	Equals string `yaml:"equals,omitempty"`

	// Count is the expected number for leaf_count and child_count.
	Count *int `yaml:"count,omitempty"`

	// Settings is the expected settings document for settings.
	Settings *accounting.SettingsDoc `yaml:"settings,omitempty"`

	// Power is the expected net power for balance.
	Power *float64 `yaml:"power,omitempty"`

	// Item and Rate give an expected item rate for balance.
	Item string   `yaml:"item,omitempty"`
	Rate *float64 `yaml:"rate,omitempty"`
}

// Assertion type constants.
const (
	AssertNodeName     = "node_name"
	AssertBuilding     = "building"
	AssertBuildingKind = "building_kind"
	AssertSettings     = "settings"
	AssertLeafCount    = "leaf_count"
	AssertChildCount   = "child_count"
	AssertBalance      = "balance"
	AssertUnchanged    = "unchanged"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) {
		scenario.Catalog = filepath.Join(filepath.Dir(path), scenario.Catalog)
	}
	if scenario.Catalog != "" {
		if _, err := os.Stat(scenario.Catalog); err != nil {
			return nil, fmt.Errorf("invalid scenario: catalog not found: %s", scenario.Catalog)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML. Relative catalog paths are left as
// written.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadDir loads every .yaml and .yml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob scenarios: %w", err)
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Catalog == "" && s.CatalogCUE == "" {
		return fmt.Errorf("catalog or catalog_cue is required")
	}
	if s.Catalog != "" && s.CatalogCUE != "" {
		return fmt.Errorf("catalog and catalog_cue are mutually exclusive")
	}

	if s.Tree.Group == nil {
		return fmt.Errorf("tree must be a group")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Target == "" {
			return fmt.Errorf("steps[%d]: target is required", i)
		}
		if len(step.Request) == 0 {
			return fmt.Errorf("steps[%d]: request is required", i)
		}
		if _, ok := step.Request["type"]; !ok {
			return fmt.Errorf("steps[%d]: request type is required", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertNodeName, AssertBuilding, AssertBuildingKind, AssertUnchanged:
		// Equals may legitimately be empty ("" name, unset building).
	case AssertSettings:
		if a.Settings == nil {
			return fmt.Errorf("assertions[%d]: settings is required for settings", index)
		}
	case AssertLeafCount, AssertChildCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for %s", index, a.Type)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertBalance:
		if a.Power == nil && a.Item == "" {
			return fmt.Errorf("assertions[%d]: power or item is required for balance", index)
		}
		if (a.Item == "") != (a.Rate == nil) {
			return fmt.Errorf("assertions[%d]: item and rate must be given together", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
