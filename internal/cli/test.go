package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/factoryledger/internal/accounting"
	"github.com/roach88/factoryledger/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Steps  int      `json:"steps"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run edit scenarios",
		Long: `Run scenario files: an initial tree, a list of edits with their
expected outcomes, and assertions on the final tree.

Every step is also checked for tree properties: rejected edits leave the
tree untouched, moves keep every building, and no edit introduces
settings that do not fit their building. When golden/<file>.golden
exists next to a scenario, the final tree must match it byte for byte.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  factoryledger test ./scenarios
  factoryledger test ./scenarios --filter "move-*"
  factoryledger test ./scenarios --update
  factoryledger test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	env, err := opts.setup(cmd)
	if err != nil {
		return err
	}

	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return env.out.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("scenarios directory not found: %s", scenariosDir), nil)
	}

	scenarioFiles, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return env.out.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("failed to find scenarios: %v", err), nil)
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	if len(scenarioFiles) == 0 {
		if env.out.IsJSON() {
			return env.out.Success(result)
		}
		fmt.Fprintln(env.out.Writer, "No scenarios found.")
		return nil
	}

	for _, file := range scenarioFiles {
		sr := runScenario(env, opts, file)
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if env.out.IsJSON() {
		var failure *CLIError
		if result.Failed > 0 {
			failure = &CLIError{
				Code:    ErrCodeTestFailed,
				Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
			}
		}
		if err := env.out.Report(result, failure); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(env.out.Writer)
		fmt.Fprintf(env.out.Writer, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
		if result.Failed == 0 {
			fmt.Fprintln(env.out.Writer, "✓ All scenarios passed")
		}
	}

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// findScenarioFiles finds all YAML scenario files directly in dir, in
// lexical order. Subdirectories (golden/, catalogs) are skipped.
func findScenarioFiles(dir, filter string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if filter != "" {
			matched, err := filepath.Match(filter, strings.TrimSuffix(e.Name(), ext))
			if err != nil {
				return nil, fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				continue
			}
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// runScenario executes one scenario file. Load and execution problems
// fail the scenario rather than the command.
func runScenario(env *commandEnv, opts *TestOptions, file string) ScenarioResult {
	sr := ScenarioResult{Name: filepath.Base(file), File: file}
	fail := func(format string, args ...any) ScenarioResult {
		sr.Errors = append(sr.Errors, fmt.Sprintf(format, args...))
		return reportScenario(env.out, sr)
	}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return fail("failed to load scenario: %v", err)
	}
	sr.Name = scenario.Name

	result, err := harness.RunWithLogger(scenario, env.logger)
	if err != nil {
		return fail("execution failed: %v", err)
	}
	sr.Steps = len(result.Steps)
	sr.Errors = append(sr.Errors, result.Errors...)

	goldenPath := goldenFilePath(file)
	if opts.Update {
		if err := updateGoldenFile(goldenPath, result.Root); err != nil {
			return fail("failed to update golden file: %v", err)
		}
		env.out.VerboseLog("Updated %s", goldenPath)
		return reportScenario(env.out, sr)
	}

	match, err := compareWithGolden(goldenPath, result.Root)
	switch {
	case os.IsNotExist(err):
		// No golden file: assertions only.
	case err != nil:
		return fail("golden comparison failed: %v", err)
	case !match:
		return fail("final tree does not match golden file (run with --update to regenerate)")
	}
	return reportScenario(env.out, sr)
}

// reportScenario sets Pass from the collected errors and prints the
// scenario's line in text mode.
func reportScenario(out *OutputFormatter, sr ScenarioResult) ScenarioResult {
	sr.Pass = len(sr.Errors) == 0
	if sr.Pass {
		out.Printf("✓ %s\n", sr.Name)
		return sr
	}
	out.Printf("✗ %s\n", sr.Name)
	for _, e := range sr.Errors {
		out.Printf("  %s\n", e)
	}
	return sr
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// updateGoldenFile writes the canonical final tree as the golden file.
func updateGoldenFile(goldenPath string, root accounting.Node) error {
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	data, err := accounting.MarshalCanonical(root)
	if err != nil {
		return fmt.Errorf("failed to marshal tree: %w", err)
	}
	if err := os.WriteFile(goldenPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// compareWithGolden compares the canonical final tree against the golden
// file. A missing golden file is reported as an os.IsNotExist error.
func compareWithGolden(goldenPath string, root accounting.Node) (bool, error) {
	golden, err := os.ReadFile(goldenPath)
	if err != nil {
		return false, err
	}
	current, err := accounting.MarshalCanonical(root)
	if err != nil {
		return false, fmt.Errorf("failed to marshal tree: %w", err)
	}
	return bytes.Equal(bytes.TrimRight(golden, "\n"), current), nil
}
