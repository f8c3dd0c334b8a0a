package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/factoryledger/internal/accounting"
	"github.com/roach88/factoryledger/internal/edit"
)

// CheckViolation is one problem found in a tree.
type CheckViolation struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CheckResult holds the result of checking a tree.
type CheckResult struct {
	Valid      bool             `json:"valid"`
	Groups     int              `json:"groups"`
	Buildings  int              `json:"buildings"`
	Violations []CheckViolation `json:"violations"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <tree>",
		Short: "Check building settings across a tree",
		Long: `Check that every building in a tree has settings of the right shape
for its kind, names a building in the catalog, selects only recipes,
resources and fuels its kind allows, and runs at a valid clock speed.

Exit codes:
  0 - No violations
  1 - One or more violations
  2 - Command error

Examples:
  factoryledger check plant.yaml --catalog ./catalog`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}
}

func runCheck(opts *RootOptions, treePath string, cmd *cobra.Command) error {
	env, err := opts.setup(cmd)
	if err != nil {
		return err
	}
	db, err := env.catalog()
	if err != nil {
		return err
	}
	root, err := env.readTree(treePath, db)
	if err != nil {
		return err
	}

	result := CheckResult{Violations: []CheckViolation{}}
	result.Groups, result.Buildings = accounting.CountNodes(root)
	for _, v := range accounting.CheckTree(db, root) {
		result.Violations = append(result.Violations, CheckViolation{
			Path:    edit.Path(v.Path).String(),
			Code:    v.Code,
			Message: v.Message,
		})
	}
	result.Valid = len(result.Violations) == 0

	var failure *CLIError
	if !result.Valid {
		failure = &CLIError{
			Code:    ErrCodeViolations,
			Message: fmt.Sprintf("%d violation(s)", len(result.Violations)),
		}
	}

	if env.out.IsJSON() {
		if err := env.out.Report(result, failure); err != nil {
			return err
		}
	} else if result.Valid {
		fmt.Fprintf(env.out.Writer, "✓ %d building(s) in %d group(s), no violations\n", result.Buildings, result.Groups)
	} else {
		fmt.Fprintf(env.out.Writer, "✗ %d violation(s)\n\n", len(result.Violations))
		for _, v := range result.Violations {
			fmt.Fprintf(env.out.Writer, "  %s %s: %s\n", v.Path, v.Code, v.Message)
		}
	}

	if failure != nil {
		return NewExitError(ExitFailure, failure.Message)
	}
	return nil
}
