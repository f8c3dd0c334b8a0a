package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/roach88/factoryledger/internal/database"
)

// CatalogResult holds catalog validation results.
type CatalogResult struct {
	Valid  bool                       `json:"valid"`
	Stats  database.Stats             `json:"stats"`
	Kinds  map[string]int             `json:"kinds"`
	Errors []database.ValidationError `json:"errors,omitempty"`
}

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect building, recipe and item catalogs",
	}
	cmd.AddCommand(newCatalogValidateCommand(rootOpts))
	return cmd
}

func newCatalogValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <dir>",
		Short: "Validate a CUE catalog",
		Long: `Compile a CUE catalog and cross-check every reference in it.

Reports recipes that name missing items, buildings that list unknown
recipes or resources, generators burning fuel without an energy value,
and non-positive times and amounts.

Exit codes:
  0 - Catalog is valid
  1 - Catalog compiled but has problems
  2 - Catalog could not be loaded

Examples:
  factoryledger catalog validate ./catalog
  factoryledger catalog validate ./catalog/base.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // We handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogValidate(rootOpts, args[0], cmd)
		},
	}
}

func runCatalogValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	out.VerboseLog("Loading catalog from %s", path)
	db, err := database.Load(path)
	if err != nil {
		code := ErrCodeCatalogLoad
		if errors.Is(err, fs.ErrNotExist) {
			code = ErrCodeNotFound
		}
		return out.Fail(ExitCommandError, code, err.Error(), nil)
	}

	result := CatalogResult{
		Stats:  db.Stats(),
		Kinds:  kindCounts(db),
		Errors: database.Validate(db),
	}
	result.Valid = len(result.Errors) == 0

	if !result.Valid {
		msg := fmt.Sprintf("validation failed with %d error(s)", len(result.Errors))
		if out.IsJSON() {
			if err := out.Report(result, &CLIError{Code: ErrCodeCatalogInvalid, Message: msg}); err != nil {
				return err
			}
			return NewExitError(ExitFailure, msg)
		}

		fmt.Fprintln(out.Writer, "✗ Catalog invalid")
		fmt.Fprintln(out.Writer)
		for _, e := range result.Errors {
			fmt.Fprintf(out.Writer, "  %s\n", e.Error())
		}
		return NewExitError(ExitFailure, msg)
	}

	if out.IsJSON() {
		return out.Success(result)
	}
	fmt.Fprintf(out.Writer, "✓ Catalog valid: %d building(s), %d recipe(s), %d item(s)\n",
		result.Stats.Buildings, result.Stats.Recipes, result.Stats.Items)
	return nil
}

// kindCounts counts buildings per kind.
func kindCounts(db *database.Database) map[string]int {
	counts := make(map[string]int)
	for _, id := range db.BuildingIDs() {
		bt, _ := db.Building(id)
		if bt.Kind == nil {
			continue
		}
		counts[bt.Kind.KindID().String()]++
	}
	return counts
}
