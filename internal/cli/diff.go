package cli

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/roach88/factoryledger/internal/accounting"
)

// DiffResult holds the comparison of two trees.
type DiffResult struct {
	Equal     bool   `json:"equal"`
	LeftHash  string `json:"left_hash"`
	RightHash string `json:"right_hash"`
	Diff      string `json:"diff,omitempty"`
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <a> <b>",
		Short: "Compare two trees",
		Long: `Compare two tree documents node by node.

Trees are equal when their canonical forms match, so YAML and JSON
documents of the same tree compare equal. The diff is printed with
"-" for the first tree and "+" for the second.

Exit codes:
  0 - Trees are equal
  1 - Trees differ
  2 - Command error

Examples:
  factoryledger diff plant.yaml plant.next.json --catalog ./catalog`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(rootOpts, args[0], args[1], cmd)
		},
	}
}

func runDiff(opts *RootOptions, leftPath, rightPath string, cmd *cobra.Command) error {
	env, err := opts.setup(cmd)
	if err != nil {
		return err
	}
	db, err := env.catalog()
	if err != nil {
		return err
	}
	left, err := env.readTree(leftPath, db)
	if err != nil {
		return err
	}
	right, err := env.readTree(rightPath, db)
	if err != nil {
		return err
	}

	result, err := diffTrees(left, right)
	if err != nil {
		return env.out.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	var failure *CLIError
	if !result.Equal {
		failure = &CLIError{Code: ErrCodeTreesDiffer, Message: "trees differ"}
	}

	if env.out.IsJSON() {
		if err := env.out.Report(result, failure); err != nil {
			return err
		}
	} else if result.Equal {
		fmt.Fprintf(env.out.Writer, "✓ Trees are equal (%s)\n", shortHash(result.LeftHash))
	} else {
		fmt.Fprintf(env.out.Writer, "✗ Trees differ (%s vs %s)\n\n", shortHash(result.LeftHash), shortHash(result.RightHash))
		fmt.Fprint(env.out.Writer, result.Diff)
	}

	if failure != nil {
		return NewExitError(ExitFailure, failure.Message)
	}
	return nil
}

// diffTrees compares two trees by content hash and renders a structural
// diff of their documents when they differ.
func diffTrees(left, right accounting.Node) (DiffResult, error) {
	lh, err := accounting.NodeHash(left)
	if err != nil {
		return DiffResult{}, err
	}
	rh, err := accounting.NodeHash(right)
	if err != nil {
		return DiffResult{}, err
	}

	result := DiffResult{Equal: lh == rh, LeftHash: lh, RightHash: rh}
	if !result.Equal {
		result.Diff = cmp.Diff(accounting.ToDoc(left), accounting.ToDoc(right))
	}
	return result, nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
