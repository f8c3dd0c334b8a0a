package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/factoryledger/internal/accounting"
	"github.com/roach88/factoryledger/internal/edit"
)

// BalanceOptions holds flags for the balance command.
type BalanceOptions struct {
	*RootOptions
	Depth int // also report nodes down to this depth
}

// BalanceRow is the balance of one node.
type BalanceRow struct {
	Path    string             `json:"path"`
	Depth   int                `json:"depth"`
	Label   string             `json:"label"`
	Balance accounting.Balance `json:"balance"`
}

// NewBalanceCommand creates the balance command.
func NewBalanceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BalanceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "balance <tree>",
		Short: "Show power and item rates of a tree",
		Long: `Compute the net power (MW) and item rates (per minute) of a tree.

Negative values are consumed, positive values produced. By default only
the root is reported; --depth N also reports every node down to depth N.

Examples:
  factoryledger balance plant.yaml --catalog ./catalog
  factoryledger balance plant.yaml --depth 1 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBalance(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Depth, "depth", 0, "report nodes down to this depth")

	return cmd
}

func runBalance(opts *BalanceOptions, treePath string, cmd *cobra.Command) error {
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

	rows := balanceRows(root, opts.Depth)
	if env.out.IsJSON() {
		return env.out.Success(rows)
	}

	for _, row := range rows {
		indent := strings.Repeat("  ", row.Depth)
		fmt.Fprintf(env.out.Writer, "%s%s %s\n", indent, row.Path, row.Label)
		printBalance(env.out.Writer, indent+"  ", row.Balance)
	}
	return nil
}

// balanceRows lists node balances in depth-first order down to depth.
func balanceRows(root accounting.Node, depth int) []BalanceRow {
	rows := []BalanceRow{}
	accounting.Walk(root, func(path []int, n accounting.Node) bool {
		rows = append(rows, BalanceRow{
			Path:    edit.Path(path).String(),
			Depth:   len(path),
			Label:   nodeLabel(n),
			Balance: n.Balance(),
		})
		return len(path) < depth
	})
	return rows
}

func nodeLabel(n accounting.Node) string {
	switch v := n.(type) {
	case accounting.Group:
		return fmt.Sprintf("%q", v.Name)
	case accounting.Building:
		if !v.Building.IsSet() {
			return "(empty)"
		}
		return string(v.Building)
	default:
		return "?"
	}
}

// printBalance writes power then one line per item, in item order.
func printBalance(w io.Writer, indent string, b accounting.Balance) {
	fmt.Fprintf(w, "%spower: %s MW\n", indent, formatRate(b.Power))
	for _, item := range b.SortedItems() {
		fmt.Fprintf(w, "%s%s: %s/min\n", indent, item, formatRate(b.Rate(item)))
	}
}

func formatRate(v float64) string {
	return fmt.Sprintf("%+.3f", v)
}
