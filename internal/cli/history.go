package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/factoryledger/internal/store"
)

// HistoryResult holds a graph's recorded history.
type HistoryResult struct {
	Graph     store.Graph      `json:"graph"`
	Edits     []store.Edit     `json:"edits"`
	Revisions []store.Revision `json:"revisions"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history [graph-id]",
		Short: "Show the recorded edits of a graph",
		Long: `Show every edit recorded for a graph, in the order they were made,
with the revision each applied edit produced.

Without a graph id, list the graphs in the store.

Examples:
  factoryledger history --store ledger.db
  factoryledger history 01928f6e-7c1a-7d4e-9b7a-3f0c2d1e4b5a --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			graphID := ""
			if len(args) == 1 {
				graphID = args[0]
			}
			return runHistory(rootOpts, graphID, cmd)
		},
	}
}

func runHistory(opts *RootOptions, graphID string, cmd *cobra.Command) error {
	env, err := opts.setup(cmd)
	if err != nil {
		return err
	}
	st, err := env.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if graphID == "" {
		return listGraphs(ctx, env, st)
	}

	g, err := st.ReadGraph(ctx, graphID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return env.out.Fail(ExitCommandError, ErrCodeNotFound, err.Error(), nil)
		}
		return env.out.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	edits, err := st.ReadEdits(ctx, graphID)
	if err != nil {
		return env.out.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	revisions, err := st.ReadRevisions(ctx, graphID)
	if err != nil {
		return env.out.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	result := HistoryResult{Graph: g, Edits: edits, Revisions: revisions}
	if env.out.IsJSON() {
		return env.out.Success(result)
	}

	hashAt := make(map[int64]string, len(revisions))
	for _, r := range revisions {
		hashAt[r.Seq] = r.RootHash
	}

	w := env.out.Writer
	fmt.Fprintf(w, "Graph %s %q\n", g.ID, g.Name)
	fmt.Fprintf(w, "  seq %d  created  %s\n", g.CreatedSeq, shortHash(hashAt[g.CreatedSeq]))
	for _, e := range edits {
		line := fmt.Sprintf("  seq %d  %-9s %s %s", e.Seq, e.Outcome, e.TargetPath, e.Request)
		switch {
		case e.Outcome == store.OutcomeRejected:
			line += "  " + e.ErrorCode
		case hashAt[e.Seq] != "":
			line += "  " + shortHash(hashAt[e.Seq])
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "\n%d edit(s), %d revision(s)\n", len(edits), len(revisions))
	return nil
}

func listGraphs(ctx context.Context, env *commandEnv, st *store.Store) error {
	graphs, err := st.ListGraphs(ctx)
	if err != nil {
		return env.out.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	if env.out.IsJSON() {
		return env.out.Success(graphs)
	}
	if len(graphs) == 0 {
		fmt.Fprintln(env.out.Writer, "No graphs recorded.")
		return nil
	}
	for _, g := range graphs {
		fmt.Fprintf(env.out.Writer, "%s  %s\n", g.ID, g.Name)
	}
	return nil
}
