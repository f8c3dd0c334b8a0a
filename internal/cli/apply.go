package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/factoryledger/internal/accounting"
	"github.com/roach88/factoryledger/internal/edit"
	"github.com/roach88/factoryledger/internal/harness"
	"github.com/roach88/factoryledger/internal/session"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	Save   bool   // record the graph and its edits in the store
	Name   string // graph name when saving
	Output string // write the final tree here
}

// AppliedStep is the outcome of one script step.
type AppliedStep struct {
	Index       int               `json:"index"`
	Seq         int64             `json:"seq"`
	Target      string            `json:"target"`
	Request     string            `json:"request"`
	Outcome     string            `json:"outcome"`
	Expected    string            `json:"expected"`
	Changed     bool              `json:"changed"`
	Message     string            `json:"message,omitempty"`
	Diagnostics []edit.Diagnostic `json:"diagnostics,omitempty"`
}

// ApplyResult holds the result of running a script.
type ApplyResult struct {
	GraphID    string             `json:"graph_id"`
	Name       string             `json:"name"`
	Saved      bool               `json:"saved"`
	Steps      []AppliedStep      `json:"steps"`
	Mismatches int                `json:"mismatches"`
	RootHash   string             `json:"root_hash"`
	Balance    accounting.Balance `json:"balance"`
	Tree       accounting.NodeDoc `json:"tree"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <tree> <script>",
		Short: "Apply an edit script to a tree",
		Long: `Apply the steps of a YAML edit script to a tree document.

Each step sends one request to the node at its target path. Rejected
requests leave the tree as it was and the script carries on. A step may
declare the outcome it expects ("ok" by default, or an error code such as
INDEX_OUT_OF_RANGE); any other outcome fails the command.

With --save the graph, every edit and every revision are recorded in the
store, and "factoryledger history <graph-id>" lists them.

Exit codes:
  0 - Every step met its expectation
  1 - One or more steps had an unexpected outcome
  2 - Command error (missing files, bad catalog, store unavailable)

Examples:
  factoryledger apply plant.yaml edits.yaml --catalog ./catalog
  factoryledger apply plant.yaml edits.yaml --save --name "Main base"
  factoryledger apply plant.yaml edits.yaml -o plant.next.yaml`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Save, "save", false, "record the graph and its edits in the store")
	cmd.Flags().StringVar(&opts.Name, "name", "", "graph name (default: script name, then root group name)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the final tree (.yaml/.yml or JSON)")

	return cmd
}

func runApply(opts *ApplyOptions, treePath, scriptPath string, cmd *cobra.Command) error {
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
	script, err := env.readScript(scriptPath)
	if err != nil {
		return err
	}

	sessOpts := session.Options{Logger: env.logger}
	if opts.Save {
		st, err := env.openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		sessOpts.Store = st
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	name := graphName(opts.Name, script.Name, root)
	sess, err := session.Start(ctx, edit.NewProcessor(db, env.logger), name, root, sessOpts)
	if err != nil {
		return env.out.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	result := ApplyResult{
		GraphID: sess.GraphID(),
		Name:    name,
		Saved:   opts.Save,
		Steps:   make([]AppliedStep, 0, len(script.Steps)),
	}

	for i, step := range script.Steps {
		applied, err := applyStep(ctx, sess, i, step)
		if err != nil {
			return env.out.Fail(ExitCommandError, ErrCodeScript, fmt.Sprintf("%s: %v", scriptPath, err), nil)
		}
		if !strings.EqualFold(applied.Outcome, applied.Expected) {
			result.Mismatches++
		}
		env.out.VerboseLog("step %d: %s at %s -> %s", i, applied.Request, applied.Target, applied.Outcome)
		result.Steps = append(result.Steps, applied)
	}

	final := sess.Root()
	result.Balance = final.Balance()
	result.Tree = accounting.ToDoc(final)
	result.RootHash, err = accounting.NodeHash(final)
	if err != nil {
		return env.out.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	if opts.Output != "" {
		if err := writeTree(opts.Output, final); err != nil {
			return env.out.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
		}
		env.out.VerboseLog("Wrote %s", opts.Output)
	}

	var failure *CLIError
	if result.Mismatches > 0 {
		failure = &CLIError{
			Code:    ErrCodeRejected,
			Message: fmt.Sprintf("%d step(s) had an unexpected outcome", result.Mismatches),
		}
	}

	if env.out.IsJSON() {
		if err := env.out.Report(result, failure); err != nil {
			return err
		}
	} else {
		printApplyText(env.out, result)
	}

	if failure != nil {
		return NewExitError(ExitFailure, failure.Message)
	}
	return nil
}

// applyStep runs one step. Only malformed steps and store failures are
// returned as errors; rejections are part of the step's outcome.
func applyStep(ctx context.Context, sess *session.Session, i int, step harness.Step) (AppliedStep, error) {
	target, err := edit.ParsePath(step.Target)
	if err != nil {
		return AppliedStep{}, fmt.Errorf("steps[%d]: %w", i, err)
	}
	req, err := harness.DecodeRequest(step.Request)
	if err != nil {
		return AppliedStep{}, fmt.Errorf("steps[%d]: %w", i, err)
	}

	res, editErr := sess.Apply(ctx, target, req)
	if editErr != nil && edit.CodeOf(editErr) == "" {
		return AppliedStep{}, fmt.Errorf("steps[%d]: %w", i, editErr)
	}

	applied := AppliedStep{
		Index:       i,
		Seq:         sess.Seq(),
		Target:      target.String(),
		Request:     edit.Describe(req),
		Outcome:     harness.ExpectOK,
		Expected:    step.Expect,
		Changed:     res.Changed,
		Diagnostics: res.Diagnostics,
	}
	if applied.Expected == "" {
		applied.Expected = harness.ExpectOK
	}
	if editErr != nil {
		applied.Outcome = string(edit.CodeOf(editErr))
		applied.Message = editErr.Error()
	}
	return applied, nil
}

func printApplyText(out *OutputFormatter, result ApplyResult) {
	for _, s := range result.Steps {
		mark := "✓"
		if !strings.EqualFold(s.Outcome, s.Expected) {
			mark = "✗"
		}
		fmt.Fprintf(out.Writer, "%s [%d] %s at %s: %s\n", mark, s.Index, s.Request, s.Target, s.Outcome)
		if s.Message != "" {
			fmt.Fprintf(out.Writer, "    %s\n", s.Message)
		}
		for _, d := range s.Diagnostics {
			if d.Level == edit.LevelWarn {
				fmt.Fprintf(out.Writer, "    %s\n", d)
			}
		}
	}

	fmt.Fprintln(out.Writer)
	if result.Saved {
		fmt.Fprintf(out.Writer, "Graph %s (%s) saved\n", result.GraphID, result.Name)
	}
	fmt.Fprintf(out.Writer, "Root hash: %s\n", result.RootHash)
	printBalance(out.Writer, "", result.Balance)
}

// graphName picks the first non-empty of flag, script name and root group
// name.
func graphName(flag, script string, root accounting.Node) string {
	if flag != "" {
		return flag
	}
	if script != "" {
		return script
	}
	if g, ok := root.(accounting.Group); ok && g.Name != "" {
		return g.Name
	}
	return "untitled"
}
