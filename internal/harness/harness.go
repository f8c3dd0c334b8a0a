package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/factoryledger/internal/database"
	"github.com/roach88/factoryledger/internal/edit"
	"github.com/roach88/factoryledger/internal/session"
	"github.com/roach88/factoryledger/internal/store"
	"github.com/roach88/factoryledger/internal/testutil"
)

// graphID is the fixed graph id every scenario runs under.
const graphID = "scenario"

// Run executes a scenario with logging discarded.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, nil)
}

// RunWithLogger executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory store. A returned error means the
// scenario could not run at all (bad catalog, bad tree, malformed step);
// failed expectations are reported in Result.Errors instead.
//
// Execution flow:
//  1. Load the catalog and build the initial tree
//  2. Start a session on an in-memory store
//  3. Apply each step, checking its expectation and the tree properties
//  4. Evaluate assertions against the final tree
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	db, err := LoadCatalog(scenario)
	if err != nil {
		return nil, err
	}

	initial, err := scenario.Tree.Build(db)
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	proc := edit.NewProcessor(db, logger)
	sess, err := session.Start(ctx, proc, scenario.Name, initial, session.Options{
		Clock:    testutil.NewDeterministicClock(),
		GraphIDs: session.NewFixedGenerator(graphID),
		EditIDs:  testutil.NewSequenceIDGenerator("edit"),
		Store:    st,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := runStep(ctx, sess, db, i, step, result); err != nil {
			return nil, err
		}
		logger.Info("scenario step completed",
			"scenario", scenario.Name,
			"step", i,
			"outcome", result.Steps[i].Outcome)
	}

	result.Root = sess.Root()
	for _, msg := range EvaluateAssertions(db, initial, result.Root, scenario.Assertions) {
		result.AddError(msg)
	}

	edits, err := st.ReadEdits(ctx, graphID)
	if err != nil {
		return nil, err
	}
	result.Edits = edits

	return result, nil
}

func runStep(ctx context.Context, sess *session.Session, db database.Lookup, i int, step Step, result *Result) error {
	target, err := edit.ParsePath(step.Target)
	if err != nil {
		return fmt.Errorf("step %d: %w", i, err)
	}
	req, err := DecodeRequest(step.Request)
	if err != nil {
		return fmt.Errorf("step %d: %w", i, err)
	}

	before := sess.Root()
	res, editErr := sess.Apply(ctx, target, req)
	if editErr != nil && edit.CodeOf(editErr) == "" {
		return fmt.Errorf("step %d: %w", i, editErr)
	}

	outcome := ExpectOK
	if editErr != nil {
		outcome = string(edit.CodeOf(editErr))
	}
	result.Steps = append(result.Steps, StepResult{
		Index:       i,
		Seq:         sess.Seq(),
		Target:      target.String(),
		Request:     edit.Describe(req),
		Outcome:     outcome,
		Changed:     res.Changed,
		Diagnostics: res.Diagnostics,
	})

	expect := step.Expect
	if expect == "" {
		expect = ExpectOK
	}
	if !strings.EqualFold(outcome, expect) {
		msg := fmt.Sprintf("step %d (%s at %s): expected %s, got %s", i, edit.Describe(req), target, expect, outcome)
		if editErr != nil {
			msg += ": " + editErr.Error()
		}
		result.AddError(msg)
	}

	for _, msg := range checkProperties(db, before, sess.Root(), req, res, editErr) {
		result.AddError(fmt.Sprintf("step %d: %s", i, msg))
	}
	return nil
}

// DecodeRequest converts a request written as a YAML map into a Request.
func DecodeRequest(m map[string]any) (edit.Request, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return edit.UnmarshalRequest(data)
}

// LoadCatalog compiles the scenario's catalog and rejects catalogs with
// dangling references.
func LoadCatalog(scenario *Scenario) (*database.Database, error) {
	var (
		db  *database.Database
		err error
	)
	switch {
	case scenario.CatalogCUE != "":
		db, err = database.CompileString(scenario.CatalogCUE, scenario.Name+".cue")
	case scenario.Catalog != "":
		db, err = database.Load(scenario.Catalog)
	default:
		return nil, fmt.Errorf("scenario %s has no catalog", scenario.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	if problems := database.Validate(db); len(problems) > 0 {
		msgs := make([]string, len(problems))
		for i, p := range problems {
			msgs[i] = p.Error()
		}
		return nil, fmt.Errorf("invalid catalog: %s", strings.Join(msgs, "; "))
	}
	return db, nil
}
