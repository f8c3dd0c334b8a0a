package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/factoryledger/internal/accounting"
	"github.com/roach88/factoryledger/internal/edit"
	"github.com/roach88/factoryledger/internal/store"
)

// Options configures a Session. Zero values pick the production defaults:
// a fresh Clock, UUIDv7 graph ids, ULID edit ids, no store, and a discard
// logger.
type Options struct {
	Clock    SeqClock
	GraphIDs IDGenerator
	EditIDs  IDGenerator
	Store    *store.Store
	Logger   *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = NewClock()
	}
	if o.GraphIDs == nil {
		o.GraphIDs = UUIDv7Generator{}
	}
	if o.EditIDs == nil {
		o.EditIDs = NewULIDGenerator()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// Session applies edits to one accounting graph.
type Session struct {
	graphID string
	name    string
	root    accounting.Node

	proc   *edit.Processor
	clock  SeqClock
	ids    IDGenerator
	store  *store.Store
	logger *slog.Logger
}

// Start begins a new graph with the given root. With a store attached the
// graph and its first revision are written before Start returns.
func Start(ctx context.Context, proc *edit.Processor, name string, root accounting.Node, opts Options) (*Session, error) {
	if root == nil {
		return nil, errors.New("start session: root is nil")
	}
	opts = opts.withDefaults()

	s := &Session{
		graphID: opts.GraphIDs.Generate(),
		name:    name,
		root:    root,
		proc:    proc,
		clock:   opts.Clock,
		ids:     opts.EditIDs,
		store:   opts.Store,
		logger:  opts.Logger,
	}

	if s.store != nil {
		seq := s.clock.Next()
		g := store.Graph{ID: s.graphID, Name: name, CreatedSeq: seq}
		if _, err := s.store.CreateGraphWithRevision(ctx, g, root); err != nil {
			return nil, fmt.Errorf("start session: %w", err)
		}
	}

	s.logger.Info("session started", "graph", s.graphID, "name", name)
	return s, nil
}

// Resume reopens a stored graph at its latest revision. The clock continues
// after the highest seq already recorded unless opts.Clock is set.
func Resume(ctx context.Context, proc *edit.Processor, graphID string, opts Options) (*Session, error) {
	if opts.Store == nil {
		return nil, errors.New("resume session: store is required")
	}
	st := opts.Store

	g, err := st.ReadGraph(ctx, graphID)
	if err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}
	rev, err := st.LatestRevision(ctx, graphID)
	if err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}
	root, err := rev.Tree(proc.Catalog())
	if err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}

	if opts.Clock == nil {
		seq, err := st.MaxSeq(ctx, graphID)
		if err != nil {
			return nil, fmt.Errorf("resume session: %w", err)
		}
		opts.Clock = NewClockAt(seq)
	}
	opts = opts.withDefaults()

	s := &Session{
		graphID: g.ID,
		name:    g.Name,
		root:    root,
		proc:    proc,
		clock:   opts.Clock,
		ids:     opts.EditIDs,
		store:   st,
		logger:  opts.Logger,
	}
	s.logger.Info("session resumed", "graph", g.ID, "name", g.Name, "seq", rev.Seq)
	return s, nil
}

// GraphID returns the id of the graph being edited.
func (s *Session) GraphID() string { return s.graphID }

// Name returns the graph's name.
func (s *Session) Name() string { return s.name }

// Root returns the current tree.
func (s *Session) Root() accounting.Node { return s.root }

// Seq returns the seq of the most recent request.
func (s *Session) Seq() int64 { return s.clock.Current() }

// Apply sends req to the node at target.
//
// Rejections come back as an *edit.EditError with the root unchanged. An
// error from the store is returned wrapped and also leaves the root
// unchanged, even if the edit itself succeeded.
func (s *Session) Apply(ctx context.Context, target edit.Path, req edit.Request) (edit.Result, error) {
	seq := s.clock.Next()
	res, editErr := s.proc.Apply(s.root, target, req)

	if s.store != nil {
		if err := s.record(ctx, seq, target, req, res, editErr); err != nil {
			return edit.Result{Root: s.root, Diagnostics: res.Diagnostics}, err
		}
	}

	s.logger.Debug("edit processed",
		"graph", s.graphID,
		"seq", seq,
		"changed", res.Changed,
		"code", string(edit.CodeOf(editErr)),
		"request", edit.Describe(req))
	if editErr != nil {
		return res, editErr
	}

	s.root = res.Root
	return res, nil
}

func (s *Session) record(ctx context.Context, seq int64, target edit.Path, req edit.Request, res edit.Result, editErr error) error {
	reqJSON, err := edit.MarshalRequest(req)
	if err != nil {
		return fmt.Errorf("record edit: %w", err)
	}

	rec := store.Edit{
		ID:         s.ids.Generate(),
		GraphID:    s.graphID,
		Seq:        seq,
		TargetPath: target.String(),
		Request:    reqJSON,
		Outcome:    store.OutcomeApplied,
	}
	switch {
	case editErr != nil:
		rec.Outcome = store.OutcomeRejected
		rec.ErrorCode = string(edit.CodeOf(editErr))
		rec.Message = editErr.Error()
	case !res.Changed:
		rec.Outcome = store.OutcomeUnchanged
	}

	if rec.Outcome == store.OutcomeApplied {
		_, err = s.store.WriteEditWithRevision(ctx, rec, res.Root)
	} else {
		err = s.store.WriteEdit(ctx, rec)
	}
	if err != nil {
		return fmt.Errorf("record edit: %w", err)
	}
	return nil
}
