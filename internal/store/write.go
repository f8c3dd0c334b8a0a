package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/factoryledger/internal/accounting"
)

// execer is satisfied by both *sql.DB and *sql.Tx, so each insert can run
// alone or as part of a larger transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateGraph inserts a graph record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (s *Store) CreateGraph(ctx context.Context, g Graph) error {
	if err := insertGraph(ctx, s.db, g); err != nil {
		return fmt.Errorf("create graph: %w", err)
	}
	return nil
}

// CreateGraphWithRevision inserts a graph and its first revision at
// g.CreatedSeq in one transaction. Either both rows are written or neither.
func (s *Store) CreateGraphWithRevision(ctx context.Context, g Graph, root accounting.Node) (Revision, error) {
	rev, err := newRevision(g.ID, g.CreatedSeq, root)
	if err != nil {
		return Revision{}, fmt.Errorf("create graph: %w", err)
	}
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertGraph(ctx, tx, g); err != nil {
			return err
		}
		return insertRevision(ctx, tx, rev)
	})
	if err != nil {
		return Revision{}, fmt.Errorf("create graph: %w", err)
	}
	return rev, nil
}

// WriteRevision stores root as the graph's tree at seq.
//
// The tree is stored as canonical JSON with its content hash. Writing the
// same (graph, seq) twice keeps the first revision.
func (s *Store) WriteRevision(ctx context.Context, graphID string, seq int64, root accounting.Node) (Revision, error) {
	rev, err := newRevision(graphID, seq, root)
	if err != nil {
		return Revision{}, fmt.Errorf("write revision: %w", err)
	}
	if err := insertRevision(ctx, s.db, rev); err != nil {
		return Revision{}, fmt.Errorf("write revision: %w", err)
	}
	return rev, nil
}

// WriteEdit appends an edit record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (s *Store) WriteEdit(ctx context.Context, e Edit) error {
	if err := insertEdit(ctx, s.db, e); err != nil {
		return fmt.Errorf("write edit: %w", err)
	}
	return nil
}

// WriteEditWithRevision appends an applied edit together with the tree it
// produced, at the edit's seq, in one transaction. A failure leaves neither
// row behind.
func (s *Store) WriteEditWithRevision(ctx context.Context, e Edit, root accounting.Node) (Revision, error) {
	rev, err := newRevision(e.GraphID, e.Seq, root)
	if err != nil {
		return Revision{}, fmt.Errorf("write edit: %w", err)
	}
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertEdit(ctx, tx, e); err != nil {
			return err
		}
		return insertRevision(ctx, tx, rev)
	})
	if err != nil {
		return Revision{}, fmt.Errorf("write edit: %w", err)
	}
	return rev, nil
}

// inTx runs fn in a transaction, committing only if fn succeeds.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func newRevision(graphID string, seq int64, root accounting.Node) (Revision, error) {
	data, err := accounting.MarshalCanonical(root)
	if err != nil {
		return Revision{}, err
	}
	hash, err := accounting.NodeHash(root)
	if err != nil {
		return Revision{}, err
	}
	return Revision{GraphID: graphID, Seq: seq, RootHash: hash, RootJSON: data}, nil
}

func insertGraph(ctx context.Context, x execer, g Graph) error {
	_, err := x.ExecContext(ctx, `
		INSERT INTO graphs (id, name, created_seq)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, g.ID, g.Name, g.CreatedSeq)
	if err != nil {
		return fmt.Errorf("insert graph: %w", err)
	}
	return nil
}

func insertRevision(ctx context.Context, x execer, r Revision) error {
	_, err := x.ExecContext(ctx, `
		INSERT INTO revisions (graph_id, seq, root_hash, root_json)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(graph_id, seq) DO NOTHING
	`, r.GraphID, r.Seq, r.RootHash, string(r.RootJSON))
	if err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}
	return nil
}

func insertEdit(ctx context.Context, x execer, e Edit) error {
	request := string(e.Request)
	if request == "" {
		request = "{}"
	}

	_, err := x.ExecContext(ctx, `
		INSERT INTO edits
		(id, graph_id, seq, target_path, request_json, outcome, error_code, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		e.ID,
		e.GraphID,
		e.Seq,
		e.TargetPath,
		request,
		e.Outcome,
		e.ErrorCode,
		e.Message,
	)
	if err != nil {
		return fmt.Errorf("insert edit: %w", err)
	}
	return nil
}
