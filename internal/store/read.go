package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ReadGraph retrieves a graph by id. Returns ErrNotFound if absent.
func (s *Store) ReadGraph(ctx context.Context, id string) (Graph, error) {
	var g Graph
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_seq FROM graphs WHERE id = ?
	`, id).Scan(&g.ID, &g.Name, &g.CreatedSeq)
	if errors.Is(err, sql.ErrNoRows) {
		return Graph{}, fmt.Errorf("graph %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Graph{}, fmt.Errorf("read graph: %w", err)
	}
	return g, nil
}

// ListGraphs returns every graph in creation order.
//
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListGraphs(ctx context.Context) ([]Graph, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_seq
		FROM graphs
		ORDER BY created_seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query graphs: %w", err)
	}
	defer rows.Close()

	graphs := []Graph{}
	for rows.Next() {
		var g Graph
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedSeq); err != nil {
			return nil, fmt.Errorf("scan graph: %w", err)
		}
		graphs = append(graphs, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate graphs: %w", err)
	}
	return graphs, nil
}

// LatestRevision returns the revision with the highest seq.
// Returns ErrNotFound if the graph has no revisions.
func (s *Store) LatestRevision(ctx context.Context, graphID string) (Revision, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT graph_id, seq, root_hash, root_json
		FROM revisions
		WHERE graph_id = ?
		ORDER BY seq DESC
		LIMIT 1
	`, graphID)

	rev, err := scanRevision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Revision{}, fmt.Errorf("revisions of %s: %w", graphID, ErrNotFound)
	}
	if err != nil {
		return Revision{}, fmt.Errorf("read latest revision: %w", err)
	}
	return rev, nil
}

// ReadRevisions returns every revision of a graph in seq order.
//
// Returns an empty slice (not nil) if there are none.
func (s *Store) ReadRevisions(ctx context.Context, graphID string) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT graph_id, seq, root_hash, root_json
		FROM revisions
		WHERE graph_id = ?
		ORDER BY seq ASC
	`, graphID)
	if err != nil {
		return nil, fmt.Errorf("query revisions: %w", err)
	}
	defer rows.Close()

	revisions := []Revision{}
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revisions = append(revisions, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revisions: %w", err)
	}
	return revisions, nil
}

// ReadEdits returns the edit log of a graph.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if there are none.
func (s *Store) ReadEdits(ctx context.Context, graphID string) ([]Edit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, graph_id, seq, target_path, request_json, outcome, error_code, message
		FROM edits
		WHERE graph_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, graphID)
	if err != nil {
		return nil, fmt.Errorf("query edits: %w", err)
	}
	defer rows.Close()

	edits := []Edit{}
	for rows.Next() {
		var (
			e       Edit
			request string
		)
		if err := rows.Scan(&e.ID, &e.GraphID, &e.Seq, &e.TargetPath, &request, &e.Outcome, &e.ErrorCode, &e.Message); err != nil {
			return nil, fmt.Errorf("scan edit: %w", err)
		}
		e.Request = json.RawMessage(request)
		edits = append(edits, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edits: %w", err)
	}
	return edits, nil
}

// MaxSeq returns the highest seq recorded for a graph across revisions and
// edits, or 0 if there is none. Used to resume a graph's clock.
func (s *Store) MaxSeq(ctx context.Context, graphID string) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			COALESCE((SELECT MAX(seq) FROM revisions WHERE graph_id = ?), 0),
			COALESCE((SELECT MAX(seq) FROM edits WHERE graph_id = ?), 0),
			COALESCE((SELECT created_seq FROM graphs WHERE id = ?), 0)
		)
	`, graphID, graphID, graphID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("read max seq: %w", err)
	}
	return seq, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRevision(row rowScanner) (Revision, error) {
	var (
		rev  Revision
		root string
	)
	if err := row.Scan(&rev.GraphID, &rev.Seq, &rev.RootHash, &root); err != nil {
		return Revision{}, err
	}
	rev.RootJSON = []byte(root)
	return rev, nil
}
