package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/factoryledger/internal/accounting"
	"github.com/roach88/factoryledger/internal/database"
)

// ErrNotFound is returned when a graph or revision does not exist.
var ErrNotFound = errors.New("not found")

// Graph is a named accounting graph.
type Graph struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CreatedSeq int64  `json:"created_seq"`
}

// Revision is the whole tree of a graph at one seq.
type Revision struct {
	GraphID  string `json:"graph_id"`
	Seq      int64  `json:"seq"`
	RootHash string `json:"root_hash"`
	RootJSON []byte `json:"-"`
}

// Tree decodes the revision's root and recomputes balances against db.
func (r Revision) Tree(db database.Lookup) (accounting.Node, error) {
	n, err := accounting.UnmarshalNode(r.RootJSON, db)
	if err != nil {
		return nil, fmt.Errorf("revision %s@%d: %w", r.GraphID, r.Seq, err)
	}
	return n, nil
}

// Outcome values of an edit record.
const (
	OutcomeApplied   = "applied"
	OutcomeUnchanged = "unchanged"
	OutcomeRejected  = "rejected"
)

// Edit is one request sent to a graph.
type Edit struct {
	ID         string          `json:"id"`
	GraphID    string          `json:"graph_id"`
	Seq        int64           `json:"seq"`
	TargetPath string          `json:"target_path"`
	Request    json.RawMessage `json:"request"`
	Outcome    string          `json:"outcome"`
	ErrorCode  string          `json:"error_code,omitempty"`
	Message    string          `json:"message,omitempty"`
}
