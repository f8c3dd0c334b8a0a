package harness

import (
	"github.com/roach88/factoryledger/internal/accounting"
	"github.com/roach88/factoryledger/internal/edit"
	"github.com/roach88/factoryledger/internal/store"
)

// StepResult records what one step did.
type StepResult struct {
	Index       int               `json:"index"`
	Seq         int64             `json:"seq"`
	Target      string            `json:"target"`
	Request     string            `json:"request"`
	Outcome     string            `json:"outcome"` // "ok" or an error code
	Changed     bool              `json:"changed"`
	Diagnostics []edit.Diagnostic `json:"diagnostics,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step met its expectation, no property was
	// violated and every assertion held.
	Pass bool `json:"pass"`

	// Steps holds one entry per scenario step, in order.
	Steps []StepResult `json:"steps"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Edits is the session's edit log as stored.
	Edits []store.Edit `json:"edits"`

	// Root is the final tree.
	Root accounting.Node `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepResult{},
		Errors: []string{},
		Edits:  []store.Edit{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
