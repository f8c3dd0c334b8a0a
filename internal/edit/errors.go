package edit

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrorCode categorizes edit rejections and diagnostics.
type ErrorCode string

const (
	// CodeStructuralMismatch: a Group-only operation on a Building or the
	// reverse, or a path that walks through a Building.
	CodeStructuralMismatch ErrorCode = "STRUCTURAL_MISMATCH"

	// CodeIndexOutOfRange: a child index or path segment exceeds its bounds.
	CodeIndexOutOfRange ErrorCode = "INDEX_OUT_OF_RANGE"

	// CodeInvalidSelection: recipe, resource or fuel not allowed for the
	// building's kind, unknown building id, or clock speed out of range.
	CodeInvalidSelection ErrorCode = "INVALID_SELECTION"

	// CodeDegenerateMove: empty source, a move into the moved subtree, or a
	// move back onto the same position.
	CodeDegenerateMove ErrorCode = "DEGENERATE_MOVE"

	// CodeInvariantRepair is never returned as an error. It marks the
	// diagnostic emitted when settings had the wrong shape and were rebuilt.
	CodeInvariantRepair ErrorCode = "INVARIANT_REPAIR"
)

// EditError is a rejected edit. The tree it was applied to is unchanged.
type EditError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path is where the problem was detected, relative to the node that
	// detected it until Apply rewrites it as root-relative.
	Path Path

	// Details contains additional context.
	Details map[string]string
}

// Error implements the error interface.
func (e *EditError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("%s: %s (at %s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCode reports whether err is an *EditError with the given code.
// Uses errors.As to handle wrapped errors.
func IsCode(err error, code ErrorCode) bool {
	var ee *EditError
	if errors.As(err, &ee) {
		return ee.Code == code
	}
	return false
}

// CodeOf returns the code of an *EditError, or "" for any other error.
func CodeOf(err error) ErrorCode {
	var ee *EditError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

func newError(code ErrorCode, path Path, format string, args ...any) *EditError {
	return &EditError{Code: code, Message: fmt.Sprintf(format, args...), Path: path.Clone()}
}

func notAGroup(path Path) *EditError {
	return newError(CodeStructuralMismatch, path, "node is not a group")
}

func notABuilding(path Path) *EditError {
	return newError(CodeStructuralMismatch, path, "node is not a building")
}

func indexOutOfRange(path Path, idx, count int) *EditError {
	e := newError(CodeIndexOutOfRange, path, "index %d out of range (%d children)", idx, count)
	e.Details = map[string]string{
		"index": fmt.Sprintf("%d", idx),
		"count": fmt.Sprintf("%d", count),
	}
	return e
}

func degenerateMove(src, dest Path, reason string) *EditError {
	e := newError(CodeDegenerateMove, nil, "%s", reason)
	e.Details = map[string]string{"src": src.String(), "dest": dest.String()}
	return e
}

// rebase rewrites err's path as relative to an ancestor at prefix.
func rebase(err error, prefix Path) error {
	var ee *EditError
	if !errors.As(err, &ee) {
		return err
	}
	out := *ee
	out.Path = append(prefix.Clone(), ee.Path...)
	return &out
}

// Level is the severity of a Diagnostic.
type Level string

const (
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Diagnostic is a non-fatal report produced while processing an edit.
// Rejections become error-level diagnostics; settings repairs and
// unreconciled identity changes are warnings.
type Diagnostic struct {
	Level   Level     `json:"level"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Path    Path      `json:"path"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s at %s: %s", d.Level, d.Code, d.Path, d.Message)
}

// LogValue implements slog.LogValuer.
func (d Diagnostic) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("code", string(d.Code)),
		slog.String("path", d.Path.String()),
		slog.String("message", d.Message),
	)
}
