package edit

import (
	"errors"

	"github.com/roach88/factoryledger/internal/accounting"
)

// Effect is what a node does with a request. Only the types below implement
// it.
type Effect interface {
	effect()
}

// Replace installs Node in place of the node that handled the request.
type Replace struct{ Node accounting.Node }

// Forward hands the request, unchanged, to the node's parent.
type Forward struct{ Request Request }

// NoChange means the request was valid but changed nothing.
type NoChange struct{}

// Reject means the request was refused; the tree stays as it was.
type Reject struct{ Err *EditError }

func (Replace) effect()  {}
func (Forward) effect()  {}
func (NoChange) effect() {}
func (Reject) effect()   {}

// Update runs req against self, the node at path.
//
// A move is carried out only by a node that is a strict ancestor of both its
// source and destination; any other node below the destination forwards it
// upward.
func (p *Processor) Update(self accounting.Node, path Path, req Request) Effect {
	switch r := req.(type) {
	case Rename:
		return effectOf(p.Rename(self, path, r.Name))
	case AddChild:
		return effectOf(p.AddChild(self, path, r.Child))
	case DeleteChild:
		return effectOf(p.DeleteChild(self, path, r.Index))
	case CopyChild:
		return effectOf(p.CopyChild(self, path, r.Index))
	case ReplaceChild:
		return effectOf(p.ReplaceChild(self, path, r.Index, r.Child))
	case MoveNode:
		if len(r.Src) == 0 {
			return Reject{Err: p.reject(degenerateMove(r.Src, r.Dest, "source path is empty"))}
		}
		if IsMoveAncestor(path, r.Src, r.Dest) || !path.IsStrictPrefixOf(r.Dest) {
			return effectOf(p.MoveNode(self, path, r.Src, r.Dest))
		}
		return Forward{Request: r}
	case ChangeBuilding:
		return effectOf(p.ChangeBuilding(self, path, r.Building))
	case ChangeRecipe:
		return effectOf(p.ChangeRecipe(self, path, r.Recipe))
	case ChangeItem:
		return effectOf(p.ChangeItem(self, path, r.Item))
	case SetClockSpeed:
		return effectOf(p.SetClockSpeed(self, path, r.ClockSpeed))
	default:
		return Reject{Err: p.reject(newError(CodeStructuralMismatch, path, "unsupported request %T", req))}
	}
}

func effectOf(n accounting.Node, err error) Effect {
	if err != nil {
		var ee *EditError
		if !errors.As(err, &ee) {
			ee = &EditError{Code: CodeStructuralMismatch, Message: err.Error()}
		}
		return Reject{Err: ee}
	}
	if n == nil {
		return NoChange{}
	}
	return Replace{Node: n}
}

// Result is the outcome of Apply.
type Result struct {
	// Root is the new tree, or the original one if nothing changed.
	Root accounting.Node

	// Changed is false for no-op requests and rejections.
	Changed bool

	// Handler is the path of the node that carried out the request.
	Handler Path

	// Diagnostics reported while applying this request.
	Diagnostics []Diagnostic
}

// Apply runs req against the node at target and returns the new root.
//
// The handling node's replacement is installed into each of its ancestors in
// turn, rebuilding their balances. Moves are delivered straight to the
// deepest ancestor of target that contains both ends of the move, which is
// where forwarding from target would end up.
//
// On rejection the returned Result holds the original root and the error is
// an *EditError with a root-relative Path.
func (p *Processor) Apply(root accounting.Node, target Path, req Request) (Result, error) {
	start := len(p.diagnostics)
	result := func(r Result) Result {
		r.Diagnostics = append([]Diagnostic(nil), p.diagnostics[start:]...)
		return r
	}

	if _, err := Resolve(root, target); err != nil {
		return result(Result{Root: root}), p.reject(err.(*EditError))
	}

	path := target.Clone()
	if mv, ok := req.(MoveNode); ok {
		if len(mv.Src) == 0 || len(mv.Dest) == 0 {
			return result(Result{Root: root}), p.reject(degenerateMove(mv.Src, mv.Dest, "move paths must not be empty"))
		}
		path = target[:moveHandlerDepth(target, mv.Src, mv.Dest)].Clone()
	}

	for {
		self, err := Resolve(root, path)
		if err != nil {
			return result(Result{Root: root}), p.reject(err.(*EditError))
		}

		switch eff := p.Update(self, path, req).(type) {
		case Replace:
			newRoot, err := replaceAt(root, path, eff.Node)
			if err != nil {
				return result(Result{Root: root}), p.reject(err.(*EditError))
			}
			p.logger.Debug("edit applied",
				"request", Describe(req),
				"target", target.String(),
				"handler", path.String())
			return result(Result{Root: newRoot, Changed: true, Handler: path}), nil

		case NoChange:
			p.logger.Debug("edit changed nothing", "request", Describe(req), "target", target.String())
			return result(Result{Root: root, Handler: path}), nil

		case Reject:
			return result(Result{Root: root, Handler: path}), eff.Err

		case Forward:
			if len(path) == 0 {
				return result(Result{Root: root}), p.reject(degenerateMove(nil, nil, "no ancestor can carry out the move"))
			}
			path = path.Parent()
			req = eff.Request
		}
	}
}

// moveHandlerDepth is the depth of the deepest prefix of target that is a
// strict prefix of both src and dest.
func moveHandlerDepth(target, src, dest Path) int {
	return min(
		len(target),
		len(src)-1,
		len(dest)-1,
		CommonPrefixLength(target, src),
		CommonPrefixLength(target, dest),
	)
}
