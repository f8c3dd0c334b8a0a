package edit

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/factoryledger/internal/accounting"
	"github.com/roach88/factoryledger/internal/database"
)

// Processor runs edit requests against nodes of an accounting tree.
//
// Per-node operations take the node's current value and its root-relative
// path, and return the replacement for that node. A nil node with a nil
// error means the request changed nothing. Rejections are returned as
// *EditError and recorded as diagnostics; the input is never modified.
//
// Not safe for concurrent use.
type Processor struct {
	db          database.Lookup
	logger      *slog.Logger
	diagnostics []Diagnostic
	debug       bool
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithDebugAssertions turns contract violations into panics instead of
// rejections.
func WithDebugAssertions() ProcessorOption {
	return func(p *Processor) {
		p.debug = true
	}
}

// NewProcessor creates a processor reading from db. A nil logger discards
// output.
func NewProcessor(db database.Lookup, logger *slog.Logger, opts ...ProcessorOption) *Processor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p := &Processor{db: db, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Catalog returns the catalog the processor reads from.
func (p *Processor) Catalog() database.Lookup { return p.db }

// Diagnostics returns everything reported since the last Reset.
func (p *Processor) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), p.diagnostics...)
}

// ResetDiagnostics clears collected diagnostics.
func (p *Processor) ResetDiagnostics() { p.diagnostics = nil }

func (p *Processor) warn(code ErrorCode, path Path, format string, args ...any) {
	d := Diagnostic{Level: LevelWarn, Code: code, Message: fmt.Sprintf(format, args...), Path: path.Clone()}
	p.diagnostics = append(p.diagnostics, d)
	p.logger.Warn("edit diagnostic", "diagnostic", d)
}

// reject records err and returns it.
func (p *Processor) reject(err *EditError) *EditError {
	d := Diagnostic{Level: LevelError, Code: err.Code, Message: err.Message, Path: err.Path}
	p.diagnostics = append(p.diagnostics, d)
	p.logger.Warn("edit rejected", "diagnostic", d)
	return err
}

// Rename sets a group's name. The name is trimmed; an unchanged name is a
// no-op.
func (p *Processor) Rename(self accounting.Node, path Path, name string) (accounting.Node, error) {
	g, ok := self.(accounting.Group)
	if !ok {
		return nil, p.reject(newError(CodeStructuralMismatch, path, "cannot rename a non-group"))
	}
	name = strings.TrimSpace(name)
	if name == g.Name {
		return nil, nil
	}
	return g.WithName(name), nil
}

// AddChild appends child to a group. The child's settings are reconciled
// and its balances recomputed against the processor's catalog.
func (p *Processor) AddChild(self accounting.Node, path Path, child accounting.Node) (accounting.Node, error) {
	g, ok := self.(accounting.Group)
	if !ok {
		return nil, p.reject(newError(CodeStructuralMismatch, path, "cannot add child to a non-group"))
	}
	if child == nil {
		return nil, p.reject(newError(CodeStructuralMismatch, path, "child is neither a group nor a building"))
	}
	out, _ := g.InsertChild(g.Len(), p.admit(child, path.Child(g.Len())))
	return out, nil
}

// DeleteChild removes the child at idx.
func (p *Processor) DeleteChild(self accounting.Node, path Path, idx int) (accounting.Node, error) {
	g, ok := self.(accounting.Group)
	if !ok {
		return nil, p.reject(newError(CodeStructuralMismatch, path, "cannot delete child of a non-group"))
	}
	out, _, ok := g.RemoveChild(idx)
	if !ok {
		return nil, p.reject(indexOutOfRange(path.Child(idx), idx, g.Len()))
	}
	return out, nil
}

// CopyChild inserts a duplicate of the child at idx directly after it.
func (p *Processor) CopyChild(self accounting.Node, path Path, idx int) (accounting.Node, error) {
	g, ok := self.(accounting.Group)
	if !ok {
		return nil, p.reject(newError(CodeStructuralMismatch, path, "cannot copy child of a non-group"))
	}
	child, ok := g.Child(idx)
	if !ok {
		return nil, p.reject(indexOutOfRange(path.Child(idx), idx, g.Len()))
	}
	// Nodes are values, so sharing the child is a full copy.
	out, _ := g.InsertChild(idx+1, child)
	return out, nil
}

// ReplaceChild swaps the child at idx for child, reconciled like AddChild.
func (p *Processor) ReplaceChild(self accounting.Node, path Path, idx int, child accounting.Node) (accounting.Node, error) {
	g, ok := self.(accounting.Group)
	if !ok {
		return nil, p.reject(newError(CodeStructuralMismatch, path, "cannot replace child of a non-group"))
	}
	if child == nil {
		return nil, p.reject(newError(CodeStructuralMismatch, path, "child is neither a group nor a building"))
	}
	if _, ok := g.Child(idx); !ok {
		return nil, p.reject(indexOutOfRange(path.Child(idx), idx, g.Len()))
	}
	out, _ := g.ReplaceChild(idx, p.admit(child, path.Child(idx)))
	return out, nil
}

// admit prepares a node arriving from outside the tree. Every known building
// gets settings shaped for its kind, and an unset building loses any
// settings. Unknown ids are kept as they are, as in ChangeBuilding.
func (p *Processor) admit(n accounting.Node, path Path) accounting.Node {
	switch v := n.(type) {
	case accounting.Group:
		children := make([]accounting.Node, len(v.Children))
		for i, c := range v.Children {
			children[i] = p.admit(c, path.Child(i))
		}
		return accounting.NewGroup(v.Name, children...)
	case accounting.Building:
		if !v.Building.IsSet() {
			if v.Settings != nil {
				p.warnRepair(path, v)
			}
			return accounting.NewEmptyBuilding()
		}
		settings := v.Settings
		if kind, ok := database.KindOf(p.db, v.Building); ok && !accounting.IsShapedFor(settings, kind) {
			p.warnRepair(path, v)
			settings = accounting.ReconcileSettings(settings, kind)
		}
		return accounting.NewBuilding(p.db, v.Building, settings)
	default:
		return n
	}
}

// IsMoveAncestor reports whether the node at path is an ancestor of both
// ends of a move and can therefore carry it out.
func IsMoveAncestor(path, src, dest Path) bool {
	return path.IsStrictPrefixOf(src) && path.IsStrictPrefixOf(dest)
}

// MoveNode moves src to dest (root-relative) inside the node at path, which
// must be an ancestor of both. The destination must lie strictly below path;
// anything else means the caller tried to move a node onto one of its own
// ancestors.
func (p *Processor) MoveNode(self accounting.Node, path, src, dest Path) (accounting.Node, error) {
	if !path.IsStrictPrefixOf(dest) {
		if p.debug {
			panic(fmt.Sprintf("edit: move to %s delivered to %s", dest, path))
		}
		return nil, p.reject(degenerateMove(src, dest, "destination is not below the receiving node"))
	}
	if !path.IsStrictPrefixOf(src) {
		return nil, p.reject(degenerateMove(src, dest, "source is not below the receiving node"))
	}
	g, ok := self.(accounting.Group)
	if !ok {
		return nil, p.reject(newError(CodeStructuralMismatch, path, "cannot move nodes in a non-group"))
	}

	depth := len(path)
	out, err := MoveSubtree(g, src[depth:], dest[depth:])
	if err != nil {
		return nil, p.reject(rebase(err, path).(*EditError))
	}
	return out, nil
}

// ChangeBuilding sets a building's type and reconciles its settings with the
// new type's kind. An unknown id is still stored, with settings left as they
// were and a diagnostic. The empty id clears the building.
func (p *Processor) ChangeBuilding(self accounting.Node, path Path, id database.BuildingID) (accounting.Node, error) {
	b, ok := self.(accounting.Building)
	if !ok {
		return nil, p.reject(notABuilding(path))
	}
	if b.Building == id {
		return nil, nil
	}
	if !id.IsSet() {
		return accounting.NewEmptyBuilding(), nil
	}

	settings := b.Settings
	if kind, ok := database.KindOf(p.db, id); ok {
		settings = accounting.ReconcileSettings(settings, kind)
	} else {
		p.warn(CodeInvalidSelection, path, "building %q is unknown; settings not reconciled", id)
	}
	return accounting.NewBuilding(p.db, id, settings), nil
}

// ChangeRecipe selects a recipe on a manufacturer. The recipe must be one of
// the manufacturer's available recipes.
func (p *Processor) ChangeRecipe(self accounting.Node, path Path, recipe database.RecipeID) (accounting.Node, error) {
	b, ok := self.(accounting.Building)
	if !ok {
		return nil, p.reject(notABuilding(path))
	}
	kind, err := p.buildingKind(b, path)
	if err != nil {
		return nil, err
	}
	m, ok := kind.(database.Manufacturer)
	if !ok {
		return nil, p.reject(newError(CodeInvalidSelection, path, "building %q is a %s, not a manufacturer", b.Building, kind.KindID()))
	}
	if !m.HasRecipe(recipe) {
		return nil, p.reject(newError(CodeInvalidSelection, path, "recipe %q is not available for building %q", recipe, b.Building))
	}

	settings, repaired := accounting.SelectRecipe(b.Settings, recipe)
	if repaired {
		p.warnRepair(path, b)
	}
	return accounting.NewBuilding(p.db, b.Building, settings), nil
}

// ChangeItem selects the resource of a miner or pump, or the fuel of a
// generator. The item must be in the kind's allow list.
func (p *Processor) ChangeItem(self accounting.Node, path Path, item database.ItemID) (accounting.Node, error) {
	b, ok := self.(accounting.Building)
	if !ok {
		return nil, p.reject(notABuilding(path))
	}
	kind, err := p.buildingKind(b, path)
	if err != nil {
		return nil, err
	}

	var allowed bool
	switch k := kind.(type) {
	case database.Miner:
		allowed = k.AllowsResource(item)
	case database.Generator:
		allowed = k.AllowsFuel(item)
	case database.Pump:
		allowed = k.AllowsResource(item)
	case database.Manufacturer:
		return nil, p.reject(newError(CodeInvalidSelection, path, "building %q is a manufacturer, not a miner, generator or pump", b.Building))
	}
	if !allowed {
		return nil, p.reject(newError(CodeInvalidSelection, path, "%s %q is not available for building %q", itemRole(kind.KindID()), item, b.Building))
	}

	settings, repaired := accounting.SelectItem(b.Settings, kind.KindID(), item)
	if repaired {
		p.warnRepair(path, b)
	}
	return accounting.NewBuilding(p.db, b.Building, settings), nil
}

// SetClockSpeed changes a building's clock speed, keeping its selection.
func (p *Processor) SetClockSpeed(self accounting.Node, path Path, clock float64) (accounting.Node, error) {
	b, ok := self.(accounting.Building)
	if !ok {
		return nil, p.reject(notABuilding(path))
	}
	if !accounting.ValidClockSpeed(clock) {
		return nil, p.reject(newError(CodeInvalidSelection, path, "clock speed %g out of range [%g, %g]",
			clock, accounting.MinClockSpeed, accounting.MaxClockSpeed))
	}
	kind, err := p.buildingKind(b, path)
	if err != nil {
		return nil, err
	}

	settings := b.Settings
	repaired := !accounting.IsShapedFor(settings, kind.KindID())
	if repaired {
		p.warnRepair(path, b)
		settings = accounting.ReconcileSettings(settings, kind.KindID())
	}
	if !repaired && settings.Clock() == clock {
		return nil, nil
	}
	return accounting.NewBuilding(p.db, b.Building, accounting.WithClockSpeed(settings, clock)), nil
}

// buildingKind resolves the kind of b's building type, rejecting unset and
// unknown ids.
func (p *Processor) buildingKind(b accounting.Building, path Path) (database.BuildingKind, error) {
	if !b.Building.IsSet() {
		return nil, p.reject(newError(CodeInvalidSelection, path, "building type is not set"))
	}
	bt, ok := p.db.Building(b.Building)
	if !ok || bt.Kind == nil {
		return nil, p.reject(newError(CodeInvalidSelection, path, "building %q is unknown", b.Building))
	}
	return bt.Kind, nil
}

func (p *Processor) warnRepair(path Path, b accounting.Building) {
	got := "no"
	if b.Settings != nil {
		got = b.Settings.Kind().String()
	}
	p.warn(CodeInvariantRepair, path, "building %q had %s settings; rebuilt from defaults", b.Building, got)
}

func itemRole(kind database.BuildingKindID) string {
	if kind == database.KindGenerator {
		return "fuel"
	}
	return "resource"
}
