// Package component defines the shared tree infrastructure every simulated
// element in the machine is built on: named components arranged in a strict
// parent/child tree, the Control and Status leaves that live on them, and
// the five-phase Tick protocol that drives the whole tree each cycle.
package component

import "fmt"

// Phase identifies one of the five strictly-ordered stages a tick is split
// into. Every component is visited once per phase, top-down, for every
// tick of the machine.
type Phase int

const (
	// PhaseControl is where the controller asserts signals for the cycle.
	PhaseControl Phase = iota
	// PhaseWrite is where components with an asserted write control drive
	// the bus.
	PhaseWrite
	// PhaseRead is where components with an asserted read control latch
	// the bus.
	PhaseRead
	// PhaseProcess is where the ALU computes and counters increment/reset.
	PhaseProcess
	// PhaseClear is where status registers latch, auto-clear controls
	// clear, and the bus is wiped.
	PhaseClear
)

// Phases is the fixed order every tick executes the five phases in.
var Phases = [...]Phase{PhaseControl, PhaseWrite, PhaseRead, PhaseProcess, PhaseClear}

func (p Phase) String() string {
	switch p {
	case PhaseControl:
		return "control"
	case PhaseWrite:
		return "write"
	case PhaseRead:
		return "read"
	case PhaseProcess:
		return "process"
	case PhaseClear:
		return "clear"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// DuplicateChildNameError is returned when AddChild is called with a name
// already present among a component's children.
type DuplicateChildNameError struct {
	Path string
	Name string
}

func (e *DuplicateChildNameError) Error() string {
	return fmt.Sprintf("component %q: duplicate child name %q", e.Path, e.Name)
}

// Node is implemented by every simulated component: registers, the ALU,
// memory, the controller, and the composite Computer itself. Most
// implementations get this for free by embedding *Base.
type Node interface {
	// Name returns this component's name, unique among its siblings.
	Name() string
	// Path returns the dotted path from the tree root to this component,
	// e.g. "alu.lhs.low".
	Path() string
	// SetParent installs p as this component's parent. Called by AddChild;
	// not normally called directly.
	SetParent(p Node)
	// Parent returns the parent component, or nil at the root.
	Parent() Node
	// Children returns the direct children of this component.
	Children() []Node
	// Controls returns every Control leaf anywhere in this subtree,
	// computed once and cached until invalidated.
	Controls() []*Control
	// Statuses returns every Status leaf anywhere in this subtree,
	// computed once and cached until invalidated.
	Statuses() []*Status
	// Tick runs this component's (and its subtree's) behavior for phase.
	Tick(phase Phase) error
	// Invalidate marks this component's cached Controls/Statuses stale and
	// propagates the invalidation up to the root.
	Invalidate()
}

// Base provides the tree bookkeeping (name, parent, children, path
// resolution, and cached control/status aggregation) shared by every
// concrete component. Embed it by value and call Init in the concrete
// type's constructor before using any other Base method.
type Base struct {
	self     Node
	name     string
	parent   Node
	children []Node
	byName   map[string]Node

	ownControls []*Control
	ownStatuses []*Status

	cacheValid     bool
	controlsCache  []*Control
	statusesCache  []*Status
}

// Init must be called once by a concrete component's constructor, passing
// the concrete value itself (self) so that Path/Invalidate/AddChild can
// address it polymorphically.
func (b *Base) Init(self Node, name string) {
	b.self = self
	b.name = name
	b.byName = make(map[string]Node)
}

// Name implements Node.
func (b *Base) Name() string { return b.name }

// Path implements Node.
func (b *Base) Path() string {
	if b.parent == nil {
		return b.name
	}
	return b.parent.Path() + "." + b.name
}

// SetParent implements Node.
func (b *Base) SetParent(p Node) { b.parent = p }

// Parent implements Node.
func (b *Base) Parent() Node { return b.parent }

// Children implements Node.
func (b *Base) Children() []Node {
	out := make([]Node, len(b.children))
	copy(out, b.children)
	return out
}

// AddChild attaches child under this component, erroring if the name is
// already taken by a sibling.
func (b *Base) AddChild(child Node) error {
	if _, ok := b.byName[child.Name()]; ok {
		return &DuplicateChildNameError{Path: b.Path(), Name: child.Name()}
	}
	if b.self == nil {
		panic("component.Base: Init must be called before AddChild")
	}
	child.SetParent(b.self)
	b.byName[child.Name()] = child
	b.children = append(b.children, child)
	b.Invalidate()
	return nil
}

// Child looks up a direct or dotted-path descendant by name, e.g.
// "lhs.low". Returns nil if no such descendant exists.
func (b *Base) Child(name string) Node {
	head, rest, found := cut(name, ".")
	child, ok := b.byName[head]
	if !ok {
		return nil
	}
	if !found {
		return child
	}
	if cb, ok := childBase(child); ok {
		return cb.Child(rest)
	}
	return nil
}

// childBase extracts the embedded *Base from a Node when possible, to
// support dotted-path traversal through arbitrary concrete component
// types without a type switch over every kind.
func childBase(n Node) (*Base, bool) {
	type baseHolder interface {
		baseRef() *Base
	}
	if h, ok := n.(baseHolder); ok {
		return h.baseRef(), true
	}
	return nil, false
}

// baseRef lets composite components that embed Base expose it for dotted
// path traversal via Child.
func (b *Base) baseRef() *Base { return b }

func cut(s, sep string) (before, after string, found bool) {
	for i := 0; i+len(sep) <= len(s); i++ {
		if s[i:i+len(sep)] == sep {
			return s[:i], s[i+len(sep):], true
		}
	}
	return s, "", false
}

// AddControl registers and returns a new Control owned directly by this
// component. If autoClear is false the control is sticky (retains its
// value across ticks) and gets a companion ".clear" sub-control which,
// when raised, forces it back to false at the end of the tick it was
// raised in.
func (b *Base) AddControl(name string, autoClear bool) *Control {
	c := &Control{owner: b, name: name, autoClear: autoClear}
	b.ownControls = append(b.ownControls, c)
	if !autoClear {
		c.clear = &Control{owner: b, name: name + ".clear", autoClear: true}
		b.ownControls = append(b.ownControls, c.clear)
	}
	b.Invalidate()
	return c
}

// AddStatus registers and returns a new Status owned directly by this
// component.
func (b *Base) AddStatus(name string) *Status {
	s := &Status{owner: b, name: name}
	b.ownStatuses = append(b.ownStatuses, s)
	b.Invalidate()
	return s
}

func (b *Base) ensureCache() {
	if b.cacheValid {
		return
	}
	controls := append([]*Control{}, b.ownControls...)
	statuses := append([]*Status{}, b.ownStatuses...)
	for _, c := range b.children {
		controls = append(controls, c.Controls()...)
		statuses = append(statuses, c.Statuses()...)
	}
	b.controlsCache = controls
	b.statusesCache = statuses
	b.cacheValid = true
}

// Controls implements Node.
func (b *Base) Controls() []*Control {
	b.ensureCache()
	return b.controlsCache
}

// Statuses implements Node.
func (b *Base) Statuses() []*Status {
	b.ensureCache()
	return b.statusesCache
}

// Invalidate implements Node.
func (b *Base) Invalidate() {
	b.cacheValid = false
	if b.parent != nil {
		b.parent.Invalidate()
	}
}

// TickChildren runs phase on every direct child, in order, stopping at the
// first error. Concrete components call this after handling their own
// phase-specific behavior.
func (b *Base) TickChildren(phase Phase) error {
	for _, c := range b.children {
		if err := c.Tick(phase); err != nil {
			return err
		}
	}
	return nil
}

// ClearOwnControls implements the PhaseClear behavior shared by every
// component: auto-clear controls drop to false every tick, and sticky
// controls drop to false only if their companion ".clear" control was
// raised this tick.
func (b *Base) ClearOwnControls() {
	for _, c := range b.ownControls {
		if c.autoClear {
			c.value = false
			continue
		}
		if c.clear != nil && c.clear.value {
			c.value = false
		}
	}
}

// Tick implements the default Node behavior for components that have no
// phase-specific logic of their own beyond clearing their controls and
// recursing into children (PhaseClear); all other phases simply recurse.
// Composite types with their own behavior implement Tick directly and call
// TickChildren/ClearOwnControls themselves.
func (b *Base) Tick(phase Phase) error {
	if phase == PhaseClear {
		b.ClearOwnControls()
	}
	return b.TickChildren(phase)
}

// Control is a named 1-bit signal. It is raised by the controller (or
// directly, for reference machines) and acted on by its owning component.
type Control struct {
	owner     *Base
	name      string
	value     bool
	autoClear bool
	clear     *Control
}

// Name returns the control's local name.
func (c *Control) Name() string { return c.name }

// Path returns the control's full dotted path, owner path + "." + name.
func (c *Control) Path() string { return c.owner.Path() + "." + c.name }

// Get returns the control's current value.
func (c *Control) Get() bool { return c.value }

// Set assigns the control's value directly.
func (c *Control) Set(v bool) { c.value = v }

// Raise is shorthand for Set(true), used by the controller when asserting
// signals.
func (c *Control) Raise() { c.value = true }

// AutoClear reports whether this control clears itself at the end of every
// tick (true) or is sticky and requires its Clear control (false).
func (c *Control) AutoClear() bool { return c.autoClear }

// Clear returns the companion clear sub-control for a sticky control, or
// nil if this control is itself auto-clearing.
func (c *Control) Clear() *Control { return c.clear }

// Status is a named 1-bit observable written by its producer (the ALU, a
// result analyzer, etc.) and read by the controller to select microcode.
type Status struct {
	owner *Base
	name  string
	value bool
}

// Name returns the status's local name.
func (s *Status) Name() string { return s.name }

// Path returns the status's full dotted path.
func (s *Status) Path() string { return s.owner.Path() + "." + s.name }

// Get returns the status's current value.
func (s *Status) Get() bool { return s.value }

// Set assigns the status's value; called by the producing component.
func (s *Status) Set(v bool) { s.value = v }
