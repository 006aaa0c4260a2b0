// Package controller implements the microcoded Controller: each tick it
// looks up the asserted controls for the current (opcode, status bits,
// step index) from a compiled microcode.ROM, raises them against the live
// component tree, and advances the step counter.
package controller

import (
	"fmt"

	"github.com/jmchacon/microcode/bus"
	"github.com/jmchacon/microcode/component"
	"github.com/jmchacon/microcode/microcode"
	"github.com/jmchacon/microcode/register"
	"github.com/jmchacon/microcode/statusregister"
)

// MissingControlError is returned when a ROM entry names a control path
// that does not resolve against the live component tree.
type MissingControlError struct {
	Path string
}

func (e *MissingControlError) Error() string {
	return fmt.Sprintf("controller: control %q not found in component tree", e.Path)
}

// MissingStatusError is returned when the ROM's statuses_index names a
// status path that does not resolve against the live component tree.
type MissingStatusError struct {
	Path string
}

func (e *MissingStatusError) Error() string {
	return fmt.Sprintf("controller: status %q not found in component tree", e.Path)
}

// Controller owns the step counter, the instruction buffer (the latched
// opcode), the status register, and the compiled ROM those three index
// into.
type Controller struct {
	component.Base
	bus *bus.Bus

	StepCounter       *register.Counter
	InstructionBuffer *register.Register
	Status            *statusregister.StatusRegister

	rom  *microcode.ROM
	root component.Node
}

// New creates a Controller named name, bus-addressable on b, driven by
// rom. statusRoot and format are forwarded to statusregister.New to build
// the controller's own status register. Root (the full component tree's
// root, used to resolve control/status paths at tick time) must be
// supplied via SetRoot once the whole tree is assembled — the controller
// is itself part of that tree, so it cannot know its root at construction
// time.
func New(name string, b *bus.Bus, rom *microcode.ROM, statusRoot component.Node, format statusregister.Format) (*Controller, error) {
	c := &Controller{bus: b, rom: rom}
	c.Base.Init(c, name)

	c.StepCounter = register.NewCounter("step_counter", b)
	if err := c.AddChild(c.StepCounter); err != nil {
		return nil, err
	}
	c.InstructionBuffer = register.New("instruction_buffer", b)
	if err := c.AddChild(c.InstructionBuffer); err != nil {
		return nil, err
	}
	status, err := statusregister.New("status", b, statusRoot, format)
	if err != nil {
		return nil, err
	}
	c.Status = status
	if err := c.AddChild(c.Status); err != nil {
		return nil, err
	}
	return c, nil
}

// SetRoot installs the component-tree root the controller resolves
// control and status paths against.
func (c *Controller) SetRoot(root component.Node) { c.root = root }

// ROM returns the compiled microcode table this controller drives from.
func (c *Controller) ROM() *microcode.ROM { return c.rom }

func findControl(root component.Node, path string) *component.Control {
	for _, ctl := range root.Controls() {
		if ctl.Path() == path {
			return ctl
		}
	}
	return nil
}

func findStatus(root component.Node, path string) *component.Status {
	for _, st := range root.Statuses() {
		if st.Path() == path {
			return st
		}
	}
	return nil
}

// Tick implements component.Node. On PhaseControl it decodes the current
// (opcode, status bits, step index) address, raises every control the ROM
// names for it, and asserts the step counter's increment so the next tick
// advances to the next step (unless this step's controls reset the
// counter back to 0, starting the next instruction).
func (c *Controller) Tick(phase component.Phase) error {
	if phase == component.PhaseControl {
		for _, name := range c.rom.StatusesIndex {
			if findStatus(c.root, name) == nil {
				return &MissingStatusError{Path: name}
			}
		}
		opcode := c.InstructionBuffer.Value()
		step := int(c.StepCounter.Value())
		statuses := c.Status.StatusValues()
		controls, err := c.rom.Get(opcode, statuses, step)
		if err != nil {
			return err
		}
		for _, path := range controls {
			ctl := findControl(c.root, path)
			if ctl == nil {
				return &MissingControlError{Path: path}
			}
			ctl.Raise()
		}
		c.StepCounter.Increment().Raise()
	}
	if phase == component.PhaseClear {
		c.ClearOwnControls()
	}
	return c.TickChildren(phase)
}
