// Package computer assembles the full machine: Memory, ProgramCounter,
// Controller, ALU, StackPointer, and the user-visible A/X/Y registers, all
// sharing one Bus, driven one instruction at a time by the five-phase tick
// pipeline.
package computer

import (
	"github.com/jmchacon/microcode/alu"
	"github.com/jmchacon/microcode/bus"
	"github.com/jmchacon/microcode/component"
	"github.com/jmchacon/microcode/controller"
	"github.com/jmchacon/microcode/instruction"
	"github.com/jmchacon/microcode/irq"
	"github.com/jmchacon/microcode/memory"
	"github.com/jmchacon/microcode/microcode"
	"github.com/jmchacon/microcode/register"
	"github.com/jmchacon/microcode/statusregister"
)

// stackPage is the fixed high byte of every stack address, matching the
// reference machine's single-page stack convention.
const stackPage = 0x01

// Computer is the root of the component tree: a Memory, ProgramCounter,
// Controller, ALU, StackPointer, three user registers (A, X, Y), and a
// halt control, all addressable on one shared Bus.
type Computer struct {
	component.Base
	bus *bus.Bus

	ProgramCounter *register.ProgramCounter
	Memory         *memory.Memory
	Controller     *controller.Controller
	ALU            *alu.ALU
	StackPointer   *register.StackPointer
	Operand        *register.WordRegister
	A, X, Y        *register.Register

	halt *component.Control
}

// New builds a Computer wired to run set, compiling set's microcode once at
// construction.
func New(name string, set instruction.Set) (*Computer, error) {
	c := &Computer{bus: bus.New()}
	c.Base.Init(c, name)

	pc, err := register.NewProgramCounter("program_counter", c.bus)
	if err != nil {
		return nil, err
	}
	c.ProgramCounter = pc
	if err := c.AddChild(pc); err != nil {
		return nil, err
	}

	mem, err := memory.New("memory", c.bus)
	if err != nil {
		return nil, err
	}
	c.Memory = mem
	if err := c.AddChild(mem); err != nil {
		return nil, err
	}

	a := alu.New("alu", c.bus)
	c.ALU = a
	if err := c.AddChild(a); err != nil {
		return nil, err
	}

	sp, err := register.NewStackPointer("stack_pointer", c.bus, stackPage)
	if err != nil {
		return nil, err
	}
	c.StackPointer = sp
	if err := c.AddChild(sp); err != nil {
		return nil, err
	}

	operand, err := register.NewWordRegister("operand", c.bus)
	if err != nil {
		return nil, err
	}
	c.Operand = operand
	if err := c.AddChild(operand); err != nil {
		return nil, err
	}

	c.A = register.New("a", c.bus)
	if err := c.AddChild(c.A); err != nil {
		return nil, err
	}
	c.X = register.New("x", c.bus)
	if err := c.AddChild(c.X); err != nil {
		return nil, err
	}
	c.Y = register.New("y", c.bus)
	if err := c.AddChild(c.Y); err != nil {
		return nil, err
	}

	format := statusregister.Format{
		a.Negative().Path(): 7,
		a.Overflow().Path(): 6,
		a.Zero().Path():     1,
		a.CarryOut().Path(): 0,
	}

	rom, err := microcode.Assemble(set)
	if err != nil {
		return nil, err
	}

	ctl, err := controller.New("controller", c.bus, rom, c, format)
	if err != nil {
		return nil, err
	}
	c.Controller = ctl
	if err := c.AddChild(ctl); err != nil {
		return nil, err
	}
	ctl.SetRoot(c)

	c.halt = c.AddControl("halt", false)

	return c, nil
}

// Halt returns the sticky control the HLT instruction's microcode raises.
func (c *Computer) Halt() *component.Control { return c.halt }

// Load installs a memory image, typically the output of
// (*program.Program).Assemble, into the computer's memory.
func (c *Computer) Load(image map[uint16]uint8) {
	c.Memory.Load(image)
}

// Cycle runs the five phases, in order, across the whole component tree,
// then wipes the bus. It returns the first error any component's phase
// handler reports; the machine is left inspectable but not further
// steppable after an error.
//
// This is deliberately not named Tick: Computer embeds component.Base and
// must keep Base's promoted Tick(phase component.Phase) error to satisfy
// component.Node (it is passed as statusRoot to controller.New and as its
// own root via SetRoot) — a same-named method here would shadow it instead
// of overriding it, since the two signatures differ.
func (c *Computer) Cycle() error {
	for _, phase := range component.Phases {
		if err := c.Base.Tick(phase); err != nil {
			return err
		}
	}
	c.bus.Clear()
	return nil
}

// TickUntilHalt runs Cycle until the halt control is observed set. If
// watchdog is non-nil, it is ticked once per cycle and consulted after
// every tick; if it reports Raised(), TickUntilHalt aborts with
// *irq.HaltTimeoutError rather than looping forever on a runaway program.
func (c *Computer) TickUntilHalt(watchdog *irq.Watchdog) error {
	for !c.halt.Get() {
		if err := c.Cycle(); err != nil {
			return err
		}
		if watchdog != nil {
			watchdog.Tick()
			if watchdog.Raised() {
				return &irq.HaltTimeoutError{Ticks: watchdog.Ticks()}
			}
		}
	}
	return nil
}
