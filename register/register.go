// Package register implements the byte- and word-wide storage components
// that read and write the shared bus: Register, WordRegister, Counter,
// ProgramCounter, and StackPointer.
package register

import (
	"github.com/jmchacon/microcode/bus"
	"github.com/jmchacon/microcode/component"
)

// Register is an 8-bit storage cell with write/read/reset control pins.
// During PhaseWrite, if write is asserted it drives its value onto the
// bus. During PhaseRead, if read is asserted it latches the bus. During
// PhaseProcess, if reset is asserted its value becomes 0.
type Register struct {
	component.Base
	bus   *bus.Bus
	value uint8

	write *component.Control
	read  *component.Control
	reset *component.Control
}

// New creates a Register named name, bus-addressable on b. Callers
// typically follow with a call to some parent's AddChild to place it in
// the component tree.
func New(name string, b *bus.Bus) *Register {
	r := &Register{bus: b}
	r.Base.Init(r, name)
	r.write = r.AddControl("write", true)
	r.read = r.AddControl("read", true)
	r.reset = r.AddControl("reset", true)
	return r
}

// Value returns the register's current contents.
func (r *Register) Value() uint8 { return r.value }

// SetValue assigns the register's contents directly, bypassing the bus.
// Used by tests and by the word-wide registers' SetValue to seed state.
func (r *Register) SetValue(v uint8) { r.value = v }

// Write returns the write control, for the controller or a reference
// machine to assert.
func (r *Register) Write() *component.Control { return r.write }

// Read returns the read control.
func (r *Register) Read() *component.Control { return r.read }

// Reset returns the reset control.
func (r *Register) Reset() *component.Control { return r.reset }

// Tick implements component.Node.
func (r *Register) Tick(phase component.Phase) error {
	switch phase {
	case component.PhaseWrite:
		if r.write.Get() {
			if err := r.bus.Set(r.value, r.Path()); err != nil {
				return err
			}
		}
	case component.PhaseRead:
		if r.read.Get() {
			v, err := r.bus.ReadFor(r.Path())
			if err != nil {
				return err
			}
			r.value = v
		}
	case component.PhaseProcess:
		if r.reset.Get() {
			r.value = 0
		}
	case component.PhaseClear:
		r.ClearOwnControls()
	}
	return r.TickChildren(phase)
}

// WordRegister composes two Registers, named "low" and "high", into a
// 16-bit value: (high<<8)|low. The byte pair follows little-endian order.
type WordRegister struct {
	component.Base
	Low  *Register
	High *Register
}

// NewWordRegister creates a WordRegister named name, with "low" and "high"
// byte children addressable on b.
func NewWordRegister(name string, b *bus.Bus) (*WordRegister, error) {
	w := &WordRegister{}
	w.Base.Init(w, name)
	w.Low = New("low", b)
	w.High = New("high", b)
	if err := w.AddChild(w.Low); err != nil {
		return nil, err
	}
	if err := w.AddChild(w.High); err != nil {
		return nil, err
	}
	return w, nil
}

// Value returns the composed 16-bit value.
func (w *WordRegister) Value() uint16 {
	return uint16(w.High.Value())<<8 | uint16(w.Low.Value())
}

// SetValue assigns the composed 16-bit value, splitting it into the low
// and high byte registers.
func (w *WordRegister) SetValue(v uint16) {
	w.Low.SetValue(uint8(v))
	w.High.SetValue(uint8(v >> 8))
}

// Tick implements component.Node; WordRegister has no phase behavior of
// its own beyond recursing into its byte halves.
func (w *WordRegister) Tick(phase component.Phase) error {
	if phase == component.PhaseClear {
		w.ClearOwnControls()
	}
	return w.TickChildren(phase)
}

// Counter extends Register with an increment control that adds 1 during
// PhaseProcess, unless reset is also asserted (reset wins).
type Counter struct {
	Register
	increment *component.Control
}

// NewCounter creates a byte-wide Counter named name.
func NewCounter(name string, b *bus.Bus) *Counter {
	c := &Counter{}
	c.Register.bus = b
	c.Base.Init(c, name)
	c.write = c.AddControl("write", true)
	c.read = c.AddControl("read", true)
	c.reset = c.AddControl("reset", true)
	c.increment = c.AddControl("increment", true)
	return c
}

// Increment returns the increment control.
func (c *Counter) Increment() *component.Control { return c.increment }

// Tick implements component.Node.
func (c *Counter) Tick(phase component.Phase) error {
	switch phase {
	case component.PhaseWrite:
		if c.write.Get() {
			if err := c.bus.Set(c.value, c.Path()); err != nil {
				return err
			}
		}
	case component.PhaseRead:
		if c.read.Get() {
			v, err := c.bus.ReadFor(c.Path())
			if err != nil {
				return err
			}
			c.value = v
		}
	case component.PhaseProcess:
		if c.reset.Get() {
			c.value = 0
		} else if c.increment.Get() {
			c.value++
		}
	case component.PhaseClear:
		c.ClearOwnControls()
	}
	return c.TickChildren(phase)
}

// ProgramCounter is a WordRegister with a 16-bit increment control,
// advancing the full word (wrapping at 0xFFFF) rather than just the low
// byte.
type ProgramCounter struct {
	component.Base
	Low       *Register
	High      *Register
	increment *component.Control
	reset     *component.Control
}

// NewProgramCounter creates a ProgramCounter named name.
func NewProgramCounter(name string, b *bus.Bus) (*ProgramCounter, error) {
	p := &ProgramCounter{}
	p.Base.Init(p, name)
	p.Low = New("low", b)
	p.High = New("high", b)
	if err := p.AddChild(p.Low); err != nil {
		return nil, err
	}
	if err := p.AddChild(p.High); err != nil {
		return nil, err
	}
	p.increment = p.AddControl("increment", true)
	p.reset = p.AddControl("reset", true)
	return p, nil
}

// Value returns the current 16-bit program counter value.
func (p *ProgramCounter) Value() uint16 {
	return uint16(p.High.Value())<<8 | uint16(p.Low.Value())
}

// SetValue assigns the 16-bit program counter value.
func (p *ProgramCounter) SetValue(v uint16) {
	p.Low.SetValue(uint8(v))
	p.High.SetValue(uint8(v >> 8))
}

// Increment returns the control which, when asserted, advances the
// program counter by one during PhaseProcess.
func (p *ProgramCounter) Increment() *component.Control { return p.increment }

// Reset returns the control which zeros the program counter during
// PhaseProcess.
func (p *ProgramCounter) Reset() *component.Control { return p.reset }

// Tick implements component.Node.
func (p *ProgramCounter) Tick(phase component.Phase) error {
	if phase == component.PhaseProcess {
		if p.reset.Get() {
			p.SetValue(0)
		} else if p.increment.Get() {
			p.SetValue(p.Value() + 1)
		}
	}
	if phase == component.PhaseClear {
		p.ClearOwnControls()
	}
	return p.TickChildren(phase)
}

// StackPointer is a WordRegister whose high byte is fixed at construction
// (conventionally 0x01, matching 6502 stack-page semantics) and whose
// increment/decrement controls act only on the low byte, wrapping within
// the page rather than crossing into the next one.
type StackPointer struct {
	component.Base
	Low       *Register
	High      *Register
	increment *component.Control
	decrement *component.Control
}

// NewStackPointer creates a StackPointer named name with its high byte
// fixed to page.
func NewStackPointer(name string, b *bus.Bus, page uint8) (*StackPointer, error) {
	s := &StackPointer{}
	s.Base.Init(s, name)
	s.Low = New("low", b)
	s.High = New("high", b)
	s.High.SetValue(page)
	if err := s.AddChild(s.Low); err != nil {
		return nil, err
	}
	if err := s.AddChild(s.High); err != nil {
		return nil, err
	}
	s.increment = s.AddControl("increment", true)
	s.decrement = s.AddControl("decrement", true)
	return s, nil
}

// Value returns the current 16-bit stack address.
func (s *StackPointer) Value() uint16 {
	return uint16(s.High.Value())<<8 | uint16(s.Low.Value())
}

// Increment returns the control which, when asserted, advances the low
// byte by one during PhaseProcess (wraps within the page).
func (s *StackPointer) Increment() *component.Control { return s.increment }

// Decrement returns the control which, when asserted, retreats the low
// byte by one during PhaseProcess (wraps within the page).
func (s *StackPointer) Decrement() *component.Control { return s.decrement }

// Tick implements component.Node.
func (s *StackPointer) Tick(phase component.Phase) error {
	if phase == component.PhaseProcess {
		if s.increment.Get() {
			s.Low.SetValue(s.Low.Value() + 1)
		}
		if s.decrement.Get() {
			s.Low.SetValue(s.Low.Value() - 1)
		}
	}
	if phase == component.PhaseClear {
		s.ClearOwnControls()
	}
	return s.TickChildren(phase)
}
