// Package memory implements the 16-bit addressable byte store, bus-mediated
// at the address latched into its internal address register.
package memory

import (
	"github.com/jmchacon/microcode/bus"
	"github.com/jmchacon/microcode/component"
	"github.com/jmchacon/microcode/register"
)

// Memory owns a WordRegister address and a sparse data store: a partial map
// of address -> byte, matching the program model's memory image. Absent
// addresses read as 0x00.
type Memory struct {
	component.Base
	bus     *bus.Bus
	Address *register.WordRegister
	data    map[uint16]uint8

	write *component.Control
	read  *component.Control
}

// New creates a Memory named name, bus-addressable on b.
func New(name string, b *bus.Bus) (*Memory, error) {
	m := &Memory{bus: b, data: make(map[uint16]uint8)}
	m.Base.Init(m, name)
	addr, err := register.NewWordRegister("address", b)
	if err != nil {
		return nil, err
	}
	m.Address = addr
	if err := m.AddChild(m.Address); err != nil {
		return nil, err
	}
	m.write = m.AddControl("write", true)
	m.read = m.AddControl("read", true)
	return m, nil
}

// Write returns the control which, when asserted during PhaseWrite, drives
// the byte at the latched address onto the bus.
func (m *Memory) Write() *component.Control { return m.write }

// Read returns the control which, when asserted during PhaseRead, latches
// the bus into the byte at the latched address.
func (m *Memory) Read() *component.Control { return m.read }

// At returns the byte stored at addr, or 0x00 if never written.
func (m *Memory) At(addr uint16) uint8 { return m.data[addr] }

// SetAt writes value directly into the store, bypassing the bus. Used by
// Load and by tests asserting on post-halt memory contents.
func (m *Memory) SetAt(addr uint16, value uint8) { m.data[addr] = value }

// Load bulk-installs a memory image, typically the output of
// (*program.Program).Assemble, overwriting any existing contents at the
// given addresses.
func (m *Memory) Load(image map[uint16]uint8) {
	for addr, v := range image {
		m.data[addr] = v
	}
}

// Tick implements component.Node.
func (m *Memory) Tick(phase component.Phase) error {
	switch phase {
	case component.PhaseWrite:
		if m.write.Get() {
			addr := m.Address.Value()
			if err := m.bus.Set(m.data[addr], m.Path()); err != nil {
				return err
			}
		}
	case component.PhaseRead:
		if m.read.Get() {
			v, err := m.bus.ReadFor(m.Path())
			if err != nil {
				return err
			}
			m.data[m.Address.Value()] = v
		}
	case component.PhaseClear:
		m.ClearOwnControls()
	}
	return m.TickChildren(phase)
}
