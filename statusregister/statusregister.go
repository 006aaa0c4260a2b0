// Package statusregister implements the flag byte a controller predicates
// its microcode lookups on: a Register extended with a Format mapping
// named statuses to bit positions, latched from the live component tree on
// demand.
package statusregister

import (
	"fmt"
	"sort"

	"github.com/jmchacon/microcode/bus"
	"github.com/jmchacon/microcode/component"
)

// Format is an injective partial map from status path to bit index
// (0..7). Users may supply alternative layouts; the only constraints are
// injectivity and 0 <= bit < 8.
type Format map[string]int

// DefaultFormat mirrors the 6502 P-register bit layout: negative in bit 7,
// overflow in bit 6, zero in bit 1, carry in bit 0. Bits 2-5 are unused by
// the reference machine's ALU status set.
func DefaultFormat() Format {
	return Format{
		"alu.negative": 7,
		"alu.overflow": 6,
		"alu.zero":     1,
		"alu.carry_out": 0,
	}
}

// StatusIndexOutOfRangeError is returned by New's format validation when a
// bit index falls outside 0..7.
type StatusIndexOutOfRangeError struct {
	Status string
	Bit    int
}

func (e *StatusIndexOutOfRangeError) Error() string {
	return fmt.Sprintf("status %q: bit index %d out of range 0..7", e.Status, e.Bit)
}

// DuplicateControlBitError is returned when two statuses in a Format map to
// the same bit index.
type DuplicateControlBitError struct {
	Bit      int
	Statuses []string
}

func (e *DuplicateControlBitError) Error() string {
	return fmt.Sprintf("bit %d assigned to multiple statuses: %v", e.Bit, e.Statuses)
}

// MissingStatusError is returned when a Format names a status path that
// does not resolve against the live component tree at latch time.
type MissingStatusError struct {
	Status string
}

func (e *MissingStatusError) Error() string {
	return fmt.Sprintf("status %q not found in component tree", e.Status)
}

func (f Format) validate() error {
	byBit := map[int][]string{}
	for status, bit := range f {
		if bit < 0 || bit > 7 {
			return &StatusIndexOutOfRangeError{Status: status, Bit: bit}
		}
		byBit[bit] = append(byBit[bit], status)
	}
	for bit, statuses := range byBit {
		if len(statuses) > 1 {
			sort.Strings(statuses)
			return &DuplicateControlBitError{Bit: bit, Statuses: statuses}
		}
	}
	return nil
}

// StatusRegister is a byte Register plus a Format. Its latch control is
// sticky (see component.Control): on PhaseClear, if latch is set, it packs
// every status named in the format into a byte per the bit map and stores
// that as its value, then the latch auto-clears via its companion clear
// pulse.
type StatusRegister struct {
	component.Base
	bus   *bus.Bus
	value uint8

	write *component.Control
	read  *component.Control
	reset *component.Control
	latch *component.Control

	format Format
	root   component.Node
}

// New creates a StatusRegister named name, bus-addressable on b, reading
// statuses off of root (the component tree's root, or any ancestor whose
// subtree contains every status the format names). format is validated for
// injectivity and in-range bits before the register is returned.
func New(name string, b *bus.Bus, root component.Node, format Format) (*StatusRegister, error) {
	if err := format.validate(); err != nil {
		return nil, err
	}
	s := &StatusRegister{bus: b, format: format, root: root}
	s.Base.Init(s, name)
	s.write = s.AddControl("write", true)
	s.read = s.AddControl("read", true)
	s.reset = s.AddControl("reset", true)
	s.latch = s.AddControl("latch", false)
	return s, nil
}

// Value returns the register's current byte.
func (s *StatusRegister) Value() uint8 { return s.value }

// SetValue assigns the register's byte directly, bypassing the bus.
func (s *StatusRegister) SetValue(v uint8) { s.value = v }

// Write returns the write control.
func (s *StatusRegister) Write() *component.Control { return s.write }

// Read returns the read control.
func (s *StatusRegister) Read() *component.Control { return s.read }

// Reset returns the reset control.
func (s *StatusRegister) Reset() *component.Control { return s.reset }

// StatusValues decodes the currently-latched byte back into a
// status-path -> bool map per the format, the same shape an Impl predicate
// is matched against.
func (s *StatusRegister) StatusValues() map[string]bool {
	out := make(map[string]bool, len(s.format))
	v := s.Value()
	for status, bit := range s.format {
		out[status] = (v>>uint(bit))&1 == 1
	}
	return out
}

// Format returns the register's bit layout.
func (s *StatusRegister) Format() Format { return s.format }

// Latch returns the sticky latch control.
func (s *StatusRegister) Latch() *component.Control { return s.latch }

// findStatus resolves a dotted status path against root's subtree.
func findStatus(root component.Node, path string) *component.Status {
	for _, st := range root.Statuses() {
		if st.Path() == path {
			return st
		}
	}
	return nil
}

// Tick implements component.Node. On PhaseClear, if latch is asserted,
// every status named in the format is resolved against root and packed
// into the register's value before controls clear, unless read was also
// asserted this tick — an instruction that explicitly loads the register
// off the bus (e.g. PLP restoring a pushed flag byte) wins over the
// blanket per-instruction relatch instead of being immediately clobbered
// by it.
func (s *StatusRegister) Tick(phase component.Phase) error {
	if phase == component.PhaseClear && s.latch.Get() {
		if !s.read.Get() {
			var packed uint8
			for status, bit := range s.format {
				st := findStatus(s.root, status)
				if st == nil {
					return &MissingStatusError{Status: status}
				}
				if st.Get() {
					packed |= 1 << uint(bit)
				}
			}
			s.SetValue(packed)
		}
		s.latch.Clear().Raise()
	}
	switch phase {
	case component.PhaseWrite:
		if s.write.Get() {
			if err := s.bus.Set(s.value, s.Path()); err != nil {
				return err
			}
		}
	case component.PhaseRead:
		if s.read.Get() {
			v, err := s.bus.ReadFor(s.Path())
			if err != nil {
				return err
			}
			s.value = v
		}
	case component.PhaseProcess:
		if s.reset.Get() {
			s.value = 0
		}
	case component.PhaseClear:
		s.ClearOwnControls()
	}
	return s.TickChildren(phase)
}
