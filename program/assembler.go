package program

import (
	"fmt"

	"github.com/jmchacon/microcode/instruction"
)

// DuplicateLabelError is returned when two Label statements share a name.
type DuplicateLabelError struct {
	Name string
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("duplicate label %q", e.Name)
}

// LabelNotFoundError is returned when an Arg references a label no Label
// statement declares.
type LabelNotFoundError struct {
	Name string
}

func (e *LabelNotFoundError) Error() string {
	return fmt.Sprintf("label %q not found", e.Name)
}

// DuplicatePositionError is returned when two statements write overlapping
// bytes.
type DuplicatePositionError struct {
	Position uint16
}

func (e *DuplicatePositionError) Error() string {
	return fmt.Sprintf("position 0x%.4X written more than once", e.Position)
}

// InstructionNotFoundError is returned when a Mnemonic names an instruction
// absent from the program's instruction set.
type InstructionNotFoundError struct {
	Name string
}

func (e *InstructionNotFoundError) Error() string {
	return fmt.Sprintf("instruction %q not found", e.Name)
}

// InstructionModeNotFoundError is returned when a Mnemonic's instruction
// exists but does not support the arg's addressing mode.
type InstructionModeNotFoundError struct {
	Name string
	Mode instruction.Mode
}

func (e *InstructionModeNotFoundError) Error() string {
	return fmt.Sprintf("instruction %q has no %s addressing mode", e.Name, e.Mode)
}

// layoutEntry is one statement's resolved cursor position, computed in
// Pass A and consumed in Pass B.
type layoutEntry struct {
	statement Statement
	position  uint16
}

// Assemble runs the two-pass assembler: Pass A walks the statement list
// tracking a layout cursor and resolving label positions; Pass B looks up
// opcodes and writes the final {Word -> Byte} memory image.
func (p *Program) Assemble() (map[uint16]uint8, error) {
	entries, labels, err := p.layout()
	if err != nil {
		return nil, err
	}
	return p.bind(entries, labels)
}

func (p *Program) layout() ([]layoutEntry, map[string]uint16, error) {
	labels := map[string]uint16{}
	entries := make([]layoutEntry, 0, len(p.Statements))
	var cursor uint16

	for _, stmt := range p.Statements {
		switch s := stmt.(type) {
		case Literal:
			entries = append(entries, layoutEntry{statement: s, position: cursor})
			cursor += uint16(len(s.Bytes))
		case Label:
			if _, ok := labels[s.Name]; ok {
				return nil, nil, &DuplicateLabelError{Name: s.Name}
			}
			labels[s.Name] = cursor
			entries = append(entries, layoutEntry{statement: s, position: cursor})
		case At:
			cursor = s.Position
			entries = append(entries, layoutEntry{statement: s, position: cursor})
		case Mnemonic:
			entries = append(entries, layoutEntry{statement: s, position: cursor})
			cursor += uint16(1 + s.Arg.Size())
		}
	}
	return entries, labels, nil
}

func (p *Program) bind(entries []layoutEntry, labels map[string]uint16) (map[uint16]uint8, error) {
	mem := map[uint16]uint8{}
	written := map[uint16]bool{}

	resolve := func(name string) (uint16, error) {
		addr, ok := labels[name]
		if !ok {
			return 0, &LabelNotFoundError{Name: name}
		}
		return addr, nil
	}

	write := func(addr uint16, value uint8) error {
		if written[addr] {
			return &DuplicatePositionError{Position: addr}
		}
		written[addr] = true
		mem[addr] = value
		return nil
	}

	for _, e := range entries {
		switch s := e.statement.(type) {
		case Literal:
			for i, b := range s.Bytes {
				if err := write(e.position+uint16(i), b); err != nil {
					return nil, err
				}
			}
		case Label, At:
			// No bytes emitted.
		case Mnemonic:
			ins, ok := p.Set.InstructionByName(s.Name)
			if !ok {
				return nil, &InstructionNotFoundError{Name: s.Name}
			}
			mode, ok := ins.ModeFor(s.Arg.Mode())
			if !ok {
				return nil, &InstructionModeNotFoundError{Name: s.Name, Mode: s.Arg.Mode()}
			}
			if err := write(e.position, mode.Opcode); err != nil {
				return nil, err
			}
			argBytes, err := s.Arg.Bytes(resolve)
			if err != nil {
				return nil, err
			}
			for i, b := range argBytes {
				if err := write(e.position+uint16(1+i), b); err != nil {
					return nil, err
				}
			}
		}
	}
	return mem, nil
}
