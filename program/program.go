// Package program models an assembly-language program as a flat statement
// list — literals, labels, position directives, and mnemonic instructions —
// and a two-pass assembler that turns it into a sparse {Word -> Byte}
// memory image, consulting an instruction.Set solely to resolve
// (name, mode) -> opcode.
package program

import "github.com/jmchacon/microcode/instruction"

// Arg is an instruction operand: its addressing mode fixes the
// instruction's opcode lookup and its encoded size.
type Arg interface {
	Mode() instruction.Mode
	Size() int
	// Bytes returns the little-endian encoded operand, resolving any label
	// reference through resolve.
	Bytes(resolve func(label string) (uint16, error)) ([]byte, error)
}

type noneArg struct{}

func (noneArg) Mode() instruction.Mode { return instruction.NONE }
func (noneArg) Size() int              { return 0 }
func (noneArg) Bytes(func(string) (uint16, error)) ([]byte, error) {
	return nil, nil
}

// None is the argument for instructions that take no operand.
func None() Arg { return noneArg{} }

type byteArg struct {
	mode  instruction.Mode
	value uint8
}

func (a byteArg) Mode() instruction.Mode { return a.mode }
func (a byteArg) Size() int              { return 1 }
func (a byteArg) Bytes(func(string) (uint16, error)) ([]byte, error) {
	return []byte{a.value}, nil
}

// Immediate is an 8-bit literal operand encoded directly after the opcode.
func Immediate(v uint8) Arg { return byteArg{mode: instruction.IMMEDIATE, value: v} }

// ZeroPage is an 8-bit zero-page address operand.
func ZeroPage(v uint8) Arg { return byteArg{mode: instruction.ZERO_PAGE, value: v} }

type wordArg struct {
	mode  instruction.Mode
	value uint16
	label string
}

func (a wordArg) Mode() instruction.Mode { return a.mode }
func (a wordArg) Size() int              { return 2 }
func (a wordArg) Bytes(resolve func(string) (uint16, error)) ([]byte, error) {
	v := a.value
	if a.label != "" {
		resolved, err := resolve(a.label)
		if err != nil {
			return nil, err
		}
		v = resolved
	}
	return []byte{uint8(v), uint8(v >> 8)}, nil
}

// Absolute is a 16-bit literal address operand.
func Absolute(v uint16) Arg { return wordArg{mode: instruction.ABSOLUTE, value: v} }

// AbsoluteLabel is a 16-bit address operand resolved from a label at bind
// time.
func AbsoluteLabel(label string) Arg { return wordArg{mode: instruction.ABSOLUTE, label: label} }

// IndexX is a 16-bit base address operand, indexed by X at execution time.
func IndexX(v uint16) Arg { return wordArg{mode: instruction.INDEX_X, value: v} }

// IndexXLabel is an IndexX operand resolved from a label at bind time.
func IndexXLabel(label string) Arg { return wordArg{mode: instruction.INDEX_X, label: label} }

// IndexY is a 16-bit base address operand, indexed by Y at execution time.
func IndexY(v uint16) Arg { return wordArg{mode: instruction.INDEX_Y, value: v} }

// IndexYLabel is an IndexY operand resolved from a label at bind time.
func IndexYLabel(label string) Arg { return wordArg{mode: instruction.INDEX_Y, label: label} }

// Relative is a branch target, encoded as an absolute 16-bit address rather
// than a true 6502-style signed 8-bit displacement: this machine's
// microcode loads the program counter outright from the operand on a taken
// branch (see the branch steps in computer.ReferenceInstructionSet), so there is no
// relative-offset arithmetic to replicate.
func Relative(v uint16) Arg { return wordArg{mode: instruction.RELATIVE, value: v} }

// RelativeLabel is a Relative operand resolved from a label at bind time.
func RelativeLabel(label string) Arg { return wordArg{mode: instruction.RELATIVE, label: label} }

// Statement is one entry in a program's flat layout.
type Statement interface {
	isStatement()
}

// Literal emits its bytes verbatim at the current cursor.
type Literal struct {
	Bytes []byte
}

func (Literal) isStatement() {}

// Label records the current cursor position under name, without emitting
// any bytes.
type Label struct {
	Name string
}

func (Label) isStatement() {}

// At moves the layout cursor to an absolute position, without emitting any
// bytes.
type At struct {
	Position uint16
}

func (At) isStatement() {}

// Mnemonic emits one instruction: its opcode (resolved from name and the
// arg's addressing mode) followed by the arg's encoded bytes.
type Mnemonic struct {
	Name string
	Arg  Arg
}

func (Mnemonic) isStatement() {}

// Program is a statement list plus the instruction set its Mnemonics
// resolve opcodes against.
type Program struct {
	Statements []Statement
	Set        instruction.Set
}

// Builder fluently assembles a Program's statement list.
type Builder struct {
	set        instruction.Set
	statements []Statement
}

// NewBuilder returns a Builder producing programs against set.
func NewBuilder(set instruction.Set) *Builder {
	return &Builder{set: set}
}

// Label appends a label statement.
func (b *Builder) Label(name string) *Builder {
	b.statements = append(b.statements, Label{Name: name})
	return b
}

// At appends a position directive.
func (b *Builder) At(addr uint16) *Builder {
	b.statements = append(b.statements, At{Position: addr})
	return b
}

// Data appends a literal byte run.
func (b *Builder) Data(bytes ...byte) *Builder {
	b.statements = append(b.statements, Literal{Bytes: append([]byte{}, bytes...)})
	return b
}

// Instruction appends a mnemonic statement.
func (b *Builder) Instruction(name string, arg Arg) *Builder {
	b.statements = append(b.statements, Mnemonic{Name: name, Arg: arg})
	return b
}

// Build returns the finished Program. It performs no validation beyond
// what the statement list itself encodes; Assemble reports layout and
// binding errors.
func (b *Builder) Build() *Program {
	return &Program{Statements: b.statements, Set: b.set}
}
