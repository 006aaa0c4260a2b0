// Package disassembler turns a byte image back into readable mnemonics, one
// instruction at a time. Unlike a fixed 6502 disassembler it carries no
// opcode table of its own: it indexes the instruction.Set it is built from,
// so it decodes images assembled against that same set. Bytes are always
// decoded with that set's opcodes, whichever set produced them.
package disassembler

import (
	"fmt"
	"strings"

	"github.com/jmchacon/microcode/instruction"
	"github.com/jmchacon/microcode/memory"
)

type opcodeEntry struct {
	name string
	mode instruction.Mode
}

// Table is a decoded opcode -> (mnemonic, mode) index built once from an
// instruction.Set and reused across a whole disassembly run.
type Table struct {
	entries map[uint8]opcodeEntry
}

// New indexes set's opcodes for repeated Step calls.
func New(set instruction.Set) *Table {
	t := &Table{entries: make(map[uint8]opcodeEntry)}
	for _, ins := range set.Instructions {
		for _, mode := range ins.Modes {
			t.entries[mode.Opcode] = opcodeEntry{name: ins.Name, mode: mode.Mode}
		}
	}
	return t
}

// operandSize returns the number of operand bytes an addressing mode
// encodes, matching program.Arg.Size for every mode the package defines.
func operandSize(mode instruction.Mode) int {
	switch mode {
	case instruction.NONE:
		return 0
	case instruction.IMMEDIATE, instruction.ZERO_PAGE:
		return 1
	case instruction.ABSOLUTE, instruction.INDEX_X, instruction.INDEX_Y, instruction.RELATIVE:
		return 2
	default:
		return 0
	}
}

func formatOperand(mode instruction.Mode, operand []byte) string {
	switch mode {
	case instruction.NONE:
		return ""
	case instruction.IMMEDIATE:
		return fmt.Sprintf("#$%.2X", operand[0])
	case instruction.ZERO_PAGE:
		return fmt.Sprintf("$%.2X", operand[0])
	case instruction.ABSOLUTE, instruction.RELATIVE:
		return fmt.Sprintf("$%.2X%.2X", operand[1], operand[0])
	case instruction.INDEX_X:
		return fmt.Sprintf("$%.2X%.2X,X", operand[1], operand[0])
	case instruction.INDEX_Y:
		return fmt.Sprintf("$%.2X%.2X,Y", operand[1], operand[0])
	default:
		return ""
	}
}

// Step decodes the instruction at pc, returning its disassembly and the
// number of bytes (1 plus the operand size) the caller should advance pc
// by to reach the next instruction. It never follows jumps or branches; a
// byte run containing data rather than code disassembles as whatever
// mnemonics its bytes happen to decode to.
func (t *Table) Step(pc uint16, mem *memory.Memory) (string, int) {
	opcode := mem.At(pc)
	entry, ok := t.entries[opcode]
	if !ok {
		return fmt.Sprintf("%.4X  %.2X         .byte $%.2X", pc, opcode, opcode), 1
	}

	size := operandSize(entry.mode)
	operand := make([]byte, size)
	for i := 0; i < size; i++ {
		operand[i] = mem.At(pc + 1 + uint16(i))
	}

	hex := make([]string, 0, size+1)
	hex = append(hex, fmt.Sprintf("%.2X", opcode))
	for _, b := range operand {
		hex = append(hex, fmt.Sprintf("%.2X", b))
	}
	for len(hex) < 3 {
		hex = append(hex, "  ")
	}

	mnemonic := strings.ToUpper(entry.name)
	arg := formatOperand(entry.mode, operand)
	if arg != "" {
		mnemonic += " " + arg
	}

	return fmt.Sprintf("%.4X  %s   %s", pc, strings.Join(hex, " "), mnemonic), 1 + size
}

// Disassemble walks mem from start up to (but not including) end, one
// instruction at a time, returning a line per decoded instruction.
func (t *Table) Disassemble(mem *memory.Memory, start, end uint16) []string {
	var lines []string
	pc := start
	for pc < end {
		line, n := t.Step(pc, mem)
		lines = append(lines, line)
		pc += uint16(n)
	}
	return lines
}
