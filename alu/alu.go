// Package alu implements the 9-operation combinational ALU: ADC, SBC, AND,
// OR, XOR, SHL, SHR, ROL, ROR, each driving the carry_out, zero, negative,
// overflow, and half_carry status outputs.
package alu

import (
	"math"
	"sort"

	"github.com/jmchacon/microcode/bus"
	"github.com/jmchacon/microcode/byteops"
	"github.com/jmchacon/microcode/component"
)

// Op identifies one ALU operation by name. The on-wire opcode for an Op is
// 1 + its index in the sorted operation-name order (see EncodeOpcode); 0 is
// reserved to mean "inactive".
type Op string

// The nine operations the ALU supports, named to match the ByteOps
// primitives they dispatch to.
const (
	OpAdc Op = "adc"
	OpSbc Op = "sbc"
	OpAnd Op = "and"
	OpOr  Op = "or"
	OpXor Op = "xor"
	OpShl Op = "shl"
	OpShr Op = "shr"
	OpRol Op = "rol"
	OpRor Op = "ror"
)

// Ops is the full, sorted operation set, fixing the opcode encoding used by
// both the ALU and the instruction-set builder.
var Ops = sortedOps([]Op{OpAdc, OpSbc, OpAnd, OpOr, OpXor, OpShl, OpShr, OpRol, OpRor})

func sortedOps(ops []Op) []Op {
	out := append([]Op{}, ops...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NumOpcodeBits returns ceil(log2(N+1)) control bits needed to encode N
// operations plus the inactive (0) opcode.
func NumOpcodeBits(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(n + 1))))
}

// EncodeOpcode returns the on-wire opcode for op: its 1-based index into
// Ops, or 0 if op is empty (inactive).
func EncodeOpcode(op Op) int {
	if op == "" {
		return 0
	}
	for i, o := range Ops {
		if o == op {
			return i + 1
		}
	}
	return 0
}

// DecodeOpcode returns the Op for an on-wire opcode, or "" for 0.
func DecodeOpcode(opcode int) Op {
	if opcode <= 0 || opcode > len(Ops) {
		return ""
	}
	return Ops[opcode-1]
}

// OpcodeControlName returns the name of the k'th opcode control bit.
func OpcodeControlName(k int) string {
	return "opcode_" + string(rune('0'+k))
}

// ALU is the combinational arithmetic/logic unit. lhs, rhs, and output are
// bus-addressable byte registers; carry_in is sticky (it keeps its value
// across ticks until its companion clear control is raised or an operation
// overwrites it with the produced carry); rhs_one forces rhs to 0x01 before the
// operation runs, used by increment/decrement instructions that need a
// constant operand without a dedicated literal register.
type ALU struct {
	component.Base
	bus *bus.Bus

	lhsWrite, lhsRead   *component.Control
	rhsWrite, rhsRead   *component.Control
	outWrite, outRead   *component.Control
	lhs, rhs, out       uint8

	rhsOne  *component.Control
	carryIn *component.Control
	opcode  []*component.Control

	carryOut  *component.Status
	zero      *component.Status
	negative  *component.Status
	overflow  *component.Status
	halfCarry *component.Status
}

// New creates an ALU named name, bus-addressable on b.
func New(name string, b *bus.Bus) *ALU {
	a := &ALU{bus: b}
	a.Base.Init(a, name)

	a.lhsWrite = a.AddControl("lhs.write", true)
	a.lhsRead = a.AddControl("lhs.read", true)
	a.rhsWrite = a.AddControl("rhs.write", true)
	a.rhsRead = a.AddControl("rhs.read", true)
	a.outWrite = a.AddControl("output.write", true)
	a.outRead = a.AddControl("output.read", true)

	a.rhsOne = a.AddControl("rhs_one", true)
	a.carryIn = a.AddControl("carry_in", false)

	bits := NumOpcodeBits(len(Ops))
	a.opcode = make([]*component.Control, bits)
	for i := 0; i < bits; i++ {
		a.opcode[i] = a.AddControl(OpcodeControlName(i), true)
	}

	a.carryOut = a.AddStatus("carry_out")
	a.zero = a.AddStatus("zero")
	a.negative = a.AddStatus("negative")
	a.overflow = a.AddStatus("overflow")
	a.halfCarry = a.AddStatus("half_carry")
	return a
}

// LHSWrite/LHSRead/RHSWrite/RHSRead/OutputWrite/OutputRead expose the bus
// pins of the three internal registers so a controller can wire operand
// loads and result stores.
func (a *ALU) LHSWrite() *component.Control    { return a.lhsWrite }
func (a *ALU) LHSRead() *component.Control     { return a.lhsRead }
func (a *ALU) RHSWrite() *component.Control    { return a.rhsWrite }
func (a *ALU) RHSRead() *component.Control     { return a.rhsRead }
func (a *ALU) OutputWrite() *component.Control { return a.outWrite }
func (a *ALU) OutputRead() *component.Control  { return a.outRead }

// RHSOne returns the control that forces rhs to 0x01 before the operation
// runs this tick.
func (a *ALU) RHSOne() *component.Control { return a.rhsOne }

// CarryIn returns the sticky carry-in control, which Tick(PhaseProcess)
// also rewrites with the produced carry so ADC/SBC chains correctly across
// multi-byte operands.
func (a *ALU) CarryIn() *component.Control { return a.carryIn }

// Opcode returns the control bits encoding which operation to run; index 0
// is the low bit.
func (a *ALU) Opcode() []*component.Control { return a.opcode }

// SetOp raises the opcode control bits to encode op.
func (a *ALU) SetOp(op Op) {
	encoded := EncodeOpcode(op)
	for i, c := range a.opcode {
		c.Set((encoded>>uint(i))&1 == 1)
	}
}

// CurrentOp decodes the opcode control bits back to an Op ("" if inactive).
func (a *ALU) CurrentOp() Op {
	v := 0
	for i, c := range a.opcode {
		if c.Get() {
			v |= 1 << uint(i)
		}
	}
	return DecodeOpcode(v)
}

// LHS, RHS, and Output expose the three internal register values directly,
// for tests and reference-machine wiring.
func (a *ALU) LHS() uint8    { return a.lhs }
func (a *ALU) RHS() uint8    { return a.rhs }
func (a *ALU) Output() uint8 { return a.out }

// SetLHS/SetRHS assign operand values directly, bypassing the bus.
func (a *ALU) SetLHS(v uint8) { a.lhs = v }
func (a *ALU) SetRHS(v uint8) { a.rhs = v }

// CarryOut, Zero, Negative, Overflow, and HalfCarry expose the status
// outputs for the controller's predicate lookups and for tests.
func (a *ALU) CarryOut() *component.Status  { return a.carryOut }
func (a *ALU) Zero() *component.Status      { return a.zero }
func (a *ALU) Negative() *component.Status  { return a.negative }
func (a *ALU) Overflow() *component.Status  { return a.overflow }
func (a *ALU) HalfCarry() *component.Status { return a.halfCarry }

// Tick implements component.Node.
func (a *ALU) Tick(phase component.Phase) error {
	switch phase {
	case component.PhaseWrite:
		if a.lhsWrite.Get() {
			if err := a.bus.Set(a.lhs, a.Path()+".lhs"); err != nil {
				return err
			}
		}
		if a.rhsWrite.Get() {
			if err := a.bus.Set(a.rhs, a.Path()+".rhs"); err != nil {
				return err
			}
		}
		if a.outWrite.Get() {
			if err := a.bus.Set(a.out, a.Path()+".output"); err != nil {
				return err
			}
		}
	case component.PhaseRead:
		if a.lhsRead.Get() {
			v, err := a.bus.ReadFor(a.Path() + ".lhs")
			if err != nil {
				return err
			}
			a.lhs = v
		}
		if a.rhsRead.Get() {
			v, err := a.bus.ReadFor(a.Path() + ".rhs")
			if err != nil {
				return err
			}
			a.rhs = v
		}
		if a.rhsOne.Get() {
			a.rhs = 0x01
		}
		if a.outRead.Get() {
			v, err := a.bus.ReadFor(a.Path() + ".output")
			if err != nil {
				return err
			}
			a.out = v
		}
	case component.PhaseProcess:
		if op := a.CurrentOp(); op != "" {
			res := apply(op, a.lhs, a.rhs, a.carryIn.Get())
			a.out = res.Value
			a.carryOut.Set(res.Carry)
			a.zero.Set(res.Zero)
			a.negative.Set(res.Negative)
			a.overflow.Set(res.Overflow)
			a.halfCarry.Set(res.HalfCarry)
			a.carryIn.Set(res.Carry)
		}
	case component.PhaseClear:
		a.ClearOwnControls()
	}
	return a.TickChildren(phase)
}

func apply(op Op, lhs, rhs uint8, carryIn bool) byteops.FlagResult {
	switch op {
	case OpAdc:
		return byteops.Add(lhs, rhs, carryIn)
	case OpSbc:
		return byteops.Sub(lhs, rhs, carryIn)
	case OpAnd:
		return byteops.And(lhs, rhs, carryIn)
	case OpOr:
		return byteops.Or(lhs, rhs, carryIn)
	case OpXor:
		return byteops.Xor(lhs, rhs, carryIn)
	case OpShl:
		return byteops.Shl(lhs, carryIn)
	case OpShr:
		return byteops.Shr(lhs, carryIn)
	case OpRol:
		return byteops.Rol(lhs, carryIn)
	case OpRor:
		return byteops.Ror(lhs, carryIn)
	default:
		return byteops.FlagResult{}
	}
}
