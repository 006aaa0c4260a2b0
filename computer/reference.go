package computer

import (
	"github.com/jmchacon/microcode/alu"
	"github.com/jmchacon/microcode/instruction"
)

// RootName is the component name every reference Computer is built with.
// ReferenceInstructionSet's microcode hardcodes control paths rooted at
// this name, so NewMinimalComputer always constructs with it.
const RootName = "computer"

func path(parts ...string) string {
	out := RootName
	for _, p := range parts {
		out += "." + p
	}
	return out
}

var (
	pcLowWrite    = path("program_counter", "low", "write")
	pcHighWrite   = path("program_counter", "high", "write")
	pcLowRead     = path("program_counter", "low", "read")
	pcHighRead    = path("program_counter", "high", "read")
	pcIncrement   = path("program_counter", "increment")
	memAddrLoRead = path("memory", "address", "low", "read")
	memAddrHiRead = path("memory", "address", "high", "read")
	memWrite      = path("memory", "write")
	memRead       = path("memory", "read")
	ibufRead      = path("controller", "instruction_buffer", "read")
	stepReset     = path("controller", "step_counter", "reset")
	statusLatch   = path("controller", "status", "latch")

	opdLowWrite  = path("operand", "low", "write")
	opdHighWrite = path("operand", "high", "write")
	opdLowRead   = path("operand", "low", "read")
	opdHighRead  = path("operand", "high", "read")

	spLowWrite  = path("stack_pointer", "low", "write")
	spHighWrite = path("stack_pointer", "high", "write")
	spIncrement = path("stack_pointer", "increment")
	spDecrement = path("stack_pointer", "decrement")

	aluLhsRead    = path("alu", "lhs", "read")
	aluRhsRead    = path("alu", "rhs", "read")
	aluRhsOne     = path("alu", "rhs_one")
	aluCarryIn    = path("alu", "carry_in")
	aluOutWrite   = path("alu", "output", "write")

	aWrite = path("a", "write")
	aRead  = path("a", "read")
	xWrite = path("x", "write")
	xRead  = path("x", "read")
	yWrite = path("y", "write")
	yRead  = path("y", "read")

	statusWrite = path("controller", "status", "write")
	statusRead  = path("controller", "status", "read")

	haltPath = path("halt")
)

func aluOpControls(op alu.Op) []string {
	n := alu.EncodeOpcode(op)
	bits := alu.NumOpcodeBits(len(alu.Ops))
	var controls []string
	for i := 0; i < bits; i++ {
		if (n>>uint(i))&1 == 1 {
			controls = append(controls, path("alu", alu.OpcodeControlName(i)))
		}
	}
	return controls
}

// fetchPCByteSteps emits the three-cycle sequence that loads the byte at
// the current program counter into dest (a control path such as
// "computer.a.read") and advances the program counter by one.
func fetchPCByteSteps(dest string) []instruction.Step {
	return []instruction.Step{
		instruction.NewStep(pcLowWrite, memAddrLoRead),
		instruction.NewStep(pcHighWrite, memAddrHiRead),
		instruction.NewStep(memWrite, dest, pcIncrement),
	}
}

// loadAddressFromOperand transfers the two-byte operand register into
// memory's address register.
func loadAddressFromOperand() []instruction.Step {
	return []instruction.Step{
		instruction.NewStep(opdLowWrite, memAddrLoRead),
		instruction.NewStep(opdHighWrite, memAddrHiRead),
	}
}

// transferOperandToPC transfers the operand register into the program
// counter, the shared tail of JMP, JSR, RTS, and taken branches.
func transferOperandToPC() []instruction.Step {
	return []instruction.Step{
		instruction.NewStep(opdLowWrite, pcLowRead),
		instruction.NewStep(opdHighWrite, pcHighRead),
	}
}

// pushByteSteps stores the byte driven by src onto the stack and decrements
// the stack pointer.
func pushByteSteps(src string) []instruction.Step {
	return []instruction.Step{
		instruction.NewStep(spLowWrite, memAddrLoRead),
		instruction.NewStep(spHighWrite, memAddrHiRead),
		instruction.NewStep(src, memRead),
		instruction.NewStep(spDecrement),
	}
}

// popByteSteps advances the stack pointer back up and latches the
// retrieved byte into dest.
func popByteSteps(dest string) []instruction.Step {
	return []instruction.Step{
		instruction.NewStep(spIncrement),
		instruction.NewStep(spLowWrite, memAddrLoRead),
		instruction.NewStep(spHighWrite, memAddrHiRead),
		instruction.NewStep(memWrite, dest),
	}
}

func concat(groups ...[]instruction.Step) []instruction.Step {
	var out []instruction.Step
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// ReferenceInstructionSet builds the library's default mnemonic surface: a
// small accumulator-based instruction set exercising every addressing mode
// and microcode pattern the machine supports. It is the set
// NewMinimalComputer assembles its ROM from.
func ReferenceInstructionSet() (instruction.Set, error) {
	b := instruction.NewBuilder().
		Header(
			instruction.NewStep(pcLowWrite, memAddrLoRead),
			instruction.NewStep(pcHighWrite, memAddrHiRead),
			instruction.NewStep(memWrite, ibufRead, pcIncrement),
		).
		Footer(stepReset, statusLatch)

	opcode := uint8(0x00)
	next := func() uint8 {
		v := opcode
		opcode++
		return v
	}

	// hlt: assert halt, no operand.
	b.Instruction("hlt").Mode(instruction.NONE, next()).
		Impl(nil).Step(haltPath).End().
		End().End()

	// nop: no-op cycle.
	b.Instruction("nop").Mode(instruction.NONE, next()).
		Impl(nil).Step(path("controller", "step_counter", "increment")).End().
		End().End()

	// Register transfers: tax, txa, tay, tya.
	transfer := func(name, from, to string) {
		ib := b.Instruction(name).Mode(instruction.NONE, next())
		impl := ib.Impl(nil)
		impl.Step(from, to)
		impl.End()
		ib.End().End()
	}
	transfer("tax", aWrite, xRead)
	transfer("txa", xWrite, aRead)
	transfer("tay", aWrite, yRead)
	transfer("tya", yWrite, aRead)

	// Immediate loads: lda, ldx, ldy.
	load := func(name, dest string) {
		ib := b.Instruction(name).Mode(instruction.IMMEDIATE, next())
		impl := ib.Impl(nil)
		for _, s := range fetchPCByteSteps(dest) {
			impl.Step(stepControls(s)...)
		}
		impl.End()
		ib.End().End()
	}
	load("lda", aRead)
	load("ldx", xRead)
	load("ldy", yRead)

	// Absolute stores: sta, stx, sty.
	store := func(name, src string) {
		ib := b.Instruction(name).Mode(instruction.ABSOLUTE, next())
		impl := ib.Impl(nil)
		for _, s := range concat(
			fetchPCByteSteps(opdLowRead),
			fetchPCByteSteps(opdHighRead),
			loadAddressFromOperand(),
			[]instruction.Step{instruction.NewStep(src, memRead)},
		) {
			impl.Step(stepControls(s)...)
		}
		impl.End()
		ib.End().End()
	}
	store("sta", aWrite)
	store("stx", xWrite)
	store("sty", yWrite)

	// jmp: absolute, unconditional.
	{
		ib := b.Instruction("jmp").Mode(instruction.ABSOLUTE, next())
		impl := ib.Impl(nil)
		for _, s := range concat(
			fetchPCByteSteps(opdLowRead),
			fetchPCByteSteps(opdHighRead),
			transferOperandToPC(),
		) {
			impl.Step(stepControls(s)...)
		}
		impl.End()
		ib.End().End()
	}

	// sec/clc: set/clear the ALU's sticky carry flag.
	{
		ib := b.Instruction("sec").Mode(instruction.NONE, next())
		ib.Impl(nil).Step(aluCarryIn).End()
		ib.End().End()
	}
	{
		ib := b.Instruction("clc").Mode(instruction.NONE, next())
		ib.Impl(nil).Step(aluCarryIn + ".clear").End()
		ib.End().End()
	}

	// Binary ALU ops on A with an immediate operand: adc, sbc, and, ora, eor.
	binaryOp := func(name string, op alu.Op) {
		ib := b.Instruction(name).Mode(instruction.IMMEDIATE, next())
		impl := ib.Impl(nil)
		impl.Step(aWrite, aluLhsRead)
		fetch := fetchPCByteSteps(aluRhsRead)
		last := fetch[len(fetch)-1]
		fetch[len(fetch)-1] = last.Union(instruction.NewStep(aluOpControls(op)...))
		for _, s := range fetch {
			impl.Step(stepControls(s)...)
		}
		impl.Step(aluOutWrite, aRead)
		impl.End()
		ib.End().End()
	}
	binaryOp("adc", alu.OpAdc)
	binaryOp("sbc", alu.OpSbc)
	binaryOp("and", alu.OpAnd)
	binaryOp("ora", alu.OpOr)
	binaryOp("eor", alu.OpXor)

	// Unary ALU ops on A: asl, lsr, rol, ror.
	unaryOp := func(name string, op alu.Op) {
		ib := b.Instruction(name).Mode(instruction.NONE, next())
		impl := ib.Impl(nil)
		impl.Step(aWrite, aluLhsRead)
		impl.Step(aluOpControls(op)...)
		impl.Step(aluOutWrite, aRead)
		impl.End()
		ib.End().End()
	}
	unaryOp("asl", alu.OpShl)
	unaryOp("lsr", alu.OpShr)
	unaryOp("rol", alu.OpRol)
	unaryOp("ror", alu.OpRor)

	// inc/dec on A: +1/-1 via the ALU's rhs_one operand, without disturbing
	// the fetch pipeline. Increments clear carry_in in the operand-load step
	// so the ADC-by-one never adds a leftover carry.
	incdec := func(name, reg string, op alu.Op, forceCarry bool) {
		ib := b.Instruction(name).Mode(instruction.NONE, next())
		impl := ib.Impl(nil)
		if forceCarry {
			impl.Step(reg+".write", aluLhsRead)
		} else {
			impl.Step(reg+".write", aluLhsRead, aluCarryIn+".clear")
		}
		controls := append([]string{aluRhsOne}, aluOpControls(op)...)
		if forceCarry {
			controls = append(controls, aluCarryIn)
		}
		impl.Step(controls...)
		impl.Step(aluOutWrite, reg+".read")
		impl.End()
		ib.End().End()
	}
	incdec("inc", path("a"), alu.OpAdc, false)
	incdec("dec", path("a"), alu.OpSbc, true)
	incdec("inx", path("x"), alu.OpAdc, false)
	incdec("dex", path("x"), alu.OpSbc, true)
	incdec("iny", path("y"), alu.OpAdc, false)
	incdec("dey", path("y"), alu.OpSbc, true)

	// cmp: SBC against an immediate operand, discarding the result.
	{
		ib := b.Instruction("cmp").Mode(instruction.IMMEDIATE, next())
		impl := ib.Impl(nil)
		impl.Step(aWrite, aluLhsRead)
		fetch := fetchPCByteSteps(aluRhsRead)
		last := fetch[len(fetch)-1]
		fetch[len(fetch)-1] = last.Union(instruction.NewStep(aluCarryIn)).Union(instruction.NewStep(aluOpControls(alu.OpSbc)...))
		for _, s := range fetch {
			impl.Step(stepControls(s)...)
		}
		impl.End()
		ib.End().End()
	}

	// Conditional branches: fetch the absolute target always (so the
	// program counter ends past the operand either way), then transfer it
	// into the program counter only when the predicate holds.
	branch := func(name, status string, takenWhen bool) {
		ib := b.Instruction(name).Mode(instruction.RELATIVE, next())

		fetch := concat(fetchPCByteSteps(opdLowRead), fetchPCByteSteps(opdHighRead))

		takenImpl := ib.Impl(map[string]bool{status: takenWhen})
		for _, s := range concat(fetch, transferOperandToPC()) {
			takenImpl.Step(stepControls(s)...)
		}
		takenImpl.End()

		notTakenImpl := ib.Impl(map[string]bool{status: !takenWhen})
		for _, s := range fetch {
			notTakenImpl.Step(stepControls(s)...)
		}
		notTakenImpl.End()

		ib.End().End()
	}
	branch("beq", path("alu", "zero"), true)
	branch("bne", path("alu", "zero"), false)
	branch("bmi", path("alu", "negative"), true)
	branch("bpl", path("alu", "negative"), false)
	branch("bcs", path("alu", "carry_out"), true)
	branch("bcc", path("alu", "carry_out"), false)
	branch("bvs", path("alu", "overflow"), true)
	branch("bvc", path("alu", "overflow"), false)

	// Stack ops: pha, pla, php, plp.
	{
		ib := b.Instruction("pha").Mode(instruction.NONE, next())
		impl := ib.Impl(nil)
		for _, s := range pushByteSteps(aWrite) {
			impl.Step(stepControls(s)...)
		}
		impl.End()
		ib.End().End()
	}
	{
		ib := b.Instruction("pla").Mode(instruction.NONE, next())
		impl := ib.Impl(nil)
		for _, s := range popByteSteps(aRead) {
			impl.Step(stepControls(s)...)
		}
		impl.End()
		ib.End().End()
	}
	{
		ib := b.Instruction("php").Mode(instruction.NONE, next())
		impl := ib.Impl(nil)
		for _, s := range pushByteSteps(statusWrite) {
			impl.Step(stepControls(s)...)
		}
		impl.End()
		ib.End().End()
	}
	{
		ib := b.Instruction("plp").Mode(instruction.NONE, next())
		impl := ib.Impl(nil)
		for _, s := range popByteSteps(statusRead) {
			impl.Step(stepControls(s)...)
		}
		impl.End()
		ib.End().End()
	}

	// jsr: fetch the target, push the return address (already advanced
	// past the operand), then jump.
	{
		ib := b.Instruction("jsr").Mode(instruction.ABSOLUTE, next())
		impl := ib.Impl(nil)
		for _, s := range concat(
			fetchPCByteSteps(opdLowRead),
			fetchPCByteSteps(opdHighRead),
			pushByteSteps(pcHighWrite),
			pushByteSteps(pcLowWrite),
			transferOperandToPC(),
		) {
			impl.Step(stepControls(s)...)
		}
		impl.End()
		ib.End().End()
	}

	// rts: pop the return address pushed by jsr and jump to it.
	{
		ib := b.Instruction("rts").Mode(instruction.NONE, next())
		impl := ib.Impl(nil)
		for _, s := range concat(
			popByteSteps(opdLowRead),
			popByteSteps(opdHighRead),
			transferOperandToPC(),
		) {
			impl.Step(stepControls(s)...)
		}
		impl.End()
		ib.End().End()
	}

	return b.Build()
}

func stepControls(s instruction.Step) []string {
	return s.Controls()
}
