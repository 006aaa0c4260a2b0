package instruction

// Builder fluently constructs an instruction.Set. Each level of the model
// (Instruction -> Mode -> Impl -> Step) gets its own builder type returned
// by an explicit method name, so "begin a child" (Instruction/Mode/Impl)
// is never confused with "add an atom" (Step) the way an overloaded,
// argument-count-dispatched API would allow.
type Builder struct {
	instructions []Instruction
	header       []Step
	footer       Step
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{footer: Step{}}
}

// Header sets the steps prepended to every instruction's microcode
// (typically the fetch sequence). Calling Header again replaces the
// previous header rather than appending to it.
func (b *Builder) Header(steps ...Step) *Builder {
	b.header = append([]Step{}, steps...)
	return b
}

// Footer sets the controls unioned into every instruction's last step
// (typically step_counter.reset and status.latch). Calling Footer again
// replaces the previous footer.
func (b *Builder) Footer(controls ...string) *Builder {
	b.footer = NewStep(controls...)
	return b
}

// Instruction begins building a named Instruction, returning a child
// builder. Call End on the result to resume this Builder.
func (b *Builder) Instruction(name string) *InstructionBuilder {
	return &InstructionBuilder{parent: b, name: name}
}

// Build validates and returns the finished Set.
func (b *Builder) Build() (Set, error) {
	s := Set{Instructions: b.instructions, Header: b.header, Footer: b.footer}
	if err := s.Validate(); err != nil {
		return Set{}, err
	}
	return s, nil
}

// InstructionBuilder accumulates the addressing modes of one Instruction.
type InstructionBuilder struct {
	parent *Builder
	name   string
	modes  []AddressingMode
}

// Mode begins building one addressing-mode variant of this instruction,
// given its opcode. Call End on the result to resume this
// InstructionBuilder.
func (ib *InstructionBuilder) Mode(mode Mode, opcode uint8) *ModeBuilder {
	return &ModeBuilder{parent: ib, mode: mode, opcode: opcode}
}

// End finalizes this instruction and returns the parent Builder.
func (ib *InstructionBuilder) End() *Builder {
	ib.parent.instructions = append(ib.parent.instructions, Instruction{Name: ib.name, Modes: ib.modes})
	return ib.parent
}

// ModeBuilder accumulates the status-predicated Impls of one addressing
// mode.
type ModeBuilder struct {
	parent *InstructionBuilder
	mode   Mode
	opcode uint8
	impls  []Impl
}

// Impl begins building one concrete step sequence for this mode, selected
// by the given (possibly empty/partial) status predicate. Call End on the
// result to resume this ModeBuilder.
func (mb *ModeBuilder) Impl(statuses map[string]bool) *ImplBuilder {
	return &ImplBuilder{parent: mb, statuses: statuses}
}

// End finalizes this addressing mode and returns the parent
// InstructionBuilder.
func (mb *ModeBuilder) End() *InstructionBuilder {
	mb.parent.modes = append(mb.parent.modes, AddressingMode{Mode: mb.mode, Opcode: mb.opcode, Impls: mb.impls})
	return mb.parent
}

// ImplBuilder accumulates the ordered Steps of one Impl.
type ImplBuilder struct {
	parent   *ModeBuilder
	statuses map[string]bool
	steps    []Step
}

// Step appends one microcode cycle's control set.
func (ib *ImplBuilder) Step(controls ...string) *ImplBuilder {
	ib.steps = append(ib.steps, NewStep(controls...))
	return ib
}

// End finalizes this Impl and returns the parent ModeBuilder.
func (ib *ImplBuilder) End() *ModeBuilder {
	ib.parent.impls = append(ib.parent.impls, Impl{Statuses: ib.statuses, Steps: ib.steps})
	return ib.parent
}
