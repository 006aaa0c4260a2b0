package program

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/jmchacon/microcode/instruction"
)

func testSet(t *testing.T) instruction.Set {
	t.Helper()
	set, err := instruction.NewBuilder().
		Instruction("lda").
		Mode(instruction.IMMEDIATE, 0xA9).
		Impl(nil).Step("noop").End().
		End().End().
		Instruction("sta").
		Mode(instruction.ABSOLUTE, 0x8D).
		Impl(nil).Step("noop").End().
		End().End().
		Instruction("hlt").
		Mode(instruction.NONE, 0x00).
		Impl(nil).Step("halt").End().
		End().End().
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func TestAssembleLiteralAndInstruction(t *testing.T) {
	set := testSet(t)
	prog := NewBuilder(set).
		Instruction("lda", Immediate(0x03)).
		Instruction("hlt", None()).
		Build()

	mem, err := prog.Assemble()
	if err != nil {
		t.Fatal(err)
	}
	want := map[uint16]uint8{0x0000: 0xA9, 0x0001: 0x03, 0x0002: 0x00}
	if diff := deep.Equal(mem, want); diff != nil {
		t.Errorf("Assemble() diff: %v", diff)
	}
}

func TestAssembleLabelResolution(t *testing.T) {
	set := testSet(t)
	prog := NewBuilder(set).
		Instruction("lda", Immediate(0xAB)).
		Instruction("sta", AbsoluteLabel("target")).
		Instruction("hlt", None()).
		Label("target").
		Data(0x00).
		Build()

	mem, err := prog.Assemble()
	if err != nil {
		t.Fatal(err)
	}
	// lda #$AB (2 bytes) + sta abs (3 bytes) + hlt (1 byte) = target at 0x0006.
	if mem[0x0002] != 0x8D {
		t.Fatalf("sta opcode at 0x0002 = 0x%X, want 0x8D", mem[0x0002])
	}
	if mem[0x0003] != 0x06 || mem[0x0004] != 0x00 {
		t.Fatalf("resolved label bytes = (0x%X, 0x%X), want (0x06, 0x00)", mem[0x0003], mem[0x0004])
	}
	if mem[0x0006] != 0x00 {
		t.Fatalf("mem[0x0006] = 0x%X, want 0x00", mem[0x0006])
	}
}

func TestAssembleAtDirective(t *testing.T) {
	set := testSet(t)
	prog := NewBuilder(set).
		At(0x1000).
		Data(0xFF).
		Build()

	mem, err := prog.Assemble()
	if err != nil {
		t.Fatal(err)
	}
	if mem[0x1000] != 0xFF {
		t.Fatalf("mem[0x1000] = 0x%X, want 0xFF", mem[0x1000])
	}
}

func TestDuplicateLabelRejected(t *testing.T) {
	set := testSet(t)
	prog := NewBuilder(set).
		Label("a").
		Label("a").
		Build()
	if _, err := prog.Assemble(); err == nil {
		t.Fatal("expected DuplicateLabelError")
	}
}

func TestLabelNotFoundRejected(t *testing.T) {
	set := testSet(t)
	prog := NewBuilder(set).
		Instruction("sta", AbsoluteLabel("nowhere")).
		Build()
	if _, err := prog.Assemble(); err == nil {
		t.Fatal("expected LabelNotFoundError")
	}
}

func TestDuplicatePositionRejected(t *testing.T) {
	set := testSet(t)
	prog := NewBuilder(set).
		At(0x0000).
		Data(0x01).
		At(0x0000).
		Data(0x02).
		Build()
	if _, err := prog.Assemble(); err == nil {
		t.Fatal("expected DuplicatePositionError")
	}
}

func TestInstructionNotFoundRejected(t *testing.T) {
	set := testSet(t)
	prog := NewBuilder(set).
		Instruction("nope", None()).
		Build()
	if _, err := prog.Assemble(); err == nil {
		t.Fatal("expected InstructionNotFoundError")
	}
}

func TestInstructionModeNotFoundRejected(t *testing.T) {
	set := testSet(t)
	prog := NewBuilder(set).
		Instruction("lda", None()).
		Build()
	if _, err := prog.Assemble(); err == nil {
		t.Fatal("expected InstructionModeNotFoundError")
	}
}

func TestAssembleIsPositionDeterministic(t *testing.T) {
	set := testSet(t)
	build := func() (map[uint16]uint8, error) {
		return NewBuilder(set).
			Instruction("lda", Immediate(0x10)).
			Instruction("sta", AbsoluteLabel("end")).
			Label("end").
			Data(0x00).
			Build().
			Assemble()
	}
	a, err := build()
	if err != nil {
		t.Fatal(err)
	}
	b, err := build()
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(a, b); diff != nil {
		t.Errorf("two assemblies diverged: %v", diff)
	}
}
