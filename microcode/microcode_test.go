package microcode

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/jmchacon/microcode/instruction"
)

func TestAddressEncodingBitExact(t *testing.T) {
	rom := &ROM{
		StatusesIndex: []string{"alu.carry_out", "alu.zero"},
		StepBits:      2,
	}
	// opcode=0x05, statuses: carry_out(bit0)=true, zero(bit1)=false -> status_word=0b01=1
	// step=3
	got := rom.Address(0x05, map[string]bool{"alu.carry_out": true}, 3)
	want := uint32(0x05)<<4 | uint32(1)<<2 | uint32(3)
	if got != want {
		t.Errorf("Address() = 0x%X, want 0x%X", got, want)
	}
}

func TestAssembleSimpleSet(t *testing.T) {
	set, err := instruction.NewBuilder().
		Footer("step_counter.reset").
		Instruction("nop").
		Mode(instruction.NONE, 0xEA).
		Impl(nil).
		Step("noop_signal").
		End().End().End().
		Build()
	if err != nil {
		t.Fatal(err)
	}
	rom, err := Assemble(set)
	if err != nil {
		t.Fatal(err)
	}
	got, err := rom.Get(0xEA, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"noop_signal", "step_counter.reset"}
	if diff := deep.Equal(got, want); diff != nil {
		t.Errorf("Get() diff: %v", diff)
	}
}

func TestDontCareExpansion(t *testing.T) {
	set, err := instruction.NewBuilder().
		Instruction("beq").
		Mode(instruction.RELATIVE, 0xF0).
		Impl(map[string]bool{"alu.zero": true}).
		Step("pc.load").
		End().
		Impl(map[string]bool{"alu.zero": false}).
		Step("pc.skip").
		End().
		End().End().
		Instruction("other").
		Mode(instruction.NONE, 0x01).
		Impl(map[string]bool{"alu.carry_out": true}).
		Step("a").
		End().
		Impl(map[string]bool{"alu.carry_out": false}).
		Step("b").
		End().
		End().End().
		Build()
	if err != nil {
		t.Fatal(err)
	}
	rom, err := Assemble(set)
	if err != nil {
		t.Fatal(err)
	}
	// beq's impl only mentions alu.zero, but the whole set also mentions
	// alu.carry_out (via "other"), so beq's entries must exist for every
	// combination of carry_out as a don't-care.
	for _, carry := range []bool{true, false} {
		got, err := rom.Get(0xF0, map[string]bool{"alu.zero": true, "alu.carry_out": carry}, 0)
		if err != nil {
			t.Fatalf("Get(zero=true,carry=%v): %v", carry, err)
		}
		if len(got) != 1 || got[0] != "pc.load" {
			t.Errorf("Get(zero=true,carry=%v) = %v, want [pc.load]", carry, got)
		}
	}
}

func TestDuplicateAddressDetected(t *testing.T) {
	set, err := instruction.NewBuilder().
		Instruction("x").
		Mode(instruction.NONE, 0x01).
		Impl(map[string]bool{"s": true}).
		Step("a").
		End().
		Impl(nil). // don't-care covers s=true too -> conflicts
		Step("b").
		End().
		End().End().
		Build()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Assemble(set); err == nil {
		t.Fatal("expected DuplicateAddressError")
	}
}

func TestStepBitsSizing(t *testing.T) {
	tests := []struct {
		max  int
		want int
	}{
		{0, 0}, {1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {8, 3},
	}
	for _, tc := range tests {
		if got := stepBits(tc.max); got != tc.want {
			t.Errorf("stepBits(%d) = %d, want %d", tc.max, got, tc.want)
		}
	}
}
