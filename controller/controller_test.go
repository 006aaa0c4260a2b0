package controller

import (
	"testing"

	"github.com/jmchacon/microcode/bus"
	"github.com/jmchacon/microcode/component"
	"github.com/jmchacon/microcode/instruction"
	"github.com/jmchacon/microcode/microcode"
	"github.com/jmchacon/microcode/register"
	"github.com/jmchacon/microcode/statusregister"
)

// harness wires a Controller plus a plain target register under a fake
// root, the way Computer will in the full machine: controller's own
// Controls()/Statuses() plus the target register's, all reachable from
// root.
type harness struct {
	component.Base
	Controller *Controller
	Target     *register.Register
}

func newHarness(t *testing.T, rom *microcode.ROM) (*harness, *bus.Bus) {
	t.Helper()
	b := bus.New()
	h := &harness{}
	h.Base.Init(h, "root")

	target := register.New("target", b)
	if err := h.AddChild(target); err != nil {
		t.Fatal(err)
	}
	h.Target = target

	ctl, err := New("controller", b, rom, h, statusregister.Format{})
	if err != nil {
		t.Fatal(err)
	}
	if err := h.AddChild(ctl); err != nil {
		t.Fatal(err)
	}
	ctl.SetRoot(h)
	h.Controller = ctl
	return h, b
}

func tickAll(t *testing.T, h *harness) {
	t.Helper()
	for _, p := range component.Phases {
		if err := h.Tick(p); err != nil {
			t.Fatalf("Tick(%v): %v", p, err)
		}
	}
}

func TestControllerRaisesROMControls(t *testing.T) {
	set, err := instruction.NewBuilder().
		Instruction("settarget").
		Mode(instruction.NONE, 0x01).
		Impl(nil).
		Step("root.target.reset").
		End().
		End().End().
		Build()
	if err != nil {
		t.Fatal(err)
	}
	rom, err := microcode.Assemble(set)
	if err != nil {
		t.Fatal(err)
	}

	h, _ := newHarness(t, rom)
	h.Target.SetValue(0x42)
	h.Controller.InstructionBuffer.SetValue(0x01)

	tickAll(t, h)

	if h.Target.Value() != 0 {
		t.Errorf("target.Value() = 0x%X, want 0 (reset control should have been raised)", h.Target.Value())
	}
	if h.Controller.StepCounter.Value() != 1 {
		t.Errorf("step_counter = %d, want 1", h.Controller.StepCounter.Value())
	}
}

func TestControllerMissingControlError(t *testing.T) {
	set, err := instruction.NewBuilder().
		Instruction("bad").
		Mode(instruction.NONE, 0x01).
		Impl(nil).
		Step("does.not.exist").
		End().
		End().End().
		Build()
	if err != nil {
		t.Fatal(err)
	}
	rom, err := microcode.Assemble(set)
	if err != nil {
		t.Fatal(err)
	}

	h, _ := newHarness(t, rom)
	h.Controller.InstructionBuffer.SetValue(0x01)

	err = h.Tick(component.PhaseControl)
	if _, ok := err.(*MissingControlError); !ok {
		t.Fatalf("Tick(PhaseControl) err = %v (%T), want *MissingControlError", err, err)
	}
}

func TestControllerMissErrorOnUnknownOpcode(t *testing.T) {
	set, err := instruction.NewBuilder().
		Instruction("only").
		Mode(instruction.NONE, 0x01).
		Impl(nil).
		Step("root.target.reset").
		End().
		End().End().
		Build()
	if err != nil {
		t.Fatal(err)
	}
	rom, err := microcode.Assemble(set)
	if err != nil {
		t.Fatal(err)
	}

	h, _ := newHarness(t, rom)
	h.Controller.InstructionBuffer.SetValue(0xFF)

	err = h.Tick(component.PhaseControl)
	if _, ok := err.(*microcode.MissError); !ok {
		t.Fatalf("Tick(PhaseControl) err = %v (%T), want *microcode.MissError", err, err)
	}
}

func TestControllerStepCounterAdvancesAcrossTicks(t *testing.T) {
	set, err := instruction.NewBuilder().
		Instruction("multi").
		Mode(instruction.NONE, 0x01).
		Impl(nil).
		Step("root.target.reset").
		Step("root.target.write").
		End().
		End().End().
		Build()
	if err != nil {
		t.Fatal(err)
	}
	rom, err := microcode.Assemble(set)
	if err != nil {
		t.Fatal(err)
	}

	h, _ := newHarness(t, rom)
	h.Controller.InstructionBuffer.SetValue(0x01)

	tickAll(t, h)
	if h.Controller.StepCounter.Value() != 1 {
		t.Fatalf("step_counter after tick 1 = %d, want 1", h.Controller.StepCounter.Value())
	}
	tickAll(t, h)
	if h.Controller.StepCounter.Value() != 2 {
		t.Fatalf("step_counter after tick 2 = %d, want 2", h.Controller.StepCounter.Value())
	}
}
