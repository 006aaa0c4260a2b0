package component

import "testing"

type leaf struct {
	Base
}

func newLeaf(name string) *leaf {
	l := &leaf{}
	l.Base.Init(l, name)
	return l
}

func TestPathReflectsTreeNesting(t *testing.T) {
	root := newLeaf("root")
	child := newLeaf("child")
	if err := root.AddChild(child); err != nil {
		t.Fatal(err)
	}
	if got, want := child.Path(), "root.child"; got != want {
		t.Fatalf("Path() = %q, want %q", got, want)
	}
}

func TestDuplicateChildNameRejected(t *testing.T) {
	root := newLeaf("root")
	if err := root.AddChild(newLeaf("a")); err != nil {
		t.Fatal(err)
	}
	err := root.AddChild(newLeaf("a"))
	if _, ok := err.(*DuplicateChildNameError); !ok {
		t.Fatalf("AddChild() err = %v, want *DuplicateChildNameError", err)
	}
}

func TestAutoClearControlClearsEveryTick(t *testing.T) {
	l := newLeaf("l")
	c := l.AddControl("write", true)
	c.Raise()
	if !c.Get() {
		t.Fatal("control not raised")
	}
	if err := l.Tick(PhaseClear); err != nil {
		t.Fatal(err)
	}
	if c.Get() {
		t.Fatal("auto-clear control still set after PhaseClear")
	}
}

func TestStickyControlSurvivesUntilClearAsserted(t *testing.T) {
	l := newLeaf("l")
	c := l.AddControl("halt", false)
	c.Raise()

	if err := l.Tick(PhaseClear); err != nil {
		t.Fatal(err)
	}
	if !c.Get() {
		t.Fatal("sticky control cleared without its companion .clear being raised")
	}

	c.Clear().Raise()
	if err := l.Tick(PhaseClear); err != nil {
		t.Fatal(err)
	}
	if c.Get() {
		t.Fatal("sticky control survived after its companion .clear was raised")
	}
}

func TestChildLookupByDottedPath(t *testing.T) {
	root := newLeaf("root")
	mid := newLeaf("mid")
	inner := newLeaf("inner")
	if err := mid.AddChild(inner); err != nil {
		t.Fatal(err)
	}
	if err := root.AddChild(mid); err != nil {
		t.Fatal(err)
	}
	if root.Child("mid.inner") == nil {
		t.Fatal("Child(\"mid.inner\") = nil, want the inner leaf")
	}
	if root.Child("mid.nope") != nil {
		t.Fatal("Child(\"mid.nope\") != nil, want nil")
	}
}

func TestControlsAndStatusesAggregateSubtree(t *testing.T) {
	root := newLeaf("root")
	child := newLeaf("child")
	root.AddControl("reset", true)
	child.AddStatus("ready")
	if err := root.AddChild(child); err != nil {
		t.Fatal(err)
	}

	controls := root.Controls()
	if len(controls) != 1 || controls[0].Name() != "reset" {
		t.Fatalf("Controls() = %v, want one control named reset", controls)
	}
	statuses := root.Statuses()
	if len(statuses) != 1 || statuses[0].Name() != "ready" {
		t.Fatalf("Statuses() = %v, want one status named ready", statuses)
	}
}
