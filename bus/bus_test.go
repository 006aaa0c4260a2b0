package bus

import "testing"

func TestSetThenReadSameTick(t *testing.T) {
	b := New()
	if err := b.Set(0x42, "writer"); err != nil {
		t.Fatal(err)
	}
	v, err := b.ReadFor("reader")
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x42 {
		t.Fatalf("Read() = 0x%X, want 0x42", v)
	}
}

func TestSameWriterSameValueIdempotent(t *testing.T) {
	b := New()
	if err := b.Set(0x10, "writer"); err != nil {
		t.Fatal(err)
	}
	if err := b.Set(0x10, "writer"); err != nil {
		t.Fatalf("second identical Set from same writer should be idempotent, got %v", err)
	}
}

func TestDistinctWritersConflict(t *testing.T) {
	b := New()
	if err := b.Set(0x01, "a"); err != nil {
		t.Fatal(err)
	}
	err := b.Set(0x02, "b")
	if _, ok := err.(*ConflictError); !ok {
		t.Fatalf("Set() err = %v, want *ConflictError", err)
	}
}

func TestSameWriterDifferentValueConflict(t *testing.T) {
	b := New()
	if err := b.Set(0x01, "a"); err != nil {
		t.Fatal(err)
	}
	err := b.Set(0x02, "a")
	if _, ok := err.(*ConflictError); !ok {
		t.Fatalf("Set() err = %v, want *ConflictError", err)
	}
}

func TestOpenBusRead(t *testing.T) {
	b := New()
	_, err := b.ReadFor("reader")
	if _, ok := err.(*OpenBusReadError); !ok {
		t.Fatalf("ReadFor() err = %v, want *OpenBusReadError", err)
	}
}

func TestClearWipesBus(t *testing.T) {
	b := New()
	if err := b.Set(0x99, "a"); err != nil {
		t.Fatal(err)
	}
	b.Clear()
	if _, ok := b.Read(); ok {
		t.Fatal("Read() ok = true after Clear(), want false")
	}
	if w := b.Writer(); w != "" {
		t.Fatalf("Writer() = %q after Clear(), want \"\"", w)
	}
}

func TestWriterReportsLastDriver(t *testing.T) {
	b := New()
	if err := b.Set(0x01, "src"); err != nil {
		t.Fatal(err)
	}
	if w := b.Writer(); w != "src" {
		t.Fatalf("Writer() = %q, want %q", w, "src")
	}
}
