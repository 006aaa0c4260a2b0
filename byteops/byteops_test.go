package byteops

import (
	"testing"

	"github.com/go-test/deep"
)

func TestAddIdentity(t *testing.T) {
	for b := 0; b < 256; b++ {
		got := Add(uint8(b), 0, false)
		want := FlagResult{
			Value:    uint8(b),
			Zero:     b == 0,
			Negative: b&0x80 != 0,
		}
		if diff := deep.Equal(got, want); diff != nil {
			t.Errorf("Add(0x%.2X, 0, false) diff: %v", b, diff)
		}
	}
}

func TestAddSignedOverflow(t *testing.T) {
	tests := []struct {
		a, b uint8
		want bool
	}{
		{0x7F, 0x01, true},  // 127 + 1 overflows into negative
		{0x80, 0xFF, true},  // -128 + -1 overflows into positive
		{0x01, 0x01, false}, // 1 + 1, no overflow
		{0x7F, 0x00, false},
	}
	for _, tc := range tests {
		got := Add(tc.a, tc.b, false)
		if got.Overflow != tc.want {
			t.Errorf("Add(0x%.2X, 0x%.2X).Overflow = %v, want %v", tc.a, tc.b, got.Overflow, tc.want)
		}
	}
}

func TestSubNoBorrow(t *testing.T) {
	for a := 0; a < 256; a += 17 {
		for b := 0; b < 256; b += 23 {
			got := Sub(uint8(a), uint8(b), true)
			wantValue := uint8((a - b) % 256)
			if got.Value != wantValue {
				t.Errorf("Sub(0x%.2X,0x%.2X,true).Value = 0x%.2X, want 0x%.2X", a, b, got.Value, wantValue)
			}
			wantCarry := a >= b
			if got.Carry != wantCarry {
				t.Errorf("Sub(0x%.2X,0x%.2X,true).Carry = %v, want %v", a, b, got.Carry, wantCarry)
			}
		}
	}
}

func TestRotateCarryChain(t *testing.T) {
	r1 := Rol(0x80, false)
	if r1.Value != 0x00 || !r1.Carry {
		t.Fatalf("Rol(0x80,false) = %+v", r1)
	}
	r2 := Rol(0x00, true)
	if r2.Value != 0x01 || r2.Carry {
		t.Fatalf("Rol(0x00,true) = %+v", r2)
	}

	r3 := Ror(0x01, false)
	if r3.Value != 0x00 || !r3.Carry {
		t.Fatalf("Ror(0x01,false) = %+v", r3)
	}
	r4 := Ror(0x00, true)
	if r4.Value != 0x80 || r4.Carry {
		t.Fatalf("Ror(0x00,true) = %+v", r4)
	}
}

func TestLogicOps(t *testing.T) {
	if got := And(0xF0, 0x3C, false); got.Value != 0x30 {
		t.Errorf("And = 0x%.2X, want 0x30", got.Value)
	}
	if got := Or(0xF0, 0x0C, false); got.Value != 0xFC {
		t.Errorf("Or = 0x%.2X, want 0xFC", got.Value)
	}
	if got := Xor(0xFF, 0x0F, false); got.Value != 0xF0 {
		t.Errorf("Xor = 0x%.2X, want 0xF0", got.Value)
	}
}

func TestShiftCarry(t *testing.T) {
	if got := Shl(0x81, false); got.Value != 0x02 || !got.Carry {
		t.Errorf("Shl(0x81) = %+v", got)
	}
	if got := Shr(0x81, false); got.Value != 0x40 || !got.Carry {
		t.Errorf("Shr(0x81) = %+v", got)
	}
}
