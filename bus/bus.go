// Package bus implements the single-writer, single-cycle shared byte
// channel every component in the machine reads and writes through.
package bus

import "fmt"

// ConflictError is returned by Set when a second, distinct writer attempts
// to drive the bus in the same tick.
type ConflictError struct {
	Value      uint8
	Writer     string
	NewWriter  string
	NewValue   uint8
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("bus conflict: %q already wrote 0x%.2X this tick, %q attempted 0x%.2X",
		e.Writer, e.Value, e.NewWriter, e.NewValue)
}

// OpenBusReadError is returned when a component asserts its read control
// but no writer has driven the bus this tick.
type OpenBusReadError struct {
	Reader string
}

func (e *OpenBusReadError) Error() string {
	return fmt.Sprintf("open bus read: %q asserted read with no writer on the bus", e.Reader)
}

// Bus holds at most one (value, writer) pair per tick. It is cleared at the
// end of every tick (PhaseClear) and has no memory of ticks before that.
type Bus struct {
	set    bool
	value  uint8
	writer string
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{}
}

// Set drives value onto the bus on behalf of writer. A second call in the
// same tick with a different writer is a ConflictError; the same writer
// setting the same value again is idempotent. A second call from the same
// writer with a *different* value is also treated as a conflict, since two
// distinct drives from one writer in a tick indicates a logic error in the
// caller.
func (b *Bus) Set(value uint8, writer string) error {
	if b.set {
		if b.writer == writer && b.value == value {
			return nil
		}
		return &ConflictError{Value: b.value, Writer: b.writer, NewWriter: writer, NewValue: value}
	}
	b.set = true
	b.value = value
	b.writer = writer
	return nil
}

// Read returns the current bus value and whether the bus has been driven
// this tick. ok is false for an open bus.
func (b *Bus) Read() (value uint8, ok bool) {
	return b.value, b.set
}

// ReadFor is like Read but returns OpenBusReadError tagged with reader's
// path when the bus is open, matching the error-reporting contract every
// runtime error carries a responsible component path.
func (b *Bus) ReadFor(reader string) (uint8, error) {
	v, ok := b.Read()
	if !ok {
		return 0, &OpenBusReadError{Reader: reader}
	}
	return v, nil
}

// Writer returns the path of whichever component last drove the bus this
// tick, or "" if the bus is open.
func (b *Bus) Writer() string { return b.writer }

// Clear wipes the bus, called once per tick at the end of PhaseClear.
func (b *Bus) Clear() {
	b.set = false
	b.value = 0
	b.writer = ""
}
