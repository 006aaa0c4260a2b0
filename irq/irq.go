// Package irq adapts the original interrupt-sender abstraction — something
// that reports whether a condition is currently held high — into a tick
// watchdog Computer.TickUntilHalt consults once per cycle to bound a run
// that never halts on its own.
package irq

import "fmt"

// Sender reports whether some external condition is currently asserted.
// TickUntilHalt consults one, if supplied, after every tick.
type Sender interface {
	// Raised indicates whether the condition is currently held high.
	Raised() bool
}

// HaltTimeoutError is returned by TickUntilHalt when a Watchdog's budget is
// exhausted before the halt control is observed set.
type HaltTimeoutError struct {
	Ticks uint64
}

func (e *HaltTimeoutError) Error() string {
	return fmt.Sprintf("halt timeout: exceeded %d ticks without halting", e.Ticks)
}

// Watchdog is a Sender bounding a run to a fixed maximum number of ticks. It
// takes no part in the component tree; Computer.TickUntilHalt increments it
// once per tick and consults Raised() to decide whether to abort with
// HaltTimeoutError instead of looping forever on a runaway program.
type Watchdog struct {
	max   uint64
	ticks uint64
}

// NewWatchdog returns a Watchdog that raises once max ticks have elapsed. A
// max of 0 means unbounded.
func NewWatchdog(max uint64) *Watchdog {
	return &Watchdog{max: max}
}

// Tick records one elapsed tick.
func (w *Watchdog) Tick() { w.ticks++ }

// Raised implements Sender.
func (w *Watchdog) Raised() bool { return w.max > 0 && w.ticks >= w.max }

// Ticks returns the number of ticks recorded so far.
func (w *Watchdog) Ticks() uint64 { return w.ticks }
