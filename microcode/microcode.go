// Package microcode flattens a declarative instruction.Set into a
// bit-indexed ROM: a {address -> asserted controls} table keyed by the
// packed (opcode, status bits, step index) address the controller decodes
// every tick.
package microcode

import (
	"fmt"
	"math"
	"sort"

	"github.com/jmchacon/microcode/instruction"
)

// DuplicateAddressError is returned when two Impls across the instruction
// set produce entries for the same (opcode, status assignment, step)
// address — almost always a sign two Impls' predicates overlap for some
// full status assignment.
type DuplicateAddressError struct {
	Address uint32
	Opcode  uint8
}

func (e *DuplicateAddressError) Error() string {
	return fmt.Sprintf("duplicate microcode address 0x%X for opcode 0x%.2X: conflicting impls", e.Address, e.Opcode)
}

// MissError is returned by ROM.Get when no entry exists for the requested
// address — typically a step-counter overflow past the instruction's
// last step, or an opcode the set never declared.
type MissError struct {
	Opcode uint8
	Step   int
}

func (e *MissError) Error() string {
	return fmt.Sprintf("no microcode entry for opcode 0x%.2X at step %d", e.Opcode, e.Step)
}

// ROM is the compiled, read-only microcode table. Addresses are laid out
// MSB->LSB as opcode[8] || status_bits[len(StatusesIndex)] ||
// step_index[StepBits], exactly as spec'd for the controller's lookups.
type ROM struct {
	// ControlsIndex is the sorted list of every control path used anywhere
	// in the source instruction set.
	ControlsIndex []string
	// StatusesIndex is the sorted list of every status path mentioned in
	// any impl predicate; its order fixes each status's bit position in
	// the packed address.
	StatusesIndex []string
	// StepBits is ceil(log2(max steps in any impl)).
	StepBits int

	table map[uint32][]string
}

// Address packs (opcode, statuses, step) into a ROM address per the
// bit-exact layout in the external-interfaces contract. Status names not
// present in StatusesIndex are ignored.
func (r *ROM) Address(opcode uint8, statuses map[string]bool, step int) uint32 {
	var statusWord uint32
	for i, name := range r.StatusesIndex {
		if statuses[name] {
			statusWord |= 1 << uint(i)
		}
	}
	shift := uint(len(r.StatusesIndex) + r.StepBits)
	return (uint32(opcode) << shift) | (statusWord << uint(r.StepBits)) | uint32(step)
}

// Get returns the sorted control paths asserted at (opcode, statuses,
// step), or a *MissError if the address has no entry.
func (r *ROM) Get(opcode uint8, statuses map[string]bool, step int) ([]string, error) {
	addr := r.Address(opcode, statuses, step)
	controls, ok := r.table[addr]
	if !ok {
		return nil, &MissError{Opcode: opcode, Step: step}
	}
	return controls, nil
}

// Assemble compiles set into a ROM following the algorithm in the
// component design: header/footer injection, don't-care expansion over
// every status not mentioned in an impl's predicate, and one table entry
// per (opcode, full status assignment, step).
func Assemble(set instruction.Set) (*ROM, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}

	controlsSeen := map[string]bool{}
	statusesSeen := map[string]bool{}
	maxSteps := 0

	type entry struct {
		opcode uint8
		impl   instruction.Impl
		steps  []instruction.Step
	}
	var entries []entry

	for _, ins := range set.Instructions {
		for _, mode := range ins.Modes {
			for _, impl := range mode.Impls {
				steps := set.EffectiveSteps(impl)
				if len(steps) > maxSteps {
					maxSteps = len(steps)
				}
				for _, step := range steps {
					for c := range step {
						controlsSeen[c] = true
					}
				}
				for s := range impl.Statuses {
					statusesSeen[s] = true
				}
				entries = append(entries, entry{opcode: mode.Opcode, impl: impl, steps: steps})
			}
		}
	}

	rom := &ROM{
		ControlsIndex: sortedKeys(controlsSeen),
		StatusesIndex: sortedKeys(statusesSeen),
		StepBits:      stepBits(maxSteps),
		table:         make(map[uint32][]string),
	}

	for _, e := range entries {
		for _, full := range expand(e.impl.Statuses, rom.StatusesIndex) {
			for stepIdx, step := range e.steps {
				addr := rom.Address(e.opcode, full, stepIdx)
				if _, exists := rom.table[addr]; exists {
					return nil, &DuplicateAddressError{Address: addr, Opcode: e.opcode}
				}
				rom.table[addr] = step.Controls()
			}
		}
	}
	return rom, nil
}

// expand enumerates every full assignment of allStatuses consistent with
// the partial assignment known, branching both false and true for every
// status known leaves unspecified (a don't-care).
func expand(known map[string]bool, allStatuses []string) []map[string]bool {
	assignments := []map[string]bool{{}}
	for k, v := range known {
		for _, a := range assignments {
			a[k] = v
		}
	}
	for _, name := range allStatuses {
		if _, ok := known[name]; ok {
			continue
		}
		var next []map[string]bool
		for _, a := range assignments {
			af := copyMap(a)
			af[name] = false
			at := copyMap(a)
			at[name] = true
			next = append(next, af, at)
		}
		assignments = next
	}
	return assignments
}

func copyMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func stepBits(maxSteps int) int {
	if maxSteps <= 1 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(maxSteps))))
}
