//go:build !tinygo

package hrt

// State holds the saved interrupt state across a critical section.
type State uintptr

// irqDepth tracks critical-section nesting on regular Go builds. There is
// no interrupt controller to mask here; the host build is a single-goroutine
// simulation harness, so the shim only keeps the save/restore bookkeeping
// that tests can assert on.
var irqDepth int

// irqSave enters the timer's critical section and returns the previous state.
func irqSave() State {
	irqDepth++
	return State(irqDepth - 1)
}

// irqRestore leaves the critical section, restoring the saved state.
func irqRestore(state State) {
	irqDepth = int(state)
}
