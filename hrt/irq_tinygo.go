//go:build tinygo

package hrt

import "runtime/interrupt"

// State holds the saved interrupt state across a critical section.
type State = interrupt.State

// irqSave masks interrupts and returns the previous state.
func irqSave() State {
	return interrupt.Disable()
}

// irqRestore restores the interrupt state saved by irqSave.
func irqRestore(state State) {
	interrupt.Restore(state)
}
