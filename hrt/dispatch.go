package hrt

// Interrupt is the interrupt-time entry point. The platform's handler for
// the timer's interrupt line calls it on every alarm or wrap event. It runs
// the three dispatcher phases: wrap accounting, the capped invoke loop, and
// reprogramming the next alarm.
func (h *HRT) Interrupt() {
	state := irqSave()

	status := h.drv.ReadClearStatus()
	if status&StatusWrap != 0 {
		h.advanceWrap()
	}

	now := h.invoke()
	h.rescheduleLocked(now)

	irqRestore(state)
}

// invoke fires every callout whose deadline has passed, up to the MaxInvoke
// cap, and returns the time sampled at entry. Time is sampled once so the
// handler's work is bounded by the backlog at entry, not by callouts that
// become due while it runs. Callbacks may schedule or cancel callouts,
// including themselves; each loop iteration re-peeks the mutated queue.
func (h *HRT) invoke() uint64 {
	now := h.nowLocked()

	for i := 0; i < h.cfg.MaxInvoke; i++ {
		c := h.queue.peek()
		if c == nil || c.deadline > now {
			break
		}

		h.queue.remove(c)
		h.lat.record(now - c.deadline)
		c.deadline = 0

		if c.callback != nil {
			c.callback(c.arg)
		}
	}

	return now
}

// rescheduleLocked programs the next alarm from the earliest pending
// deadline, clamped to the configured interval bounds. With no callouts
// pending the hardware is left free-running so wrap notifications keep the
// time base continuous. Callers must hold the critical section.
func (h *HRT) rescheduleLocked(now uint64) {
	next := h.queue.peek()
	if next == nil {
		h.drv.DisableAlarm()
		return
	}

	deadline := next.deadline
	if deadline < now+h.cfg.IntervalMin {
		deadline = now + h.cfg.IntervalMin
	}
	if deadline > now+h.cfg.IntervalMax {
		deadline = now + h.cfg.IntervalMax
	}

	// Truncation to the counter width yields the compare value within the
	// current wrap window; the clamp above keeps it less than one full
	// counter period away.
	h.drv.SetAlarm(uint32(h.usecToTicks(deadline) - h.tickBase))
}
