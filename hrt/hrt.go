// Package hrt implements a monotonic microsecond clock and a
// deadline-ordered callout scheduler on top of a single free-running
// hardware counter and its interrupt line.
//
// The surrounding system supplies the hardware through the TimerDriver
// interface and calls Interrupt from the timer's interrupt handler.
// Foreground code schedules work with CallAt/CallAfter/CallEvery and reads
// the clock with Now. All shared state is guarded by a critical section
// scoped to the timer's interrupt source.
package hrt

// Default scheduling bounds and dispatch cap.
const (
	// DefaultIntervalMin is the closest alarm the core will program, in
	// microseconds. Deadlines already due are pushed out this far so the
	// compare is never set behind the live counter.
	DefaultIntervalMin = 50

	// DefaultIntervalMax is the farthest single alarm, in microseconds.
	// Later deadlines are reached through intermediate interrupts.
	DefaultIntervalMax = 50000

	// DefaultMaxInvoke caps callouts fired per interrupt so the handler
	// has bounded worst-case execution time. Leftovers fire on the next
	// interrupt; they are deferred, never lost.
	DefaultMaxInvoke = 16
)

// Config holds the timer constants supplied at initialization. They describe
// the hardware; nothing is discovered at runtime.
type Config struct {
	// Frequency is the counter tick rate in Hz. Must be non-zero.
	Frequency uint32

	// IntervalMin/IntervalMax bound a single programmed alarm, in
	// microseconds. Zero selects the defaults.
	IntervalMin uint64
	IntervalMax uint64

	// MaxInvoke caps callouts fired per interrupt. Zero selects the default.
	MaxInvoke int
}

// HRT is the timer context: time base, pending-callout queue, and latency
// accounting for one hardware timer. The surrounding system owns the single
// instance per timer and shares it between foreground code and the interrupt
// handler.
type HRT struct {
	cfg Config
	drv TimerDriver

	tickBase  uint64 // ticks folded in from completed wraps
	wrapCount uint32 // overflows observed since Init

	queue callQueue
	lat   LatencyCounters
}

// New creates the timer context and puts the hardware into free-running
// mode. A zero Frequency is a hardware misconfiguration and panics; the
// remaining Config fields default when zero.
func New(cfg Config, drv TimerDriver) *HRT {
	if cfg.Frequency == 0 {
		panic("hrt: timer frequency not configured")
	}
	if drv == nil {
		panic("hrt: timer driver not configured")
	}
	if cfg.IntervalMin == 0 {
		cfg.IntervalMin = DefaultIntervalMin
	}
	if cfg.IntervalMax == 0 {
		cfg.IntervalMax = DefaultIntervalMax
	}
	if cfg.MaxInvoke == 0 {
		cfg.MaxInvoke = DefaultMaxInvoke
	}

	h := &HRT{cfg: cfg, drv: drv}
	h.lat.reset()
	drv.DisableAlarm()
	return h
}

// CallAt schedules the callout to run at an absolute time in microseconds.
// A nil call or callback is ignored. Scheduling an already-queued callout
// moves it: the old position is removed first, so the callout is never
// queued twice.
func (h *HRT) CallAt(c *Call, deadline uint64, callback Callback, arg interface{}) {
	if c == nil || callback == nil {
		return
	}
	if deadline == 0 {
		// 0 is the not-scheduled sentinel; fire as soon as possible instead.
		deadline = 1
	}

	state := irqSave()

	h.queue.remove(c)
	c.deadline = deadline
	c.callback = callback
	c.arg = arg
	h.queue.insert(c)

	// A sooner deadline must be honored without waiting for the next
	// natural interrupt.
	h.rescheduleLocked(h.nowLocked())

	irqRestore(state)
}

// CallAfter schedules the callout to run after a delay in microseconds.
func (h *HRT) CallAfter(c *Call, delay uint64, callback Callback, arg interface{}) {
	h.CallAt(c, h.Now()+delay, callback, arg)
}

// CallEvery records the period on the callout and schedules the first
// firing after delay. The dispatcher does not re-arm periodic callouts;
// the callback re-arms itself with CallAfter and the stored Period.
func (h *HRT) CallEvery(c *Call, delay, period uint64, callback Callback, arg interface{}) {
	if c == nil || callback == nil {
		return
	}
	c.period = period
	h.CallAfter(c, delay, callback, arg)
}

// Cancel removes the callout if pending and clears its deadline and period.
// Cancelling an unscheduled callout is a no-op; Cancel is idempotent.
func (h *HRT) Cancel(c *Call) {
	if c == nil {
		return
	}

	state := irqSave()

	h.queue.remove(c)
	c.deadline = 0
	c.period = 0

	irqRestore(state)
}
