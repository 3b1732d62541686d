package hrt

// The time base converts the hardware's free-running tick counter, plus the
// accumulated range of completed wraps, into a monotonic 64-bit microsecond
// clock. tickBase and wrapCount are only mutated by the dispatcher's wrap
// accounting, inside the critical section shared with all readers.

// counterSpan is the tick range of one full counter period (32-bit counter).
const counterSpan = uint64(1) << 32

// usecPerSec is the clock resolution: one tick base second in microseconds.
const usecPerSec = 1000000

// Now returns the current absolute time in microseconds. The tick base and
// live counter are sampled atomically with respect to the dispatcher, so the
// result is non-decreasing even across a counter wrap.
func (h *HRT) Now() uint64 {
	state := irqSave()
	now := h.nowLocked()
	irqRestore(state)
	return now
}

// StoreNow writes the current time into the caller-supplied location under
// the same exclusion used by Now. Used by load monitors that snapshot time
// into shared memory.
func (h *HRT) StoreNow(t *uint64) {
	state := irqSave()
	*t = h.nowLocked()
	irqRestore(state)
}

// Elapsed returns the microseconds elapsed since an earlier Now value.
func (h *HRT) Elapsed(then uint64) uint64 {
	return h.Now() - then
}

// WrapCount returns the number of counter overflows observed since Init.
func (h *HRT) WrapCount() uint32 {
	state := irqSave()
	n := h.wrapCount
	irqRestore(state)
	return n
}

// nowLocked samples the time base and live counter. Callers must hold the
// critical section.
func (h *HRT) nowLocked() uint64 {
	return h.ticksToUsec(h.tickBase + uint64(h.drv.ReadCounter()))
}

// advanceWrap folds one completed counter period into the time base. Called
// only from the dispatcher on a wrap notification.
func (h *HRT) advanceWrap() {
	h.wrapCount++
	h.tickBase += counterSpan
}

// ticksToUsec converts a tick count to microseconds, rounding down. Whole
// seconds are split out first so the multiply cannot overflow uint64 over
// the system lifetime.
func (h *HRT) ticksToUsec(ticks uint64) uint64 {
	freq := uint64(h.cfg.Frequency)
	return (ticks/freq)*usecPerSec + (ticks%freq)*usecPerSec/freq
}

// usecToTicks converts an absolute microsecond time to ticks, rounding up so
// an alarm programmed from the result never fires before the deadline.
func (h *HRT) usecToTicks(us uint64) uint64 {
	freq := uint64(h.cfg.Frequency)
	rem := us % usecPerSec
	return (us/usecPerSec)*freq + (rem*freq+usecPerSec-1)/usecPerSec
}
