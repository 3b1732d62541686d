package hrt

// Status bits returned by TimerDriver.ReadClearStatus.
const (
	// StatusWrap indicates the free-running counter rolled over since the
	// last status read. The dispatcher folds the wrapped range into the
	// 64-bit time base when it sees this bit.
	StatusWrap = 1 << 0

	// StatusAlarm indicates the programmed compare value matched.
	StatusAlarm = 1 << 1
)

// TimerDriver is the abstract hardware timer interface that core code uses.
// Platform-specific implementations handle the actual counter and compare
// registers. All methods are called with the timer's interrupt masked and
// must be non-blocking.
type TimerDriver interface {
	// ReadCounter returns the current value of the free-running counter.
	ReadCounter() uint32

	// ReadClearStatus returns the pending Status* bits and clears them in
	// hardware, so each event is observed exactly once.
	ReadClearStatus() uint8

	// SetAlarm programs the compare register so the next interrupt fires
	// when the counter reaches tick (modulo the counter width).
	SetAlarm(tick uint32)

	// DisableAlarm cancels any pending compare. The driver must keep the
	// counter free-running and keep delivering wrap notifications so the
	// time base stays continuous with no callouts pending.
	DisableAlarm()
}
