package hrt

import "testing"

// MockTimerDriver is a test implementation of TimerDriver with a manually
// advanced counter and scriptable status bits.
type MockTimerDriver struct {
	counter uint32
	status  uint8

	alarm    uint32
	armed    bool
	disables int
	sets     int
}

func NewMockTimerDriver() *MockTimerDriver {
	return &MockTimerDriver{}
}

func (m *MockTimerDriver) ReadCounter() uint32 {
	return m.counter
}

func (m *MockTimerDriver) ReadClearStatus() uint8 {
	s := m.status
	m.status = 0
	return s
}

func (m *MockTimerDriver) SetAlarm(tick uint32) {
	m.alarm = tick
	m.armed = true
	m.sets++
}

func (m *MockTimerDriver) DisableAlarm() {
	m.armed = false
	m.disables++
}

// Advance moves the counter forward, raising the wrap status bit if the
// counter rolls over. Tests advance by less than one full counter period
// per call, matching the hardware contract.
func (m *MockTimerDriver) Advance(ticks uint64) {
	total := uint64(m.counter) + ticks
	if total >= 1<<32 {
		m.status |= StatusWrap
	}
	m.counter = uint32(total)
}

// newTestHRT builds an HRT on a 1MHz mock counter, so one tick is one
// microsecond in test arithmetic.
func newTestHRT() (*HRT, *MockTimerDriver) {
	drv := NewMockTimerDriver()
	h := New(Config{Frequency: 1000000}, drv)
	return h, drv
}

func TestNewPanicsOnZeroFrequency(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for zero frequency")
		}
	}()
	New(Config{}, NewMockTimerDriver())
}

func TestNewAppliesDefaults(t *testing.T) {
	h, _ := newTestHRT()

	if h.cfg.IntervalMin != DefaultIntervalMin {
		t.Errorf("IntervalMin = %d, want %d", h.cfg.IntervalMin, DefaultIntervalMin)
	}
	if h.cfg.IntervalMax != DefaultIntervalMax {
		t.Errorf("IntervalMax = %d, want %d", h.cfg.IntervalMax, DefaultIntervalMax)
	}
	if h.cfg.MaxInvoke != DefaultMaxInvoke {
		t.Errorf("MaxInvoke = %d, want %d", h.cfg.MaxInvoke, DefaultMaxInvoke)
	}
}

func TestNewLeavesHardwareFreeRunning(t *testing.T) {
	_, drv := newTestHRT()

	if drv.armed {
		t.Error("alarm armed with no callouts pending")
	}
	if drv.disables != 1 {
		t.Errorf("expected one DisableAlarm at init, got %d", drv.disables)
	}
}

func TestCallAtInvalidArgumentsIgnored(t *testing.T) {
	h, _ := newTestHRT()

	var c Call
	h.CallAt(nil, 100, func(arg interface{}) {}, nil)
	h.CallAt(&c, 100, nil, nil)

	if h.queue.peek() != nil {
		t.Error("invalid schedule must not queue anything")
	}
	if !c.Called() {
		t.Error("callout with nil callback must stay unscheduled")
	}
}

func TestCallAtZeroDeadlineFiresImmediately(t *testing.T) {
	h, drv := newTestHRT()

	// Deadline 0 is the not-scheduled sentinel; requesting it must still
	// queue the callout with a non-zero deadline.
	var c Call
	fired := false
	h.CallAt(&c, 0, func(arg interface{}) { fired = true }, nil)

	if c.Called() {
		t.Fatal("callout not pending after schedule")
	}
	if c.deadline == 0 {
		t.Fatal("queued callout carries the deadline-0 sentinel")
	}

	drv.Advance(10)
	h.Interrupt()
	if !fired {
		t.Error("callout did not fire")
	}
}

func TestCallAfterUsesCurrentTime(t *testing.T) {
	h, drv := newTestHRT()
	drv.Advance(5000)

	var c Call
	h.CallAfter(&c, 300, func(arg interface{}) {}, nil)

	if c.deadline != 5300 {
		t.Errorf("deadline = %d, want 5300", c.deadline)
	}
}

func TestCallEveryStoresPeriod(t *testing.T) {
	h, _ := newTestHRT()

	var c Call
	h.CallEvery(&c, 100, 250, func(arg interface{}) {}, nil)

	if c.Period() != 250 {
		t.Errorf("Period() = %d, want 250", c.Period())
	}
	if c.deadline != 100 {
		t.Errorf("deadline = %d, want 100", c.deadline)
	}
}

// TestCallEverySelfRearm exercises the caller-side periodic contract: the
// dispatcher never re-arms, the callback does, using the stored period.
func TestCallEverySelfRearm(t *testing.T) {
	h, drv := newTestHRT()

	var c Call
	fires := 0
	var tick Callback
	tick = func(arg interface{}) {
		fires++
		h.CallAfter(&c, c.Period(), tick, arg)
	}
	h.CallEvery(&c, 100, 200, tick, nil)

	drv.Advance(100)
	h.Interrupt()
	if fires != 1 {
		t.Fatalf("fires = %d after first period, want 1", fires)
	}
	if c.Called() {
		t.Fatal("callback did not re-arm itself")
	}

	drv.Advance(200)
	h.Interrupt()
	drv.Advance(200)
	h.Interrupt()
	if fires != 3 {
		t.Errorf("fires = %d after three periods, want 3", fires)
	}
}

func TestCancelBeforeDeadline(t *testing.T) {
	h, drv := newTestHRT()

	var c Call
	fired := false
	h.CallAt(&c, 200, func(arg interface{}) { fired = true }, nil)
	h.Cancel(&c)

	drv.Advance(1000)
	h.Interrupt()

	if fired {
		t.Error("cancelled callout invoked its action")
	}
	if !c.Called() {
		t.Error("cancelled callout still reported pending")
	}
}

func TestCancelIdempotent(t *testing.T) {
	h, _ := newTestHRT()

	var c Call
	h.CallEvery(&c, 100, 50, func(arg interface{}) {}, nil)

	h.Cancel(&c)
	if c.deadline != 0 || c.period != 0 {
		t.Fatal("cancel did not clear deadline and period")
	}

	// Second cancel: successful no-op, no state change.
	h.Cancel(&c)
	if c.deadline != 0 || c.period != 0 || c.queued {
		t.Error("second cancel changed state")
	}

	// Cancelling a never-scheduled callout is equally fine.
	var fresh Call
	h.Cancel(&fresh)
	h.Cancel(nil)
}

func TestRescheduleRemovesOldPosition(t *testing.T) {
	h, _ := newTestHRT()

	var a, b Call
	cb := func(arg interface{}) {}
	h.CallAt(&a, 500, cb, nil)
	h.CallAt(&b, 300, cb, nil)

	// Move a ahead of b; the old position at 500 must disappear.
	h.CallAt(&a, 100, cb, nil)

	count := 0
	for c := h.queue.peek(); c != nil; c = c.next {
		if c == &a {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("callout appears %d times in queue, want 1", count)
	}
	if h.queue.peek() != &a {
		t.Error("rescheduled callout not at new position")
	}
}

func TestImmediateRescheduleOnSoonerDeadline(t *testing.T) {
	h, drv := newTestHRT()
	drv.Advance(10000)

	var far, near Call
	cb := func(arg interface{}) {}

	h.CallAt(&far, 20000, cb, nil)
	if !drv.armed || drv.alarm != 20000 {
		t.Fatalf("alarm = %d (armed=%v), want 20000", drv.alarm, drv.armed)
	}

	// A sooner deadline reprograms the alarm without waiting for the next
	// natural interrupt.
	h.CallAt(&near, 12000, cb, nil)
	if drv.alarm != 12000 {
		t.Errorf("alarm = %d after sooner schedule, want 12000", drv.alarm)
	}
}

func TestAlarmClampedToIntervalBounds(t *testing.T) {
	h, drv := newTestHRT()
	drv.Advance(100000)

	var c Call
	cb := func(arg interface{}) {}

	// Already-due deadline: alarm lands IntervalMin ahead of now.
	h.CallAt(&c, 50, cb, nil)
	if drv.alarm != 100000+DefaultIntervalMin {
		t.Errorf("alarm = %d, want %d", drv.alarm, 100000+DefaultIntervalMin)
	}

	// Far deadline: a single alarm reaches at most IntervalMax ahead.
	h.CallAt(&c, 10000000, cb, nil)
	if drv.alarm != 100000+DefaultIntervalMax {
		t.Errorf("alarm = %d, want %d", drv.alarm, 100000+DefaultIntervalMax)
	}
}

func TestStoreNow(t *testing.T) {
	h, drv := newTestHRT()
	drv.Advance(777)

	var sample uint64
	h.StoreNow(&sample)
	if sample != 777 {
		t.Errorf("StoreNow wrote %d, want 777", sample)
	}
}

// Every public entry and the dispatcher must leave the critical section the
// way they found it, including with callbacks scheduling from inside a
// dispatch.
func TestCriticalSectionBalanced(t *testing.T) {
	h, drv := newTestHRT()

	var a, b Call
	h.CallAt(&a, 100, func(arg interface{}) {
		h.CallAfter(&b, 50, func(arg interface{}) {}, nil)
	}, nil)
	h.Now()
	drv.Advance(200)
	h.Interrupt()
	h.Cancel(&b)

	if irqDepth != 0 {
		t.Errorf("critical section depth = %d after API sequence, want 0", irqDepth)
	}
}

func TestElapsed(t *testing.T) {
	h, drv := newTestHRT()

	then := h.Now()
	drv.Advance(1234)
	if e := h.Elapsed(then); e != 1234 {
		t.Errorf("Elapsed = %d, want 1234", e)
	}
}
