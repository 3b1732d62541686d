package hrt

// Dispatch latency accounting. For every fired callout the dispatcher
// records how far past its deadline the invocation happened; the histogram
// surfaces scheduling jitter and cap-deferral latency to the host monitor.

// LatencyBucketCount is the number of histogram thresholds.
const LatencyBucketCount = 8

// LatencyBuckets holds the bucket upper bounds in microseconds. A sample
// lands in the first bucket whose bound it does not exceed; samples beyond
// the last bound land in the catch-all counter.
var LatencyBuckets = [LatencyBucketCount]uint32{1, 2, 5, 10, 20, 50, 100, 1000}

// LatencyCounters accumulates dispatch latency samples. Updated only inside
// the timer's critical section; read via Snapshot.
type LatencyCounters struct {
	counters [LatencyBucketCount + 1]uint32
	min      uint32
	max      uint32
}

func (l *LatencyCounters) reset() {
	for i := range l.counters {
		l.counters[i] = 0
	}
	l.min = ^uint32(0)
	l.max = 0
}

// record accumulates one latency sample, in microseconds. Callers must hold
// the critical section.
func (l *LatencyCounters) record(latency uint64) {
	sample := uint32(latency)
	if latency > uint64(^uint32(0)) {
		sample = ^uint32(0)
	}

	if sample < l.min {
		l.min = sample
	}
	if sample > l.max {
		l.max = sample
	}

	for i, bound := range LatencyBuckets {
		if sample <= bound {
			l.counters[i]++
			return
		}
	}
	l.counters[LatencyBucketCount]++
}

// LatencySnapshot is a consistent copy of the latency state.
type LatencySnapshot struct {
	// Counters holds one count per bucket plus the catch-all in the last
	// element.
	Counters [LatencyBucketCount + 1]uint32

	// Min and Max are the smallest and largest samples observed. Min is
	// the maximum uint32 value until a first sample arrives.
	Min uint32
	Max uint32
}

// Latency returns a consistent snapshot of the latency counters.
func (h *HRT) Latency() LatencySnapshot {
	state := irqSave()
	snap := LatencySnapshot{
		Counters: h.lat.counters,
		Min:      h.lat.min,
		Max:      h.lat.max,
	}
	irqRestore(state)
	return snap
}

// ResetLatency clears the latency counters, typically after the host has
// collected a report.
func (h *HRT) ResetLatency() {
	state := irqSave()
	h.lat.reset()
	irqRestore(state)
}
