package report

// Uptime is the clock telemetry message: current absolute time and the
// number of hardware counter wraps folded into it.
type Uptime struct {
	Micros uint64
	Wraps  uint32
}

// AppendUptime appends a complete MsgUptime frame.
func AppendUptime(buf []byte, u Uptime) ([]byte, error) {
	var payload [16]byte
	p := EncodeUint(payload[:0], u.Micros)
	p = EncodeUint32(p, u.Wraps)
	return EncodeFrame(buf, MsgUptime, p)
}

// ParseUptime decodes a MsgUptime payload.
func ParseUptime(payload []byte) (Uptime, error) {
	var u Uptime
	var err error
	if u.Micros, err = DecodeUint(&payload); err != nil {
		return u, err
	}
	if u.Wraps, err = DecodeUint32(&payload); err != nil {
		return u, err
	}
	if len(payload) != 0 {
		return u, ErrBadMessage
	}
	return u, nil
}

// Latency is the dispatch-latency telemetry message: histogram counters
// (bucketed by microseconds of lateness, last counter is the catch-all)
// plus the observed extremes since the last reset.
type Latency struct {
	Counters []uint32
	Min      uint32
	Max      uint32
}

// AppendLatency appends a complete MsgLatency frame. The counter slice is
// length-prefixed on the wire, so host and firmware need not agree on the
// bucket count at compile time.
func AppendLatency(buf []byte, l Latency) ([]byte, error) {
	var payload [MaxPayload]byte
	p := EncodeUint32(payload[:0], uint32(len(l.Counters)))
	for _, n := range l.Counters {
		p = EncodeUint32(p, n)
	}
	p = EncodeUint32(p, l.Min)
	p = EncodeUint32(p, l.Max)
	return EncodeFrame(buf, MsgLatency, p)
}

// ParseLatency decodes a MsgLatency payload.
func ParseLatency(payload []byte) (Latency, error) {
	var l Latency

	count, err := DecodeUint32(&payload)
	if err != nil {
		return l, err
	}
	if count > MaxPayload {
		return l, ErrBadMessage
	}

	l.Counters = make([]uint32, count)
	for i := range l.Counters {
		if l.Counters[i], err = DecodeUint32(&payload); err != nil {
			return l, err
		}
	}
	if l.Min, err = DecodeUint32(&payload); err != nil {
		return l, err
	}
	if l.Max, err = DecodeUint32(&payload); err != nil {
		return l, err
	}
	if len(payload) != 0 {
		return l, ErrBadMessage
	}
	return l, nil
}
