package report

import "errors"

// Sync marks the start of every frame.
const Sync = 0x7E

// Frame layout: Sync, length, type, payload, CRC16 (big-endian). The length
// byte counts type + payload, so an empty frame has length 1. The CRC covers
// length, type and payload.
const (
	frameOverhead = 4 // sync + length + two CRC bytes
	// MaxPayload bounds a frame so firmware can encode into a fixed
	// scratch buffer.
	MaxPayload = 120
)

// Message types.
const (
	MsgUptime  = 0x01
	MsgLatency = 0x02
)

var (
	ErrPayloadTooLarge = errors.New("payload exceeds frame limit")
	ErrBadMessage      = errors.New("malformed message payload")
)

// EncodeFrame appends a complete frame carrying the payload.
func EncodeFrame(buf []byte, msgType byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return buf, ErrPayloadTooLarge
	}

	buf = append(buf, Sync, byte(1+len(payload)), msgType)
	buf = append(buf, payload...)

	body := buf[len(buf)-2-len(payload):] // length, type, payload
	crc := CRC16(body)
	return append(buf, byte(crc>>8), byte(crc)), nil
}

// Decoder extracts frames from a byte stream, skipping garbage between
// frames. Damaged frames are dropped and scanning resumes at the next sync
// byte; telemetry senders simply publish again.
type Decoder struct {
	buf     []byte
	dropped int
}

// Feed appends raw stream bytes to the decoder.
func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Dropped returns the count of bytes discarded during resynchronization.
func (d *Decoder) Dropped() int {
	return d.dropped
}

// Next extracts the next complete, CRC-valid frame. It returns ok=false when
// the buffered stream holds no complete frame yet; the payload slice is only
// valid until the following Feed.
func (d *Decoder) Next() (msgType byte, payload []byte, ok bool) {
	for {
		// Scan to the next sync byte.
		start := 0
		for start < len(d.buf) && d.buf[start] != Sync {
			start++
		}
		d.dropped += start
		d.buf = d.buf[start:]

		if len(d.buf) < frameOverhead {
			return 0, nil, false
		}

		length := int(d.buf[1])
		if length < 1 || length > 1+MaxPayload {
			// Not a frame start; skip the sync byte and rescan.
			d.dropped++
			d.buf = d.buf[1:]
			continue
		}

		total := 2 + length + 2
		if len(d.buf) < total {
			return 0, nil, false
		}

		body := d.buf[1 : 2+length]
		crc := uint16(d.buf[total-2])<<8 | uint16(d.buf[total-1])
		if CRC16(body) != crc {
			d.dropped++
			d.buf = d.buf[1:]
			continue
		}

		msgType = d.buf[2]
		payload = d.buf[3 : 2+length]
		d.buf = d.buf[total:]
		return msgType, payload, true
	}
}
