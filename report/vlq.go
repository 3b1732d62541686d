// Package report implements the one-way telemetry wire format the firmware
// uses to publish clock and latency statistics to a host: VLQ varints inside
// CRC-protected, sync-framed messages. There is no sequencing or
// retransmission; telemetry is loss-tolerant and the decoder resynchronizes
// on the next sync byte after any damage.
package report

import "errors"

var (
	ErrTruncated = errors.New("truncated VLQ encoding")
	ErrOverlong  = errors.New("overlong VLQ encoding")
)

// maxVLQBytes bounds a uint64 encoding: ten 7-bit groups cover 64 bits.
const maxVLQBytes = 10

// EncodeUint appends v in VLQ form: 7-bit groups, most significant first,
// continuation bit set on every byte but the last.
func EncodeUint(buf []byte, v uint64) []byte {
	var tmp [maxVLQBytes]byte
	pos := len(tmp)
	pos--
	tmp[pos] = byte(v & 0x7F)
	v >>= 7
	for v != 0 {
		pos--
		tmp[pos] = byte(v&0x7F) | 0x80
		v >>= 7
	}
	return append(buf, tmp[pos:]...)
}

// DecodeUint reads one VLQ value from the data slice, advancing it past the
// consumed bytes.
func DecodeUint(data *[]byte) (uint64, error) {
	var v uint64
	for i := 0; ; i++ {
		if i >= maxVLQBytes {
			return 0, ErrOverlong
		}
		if len(*data) == 0 {
			return 0, ErrTruncated
		}
		c := (*data)[0]
		*data = (*data)[1:]

		v = v<<7 | uint64(c&0x7F)
		if c&0x80 == 0 {
			return v, nil
		}
	}
}

// EncodeUint32 appends a 32-bit value in VLQ form.
func EncodeUint32(buf []byte, v uint32) []byte {
	return EncodeUint(buf, uint64(v))
}

// DecodeUint32 reads one VLQ value and narrows it to 32 bits.
func DecodeUint32(data *[]byte) (uint32, error) {
	v, err := DecodeUint(data)
	if err != nil {
		return 0, err
	}
	if v > 0xFFFFFFFF {
		return 0, ErrOverlong
	}
	return uint32(v), nil
}
