package joybus

import "time"

// Wire timing. A bit occupies one slot of SlotDuration split into a low
// phase followed by a high phase. The line idles high.
const (
	PulseShort   = time.Microsecond
	PulseLong    = 3 * time.Microsecond
	SlotDuration = PulseShort + PulseLong

	// SampleDelay is how long after a falling edge the receiver reads the line.
	SampleDelay = 1500 * time.Nanosecond

	// ByteTimeout bounds the wait for each response byte.
	ByteTimeout = 600 * time.Microsecond

	// IdleBase and IdlePerByte give the bus quiet time after a transfer,
	// see IdleTime.
	IdleBase    = 450 * time.Microsecond
	IdlePerByte = SlotDuration
)

// MaxResponse is the longest response the 5-bit length field can request.
const MaxResponse = 32

// BitSlot is the waveform of one bit on the wire: the line is held low for
// Low and then released for High.
type BitSlot struct {
	Low  time.Duration
	High time.Duration
}

// SlotFor returns the slot encoding bit. A one is a short low pulse,
// a zero a long one.
func SlotFor(bit bool) BitSlot {
	if bit {
		return BitSlot{Low: PulseShort, High: PulseLong}
	}
	return BitSlot{Low: PulseLong, High: PulseShort}
}

// StopSlot returns the pulse that terminates a host frame. It has the
// shape of a one bit; receivers recognise it as the ninth slot after a
// whole number of bytes.
func StopSlot() BitSlot {
	return BitSlot{Low: PulseShort, High: PulseLong}
}

// Sample returns the line level SampleDelay after the falling edge that
// starts the slot.
func (s BitSlot) Sample() bool {
	return s.Low <= SampleDelay
}

// Duration returns the total length of the slot.
func (s BitSlot) Duration() time.Duration { return s.Low + s.High }

// AppendFrame appends the slots encoding frame, most significant bit first,
// to dst. If stop is set a stop slot is appended after the last byte.
func AppendFrame(dst []BitSlot, frame []byte, stop bool) []BitSlot {
	for _, b := range frame {
		for i := 7; i >= 0; i-- {
			dst = append(dst, SlotFor(b&(1<<i) != 0))
		}
	}
	if stop {
		dst = append(dst, StopSlot())
	}
	return dst
}

// DecodeFrame samples slots and packs every 8 samples into a byte, most
// significant bit first. Slots left over after the last whole byte,
// such as a trailing stop slot, are ignored.
func DecodeFrame(slots []BitSlot) []byte {
	frame := make([]byte, 0, len(slots)/8)
	for len(slots) >= 8 {
		var b byte
		for _, s := range slots[:8] {
			b <<= 1
			if s.Sample() {
				b |= 1
			}
		}
		frame = append(frame, b)
		slots = slots[8:]
	}
	return frame
}

// FrameDuration returns the time n bytes occupy on the wire, excluding
// the stop slot.
func FrameDuration(n int) time.Duration {
	return time.Duration(8*n) * SlotDuration
}

// IdleTime returns the quiet time the bus keeps after a transfer of
// reqLen request bytes and respLen response bytes.
func IdleTime(reqLen, respLen int) time.Duration {
	return time.Duration(reqLen+respLen)*IdlePerByte + IdleBase
}
