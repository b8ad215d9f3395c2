package joybustest

import "github.com/tinygo-org/joybus"

// Device is a peripheral on the emulated wire. Reply receives the host
// frame, stop slot included, and returns the waveform it drives back.
// A nil or empty reply leaves the line idle.
type Device interface {
	Reply(frame []joybus.BitSlot) []joybus.BitSlot
}

// DeviceFunc adapts a byte-level handler to a Device. The handler sees the
// decoded request bytes; its reply is encoded with a trailing stop slot.
type DeviceFunc func(req []byte) []byte

// Reply implements Device.
func (f DeviceFunc) Reply(frame []joybus.BitSlot) []joybus.BitSlot {
	resp := f(joybus.DecodeFrame(frame))
	if len(resp) == 0 {
		return nil
	}
	return joybus.AppendFrame(nil, resp, true)
}

// Truncate returns a Device that stops driving the line after n bytes of
// dev's reply, like a pad pulled out mid-response.
func Truncate(dev Device, n int) Device {
	return truncated{dev: dev, slots: 8 * n}
}

type truncated struct {
	dev   Device
	slots int
}

func (t truncated) Reply(frame []joybus.BitSlot) []joybus.BitSlot {
	reply := t.dev.Reply(frame)
	if len(reply) > t.slots {
		reply = reply[:t.slots]
	}
	return reply
}

// Echo answers every frame with the request bytes.
var Echo = DeviceFunc(func(req []byte) []byte {
	return append([]byte(nil), req...)
})
