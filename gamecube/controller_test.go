package gamecube

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/tinygo-org/joybus"
	"github.com/tinygo-org/joybus/joybustest"
)

func newSession(t *testing.T, emu *Emulator) (*Controller, *joybustest.Link) {
	t.Helper()
	link := joybustest.NewLink(joybustest.DeviceFunc(emu.Handle), &joybustest.Options{Slack: 50 * time.Millisecond})
	t.Cleanup(link.Close)
	return New(joybus.NewBus(link)), link
}

func TestIdentify(t *testing.T) {
	pad, link := newSession(t, NewEmulator())
	id, err := pad.Identify()
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if id != DefaultID {
		t.Errorf("id got %x, want %x", id, DefaultID)
	}
	if got := link.LastRequest(); !bytes.Equal(got, []byte{0x41}) {
		t.Errorf("request got %x, want 41", got)
	}
}

func TestPoll(t *testing.T) {
	emu := NewEmulator()
	emu.Press(ButtonA | ButtonL)
	emu.SetDpad(HatUpLeft)
	emu.SetSticks(0x10, 0xf0, 0x80, 0x70)
	emu.SetTriggers(0x20, 0xd0)
	pad, link := newSession(t, emu)

	if err := pad.Poll(); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if got := link.LastRequest(); !bytes.Equal(got, []byte{0x40, 0x03, 0x00}) {
		t.Errorf("request got %x, want 400300", got)
	}
	s := pad.State()
	if !s.A || !s.L || s.B || s.Hat != HatUpLeft || !s.Up || !s.Left {
		t.Errorf("state got %+v", s)
	}
	if s.StickX != 0x10 || s.StickY != 0xf0 || s.CStickY != 0x70 || s.TriggerL != 0x20 || s.TriggerR != 0xd0 {
		t.Errorf("axes got %+v", s)
	}
	if !pad.Connected() {
		t.Error("Connected() false after full poll")
	}
	if pad.Raw() != Encode(emu.State()) {
		t.Errorf("raw got %x, want %x", pad.Raw(), Encode(emu.State()))
	}
}

func TestPollRumble(t *testing.T) {
	emu := NewEmulator()
	pad, link := newSession(t, emu)

	pad.SetRumble(true)
	pad.Poll()
	if got := link.LastRequest(); !bytes.Equal(got, []byte{0x40, 0x03, 0x01}) {
		t.Errorf("request got %x, want 400301", got)
	}
	if !emu.Rumble() || !pad.Rumble() {
		t.Error("rumble not delivered")
	}

	pad.SetRumble(false)
	pad.Poll()
	if emu.Rumble() {
		t.Error("rumble still on")
	}
	if emu.Polls() != 2 {
		t.Errorf("polls got %d, want 2", emu.Polls())
	}
}

func TestPollDisconnected(t *testing.T) {
	emu := NewEmulator()
	emu.Press(ButtonStart)
	pad, link := newSession(t, emu)

	if err := pad.Poll(); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if !pad.State().Start {
		t.Fatal("Start not seen")
	}

	link.SetDevice(nil)
	err := pad.Poll()
	if !errors.Is(err, joybus.ErrTimeout) {
		t.Errorf("err got %v, want ErrTimeout", err)
	}
	// No stale data survives a failed poll.
	if pad.Raw() != [8]byte{} {
		t.Errorf("raw got %x, want zeros", pad.Raw())
	}
	if pad.State() != (State{}) {
		t.Errorf("state got %+v, want zero", pad.State())
	}
	if pad.Connected() {
		t.Error("Connected() true after failed poll")
	}

	link.SetDevice(joybustest.DeviceFunc(emu.Handle))
	if err := pad.Poll(); err != nil {
		t.Fatalf("Poll after reconnect: %v", err)
	}
	if !pad.State().Start || !pad.Connected() {
		t.Error("state not recovered after reconnect")
	}
	st := pad.Stats()
	if st.Transfers != 3 || st.Timeouts != 1 || st.BytesIn != 16 {
		t.Errorf("stats got %+v", st)
	}
}

func TestPollPartial(t *testing.T) {
	emu := NewEmulator()
	emu.Press(ButtonA)
	pad, link := newSession(t, emu)
	link.SetDevice(joybustest.Truncate(joybustest.DeviceFunc(emu.Handle), 3))

	err := pad.Poll()
	if !errors.Is(err, joybus.ErrTimeout) {
		t.Fatalf("err got %v, want ErrTimeout", err)
	}
	want := Encode(emu.State())
	for i := 3; i < 8; i++ {
		want[i] = 0
	}
	if pad.Raw() != want {
		t.Errorf("raw got %x, want %x", pad.Raw(), want)
	}
}

func TestIdentifyNoController(t *testing.T) {
	link := joybustest.NewLink(nil, &joybustest.Options{Slack: time.Millisecond})
	defer link.Close()
	pad := New(joybus.NewBus(link))
	id, err := pad.Identify()
	if !errors.Is(err, joybus.ErrTimeout) || id != (ID{}) {
		t.Errorf("got %x %v, want zero ID and ErrTimeout", id, err)
	}
}

func TestEmulatorIgnoresUnknown(t *testing.T) {
	emu := NewEmulator()
	for _, req := range [][]byte{nil, {0x00}, {0x40}, {0x40, 0x02, 0x00}, {0x41, 0x00}} {
		if resp := emu.Handle(req); resp != nil {
			t.Errorf("Handle(%x) = %x, want nil", req, resp)
		}
	}
}

func TestEmulatorButtons(t *testing.T) {
	emu := NewEmulator()
	emu.Press(ButtonX | DpadRight)
	if s := emu.State(); !s.X || s.Hat != HatRight {
		t.Errorf("after press got %+v", s)
	}
	emu.SetDpad(HatDown)
	if s := emu.State(); s.Right || !s.Down || s.Hat != HatDown || !s.X {
		t.Errorf("after SetDpad got %+v", s)
	}
	emu.Release(ButtonX)
	if s := emu.State(); s.X {
		t.Error("X still held")
	}
	emu.SetButtons(0)
	if s := emu.State(); s.Buttons() != 0 || s.Hat != HatIdle {
		t.Errorf("after clear got %v hat %v", s.Buttons(), s.Hat)
	}
}
