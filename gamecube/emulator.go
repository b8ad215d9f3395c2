package gamecube

import "sync"

// DefaultID is the identity of a standard wired controller.
var DefaultID = ID{0x09, 0x00, 0x03}

// Emulator is the peripheral side of a controller. Handle answers host
// frames and can be plugged into a software link, for example with
// joybustest.DeviceFunc(emu.Handle).
//
// Setters may be called from any goroutine.
type Emulator struct {
	mu     sync.Mutex
	id     ID
	state  State
	rumble bool
	polls  int
}

// NewEmulator returns an Emulator with DefaultID, no buttons held and all
// sticks centred.
func NewEmulator() *Emulator {
	e := &Emulator{id: DefaultID}
	e.state.StickX, e.state.StickY = StickCenter, StickCenter
	e.state.CStickX, e.state.CStickY = StickCenter, StickCenter
	return e
}

// Handle answers one request frame. Unknown or malformed commands get no
// reply.
func (e *Emulator) Handle(req []byte) []byte {
	if len(req) == 0 {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case req[0] == CmdIdentify && len(req) == 1:
		return append([]byte(nil), e.id[:]...)
	case req[0] == CmdPoll && len(req) == 3 && req[1] == pollMode:
		e.rumble = req[2]&1 != 0
		e.polls++
		raw := Encode(e.state)
		return raw[:]
	}
	return nil
}

// SetID changes the identity reported to the host.
func (e *Emulator) SetID(id ID) {
	e.mu.Lock()
	e.id = id
	e.mu.Unlock()
}

// Press holds the buttons in b.
func (e *Emulator) Press(b Button) {
	e.mu.Lock()
	e.state = e.state.withButtons(e.state.Buttons() | b)
	e.mu.Unlock()
}

// Release lets go of the buttons in b.
func (e *Emulator) Release(b Button) {
	e.mu.Lock()
	e.state = e.state.withButtons(e.state.Buttons() &^ b)
	e.mu.Unlock()
}

// SetButtons replaces all held buttons with b.
func (e *Emulator) SetButtons(b Button) {
	e.mu.Lock()
	e.state = e.state.withButtons(b)
	e.mu.Unlock()
}

// SetDpad holds the D-pad in direction h, releasing the other directions.
func (e *Emulator) SetDpad(h Hat) {
	if int(h) >= len(hatNibbles) {
		h = HatIdle
	}
	e.mu.Lock()
	b := e.state.Buttons() &^ (DpadUp | DpadDown | DpadLeft | DpadRight)
	b |= Button(hatNibbles[h]) << 8
	e.state = e.state.withButtons(b)
	e.mu.Unlock()
}

// SetSticks positions the main and C sticks.
func (e *Emulator) SetSticks(x, y, cx, cy uint8) {
	e.mu.Lock()
	e.state.StickX, e.state.StickY = x, y
	e.state.CStickX, e.state.CStickY = cx, cy
	e.mu.Unlock()
}

// SetTriggers sets the analog trigger travel.
func (e *Emulator) SetTriggers(l, r uint8) {
	e.mu.Lock()
	e.state.TriggerL, e.state.TriggerR = l, r
	e.mu.Unlock()
}

// State returns the state the emulator reports.
func (e *Emulator) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Rumble returns the motor flag from the last poll.
func (e *Emulator) Rumble() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rumble
}

// Polls returns the number of poll commands answered.
func (e *Emulator) Polls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.polls
}
