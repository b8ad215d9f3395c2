package gamecube

import "github.com/tinygo-org/joybus"

// Commands understood by a standard controller.
const (
	CmdIdentify = 0x41
	CmdPoll     = 0x40

	// pollMode selects the full-precision analog report.
	pollMode = 0x03

	identifyLen = 3
	pollLen     = 8
)

// ID is the identity reported by a controller.
type ID [identifyLen]byte

// Controller talks to one GameCube controller over a Bus.
//
// Calls must come from a single goroutine, usually the firmware main loop.
type Controller struct {
	bus       *joybus.Bus
	raw       [pollLen]byte
	rumble    bool
	connected bool
}

// New returns a Controller on bus.
func New(bus *joybus.Bus) *Controller {
	return &Controller{bus: bus}
}

// Identify asks the controller for its identity. A controller that does
// not answer yields a zero ID with the transfer error; whether to carry on
// is the caller's decision.
func (c *Controller) Identify() (ID, error) {
	var id ID
	_, err := c.bus.Transfer([]byte{CmdIdentify}, id[:])
	if err != nil {
		joybus.LogDebug(joybus.ComponentPad, "identify failed", "err", err)
	}
	return id, err
}

// Poll reads the controller state, sending the current rumble flag.
// The stored state is replaced by the response even when it is short,
// so missing bytes read as zero until the next successful poll.
// The error is informational.
func (c *Controller) Poll() error {
	req := [3]byte{CmdPoll, pollMode, 0}
	if c.rumble {
		req[2] = 1
	}
	var raw [pollLen]byte
	n, err := c.bus.Transfer(req[:], raw[:])
	c.raw = raw
	if c.connected != (n == pollLen) {
		c.connected = n == pollLen
		joybus.LogInfo(joybus.ComponentPad, "connection changed", "connected", c.connected, "got", n)
	}
	return err
}

// SetRumble sets the motor flag sent with the next Poll.
func (c *Controller) SetRumble(on bool) { c.rumble = on }

// Rumble returns the motor flag.
func (c *Controller) Rumble() bool { return c.rumble }

// State returns the decoded result of the last Poll.
func (c *Controller) State() State { return Decode(c.raw) }

// Raw returns a copy of the last poll response.
func (c *Controller) Raw() [8]byte { return c.raw }

// Connected reports whether the last Poll received a complete response.
func (c *Controller) Connected() bool { return c.connected }

// Stats returns the counters of the underlying bus.
func (c *Controller) Stats() joybus.Stats { return c.bus.Stats() }
