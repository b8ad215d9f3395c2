package gamecube

// Analog axis landmarks. Axes are unsigned and rest near StickCenter.
const (
	StickMin    = 0x00
	StickCenter = 0x80
	StickMax    = 0xff
)

// Button is a bitmask of digital inputs. The low byte mirrors byte 0 of the
// poll response and the high byte mirrors byte 1.
type Button uint16

const (
	ButtonA     Button = 1 << 0
	ButtonB     Button = 1 << 1
	ButtonX     Button = 1 << 2
	ButtonY     Button = 1 << 3
	ButtonStart Button = 1 << 4

	DpadLeft  Button = 1 << 8
	DpadRight Button = 1 << 9
	DpadDown  Button = 1 << 10
	DpadUp    Button = 1 << 11
	ButtonZ   Button = 1 << 12
	ButtonR   Button = 1 << 13
	ButtonL   Button = 1 << 14

	buttonMask = 0x7f1f
)

var buttonNames = [...]struct {
	b    Button
	name string
}{
	{ButtonA, "A"}, {ButtonB, "B"}, {ButtonX, "X"}, {ButtonY, "Y"},
	{ButtonStart, "Start"}, {ButtonZ, "Z"}, {ButtonR, "R"}, {ButtonL, "L"},
	{DpadUp, "Up"}, {DpadDown, "Down"}, {DpadLeft, "Left"}, {DpadRight, "Right"},
}

// ParseButton returns the button named s, as printed by Button.String.
func ParseButton(s string) (Button, bool) {
	for _, bn := range buttonNames {
		if bn.name == s {
			return bn.b, true
		}
	}
	return 0, false
}

// String lists the pressed buttons separated by '+'.
func (b Button) String() string {
	var s string
	for _, bn := range buttonNames {
		if b&bn.b == 0 {
			continue
		}
		if s != "" {
			s += "+"
		}
		s += bn.name
	}
	if s == "" {
		return "none"
	}
	return s
}

// Hat is the D-pad folded into one of eight directions.
type Hat uint8

const (
	HatIdle Hat = iota
	HatUp
	HatUpRight
	HatRight
	HatDownRight
	HatDown
	HatDownLeft
	HatLeft
	HatUpLeft
)

// D-pad nibble of byte 1.
const (
	nibbleLeft  = 0x1
	nibbleRight = 0x2
	nibbleDown  = 0x4
	nibbleUp    = 0x8
)

var hatNibbles = [...]uint8{
	HatIdle:      0,
	HatUp:        nibbleUp,
	HatUpRight:   nibbleUp | nibbleRight,
	HatRight:     nibbleRight,
	HatDownRight: nibbleDown | nibbleRight,
	HatDown:      nibbleDown,
	HatDownLeft:  nibbleDown | nibbleLeft,
	HatLeft:      nibbleLeft,
	HatUpLeft:    nibbleUp | nibbleLeft,
}

var hatNames = [...]string{
	HatIdle:      "idle",
	HatUp:        "up",
	HatUpRight:   "up-right",
	HatRight:     "right",
	HatDownRight: "down-right",
	HatDown:      "down",
	HatDownLeft:  "down-left",
	HatLeft:      "left",
	HatUpLeft:    "up-left",
}

func (h Hat) String() string {
	if int(h) < len(hatNames) {
		return hatNames[h]
	}
	return "Hat(?)"
}

// ParseHat returns the direction named s, as printed by Hat.String.
func ParseHat(s string) (Hat, bool) {
	for h, name := range hatNames {
		if name == s {
			return Hat(h), true
		}
	}
	return HatIdle, false
}

// hatFromNibble maps a D-pad nibble to its hat direction. Combinations that
// are not a cardinal or diagonal, such as up with down, are idle.
func hatFromNibble(n uint8) Hat {
	for h, v := range hatNibbles {
		if v == n&0xf && v != 0 {
			return Hat(h)
		}
	}
	return HatIdle
}

// State is the decoded view of one poll response.
type State struct {
	A, B, X, Y bool
	Start      bool
	Z, R, L    bool

	// D-pad cardinal directions as reported.
	Up, Down, Left, Right bool
	// Hat folds the D-pad into a direction.
	Hat Hat

	StickX, StickY   uint8
	CStickX, CStickY uint8
	TriggerL         uint8
	TriggerR         uint8
}

// Decode interprets the 8-byte poll response. Every input decodes.
func Decode(raw [8]byte) State {
	b0, b1 := raw[0], raw[1]
	return State{
		A:     b0&0x01 != 0,
		B:     b0&0x02 != 0,
		X:     b0&0x04 != 0,
		Y:     b0&0x08 != 0,
		Start: b0&0x10 != 0,

		Left:  b1&nibbleLeft != 0,
		Right: b1&nibbleRight != 0,
		Down:  b1&nibbleDown != 0,
		Up:    b1&nibbleUp != 0,
		Hat:   hatFromNibble(b1),
		Z:     b1&0x10 != 0,
		R:     b1&0x20 != 0,
		L:     b1&0x40 != 0,

		StickX:   raw[2],
		StickY:   raw[3],
		CStickX:  raw[4],
		CStickY:  raw[5],
		TriggerL: raw[6],
		TriggerR: raw[7],
	}
}

// Buttons returns the digital inputs of s as a mask.
func (s State) Buttons() Button {
	var b Button
	set := func(on bool, bit Button) {
		if on {
			b |= bit
		}
	}
	set(s.A, ButtonA)
	set(s.B, ButtonB)
	set(s.X, ButtonX)
	set(s.Y, ButtonY)
	set(s.Start, ButtonStart)
	set(s.Left, DpadLeft)
	set(s.Right, DpadRight)
	set(s.Down, DpadDown)
	set(s.Up, DpadUp)
	set(s.Z, ButtonZ)
	set(s.R, ButtonR)
	set(s.L, ButtonL)
	return b
}

// Pressed reports whether every button in b is held.
func (s State) Pressed(b Button) bool {
	return s.Buttons()&b == b
}

// Encode builds the poll response describing s. The D-pad nibble is
// taken from the cardinal flags; Hat is ignored.
func Encode(s State) [8]byte {
	b := s.Buttons()
	return [8]byte{
		byte(b),
		byte(b >> 8),
		s.StickX, s.StickY,
		s.CStickX, s.CStickY,
		s.TriggerL, s.TriggerR,
	}
}

// withButtons returns s with its digital inputs replaced by b, the hat
// rederived from the D-pad bits.
func (s State) withButtons(b Button) State {
	raw := Encode(s)
	b &= buttonMask
	raw[0], raw[1] = byte(b), byte(b>>8)
	return Decode(raw)
}
