package scenario

import (
	"fmt"

	"github.com/tinygo-org/joybus/gamecube"
)

// DefaultIntervalMs is the poll period used when none is configured,
// about 60 Hz.
const DefaultIntervalMs = 16

// Normalize fills defaults. It must be called only after Validate.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Poll.IntervalMs == 0 {
		cfg.Poll.IntervalMs = DefaultIntervalMs
	}
	for i := range cfg.Steps {
		s := &cfg.Steps[i]
		if s.Name == "" {
			s.Name = fmt.Sprintf("step %d", i+1)
		}
		if s.Stick == nil {
			s.Stick = &Axes{X: gamecube.StickCenter, Y: gamecube.StickCenter}
		}
		if s.CStick == nil {
			s.CStick = &Axes{X: gamecube.StickCenter, Y: gamecube.StickCenter}
		}
		if s.Triggers == nil {
			s.Triggers = &Triggers{}
		}
		if s.Connected == nil {
			connected := true
			s.Connected = &connected
		}
		if s.Dpad == "" {
			s.Dpad = gamecube.HatIdle.String()
		}
	}
}
