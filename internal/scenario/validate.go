package scenario

import (
	"errors"
	"fmt"

	"github.com/tinygo-org/joybus/gamecube"
)

var ErrNoSteps = errors.New("scenario: no steps")

const (
	maxIntervalMs = 1000
	maxLatencyUs  = 10_000
	pollReplyLen  = 8
)

// Validate checks configuration correctness.
// It performs declarative validation only and does not mutate cfg.
func Validate(cfg *Config) error {
	if n := len(cfg.Pad.ID); n != 0 && n != len(gamecube.ID{}) {
		return fmt.Errorf("pad.id: want %d bytes, got %d", len(gamecube.ID{}), n)
	}
	if cfg.Pad.LatencyUs < 0 || cfg.Pad.LatencyUs > maxLatencyUs {
		return fmt.Errorf("pad.latency_us: %d out of range 0..%d", cfg.Pad.LatencyUs, maxLatencyUs)
	}
	if cfg.Poll.IntervalMs < 0 || cfg.Poll.IntervalMs > maxIntervalMs {
		return fmt.Errorf("poll.interval_ms: %d out of range 0..%d", cfg.Poll.IntervalMs, maxIntervalMs)
	}
	if len(cfg.Steps) == 0 {
		return ErrNoSteps
	}
	for i, s := range cfg.Steps {
		if err := validateStep(s); err != nil {
			return fmt.Errorf("step %d (%q): %w", i, s.Name, err)
		}
	}
	return nil
}

func validateStep(s StepConfig) error {
	if s.Polls < 1 {
		return fmt.Errorf("polls: must be at least 1, got %d", s.Polls)
	}
	if _, err := ParseButtons(s.Buttons); err != nil {
		return fmt.Errorf("buttons: %w", err)
	}
	if _, err := ParseButtons(s.Expect); err != nil {
		return fmt.Errorf("expect: %w", err)
	}
	if s.Dpad != "" {
		if _, ok := gamecube.ParseHat(s.Dpad); !ok {
			return fmt.Errorf("dpad: unknown direction %q", s.Dpad)
		}
	}
	if s.Partial < 0 || s.Partial >= pollReplyLen {
		return fmt.Errorf("partial: %d out of range 0..%d", s.Partial, pollReplyLen-1)
	}
	if s.Connected != nil && !*s.Connected && s.Partial != 0 {
		return errors.New("partial: set on a disconnected step")
	}
	return nil
}

// ParseButtons folds button names into a mask.
func ParseButtons(names []string) (gamecube.Button, error) {
	var mask gamecube.Button
	for _, name := range names {
		b, ok := gamecube.ParseButton(name)
		if !ok {
			return 0, fmt.Errorf("unknown button %q", name)
		}
		mask |= b
	}
	return mask, nil
}
