// Package scenario describes scripted controller sessions for the host
// simulator: which inputs the emulated pad holds, for how many polls, and
// what the host is expected to read back.
package scenario

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Pad   PadConfig    `yaml:"pad"`
	Poll  PollConfig   `yaml:"poll"`
	Steps []StepConfig `yaml:"steps"`
}

// ---- PAD ----

type PadConfig struct {
	// ID overrides the identity reply; empty keeps the standard one.
	ID []uint8 `yaml:"id"`
	// LatencyUs delays every reply after the stop pulse.
	LatencyUs int `yaml:"latency_us"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// ---- STEPS ----

type StepConfig struct {
	Name     string    `yaml:"name"`
	Polls    int       `yaml:"polls"`
	Buttons  []string  `yaml:"buttons"`
	Dpad     string    `yaml:"dpad"`
	Stick    *Axes     `yaml:"stick"`
	CStick   *Axes     `yaml:"cstick"`
	Triggers *Triggers `yaml:"triggers"`
	Rumble   bool      `yaml:"rumble"`

	// Connected unplugs the pad for the step when false.
	Connected *bool `yaml:"connected"`
	// Partial makes the pad stop after this many reply bytes; 0 sends all.
	Partial int `yaml:"partial"`

	// Expect lists the buttons the host must read at the end of the step.
	// Nil skips the check; an empty list expects nothing held.
	Expect []string `yaml:"expect"`
}

type Axes struct {
	X uint8 `yaml:"x"`
	Y uint8 `yaml:"y"`
}

type Triggers struct {
	L uint8 `yaml:"l"`
	R uint8 `yaml:"r"`
}

// Load reads a scenario file. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a scenario from YAML.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	return &cfg, nil
}
