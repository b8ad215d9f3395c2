package main

import (
	"testing"

	"github.com/tinygo-org/joybus/internal/scenario"
)

func TestSessionScenario(t *testing.T) {
	cfg, err := scenario.Load("testdata/session.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if err := scenario.Validate(cfg); err != nil {
		t.Fatal(err)
	}
	scenario.Normalize(cfg)

	r := scenario.NewRunner(cfg)
	defer r.Close()
	if _, err := r.Identify(); err != nil {
		t.Fatalf("identify: %v", err)
	}
	for _, res := range r.Run(nil) {
		if !res.Passed() {
			t.Errorf("step %q: %s", res.Step, res.Mismatch)
		}
	}
}
