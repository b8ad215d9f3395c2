package scenario

import (
	"fmt"
	"time"

	"github.com/tinygo-org/joybus"
	"github.com/tinygo-org/joybus/gamecube"
	"github.com/tinygo-org/joybus/joybustest"
)

// linkSlack absorbs goroutine hand-off in the software link.
const linkSlack = 5 * time.Millisecond

// Result summarises one step as seen by the host.
type Result struct {
	Step      string
	Polls     int
	Connected int // polls that returned a full response
	State     gamecube.State
	Rumble    bool // motor flag as received by the pad
	Mismatch  string
}

// Passed reports whether the step met its expectation.
func (r Result) Passed() bool { return r.Mismatch == "" }

// Runner plays a normalized scenario against an emulated pad.
type Runner struct {
	cfg   *Config
	emu   *gamecube.Emulator
	link  *joybustest.Link
	pad   *gamecube.Controller
	sleep func(time.Duration)
}

// NewRunner builds the emulated wire for cfg. cfg must have been validated
// and normalized. Call Close when done.
func NewRunner(cfg *Config) *Runner {
	emu := gamecube.NewEmulator()
	if len(cfg.Pad.ID) == len(gamecube.ID{}) {
		var id gamecube.ID
		copy(id[:], cfg.Pad.ID)
		emu.SetID(id)
	}
	link := joybustest.NewLink(joybustest.DeviceFunc(emu.Handle), &joybustest.Options{
		Latency: time.Duration(cfg.Pad.LatencyUs) * time.Microsecond,
		Slack:   linkSlack,
	})
	return &Runner{
		cfg:   cfg,
		emu:   emu,
		link:  link,
		pad:   gamecube.New(joybus.NewBus(link)),
		sleep: time.Sleep,
	}
}

// Close stops the emulated link.
func (r *Runner) Close() { r.link.Close() }

// Identify performs the startup identify exchange.
func (r *Runner) Identify() (gamecube.ID, error) { return r.pad.Identify() }

// Stats returns the host bus counters.
func (r *Runner) Stats() joybus.Stats { return r.pad.Stats() }

// Run plays every step in order, calling report after each.
func (r *Runner) Run(report func(Result)) []Result {
	results := make([]Result, 0, len(r.cfg.Steps))
	interval := time.Duration(r.cfg.Poll.IntervalMs) * time.Millisecond
	for _, s := range r.cfg.Steps {
		res := r.step(s, interval)
		if report != nil {
			report(res)
		}
		results = append(results, res)
	}
	return results
}

func (r *Runner) step(s StepConfig, interval time.Duration) Result {
	buttons, _ := ParseButtons(s.Buttons)
	hat, _ := gamecube.ParseHat(s.Dpad)
	r.emu.SetButtons(buttons)
	if hat != gamecube.HatIdle {
		r.emu.SetDpad(hat)
	}
	r.emu.SetSticks(s.Stick.X, s.Stick.Y, s.CStick.X, s.CStick.Y)
	r.emu.SetTriggers(s.Triggers.L, s.Triggers.R)

	var dev joybustest.Device = joybustest.DeviceFunc(r.emu.Handle)
	switch {
	case !*s.Connected:
		dev = nil
	case s.Partial > 0:
		dev = joybustest.Truncate(dev, s.Partial)
	}
	r.link.SetDevice(dev)
	r.pad.SetRumble(s.Rumble)

	res := Result{Step: s.Name, Polls: s.Polls}
	for i := 0; i < s.Polls; i++ {
		r.pad.Poll()
		if r.pad.Connected() {
			res.Connected++
		}
		r.sleep(interval)
	}
	res.State = r.pad.State()
	res.Rumble = r.emu.Rumble()

	if s.Expect != nil {
		want, _ := ParseButtons(s.Expect)
		if got := res.State.Buttons(); got != want {
			res.Mismatch = fmt.Sprintf("buttons got %v, want %v", got, want)
		}
	}
	return res
}
