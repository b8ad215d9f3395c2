//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"

	"github.com/tinygo-org/joybus"
	"github.com/tinygo-org/joybus/gamecube"
	pio "github.com/tinygo-org/joybus/rp2-pio"
	"github.com/tinygo-org/joybus/rp2-pio/piolib"
)

// Controller data line. Needs a pull-up if the controller does not provide one.
const padPin = machine.GPIO10

const (
	pollPeriod = 16 * time.Millisecond
	// Print the state about once a second.
	printEvery = 60
)

func main() {
	// Sleep to catch prints.
	time.Sleep(2 * time.Second)

	sm, err := pio.PIO0.ClaimStateMachine()
	if err != nil {
		panic(err.Error())
	}
	link, err := piolib.NewJoybus(sm, padPin)
	if err != nil {
		panic(err.Error())
	}
	pad := gamecube.New(joybus.NewBus(link))

	id, err := pad.Identify()
	if err != nil {
		println("identify:", err.Error())
	} else {
		println("controller id", id[0], id[1], id[2])
	}

	var polls uint32
	for {
		// A missed poll shows up as Connected() == false; nothing to retry.
		_ = pad.Poll()
		st := pad.State()
		// Rumble while Z is held.
		pad.SetRumble(st.Z)

		polls++
		if polls%printEvery == 0 {
			printState(pad, link, st)
		}
		time.Sleep(pollPeriod)
	}
}

func printState(pad *gamecube.Controller, link *piolib.Joybus, st gamecube.State) {
	if !pad.Connected() {
		stats := pad.Stats()
		println("no controller, timeouts:", stats.Timeouts)
		if link.LineLow() {
			println("  line held low between transfers")
		}
		return
	}
	println("buttons:", st.Buttons().String(), "hat:", st.Hat.String())
	println("  stick", st.StickX, st.StickY, "c", st.CStickX, st.CStickY, "trig", st.TriggerL, st.TriggerR)
}
