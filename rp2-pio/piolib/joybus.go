//go:build rp2040 || rp2350

package piolib

import (
	"machine"
	"time"

	"github.com/tinygo-org/joybus"
	pio "github.com/tinygo-org/joybus/rp2-pio"
)

// Joybus drives a single-wire Joybus line, as used by GameCube
// controllers, from a PIO state machine. It implements [joybus.Link].
//
// The pin is driven open drain: the output latch is held low and the
// program toggles the pin direction. The line needs a pull-up to 3.3V,
// which controllers usually provide.
type Joybus struct {
	sm     pio.StateMachine
	offset uint8
	pin    machine.Pin
}

var _ joybus.Link = (*Joybus)(nil)

// NewJoybus loads the Joybus program into sm's PIO and starts it on pin.
func NewJoybus(sm pio.StateMachine, pin machine.Pin) (*Joybus, error) {
	sm.TryClaim() // SM should be claimed beforehand, we just guarantee it's claimed.
	Pio := sm.PIO()

	whole, frac, err := pio.ClkDivFromFrequency(joybusFreq, uint32(machine.CPUFrequency()))
	if err != nil {
		return nil, err
	}
	program := joybusProgram()
	offset, err := Pio.AddProgram(program[:], joybusOrigin)
	if err != nil {
		return nil, err
	}

	pin.Configure(machine.PinConfig{Mode: Pio.PinMode()})
	pinMask := uint32(1) << pin
	sm.SetPinsMasked(0, pinMask)
	sm.SetPindirsMasked(0, pinMask)
	// Keep the input synchronizer; its two system clock cycles vanish in the settle delay.
	Pio.SetInputSyncBypassMasked(0, pinMask)

	cfg := pio.DefaultStateMachineConfig()
	cfg.SetWrap(offset+joybusWrapTarget, offset+joybusWrap)
	cfg.SetSidesetParams(2, true, true)
	cfg.SetSidesetPins(pin)
	cfg.SetInPins(pin)
	cfg.SetOutShift(false, true, 8)
	cfg.SetInShift(false, true, 8)
	cfg.SetFIFOJoin(pio.FifoJoinNone)
	cfg.SetClkDivIntFrac(whole, frac)

	sm.Init(offset, cfg)
	sm.SetEnabled(true)
	joybus.LogDebug(joybus.ComponentLink, "pio joybus started", "pio", Pio.BlockIndex(), "sm", sm.StateMachineIndex(), "offset", offset, "pin", uint8(pin))
	return &Joybus{sm: sm, offset: offset, pin: pin}, nil
}

// Reset halts the state machine, flushes both FIFOs and restarts the
// program from the top. A receive waiting for an edge that never came is
// abandoned.
func (j *Joybus) Reset() {
	// See StateMachine.Init for reference on this sequence of operations.
	j.sm.SetEnabled(false)
	j.sm.ClearFIFOs()
	j.sm.Restart()
	j.sm.ClkDivRestart()
	j.sm.Jmp(j.offset, pio.JmpAlways)
	j.sm.SetEnabled(true)
}

// Push writes word to the TX FIFO, waiting while it is full.
func (j *Joybus) Push(word uint32) {
	for j.sm.IsTxFIFOFull() {
		gosched()
	}
	j.sm.TxPut(word)
}

// Pull returns the next received byte. The deadline is checked before the
// FIFO so a byte landing at the deadline counts as late.
func (j *Joybus) Pull(deadline time.Time) (uint32, error) {
	dl := newDeadline(deadline)
	for {
		if dl.expired() {
			return 0, joybus.ErrTimeout
		}
		if !j.sm.IsRxFIFOEmpty() {
			return j.sm.RxGet() & 0xff, nil
		}
		gosched()
	}
}

// LineLow reports whether the program is currently pulling the line low.
// Outside a transfer the line is released, so a true result there means
// the state machine is stuck mid-frame.
func (j *Joybus) LineLow() bool {
	return j.sm.PIO().GPIODirections()&(1<<j.pin) != 0
}

// Close stops the state machine and frees its program memory.
func (j *Joybus) Close() {
	j.sm.SetEnabled(false)
	j.sm.SetPindirsMasked(0, 1<<j.pin)
	program := joybusProgram()
	j.sm.PIO().ClearProgramSection(j.offset, uint8(len(program)))
	j.sm.Unclaim()
}
