//go:build rp2040 || rp2350

package pio

import (
	"device/rp"
	"machine"
)

// DefaultStateMachineConfig returns the reset configuration of a state
// machine: no clock division, wrap over the whole memory and
// right-shifting ISR/OSR without autopush or autopull.
func DefaultStateMachineConfig() StateMachineConfig {
	cfg := StateMachineConfig{}
	cfg.SetClkDivIntFrac(1, 0)
	cfg.SetWrap(0, 31)
	cfg.SetInShift(true, false, 32)
	cfg.SetOutShift(true, false, 32)
	return cfg
}

// StateMachineConfig holds the register values written by
// [StateMachine.SetConfig].
type StateMachineConfig struct {
	// Frequency = clock freq / (CLKDIV_INT + CLKDIV_FRAC / 256)
	ClkDiv    uint32
	ExecCtrl  uint32
	ShiftCtrl uint32
	PinCtrl   uint32
}

// SetClkDivIntFrac sets the clock divider from a whole and fractional part.
//
//	Frequency = clock freq / (CLKDIV_INT + CLKDIV_FRAC / 256)
func (cfg *StateMachineConfig) SetClkDivIntFrac(whole uint16, frac uint8) {
	cfg.ClkDiv = (uint32(frac) << rp.PIO0_SM0_CLKDIV_FRAC_Pos) |
		(uint32(whole) << rp.PIO0_SM0_CLKDIV_INT_Pos)
}

// SetWrap sets the wrapping configuration for the state machine.
// Execution continues at wrapTarget after the instruction at wrap.
func (cfg *StateMachineConfig) SetWrap(wrapTarget uint8, wrap uint8) {
	cfg.ExecCtrl =
		(cfg.ExecCtrl & ^uint32(rp.PIO0_SM0_EXECCTRL_WRAP_TOP_Msk|rp.PIO0_SM0_EXECCTRL_WRAP_BOTTOM_Msk)) |
			(uint32(wrapTarget) << rp.PIO0_SM0_EXECCTRL_WRAP_BOTTOM_Pos) |
			(uint32(wrap) << rp.PIO0_SM0_EXECCTRL_WRAP_TOP_Pos)
}

// SetInShift sets the ISR shift direction, autopush and push threshold.
// A threshold of 32 is encoded as 0.
func (cfg *StateMachineConfig) SetInShift(shiftRight bool, autoPush bool, pushThreshold uint16) {
	cfg.ShiftCtrl = cfg.ShiftCtrl &
		^uint32(rp.PIO0_SM0_SHIFTCTRL_IN_SHIFTDIR_Msk|
			rp.PIO0_SM0_SHIFTCTRL_AUTOPUSH_Msk|
			rp.PIO0_SM0_SHIFTCTRL_PUSH_THRESH_Msk) |
		(boolToBit(shiftRight) << rp.PIO0_SM0_SHIFTCTRL_IN_SHIFTDIR_Pos) |
		(boolToBit(autoPush) << rp.PIO0_SM0_SHIFTCTRL_AUTOPUSH_Pos) |
		(uint32(pushThreshold&0x1f) << rp.PIO0_SM0_SHIFTCTRL_PUSH_THRESH_Pos)
}

// SetOutShift sets the OSR shift direction, autopull and pull threshold.
func (cfg *StateMachineConfig) SetOutShift(shiftRight bool, autoPull bool, pullThreshold uint16) {
	cfg.ShiftCtrl = cfg.ShiftCtrl &
		^uint32(rp.PIO0_SM0_SHIFTCTRL_OUT_SHIFTDIR_Msk|
			rp.PIO0_SM0_SHIFTCTRL_AUTOPULL_Msk|
			rp.PIO0_SM0_SHIFTCTRL_PULL_THRESH_Msk) |
		(boolToBit(shiftRight) << rp.PIO0_SM0_SHIFTCTRL_OUT_SHIFTDIR_Pos) |
		(boolToBit(autoPull) << rp.PIO0_SM0_SHIFTCTRL_AUTOPULL_Pos) |
		(uint32(pullThreshold&0x1f) << rp.PIO0_SM0_SHIFTCTRL_PULL_THRESH_Pos)
}

// SetSidesetParams sets the side-set parameters.
//   - bitCount is the number of delay bits used for side-set, including the enable bit when optional.
//   - optional is true if the topmost side-set bit flags whether side-set applies to an instruction.
//   - pindirs is true if side-set drives pin directions rather than values.
func (cfg *StateMachineConfig) SetSidesetParams(bitCount uint8, optional bool, pindirs bool) {
	if bitCount > 5 {
		panic("SetSideSet: bitCount")
	}
	cfg.PinCtrl = (cfg.PinCtrl & ^uint32(rp.PIO0_SM0_PINCTRL_SIDESET_COUNT_Msk)) |
		(uint32(bitCount) << uint32(rp.PIO0_SM0_PINCTRL_SIDESET_COUNT_Pos))

	cfg.ExecCtrl = (cfg.ExecCtrl & ^uint32(rp.PIO0_SM0_EXECCTRL_SIDE_EN_Msk|rp.PIO0_SM0_EXECCTRL_SIDE_PINDIR_Msk)) |
		(boolToBit(optional) << rp.PIO0_SM0_EXECCTRL_SIDE_EN_Pos) |
		(boolToBit(pindirs) << rp.PIO0_SM0_EXECCTRL_SIDE_PINDIR_Pos)
}

// SetSidesetPins sets the lowest-numbered pin affected by side-set.
func (cfg *StateMachineConfig) SetSidesetPins(firstPin machine.Pin) {
	checkPinBaseAndCount(firstPin, 1)
	cfg.PinCtrl = (cfg.PinCtrl & ^uint32(rp.PIO0_SM0_PINCTRL_SIDESET_BASE_Msk)) |
		(uint32(firstPin) << rp.PIO0_SM0_PINCTRL_SIDESET_BASE_Pos)
}

// SetInPins sets the pin read as bit 0 by IN and WAIT PIN instructions.
func (cfg *StateMachineConfig) SetInPins(base machine.Pin) {
	checkPinBaseAndCount(base, 1)
	cfg.PinCtrl = (cfg.PinCtrl & ^uint32(rp.PIO0_SM0_PINCTRL_IN_BASE_Msk)) | (uint32(base) << rp.PIO0_SM0_PINCTRL_IN_BASE_Pos)
}

func checkPinBaseAndCount(base machine.Pin, count uint8) {
	if base >= 32 {
		panic("pio:bad pin")
	} else if count > 32 {
		panic("pio:count too large")
	}
}

type FifoJoin uint8

const (
	// FifoJoinNone keeps separate RX and TX FIFOs of depth 4 each.
	FifoJoinNone FifoJoin = iota
	// FifoJoinTx joins the RX and TX FIFOs into a single TX FIFO of depth 8.
	FifoJoinTx
	// FifoJoinRx joins the RX and TX FIFOs into a single RX FIFO of depth 8.
	FifoJoinRx
)

// SetFIFOJoin sets up FIFO joining.
func (cfg *StateMachineConfig) SetFIFOJoin(join FifoJoin) {
	if join > FifoJoinRx {
		panic("SetFIFOJoin: join")
	}
	cfg.ShiftCtrl = (cfg.ShiftCtrl & ^uint32(rp.PIO0_SM0_SHIFTCTRL_FJOIN_TX_Msk|rp.PIO0_SM0_SHIFTCTRL_FJOIN_RX_Msk)) |
		(uint32(join) << rp.PIO0_SM0_SHIFTCTRL_FJOIN_TX_Pos)
}

func boolToBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
