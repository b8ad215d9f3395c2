//go:build rp2040 || rp2350

package pio

import (
	"device/rp"
	"runtime/volatile"
	"unsafe"
)

// StateMachine represents one of the four state machines in a PIO.
type StateMachine struct {
	pio   *PIO
	index uint8
}

// IsClaimed returns true if the state machine is claimed by other code and should not be used.
func (sm StateMachine) IsClaimed() bool { return sm.pio.claimedSMMask&(1<<sm.index) != 0 }

// Unclaim releases the state machine for use by other code.
func (sm StateMachine) Unclaim() { sm.pio.claimedSMMask &^= 1 << sm.index }

// TryClaim attempts to claim the state machine and returns true if successful.
// Regardless of result the state machine is claimed after the call.
func (sm StateMachine) TryClaim() bool {
	if sm.IsClaimed() {
		return false
	}
	sm.pio.claimedSMMask |= 1 << sm.index
	return true
}

// HW returns a pointer to the configuration hardware registers for this state machine.
func (sm StateMachine) HW() *statemachineHW { return sm.pio.smHW(sm.index) }

// PIO returns the PIO that this state machine is part of.
func (sm StateMachine) PIO() *PIO {
	sm.pio.BlockIndex() // Panic if PIO or state machine not at valid offset.
	return sm.pio
}

// StateMachineIndex returns the index of the state machine within the PIO.
func (sm StateMachine) StateMachineIndex() uint8 { return sm.index }

// Init halts the state machine, applies cfg, flushes both FIFOs and leaves
// the program counter at initialPC. The state machine is left disabled.
// A zero cfg selects DefaultStateMachineConfig.
func (sm StateMachine) Init(initialPC uint8, cfg StateMachineConfig) {
	sm.PIO().BlockIndex()
	sm.SetEnabled(false)
	if cfg == (StateMachineConfig{}) {
		cfg = DefaultStateMachineConfig()
	}
	sm.SetConfig(cfg)
	sm.ClearFIFOs()

	const fdebugMask = uint32((1 << rp.PIO0_FDEBUG_TXOVER_Pos) |
		(1 << rp.PIO0_FDEBUG_RXUNDER_Pos) |
		(1 << rp.PIO0_FDEBUG_TXSTALL_Pos) |
		(1 << rp.PIO0_FDEBUG_RXSTALL_Pos))
	sm.pio.hw.FDEBUG.Set(fdebugMask << sm.index)

	sm.Restart()
	sm.ClkDivRestart()
	sm.Jmp(initialPC, JmpAlways)
}

// SetEnabled controls whether the state machine is running.
func (sm StateMachine) SetEnabled(enabled bool) {
	sm.pio.hw.CTRL.ReplaceBits(boolToBit(enabled), 0x1, sm.index)
}

// Restart clears internal state such as shift counters and a pending
// stalled instruction.
func (sm StateMachine) Restart() {
	sm.pio.hw.CTRL.SetBits(1 << (rp.PIO0_CTRL_SM_RESTART_Pos + sm.index))
}

// ClkDivRestart zeroes the clock divider phase.
func (sm StateMachine) ClkDivRestart() {
	sm.pio.hw.CTRL.SetBits(1 << (rp.PIO0_CTRL_CLKDIV_RESTART_Pos + sm.index))
}

// SetConfig applies state machine configuration to a state machine.
func (sm StateMachine) SetConfig(cfg StateMachineConfig) {
	if sm.index > 3 {
		panic(badStateMachineIndex)
	}
	hw := sm.HW()
	hw.CLKDIV.Set(cfg.ClkDiv)
	hw.EXECCTRL.Set(cfg.ExecCtrl)
	hw.SHIFTCTRL.Set(cfg.ShiftCtrl)
	hw.PINCTRL.Set(cfg.PinCtrl)
}

// TxPut puts a value into the state machine's TX FIFO.
//
// This function does not check for fullness. If the FIFO is full the FIFO
// contents are not affected and the sticky TXOVER flag is set for this FIFO in FDEBUG.
func (sm StateMachine) TxPut(data uint32) {
	sm.TxReg().Set(data)
}

// RxGet reads a word of data from a state machine's RX FIFO.
//
// This function does not check for emptiness.
func (sm StateMachine) RxGet() uint32 {
	return sm.RxReg().Get()
}

// TxReg gets a pointer to the TX FIFO register for this state machine.
func (sm StateMachine) TxReg() *volatile.Register32 {
	start := uintptr(unsafe.Pointer(&sm.pio.hw.TXF0)) // 0x10
	return (*volatile.Register32)(unsafe.Pointer(start + uintptr(sm.index)*4))
}

// RxReg gets a pointer to the RX FIFO register for this state machine.
func (sm StateMachine) RxReg() *volatile.Register32 {
	start := uintptr(unsafe.Pointer(&sm.pio.hw.RXF0)) // 0x20
	return (*volatile.Register32)(unsafe.Pointer(start + uintptr(sm.index)*4))
}

// IsTxFIFOFull returns true if state machine's TX FIFO is full.
func (sm StateMachine) IsTxFIFOFull() bool {
	return sm.pio.hw.FSTAT.Get()&(1<<(rp.PIO0_FSTAT_TXFULL_Pos+sm.index)) != 0
}

// IsRxFIFOEmpty returns true if state machine's RX FIFO is empty.
func (sm StateMachine) IsRxFIFOEmpty() bool {
	return sm.pio.hw.FSTAT.Get()&(1<<(rp.PIO0_FSTAT_RXEMPTY_Pos+sm.index)) != 0
}

// ClearFIFOs clears the TX and RX FIFOs of a state machine.
func (sm StateMachine) ClearFIFOs() {
	shiftctl := &sm.HW().SHIFTCTRL
	// FIFOs are flushed when this bit is changed. Xoring twice returns bit to original state.
	xorBits(shiftctl, rp.PIO0_SM0_SHIFTCTRL_FJOIN_RX_Msk)
	xorBits(shiftctl, rp.PIO0_SM0_SHIFTCTRL_FJOIN_RX_Msk)
}

// Exec immediately executes an instruction on the state machine.
func (sm StateMachine) Exec(instr uint16) {
	sm.HW().INSTR.Set(uint32(instr))
}

// Jmp sets the program counter of a state machine to a PIO program address given a condition.
// The state machine should be halted beforehand.
func (sm StateMachine) Jmp(toAddr uint8, cond JmpCond) {
	sm.Exec(AssemblerV0{}.Jmp(toAddr, cond).Encode())
}

// SetPinsMasked sets initial output values on multiple pins.
// Call before enabling the state machine.
func (sm StateMachine) SetPinsMasked(valueMask, pinMask uint32) {
	sm.setPinExec(SetDestPins, valueMask, pinMask)
}

// SetPindirsMasked sets initial pin directions, 1 meaning output, on multiple pins.
// Call before enabling the state machine.
func (sm StateMachine) SetPindirsMasked(dirMask, pinMask uint32) {
	sm.setPinExec(SetDestPindirs, dirMask, pinMask)
}

func (sm StateMachine) setPinExec(dest SetDest, valueMask, pinMask uint32) {
	hw := sm.HW()
	pinctrlSaved := hw.PINCTRL.Get()
	execctrlSaved := hw.EXECCTRL.Get()
	hw.EXECCTRL.ClearBits(1 << rp.PIO0_SM0_EXECCTRL_OUT_STICKY_Pos)
	for i := uint8(0); i < 32; i++ {
		if pinMask&(1<<i) == 0 {
			continue
		}
		hw.PINCTRL.Set(
			1<<rp.PIO0_SM0_PINCTRL_SET_COUNT_Pos |
				uint32(i)<<rp.PIO0_SM0_PINCTRL_SET_BASE_Pos,
		)
		sm.Exec(AssemblerV0{}.Set(dest, 0x1&uint8(valueMask>>i)).Encode())
	}
	hw.PINCTRL.Set(pinctrlSaved)
	hw.EXECCTRL.Set(execctrlSaved)
}

const regAliasXOR = 0x1 << 12

// aliasReg returns the atomic alias of a peripheral register. Writing to
// Addr+0x1000 XORs the written bits into the register.
//
//go:inline
func aliasReg(alias uintptr, reg *volatile.Register32) *volatile.Register32 {
	alias = uintptr(unsafe.Pointer(reg)) | alias
	return (*volatile.Register32)(unsafe.Pointer(alias))
}

func xorBits(reg *volatile.Register32, bits uint32) {
	aliasReg(regAliasXOR, reg).Set(bits)
}
