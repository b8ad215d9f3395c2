//go:build rp2040 || rp2350

package pio

import (
	"device/rp"
	"errors"
	"machine"
	"runtime/volatile"
	"unsafe"
)

// PIO peripheral handles.
var (
	PIO0 = &PIO{
		hw: rp.PIO0,
	}
	PIO1 = &PIO{
		hw: rp.PIO1,
	}
)

// PIO errors.
var (
	ErrOutOfProgramSpace   = errors.New("pio: out of program space")
	ErrNoSpaceAtOffset     = errors.New("pio: program space unavailable at offset")
	errStateMachineClaimed = errors.New("pio: state machine already claimed")
)

const (
	badStateMachineIndex = "invalid state machine index"
	badPIO               = "invalid PIO"
	badProgramBounds     = "invalid program bounds"
)

// PIO is one of the programmable IO blocks. Each block has 32 instruction
// slots shared by its four state machines.
type PIO struct {
	hw *rp.PIO0_Type
	// Bitmask of used instruction space.
	usedSpaceMask uint32
	// Bitmask of claimed state machines.
	claimedSMMask uint8
	nc            noCopy
}

// BlockIndex returns 0, 1, or 2 depending on whether the underlying device is PIO0, PIO1, or PIO2.
func (pio *PIO) BlockIndex() uint8 {
	return pio.blockIndex()
}

// StateMachine returns a state machine by index.
func (pio *PIO) StateMachine(index uint8) StateMachine {
	if index > 3 {
		panic(badStateMachineIndex)
	}
	return StateMachine{
		pio:   pio,
		index: index,
	}
}

// ClaimStateMachine returns an unused state machine
// or an error if all state machines on this PIO are claimed.
func (pio *PIO) ClaimStateMachine() (sm StateMachine, err error) {
	for i := uint8(0); i < 4; i++ {
		sm = pio.StateMachine(i)
		if sm.TryClaim() {
			return sm, nil
		}
	}
	return StateMachine{}, errStateMachineClaimed
}

// AddProgram loads a PIO program into PIO memory and returns the offset where it was loaded.
// Jump targets in instructions are relative to the program start and are
// relocated to the load offset.
//
// origin indicates where in the PIO execution memory the program must be loaded,
// or -1 if the code is position independent.
func (pio *PIO) AddProgram(instructions []uint16, origin int8) (offset uint8, _ error) {
	maybeOffset := pio.findOffsetForProgram(instructions, origin)
	if maybeOffset < 0 {
		return 0, ErrOutOfProgramSpace
	}
	offset = uint8(maybeOffset)
	return offset, pio.AddProgramAtOffset(instructions, origin, offset)
}

// AddProgramAtOffset loads a PIO program into PIO memory at a specific offset
// and returns a non-nil error if there is not enough space.
func (pio *PIO) AddProgramAtOffset(instructions []uint16, origin int8, offset uint8) error {
	if !pio.CanAddProgramAtOffset(instructions, origin, offset) {
		return ErrNoSpaceAtOffset
	}
	for i, instr := range instructions {
		if instr&_INSTR_BITS_Msk == _INSTR_BITS_JMP {
			instr += uint16(offset)
		}
		pio.writeInstructionMemory(offset+uint8(i), instr)
	}
	programMask := uint32((1 << len(instructions)) - 1)
	pio.usedSpaceMask |= programMask << uint32(offset)
	return nil
}

// CanAddProgramAtOffset returns true if there is enough space for program at given offset.
func (pio *PIO) CanAddProgramAtOffset(instructions []uint16, origin int8, offset uint8) bool {
	// Non-relocatable programs must be added at offset
	if origin >= 0 && origin != int8(offset) {
		return false
	}
	if int(offset)+len(instructions) > 32 {
		return false
	}
	programMask := uint32((1 << len(instructions)) - 1)
	return pio.usedSpaceMask&(programMask<<offset) == 0
}

// ClearProgramSection releases a contiguous section of program memory,
// filling it with jumps to its own start so a state machine still running
// there cannot wander into other programs.
func (pio *PIO) ClearProgramSection(offset, length uint8) {
	if offset+length > 32 {
		panic(badProgramBounds)
	}
	trap := AssemblerV0{}.Jmp(offset, JmpAlways).Encode()
	for i := offset; i < offset+length; i++ {
		pio.writeInstructionMemory(i, trap)
	}
	pio.usedSpaceMask &^= uint32((1<<length)-1) << offset
}

func (pio *PIO) writeInstructionMemory(offset uint8, value uint16) {
	// Instruction memory registers are 32 bit with only the lower 16 used.
	start := unsafe.Pointer(&pio.hw.INSTR_MEM0)
	reg := (*volatile.Register32)(unsafe.Pointer(uintptr(start) + uintptr(offset)*4))
	reg.Set(uint32(value))
}

func (pio *PIO) findOffsetForProgram(instructions []uint16, origin int8) int8 {
	programLen := uint32(len(instructions))
	programMask := uint32((1 << programLen) - 1)

	// Program has fixed offset (not relocatable)
	if origin >= 0 {
		if uint32(origin) > 32-programLen {
			return -1
		}
		if (pio.usedSpaceMask & (programMask << origin)) != 0 {
			return -1
		}
		return origin
	}

	// work down from the top always
	for i := int8(32 - programLen); i >= 0; i-- {
		if pio.usedSpaceMask&(programMask<<uint32(i)) == 0 {
			return i
		}
	}
	return -1
}

type statemachineHW struct {
	CLKDIV    volatile.Register32 // 0xC8 for SM0
	EXECCTRL  volatile.Register32 // 0xCC for SM0
	SHIFTCTRL volatile.Register32 // 0xD0 for SM0
	ADDR      volatile.Register32 // 0xD4 for SM0
	INSTR     volatile.Register32 // 0xD8 for SM0
	PINCTRL   volatile.Register32 // 0xDC for SM0
}

func (pio *PIO) smHW(index uint8) *statemachineHW {
	if index > 3 {
		panic(badStateMachineIndex)
	}
	const size = unsafe.Sizeof(statemachineHW{})
	ptr := uintptr(unsafe.Pointer(&pio.hw.SM0_CLKDIV)) + uintptr(index)*size
	return (*statemachineHW)(unsafe.Pointer(ptr))
}

// PinMode returns the PinMode for a PIO state machine, one of
// PIO0, PIO1, or PIO2.
func (pio *PIO) PinMode() machine.PinMode {
	return machine.PinPIO0 + machine.PinMode(pio.BlockIndex())
}

// SetInputSyncBypassMasked sets the pinMask bits of the INPUT_SYNC_BYPASS register
// with the values in the corresponding bypassMask bits.
//
// There is a 2-flipflop synchronizer on each GPIO input which delays
// input by two cycles. A zero bit in bypassMask keeps it enabled.
func (pio *PIO) SetInputSyncBypassMasked(bypassMask, pinMask uint32) {
	pio.hw.INPUT_SYNC_BYPASS.ReplaceBits(bypassMask, pinMask, 0)
}

// GPIODirections returns the current PIO-commanded pin directions (Output Enable).
// On an open-drain line driven through pin directions this shows when the
// line is being pulled low.
func (pio *PIO) GPIODirections() uint32 {
	return pio.hw.DBG_PADOE.Get()
}

// noCopy may be embedded into structs which must not be copied
// after the first use.
//
// See https://golang.org/issues/8005#issuecomment-190753527
// for details.
type noCopy struct{}

// Lock is a no-op used by -copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
