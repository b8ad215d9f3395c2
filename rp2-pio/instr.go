package pio

import (
	"errors"
	"math"
)

// This file contains the primitives for creating instructions dynamically.
// It carries no build constraints so programs can be assembled and checked on the host.
const (
	_INSTR_BITS_JMP  = 0x0000
	_INSTR_BITS_WAIT = 0x2000
	_INSTR_BITS_IN   = 0x4000
	_INSTR_BITS_OUT  = 0x6000
	_INSTR_BITS_PUSH = 0x8000
	_INSTR_BITS_PULL = 0x8080
	_INSTR_BITS_MOV  = 0xa000
	_INSTR_BITS_IRQ  = 0xc000
	_INSTR_BITS_SET  = 0xe000

	// Bit mask for instruction code
	_INSTR_BITS_Msk = 0xe000
)

type JmpCond uint8

const (
	// No condition, always jumps.
	JmpAlways JmpCond = iota
	// Jump if X is zero.
	JmpXZero
	// Jump if X is not zero, prior to decrement of X.
	JmpXNZeroDec
	// Jump if Y is zero.
	JmpYZero
	// Jump if Y is not zero, prior to decrement of Y.
	JmpYNZeroDec
	// Jump if X is not equal to Y.
	JmpXNotEqualY
	// Jump if EXECCTRL_JMP_PIN (state machine configured) is high.
	JmpPinInput
	// Compares the bits shifted out since last pull with the shift count theshold
	// (configured by SHIFTCTRL_PULL_THRESH) and jumps if there are remaining bits to shift.
	JmpOSRNotEmpty
)

// InSrc is the source of an IN instruction.
type InSrc uint8

const (
	InSrcPins InSrc = 0
	InSrcX    InSrc = 1
	InSrcY    InSrc = 2
	InSrcNull InSrc = 3
	InSrcISR  InSrc = 6
	InSrcOSR  InSrc = 7
)

// OutDest is the destination of an OUT instruction.
type OutDest uint8

const (
	OutDestPins    OutDest = 0
	OutDestX       OutDest = 1
	OutDestY       OutDest = 2
	OutDestNull    OutDest = 3
	OutDestPindirs OutDest = 4
	OutDestPC      OutDest = 5
	OutDestISR     OutDest = 6
	OutDestExec    OutDest = 7
)

// SetDest is the destination of a SET instruction.
type SetDest uint8

const (
	SetDestPins    SetDest = 0
	SetDestX       SetDest = 1
	SetDestY       SetDest = 2
	SetDestPindirs SetDest = 4
)

// MovSrc is the source of a MOV instruction.
type MovSrc uint8

const (
	MovSrcPins   MovSrc = 0
	MovSrcX      MovSrc = 1
	MovSrcY      MovSrc = 2
	MovSrcNull   MovSrc = 3
	MovSrcStatus MovSrc = 5
	MovSrcISR    MovSrc = 6
	MovSrcOSR    MovSrc = 7
)

// MovDest is the destination of a MOV instruction.
type MovDest uint8

const (
	MovDestPins MovDest = 0
	MovDestX    MovDest = 1
	MovDestY    MovDest = 2
	MovDestExec MovDest = 4
	MovDestPC   MovDest = 5
	MovDestISR  MovDest = 6
	MovDestOSR  MovDest = 7
)

// AssemblerV0 provides a fluent API for programming PIO version 0 (RP2040)
// instructions from Go. The zero value assembles programs without side-set.
//
//	asm := pio.AssemblerV0{SidesetBits: 2, SidesetOptional: true}
//	asm.Out(pio.OutDestX, 1).Side(0).Delay(3).Encode() // out x, 1 side 0 [3]
type AssemblerV0 struct {
	// SidesetBits is the number of delay/side-set bits stolen for side-set,
	// counting the enable bit when SidesetOptional is set.
	SidesetBits uint8
	// SidesetOptional matches the `.side_set n opt` directive: instructions
	// without a Side call leave the side-set pins untouched.
	SidesetOptional bool
}

type instructionV0 struct {
	instr    uint16
	sideBits uint8
	optional bool
}

// Encode returns the 16-bit machine word of the instruction.
func (instr instructionV0) Encode() uint16 { return instr.instr }

// Side sets the side-set value of the instruction.
func (instr instructionV0) Side(value uint8) instructionV0 {
	if instr.sideBits == 0 {
		panic("pio:side-set not configured")
	}
	valueBits := instr.sideBits
	if instr.optional {
		valueBits--
		instr.instr |= 0x1000
	}
	instr.instr |= uint16(value&(1<<valueBits-1)) << (13 - instr.sideBits)
	return instr
}

// Delay sets the number of idle cycles executed after the instruction.
func (instr instructionV0) Delay(cycles uint8) instructionV0 {
	limit := uint8(0x1f) >> instr.sideBits
	if cycles > limit {
		panic("pio:delay too large for side-set configuration")
	}
	instr.instr |= uint16(cycles) << 8
	return instr
}

func (asm AssemblerV0) instr(bits uint16) instructionV0 {
	return instructionV0{instr: bits, sideBits: asm.SidesetBits, optional: asm.SidesetOptional}
}

func (asm AssemblerV0) instrArgs(bits uint16, arg1, arg2 uint8) instructionV0 {
	return asm.instr(bits | uint16(arg1&0b111)<<5 | uint16(arg2&0x1f))
}

// Jmp jumps to addr if cond is true. Addresses are relative to the program
// start and relocated by [PIO.AddProgram].
func (asm AssemblerV0) Jmp(addr uint8, cond JmpCond) instructionV0 {
	return asm.instrArgs(_INSTR_BITS_JMP, uint8(cond), addr)
}

// WaitGPIO stalls until the absolute GPIO pin reaches polarity.
func (asm AssemblerV0) WaitGPIO(polarity bool, pin uint8) instructionV0 {
	return asm.instrArgs(_INSTR_BITS_WAIT, boolAsU8(polarity)<<2, pin)
}

// WaitPin stalls until the input pin, relative to the IN base, reaches polarity.
func (asm AssemblerV0) WaitPin(polarity bool, pin uint8) instructionV0 {
	return asm.instrArgs(_INSTR_BITS_WAIT, boolAsU8(polarity)<<2|1, pin)
}

// WaitIRQ stalls until the IRQ flag reaches polarity.
func (asm AssemblerV0) WaitIRQ(polarity, relative bool, irq uint8) instructionV0 {
	return asm.instrArgs(_INSTR_BITS_WAIT, boolAsU8(polarity)<<2|2, boolAsU8(relative)<<4|irq&0b111)
}

// In shifts bitCount bits from src into the ISR. A bitCount of 32 is encoded as 0.
func (asm AssemblerV0) In(src InSrc, bitCount uint8) instructionV0 {
	return asm.instrArgs(_INSTR_BITS_IN, uint8(src), bitCount)
}

// Out shifts bitCount bits out of the OSR into dest. A bitCount of 32 is encoded as 0.
func (asm AssemblerV0) Out(dest OutDest, bitCount uint8) instructionV0 {
	return asm.instrArgs(_INSTR_BITS_OUT, uint8(dest), bitCount)
}

// Push pushes the ISR into the RX FIFO.
func (asm AssemblerV0) Push(ifFull, block bool) instructionV0 {
	return asm.instrArgs(_INSTR_BITS_PUSH, boolAsU8(ifFull)<<1|boolAsU8(block), 0)
}

// Pull loads a word from the TX FIFO into the OSR.
func (asm AssemblerV0) Pull(ifEmpty, block bool) instructionV0 {
	return asm.instrArgs(_INSTR_BITS_PULL, boolAsU8(ifEmpty)<<1|boolAsU8(block), 0)
}

// Mov copies src into dest.
func (asm AssemblerV0) Mov(dest MovDest, src MovSrc) instructionV0 {
	return asm.instrArgs(_INSTR_BITS_MOV, uint8(dest), uint8(src)&0b111)
}

// MovInvert copies the bitwise complement of src into dest.
func (asm AssemblerV0) MovInvert(dest MovDest, src MovSrc) instructionV0 {
	return asm.instrArgs(_INSTR_BITS_MOV, uint8(dest), 1<<3|uint8(src)&0b111)
}

// Set writes the 5-bit immediate value to dest.
func (asm AssemblerV0) Set(dest SetDest, value uint8) instructionV0 {
	return asm.instrArgs(_INSTR_BITS_SET, uint8(dest), value)
}

// IRQSet raises the IRQ flag without waiting for it to be cleared.
func (asm AssemblerV0) IRQSet(relative bool, irq uint8) instructionV0 {
	return asm.instrArgs(_INSTR_BITS_IRQ, 0, boolAsU8(relative)<<4|irq&0b111)
}

// IRQClear clears the IRQ flag.
func (asm AssemblerV0) IRQClear(relative bool, irq uint8) instructionV0 {
	return asm.instrArgs(_INSTR_BITS_IRQ, 0b010, boolAsU8(relative)<<4|irq&0b111)
}

// Nop is assembled as `mov y, y`.
func (asm AssemblerV0) Nop() instructionV0 {
	return asm.Mov(MovDestY, MovSrcY)
}

// ClkDivFromPeriod calculates the CLKDIV register values
// to reach a given StateMachine cycle period given the RP2040 CPU frequency.
// period is expected to be in nanoseconds. freq is expected to be in Hz.
//
// Prefer using ClkDivFromFrequency if possible for speed and accuracy.
func ClkDivFromPeriod(period, cpuFreq uint32) (whole uint16, frac uint8, err error) {
	//  freq = 256*clockfreq / (256*whole + frac)
	// where period = 1e9/freq => freq = 1e9/period, so:
	//  256*whole + frac = 256*clockfreq*period/1e9
	return splitClkdiv(256 * uint64(period) * uint64(cpuFreq) / uint64(1e9))
}

// ClkDivFromFrequency calculates the CLKDIV register values
// to reach a given StateMachine cycle frequency. freq and cpuFreq are expected to be in Hz.
func ClkDivFromFrequency(freq, cpuFreq uint32) (whole uint16, frac uint8, err error) {
	//  256*whole + frac = 256*clockfreq / freq
	return splitClkdiv(256 * uint64(cpuFreq) / uint64(freq))
}

func splitClkdiv(clkdiv uint64) (whole uint16, frac uint8, err error) {
	if clkdiv > 256*math.MaxUint16 {
		return 0, 0, errors.New("ClkDiv: too large period or CPU frequency")
	} else if clkdiv < 256 {
		return 0, 0, errors.New("ClkDiv: too small period or CPU frequency")
	}
	whole = uint16(clkdiv / 256)
	frac = uint8(clkdiv % 256)
	return whole, frac, nil
}

func boolAsU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
