package piolib

import (
	pio "github.com/tinygo-org/joybus/rp2-pio"
)

// Joybus program timing: the state machine runs at joybusFreq so one
// microsecond, the short pulse, is joybusT1 cycles.
const (
	joybusFreq = 4_000_000
	joybusT1   = 4

	joybusOrigin     = -1
	joybusWrapTarget = 0
	joybusWrap       = 18
)

// joybusProgram assembles the Joybus codec. Side-set drives the pin
// direction of an open-drain line: side 1 pulls the line low, side 0
// releases it.
//
//	.side_set 1 opt pindirs
//	.wrap_target
//	    out y, 8 side 0          ; response length - 1
//	    nop [7]                  ; lead-in before the first bit
//	    nop [7]
//	    nop [7]
//	    nop [7]
//	sendData:
//	    out x, 1 side 0 [T1-1]   ; tail of previous slot, high
//	    jmp !x doZero side 1 [T1-1]
//	doOne:
//	    jmp !osre sendData side 0 [2*T1-1]
//	    jmp sendStop [T1-1]
//	doZero:
//	    jmp !osre sendData [2*T1-1]
//	    jmp sendStop side 0 [T1-1]
//	sendStop:
//	    nop side 1 [T1-1]
//	    nop side 0
//	receiveByte:
//	    set x, 7
//	getBit:
//	    wait 0 pin 0 [T1+1]      ; sample 1.5us after the falling edge
//	    in pins, 1
//	    wait 1 pin 0
//	    jmp x-- getBit
//	    jmp y-- receiveByte
//	.wrap
func joybusProgram() [19]uint16 {
	asm := pio.AssemblerV0{SidesetBits: 2, SidesetOptional: true}
	const (
		sendData    = 5
		doZero      = 9
		sendStop    = 11
		receiveByte = 13
		getBit      = 14
	)
	return [19]uint16{
		asm.Out(pio.OutDestY, 8).Side(0).Encode(),
		asm.Nop().Delay(7).Encode(),
		asm.Nop().Delay(7).Encode(),
		asm.Nop().Delay(7).Encode(),
		asm.Nop().Delay(7).Encode(),
		sendData: asm.Out(pio.OutDestX, 1).Side(0).Delay(joybusT1 - 1).Encode(),
		asm.Jmp(doZero, pio.JmpXZero).Side(1).Delay(joybusT1 - 1).Encode(),
		asm.Jmp(sendData, pio.JmpOSRNotEmpty).Side(0).Delay(2*joybusT1 - 1).Encode(),
		asm.Jmp(sendStop, pio.JmpAlways).Delay(joybusT1 - 1).Encode(),
		doZero: asm.Jmp(sendData, pio.JmpOSRNotEmpty).Delay(2*joybusT1 - 1).Encode(),
		asm.Jmp(sendStop, pio.JmpAlways).Side(0).Delay(joybusT1 - 1).Encode(),
		sendStop: asm.Nop().Side(1).Delay(joybusT1 - 1).Encode(),
		asm.Nop().Side(0).Encode(),
		receiveByte: asm.Set(pio.SetDestX, 7).Encode(),
		getBit: asm.WaitPin(false, 0).Delay(joybusT1 + 1).Encode(),
		asm.In(pio.InSrcPins, 1).Encode(),
		asm.WaitPin(true, 0).Encode(),
		asm.Jmp(getBit, pio.JmpXNZeroDec).Encode(),
		joybusWrap: asm.Jmp(receiveByte, pio.JmpYNZeroDec).Encode(),
	}
}
