package pio

import (
	"testing"
)

func TestAssemblerV0_spi3w(t *testing.T) {
	assm := AssemblerV0{
		SidesetBits: 1,
	}
	const (
		wloopOff = 0
		rloopOff = 5
		endOff   = 7
	)
	tests := []struct {
		got  uint16
		want uint16
		src  string
	}{
		{assm.Out(OutDestPins, 1).Side(0).Encode(), 0x6001, "out pins, 1 side 0"},
		{assm.Jmp(wloopOff, JmpXNZeroDec).Side(1).Encode(), 0x1040, "jmp x--, 0 side 1"},
		{assm.Jmp(endOff, JmpYZero).Side(0).Encode(), 0x0067, "jmp !y, 7 side 0"},
		{assm.Set(SetDestPindirs, 0).Side(0).Encode(), 0xe080, "set pindirs, 0 side 0"},
		{assm.Nop().Side(0).Encode(), 0xa042, "nop side 0"},
		{assm.In(InSrcPins, 1).Side(1).Encode(), 0x5001, "in pins, 1 side 1"},
		{assm.Jmp(rloopOff, JmpYNZeroDec).Side(0).Encode(), 0x0085, "jmp y--, 5 side 0"},
		{assm.WaitPin(true, 0).Side(0).Encode(), 0x20a0, "wait 1 pin, 0 side 0"},
		{assm.IRQSet(false, 0).Side(0).Encode(), 0xc000, "irq nowait 0 side 0"},
	}
	for i, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("instr %d (%s) mismatch got!=expected: %#x != %#x", i, tt.src, tt.got, tt.want)
		}
	}
}

func TestAssemblerV0_optionalSideset(t *testing.T) {
	// .side_set 1 opt
	assm := AssemblerV0{SidesetBits: 2, SidesetOptional: true}
	tests := []struct {
		got  uint16
		want uint16
		src  string
	}{
		{assm.Out(OutDestY, 8).Side(0).Encode(), 0x7048, "out y, 8 side 0"},
		{assm.Nop().Delay(7).Encode(), 0xa742, "nop [7]"},
		{assm.Jmp(9, JmpXZero).Side(1).Delay(3).Encode(), 0x1b29, "jmp !x, 9 side 1 [3]"},
		{assm.Jmp(5, JmpOSRNotEmpty).Delay(7).Encode(), 0x07e5, "jmp !osre, 5 [7]"},
		{assm.Set(SetDestX, 7).Encode(), 0xe027, "set x, 7"},
		{assm.WaitPin(false, 0).Delay(5).Encode(), 0x2520, "wait 0 pin, 0 [5]"},
		{assm.Nop().Side(1).Delay(3).Encode(), 0xbb42, "nop side 1 [3]"},
	}
	for i, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("instr %d (%s) mismatch got!=expected: %#x != %#x", i, tt.src, tt.got, tt.want)
		}
	}
}

func TestAssemblerV0_delayOverflow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for delay that overlaps side-set bits")
		}
	}()
	AssemblerV0{SidesetBits: 2, SidesetOptional: true}.Nop().Delay(8)
}

func TestAssemblerV0_fifoWaitIRQ(t *testing.T) {
	assm := AssemblerV0{}
	tests := []struct {
		got  uint16
		want uint16
		src  string
	}{
		{assm.WaitGPIO(true, 5).Encode(), 0x2085, "wait 1 gpio, 5"},
		{assm.WaitGPIO(false, 0).Encode(), 0x2000, "wait 0 gpio, 0"},
		{assm.WaitIRQ(true, true, 3).Encode(), 0x20d3, "wait 1 irq, 3 rel"},
		{assm.WaitIRQ(false, false, 7).Encode(), 0x2047, "wait 0 irq, 7"},
		{assm.Push(false, true).Encode(), 0x8020, "push block"},
		{assm.Push(true, false).Encode(), 0x8040, "push iffull noblock"},
		{assm.Pull(false, true).Encode(), 0x80a0, "pull block"},
		{assm.Pull(true, false).Encode(), 0x80c0, "pull ifempty noblock"},
		{assm.Mov(MovDestISR, MovSrcNull).Encode(), 0xa0c3, "mov isr, null"},
		{assm.MovInvert(MovDestX, MovSrcY).Encode(), 0xa02a, "mov x, ~y"},
		{assm.MovInvert(MovDestPins, MovSrcPins).Encode(), 0xa008, "mov pins, ~pins"},
		{assm.IRQSet(true, 1).Encode(), 0xc011, "irq nowait 1 rel"},
		{assm.IRQClear(false, 2).Encode(), 0xc042, "irq clear 2"},
		{assm.Pull(false, true).Delay(31).Encode(), 0x9fa0, "pull block [31]"},
	}
	for i, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("instr %d (%s) mismatch got!=expected: %#x != %#x", i, tt.src, tt.got, tt.want)
		}
	}
}

func TestAssemblerV0_sideUnconfigured(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for side-set without side-set bits")
		}
	}()
	AssemblerV0{}.Nop().Side(1)
}

func TestClkDivFromPeriod(t *testing.T) {
	tests := []struct {
		period, cpu uint32
		whole       uint16
		frac        uint8
		wantErr     bool
	}{
		// 250ns is the 4 MHz Joybus cycle.
		{period: 250, cpu: 125_000_000, whole: 31, frac: 64},
		{period: 250, cpu: 150_000_000, whole: 37, frac: 128},
		{period: 8, cpu: 125_000_000, whole: 1, frac: 0},
		{period: 1, cpu: 125_000_000, wantErr: true},
		{period: 1_000_000, cpu: 125_000_000, wantErr: true},
	}
	for _, tt := range tests {
		whole, frac, err := ClkDivFromPeriod(tt.period, tt.cpu)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ClkDivFromPeriod(%d, %d) expected error", tt.period, tt.cpu)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ClkDivFromPeriod(%d, %d): %v", tt.period, tt.cpu, err)
		}
		if whole != tt.whole || frac != tt.frac {
			t.Errorf("ClkDivFromPeriod(%d, %d) = %d+%d/256, want %d+%d/256", tt.period, tt.cpu, whole, frac, tt.whole, tt.frac)
		}
		fw, ff, _ := ClkDivFromFrequency(1_000_000_000/tt.period, tt.cpu)
		if fw != whole || ff != frac {
			t.Errorf("period %dns and frequency disagree: %d+%d/256 != %d+%d/256", tt.period, whole, frac, fw, ff)
		}
	}
}

func TestClkDivFromFrequency(t *testing.T) {
	tests := []struct {
		freq, cpu uint32
		whole     uint16
		frac      uint8
		wantErr   bool
	}{
		{freq: 4_000_000, cpu: 125_000_000, whole: 31, frac: 64},
		{freq: 4_000_000, cpu: 150_000_000, whole: 37, frac: 128},
		{freq: 125_000_000, cpu: 125_000_000, whole: 1, frac: 0},
		{freq: 200_000_000, cpu: 125_000_000, wantErr: true},
	}
	for _, tt := range tests {
		whole, frac, err := ClkDivFromFrequency(tt.freq, tt.cpu)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ClkDivFromFrequency(%d, %d) expected error", tt.freq, tt.cpu)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ClkDivFromFrequency(%d, %d): %v", tt.freq, tt.cpu, err)
		}
		if whole != tt.whole || frac != tt.frac {
			t.Errorf("ClkDivFromFrequency(%d, %d) = %d+%d/256, want %d+%d/256", tt.freq, tt.cpu, whole, frac, tt.whole, tt.frac)
		}
	}
}
