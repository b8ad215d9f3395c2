package joybus

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

// fakeLink answers every transfer with reply, one byte per Pull.
type fakeLink struct {
	reply     []byte
	resets    int
	pushed    []uint32
	deadlines []time.Time
	pos       int
}

func (l *fakeLink) Reset() {
	l.resets++
	l.pos = 0
}

func (l *fakeLink) Push(word uint32) { l.pushed = append(l.pushed, word) }

func (l *fakeLink) Pull(deadline time.Time) (uint32, error) {
	l.deadlines = append(l.deadlines, deadline)
	if l.pos >= len(l.reply) {
		return 0, ErrTimeout
	}
	b := l.reply[l.pos]
	l.pos++
	// Upper bits are not part of the byte.
	return 0xabcd00 | uint32(b), nil
}

func newTestBus(link Link) (*Bus, *[]time.Duration) {
	var slept []time.Duration
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBus(link)
	b.now = func() time.Time { return start }
	b.sleep = func(d time.Duration) { slept = append(slept, d) }
	return b, &slept
}

func TestTransfer(t *testing.T) {
	link := &fakeLink{reply: []byte{0x09, 0x00, 0x03}}
	b, slept := newTestBus(link)

	resp := make([]byte, 3)
	n, err := b.Transfer([]byte{0x41}, resp)
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if n != 3 || !bytes.Equal(resp, []byte{0x09, 0x00, 0x03}) {
		t.Errorf("got n=%d resp=%x, want 3 090003", n, resp)
	}
	wantPush := []uint32{2 << 24, 0x41 << 24}
	if len(link.pushed) != len(wantPush) {
		t.Fatalf("pushed %x, want %x", link.pushed, wantPush)
	}
	for i := range wantPush {
		if link.pushed[i] != wantPush[i] {
			t.Errorf("push %d got %#x, want %#x", i, link.pushed[i], wantPush[i])
		}
	}
	if link.resets != 1 {
		t.Errorf("resets got %d, want 1", link.resets)
	}
	if len(*slept) != 1 || (*slept)[0] != 466*time.Microsecond {
		t.Errorf("idle got %v, want [466µs]", *slept)
	}
	for i, dl := range link.deadlines {
		if want := b.now().Add(ByteTimeout); !dl.Equal(want) {
			t.Errorf("deadline %d got %v, want %v", i, dl, want)
		}
	}
}

func TestTransferControlWord(t *testing.T) {
	for _, respLen := range []int{1, 8, 32} {
		link := &fakeLink{}
		b, _ := newTestBus(link)
		b.Transfer([]byte{0x40, 0x03, 0x00}, make([]byte, respLen))
		want := uint32(respLen-1) << 24
		if link.pushed[0] != want {
			t.Errorf("respLen %d: control word got %#x, want %#x", respLen, link.pushed[0], want)
		}
		if got := len(link.pushed); got != 4 {
			t.Errorf("respLen %d: pushed %d words, want 4", respLen, got)
		}
	}
}

func TestTransferPartial(t *testing.T) {
	link := &fakeLink{reply: []byte{0x01, 0x48, 0x80}}
	b, slept := newTestBus(link)

	resp := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	n, err := b.Transfer([]byte{0x40, 0x03, 0x00}, resp)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err got %v, want ErrTimeout", err)
	}
	if n != 3 {
		t.Errorf("n got %d, want 3", n)
	}
	if want := []byte{0x01, 0x48, 0x80, 0, 0, 0, 0, 0}; !bytes.Equal(resp, want) {
		t.Errorf("resp got %x, want %x", resp, want)
	}
	// Collection stops at the first timeout.
	if len(link.deadlines) != 4 {
		t.Errorf("pulls got %d, want 4", len(link.deadlines))
	}
	if len(*slept) != 1 || (*slept)[0] != IdleTime(3, 8) {
		t.Errorf("idle got %v, want %v", *slept, IdleTime(3, 8))
	}
	st := b.Stats()
	if st != (Stats{Transfers: 1, Timeouts: 1, BytesIn: 3}) {
		t.Errorf("stats got %+v", st)
	}
}

func TestTransferNoResponse(t *testing.T) {
	link := &fakeLink{}
	b, _ := newTestBus(link)
	resp := make([]byte, 8)
	n, err := b.Transfer([]byte{0x40, 0x03, 0x00}, resp)
	if n != 0 || !errors.Is(err, ErrTimeout) {
		t.Errorf("got n=%d err=%v, want 0 ErrTimeout", n, err)
	}
	if !bytes.Equal(resp, make([]byte, 8)) {
		t.Errorf("resp got %x, want zeros", resp)
	}
}

func TestTransferArguments(t *testing.T) {
	tests := []struct {
		name    string
		req     []byte
		respLen int
		want    error
	}{
		{"empty request", nil, 3, ErrEmptyRequest},
		{"empty response", []byte{0x41}, 0, ErrResponseLength},
		{"response too long", []byte{0x41}, MaxResponse + 1, ErrResponseLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := &fakeLink{reply: []byte{1, 2, 3}}
			b, slept := newTestBus(link)
			_, err := b.Transfer(tt.req, make([]byte, tt.respLen))
			if !errors.Is(err, tt.want) {
				t.Errorf("err got %v, want %v", err, tt.want)
			}
			if link.resets != 0 || len(link.pushed) != 0 || len(*slept) != 0 {
				t.Errorf("link touched: resets=%d pushed=%d slept=%d", link.resets, len(link.pushed), len(*slept))
			}
		})
	}
}

func TestTransferResetsEachTime(t *testing.T) {
	link := &fakeLink{reply: []byte{0x09, 0x00, 0x03}}
	b, _ := newTestBus(link)
	for i := 0; i < 3; i++ {
		resp := make([]byte, 3)
		if _, err := b.Transfer([]byte{0x41}, resp); err != nil {
			t.Fatalf("transfer %d: %v", i, err)
		}
	}
	if link.resets != 3 {
		t.Errorf("resets got %d, want 3", link.resets)
	}
	if st := b.Stats(); st.Transfers != 3 || st.BytesIn != 9 || st.Timeouts != 0 {
		t.Errorf("stats got %+v", st)
	}
}
