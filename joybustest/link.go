// Package joybustest provides a software Joybus codec for running
// [joybus.Bus] and the code above it without hardware.
//
// [Link] behaves like the PIO program: it reads a control word and request
// words from a bounded outbound queue, puts the frame on an emulated wire
// as [joybus.BitSlot]s, samples the peripheral's reply and pushes the
// received bytes into a bounded inbound queue.
package joybustest

import (
	"sync"
	"time"

	"github.com/tinygo-org/joybus"
)

// fifoDepth matches the PIO FIFOs in unjoined mode.
const fifoDepth = 4

// Options tune a Link.
type Options struct {
	// Latency delays the peripheral's reply after the stop pulse.
	Latency time.Duration
	// Slack extends every Pull deadline. The PIO answers within
	// microseconds; goroutine hand-off may not.
	Slack time.Duration
}

// Link is a software implementation of [joybus.Link]. The codec runs in
// its own goroutine; call Close to stop it.
type Link struct {
	tx      chan uint32
	rx      chan uint32
	pulling chan struct{}
	reset   chan chan struct{}
	done    chan struct{}
	once    sync.Once

	latency time.Duration
	slack   time.Duration

	mu      sync.Mutex
	dev     Device
	lastReq []byte
	frames  int
}

var _ joybus.Link = (*Link)(nil)

// NewLink starts a codec wired to dev. A nil dev is an empty port.
// opts may be nil.
func NewLink(dev Device, opts *Options) *Link {
	l := &Link{
		tx:      make(chan uint32, fifoDepth),
		rx:      make(chan uint32, fifoDepth),
		pulling: make(chan struct{}),
		reset:   make(chan chan struct{}),
		done:    make(chan struct{}),
		dev:     dev,
	}
	if opts != nil {
		l.latency = opts.Latency
		l.slack = opts.Slack
	}
	go l.run()
	return l
}

// SetDevice plugs dev into the port, or unplugs the current device if dev
// is nil. It takes effect from the next frame.
func (l *Link) SetDevice(dev Device) {
	l.mu.Lock()
	l.dev = dev
	l.mu.Unlock()
}

// LastRequest returns the bytes of the most recent frame seen on the wire.
func (l *Link) LastRequest() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]byte(nil), l.lastReq...)
}

// Frames returns the number of host frames sent so far.
func (l *Link) Frames() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// Close stops the codec goroutine. The Link must not be used afterwards.
func (l *Link) Close() {
	l.once.Do(func() { close(l.done) })
}

// Reset aborts whatever the codec is doing, returns it to waiting for a
// control word and discards both queues.
func (l *Link) Reset() {
	ack := make(chan struct{})
	select {
	case l.reset <- ack:
		<-ack
	case <-l.done:
	}
	for {
		select {
		case <-l.tx:
		case <-l.rx:
		default:
			return
		}
	}
}

// Push blocks while the outbound queue is full.
func (l *Link) Push(word uint32) {
	select {
	case l.tx <- word:
	case <-l.done:
	}
}

// Pull waits for the next received byte. A byte that is not available by
// deadline plus the configured slack yields joybus.ErrTimeout, even if it
// arrives at the same instant.
func (l *Link) Pull(deadline time.Time) (uint32, error) {
	deadline = deadline.Add(l.slack)
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	signal := l.pulling
	for {
		select {
		case <-timer.C:
			return 0, joybus.ErrTimeout
		default:
		}
		select {
		case w := <-l.rx:
			if time.Now().After(deadline) {
				return 0, joybus.ErrTimeout
			}
			return w, nil
		case signal <- struct{}{}:
			signal = nil
		case <-timer.C:
			return 0, joybus.ErrTimeout
		case <-l.done:
			return 0, joybus.ErrTimeout
		}
	}
}

func (l *Link) run() {
	for l.transfer() {
	}
}

// transfer runs one pass of the codec program. It returns false once the
// Link is closed. A Reset acknowledged mid-pass ends the pass early.
func (l *Link) transfer() bool {
	// out y, 8: response length minus one.
	var ctrl uint32
	select {
	case ctrl = <-l.tx:
	case ack := <-l.reset:
		close(ack)
		return true
	case <-l.done:
		return false
	}
	respLen := int(ctrl>>24&0x1f) + 1

	// The first data word is awaited unconditionally, further words are
	// taken until the queue runs dry while the host is waiting for a reply.
	var req []byte
	select {
	case w := <-l.tx:
		req = append(req, byte(w>>24))
	case ack := <-l.reset:
		close(ack)
		return true
	case <-l.done:
		return false
	}
collect:
	for {
		select {
		case w := <-l.tx:
			req = append(req, byte(w>>24))
		case <-l.pulling:
			for {
				select {
				case w := <-l.tx:
					req = append(req, byte(w>>24))
				default:
					break collect
				}
			}
		case ack := <-l.reset:
			close(ack)
			return true
		case <-l.done:
			return false
		}
	}

	l.mu.Lock()
	dev := l.dev
	l.lastReq = req
	l.frames++
	l.mu.Unlock()

	var reply []joybus.BitSlot
	if dev != nil {
		reply = dev.Reply(joybus.AppendFrame(nil, req, true))
	}
	joybus.LogDebug(joybus.ComponentLink, "frame", "req", req, "replySlots", len(reply))

	if l.latency > 0 {
		t := time.NewTimer(l.latency)
		select {
		case <-t.C:
		case ack := <-l.reset:
			t.Stop()
			close(ack)
			return true
		case <-l.done:
			t.Stop()
			return false
		}
	}

	got := joybus.DecodeFrame(reply)
	if len(got) > respLen {
		got = got[:respLen]
	}
	for _, b := range got {
		select {
		case l.rx <- uint32(b):
		case ack := <-l.reset:
			close(ack)
			return true
		case <-l.done:
			return false
		}
	}
	if len(got) == respLen {
		return true
	}

	// Short reply: the program sits waiting for a falling edge that never
	// comes until it is restarted.
	select {
	case ack := <-l.reset:
		close(ack)
		return true
	case <-l.done:
		return false
	}
}
