package joybus

import (
	"errors"
	"time"
)

// Transfer errors.
var (
	// ErrTimeout is returned when a response byte does not arrive within
	// ByteTimeout. The bytes received before it are kept.
	ErrTimeout = errors.New("joybus: response timeout")

	// ErrEmptyRequest is returned for a transfer without request bytes.
	ErrEmptyRequest = errors.New("joybus: empty request")

	// ErrResponseLength is returned when the expected response length is
	// outside 1..MaxResponse.
	ErrResponseLength = errors.New("joybus: response length out of range")
)

// Link is the boundary to the real-time codec that drives the wire. It is
// a pair of bounded queues: words pushed to the codec and bytes pulled back.
//
// The first word of a transfer is the control word carrying the response
// length minus one in bits 24..28. Each following word carries one request
// byte in bits 24..31. Received bytes come back in the low 8 bits.
type Link interface {
	// Reset discards queued words and returns the codec to the start of
	// its program, aborting any receive in progress.
	Reset()
	// Push blocks while the outbound queue is full.
	Push(word uint32)
	// Pull returns the next received word, or ErrTimeout if none is
	// available by deadline.
	Pull(deadline time.Time) (uint32, error)
}

// Stats counts bus activity.
type Stats struct {
	Transfers uint32
	Timeouts  uint32
	BytesIn   uint32
}

// Bus performs request/response transfers over a Link.
// A Bus is not safe for concurrent use; there is one Bus per wire.
type Bus struct {
	link  Link
	stats Stats

	now   func() time.Time
	sleep func(time.Duration)
}

// NewBus returns a Bus transferring over link.
func NewBus(link Link) *Bus {
	return &Bus{
		link:  link,
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Transfer sends request and reads len(response) bytes into response.
// It returns the number of bytes received. If the peripheral stops
// answering, Transfer returns ErrTimeout and the remainder of response is
// zero. Transfer always leaves the bus idle for IdleTime before returning.
func (b *Bus) Transfer(request, response []byte) (n int, err error) {
	if len(request) == 0 {
		return 0, ErrEmptyRequest
	}
	if len(response) == 0 || len(response) > MaxResponse {
		return 0, ErrResponseLength
	}
	for i := range response {
		response[i] = 0
	}

	b.link.Reset()
	b.link.Push(uint32((len(response)-1)&0x1f) << 24)
	for _, c := range request {
		b.link.Push(uint32(c) << 24)
	}
	for n < len(response) {
		word, perr := b.link.Pull(b.now().Add(ByteTimeout))
		if perr != nil {
			err = perr
			break
		}
		response[n] = byte(word)
		n++
	}

	b.stats.Transfers++
	b.stats.BytesIn += uint32(n)
	if err != nil {
		b.stats.Timeouts++
		LogDebug(ComponentBus, "short response", "cmd", request[0], "got", n, "want", len(response))
	} else {
		LogDebug(ComponentBus, "transfer", "cmd", request[0], "len", n)
	}

	b.sleep(IdleTime(len(request), len(response)))
	return n, err
}

// Stats returns the counters accumulated since the Bus was created.
func (b *Bus) Stats() Stats { return b.stats }
