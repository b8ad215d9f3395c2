package piolib

import (
	"runtime"
	"time"
)

func gosched() {
	runtime.Gosched()
}

type deadline struct {
	t time.Time
}

func newDeadline(t time.Time) deadline {
	return deadline{t: t}
}

// expired reports whether the deadline has been reached. The zero deadline
// never expires.
func (dl deadline) expired() bool {
	if dl.t.IsZero() {
		return false
	}
	return !time.Now().Before(dl.t)
}
