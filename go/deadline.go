package futex

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/lunixbochs/futex/go/native"
)

// Forever is the relative timeout that never expires. Any negative duration
// passed to Wait behaves the same.
const Forever time.Duration = -1

// Deadline is an absolute point in time on either the monotonic or the
// realtime clock. The zero Deadline never expires.
type Deadline struct {
	clock Clock
	at    native.Timespec
	set   bool
}

// Until returns a realtime deadline at t.
func Until(t time.Time) Deadline {
	return Deadline{
		clock: Realtime,
		at:    native.Timespec{Sec: t.Unix(), Nsec: int64(t.Nanosecond())},
		set:   true,
	}
}

// After returns a monotonic deadline d from now.
func After(d time.Duration) Deadline {
	now, err := native.Now(unix.CLOCK_MONOTONIC)
	if err != nil {
		// CLOCK_MONOTONIC cannot fail on Linux; fall back to the wall clock
		return Until(time.Now().Add(d))
	}
	return MonotonicAt(now.Add(d))
}

// MonotonicAt returns a deadline at an absolute CLOCK_MONOTONIC reading.
func MonotonicAt(ts native.Timespec) Deadline {
	return Deadline{clock: Monotonic, at: ts, set: true}
}

func (d Deadline) IsZero() bool { return !d.set }
func (d Deadline) Clock() Clock { return d.clock }

// Timespec returns the absolute timestamp; ok is false for the zero Deadline.
func (d Deadline) Timespec() (ts native.Timespec, ok bool) {
	return d.at, d.set
}

// Remaining reports how long until the deadline on its own clock. It is
// meant for recomputing a relative timeout after ErrInterrupted.
func (d Deadline) Remaining() time.Duration {
	if !d.set {
		return Forever
	}
	clock := int32(unix.CLOCK_MONOTONIC)
	if d.clock == Realtime {
		clock = unix.CLOCK_REALTIME
	}
	now, err := native.Now(clock)
	if err != nil {
		return 0
	}
	left := d.at.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

func (d Deadline) String() string {
	if !d.set {
		return "forever"
	}
	return d.clock.String() + "@" + d.at.Duration().String()
}

// relative converts a Wait timeout to the kernel argument; nil means none.
func relative(d time.Duration) *unix.Timespec {
	if d < 0 {
		return nil
	}
	ts := native.NewTimespec(d)
	return ts.Unix()
}

// absolute converts a Deadline to the kernel argument and the clock flag.
func absolute(d Deadline) (*unix.Timespec, Clock) {
	if !d.set {
		return nil, Monotonic
	}
	return d.at.Unix(), d.clock
}
