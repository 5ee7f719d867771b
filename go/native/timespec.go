package native

import (
	"math"
	"time"

	"golang.org/x/sys/unix"
)

// Timespec is the fixed-width, packable form of a kernel timespec.
type Timespec struct {
	Sec  int64 `struc:"int64"`
	Nsec int64 `struc:"int64"`
}

func NewTimespec(d time.Duration) Timespec {
	return Timespec{Sec: int64(d / time.Second), Nsec: int64(d % time.Second)}
}

func FromUnix(ts *unix.Timespec) Timespec {
	sec, nsec := ts.Unix()
	return Timespec{Sec: sec, Nsec: nsec}
}

const nsPerSec = int64(time.Second)

// MaxTimespec is the latest representable time; Add saturates at it.
var MaxTimespec = Timespec{Sec: math.MaxInt64, Nsec: nsPerSec - 1}

// Duration is the time since the zero Timespec, clamped to the range of
// time.Duration.
func (t *Timespec) Duration() time.Duration {
	return t.Sub(Timespec{})
}

// Sub returns t-u, clamped to the range of time.Duration. Both must have
// Nsec in [0, 1e9).
func (t Timespec) Sub(u Timespec) time.Duration {
	const maxSec = math.MaxInt64 / nsPerSec
	if u.Sec < 0 && t.Sec > math.MaxInt64+u.Sec {
		return math.MaxInt64
	}
	if u.Sec > 0 && t.Sec < math.MinInt64+u.Sec {
		return math.MinInt64
	}
	sec, nsec := t.Sec-u.Sec, t.Nsec-u.Nsec
	if sec > maxSec || (sec == maxSec && nsec > math.MaxInt64%nsPerSec) {
		return math.MaxInt64
	}
	if sec < -maxSec || (sec == -maxSec && nsec < math.MinInt64%nsPerSec) {
		return math.MinInt64
	}
	return time.Duration(sec)*time.Second + time.Duration(nsec)
}

// Add returns t shifted by d, normalizing Nsec into [0, 1e9) and saturating
// at MaxTimespec instead of wrapping.
func (t Timespec) Add(d time.Duration) Timespec {
	sec := int64(d / time.Second)
	nsec := t.Nsec + int64(d%time.Second)
	if nsec >= nsPerSec {
		sec++
		nsec -= nsPerSec
	} else if nsec < 0 {
		sec--
		nsec += nsPerSec
	}
	if sec > 0 && t.Sec > math.MaxInt64-sec {
		return MaxTimespec
	}
	if sec < 0 && t.Sec < math.MinInt64-sec {
		return Timespec{Sec: math.MinInt64}
	}
	return Timespec{Sec: t.Sec + sec, Nsec: nsec}
}

func (t Timespec) IsZero() bool {
	return t.Sec == 0 && t.Nsec == 0
}

// Unix converts to the host's unix.Timespec, whose field widths vary by arch.
// Times past the range of time.Duration clamp to its maximum.
func (t *Timespec) Unix() *unix.Timespec {
	ts := unix.NsecToTimespec(int64(t.Duration()))
	return &ts
}

// Now reads clock (e.g. unix.CLOCK_MONOTONIC).
func Now(clock int32) (Timespec, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(clock, &ts); err != nil {
		return Timespec{}, err
	}
	return FromUnix(&ts), nil
}
