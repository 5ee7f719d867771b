package futex

import (
	"math"
	"testing"
	"time"

	"github.com/lunixbochs/futex/go/native"
)

func TestRelativeTimeout(t *testing.T) {
	if relative(Forever) != nil {
		t.Fatal("Forever should map to a nil timespec")
	}
	if relative(-time.Hour) != nil {
		t.Fatal("negative timeouts should map to a nil timespec")
	}
	for _, d := range []time.Duration{0, time.Nanosecond, 1500 * time.Millisecond, 90 * time.Minute} {
		ts := relative(d)
		if ts == nil {
			t.Fatalf("%s mapped to nil", d)
		}
		back := native.FromUnix(ts)
		if got := back.Duration(); got != d {
			t.Errorf("round trip %s -> %s", d, got)
		}
	}
}

func TestDeadlines(t *testing.T) {
	var zero Deadline
	if !zero.IsZero() || zero.Remaining() != Forever {
		t.Fatal("zero deadline should never expire")
	}
	if ts, clock := absolute(zero); ts != nil || clock != Monotonic {
		t.Fatal("zero deadline should map to a nil timespec")
	}

	at := time.Unix(1700000000, 250)
	rt := Until(at)
	if rt.Clock() != Realtime {
		t.Fatal("Until should use the realtime clock")
	}
	ts, clock := absolute(rt)
	if clock != Realtime || ts == nil {
		t.Fatal("realtime deadline lost its clock")
	}
	if sec, nsec := ts.Unix(); sec != 1700000000 || nsec != 250 {
		t.Fatalf("got %d.%09d", sec, nsec)
	}

	mono := After(time.Second)
	if mono.Clock() != Monotonic {
		t.Fatal("After should use the monotonic clock")
	}
	if left := mono.Remaining(); left <= 0 || left > time.Second {
		t.Fatalf("unexpected remaining time: %s", left)
	}
	if left := After(-time.Second).Remaining(); left != 0 {
		t.Fatalf("past deadline has %s left", left)
	}
}

func TestTimespecAdd(t *testing.T) {
	ts := native.Timespec{Sec: 10, Nsec: 900000000}
	sum := ts.Add(200 * time.Millisecond)
	if sum.Sec != 11 || sum.Nsec != 100000000 {
		t.Fatalf("got %+v", sum)
	}
	diff := ts.Add(-950 * time.Millisecond)
	if diff.Sec != 9 || diff.Nsec != 950000000 {
		t.Fatalf("got %+v", diff)
	}
}

func TestDeadlineFarFuture(t *testing.T) {
	d := After(math.MaxInt64)
	ts, ok := d.Timespec()
	if !ok || ts.Sec <= 0 {
		t.Fatalf("far deadline wrapped to %+v", ts)
	}
	if left := d.Remaining(); left < 200*365*24*time.Hour {
		t.Fatalf("far deadline has only %s left", left)
	}
	kts, _ := absolute(d)
	if sec, nsec := kts.Unix(); sec <= 0 || nsec < 0 {
		t.Fatalf("kernel timespec %d.%09d is not a valid deadline", sec, nsec)
	}
	if left := Until(time.Now().Add(-time.Hour)).Remaining(); left != 0 {
		t.Fatalf("past realtime deadline has %s left", left)
	}
}
