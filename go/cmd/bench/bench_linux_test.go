//go:build linux

package bench

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lunixbochs/futex/go/trace"
)

func TestModes(t *testing.T) {
	for name := range modes {
		for _, shared := range []bool{false, true} {
			c := DefaultConfig
			c.Mode = name
			c.Iters = 200
			c.Threads = 3
			c.Shared = shared
			s, err := Run(&c)
			if err != nil {
				t.Fatalf("%s shared=%v: %v", name, shared, err)
			}
			want := c.Iters
			if name == "pi" {
				want *= c.Threads
			}
			if s.Count != want {
				t.Fatalf("%s shared=%v: %d samples, want %d", name, shared, s.Count, want)
			}
			if s.Min > s.P50 || s.P50 > s.Max {
				t.Fatalf("%s: unordered summary %s", name, s)
			}
		}
	}
}

func TestRunTrace(t *testing.T) {
	c := DefaultConfig
	c.Mode = "wake"
	c.Iters = 5
	c.TraceTo = filepath.Join(t.TempDir(), "wake.trace")
	if _, err := Run(&c); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(c.TraceTo)
	if err != nil {
		t.Fatal(err)
	}
	r, err := trace.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	count := 0
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatal(err)
		}
		if rec.Ret != 0 || time.Duration(rec.Elapsed) < 0 {
			t.Fatalf("bad record: %s", rec)
		}
		count++
	}
	// tests in this package do not run in parallel, so only these calls are traced
	if count != c.Iters {
		t.Fatalf("traced %d calls, want %d", count, c.Iters)
	}
}
