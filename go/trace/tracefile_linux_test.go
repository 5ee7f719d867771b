//go:build linux

package trace

import (
	"io"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	futex "github.com/lunixbochs/futex/go"
)

func TestTraceFutexCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.trace")
	fd, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w, err := NewWriter(fd, os.Getpid())
	if err != nil {
		t.Fatal(err)
	}
	old := futex.SetTracer(w)
	f := futex.NewFutex[futex.Private](1)
	f.Wait(0, time.Second)
	f.Wake(futex.WakeAll)
	futex.SetTracer(old)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	in, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewReader(in)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	var recs []*Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatal(err)
		}
		recs = append(recs, rec)
	}
	if len(recs) != 2 {
		t.Fatalf("read %d records, want 2", len(recs))
	}
	if syscall.Errno(recs[0].Errno) != syscall.EAGAIN || recs[0].Tid == 0 {
		t.Fatalf("bad wait record: %s", recs[0])
	}
	if recs[1].Errno != 0 || recs[1].Ret != 0 {
		t.Fatalf("bad wake record: %s", recs[1])
	}
}

func TestSyscallName(t *testing.T) {
	table := syscallTable()
	if table == nil {
		t.Skip("no syscall table for this arch")
	}
	if name, ok := table[futex.SyscallNumber]; !ok || name != "futex" {
		t.Fatalf("table maps syscall %d to %q", futex.SyscallNumber, name)
	}
	if sysName != "futex" {
		t.Fatalf("sysName = %q", sysName)
	}
}
