package trace

import (
	"fmt"
	"runtime"
	"syscall"
	"time"

	"github.com/lunixbochs/ghostrace/ghost/sys/num"
	"golang.org/x/sys/unix"

	futex "github.com/lunixbochs/futex/go"
	"github.com/lunixbochs/futex/go/native"
)

// Record is the on-disk form of one futex.Call.
type Record struct {
	Tid        int32
	Addr       uint64
	Op         int32
	Val        uint32
	HasTimeout bool
	Timeout    native.Timespec
	Val2       uint32
	Addr2      uint64
	Val3       uint32
	Ret        int32
	Errno      int32
	Start      int64 // unix nanoseconds
	Elapsed    int64 // nanoseconds
}

func NewRecord(c *futex.Call) *Record {
	r := &Record{
		Tid:     int32(c.Tid),
		Addr:    uint64(c.Addr),
		Op:      int32(c.Op),
		Val:     c.Val,
		Val2:    c.Val2,
		Addr2:   uint64(c.Addr2),
		Val3:    c.Val3,
		Ret:     int32(c.Ret),
		Errno:   int32(c.Errno),
		Start:   c.Start.UnixNano(),
		Elapsed: int64(c.Elapsed),
	}
	if c.Timeout != nil {
		r.HasTimeout = true
		r.Timeout = *c.Timeout
	}
	return r
}

func (r *Record) Time() time.Time { return time.Unix(0, r.Start) }

// syscallTable returns ghostrace's Linux syscall names for the host arch, or
// nil where it has none.
func syscallTable() map[int]string {
	switch runtime.GOARCH {
	case "amd64":
		return num.Linux_x86_64
	case "386":
		return num.Linux_x86
	case "arm64":
		return num.Linux_arm64
	case "arm":
		return num.Linux_arm
	case "mips", "mipsle":
		return num.Linux_mips
	}
	return nil
}

// syscallName looks up the host's name for SYS_FUTEX, falling back to
// "futex" off the arches in syscallTable.
func syscallName() string {
	if name, ok := syscallTable()[futex.SyscallNumber]; ok {
		return name
	}
	return "futex"
}

var sysName = syscallName()

// String renders the record like strace -T would.
func (r *Record) String() string {
	args := fmt.Sprintf("%#x, %s, %d", r.Addr, futex.OpString(int(r.Op)), r.Val)
	if r.HasTimeout {
		args += fmt.Sprintf(", {tv_sec=%d, tv_nsec=%d}", r.Timeout.Sec, r.Timeout.Nsec)
	} else if r.Val2 != 0 || r.Addr2 != 0 || r.Val3 != 0 {
		args += fmt.Sprintf(", %d", r.Val2)
	}
	if r.Addr2 != 0 {
		args += fmt.Sprintf(", %#x", r.Addr2)
	}
	if r.Val3 != 0 {
		args += fmt.Sprintf(", %#x", r.Val3)
	}
	ret := fmt.Sprintf("%d", r.Ret)
	if r.Errno != 0 {
		errno := syscall.Errno(r.Errno)
		ret = fmt.Sprintf("-1 %s (%s)", unix.ErrnoName(errno), errno.Error())
	}
	return fmt.Sprintf("[%d] %s(%s) = %s <%.6f>", r.Tid, sysName, args, ret, time.Duration(r.Elapsed).Seconds())
}
