package futex

import (
	"sync/atomic"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/lunixbochs/futex/go/native"
)

// call holds the six futex(2) arguments. Only methods in this package build
// one, so every raw call is assembled from typed parameters.
type call struct {
	cmd     cmd
	private bool
	clock   Clock
	addr    *atomic.Uint32
	val     uint32
	// the fourth argument slot carries timeout for blocking commands and
	// val2 (a requeue or wake count) for the others
	timeout *unix.Timespec
	val2    uint32
	addr2   *atomic.Uint32
	val3    uint32
}

func (c *call) op() int {
	return op(c.cmd, c.private, c.clock)
}

// blocking reports whether the command may put the caller to sleep.
func (c *call) blocking() bool {
	switch c.cmd {
	case cmdWait, cmdWaitBitset, cmdLockPI, cmdLockPI2, cmdWaitRequeuePI:
		return true
	}
	return false
}

// Call describes one completed futex syscall, as handed to a Tracer.
type Call struct {
	Tid     int
	Addr    uintptr
	Op      int
	Val     uint32
	Timeout *native.Timespec
	Val2    uint32
	Addr2   uintptr
	Val3    uint32

	Ret     int
	Errno   syscall.Errno
	Start   time.Time
	Elapsed time.Duration
}

func (c *Call) Name() string { return OpString(c.Op) }

// Tracer observes every futex syscall this package makes. TraceCall runs on
// the calling thread right after the syscall returns and must not block.
type Tracer interface {
	TraceCall(c *Call)
}

type tracerBox struct{ t Tracer }

var tracer atomic.Pointer[tracerBox]

// SetTracer installs t (nil disables tracing) and returns the previous one.
func SetTracer(t Tracer) Tracer {
	var box *tracerBox
	if t != nil {
		box = &tracerBox{t}
	}
	if old := tracer.Swap(box); old != nil {
		return old.t
	}
	return nil
}

// trace reports a finished call. A zero start means no tracer was installed
// when the call began, so there is no timing to report and it is skipped.
func (c *call) trace(start time.Time, ret int, errno syscall.Errno) {
	box := tracer.Load()
	if box == nil || start.IsZero() {
		return
	}
	rec := &Call{
		Tid:     gettid(),
		Addr:    addrOf(c.addr),
		Op:      c.op(),
		Val:     c.val,
		Val2:    c.val2,
		Addr2:   addrOf(c.addr2),
		Val3:    c.val3,
		Ret:     ret,
		Errno:   errno,
		Start:   start,
		Elapsed: time.Since(start),
	}
	if c.timeout != nil {
		ts := native.FromUnix(c.timeout)
		rec.Timeout = &ts
	}
	box.t.TraceCall(rec)
}

func addrOf(p *atomic.Uint32) uintptr {
	return uintptr(unsafe.Pointer(p))
}
