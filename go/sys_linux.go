//go:build linux

package futex

import (
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// SyscallNumber is SYS_FUTEX on this platform.
const SyscallNumber = unix.SYS_FUTEX

// invoke issues the futex syscall and maps a failure to *Error. It never
// retries: EINTR and ETIMEDOUT go straight back to the caller.
func (c *call) invoke() (int, error) {
	var start time.Time
	if tracer.Load() != nil {
		start = time.Now()
	}
	var r1 uintptr
	var errno syscall.Errno
	// Blocking commands take a timeout in the fourth slot and go through
	// Syscall6 so the runtime can hand off the P; the rest carry val2 there.
	if c.blocking() {
		r1, _, errno = unix.Syscall6(
			unix.SYS_FUTEX,
			uintptr(unsafe.Pointer(c.addr)),
			uintptr(c.op()),
			uintptr(c.val),
			uintptr(unsafe.Pointer(c.timeout)),
			uintptr(unsafe.Pointer(c.addr2)),
			uintptr(c.val3),
		)
	} else {
		r1, _, errno = unix.RawSyscall6(
			unix.SYS_FUTEX,
			uintptr(unsafe.Pointer(c.addr)),
			uintptr(c.op()),
			uintptr(c.val),
			uintptr(c.val2),
			uintptr(unsafe.Pointer(c.addr2)),
			uintptr(c.val3),
		)
	}
	ret := int(int32(r1))
	if errno != 0 {
		ret = -1
	}
	c.trace(start, ret, errno)
	if errno != 0 {
		return 0, newError(c.cmd, errno)
	}
	return ret, nil
}

func gettid() int {
	return unix.Gettid()
}
