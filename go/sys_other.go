//go:build !linux

package futex

import (
	"syscall"
	"time"
)

// SyscallNumber is -1 where there is no futex syscall.
const SyscallNumber = -1

// Futexes are a Linux facility; everywhere else each call reports ENOSYS.
func (c *call) invoke() (int, error) {
	c.trace(time.Now(), -1, syscall.ENOSYS)
	return 0, newError(c.cmd, syscall.ENOSYS)
}

func gettid() int {
	return 0
}
