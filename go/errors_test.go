package futex

import (
	"syscall"
	"testing"

	"github.com/pkg/errors"
)

func TestErrnoMapping(t *testing.T) {
	tests := []struct {
		errno syscall.Errno
		want  error
	}{
		{syscall.EAGAIN, ErrValueChanged},
		{syscall.ETIMEDOUT, ErrTimedOut},
		{syscall.EINTR, ErrInterrupted},
		{syscall.EINVAL, ErrInvalidArgument},
		{syscall.ENOSYS, ErrNotSupported},
		{syscall.EDEADLK, ErrWouldDeadlock},
		{syscall.ESRCH, ErrOwnerDied},
		{syscall.EPERM, ErrNotOwner},
	}
	for _, tt := range tests {
		err := newError(cmdWait, tt.errno)
		if !errors.Is(err, tt.want) {
			t.Errorf("%v: got %v, want %v", tt.errno, err, tt.want)
		}
		if err.Errno != tt.errno {
			t.Errorf("%v: errno not kept", tt.errno)
		}
	}
}

func TestOtherErrno(t *testing.T) {
	err := newError(cmdWake, syscall.EFAULT)
	if err.Kind != Other {
		t.Fatalf("EFAULT mapped to %s", err.Kind)
	}
	if !errors.Is(err, syscall.EFAULT) {
		t.Fatal("raw errno should be reachable through Unwrap")
	}
	if errors.Is(err, &Error{Kind: Other, Errno: syscall.ENOMEM}) {
		t.Fatal("Other errors with different errnos matched")
	}
	if err.Error() != "FUTEX_WAKE: futex error: bad address" {
		t.Fatalf("unexpected message: %s", err)
	}
}

func TestTemporary(t *testing.T) {
	for _, err := range []error{ErrValueChanged, ErrTimedOut, ErrInterrupted} {
		if !IsTemporary(errors.Wrap(err, "wait")) {
			t.Errorf("%v should be temporary", err)
		}
	}
	for _, err := range []error{ErrNotOwner, ErrInvalidArgument, ErrAlreadyLocked, errors.New("x")} {
		if IsTemporary(err) {
			t.Errorf("%v should not be temporary", err)
		}
	}
}
