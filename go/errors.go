package futex

import (
	"fmt"
	"syscall"

	"github.com/pkg/errors"
)

// Kind classifies the outcome of a futex operation.
type Kind uint8

const (
	Other Kind = iota
	ValueChanged
	TimedOut
	Interrupted
	InvalidArgument
	NotSupported
	WouldDeadlock
	OwnerDied
	NotOwner
	AlreadyLocked
)

var kindNames = []string{
	Other:           "futex error",
	ValueChanged:    "futex value changed",
	TimedOut:        "futex timed out",
	Interrupted:     "futex interrupted",
	InvalidArgument: "futex invalid argument",
	NotSupported:    "futex operation not supported",
	WouldDeadlock:   "futex lock already held by caller",
	OwnerDied:       "futex owner died",
	NotOwner:        "futex not owned by caller",
	AlreadyLocked:   "futex already locked",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("futex kind %d", uint8(k))
}

// Error is returned by every futex operation that does not succeed. Compare
// against the Err* sentinels with errors.Is; Errno holds the raw kernel code
// when there is one.
type Error struct {
	Op    string
	Kind  Kind
	Errno syscall.Errno
}

var (
	ErrValueChanged    = &Error{Kind: ValueChanged}
	ErrTimedOut        = &Error{Kind: TimedOut}
	ErrInterrupted     = &Error{Kind: Interrupted}
	ErrInvalidArgument = &Error{Kind: InvalidArgument}
	ErrNotSupported    = &Error{Kind: NotSupported}
	ErrWouldDeadlock   = &Error{Kind: WouldDeadlock}
	ErrOwnerDied       = &Error{Kind: OwnerDied}
	ErrNotOwner        = &Error{Kind: NotOwner}
	ErrAlreadyLocked   = &Error{Kind: AlreadyLocked}
)

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Errno != 0 && e.Kind == Other {
		s += ": " + e.Errno.Error()
	}
	return s
}

// Is matches any *Error of the same Kind. Other only matches when the
// errno matches too.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return e.Kind != Other || t.Errno == e.Errno
}

func (e *Error) Unwrap() error {
	if e.Errno == 0 {
		return nil
	}
	return e.Errno
}

// Temporary reports an expected race outcome that callers retry around
// rather than abort on.
func (e *Error) Temporary() bool {
	switch e.Kind {
	case ValueChanged, TimedOut, Interrupted:
		return true
	}
	return false
}

// IsTemporary is Temporary for an arbitrary error chain.
func IsTemporary(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Temporary()
}

var errnoKinds = map[syscall.Errno]Kind{
	syscall.EAGAIN:    ValueChanged,
	syscall.ETIMEDOUT: TimedOut,
	syscall.EINTR:     Interrupted,
	syscall.EINVAL:    InvalidArgument,
	syscall.ENOSYS:    NotSupported,
	syscall.EDEADLK:   WouldDeadlock,
	syscall.ESRCH:     OwnerDied,
	syscall.EPERM:     NotOwner,
}

func newError(c cmd, errno syscall.Errno) *Error {
	kind, ok := errnoKinds[errno]
	if !ok {
		kind = Other
	}
	return &Error{Op: c.String(), Kind: kind, Errno: errno}
}

func opError(c cmd, kind Kind) *Error {
	return &Error{Op: c.String(), Kind: kind}
}
