package futex

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Bits of a PiFutex word, as defined by the kernel.
const (
	FUTEX_WAITERS    = 0x80000000
	FUTEX_OWNER_DIED = 0x40000000
	FUTEX_TID_MASK   = 0x3fffffff
)

// PiFutex is a priority inheritance lock. Its word holds the owner's thread
// id (0 when unlocked) plus FUTEX_WAITERS and FUTEX_OWNER_DIED; the kernel
// reads and rewrites it, so the only mutators are Lock, TryLock and Unlock.
// Owner returns a read-only snapshot of the word.
//
// Ownership belongs to an OS thread, not a goroutine: a successful Lock pins
// the calling goroutine to its thread until the matching Unlock.
type PiFutex[S Scope] struct {
	word atomic.Uint32
}

// NewPiFutex allocates an unlocked PiFutex.
func NewPiFutex[S Scope]() *PiFutex[S] {
	return &PiFutex[S]{}
}

// Owner decodes a snapshot of the word.
func (p *PiFutex[S]) Owner() Owner { return Owner{p.word.Load()} }

// Owned reports whether the calling thread holds the lock.
func (p *PiFutex[S]) Owned() bool {
	return p.Owner().Tid() == gettid()
}

func (p *PiFutex[S]) String() string {
	return fmt.Sprintf("PiFutex[%s]{%s}", scopeName[S](), p.Owner())
}

func (p *PiFutex[S]) call(c cmd) *call {
	return &call{cmd: c, private: isPrivate[S](), addr: &p.word}
}

// Lock acquires the lock, blocking until the deadline. Uncontended, it is a
// single compare-and-swap. Contended, the kernel queues the caller and lends
// the owner the priority of its highest waiter until it unlocks.
//
// FUTEX_LOCK_PI only measures realtime deadlines; a monotonic deadline uses
// FUTEX_LOCK_PI2, which needs Linux 5.14 and otherwise fails with
// ErrNotSupported.
//
// ErrOwnerDied with Owned() true means the previous owner exited while
// holding the lock; the caller now holds it and should repair whatever the
// lock protects. ErrOwnerDied with Owned() false comes from the kernel
// finding no live thread behind the owner id in the word: the lock was not
// acquired.
//
// ErrValueChanged means the owner was exiting while the kernel looked at
// it; retry the Lock. Other errors: ErrTimedOut, ErrInterrupted,
// ErrWouldDeadlock.
func (p *PiFutex[S]) Lock(deadline Deadline) error {
	pin()
	tid := uint32(gettid())
	if tid == 0 {
		unpin()
		return opError(cmdLockPI, NotSupported)
	}
	if p.word.CompareAndSwap(0, tid) {
		return nil
	}
	if p.Owner().Tid() == int(tid) {
		unpin()
		return opError(cmdLockPI, WouldDeadlock)
	}
	var c *call
	ts, clock := absolute(deadline)
	if ts != nil && clock == Monotonic {
		c = p.call(cmdLockPI2)
	} else {
		c = p.call(cmdLockPI)
	}
	c.timeout = ts
	if _, err := c.invoke(); err != nil {
		unpin()
		return err
	}
	return p.checkOwnerDied(c.cmd)
}

// TryLock takes the lock if it is free and never blocks. It returns
// ErrAlreadyLocked without touching the word when the lock is held,
// including when the caller holds it.
func (p *PiFutex[S]) TryLock() error {
	pin()
	tid := uint32(gettid())
	if tid == 0 {
		unpin()
		return opError(cmdTrylockPI, NotSupported)
	}
	if p.word.CompareAndSwap(0, tid) {
		return nil
	}
	owner := p.Owner()
	if owner.Tid() != 0 || !owner.OwnerDied() {
		unpin()
		return opError(cmdTrylockPI, AlreadyLocked)
	}
	// the previous owner died and left no successor; the kernel has to
	// take over the pi state
	c := p.call(cmdTrylockPI)
	if _, err := c.invoke(); err != nil {
		unpin()
		if errors.Is(err, ErrValueChanged) || errors.Is(err, ErrWouldDeadlock) {
			return opError(cmdTrylockPI, AlreadyLocked)
		}
		return err
	}
	return p.checkOwnerDied(cmdTrylockPI)
}

// Unlock releases the lock. Without waiters it is a single compare-and-swap;
// with waiters the kernel hands the lock to the highest priority one.
// Unlocking a lock the calling thread does not own fails with ErrNotOwner
// and leaves the word alone.
func (p *PiFutex[S]) Unlock() error {
	tid := uint32(gettid())
	if tid == 0 {
		return opError(cmdUnlockPI, NotSupported)
	}
	if p.Owner().Tid() != int(tid) {
		return opError(cmdUnlockPI, NotOwner)
	}
	if !p.word.CompareAndSwap(tid, 0) {
		if _, err := p.call(cmdUnlockPI).invoke(); err != nil {
			return err
		}
	}
	unpin()
	return nil
}

// checkOwnerDied runs after the kernel granted ownership.
func (p *PiFutex[S]) checkOwnerDied(c cmd) error {
	if p.Owner().OwnerDied() {
		return opError(c, OwnerDied)
	}
	return nil
}

// Owner is a decoded PiFutex word. It can only be read from a PiFutex.
type Owner struct {
	v uint32
}

// Tid is the owning thread id, 0 when unlocked.
func (o Owner) Tid() int         { return int(o.v & FUTEX_TID_MASK) }
func (o Owner) Locked() bool     { return o.Tid() != 0 }
func (o Owner) HasWaiters() bool { return o.v&FUTEX_WAITERS != 0 }
func (o Owner) OwnerDied() bool  { return o.v&FUTEX_OWNER_DIED != 0 }
func (o Owner) Raw() uint32      { return o.v }

func (o Owner) String() string {
	if o.v == 0 {
		return "unlocked"
	}
	s := fmt.Sprintf("tid=%d", o.Tid())
	if o.HasWaiters() {
		s += "|waiters"
	}
	if o.OwnerDied() {
		s += "|owner_died"
	}
	return s
}

// pin binds the goroutine to its thread so the thread id in a PiFutex word
// stays the caller's. Calls nest.
func pin()   { runtime.LockOSThread() }
func unpin() { runtime.UnlockOSThread() }
