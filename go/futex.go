// Package futex wraps the Linux futex(2) syscall in typed operations.
//
// A Futex is a 32-bit word that threads can sleep on until another thread
// wakes them. Its value means whatever the caller wants it to mean. A
// PiFutex is a word whose value is owned by the kernel's priority
// inheritance protocol: it holds the owner's thread id and a waiters bit,
// and only Lock, TryLock and Unlock change it.
//
// Existing atomic.Uint32 words can be used in place through AsFutex and
// AsPiFutex.
//
// See futex(2) for the kernel side of every operation.
package futex

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"
)

// WakeAll as a waiter count wakes (or requeues) every waiter.
const WakeAll = math.MaxInt32

// BitsetAll matches every waiter; WaitBitset and WakeBitset with this mask
// behave like Wait and Wake.
const BitsetAll = ^uint32(0)

// Futex is a word threads can wait on and wake. S is Private or Shared.
// The zero value is a usable futex holding 0. A Futex is exactly one
// atomic.Uint32 in memory, so it can be embedded in shared mappings.
type Futex[S Scope] struct {
	Value atomic.Uint32
}

// NewFutex allocates a futex with an initial value.
func NewFutex[S Scope](value uint32) *Futex[S] {
	f := &Futex[S]{}
	f.Value.Store(value)
	return f
}

// Word returns the underlying atomic word.
func (f *Futex[S]) Word() *atomic.Uint32 { return &f.Value }

func (f *Futex[S]) String() string {
	return fmt.Sprintf("Futex[%s]{%#x}", scopeName[S](), f.Value.Load())
}

func (f *Futex[S]) call(c cmd) *call {
	return &call{cmd: c, private: isPrivate[S](), addr: &f.Value}
}

// Wait sleeps until woken, as long as the word still holds expected when the
// kernel checks it. The check and the sleep are atomic in the kernel; this
// method does not read the word itself.
//
// A nil return means the thread was woken, possibly spuriously: re-check the
// word. A negative timeout (Forever) waits without limit.
//
// Errors: ErrValueChanged, ErrTimedOut, ErrInterrupted.
func (f *Futex[S]) Wait(expected uint32, timeout time.Duration) error {
	c := f.call(cmdWait)
	c.val = expected
	c.timeout = relative(timeout)
	_, err := c.invoke()
	return err
}

// Wake wakes up to n waiters and returns how many were woken.
func (f *Futex[S]) Wake(n int) (int, error) {
	c := f.call(cmdWake)
	c.val = count(n)
	return c.invoke()
}

// WaitBitset is Wait restricted to wakers whose mask intersects mask, with an
// absolute deadline. A zero mask is rejected by the kernel.
func (f *Futex[S]) WaitBitset(expected uint32, deadline Deadline, mask uint32) error {
	c := f.call(cmdWaitBitset)
	c.val = expected
	c.timeout, c.clock = absolute(deadline)
	c.val3 = mask
	_, err := c.invoke()
	return err
}

// WakeBitset wakes up to n waiters whose wait mask intersects mask. Waiters
// in plain Wait match any mask.
func (f *Futex[S]) WakeBitset(n int, mask uint32) (int, error) {
	c := f.call(cmdWakeBitset)
	c.val = count(n)
	c.val3 = mask
	return c.invoke()
}

// Requeue wakes up to nWake waiters and moves up to nRequeue of the rest to
// wait on to instead. It returns the number woken plus requeued.
func (f *Futex[S]) Requeue(nWake, nRequeue int, to *Futex[S]) (int, error) {
	c := f.call(cmdRequeue)
	c.val = count(nWake)
	c.val2 = count(nRequeue)
	c.addr2 = &to.Value
	return c.invoke()
}

// CmpRequeue is Requeue that does nothing and returns ErrValueChanged unless
// the word holds expected. It returns the number woken plus requeued.
func (f *Futex[S]) CmpRequeue(expected uint32, nWake, nRequeue int, to *Futex[S]) (int, error) {
	c := f.call(cmdCmpRequeue)
	c.val = count(nWake)
	c.val2 = count(nRequeue)
	c.addr2 = &to.Value
	c.val3 = expected
	return c.invoke()
}

// WakeOp atomically applies oc's operation to second, wakes up to n waiters
// on f, and wakes up to n2 waiters on second if the old value of second
// passes oc's comparison. It returns the total woken.
func (f *Futex[S]) WakeOp(n int, second *Futex[S], oc OpAndCmp, n2 int) (int, error) {
	c := f.call(cmdWakeOp)
	c.val = count(n)
	c.val2 = count(n2)
	c.addr2 = &second.Value
	c.val3 = oc.bits
	return c.invoke()
}

// WaitRequeuePI waits on f until CmpRequeuePI moves this thread to to and
// the kernel hands it ownership of to. On a nil return the caller owns to,
// and the thread stays pinned until to.Unlock.
//
// A plain Wake on f ends the wait without the requeue; the kernel reports
// that as ErrValueChanged.
func (f *Futex[S]) WaitRequeuePI(expected uint32, to *PiFutex[S], deadline Deadline) error {
	pin()
	c := f.call(cmdWaitRequeuePI)
	c.val = expected
	c.timeout, c.clock = absolute(deadline)
	c.addr2 = &to.word
	_, err := c.invoke()
	if err != nil {
		unpin()
		return err
	}
	return to.checkOwnerDied(cmdWaitRequeuePI)
}

// CmpRequeuePI wakes one waiter blocked in WaitRequeuePI(…, to, …) and
// requeues up to nRequeue more onto to, if f still holds expected. It
// returns the number woken plus requeued.
func (f *Futex[S]) CmpRequeuePI(expected uint32, nRequeue int, to *PiFutex[S]) (int, error) {
	c := f.call(cmdCmpRequeuePI)
	c.val = 1
	c.val2 = count(nRequeue)
	c.addr2 = &to.word
	c.val3 = expected
	return c.invoke()
}

// count clamps a waiter count to the kernel's int range.
func count(n int) uint32 {
	if n < 0 {
		return 0
	}
	if n > WakeAll {
		return WakeAll
	}
	return uint32(n)
}
