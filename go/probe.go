package futex

import (
	"runtime"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Support is the result of probing one command.
type Support struct {
	Name      string
	Supported bool
	// Err is what the probe call returned; expected outcomes such as
	// ErrValueChanged are normal here.
	Err error
}

// Probe asks the running kernel about every command without blocking or
// leaving state behind: each command is issued against scratch words with
// arguments that make it return at once. A command is unsupported when the
// kernel answers ENOSYS.
//
// Operations never probe on their own; they report ErrNotSupported on use.
func Probe() []Support {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var word, other, pi atomic.Uint32
	const private = true
	mk := func(c cmd) *call {
		return &call{cmd: c, private: private, addr: &word, addr2: &other}
	}

	var probes []*call
	// value mismatches: word is 0, expected is 1
	for _, c := range []cmd{cmdWait, cmdWaitBitset} {
		p := mk(c)
		p.val = 1
		p.val3 = BitsetAll
		probes = append(probes, p)
	}
	// zero-count wakes and requeues
	for _, c := range []cmd{cmdWake, cmdWakeBitset, cmdRequeue, cmdWakeOp} {
		p := mk(c)
		p.val3 = BitsetAll
		if c == cmdWakeOp {
			p.val3 = OpAssign(0).If(CmpEq(0)).Bits()
		}
		probes = append(probes, p)
	}
	cmpRequeue := mk(cmdCmpRequeue)
	cmpRequeue.val3 = 1
	probes = append(probes, cmpRequeue)

	waitRequeuePI := mk(cmdWaitRequeuePI)
	waitRequeuePI.val = 1
	waitRequeuePI.addr2 = &pi
	cmpRequeuePI := mk(cmdCmpRequeuePI)
	cmpRequeuePI.val = 1
	cmpRequeuePI.val3 = 1
	cmpRequeuePI.addr2 = &pi
	probes = append(probes, waitRequeuePI, cmpRequeuePI)

	// the PI commands run against a word this thread already owns, so the
	// lock variants fail with EDEADLK and the unlock releases it
	pi.Store(uint32(gettid()))
	for _, c := range []cmd{cmdLockPI, cmdLockPI2, cmdTrylockPI, cmdUnlockPI} {
		probes = append(probes, &call{cmd: c, private: private, addr: &pi})
	}

	out := make([]Support, 0, len(probes))
	for _, p := range probes {
		_, err := p.invoke()
		out = append(out, Support{
			Name:      p.cmd.String(),
			Supported: !errors.Is(err, ErrNotSupported),
			Err:       err,
		})
	}
	return out
}
