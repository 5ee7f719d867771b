package futex

import "fmt"

// cmd is one of the FUTEX_* commands understood by the kernel. The set is
// closed: nothing outside this package can produce a cmd.
type cmd uint8

const (
	cmdWait          cmd = 0
	cmdWake          cmd = 1
	cmdRequeue       cmd = 3
	cmdCmpRequeue    cmd = 4
	cmdWakeOp        cmd = 5
	cmdLockPI        cmd = 6
	cmdUnlockPI      cmd = 7
	cmdTrylockPI     cmd = 8
	cmdWaitBitset    cmd = 9
	cmdWakeBitset    cmd = 10
	cmdWaitRequeuePI cmd = 11
	cmdCmpRequeuePI  cmd = 12
	cmdLockPI2       cmd = 13
)

const (
	FUTEX_PRIVATE_FLAG   = 128
	FUTEX_CLOCK_REALTIME = 256
	FUTEX_CMD_MASK       = ^(FUTEX_PRIVATE_FLAG | FUTEX_CLOCK_REALTIME)
)

var cmdNames = map[cmd]string{
	cmdWait:          "FUTEX_WAIT",
	cmdWake:          "FUTEX_WAKE",
	cmdRequeue:       "FUTEX_REQUEUE",
	cmdCmpRequeue:    "FUTEX_CMP_REQUEUE",
	cmdWakeOp:        "FUTEX_WAKE_OP",
	cmdLockPI:        "FUTEX_LOCK_PI",
	cmdUnlockPI:      "FUTEX_UNLOCK_PI",
	cmdTrylockPI:     "FUTEX_TRYLOCK_PI",
	cmdWaitBitset:    "FUTEX_WAIT_BITSET",
	cmdWakeBitset:    "FUTEX_WAKE_BITSET",
	cmdWaitRequeuePI: "FUTEX_WAIT_REQUEUE_PI",
	cmdCmpRequeuePI:  "FUTEX_CMP_REQUEUE_PI",
	cmdLockPI2:       "FUTEX_LOCK_PI2",
}

func (c cmd) String() string {
	if name, ok := cmdNames[c]; ok {
		return name
	}
	return fmt.Sprintf("FUTEX_%d", uint8(c))
}

// Commands lists every operation this package can issue, in kernel order.
// It exists for diagnostics such as feature probing.
func Commands() []string {
	out := make([]string, 0, len(cmdNames))
	for c := cmdWait; c <= cmdLockPI2; c++ {
		if name, ok := cmdNames[c]; ok {
			out = append(out, name)
		}
	}
	return out
}

// op combines a command with the scope and clock flags into the integer
// passed as the futex_op syscall argument.
func op(c cmd, private bool, clock Clock) int {
	v := int(c)
	if private {
		v |= FUTEX_PRIVATE_FLAG
	}
	if clock == Realtime {
		v |= FUTEX_CLOCK_REALTIME
	}
	return v
}

// OpString renders a combined futex_op argument the way strace does,
// e.g. "FUTEX_WAIT_BITSET_PRIVATE|FUTEX_CLOCK_REALTIME".
func OpString(v int) string {
	s := cmd(v & FUTEX_CMD_MASK).String()
	if v&FUTEX_PRIVATE_FLAG != 0 {
		s += "_PRIVATE"
	}
	if v&FUTEX_CLOCK_REALTIME != 0 {
		s += "|FUTEX_CLOCK_REALTIME"
	}
	return s
}
