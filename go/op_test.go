package futex

import "testing"

func TestOpFlags(t *testing.T) {
	tests := []struct {
		cmd     cmd
		private bool
		clock   Clock
		want    int
	}{
		{cmdWait, false, Monotonic, 0},
		{cmdWait, true, Monotonic, 128},
		{cmdWake, true, Monotonic, 129},
		{cmdWaitBitset, true, Realtime, 9 | 128 | 256},
		{cmdLockPI, false, Monotonic, 6},
		{cmdLockPI2, true, Monotonic, 13 | 128},
		{cmdCmpRequeuePI, true, Monotonic, 12 | 128},
	}
	for _, tt := range tests {
		if got := op(tt.cmd, tt.private, tt.clock); got != tt.want {
			t.Errorf("op(%s, %v, %s) = %d, want %d", tt.cmd, tt.private, tt.clock, got, tt.want)
		}
	}
}

func TestOpString(t *testing.T) {
	tests := map[int]string{
		0:             "FUTEX_WAIT",
		129:           "FUTEX_WAKE_PRIVATE",
		9 | 128 | 256: "FUTEX_WAIT_BITSET_PRIVATE|FUTEX_CLOCK_REALTIME",
		7:             "FUTEX_UNLOCK_PI",
		2:             "FUTEX_2",
	}
	for v, want := range tests {
		if got := OpString(v); got != want {
			t.Errorf("OpString(%d) = %q, want %q", v, got, want)
		}
	}
}

func TestCommands(t *testing.T) {
	names := Commands()
	if len(names) != 13 {
		t.Fatalf("got %d commands: %v", len(names), names)
	}
	if names[0] != "FUTEX_WAIT" || names[len(names)-1] != "FUTEX_LOCK_PI2" {
		t.Fatalf("commands out of order: %v", names)
	}
}
