package futex

// Scope is the type parameter of Futex and PiFutex: Private for words only
// used inside this process, Shared for words that may be mapped into
// several. Fixing it in the type keeps every operation on a word in the
// same scope.
type Scope interface {
	private() bool
	String() string
}

// Private futexes use FUTEX_PRIVATE_FLAG, which lets the kernel skip the
// shared mapping lookup.
type Private struct{}

// Shared futexes may live in memory mapped into several processes.
type Shared struct{}

func (Private) private() bool  { return true }
func (Private) String() string { return "private" }
func (Shared) private() bool   { return false }
func (Shared) String() string  { return "shared" }

func isPrivate[S Scope]() bool {
	var s S
	return s.private()
}

func scopeName[S Scope]() string {
	var s S
	return s.String()
}

// Clock is the clock an absolute Deadline is measured against.
type Clock uint8

const (
	Monotonic Clock = iota
	Realtime
)

func (c Clock) String() string {
	if c == Realtime {
		return "realtime"
	}
	return "monotonic"
}
