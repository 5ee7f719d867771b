package futex

import "fmt"

// WakeOp arguments are limited to 12 bits by the kernel encoding.
const wakeOpArgMax = 1 << 12

// Op is the operation FUTEX_WAKE_OP applies to the second word. Combine it
// with a Cmp using Op.If, e.g. OpAssign(1).If(CmpEq(0)).
type Op struct {
	bits uint32
}

func newOp(op, arg uint32) Op {
	if arg >= wakeOpArgMax {
		panic(fmt.Sprintf("futex: wake op argument too large: %d", arg))
	}
	return Op{bits: op<<28 | arg<<12}
}

// value = arg
func OpAssign(arg uint32) Op { return newOp(0, arg) }

// value += arg
func OpAdd(arg uint32) Op { return newOp(1, arg) }

// value |= arg
func OpOr(arg uint32) Op { return newOp(2, arg) }

// value &^= arg
func OpAndNot(arg uint32) Op { return newOp(3, arg) }

// value ^= arg
func OpXor(arg uint32) Op { return newOp(4, arg) }

// value = 1 << bit
func OpAssignBit(bit uint32) Op { return newOp(8, bit) }

// value += 1 << bit
func OpAddBit(bit uint32) Op { return newOp(9, bit) }

// value |= 1 << bit
func OpSetBit(bit uint32) Op { return newOp(10, bit) }

// value &^= 1 << bit
func OpClearBit(bit uint32) Op { return newOp(11, bit) }

// value ^= 1 << bit
func OpToggleBit(bit uint32) Op { return newOp(12, bit) }

var opNames = map[uint32]string{
	0: "assign", 1: "add", 2: "or", 3: "andnot", 4: "xor",
	8: "assignbit", 9: "addbit", 10: "setbit", 11: "clearbit", 12: "togglebit",
}

func (o Op) String() string {
	name, ok := opNames[o.bits>>28]
	if !ok {
		name = "invalid"
	}
	return fmt.Sprintf("%s(%d)", name, o.bits>>12&0xfff)
}

// If attaches the comparison that decides whether waiters on the second
// word are woken.
func (o Op) If(c Cmp) OpAndCmp {
	return OpAndCmp{bits: o.bits | c.bits}
}

// Cmp is the comparison FUTEX_WAKE_OP applies to the second word's old value.
type Cmp struct {
	bits uint32
}

func newCmp(cmp, arg uint32) Cmp {
	if arg >= wakeOpArgMax {
		panic(fmt.Sprintf("futex: wake op comparison argument too large: %d", arg))
	}
	return Cmp{bits: cmp<<24 | arg}
}

func CmpEq(arg uint32) Cmp { return newCmp(0, arg) }
func CmpNe(arg uint32) Cmp { return newCmp(1, arg) }
func CmpLt(arg uint32) Cmp { return newCmp(2, arg) }
func CmpLe(arg uint32) Cmp { return newCmp(3, arg) }
func CmpGt(arg uint32) Cmp { return newCmp(4, arg) }
func CmpGe(arg uint32) Cmp { return newCmp(5, arg) }

var cmpNames = []string{"eq", "ne", "lt", "le", "gt", "ge"}

func (c Cmp) String() string {
	name := "invalid"
	if n := int(c.bits >> 24 & 0xf); n < len(cmpNames) {
		name = cmpNames[n]
	}
	return fmt.Sprintf("%s(%d)", name, c.bits&0xfff)
}

// OpAndCmp is the val3 argument of FUTEX_WAKE_OP.
type OpAndCmp struct {
	bits uint32
}

// RawOpAndCmp wraps an already encoded FUTEX_OP() value.
func RawOpAndCmp(bits uint32) OpAndCmp { return OpAndCmp{bits: bits} }

func (o OpAndCmp) Bits() uint32 { return o.bits }

func (o OpAndCmp) String() string {
	return fmt.Sprintf("%s if %s", Op{bits: o.bits &^ 0x0f000fff}, Cmp{bits: o.bits & 0x0f000fff})
}
