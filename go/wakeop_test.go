package futex

import "testing"

func TestWakeOpEncoding(t *testing.T) {
	// FUTEX_OP(FUTEX_OP_ADD, 1, FUTEX_OP_CMP_GT, 2)
	want := uint32(1<<28 | 1<<12 | 4<<24 | 2)
	if got := OpAdd(1).If(CmpGt(2)).Bits(); got != want {
		t.Fatalf("got %#x, want %#x", got, want)
	}
	oc := OpSetBit(3).If(CmpNe(4095))
	if s := oc.String(); s != "setbit(3) if ne(4095)" {
		t.Fatalf("unexpected String(): %s", s)
	}
	if RawOpAndCmp(want) != OpAdd(1).If(CmpGt(2)) {
		t.Fatal("RawOpAndCmp mismatch")
	}
}

func TestWakeOpArgRange(t *testing.T) {
	for _, fn := range []func(){
		func() { OpAssign(1 << 12) },
		func() { CmpEq(1 << 12) },
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Error("oversized argument did not panic")
				}
			}()
			fn()
		}()
	}
}
