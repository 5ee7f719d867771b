package futex

import (
	"sync/atomic"
	"unsafe"
)

// Futex[S] and PiFutex[S] must stay layout-identical to atomic.Uint32 for
// the views below to alias the word.
const wordSize = unsafe.Sizeof(atomic.Uint32{})

var (
	_ [unsafe.Sizeof(Futex[Private]{}) - wordSize]struct{}
	_ [wordSize - unsafe.Sizeof(Futex[Private]{})]struct{}
	_ [unsafe.Sizeof(PiFutex[Private]{}) - wordSize]struct{}
	_ [wordSize - unsafe.Sizeof(PiFutex[Private]{})]struct{}
)

// AsFutex returns a Futex view of an existing word. The view aliases w: no
// copy is made and the word does not move. Operations through the view are
// the same as on a Futex constructed directly. The view is an interior
// pointer, so w stays alive for as long as the view is reachable.
func AsFutex[S Scope](w *atomic.Uint32) *Futex[S] {
	return (*Futex[S])(unsafe.Pointer(w))
}

// AsPiFutex returns a PiFutex view of an existing word, like AsFutex. The
// word must follow the PiFutex encoding (0 when unlocked); never drive the
// same word through both a Futex and a PiFutex.
func AsPiFutex[S Scope](w *atomic.Uint32) *PiFutex[S] {
	return (*PiFutex[S])(unsafe.Pointer(w))
}
