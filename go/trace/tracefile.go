package trace

import (
	"bytes"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/golang/snappy"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"

	futex "github.com/lunixbochs/futex/go"
)

var TRACE_MAGIC = "FTRC"

type TraceHeader struct {
	// MAGIC ("FTRC")
	Magic string `struc:"[4]byte"`
	// file format version
	Version uint32
	// GOARCH and GOOS of the traced process. Right-null-padded.
	Arch string `struc:"[32]byte"`
	OS   string `struc:"[32]byte"`
	Pid  int32
}

// Writer is a futex.Tracer that appends every call to a snappy-compressed
// stream of struc-packed Records.
type Writer struct {
	mu    sync.Mutex
	w     io.WriteCloser
	zw    *snappy.Writer
	err   error
	count int
}

var _ futex.Tracer = (*Writer)(nil)

func NewWriter(w io.WriteCloser, pid int) (*Writer, error) {
	header := &TraceHeader{
		Magic:   TRACE_MAGIC,
		Version: 1,
		Arch:    runtime.GOARCH,
		OS:      runtime.GOOS,
		Pid:     int32(pid),
	}
	if err := struc.Pack(w, header); err != nil {
		return nil, errors.Wrap(err, "failed to pack header")
	}
	return &Writer{w: w, zw: snappy.NewBufferedWriter(w)}, nil
}

func (t *Writer) TraceCall(c *futex.Call) {
	t.Pack(NewRecord(c))
}

// Pack writes one record. After the first failure every call is dropped and
// Close reports the error.
func (t *Writer) Pack(r *Record) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	if err := struc.Pack(t.zw, r); err != nil {
		t.err = errors.Wrap(err, "failed to pack record")
		return t.err
	}
	t.count++
	return nil
}

func (t *Writer) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

func (t *Writer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.zw.Close(); err != nil && t.err == nil {
		t.err = err
	}
	if err := t.w.Close(); err != nil && t.err == nil {
		t.err = err
	}
	return t.err
}

var recordSize, _ = struc.Sizeof(&Record{})

type Reader struct {
	r      io.ReadCloser
	zr     *snappy.Reader
	Header TraceHeader
}

func NewReader(r io.ReadCloser) (*Reader, error) {
	t := &Reader{r: r}
	if err := struc.Unpack(r, &t.Header); err != nil {
		return nil, errors.Wrap(err, "failed to unpack header")
	}
	if t.Header.Magic != TRACE_MAGIC {
		return nil, errors.New("invalid trace file magic")
	}
	t.Header.Arch = strings.TrimRight(t.Header.Arch, "\x00")
	t.Header.OS = strings.TrimRight(t.Header.OS, "\x00")
	t.zr = snappy.NewReader(r)
	return t, nil
}

// Next returns io.EOF after the last record. A stream that ends inside a
// record is an error.
func (t *Reader) Next() (*Record, error) {
	buf := make([]byte, recordSize)
	if _, err := io.ReadFull(t.zr, buf); err == io.EOF {
		return nil, io.EOF
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to read record")
	}
	var r Record
	if err := struc.Unpack(bytes.NewReader(buf), &r); err != nil {
		return nil, errors.Wrap(err, "failed to unpack record")
	}
	return &r, nil
}

func (t *Reader) Close() {
	t.zr.Reset(nil)
	t.r.Close()
}
