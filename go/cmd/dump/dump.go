package dump

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/lunixbochs/futex/go/cmd"
	"github.com/lunixbochs/futex/go/trace"
)

func Main(args []string) int {
	fs := cmd.NewFlagSet(args[0], "<trace file>")
	errorsOnly := fs.Bool("errors", false, "only print failed calls")
	slow := fs.Duration("slow", 0, "only print calls that took at least this long")
	nocolor := fs.Bool("nocolor", false, "disable colored output")
	fs.Parse(args[1:])
	if *nocolor {
		cmd.NoColor()
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}
	if err := dump(fs.Arg(0), *errorsOnly, *slow); err != nil {
		cmd.PrintError(err)
		return 1
	}
	return 0
}

func dump(path string, errorsOnly bool, slow time.Duration) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	r, err := trace.NewReader(f)
	if err != nil {
		f.Close()
		return errors.Wrapf(err, "reading %s", path)
	}
	defer r.Close()
	fmt.Println(cmd.Dim(fmt.Sprintf("# pid %d, %s/%s", r.Header.Pid, r.Header.OS, r.Header.Arch)))
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if errorsOnly && rec.Errno == 0 {
			continue
		}
		if time.Duration(rec.Elapsed) < slow {
			continue
		}
		line := rec.String()
		if rec.Errno != 0 {
			line = cmd.Bad(line)
		}
		fmt.Println(line)
	}
}

func init() { cmd.Register("dump", "print a futex trace file", Main) }
