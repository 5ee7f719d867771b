package probe

import (
	"fmt"
	"os"

	futex "github.com/lunixbochs/futex/go"
	"github.com/lunixbochs/futex/go/cmd"
)

func Main(args []string) int {
	fs := cmd.NewFlagSet(args[0], "")
	verbose := fs.Bool("v", false, "show the probe call's result")
	nocolor := fs.Bool("nocolor", false, "disable colored output")
	fs.Parse(args[1:])
	if *nocolor {
		cmd.NoColor()
	}

	missing := 0
	for _, s := range futex.Probe() {
		status := cmd.Good("yes")
		if !s.Supported {
			status = cmd.Bad("no")
			missing++
		}
		fmt.Printf("%-22s %s", s.Name, status)
		if *verbose {
			detail := "ok"
			if s.Err != nil {
				detail = s.Err.Error()
			}
			fmt.Printf("  %s", cmd.Dim(detail))
		}
		fmt.Println()
	}
	if missing > 0 {
		fmt.Fprintf(os.Stderr, "%d operations not supported by this kernel\n", missing)
		return 1
	}
	return 0
}

func init() { cmd.Register("probe", "report which futex operations the kernel supports", Main) }
