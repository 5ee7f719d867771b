package bench

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	futex "github.com/lunixbochs/futex/go"
	"github.com/lunixbochs/futex/go/cmd"
	"github.com/lunixbochs/futex/go/trace"
)

// a mode returns one latency sample (in nanoseconds) per measured operation
type mode func(c *Config) ([]float64, error)

var modes = map[string]struct {
	private, shared mode
	desc            string
}{
	"pingpong": {pingpong[futex.Private], pingpong[futex.Shared], "two threads hand a turn counter back and forth with wait/wake"},
	"pi":       {piContend[futex.Private], piContend[futex.Shared], "threads contend on one priority inheritance lock"},
	"wake":     {wakeIdle[futex.Private], wakeIdle[futex.Shared], "wake calls on a word nobody waits on"},
}

// waitFor sleeps on f until it holds want. Retries after spurious wakes and
// value races keep the original deadline.
func waitFor[S futex.Scope](f *futex.Futex[S], want uint32, deadline futex.Deadline) error {
	for {
		v := f.Value.Load()
		if v == want {
			return nil
		}
		err := f.WaitBitset(v, deadline, futex.BitsetAll)
		if err != nil && !errors.Is(err, futex.ErrValueChanged) && !errors.Is(err, futex.ErrInterrupted) {
			return errors.Wrapf(err, "waiting for %d (word is %d)", want, f.Value.Load())
		}
	}
}

func pingpong[S futex.Scope](c *Config) ([]float64, error) {
	var turn futex.Futex[S]
	errc := make(chan error, 1)
	go func() {
		for i := 0; i < c.Iters; i++ {
			if err := waitFor(&turn, uint32(2*i+1), futex.After(c.Timeout)); err != nil {
				errc <- err
				return
			}
			turn.Value.Add(1)
			if _, err := turn.Wake(1); err != nil {
				errc <- errors.WithStack(err)
				return
			}
		}
		errc <- nil
	}()
	samples := make([]float64, 0, c.Iters)
	for i := 0; i < c.Iters; i++ {
		start := time.Now()
		turn.Value.Add(1)
		if _, err := turn.Wake(1); err != nil {
			return samples, errors.WithStack(err)
		}
		if err := waitFor(&turn, uint32(2*i+2), futex.After(c.Timeout)); err != nil {
			return samples, err
		}
		samples = append(samples, float64(time.Since(start)))
	}
	return samples, <-errc
}

func piContend[S futex.Scope](c *Config) ([]float64, error) {
	lock := futex.NewPiFutex[S]()
	var mu sync.Mutex
	var samples []float64
	var wg sync.WaitGroup
	errc := make(chan error, c.Threads)
	for t := 0; t < c.Threads; t++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]float64, 0, c.Iters)
			for i := 0; i < c.Iters; i++ {
				start := time.Now()
				if err := lock.Lock(futex.Until(start.Add(c.Timeout))); err != nil {
					errc <- errors.Wrapf(err, "lock %s", lock)
					return
				}
				local = append(local, float64(time.Since(start)))
				if err := lock.Unlock(); err != nil {
					errc <- errors.Wrapf(err, "unlock %s", lock)
					return
				}
			}
			mu.Lock()
			samples = append(samples, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()
	close(errc)
	if err := <-errc; err != nil {
		return samples, err
	}
	if owner := lock.Owner(); owner.Raw() != 0 {
		return samples, errors.Errorf("lock left in state %s", owner)
	}
	return samples, nil
}

func wakeIdle[S futex.Scope](c *Config) ([]float64, error) {
	var f futex.Futex[S]
	samples := make([]float64, 0, c.Iters)
	for i := 0; i < c.Iters; i++ {
		start := time.Now()
		n, err := f.Wake(futex.WakeAll)
		if err != nil {
			return samples, errors.WithStack(err)
		}
		if n != 0 {
			return samples, errors.Errorf("woke %d waiters on an idle word", n)
		}
		samples = append(samples, float64(time.Since(start)))
	}
	return samples, nil
}

// Summary describes a set of latency samples.
type Summary struct {
	Count              int
	Mean, StdDev       time.Duration
	Min, P50, P99, Max time.Duration
}

func Summarize(samples []float64) Summary {
	if len(samples) == 0 {
		return Summary{}
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	mean, std := stat.MeanStdDev(sorted, nil)
	q := func(p float64) time.Duration {
		return time.Duration(stat.Quantile(p, stat.Empirical, sorted, nil))
	}
	return Summary{
		Count:  len(sorted),
		Mean:   time.Duration(mean),
		StdDev: time.Duration(std),
		Min:    time.Duration(sorted[0]),
		P50:    q(0.5),
		P99:    q(0.99),
		Max:    time.Duration(sorted[len(sorted)-1]),
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("n=%d mean=%s stddev=%s min=%s p50=%s p99=%s max=%s",
		s.Count, s.Mean, s.StdDev, s.Min, s.P50, s.P99, s.Max)
}

// Run executes the configured mode, tracing to c.TraceTo when set.
func Run(c *Config) (Summary, error) {
	if err := c.Validate(); err != nil {
		return Summary{}, err
	}
	if c.TraceTo != "" {
		f, err := os.Create(c.TraceTo)
		if err != nil {
			return Summary{}, errors.WithStack(err)
		}
		w, err := trace.NewWriter(f, os.Getpid())
		if err != nil {
			f.Close()
			return Summary{}, err
		}
		old := futex.SetTracer(w)
		defer func() {
			futex.SetTracer(old)
			if err := w.Close(); err != nil {
				cmd.PrintError(errors.Wrap(err, "closing trace"))
			}
		}()
	}
	m := modes[c.Mode]
	run := m.private
	if c.Shared {
		run = m.shared
	}
	samples, err := run(c)
	return Summarize(samples), err
}

func Main(args []string) int {
	fs := cmd.NewFlagSet(args[0], "")
	configPath := fs.String("config", "", "read settings from this yaml file instead of the config folders")
	var modeNames []string
	for name := range modes {
		modeNames = append(modeNames, name)
	}
	sort.Strings(modeNames)
	modeFlag := fs.String("mode", "", fmt.Sprintf("benchmark to run %v", modeNames))
	threads := fs.Int("threads", 0, "contending threads (pi mode)")
	iters := fs.Int("iters", 0, "iterations per thread")
	shared := fs.Bool("shared", false, "use shared instead of private futexes")
	timeout := fs.Duration("timeout", 0, "give up on any single wait or lock after this long")
	traceTo := fs.String("to", "", "write a futex call trace to this file")
	nocolor := fs.Bool("nocolor", false, "disable colored output")
	fs.Parse(args[1:])

	var c *Config
	var err error
	source := "defaults"
	if *configPath != "" {
		c, err = LoadConfigFile(*configPath)
		source = *configPath
	} else {
		var path string
		c, path, err = LoadConfig()
		if path != "" {
			source = path
		}
	}
	if err != nil {
		cmd.PrintError(err)
		return 1
	}
	// explicitly set flags override the config file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			c.Mode = *modeFlag
		case "threads":
			c.Threads = *threads
		case "iters":
			c.Iters = *iters
		case "shared":
			c.Shared = *shared
		case "timeout":
			c.Timeout = *timeout
		case "to":
			c.TraceTo = *traceTo
		case "nocolor":
			c.Color = !*nocolor
		}
	})
	if !c.Color {
		cmd.NoColor()
	}
	if err := c.Validate(); err != nil {
		cmd.PrintError(err)
		return 1
	}

	fmt.Println(cmd.Dim(fmt.Sprintf("# %s: %s, %d threads, %d iters, shared=%v (config: %s)",
		c.Mode, modes[c.Mode].desc, c.Threads, c.Iters, c.Shared, source)))
	summary, err := Run(c)
	if err != nil {
		cmd.PrintError(err)
		return 1
	}
	fmt.Println(cmd.Good(summary.String()))
	return 0
}

func init() { cmd.Register("bench", "measure futex wait/wake and PI lock latency", Main) }
