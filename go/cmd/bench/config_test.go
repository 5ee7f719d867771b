package bench

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseConfig(t *testing.T) {
	c, err := ParseConfig([]byte("mode: pi\nthreads: 8\ntimeout: 250ms\nshared: true\ntrace: pi.trace\n"), DefaultConfig)
	if err != nil {
		t.Fatal(err)
	}
	if c.Mode != "pi" || c.Threads != 8 || !c.Shared || c.TraceTo != "pi.trace" {
		t.Fatalf("bad config: %+v", c)
	}
	if c.Timeout != 250*time.Millisecond {
		t.Fatalf("timeout = %s, want 250ms", c.Timeout)
	}
	// unset keys keep the defaults
	if c.Iters != DefaultConfig.Iters || !c.Color {
		t.Fatalf("defaults were lost: %+v", c)
	}
}

func TestParseConfigInvalid(t *testing.T) {
	tests := []struct {
		yaml, want string
	}{
		{"mode: spin\n", "unknown mode"},
		{"threads: 0\n", "threads"},
		{"iters: -1\n", "iters"},
		{"timeout: 0s\n", "timeout"},
		{"threads: [\n", "parse"},
	}
	for _, test := range tests {
		_, err := ParseConfig([]byte(test.yaml), DefaultConfig)
		if err == nil || !strings.Contains(err.Error(), test.want) {
			t.Errorf("%q: got %v, want error containing %q", test.yaml, err, test.want)
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	if err := os.WriteFile(path, []byte("mode: wake\niters: 10\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Mode != "wake" || c.Iters != 10 {
		t.Fatalf("bad config: %+v", c)
	}
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file did not fail")
	}
}
