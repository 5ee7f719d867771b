package bench

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"
	"gopkg.in/yaml.v3"
)

const configName = "bench.yaml"

type Config struct {
	Mode    string        `yaml:"mode"`
	Threads int           `yaml:"threads"`
	Iters   int           `yaml:"iters"`
	Shared  bool          `yaml:"shared"`
	Timeout time.Duration `yaml:"timeout"`
	TraceTo string        `yaml:"trace"`
	Color   bool          `yaml:"color"`
}

var DefaultConfig = Config{
	Mode:    "pingpong",
	Threads: 2,
	Iters:   10000,
	Timeout: 5 * time.Second,
	Color:   true,
}

// ParseConfig overlays yaml data on base.
func ParseConfig(data []byte, base Config) (*Config, error) {
	c := base
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "failed to parse bench config")
	}
	return &c, c.Validate()
}

func (c *Config) Validate() error {
	if _, ok := modes[c.Mode]; !ok {
		return errors.Errorf("unknown mode %q", c.Mode)
	}
	if c.Threads < 1 {
		return errors.Errorf("threads must be at least 1, got %d", c.Threads)
	}
	if c.Iters < 1 {
		return errors.Errorf("iters must be at least 1, got %d", c.Iters)
	}
	if c.Timeout <= 0 {
		return errors.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// LoadConfig reads bench.yaml from the first config folder that has one,
// falling back to DefaultConfig. It returns the path it used, if any.
func LoadConfig() (*Config, string, error) {
	configDirs := configdir.New("futex", "bench")
	for _, config := range configDirs.QueryFolders(configdir.All) {
		if !config.Exists(configName) {
			continue
		}
		data, err := config.ReadFile(configName)
		if err != nil {
			return nil, "", errors.Wrap(err, "failed to read bench config")
		}
		path := filepath.Join(config.Path, configName)
		c, err := ParseConfig(data, DefaultConfig)
		if err != nil {
			return nil, path, errors.Wrap(err, path)
		}
		return c, path, nil
	}
	c := DefaultConfig
	return &c, "", nil
}

// LoadConfigFile reads an explicit config file instead of searching.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	c, err := ParseConfig(data, DefaultConfig)
	return c, errors.Wrap(err, path)
}
