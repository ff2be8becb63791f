// Package config loads jedtool settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultFile is looked up in the working directory when no --config flag is
// given.
const DefaultFile = "jedtool.toml"

// Config is the jedtool configuration file.
type Config struct {
	Programmer Programmer `toml:"programmer"`
	Output     Output     `toml:"output"`
}

// Programmer holds defaults for `jedtool program`.
type Programmer struct {
	Adapter string `toml:"adapter"`
	SpeedHz int    `toml:"speed_hz"`
	Verify  bool   `toml:"verify"`
}

// Output holds presentation settings.
type Output struct {
	Color  string `toml:"color"`  // auto, on or off
	Format string `toml:"format"` // export format: json or msgpack
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		Programmer: Programmer{Adapter: "simulator", SpeedHz: 1_000_000, Verify: true},
		Output:     Output{Color: "auto", Format: "json"},
	}
}

// Load reads path over the defaults. An empty path loads DefaultFile if it
// exists and the defaults otherwise.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat(DefaultFile); errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		path = DefaultFile
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Output.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("[output].color must be auto, on or off, got %q", c.Output.Color)
	}
	switch c.Output.Format {
	case "json", "msgpack":
	default:
		return fmt.Errorf("[output].format must be json or msgpack, got %q", c.Output.Format)
	}
	if c.Programmer.SpeedHz < 0 {
		return fmt.Errorf("[programmer].speed_hz must not be negative")
	}
	if strings.TrimSpace(c.Programmer.Adapter) == "" {
		return fmt.Errorf("missing [programmer].adapter")
	}
	return nil
}
