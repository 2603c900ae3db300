package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"bowser/pkg/text"
)

// Duration is a time.Duration written as a string ("30s", "1m") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds the settings shared by the bowser commands.
//
// Example file:
//
//	width = 1024
//	height = 768
//	user_agent = "Bowser"
//	timeout = "30s"
//
//	[fonts]
//	regular = "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"
type Config struct {
	Width     int             `toml:"width"`
	Height    int             `toml:"height"`
	UserAgent string          `toml:"user_agent"`
	Timeout   Duration        `toml:"timeout"`
	Fonts     text.FontConfig `toml:"fonts"`
}

func Default() Config {
	return Config{
		Width:     800,
		Height:    600,
		UserAgent: "Bowser",
		Timeout:   Duration{30 * time.Second},
		Fonts:     text.DefaultFontConfig(),
	}
}

// Load reads a TOML file over the defaults. An empty path returns the
// defaults unchanged. Font paths left out of the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	defaults := cfg.Fonts
	cfg.Fonts = text.FontConfig{}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("loading config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("loading config %s: unknown key %q", path, undecoded[0].String())
	}
	cfg.Fonts = cfg.Fonts.Merge(defaults)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}
