package serene

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config is the file-level configuration for a serene page. Load it with
// LoadConfig and hand it to Apply, LayoutConfig and RunConfig.
type Config struct {
	Screen ScreenConfig     `yaml:"screen"`
	Reveal RevealDefaults   `yaml:"reveal"`
	Layout LayoutFileConfig `yaml:"layout"`
	Petals PetalConfig      `yaml:"petals"`
	Debug  DebugConfig      `yaml:"debug"`
}

// ScreenConfig sizes the window.
type ScreenConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	ShowFPS   bool   `yaml:"show_fps"`
	Resizable bool   `yaml:"resizable"`
}

// RevealDefaults are the scene-wide reveal settings.
type RevealDefaults struct {
	SettleDelay time.Duration  `yaml:"settle_delay"`
	Offset      float64        `yaml:"offset"`
	Duration    float32        `yaml:"duration"` // seconds
	Observer    ObserverConfig `yaml:"observer"`
}

// LayoutFileConfig holds the serializable part of LayoutConfig.
type LayoutFileConfig struct {
	BackgroundAlpha float64 `yaml:"background_alpha"`
	Seed            uint64  `yaml:"seed"`
}

// DebugConfig toggles debug mode and the log level.
type DebugConfig struct {
	Enabled  bool   `yaml:"enabled"`
	LogLevel string `yaml:"log_level"`
}

// LoadConfig reads the embedded defaults and overlays the file at path, if
// any. Only keys present in the file override defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns the embedded defaults. Panics if they fail to parse.
func DefaultConfig() *Config {
	cfg, err := LoadConfig("")
	if err != nil {
		panic("serene: " + err.Error())
	}
	return cfg
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return fmt.Errorf("screen size %dx%d must be positive", c.Screen.Width, c.Screen.Height)
	}
	if c.Reveal.SettleDelay < 0 {
		return fmt.Errorf("reveal.settle_delay %v is negative", c.Reveal.SettleDelay)
	}
	if c.Reveal.Duration < 0 {
		return fmt.Errorf("reveal.duration %v is negative", c.Reveal.Duration)
	}
	if t := c.Reveal.Observer.Threshold; t < 0 || t > 1 {
		return fmt.Errorf("reveal.observer.threshold %v outside [0, 1]", t)
	}
	if a := c.Layout.BackgroundAlpha; a < 0 || a > 1 {
		return fmt.Errorf("layout.background_alpha %v outside [0, 1]", a)
	}
	if err := c.Petals.Validate(); err != nil {
		return fmt.Errorf("petals: %w", err)
	}
	if c.Debug.LogLevel != "" {
		if _, err := zap.ParseAtomicLevel(c.Debug.LogLevel); err != nil {
			return fmt.Errorf("debug.log_level: %w", err)
		}
	}
	return nil
}

// Apply pushes scene-wide settings into s.
func (c *Config) Apply(s *Scene) {
	s.SetSettleDelay(c.Reveal.SettleDelay)
	*s.Observer().Config() = c.Reveal.Observer
	s.Viewport().SetSize(float64(c.Screen.Width), float64(c.Screen.Height))
	s.SetDebugMode(c.Debug.Enabled)
}

// RevealConfig returns a RevealConfig carrying the configured transition
// settings and the given delay.
func (c *Config) RevealConfig(delay time.Duration) RevealConfig {
	return RevealConfig{
		Delay:    delay,
		Offset:   c.Reveal.Offset,
		Duration: c.Reveal.Duration,
	}
}

// LayoutConfig returns a LayoutConfig carrying the configured petal tuning.
// Images are left for the caller to fill in.
func (c *Config) LayoutConfig() LayoutConfig {
	return LayoutConfig{
		BackgroundAlpha: c.Layout.BackgroundAlpha,
		Petals:          c.Petals,
		Seed:            c.Layout.Seed,
	}
}

// RunConfig returns the window settings.
func (c *Config) RunConfig() RunConfig {
	return RunConfig{
		Title:     c.Screen.Title,
		Width:     c.Screen.Width,
		Height:    c.Screen.Height,
		ShowFPS:   c.Screen.ShowFPS,
		Resizable: c.Screen.Resizable,
	}
}

// NewLogger builds a development zap logger at the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if c.Debug.LogLevel != "" {
		lvl, err := zap.ParseAtomicLevel(c.Debug.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		zc.Level = lvl
	}
	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return l, nil
}

// WriteYAML saves the configuration to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
