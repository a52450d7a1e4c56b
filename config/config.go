// Package config loads framehost configuration.
//
// Configuration comes from an optional YAML file merged over Default, then
// from command-line flags applied by the caller. ${VAR} and ${VAR:-default}
// are expanded in path fields.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/framehost/errors"
	"github.com/wippyai/framehost/wasi/preview1"
)

// Shell modes.
const (
	ModeAuto     = "auto"
	ModeTerminal = "terminal"
	ModeHeadless = "headless"
)

// Config is the complete host configuration.
type Config struct {
	// Guest describes the hosted module.
	Guest GuestConfig `yaml:"guest"`

	// Surface sets the logical drawing surface size.
	Surface SurfaceConfig `yaml:"surface"`

	// Scheduler controls tick pacing.
	Scheduler SchedulerConfig `yaml:"scheduler"`

	// Shell selects and configures the front end.
	Shell ShellConfig `yaml:"shell"`

	// Log configures zap.
	Log LogConfig `yaml:"log"`
}

// GuestConfig describes the hosted module.
type GuestConfig struct {
	// Path is the guest binary. Empty with Demo unset is an error.
	Path string `yaml:"path"`

	// Demo runs the built-in demo guest instead of Path.
	Demo bool `yaml:"demo"`

	// Env is the guest environment as NAME=VALUE entries.
	Env []string `yaml:"env"`

	// Args is the guest argument vector.
	Args []string `yaml:"args"`

	// MemoryLimitPages caps guest memory in 64KiB pages. 0 means no cap
	// beyond the 4GiB address space.
	MemoryLimitPages uint32 `yaml:"memory_limit_pages"`

	// StartExport and UpdateExport name the guest entry points.
	// Default: _start, update
	StartExport  string `yaml:"start_export"`
	UpdateExport string `yaml:"update_export"`
}

// SurfaceConfig sets the logical drawing surface size.
type SurfaceConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// SchedulerConfig controls tick pacing.
type SchedulerConfig struct {
	// FPS is the tick rate.
	// Default: 60
	FPS int `yaml:"fps"`
}

// ShellConfig selects and configures the front end.
type ShellConfig struct {
	// Mode is auto, terminal or headless. Auto picks terminal when stdout
	// is a terminal.
	Mode string `yaml:"mode"`

	// KeyHold is how long a terminal key stays down after its last press,
	// since terminals report no releases.
	// Default: 150ms
	KeyHold string `yaml:"key_hold"`

	// Frames is the number of ticks a headless run executes.
	// Default: 120
	Frames int `yaml:"frames"`

	// Snapshot is where a headless run writes the final surface as PNG.
	// Empty means no snapshot.
	Snapshot string `yaml:"snapshot"`
}

// LogConfig configures zap.
type LogConfig struct {
	// Level is a zap level name.
	// Default: info
	Level string `yaml:"level"`

	// Development selects zap's development encoder.
	Development bool `yaml:"development"`

	// File receives log output instead of stderr. The terminal shell
	// discards logs when it is empty, since stderr shares its screen.
	File string `yaml:"file"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Guest: GuestConfig{
			StartExport:  "_start",
			UpdateExport: "update",
		},
		Surface: SurfaceConfig{
			Width:  640,
			Height: 480,
		},
		Scheduler: SchedulerConfig{
			FPS: 60,
		},
		Shell: ShellConfig{
			Mode:    ModeAuto,
			KeyHold: "150ms",
			Frames:  120,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadFile loads configuration from path, merged over Default.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read "+path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidData).
			Path(path).
			Cause(err).
			Detail("decode yaml").
			Build()
	}

	cfg.ExpandVariables()
	return cfg, nil
}

// ExpandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) ExpandVariables() {
	c.Guest.Path = expandVars(c.Guest.Path)
	c.Shell.Snapshot = expandVars(c.Shell.Snapshot)
	c.Log.File = expandVars(c.Log.File)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// TickInterval returns the time between ticks.
func (c *Config) TickInterval() time.Duration {
	if c.Scheduler.FPS <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.Scheduler.FPS)
}

// KeyHoldDuration returns the parsed key hold window.
func (c *Config) KeyHoldDuration() time.Duration {
	d, err := time.ParseDuration(c.Shell.KeyHold)
	if err != nil || d <= 0 {
		return 150 * time.Millisecond
	}
	return d
}

// Validate checks the configuration for errors. All problems are reported
// together.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(path, format string, args ...any) {
		errs = append(errs, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path(path).
			Detail(format, args...).
			Build())
	}

	if c.Guest.Path == "" && !c.Guest.Demo {
		invalid("guest.path", "a guest path is required unless demo is set")
	}
	for _, e := range c.Guest.Env {
		if err := preview1.ValidateEnvEntry(e); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Surface.Width <= 0 || c.Surface.Height <= 0 {
		invalid("surface", "size %dx%d must be positive", c.Surface.Width, c.Surface.Height)
	}
	if c.Scheduler.FPS <= 0 || c.Scheduler.FPS > 1000 {
		invalid("scheduler.fps", "%d is outside 1..1000", c.Scheduler.FPS)
	}

	switch c.Shell.Mode {
	case ModeAuto, ModeTerminal, ModeHeadless:
	default:
		invalid("shell.mode", "unknown mode %q", c.Shell.Mode)
	}
	if d, err := time.ParseDuration(c.Shell.KeyHold); err != nil || d <= 0 {
		invalid("shell.key_hold", "%q is not a positive duration", c.Shell.KeyHold)
	}
	if c.Shell.Frames < 0 {
		invalid("shell.frames", "%d is negative", c.Shell.Frames)
	}

	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		invalid("log.level", "%v", err)
	}

	return stderrors.Join(errs...)
}

// String renders the configuration as YAML.
func (c *Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return string(data)
}
