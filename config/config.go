// Package config loads the flick configuration file and turns it into
// options for the compositor.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ruapotato/Flick-sub004/compositor"
	"github.com/ruapotato/Flick-sub004/gesture"
	"github.com/ruapotato/Flick-sub004/shell"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "flick"
	configFileName = "flick.ini"

	EnvListen     = "FLICK_LISTEN"
	EnvOutputSize = "FLICK_OUTPUT_SIZE"
)

type GestureSection struct {
	EdgeThreshold          float64 `ini:"edge_threshold" toml:"edge_threshold" yaml:"edge_threshold" json:"edge_threshold"`
	SwipeThreshold         float64 `ini:"swipe_threshold" toml:"swipe_threshold" yaml:"swipe_threshold" json:"swipe_threshold"`
	SwipeCompleteThreshold float64 `ini:"swipe_complete_threshold" toml:"swipe_complete_threshold" yaml:"swipe_complete_threshold" json:"swipe_complete_threshold"`
	SwipeLongThreshold     float64 `ini:"swipe_long_threshold" toml:"swipe_long_threshold" yaml:"swipe_long_threshold" json:"swipe_long_threshold"`
	LongPressMs            int     `ini:"long_press_ms" toml:"long_press_ms" yaml:"long_press_ms" json:"long_press_ms"`
	TapMaxMs               int     `ini:"tap_max_ms" toml:"tap_max_ms" yaml:"tap_max_ms" json:"tap_max_ms"`
	TapDistance            float64 `ini:"tap_distance" toml:"tap_distance" yaml:"tap_distance" json:"tap_distance"`
	FlickVelocity          float64 `ini:"flick_velocity" toml:"flick_velocity" yaml:"flick_velocity" json:"flick_velocity"`
}

type ShellSection struct {
	InitialView string `ini:"initial_view" toml:"initial_view" yaml:"initial_view" json:"initial_view"`
	// Animate false snaps released gestures to their final view
	Animate     bool `ini:"animate" toml:"animate" yaml:"animate" json:"animate"`
	AnimationMs int  `ini:"animation_ms" toml:"animation_ms" yaml:"animation_ms" json:"animation_ms"`
}

type OutputSection struct {
	Name      string `ini:"name" toml:"name" yaml:"name" json:"name"`
	Width     int    `ini:"width" toml:"width" yaml:"width" json:"width"`
	Height    int    `ini:"height" toml:"height" yaml:"height" json:"height"`
	RefreshHz int    `ini:"refresh_hz" toml:"refresh_hz" yaml:"refresh_hz" json:"refresh_hz"`
}

type ServerSection struct {
	Listen string `ini:"listen" toml:"listen" yaml:"listen" json:"listen"`
	CORS   bool   `ini:"cors" toml:"cors" yaml:"cors" json:"cors"`
}

type InputSection struct {
	Enabled bool   `ini:"enabled" toml:"enabled" yaml:"enabled" json:"enabled"`
	Dir     string `ini:"dir" toml:"dir" yaml:"dir" json:"dir"`
	// Devices restricts input to these nodes; empty means every touchscreen
	Devices []string `ini:"devices" toml:"devices" yaml:"devices" json:"devices"`
}

type HistorySection struct {
	Size int `ini:"size" toml:"size" yaml:"size" json:"size"`
	// Database is a SQLite file the server appends gestures, actions and
	// view changes to; empty disables the persistent log
	Database string `ini:"database" toml:"database" yaml:"database" json:"database"`
	// RetentionDays prunes older log entries at startup, 0 keeps everything
	RetentionDays int `ini:"retention_days" toml:"retention_days" yaml:"retention_days" json:"retention_days"`
}

type Config struct {
	Gesture GestureSection `ini:"gesture" toml:"gesture" yaml:"gesture" json:"gesture"`
	Shell   ShellSection   `ini:"shell" toml:"shell" yaml:"shell" json:"shell"`
	Output  OutputSection  `ini:"output" toml:"output" yaml:"output" json:"output"`
	Server  ServerSection  `ini:"server" toml:"server" yaml:"server" json:"server"`
	Input   InputSection   `ini:"input" toml:"input" yaml:"input" json:"input"`
	History HistorySection `ini:"history" toml:"history" yaml:"history" json:"history"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	g := gesture.DefaultConfig()
	return &Config{
		Gesture: GestureSection{
			EdgeThreshold:          g.EdgeThreshold,
			SwipeThreshold:         g.SwipeThreshold,
			SwipeCompleteThreshold: g.SwipeCompleteThreshold,
			SwipeLongThreshold:     g.SwipeLongThreshold,
			LongPressMs:            int(g.LongPress / time.Millisecond),
			TapMaxMs:               int(g.TapMaxDuration / time.Millisecond),
			TapDistance:            g.TapDistance,
			FlickVelocity:          g.FlickVelocity,
		},
		Shell: ShellSection{
			InitialView: shell.ViewHome.String(),
			Animate:     true,
			AnimationMs: int(shell.DefaultAnimationDuration / time.Millisecond),
		},
		Output: OutputSection{
			Name:      "DSI-1",
			Width:     1080,
			Height:    2340,
			RefreshHz: 60,
		},
		Server: ServerSection{
			Listen: "localhost:12000",
		},
		Input: InputSection{
			Enabled: true,
			Dir:     "/dev/input",
		},
		History: HistorySection{
			Size: compositor.DefaultHistorySize,
		},
	}
}

func xdgOrFallback(xdg string, fallback string) string {
	if dir := os.Getenv(xdg); dir != "" {
		return dir
	}
	return fallback
}

// DefaultLogPath is $XDG_STATE_HOME/flick/events.db, falling back to
// ~/.local/state
func DefaultLogPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(xdgOrFallback("XDG_STATE_HOME", filepath.Join(home, ".local", "state")), configDirName, "events.db")
}

// DefaultPath is $XDG_CONFIG_HOME/flick/flick.ini, falling back to ~/.config
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(xdgOrFallback("XDG_CONFIG_HOME", filepath.Join(home, ".config")), configDirName, configFileName)
}

// Load reads path over the defaults; the format follows the file extension.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".conf", "":
		f, err := ini.Load(data)
		if err != nil {
			return nil, fmt.Errorf("decode INI: %w", err)
		}
		if err := f.MapTo(cfg); err != nil {
			return nil, fmt.Errorf("map INI: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}

	return cfg, nil
}

// Encode renders the configuration in the given format ("ini", "toml",
// "yaml" or "json")
func (c *Config) Encode(format string) ([]byte, error) {
	var buf bytes.Buffer

	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "ini", "conf", "":
		f := ini.Empty()
		if err := ini.ReflectFrom(f, c); err != nil {
			return nil, fmt.Errorf("encode INI: %w", err)
		}
		if _, err := f.WriteTo(&buf); err != nil {
			return nil, fmt.Errorf("encode INI: %w", err)
		}
	case "toml":
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, fmt.Errorf("encode TOML: %w", err)
		}
	case "yaml", "yml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return nil, fmt.Errorf("encode YAML: %w", err)
		}
		enc.Close()
	case "json":
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode JSON: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}

	return buf.Bytes(), nil
}

// Save writes the configuration to path, creating its directory
func (c *Config) Save(path string) error {
	data, err := c.Encode(filepath.Ext(path))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ParseSize parses a WIDTHxHEIGHT string
func ParseSize(s string) (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q, expected WIDTHxHEIGHT", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	return width, height, nil
}

// ApplyEnvOverrides applies FLICK_LISTEN and FLICK_OUTPUT_SIZE
func (c *Config) ApplyEnvOverrides() error {
	if v := os.Getenv(EnvListen); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv(EnvOutputSize); v != "" {
		w, h, err := ParseSize(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvOutputSize, err)
		}
		c.Output.Width, c.Output.Height = w, h
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.GestureConfig().Validate(); err != nil {
		return fmt.Errorf("gesture: %w", err)
	}
	if _, err := shell.ParseView(c.Shell.InitialView); err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	if c.Shell.AnimationMs < 0 {
		return fmt.Errorf("shell: animation_ms must not be negative, got %d", c.Shell.AnimationMs)
	}
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		return fmt.Errorf("output: size must be positive, got %dx%d", c.Output.Width, c.Output.Height)
	}
	if c.Output.RefreshHz < 0 {
		return fmt.Errorf("output: refresh_hz must not be negative, got %d", c.Output.RefreshHz)
	}
	if c.History.Size < 0 {
		return fmt.Errorf("history: size must not be negative, got %d", c.History.Size)
	}
	if c.History.RetentionDays < 0 {
		return fmt.Errorf("history: retention_days must not be negative, got %d", c.History.RetentionDays)
	}
	return nil
}

func (c *Config) GestureConfig() gesture.Config {
	g := c.Gesture
	return gesture.Config{
		EdgeThreshold:          g.EdgeThreshold,
		SwipeThreshold:         g.SwipeThreshold,
		SwipeCompleteThreshold: g.SwipeCompleteThreshold,
		SwipeLongThreshold:     g.SwipeLongThreshold,
		LongPress:              time.Duration(g.LongPressMs) * time.Millisecond,
		TapMaxDuration:         time.Duration(g.TapMaxMs) * time.Millisecond,
		TapDistance:            g.TapDistance,
		FlickVelocity:          g.FlickVelocity,
	}
}

func (c *Config) OutputConfig() compositor.Output {
	return compositor.Output{
		Name:      c.Output.Name,
		Width:     int32(c.Output.Width),
		Height:    int32(c.Output.Height),
		RefreshHz: c.Output.RefreshHz,
	}
}

func (c *Config) ShellOptions() ([]shell.Option, error) {
	view, err := shell.ParseView(c.Shell.InitialView)
	if err != nil {
		return nil, err
	}

	opts := []shell.Option{shell.WithInitialView(view)}
	if !c.Shell.Animate || c.Shell.AnimationMs == 0 {
		opts = append(opts, shell.WithInstantTransitions())
	} else {
		opts = append(opts, shell.WithAnimationDuration(time.Duration(c.Shell.AnimationMs)*time.Millisecond))
	}
	return opts, nil
}

// CompositorOptions validates the configuration and converts it to options
// for compositor.New
func (c *Config) CompositorOptions() ([]compositor.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	shellOpts, err := c.ShellOptions()
	if err != nil {
		return nil, err
	}

	return []compositor.Option{
		compositor.WithGestureConfig(c.GestureConfig()),
		compositor.WithShellOptions(shellOpts...),
		compositor.WithHistorySize(c.History.Size),
	}, nil
}
