// Package config provides configuration loading for the fluid hosts.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	fluid "github.com/esimov/stable-fluid/fluid-solver"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all configuration parameters.
type Config struct {
	Grid      GridConfig      `yaml:"grid"`
	Solver    SolverConfig    `yaml:"solver"`
	Brush     BrushConfig     `yaml:"brush"`
	Terminal  TerminalConfig  `yaml:"terminal"`
	Server    ServerConfig    `yaml:"server"`
	Viewer    ViewerConfig    `yaml:"viewer"`
	Detector  DetectorConfig  `yaml:"detector"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// GridConfig holds the simulation grid size, ring cells included.
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// SolverConfig holds the numerical parameters of the solver.
type SolverConfig struct {
	DeltaTime            float64 `yaml:"delta_time"`
	Viscosity            float64 `yaml:"viscosity"`
	DiffusionIterations  int     `yaml:"diffusion_iterations"`
	PressureIterations   int     `yaml:"pressure_iterations"`
	Vorticity            bool    `yaml:"vorticity"`
	AccumulateInjections bool    `yaml:"accumulate_injections"`
	ReflectEdges         bool    `yaml:"reflect_edges"`
	Workers              int     `yaml:"workers"` // -1 = one per CPU
}

// BrushConfig holds the painting parameters.
type BrushConfig struct {
	Radius          int     `yaml:"radius"`
	ForceMultiplier float64 `yaml:"force_multiplier"`
	TimeMultiplier  float64 `yaml:"time_multiplier"`
}

// TerminalConfig holds the termbox host settings.
type TerminalConfig struct {
	FrameRate int    `yaml:"frame_rate"`
	LogFile   string `yaml:"log_file"`
}

// ServerConfig holds the websocket server settings.
type ServerConfig struct {
	Address   string `yaml:"address"`
	Prefix    string `yaml:"prefix"`
	Root      string `yaml:"root"`
	FrameRate int    `yaml:"frame_rate"`
}

// ViewerConfig holds the window viewer settings.
type ViewerConfig struct {
	FrameRate int `yaml:"frame_rate"`
	Zoom      int `yaml:"zoom"` // screen pixels per grid cell
}

// DetectorConfig holds the face detector settings. An empty cascade path
// disables detection.
type DetectorConfig struct {
	Cascade      string  `yaml:"cascade"`
	MinSize      int     `yaml:"min_size"`
	MaxSize      int     `yaml:"max_size"`
	ShiftFactor  float64 `yaml:"shift_factor"`
	ScaleFactor  float64 `yaml:"scale_factor"`
	IoUThreshold float64 `yaml:"iou_threshold"`
	Quality      float32 `yaml:"quality"`
}

// TelemetryConfig holds the stats output settings.
type TelemetryConfig struct {
	OutputDir string `yaml:"output_dir"` // empty = no CSV output
	Every     int    `yaml:"every"`      // frames between samples
}

// Load reads the embedded defaults and overlays the YAML file at path, if any.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the embedded configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks the ranges the solver and hosts rely on.
func (c *Config) Validate() error {
	switch {
	case c.Grid.Width < 3 || c.Grid.Height < 3:
		return fmt.Errorf("%w: grid must be at least 3x3, got %dx%d", ErrInvalid, c.Grid.Width, c.Grid.Height)
	case c.Solver.DeltaTime < 0:
		return fmt.Errorf("%w: solver.delta_time must not be negative", ErrInvalid)
	case c.Solver.Viscosity < 0:
		return fmt.Errorf("%w: solver.viscosity must not be negative", ErrInvalid)
	case c.Solver.DiffusionIterations < 0 || c.Solver.PressureIterations < 0:
		return fmt.Errorf("%w: iteration counts must not be negative", ErrInvalid)
	case c.Brush.Radius < 0:
		return fmt.Errorf("%w: brush.radius must not be negative", ErrInvalid)
	case c.Terminal.FrameRate <= 0 || c.Server.FrameRate <= 0 || c.Viewer.FrameRate <= 0:
		return fmt.Errorf("%w: frame rates must be positive", ErrInvalid)
	case c.Viewer.Zoom <= 0:
		return fmt.Errorf("%w: viewer.zoom must be positive", ErrInvalid)
	case c.Telemetry.Every <= 0:
		return fmt.Errorf("%w: telemetry.every must be positive", ErrInvalid)
	}
	return c.Detector.Validate()
}

// Validate checks that the cascade scan grows from MinSize to MaxSize in a
// finite number of steps.
func (d DetectorConfig) Validate() error {
	switch {
	case d.MinSize <= 0:
		return fmt.Errorf("%w: detector.min_size must be positive", ErrInvalid)
	case d.MaxSize < d.MinSize:
		return fmt.Errorf("%w: detector.max_size must not be below min_size", ErrInvalid)
	case !(d.ScaleFactor > 1):
		return fmt.Errorf("%w: detector.scale_factor must be greater than 1", ErrInvalid)
	case int(float64(d.MinSize)*d.ScaleFactor) <= d.MinSize:
		return fmt.Errorf("%w: detector.scale_factor %v does not grow min_size %d", ErrInvalid, d.ScaleFactor, d.MinSize)
	}
	return nil
}

// Options converts the solver section into solver options.
func (s SolverConfig) Options() fluid.Options {
	opts := fluid.DefaultOptions()
	opts.DiffusionIterations = s.DiffusionIterations
	opts.PressureIterations = s.PressureIterations
	opts.Vorticity = s.Vorticity
	opts.AccumulateInjections = s.AccumulateInjections
	opts.Workers = s.Workers
	if s.ReflectEdges {
		opts.Boundary = fluid.ReflectEdges
	}
	return opts
}

// NewSolver builds a solver from the grid and solver sections.
func (c *Config) NewSolver() (*fluid.Solver, error) {
	return fluid.NewWithOptions(c.Grid.Width, c.Grid.Height, c.Solver.DeltaTime, c.Solver.Viscosity, c.Solver.Options())
}

// FrameInterval converts a frame rate into a ticker period.
func FrameInterval(rate int) time.Duration {
	if rate <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(rate)
}

// WriteYAML saves the configuration as YAML.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
