package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/esimov/stable-fluid/brush"
	"github.com/esimov/stable-fluid/config"
	"github.com/esimov/stable-fluid/detector"
	fluid "github.com/esimov/stable-fluid/fluid-solver"
	fluidhttp "github.com/esimov/stable-fluid/http"
	"github.com/esimov/stable-fluid/telemetry"
	"github.com/esimov/stable-fluid/terminal"
	"github.com/esimov/stable-fluid/vector"
	"github.com/esimov/stable-fluid/websocket"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	mode := flag.String("mode", "terminal", "host to run: terminal, server or headless")
	steps := flag.Int("steps", 1000, "number of steps in headless mode")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "terminal":
		err = runTerminal(ctx, cfg, level)
	case "server":
		err = runServer(ctx, cfg, newLogger(os.Stderr, level))
	case "headless":
		err = runHeadless(ctx, cfg, *steps, newLogger(os.Stderr, level))
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "fluid: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(w *os.File, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// runTerminal owns the screen, so logs go to the configured file.
func runTerminal(ctx context.Context, cfg *config.Config, level slog.Level) error {
	f, err := os.OpenFile(cfg.Terminal.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()
	logger := newLogger(f, level)

	fs, err := cfg.NewSolver()
	if err != nil {
		return err
	}
	logger.Info("starting terminal", "width", fs.Width(), "height", fs.Height())
	term := terminal.New(fs, brush.New(cfg.Brush), config.FrameInterval(cfg.Terminal.FrameRate), logger)
	return term.Run(ctx)
}

func runServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	fs, err := cfg.NewSolver()
	if err != nil {
		return err
	}

	var faces websocket.FaceDetector
	if cfg.Detector.Cascade != "" {
		det, err := detector.Load(cfg.Detector)
		if err != nil {
			return err
		}
		faces = det
		logger.Info("face detection enabled", "cascade", cfg.Detector.Cascade)
	}

	ws := websocket.NewServer(fs, brush.New(cfg.Brush), faces, config.FrameInterval(cfg.Server.FrameRate), logger)
	params := fluidhttp.FromConfig(cfg.Server)
	handler, err := fluidhttp.Handler(params, ws, logger)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ws.Run(ctx) })
	g.Go(func() error { return fluidhttp.Serve(ctx, params, handler, logger) })
	return g.Wait()
}

// runHeadless stirs the fluid in a circle and records statistics.
func runHeadless(ctx context.Context, cfg *config.Config, steps int, logger *slog.Logger) error {
	fs, err := cfg.NewSolver()
	if err != nil {
		return err
	}
	rec, err := telemetry.NewRecorder(cfg.Telemetry.OutputDir)
	if err != nil {
		return err
	}
	defer rec.Close()
	if err := rec.WriteConfig(cfg); err != nil {
		return err
	}

	b := brush.New(cfg.Brush)
	w, h := float64(fs.Width()), float64(fs.Height())
	centre := vector.V2(w/2, h/2)
	radius := math.Min(w, h) / 4

	rng := rand.New(rand.NewSource(1))
	particles := make([]*fluid.Particle, 0, 256)
	for range cap(particles) {
		particles = append(particles, fluid.NewParticle(1+rng.Float64()*(w-3), 1+rng.Float64()*(h-3)))
	}

	logger.Info("starting headless run", "steps", steps, "width", fs.Width(), "height", fs.Height())
	prev := centre.Add(vector.V2(radius, 0))
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		angle := float64(i) * 0.05
		cur := centre.Add(vector.V2(math.Cos(angle), math.Sin(angle)).Scale(radius))
		b.Stroke(fs, prev, cur)
		prev = cur

		fs.Update()
		alive := fs.AdvectParticles(particles, 0)

		if fs.Steps()%cfg.Telemetry.Every == 0 {
			stats := fs.Stats()
			logger.Info("step", "stats", stats, "particles", alive)
			if err := rec.WriteStats(stats); err != nil {
				return err
			}
		}
	}
	if dir := rec.Dir(); dir != "" {
		logger.Info("telemetry written", "dir", dir)
	}
	return nil
}
