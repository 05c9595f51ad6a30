// Command fluid-view opens a window on the simulation and paints into it with
// the mouse.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/esimov/stable-fluid/brush"
	"github.com/esimov/stable-fluid/config"
	fluid "github.com/esimov/stable-fluid/fluid-solver"
	"github.com/esimov/stable-fluid/palette"
	"github.com/esimov/stable-fluid/vector"
)

type Game struct {
	solver *fluid.Solver
	brush  *brush.Brush
	scale  brush.Scale
	zoom   int
	logger *slog.Logger

	canvas *ebiten.Image
	pixels []byte

	mode     palette.Mode
	paused   bool
	dragging bool
	prev     vector.Vec2
}

func NewGame(fs *fluid.Solver, b *brush.Brush, zoom int, logger *slog.Logger) *Game {
	w, h := fs.Width(), fs.Height()
	return &Game{
		solver: fs,
		brush:  b,
		scale:  brush.NewScale(w*zoom, h*zoom, w, h),
		zoom:   zoom,
		logger: logger,
		canvas: ebiten.NewImage(w, h),
	}
}

var modeKeys = []ebiten.Key{ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	for i, k := range modeKeys {
		if inpututil.IsKeyJustPressed(k) {
			g.mode = palette.Mode(i)
			g.logger.Debug("render mode", "mode", g.mode)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.solver.ResetVelocity()
		g.solver.ResetDensity()
	}

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		pos := g.scale.ToWorld(float64(mx), float64(my))
		if !g.dragging {
			g.prev = pos
			g.dragging = true
		}
		g.brush.Stroke(g.solver, g.prev, pos)
		g.prev = pos
	} else {
		g.dragging = false
	}

	if !g.paused {
		g.solver.Update()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.pixels = palette.Pixels(g.solver, g.mode, g.pixels)
	g.canvas.WritePixels(g.pixels)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.zoom), float64(g.zoom))
	screen.DrawImage(g.canvas, op)

	status := fmt.Sprintf("%s  step %d  TPS %0.1f", g.mode, g.solver.Steps(), ebiten.ActualTPS())
	if g.paused {
		status += "  (paused)"
	}
	ebitenutil.DebugPrint(screen, status+"\n1-4 mode, space pause, c clear")
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.solver.Width() * g.zoom, g.solver.Height() * g.zoom
}

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	fs, err := cfg.NewSolver()
	if err != nil {
		logger.Error("failed to create solver", "error", err)
		os.Exit(1)
	}

	zoom := cfg.Viewer.Zoom
	ebiten.SetWindowSize(fs.Width()*zoom, fs.Height()*zoom)
	ebiten.SetWindowTitle("Stable Fluid")
	ebiten.SetTPS(cfg.Viewer.FrameRate)

	if err := ebiten.RunGame(NewGame(fs, brush.New(cfg.Brush), zoom, logger)); err != nil {
		logger.Error("viewer stopped", "error", err)
		os.Exit(1)
	}
}
