// Package terminal renders the simulation as coloured glyphs with termbox and
// paints into it with the mouse.
package terminal

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"

	"github.com/esimov/stable-fluid/brush"
	fluid "github.com/esimov/stable-fluid/fluid-solver"
	"github.com/esimov/stable-fluid/palette"
	"github.com/esimov/stable-fluid/vector"
)

// ramp orders glyphs from empty to full.
var ramp = []rune(" .:-=+*#%█")

type Terminal struct {
	solver   *fluid.Solver
	brush    *brush.Brush
	interval time.Duration
	logger   *slog.Logger

	mode     palette.Mode
	paused   bool
	dragging bool
	prev     vector.Vec2

	width, height int
}

// New creates a terminal host redrawing every interval.
func New(fs *fluid.Solver, b *brush.Brush, interval time.Duration, logger *slog.Logger) *Terminal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Terminal{
		solver:   fs,
		brush:    b,
		interval: interval,
		logger:   logger,
	}
}

// Run takes over the terminal until Esc is pressed or ctx is cancelled.
func (t *Terminal) Run(ctx context.Context) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("termbox init: %w", err)
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc | termbox.InputMouse)
	termbox.SetOutputMode(termbox.Output256)
	t.width, t.height = termbox.Size()

	// The poller stays parked in PollEvent after Close; it only matters
	// until the process exits.
	events := make(chan termbox.Event, 16)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if t.handle(ev) {
				return nil
			}
		case <-ticker.C:
			if !t.paused {
				t.solver.Update()
			}
			if err := t.draw(); err != nil {
				return err
			}
		}
	}
}

// handle applies one input event and reports whether the user asked to quit.
func (t *Terminal) handle(ev termbox.Event) bool {
	switch ev.Type {
	case termbox.EventKey:
		switch {
		case ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC:
			return true
		case ev.Key == termbox.KeySpace:
			t.paused = !t.paused
		case ev.Ch >= '1' && ev.Ch <= '4':
			t.mode = palette.Mode(ev.Ch - '1')
		case ev.Ch == 'm':
			t.mode = t.mode.Next()
		case ev.Ch == 'c':
			t.solver.ResetVelocity()
			t.solver.ResetDensity()
		}
	case termbox.EventMouse:
		switch ev.Key {
		case termbox.MouseLeft:
			t.paint(ev.MouseX, ev.MouseY)
		case termbox.MouseRelease:
			t.dragging = false
		}
	case termbox.EventResize:
		t.width, t.height = ev.Width, ev.Height
	case termbox.EventError:
		t.logger.Error("terminal event", "error", ev.Err)
	}
	return false
}

// canvas is the screen area given to the grid; the last line holds the status.
func (t *Terminal) canvas() (int, int) {
	return t.width, max(t.height-1, 1)
}

func (t *Terminal) paint(sx, sy int) {
	w, h := t.canvas()
	scale := brush.NewScale(w, h, t.solver.Width(), t.solver.Height())
	pos := scale.ToWorld(float64(sx)+0.5, float64(sy)+0.5)
	if !t.dragging {
		t.prev = pos
		t.dragging = true
	}
	t.brush.Stroke(t.solver, t.prev, pos)
	t.logger.Debug("stroke", "x", sx, "y", sy, "grid_x", pos.X(), "grid_y", pos.Y())
	t.prev = pos
}

func (t *Terminal) draw() error {
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return err
	}
	w, h := t.canvas()
	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			gx, gy := gridCell(sx, sy, w, h, t.solver.Width(), t.solver.Height())
			ch, fg := cell(palette.At(t.solver, t.mode, gx, gy))
			termbox.SetCell(sx, sy, ch, fg, termbox.ColorDefault)
		}
	}
	printLine(0, t.height-1, t.width, t.status(), termbox.ColorWhite, termbox.ColorDefault)
	return termbox.Flush()
}

func (t *Terminal) status() string {
	s := fmt.Sprintf(" %s │ step %d │ t %.2f │ 1-4 mode · space pause · c clear · esc quit",
		t.mode, t.solver.Steps(), t.solver.Time())
	if t.paused {
		s = " ⏸" + s
	}
	return s
}

// gridCell maps screen cell (sx, sy) of a w×h canvas onto a gw×gh grid.
func gridCell(sx, sy, w, h, gw, gh int) (int, int) {
	return min(sx*gw/w, gw-1), min(sy*gh/h, gh-1)
}

// cell picks a glyph by brightness and the nearest xterm colour.
func cell(c color.RGBA) (rune, termbox.Attribute) {
	lum := (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255
	idx := int(lum*float64(len(ramp)-1) + 0.5)
	return ramp[idx], xterm256(c)
}

// xterm256 returns the 6x6x6 colour cube entry closest to c. termbox
// attributes in 256 colour mode are offset by one.
func xterm256(c color.RGBA) termbox.Attribute {
	q := func(v uint8) int { return (int(v)*5 + 127) / 255 }
	return termbox.Attribute(16+36*q(c.R)+6*q(c.G)+q(c.B)) + 1
}

// printLine writes s at (x, y), cutting it to fit width columns.
func printLine(x, y, width int, s string, fg, bg termbox.Attribute) {
	s = runewidth.Truncate(s, width-x, "…")
	for _, r := range s {
		termbox.SetCell(x, y, r, fg, bg)
		x += runewidth.RuneWidth(r)
	}
}
