package websocket

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/esimov/stable-fluid/brush"
	"github.com/esimov/stable-fluid/config"
	"github.com/esimov/stable-fluid/detector"
	fluid "github.com/esimov/stable-fluid/fluid-solver"
	"github.com/esimov/stable-fluid/palette"
	"github.com/esimov/stable-fluid/vector"
)

type fakeDetector struct {
	dets []detector.Detection
}

func (f fakeDetector) Detect(pixels []uint8, width, height int) []detector.Detection {
	return f.dets
}

func newTestServer(t *testing.T, det FaceDetector) *Server {
	t.Helper()
	fs, err := fluid.New(10, 10, 0.25, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	b := brush.New(config.BrushConfig{Radius: 1, ForceMultiplier: 5, TimeMultiplier: 0.01})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(fs, b, det, 5*time.Millisecond, logger)
}

func encodeFrame(w, h int, pixels []uint8) []byte {
	data := make([]byte, 4, 4+len(pixels))
	binary.BigEndian.PutUint16(data[0:2], uint16(w))
	binary.BigEndian.PutUint16(data[2:4], uint16(h))
	return append(data, pixels...)
}

func TestParseFrame(t *testing.T) {
	pixels, w, h, err := ParseFrame(encodeFrame(3, 2, []uint8{1, 2, 3, 4, 5, 6, 7}))
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if w != 3 || h != 2 || len(pixels) != 6 || pixels[5] != 6 {
		t.Errorf("got %dx%d %v", w, h, pixels)
	}

	for _, data := range [][]byte{
		nil,
		{0, 1},
		encodeFrame(0, 2, nil),
		encodeFrame(4, 4, make([]uint8, 15)),
	} {
		if _, _, _, err := ParseFrame(data); !errors.Is(err, ErrShortFrame) {
			t.Errorf("ParseFrame(%v) error = %v, want ErrShortFrame", data, err)
		}
	}
}

func TestApplyStroke(t *testing.T) {
	s := newTestServer(t, nil)
	s.apply(input{msg: Message{Type: TypeStroke, X: 5, Y: 5, DX: 1}})
	s.solver.Update()

	if v := s.solver.Velocity().At(5, 5); v.X() <= 0 {
		t.Errorf("velocity at stroke = %v, want positive x", v)
	}
}

func TestApplyRejectsOutOfRangeStrokes(t *testing.T) {
	s := newTestServer(t, nil)
	for _, msg := range []Message{
		{Type: TypeStroke, X: 5, Y: 5, DX: 1e308},
		{Type: TypeStroke, X: 5, Y: 5, DY: -11},
		{Type: TypeStroke, X: math.NaN(), Y: 5, DX: 1},
		{Type: TypeStroke, X: 5, Y: math.Inf(1), DX: 1},
		{Type: TypeStroke, X: -1, Y: 5, DX: 1},
		{Type: TypeStroke, X: 5, Y: 1e12, DX: 1},
	} {
		s.apply(input{msg: msg})
	}

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Update panicked: %v", r)
		}
	}()
	s.solver.Update()
	if v := s.solver.Velocity().At(5, 5); v != (vector.Vec2{}) {
		t.Errorf("rejected strokes moved the fluid: %v", v)
	}
}

func TestApplyDetectionTracksFace(t *testing.T) {
	s := newTestServer(t, nil)
	c := &client{}

	s.apply(input{from: c, msg: Message{Type: TypeDetection, Row: 50, Col: 50, Width: 100, Height: 100}})
	first, ok := s.faces[c]
	if !ok {
		t.Fatal("face position not tracked")
	}
	want := detector.Detection{Row: 50, Col: 50}.ToGrid(100, 100, 10, 10)
	if first != want {
		t.Errorf("face = %v, want %v", first, want)
	}

	s.apply(input{from: c, leave: true})
	if _, ok := s.faces[c]; ok {
		t.Error("face position kept after leave")
	}

	// frames without a size are ignored
	s.apply(input{from: c, msg: Message{Type: TypeDetection, Row: 1, Col: 1}})
	if _, ok := s.faces[c]; ok {
		t.Error("detection without frame size applied")
	}
}

func TestApplyModeAndReset(t *testing.T) {
	s := newTestServer(t, nil)
	s.apply(input{msg: Message{Type: TypeMode, Mode: palette.ModePressure.String()}})
	if s.mode != palette.ModePressure {
		t.Errorf("mode = %v, want %v", s.mode, palette.ModePressure)
	}
	s.apply(input{msg: Message{Type: TypeMode, Mode: "bogus"}})
	if s.mode != palette.ModePressure {
		t.Errorf("unknown mode changed mode to %v", s.mode)
	}

	s.brush.Stroke(s.solver, vector.V2(4, 4), vector.V2(5, 5))
	s.solver.Update()
	s.apply(input{msg: Message{Type: TypeReset}})
	if v := s.solver.Velocity().At(5, 5); v != (vector.Vec2{}) {
		t.Errorf("velocity after reset = %v", v)
	}
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return f
}

func TestServerBroadcastsFrames(t *testing.T) {
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	conn := dial(t, ts)
	f := readFrame(t, conn)
	if f.Width != 10 || f.Height != 10 || len(f.Pixels) != 10*10*4 {
		t.Fatalf("frame %dx%d with %d bytes", f.Width, f.Height, len(f.Pixels))
	}
	if f.Mode != palette.ModeDensity.String() {
		t.Errorf("mode = %q", f.Mode)
	}

	if err := conn.WriteJSON(Message{Type: TypeStroke, X: 5, Y: 5, DX: 1}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	// y-major RGBA
	off := (5*10 + 5) * 4
	for i := 0; i < 100; i++ {
		f = readFrame(t, conn)
		if p := f.Pixels[off : off+3]; p[0] != 0 || p[1] != 0 || p[2] != 0 {
			return
		}
	}
	t.Error("stroke never showed up in the broadcast frames")
}

func TestServerRunsDetector(t *testing.T) {
	det := fakeDetector{dets: []detector.Detection{{Row: 40, Col: 40, Scale: 20, Q: 9}}}
	s := newTestServer(t, det)
	ts := httptest.NewServer(s)
	defer ts.Close()

	conn := dial(t, ts)
	if err := conn.WriteMessage(websocket.BinaryMessage, encodeFrame(80, 80, make([]uint8, 80*80))); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	select {
	case in := <-s.inbox:
		if in.msg.Type != TypeDetection || in.msg.Row != 40 || in.msg.Width != 80 {
			t.Errorf("got %+v", in.msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no detection forwarded")
	}
}

func TestServerCountsClients(t *testing.T) {
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	conn := dial(t, ts)
	readFrame(t, conn)
	if n := s.Clients(); n != 1 {
		t.Errorf("Clients() = %d, want 1", n)
	}
}

func TestServerDropsClientOnWriteError(t *testing.T) {
	s := newTestServer(t, nil)
	s.writeFrame = func(*websocket.Conn, []byte) error { return errors.New("broken pipe") }
	ts := httptest.NewServer(s)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	conn := dial(t, ts)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	var ne net.Error
	if err == nil || (errors.As(err, &ne) && ne.Timeout()) {
		t.Fatalf("ReadMessage = %v, want the server to close the connection", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for s.Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Clients() = %d after write failure, want 0", s.Clients())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestFrameJSON(t *testing.T) {
	data, err := json.Marshal(Frame{Width: 1, Height: 1, Pixels: []byte{1, 2, 3, 4}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"pixels":"AQIDBA=="`) {
		t.Errorf("pixels not base64 encoded: %s", data)
	}
}
