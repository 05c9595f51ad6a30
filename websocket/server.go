// Package websocket streams the simulation to browser clients and turns
// their input into brush strokes.
package websocket

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/esimov/stable-fluid/brush"
	"github.com/esimov/stable-fluid/detector"
	fluid "github.com/esimov/stable-fluid/fluid-solver"
	"github.com/esimov/stable-fluid/palette"
	"github.com/esimov/stable-fluid/vector"
)

// ErrShortFrame is returned for binary frames smaller than their header claims.
var ErrShortFrame = errors.New("websocket: short frame")

// Message types accepted from clients.
const (
	TypeStroke    = "stroke"
	TypeDetection = "detection"
	TypeReset     = "reset"
	TypeMode      = "mode"
)

// Message is a JSON command sent by a client. Strokes are in grid
// coordinates and move from (X-DX, Y-DY) to (X, Y). Detections are face
// centres in a Width×Height camera frame.
type Message struct {
	Type   string  `json:"type"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	Row    int     `json:"row,omitempty"`
	Col    int     `json:"col,omitempty"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	Mode   string  `json:"mode,omitempty"`
}

// Frame is broadcast to every client after each step. Pixels holds
// Width×Height RGBA values row by row.
type Frame struct {
	Time   float64 `json:"time"`
	Step   int     `json:"step"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Mode   string  `json:"mode"`
	Pixels []byte  `json:"pixels"`
}

// FaceDetector finds faces in grayscale frames.
type FaceDetector interface {
	Detect(pixels []uint8, width, height int) []detector.Detection
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type input struct {
	from  *client
	msg   Message
	leave bool
}

// Server owns a solver and advances it on a single goroutine (Run). Client
// connections only exchange messages with that goroutine.
type Server struct {
	solver   *fluid.Solver
	brush    *brush.Brush
	detector FaceDetector
	interval time.Duration
	logger   *slog.Logger

	upgrader   websocket.Upgrader
	inbox      chan input
	writeFrame func(conn *websocket.Conn, data []byte) error

	mu      sync.Mutex
	clients map[*client]struct{}

	// owned by Run
	mode  palette.Mode
	faces map[*client]vector.Vec2
	pix   []byte
}

// NewServer creates a server stepping fs every interval. det may be nil.
func NewServer(fs *fluid.Solver, b *brush.Brush, det FaceDetector, interval time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		solver:   fs,
		brush:    b,
		detector: det,
		interval: interval,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		inbox:      make(chan input, 64),
		writeFrame: writeFrame,
		clients:    make(map[*client]struct{}),
		faces:      make(map[*client]vector.Vec2),
	}
}

func writeFrame(conn *websocket.Conn, data []byte) error {
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// ServeHTTP upgrades the connection and serves the client until it leaves.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		var herr websocket.HandshakeError
		if !errors.As(err, &herr) {
			s.logger.Error("websocket upgrade failed", "error", err)
		}
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 4)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Info("client connected", "remote", r.RemoteAddr)

	go s.writeLoop(c)
	s.readLoop(r.Context(), c)
}

// readLoop listens for new messages being sent to the websocket.
func (s *Server) readLoop(ctx context.Context, c *client) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		close(c.send)
		s.mu.Unlock()
		s.push(ctx, input{from: c, leave: true})
		s.logger.Info("client disconnected", "remote", c.conn.RemoteAddr().String())
	}()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		switch messageType {
		case websocket.TextMessage:
			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				s.logger.Warn("invalid message", "error", err)
				continue
			}
			s.push(ctx, input{from: c, msg: msg})
		case websocket.BinaryMessage:
			s.detectFaces(ctx, c, data)
		}
	}
}

// detectFaces runs the detector on the reader goroutine so the simulation
// loop never waits on it.
func (s *Server) detectFaces(ctx context.Context, c *client, data []byte) {
	if s.detector == nil {
		return
	}
	pixels, w, h, err := ParseFrame(data)
	if err != nil {
		s.logger.Warn("invalid frame", "error", err)
		return
	}
	for _, det := range s.detector.Detect(pixels, w, h) {
		s.push(ctx, input{from: c, msg: Message{
			Type:   TypeDetection,
			Row:    det.Row,
			Col:    det.Col,
			Width:  w,
			Height: h,
		}})
	}
}

func (s *Server) push(ctx context.Context, in input) {
	select {
	case s.inbox <- in:
	case <-ctx.Done():
	}
}

func (s *Server) writeLoop(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		if err := s.writeFrame(c.conn, data); err != nil {
			s.logger.Warn("websocket write failed", "error", err)
			// Closing ends readLoop, which unregisters the client and
			// closes send.
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Run steps the simulation and broadcasts frames until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in := <-s.inbox:
			s.apply(in)
		case <-ticker.C:
			s.solver.Update()
			if err := s.broadcast(); err != nil {
				return err
			}
		}
	}
}

func (s *Server) apply(in input) {
	if in.leave {
		delete(s.faces, in.from)
		return
	}
	msg := in.msg
	switch msg.Type {
	case TypeStroke:
		if !s.validStroke(msg) {
			s.logger.Warn("stroke out of range", "x", msg.X, "y", msg.Y, "dx", msg.DX, "dy", msg.DY)
			return
		}
		cur := vector.V2(msg.X, msg.Y)
		s.brush.Stroke(s.solver, cur.Sub(vector.V2(msg.DX, msg.DY)), cur)
	case TypeDetection:
		if msg.Width <= 0 || msg.Height <= 0 ||
			msg.Row < 0 || msg.Row >= msg.Height || msg.Col < 0 || msg.Col >= msg.Width {
			return
		}
		det := detector.Detection{Row: msg.Row, Col: msg.Col}
		cur := det.ToGrid(msg.Width, msg.Height, s.solver.Width(), s.solver.Height())
		prev, ok := s.faces[in.from]
		if !ok {
			prev = cur
		}
		s.faces[in.from] = cur
		s.brush.Stroke(s.solver, prev, cur)
	case TypeReset:
		s.solver.ResetVelocity()
		s.solver.ResetDensity()
	case TypeMode:
		if m, ok := palette.ParseMode(msg.Mode); ok {
			s.mode = m
		}
	default:
		s.logger.Warn("unknown message type", "type", msg.Type)
	}
}

// validStroke accepts strokes ending on the grid whose movement is at most
// one grid across.
func (s *Server) validStroke(msg Message) bool {
	w, h := float64(s.solver.Width()), float64(s.solver.Height())
	for _, v := range []float64{msg.X, msg.Y, msg.DX, msg.DY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return msg.X >= 0 && msg.X <= w && msg.Y >= 0 && msg.Y <= h &&
		math.Abs(msg.DX) <= w && math.Abs(msg.DY) <= h
}

func (s *Server) broadcast() error {
	s.pix = palette.Pixels(s.solver, s.mode, s.pix)
	data, err := json.Marshal(Frame{
		Time:   s.solver.Time(),
		Step:   s.solver.Steps(),
		Width:  s.solver.Width(),
		Height: s.solver.Height(),
		Mode:   s.mode.String(),
		Pixels: s.pix,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			// slow client, drop the frame
		}
	}
	return nil
}

// ParseFrame splits a binary camera frame into its pixels and size. The
// frame starts with big endian uint16 width and height followed by one
// grayscale byte per pixel.
func ParseFrame(data []byte) ([]uint8, int, int, error) {
	if len(data) < 4 {
		return nil, 0, 0, ErrShortFrame
	}
	w := int(binary.BigEndian.Uint16(data[0:2]))
	h := int(binary.BigEndian.Uint16(data[2:4]))
	if w == 0 || h == 0 || len(data)-4 < w*h {
		return nil, 0, 0, ErrShortFrame
	}
	return data[4 : 4+w*h], w, h, nil
}
