// Package detector finds faces in grayscale frames so that head movement
// can stir the fluid.
package detector

import (
	"errors"
	"fmt"
	"os"

	pigo "github.com/esimov/pigo/core"

	"github.com/esimov/stable-fluid/config"
	"github.com/esimov/stable-fluid/vector"
)

// ErrNoCascade is returned when the detector is built without cascade data.
var ErrNoCascade = errors.New("detector: empty cascade")

// Detection is a face found in a frame, in image pixels.
type Detection struct {
	Row   int     `json:"row"`
	Col   int     `json:"col"`
	Scale int     `json:"scale"`
	Q     float32 `json:"q"`
}

// Detector wraps the pigo face classifier.
type Detector struct {
	classifier *pigo.Pigo
	cfg        config.DetectorConfig
}

// New unpacks a facefinder cascade. cfg must describe a terminating scan.
func New(cascade []byte, cfg config.DetectorConfig) (*Detector, error) {
	if len(cascade) == 0 {
		return nil, ErrNoCascade
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("unpacking the facefinder cascade: %w", err)
	}
	return &Detector{classifier: classifier, cfg: cfg}, nil
}

// Load reads the cascade named in cfg.
func Load(cfg config.DetectorConfig) (*Detector, error) {
	cascade, err := os.ReadFile(cfg.Cascade)
	if err != nil {
		return nil, fmt.Errorf("reading the facefinder cascade: %w", err)
	}
	return New(cascade, cfg)
}

// Detect runs the cascade over a width×height grayscale frame and returns
// the clustered detections scoring above the configured quality.
func (d *Detector) Detect(pixels []uint8, width, height int) []Detection {
	params := pigo.CascadeParams{
		MinSize:     d.cfg.MinSize,
		MaxSize:     d.cfg.MaxSize,
		ShiftFactor: d.cfg.ShiftFactor,
		ScaleFactor: d.cfg.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   height,
			Cols:   width,
			Dim:    width,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	// Merge overlapping detections by intersection over union.
	dets = d.classifier.ClusterDetections(dets, d.cfg.IoUThreshold)

	return filter(dets, d.cfg.Quality)
}

func filter(dets []pigo.Detection, quality float32) []Detection {
	out := make([]Detection, 0, len(dets))
	for _, det := range dets {
		if det.Q < quality {
			continue
		}
		out = append(out, Detection{Row: det.Row, Col: det.Col, Scale: det.Scale, Q: det.Q})
	}
	return out
}

// ToGrid maps the detection centre from a width×height frame onto a
// gridW×gridH solver grid. The frame is mirrored horizontally, as a webcam
// preview is.
func (d Detection) ToGrid(width, height, gridW, gridH int) vector.Vec2 {
	x := float64(width-1-d.Col) / float64(width) * float64(gridW)
	y := float64(d.Row) / float64(height) * float64(gridH)
	return vector.V2(x, y)
}
