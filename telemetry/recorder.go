// Package telemetry records solver diagnostics to CSV.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/esimov/stable-fluid/config"
	fluid "github.com/esimov/stable-fluid/fluid-solver"
)

// Recorder appends solver stats to stats.csv in an output directory.
// A nil *Recorder discards everything.
type Recorder struct {
	dir           string
	statsFile     *os.File
	headerWritten bool
}

// NewRecorder creates dir and opens stats.csv inside it.
// Returns nil if dir is empty (output disabled).
func NewRecorder(dir string) (*Recorder, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "stats.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating stats.csv: %w", err)
	}
	return &Recorder{dir: dir, statsFile: f}, nil
}

// WriteConfig saves the configuration the run used as config.yaml.
func (r *Recorder) WriteConfig(cfg *config.Config) error {
	if r == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(r.dir, "config.yaml"))
}

// WriteStats appends one stats row, writing the header first if needed.
func (r *Recorder) WriteStats(s fluid.Stats) error {
	if r == nil {
		return nil
	}
	records := []fluid.Stats{s}
	if !r.headerWritten {
		if err := gocsv.Marshal(records, r.statsFile); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, r.statsFile); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (r *Recorder) Dir() string {
	if r == nil {
		return ""
	}
	return r.dir
}

// Close closes the output file.
func (r *Recorder) Close() error {
	if r == nil || r.statsFile == nil {
		return nil
	}
	return r.statsFile.Close()
}

// ReadStats loads every row of a stats.csv file.
func ReadStats(path string) ([]fluid.Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening stats: %w", err)
	}
	defer f.Close()

	var rows []fluid.Stats
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	return rows, nil
}
