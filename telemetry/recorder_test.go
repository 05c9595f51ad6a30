package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/esimov/stable-fluid/config"
	fluid "github.com/esimov/stable-fluid/fluid-solver"
)

func TestNilRecorderIsNoop(t *testing.T) {
	r, err := NewRecorder("")
	if err != nil || r != nil {
		t.Fatalf("NewRecorder(\"\") = %v, %v", r, err)
	}
	if err := r.WriteStats(fluid.Stats{}); err != nil {
		t.Error(err)
	}
	if err := r.WriteConfig(config.Default()); err != nil {
		t.Error(err)
	}
	if r.Dir() != "" || r.Close() != nil {
		t.Error("nil recorder should have no dir and close cleanly")
	}
}

func TestRecorderWritesRows(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	r, err := NewRecorder(dir)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}

	fs, err := fluid.New(10, 10, 1, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		fs.InsertDensity(5, 5, 1, 0, 0)
		fs.Update()
		if err := r.WriteStats(fs.Stats()); err != nil {
			t.Fatalf("WriteStats: %v", err)
		}
	}
	if err := r.WriteConfig(config.Default()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rows, err := ReadStats(filepath.Join(dir, "stats.csv"))
	if err != nil {
		t.Fatalf("ReadStats: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for i, row := range rows {
		if row.Step != i+1 {
			t.Errorf("row %d step = %d", i, row.Step)
		}
		if row.TotalDye <= 0 {
			t.Errorf("row %d total dye = %v", i, row.TotalDye)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot missing: %v", err)
	}
}
