package telemetry

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFile_JSONGzipRoundtrip(t *testing.T) {
	start := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	cfg := DefaultGenerateConfig(start)
	cfg.Count = 50
	readings := Generate(cfg)

	path := filepath.Join(t.TempDir(), "day.json.gz")
	if err := WriteFile(path, readings); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != len(readings) {
		t.Fatalf("expected %d readings, got %d", len(readings), len(loaded))
	}
	if !loaded[0].Timestamp.Equal(readings[0].Timestamp) {
		t.Errorf("timestamp mismatch: %v vs %v", loaded[0].Timestamp, readings[0].Timestamp)
	}
	if loaded[10].ProtonBulkSpeed != readings[10].ProtonBulkSpeed {
		t.Errorf("value mismatch at index 10")
	}
}

func TestLoadFile_CSVRoundtrip(t *testing.T) {
	start := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	cfg := DefaultGenerateConfig(start)
	cfg.Count = 20
	cfg.DropoutRate = 0.3
	readings := Generate(cfg)

	path := filepath.Join(t.TempDir(), "day.csv")
	if err := WriteFile(path, readings); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 20 {
		t.Fatalf("expected 20 readings, got %d", len(loaded))
	}
	for i := range loaded {
		// Sentinel fields survive the round trip as invalid.
		if IsValid(readings[i].ProtonDensity) != IsValid(loaded[i].ProtonDensity) {
			t.Fatalf("validity changed at index %d", i)
		}
	}
}

func TestReadCSV_MissingCellsBecomeSentinel(t *testing.T) {
	csv := "timestamp,proton_bulk_speed,proton_density\n" +
		"2026-08-29T00:00:00Z,400.5,\n" +
		"2026-08-29T00:01:00Z,not-a-number,5.1\n"

	readings, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(readings) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(readings))
	}
	if readings[0].ProtonBulkSpeed != 400.5 {
		t.Errorf("expected parsed speed, got %v", readings[0].ProtonBulkSpeed)
	}
	if IsValid(readings[0].ProtonDensity) {
		t.Error("empty cell must become the sentinel")
	}
	if IsValid(readings[1].ProtonBulkSpeed) {
		t.Error("unparsable cell must become the sentinel")
	}
	// Columns absent from the file are sentinel too.
	if IsValid(readings[0].FPGATemp) {
		t.Error("absent column must become the sentinel")
	}
}

func TestLoadFile_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "day.xml")
	if err := WriteFile(path, nil); err == nil {
		t.Fatal("expected error for unsupported write format")
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for unsupported read format")
	}
}

func TestIsValid(t *testing.T) {
	cases := []struct {
		v    float64
		want bool
	}{
		{0, true},
		{-273, true},
		{Sentinel, false},
		{-2e30, false},
	}
	for _, c := range cases {
		if got := IsValid(c.v); got != c.want {
			t.Errorf("IsValid(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}
