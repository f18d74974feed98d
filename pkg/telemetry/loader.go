package telemetry

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/solarviz/solarblog/pkg/types"
)

// LoadFile reads a sample telemetry dataset from a JSON or CSV file.
// Files ending in .gz are transparently decompressed.
func LoadFile(path string) ([]types.Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open telemetry file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	name := path
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip telemetry file: %w", err)
		}
		defer gz.Close()
		r = gz
		name = strings.TrimSuffix(name, ".gz")
	}

	switch {
	case strings.HasSuffix(name, ".json"):
		return ReadJSON(r)
	case strings.HasSuffix(name, ".csv"):
		return ReadCSV(r)
	default:
		return nil, fmt.Errorf("unsupported telemetry file format: %s", path)
	}
}

// ReadJSON decodes a JSON array of readings.
func ReadJSON(r io.Reader) ([]types.Reading, error) {
	var readings []types.Reading
	if err := json.NewDecoder(r).Decode(&readings); err != nil {
		return nil, fmt.Errorf("decode telemetry JSON: %w", err)
	}
	return readings, nil
}

// csvColumns is the fixed CSV header order for sample datasets.
var csvColumns = []string{
	"timestamp",
	ParamProtonSpeed, ParamProtonDensity, ParamProtonThermal,
	ParamAlphaSpeed, ParamAlphaDensity, ParamFPGATemp, ParamScore,
	"spacecraft_xpos", "spacecraft_ypos", "spacecraft_zpos",
}

// ReadCSV parses a headered CSV of readings. Missing or unparsable numeric
// cells become the sentinel rather than failing the whole row.
func ReadCSV(r io.Reader) ([]types.Reading, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read telemetry CSV header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	if _, ok := col["timestamp"]; !ok {
		return nil, fmt.Errorf("telemetry CSV missing timestamp column")
	}

	cell := func(row []string, name string) float64 {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return Sentinel
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return Sentinel
		}
		return v
	}

	var readings []types.Reading
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read telemetry CSV row: %w", err)
		}

		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(row[col["timestamp"]]))
		if err != nil {
			return nil, fmt.Errorf("parse telemetry timestamp %q: %w", row[col["timestamp"]], err)
		}

		readings = append(readings, types.Reading{
			Timestamp:       ts,
			ProtonBulkSpeed: cell(row, ParamProtonSpeed),
			ProtonDensity:   cell(row, ParamProtonDensity),
			ProtonThermal:   cell(row, ParamProtonThermal),
			AlphaBulkSpeed:  cell(row, ParamAlphaSpeed),
			AlphaDensity:    cell(row, ParamAlphaDensity),
			FPGATemp:        cell(row, ParamFPGATemp),
			Score:           cell(row, ParamScore),
			XPos:            cell(row, "spacecraft_xpos"),
			YPos:            cell(row, "spacecraft_ypos"),
			ZPos:            cell(row, "spacecraft_zpos"),
		})
	}
	return readings, nil
}

// WriteCSV writes readings in the fixed sample-dataset column order.
func WriteCSV(w io.Writer, readings []types.Reading) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}

	fmtF := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, r := range readings {
		row := []string{
			r.Timestamp.UTC().Format(time.RFC3339),
			fmtF(r.ProtonBulkSpeed), fmtF(r.ProtonDensity), fmtF(r.ProtonThermal),
			fmtF(r.AlphaBulkSpeed), fmtF(r.AlphaDensity), fmtF(r.FPGATemp), fmtF(r.Score),
			fmtF(r.XPos), fmtF(r.YPos), fmtF(r.ZPos),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes readings as JSON or CSV, gzipping when path ends in .gz.
func WriteFile(path string, readings []types.Reading) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create telemetry file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	name := path
	if strings.HasSuffix(name, ".gz") {
		gz := gzip.NewWriter(f)
		defer gz.Close()
		w = gz
		name = strings.TrimSuffix(name, ".gz")
	}

	switch {
	case strings.HasSuffix(name, ".json"):
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(readings)
	case strings.HasSuffix(name, ".csv"):
		return WriteCSV(w, readings)
	default:
		return fmt.Errorf("unsupported telemetry file format: %s", path)
	}
}
