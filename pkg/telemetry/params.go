// Package telemetry is the boundary to the telemetry source: it defines the
// fixed parameter set, the missing-value sentinel, and sample dataset loading.
package telemetry

import (
	"math"

	"github.com/solarviz/solarblog/pkg/types"
)

// Sentinel marks a reading field that was not sampled (CDF fill value).
const Sentinel = -1.0e31

// sentinelCutoff guards against float drift through encode/decode round trips.
const sentinelCutoff = -1.0e30

// IsValid reports whether a sampled value is usable for statistics.
func IsValid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > sentinelCutoff
}

// Parameter keys, fixed by telemetry source convention.
const (
	ParamProtonSpeed   = "proton_bulk_speed"
	ParamProtonDensity = "proton_density"
	ParamProtonThermal = "proton_thermal"
	ParamAlphaSpeed    = "alpha_bulk_speed"
	ParamAlphaDensity  = "alpha_density"
	ParamFPGATemp      = "fpga_temp_mon"
	ParamScore         = "score"
)

// ParameterInfo describes one telemetry parameter: display name, unit, and an
// optional alert threshold checked against the 95th percentile.
type ParameterInfo struct {
	Name         string
	Unit         string
	Threshold    float64
	HasThreshold bool
	Value        func(types.Reading) float64
}

// Parameters is the immutable registry of summarized parameters. Order is the
// canonical order for correlation matrices and prompt sections.
var Parameters = []string{
	ParamProtonSpeed,
	ParamProtonDensity,
	ParamProtonThermal,
	ParamAlphaSpeed,
	ParamAlphaDensity,
	ParamFPGATemp,
	ParamScore,
}

var registry = map[string]ParameterInfo{
	ParamProtonSpeed: {
		Name: "Proton Bulk Speed", Unit: "km/s",
		Threshold: 700, HasThreshold: true,
		Value: func(r types.Reading) float64 { return r.ProtonBulkSpeed },
	},
	ParamProtonDensity: {
		Name: "Proton Density", Unit: "n/cm³",
		Threshold: 10, HasThreshold: true,
		Value: func(r types.Reading) float64 { return r.ProtonDensity },
	},
	ParamProtonThermal: {
		Name: "Proton Thermal Speed", Unit: "km/s",
		Value: func(r types.Reading) float64 { return r.ProtonThermal },
	},
	ParamAlphaSpeed: {
		Name: "Alpha Bulk Speed", Unit: "km/s",
		Value: func(r types.Reading) float64 { return r.AlphaBulkSpeed },
	},
	ParamAlphaDensity: {
		Name: "Alpha Density", Unit: "n/cm³",
		Value: func(r types.Reading) float64 { return r.AlphaDensity },
	},
	ParamFPGATemp: {
		Name: "FPGA Temperature", Unit: "°C",
		Threshold: 60, HasThreshold: true,
		Value: func(r types.Reading) float64 { return r.FPGATemp },
	},
	ParamScore: {
		Name: "Anomaly Score", Unit: "",
		Value: func(r types.Reading) float64 { return r.Score },
	},
}

// Info returns the registry entry for a parameter key.
func Info(key string) (ParameterInfo, bool) {
	info, ok := registry[key]
	return info, ok
}

// Values extracts one parameter's raw value sequence from a reading series,
// preserving order. Sentinel and invalid values are NOT filtered here.
func Values(readings []types.Reading, key string) []float64 {
	info, ok := registry[key]
	if !ok {
		return nil
	}
	out := make([]float64, len(readings))
	for i, r := range readings {
		out[i] = info.Value(r)
	}
	return out
}
