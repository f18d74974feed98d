package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/solarviz/solarblog/pkg/telemetry"
	"github.com/solarviz/solarblog/pkg/types"
)

func correlationReadings(n int, speed func(i int) float64, density func(i int) float64) []types.Reading {
	start := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	readings := make([]types.Reading, n)
	for i := range readings {
		s := speed(i)
		readings[i] = types.Reading{
			Timestamp:       start.Add(time.Duration(i) * time.Minute),
			ProtonBulkSpeed: s,
			ProtonDensity:   density(i),
			AlphaBulkSpeed:  s, // identical series, r must be 1
			ProtonThermal:   35,
			AlphaDensity:    0.2,
			FPGATemp:        38,
			Score:           0,
		}
	}
	return readings
}

func TestCorrelationMatrix_SelfAndIdentical(t *testing.T) {
	readings := correlationReadings(50,
		func(i int) float64 { return 380 + 3*float64(i) },
		func(i int) float64 { return 5 + 0.1*float64(i) })
	keys := []string{telemetry.ParamProtonSpeed, telemetry.ParamAlphaSpeed}

	matrix := CorrelationMatrix(readings, keys)

	if matrix[0][0] != 1.0 || matrix[1][1] != 1.0 {
		t.Fatalf("diagonal must be 1.0, got %v / %v", matrix[0][0], matrix[1][1])
	}
	if math.Abs(matrix[0][1]-1.0) > 1e-9 {
		t.Fatalf("identical series must correlate at 1.0, got %v", matrix[0][1])
	}
	if matrix[0][1] != matrix[1][0] {
		t.Errorf("matrix must be symmetric")
	}
}

func TestCorrelationMatrix_ConstantSeriesGuard(t *testing.T) {
	readings := correlationReadings(50,
		func(i int) float64 { return 380 + 3*float64(i) },
		func(i int) float64 { return 5 }) // constant, denominator vanishes
	keys := []string{telemetry.ParamProtonSpeed, telemetry.ParamProtonDensity}

	matrix := CorrelationMatrix(readings, keys)

	if matrix[0][1] != 0 {
		t.Fatalf("correlation with a constant series must be 0, got %v", matrix[0][1])
	}
}

func TestCorrelationMatrix_SkipsInvalidPairs(t *testing.T) {
	readings := correlationReadings(50,
		func(i int) float64 { return 380 + 3*float64(i) },
		func(i int) float64 { return 5 + 0.1*float64(i) })
	// Knock out a few samples on one side only.
	readings[3].ProtonDensity = telemetry.Sentinel
	readings[17].ProtonDensity = math.NaN()
	keys := []string{telemetry.ParamProtonSpeed, telemetry.ParamProtonDensity}

	matrix := CorrelationMatrix(readings, keys)

	// Both series are linear in i, so the surviving pairs still correlate at 1.
	if math.Abs(matrix[0][1]-1.0) > 1e-9 {
		t.Fatalf("expected r=1 over valid pairs, got %v", matrix[0][1])
	}
}

func TestSignificantPairs(t *testing.T) {
	matrix := [][]float64{
		{1.0, 0.85, -0.5, 0.05},
		{0.85, 1.0, 0.2, 0.0},
		{-0.5, 0.2, 1.0, 0.3},
		{0.05, 0.0, 0.3, 1.0},
	}
	keys := []string{"a", "b", "c", "d"}

	pairs := SignificantPairs(matrix, keys)

	// 0.05 and 0.0 fall under the cutoff; four pairs survive.
	if len(pairs) != 4 {
		t.Fatalf("expected 4 significant pairs, got %d: %v", len(pairs), pairs)
	}
	if pairs[0].Coefficient != 0.85 || pairs[0].Significance != types.SignificanceHigh {
		t.Errorf("expected strongest pair first with high significance, got %+v", pairs[0])
	}
	if pairs[1].Coefficient != -0.5 || pairs[1].Significance != types.SignificanceMedium {
		t.Errorf("expected |r|=0.5 second with medium significance, got %+v", pairs[1])
	}
	for i := 1; i < len(pairs); i++ {
		if math.Abs(pairs[i].Coefficient) > math.Abs(pairs[i-1].Coefficient) {
			t.Fatalf("pairs not sorted by descending |r|: %v", pairs)
		}
	}
	for _, p := range pairs {
		if p.ParameterA == p.ParameterB {
			t.Errorf("self-pair leaked into results: %+v", p)
		}
	}
}
