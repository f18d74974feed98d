// Package analysis reduces raw telemetry into per-parameter statistics,
// qualitative observation summaries, and pairwise correlations.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/solarviz/solarblog/pkg/telemetry"
	"github.com/solarviz/solarblog/pkg/types"
)

const (
	// trendFactor scales stdDev when deciding whether a half-to-half mean
	// shift counts as a trend. Tunable constant, not a statistical test.
	trendFactor = 0.1

	// anomalySigma is the z-score multiplier for per-parameter anomalies.
	anomalySigma = 2.0

	// Severity breakpoints on the anomaly score.
	severityHigh   = 0.7
	severityMedium = 0.3
)

// Instrument and channel identifiers for the sampled dataset.
const (
	Instrument = "SWIS"
	Channel    = "BLK"
)

// SummarizeValues computes a DataSummary over a raw value sequence.
// Sentinel, NaN, and infinite values are excluded from every calculation but
// still count toward TotalReadings. An all-invalid sequence yields a
// zero-filled summary with a stable trend; this never fails.
func SummarizeValues(values []float64, key, unit string, threshold float64, hasThreshold bool) types.DataSummary {
	s := types.DataSummary{
		Parameter:      key,
		Unit:           unit,
		TotalReadings:  len(values),
		TrendDirection: types.TrendStable,
		Threshold:      threshold,
		HasThreshold:   hasThreshold,
	}

	valid := make([]float64, 0, len(values))
	for _, v := range values {
		if telemetry.IsValid(v) {
			valid = append(valid, v)
		}
	}
	s.ValidReadings = len(valid)
	if len(valid) == 0 {
		return s
	}

	sorted := append([]float64(nil), valid...)
	sort.Float64s(sorted)

	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Mean = mean(valid)
	s.Median = median(sorted)
	s.StdDev = stdDevPop(valid, s.Mean)
	// Direct floor-index percentiles, no interpolation. Deliberate
	// simplification; downstream figures depend on these exact indices.
	s.Percentile5 = sorted[int(math.Floor(0.05*float64(len(sorted))))]
	s.Percentile95 = sorted[int(math.Floor(0.95*float64(len(sorted))))]

	s.TrendDirection = classifyTrend(valid, s.StdDev)

	for _, v := range valid {
		if math.Abs(v-s.Mean) > anomalySigma*s.StdDev {
			s.AnomalyCount++
		}
	}

	if hasThreshold && s.Percentile95 > threshold {
		s.ThresholdExceeded = true
	}
	return s
}

// SummarizeParameter looks up a registered parameter and summarizes it
// across a reading series.
func SummarizeParameter(readings []types.Reading, key string) (types.DataSummary, error) {
	info, ok := telemetry.Info(key)
	if !ok {
		return types.DataSummary{}, fmt.Errorf("unknown telemetry parameter: %s", key)
	}
	return SummarizeValues(telemetry.Values(readings, key), key, info.Unit, info.Threshold, info.HasThreshold), nil
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// median of an already sorted slice; even counts average the two middles.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// stdDevPop is the population standard deviation (divisor = count).
func stdDevPop(values []float64, mean float64) float64 {
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// classifyTrend splits the chronological sequence in half by index and
// compares half means. The shift must exceed trendFactor×stdDev to count.
func classifyTrend(valid []float64, stdDev float64) types.TrendDirection {
	if len(valid) < 2 {
		return types.TrendStable
	}
	mid := len(valid) / 2
	diff := mean(valid[mid:]) - mean(valid[:mid])
	if math.Abs(diff) <= trendFactor*stdDev {
		return types.TrendStable
	}
	if diff > 0 {
		return types.TrendIncreasing
	}
	return types.TrendDecreasing
}
