package analysis

import (
	"math"
	"sort"

	"github.com/solarviz/solarblog/pkg/telemetry"
	"github.com/solarviz/solarblog/pkg/types"
)

const (
	// Minimum |r| for a pair to be reported at all.
	correlationCutoff = 0.1

	significanceHighMin   = 0.7
	significanceMediumMin = 0.4
)

// CorrelationMatrix computes the pairwise Pearson matrix for the given
// parameter keys over a reading series. The diagonal is fixed at 1.0.
// A pair is correlated only over indices where both values are valid.
func CorrelationMatrix(readings []types.Reading, keys []string) [][]float64 {
	series := make([][]float64, len(keys))
	for i, key := range keys {
		series[i] = telemetry.Values(readings, key)
	}

	matrix := make([][]float64, len(keys))
	for i := range matrix {
		matrix[i] = make([]float64, len(keys))
		matrix[i][i] = 1.0
	}
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			r := pearson(series[i], series[j])
			matrix[i][j] = r
			matrix[j][i] = r
		}
	}
	return matrix
}

// pearson computes r = (nΣxy − ΣxΣy) / sqrt((nΣx²−(Σx)²)(nΣy²−(Σy)²)),
// returning 0 when the denominator vanishes (constant series guard).
func pearson(xs, ys []float64) float64 {
	var n, sumX, sumY, sumXY, sumXX, sumYY float64
	for i := 0; i < len(xs) && i < len(ys); i++ {
		x, y := xs[i], ys[i]
		if !telemetry.IsValid(x) || !telemetry.IsValid(y) {
			continue
		}
		n++
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
		sumYY += y * y
	}
	if n == 0 {
		return 0
	}

	den := math.Sqrt((n*sumXX - sumX*sumX) * (n*sumYY - sumY*sumY))
	if den == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / den
}

// SignificantPairs extracts off-diagonal correlations above the cutoff,
// tagged by strength and sorted by descending |r|.
func SignificantPairs(matrix [][]float64, keys []string) []types.CorrelationEntry {
	var pairs []types.CorrelationEntry
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys) && j < len(matrix[i]); j++ {
			r := matrix[i][j]
			if math.Abs(r) <= correlationCutoff {
				continue
			}
			pairs = append(pairs, types.CorrelationEntry{
				ParameterA:   keys[i],
				ParameterB:   keys[j],
				Coefficient:  r,
				Significance: significance(r),
			})
		}
	}
	sort.Slice(pairs, func(a, b int) bool {
		return math.Abs(pairs[a].Coefficient) > math.Abs(pairs[b].Coefficient)
	})
	return pairs
}

func significance(r float64) types.Significance {
	abs := math.Abs(r)
	switch {
	case abs > significanceHighMin:
		return types.SignificanceHigh
	case abs > significanceMediumMin:
		return types.SignificanceMedium
	default:
		return types.SignificanceLow
	}
}
