package analysis

import (
	"fmt"
	"math"

	"github.com/solarviz/solarblog/pkg/telemetry"
	"github.com/solarviz/solarblog/pkg/types"
)

// Qualitative tier breakpoints. Fixed configuration, kept in one place so
// they never scatter as literals across call sites.
const (
	speedQuietMax    = 350.0 // km/s
	speedModerateMax = 500.0
	speedElevatedMax = 700.0

	densityLowMax      = 3.0 // n/cm³
	densityModerateMax = 10.0

	fluxLowMax      = 1500.0 // density × speed proxy
	fluxModerateMax = 5000.0

	tempNominalMax  = 40.0 // °C
	tempElevatedMax = 60.0
)

// Summarize aggregates a day of readings into an ObservationSummary.
// The date string is the summary's natural key (YYYY-MM-DD).
func Summarize(date string, readings []types.Reading) *types.ObservationSummary {
	s := &types.ObservationSummary{
		Date:       date,
		Instrument: Instrument,
		Channel:    Channel,
		Parameters: make(map[string]types.DataSummary, len(telemetry.Parameters)),
	}
	s.TotalReadings = len(readings)
	if len(readings) > 1 {
		s.DurationHours = readings[len(readings)-1].Timestamp.Sub(readings[0].Timestamp).Hours()
	}

	validTotal := 0
	for _, key := range telemetry.Parameters {
		ps, err := SummarizeParameter(readings, key)
		if err != nil {
			continue
		}
		s.Parameters[key] = ps
		validTotal += ps.ValidReadings
	}

	s.LastPosition = lastValidPosition(readings)
	s.Anomalies = bucketSeverities(readings)

	protonMean := s.Parameters[telemetry.ParamProtonDensity].Mean
	alphaMean := s.Parameters[telemetry.ParamAlphaDensity].Mean
	if protonMean > 0 {
		s.AlphaProtonRatio = alphaMean / protonMean
	}

	speedMean := s.Parameters[telemetry.ParamProtonSpeed].Mean
	s.ActivityLevel = activityTier(speedMean)
	s.DensityTier = densityTier(protonMean)
	s.ProtonFluxTier = fluxTier(protonMean * speedMean)
	s.TemperatureStatus = temperatureStatus(s.Parameters[telemetry.ParamFPGATemp].Mean)

	if s.TotalReadings > 0 {
		s.Quality.CompletenessPercent = float64(validTotal) /
			(float64(s.TotalReadings) * float64(len(telemetry.Parameters))) * 100
		s.Quality.ReliabilityPercent = math.Max(0,
			100-float64(s.AnomalyTotal())/float64(s.TotalReadings)*100)
	}

	s.KeyEvents = keyEvents(s)
	return s
}

func lastValidPosition(readings []types.Reading) types.Position {
	for i := len(readings) - 1; i >= 0; i-- {
		r := readings[i]
		if telemetry.IsValid(r.XPos) && telemetry.IsValid(r.YPos) && telemetry.IsValid(r.ZPos) {
			return types.Position{X: r.XPos, Y: r.YPos, Z: r.ZPos}
		}
	}
	return types.Position{}
}

// bucketSeverities classifies anomalous readings by score range. A reading is
// an anomaly event when its score is valid and above zero; quiet readings
// (score = 0) contribute to no bucket.
func bucketSeverities(readings []types.Reading) types.SeverityBuckets {
	var b types.SeverityBuckets
	for _, r := range readings {
		if !telemetry.IsValid(r.Score) || r.Score <= 0 {
			continue
		}
		switch {
		case r.Score > severityHigh:
			b.High++
		case r.Score > severityMedium:
			b.Medium++
		default:
			b.Low++
		}
	}
	return b
}

func activityTier(speed float64) types.ActivityLevel {
	switch {
	case speed < speedQuietMax:
		return types.ActivityQuiet
	case speed < speedModerateMax:
		return types.ActivityModerate
	case speed < speedElevatedMax:
		return types.ActivityElevated
	default:
		return types.ActivityExtreme
	}
}

func densityTier(density float64) string {
	switch {
	case density < densityLowMax:
		return "low"
	case density < densityModerateMax:
		return "moderate"
	default:
		return "high"
	}
}

func fluxTier(flux float64) string {
	switch {
	case flux < fluxLowMax:
		return "low"
	case flux < fluxModerateMax:
		return "moderate"
	default:
		return "high"
	}
}

func temperatureStatus(temp float64) string {
	switch {
	case temp < tempNominalMax:
		return "nominal"
	case temp < tempElevatedMax:
		return "elevated"
	default:
		return "critical"
	}
}

// keyEvents assembles the free-text event list, checked in severity order.
func keyEvents(s *types.ObservationSummary) []string {
	var events []string

	if s.TemperatureStatus == "critical" {
		events = append(events, fmt.Sprintf(
			"Critical instrument temperature: FPGA averaged %.1f °C",
			s.Parameters[telemetry.ParamFPGATemp].Mean))
	}
	if s.Anomalies.High > 0 {
		events = append(events, fmt.Sprintf(
			"%d high-severity anomaly readings detected", s.Anomalies.High))
	}
	for _, key := range telemetry.Parameters {
		ps := s.Parameters[key]
		if ps.ThresholdExceeded {
			events = append(events, fmt.Sprintf(
				"%s exceeded its alert threshold (p95 %.1f %s > %.1f %s)",
				parameterName(key), ps.Percentile95, ps.Unit, ps.Threshold, ps.Unit))
		}
	}
	if s.ProtonFluxTier == "high" {
		events = append(events, "High proton flux conditions observed")
	}
	return events
}

func parameterName(key string) string {
	if info, ok := telemetry.Info(key); ok {
		return info.Name
	}
	return key
}
