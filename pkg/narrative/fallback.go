package narrative

import (
	"fmt"
	"strings"

	"github.com/solarviz/solarblog/pkg/telemetry"
	"github.com/solarviz/solarblog/pkg/types"
)

// FallbackNarrative builds a fully deterministic narrative from the summary
// alone. It is the recovery path for every generation-service failure, so it
// must always produce well-formed, non-empty text.
func FallbackNarrative(s *types.ObservationSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b,
		"On %s, the %s instrument recorded %d readings over %.1f hours of continuous solar-wind monitoring. ",
		s.Date, s.Instrument, s.TotalReadings, s.DurationHours)
	fmt.Fprintf(&b,
		"Overall conditions were %s, with %s proton density and %s proton flux.\n\n",
		s.ActivityLevel, s.DensityTier, s.ProtonFluxTier)

	if speed, ok := s.Parameters[telemetry.ParamProtonSpeed]; ok && speed.ValidReadings > 0 {
		fmt.Fprintf(&b,
			"The proton bulk speed averaged %.1f %s, ranging from %.1f to %.1f %s, and was %s across the window. ",
			speed.Mean, speed.Unit, speed.Min, speed.Max, speed.Unit, trendPhrase(speed.TrendDirection))
	}
	if density, ok := s.Parameters[telemetry.ParamProtonDensity]; ok && density.ValidReadings > 0 {
		fmt.Fprintf(&b,
			"Proton density held a mean of %.2f %s. ", density.Mean, density.Unit)
	}
	if s.AlphaProtonRatio > 0 {
		fmt.Fprintf(&b,
			"The alpha-to-proton density ratio stood at %.3f.", s.AlphaProtonRatio)
	}
	b.WriteString("\n\n")

	if temp, ok := s.Parameters[telemetry.ParamFPGATemp]; ok && temp.ValidReadings > 0 {
		fmt.Fprintf(&b,
			"Instrument health remained %s, with the FPGA temperature averaging %.1f %s.\n\n",
			s.TemperatureStatus, temp.Mean, temp.Unit)
	}

	total := s.AnomalyTotal()
	if total > 0 {
		fmt.Fprintf(&b,
			"Automated screening flagged %d anomalous readings (%d high, %d medium, %d low severity).\n\n",
			total, s.Anomalies.High, s.Anomalies.Medium, s.Anomalies.Low)
	} else {
		b.WriteString("Automated screening flagged no anomalous readings.\n\n")
	}

	if len(s.KeyEvents) > 0 {
		b.WriteString("Notable events from this window: ")
		b.WriteString(strings.Join(s.KeyEvents, "; "))
		b.WriteString(".\n\n")
	}

	fmt.Fprintf(&b,
		"Data quality for the day came in at %.1f%% completeness and %.1f%% reliability.",
		s.Quality.CompletenessPercent, s.Quality.ReliabilityPercent)

	return b.String()
}

func trendPhrase(t types.TrendDirection) string {
	switch t {
	case types.TrendIncreasing:
		return "climbing"
	case types.TrendDecreasing:
		return "easing"
	default:
		return "steady"
	}
}
