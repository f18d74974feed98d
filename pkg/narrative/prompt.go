// Package narrative turns observation summaries into daily blog posts: it
// builds the generation prompt, calls the remote backend under a deadline,
// falls back to a deterministic template, enriches the text, and writes
// through the cache and blog store.
package narrative

import (
	"fmt"
	"strings"

	"github.com/solarviz/solarblog/pkg/telemetry"
	"github.com/solarviz/solarblog/pkg/types"
)

// BuildPrompt assembles the structured generation prompt for a summary.
// Only aggregate figures are sent, never raw readings.
func BuildPrompt(s *types.ObservationSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are a science writer covering daily solar-wind observations from the %s instrument.

Write an engaging blog post for a general audience about the observations of %s.
Use the measurements below. Do not invent numbers, do not mention that you are an AI,
and do not use markdown headers.

OBSERVATION WINDOW:
- Date: %s
- Readings: %d over %.1f hours (channel %s)
- Solar wind activity: %s
- Proton density tier: %s, proton flux tier: %s
- Instrument temperature status: %s
- Data completeness: %.1f%%, reliability: %.1f%%

`,
		s.Instrument, s.Date, s.Date,
		s.TotalReadings, s.DurationHours, s.Channel,
		s.ActivityLevel, s.DensityTier, s.ProtonFluxTier, s.TemperatureStatus,
		s.Quality.CompletenessPercent, s.Quality.ReliabilityPercent)

	b.WriteString("PARAMETERS:\n")
	for _, key := range telemetry.Parameters {
		ps, ok := s.Parameters[key]
		if !ok || ps.ValidReadings == 0 {
			continue
		}
		fmt.Fprintf(&b, "- %s: mean %.2f %s, range %.2f to %.2f %s, trend %s",
			parameterName(key), ps.Mean, ps.Unit, ps.Min, ps.Max, ps.Unit, ps.TrendDirection)
		if ps.AnomalyCount > 0 {
			fmt.Fprintf(&b, ", %d anomalous readings", ps.AnomalyCount)
		}
		b.WriteString("\n")
	}

	if len(s.KeyEvents) > 0 {
		b.WriteString("\nKEY EVENTS:\n")
		for _, ev := range s.KeyEvents {
			fmt.Fprintf(&b, "- %s\n", ev)
		}
	} else {
		b.WriteString("\nKEY EVENTS: none, a quiet day.\n")
	}

	b.WriteString("\nWrite 3-5 paragraphs of plain prose:")
	return b.String()
}

func parameterName(key string) string {
	if info, ok := telemetry.Info(key); ok {
		return info.Name
	}
	return key
}
