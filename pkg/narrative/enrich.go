package narrative

import (
	"fmt"
	"math"
	"strings"

	"github.com/solarviz/solarblog/pkg/telemetry"
	"github.com/solarviz/solarblog/pkg/types"
)

// wordsPerMinute is the reading-time divisor.
const wordsPerMinute = 200

// genericMentions maps loose phrases the generator tends to use onto the
// parameter whose exact figure should replace them.
var genericMentions = map[string]string{
	"the solar wind speed":       telemetry.ParamProtonSpeed,
	"solar wind speed":           telemetry.ParamProtonSpeed,
	"the proton density":         telemetry.ParamProtonDensity,
	"the particle density":       telemetry.ParamProtonDensity,
	"the instrument temperature": telemetry.ParamFPGATemp,
}

// EnrichContent substitutes generic parameter mentions with their precise
// measured values. Each phrase is annotated once; text already carrying
// figures next to the phrase is left alone.
func EnrichContent(content string, s *types.ObservationSummary) string {
	for phrase, key := range genericMentions {
		ps, ok := s.Parameters[key]
		if !ok || ps.ValidReadings == 0 {
			continue
		}
		idx := indexFold(content, phrase)
		if idx < 0 {
			continue
		}
		end := idx + len(phrase)
		if followedByFigure(content[end:]) {
			continue
		}
		exact := fmt.Sprintf("%s (%.1f %s on average)", content[idx:end], ps.Mean, ps.Unit)
		content = content[:idx] + exact + content[end:]
	}
	return content
}

// indexFold is a case-insensitive strings.Index.
func indexFold(s, substr string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(substr))
}

// followedByFigure reports whether the text right after a phrase already
// carries a number, e.g. "solar wind speed of 412 km/s".
func followedByFigure(rest string) bool {
	rest = strings.TrimLeft(rest, " ")
	for _, prefix := range []string{"of ", "at ", "around ", "near ", "(", "was ", "is "} {
		if strings.HasPrefix(rest, prefix) {
			rest = strings.TrimLeft(strings.TrimPrefix(rest, prefix), " ")
			break
		}
	}
	return len(rest) > 0 && rest[0] >= '0' && rest[0] <= '9'
}

// DeriveTitle picks a headline from the most severe applicable condition.
func DeriveTitle(s *types.ObservationSummary) string {
	switch {
	case s.TemperatureStatus == "critical":
		return fmt.Sprintf("Instrument Alert: Critical Temperatures During %s Observations", s.Date)
	case s.Anomalies.High > 0:
		return fmt.Sprintf("Solar Wind Watch: %d High-Severity Anomalies on %s", s.Anomalies.High, s.Date)
	case anyThresholdExceeded(s):
		return fmt.Sprintf("Elevated Solar Wind Conditions on %s", s.Date)
	case s.ActivityLevel == types.ActivityExtreme || s.ActivityLevel == types.ActivityElevated:
		return fmt.Sprintf("An Active Day in the Solar Wind: %s", s.Date)
	default:
		return fmt.Sprintf("A Quiet Day of Solar Wind Monitoring: %s", s.Date)
	}
}

func anyThresholdExceeded(s *types.ObservationSummary) bool {
	for _, ps := range s.Parameters {
		if ps.ThresholdExceeded {
			return true
		}
	}
	return false
}

// DeriveTags builds the artifact tag list.
func DeriveTags(s *types.ObservationSummary) []string {
	tags := []string{"solar-wind", "telemetry", strings.ToLower(s.Instrument)}
	tags = append(tags, string(s.ActivityLevel))
	if s.Anomalies.High > 0 {
		tags = append(tags, "anomalies")
	}
	if s.TemperatureStatus == "critical" {
		tags = append(tags, "instrument-health")
	}
	if anyThresholdExceeded(s) {
		tags = append(tags, "threshold-alert")
	}
	return tags
}

// ReadingTime estimates minutes to read, ceil(words/200), at least 1 for
// non-empty content.
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / wordsPerMinute))
}

// DeriveInsights builds the ordered key-insight list. Rules run in severity
// order; the "normal conditions" default applies only when none fire.
func DeriveInsights(s *types.ObservationSummary) []string {
	var insights []string

	if s.TemperatureStatus == "critical" {
		insights = append(insights, fmt.Sprintf(
			"Instrument temperature reached critical levels (%.1f °C average)",
			s.Parameters[telemetry.ParamFPGATemp].Mean))
	}
	if s.ProtonFluxTier == "high" {
		insights = append(insights, "Proton flux ran high throughout the observation window")
	}
	if s.Anomalies.High > 0 {
		insights = append(insights, fmt.Sprintf(
			"%d readings crossed the high-severity anomaly threshold", s.Anomalies.High))
	}
	for _, key := range telemetry.Parameters {
		ps := s.Parameters[key]
		if ps.ThresholdExceeded {
			insights = append(insights, fmt.Sprintf(
				"%s exceeded its alert threshold at the 95th percentile (%.1f %s)",
				parameterName(key), ps.Percentile95, ps.Unit))
		}
	}
	if len(insights) == 0 {
		insights = append(insights, "Solar wind conditions stayed within normal ranges")
	}
	return insights
}

// DeriveSummaryText builds the one-line abstract shown in listings.
func DeriveSummaryText(s *types.ObservationSummary) string {
	return fmt.Sprintf("%d readings over %.1f hours: %s solar wind, %s instrument temperatures, %d anomalies flagged.",
		s.TotalReadings, s.DurationHours, s.ActivityLevel, s.TemperatureStatus, s.AnomalyTotal())
}
