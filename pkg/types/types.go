// Package types defines core types for the solarblog analytics pipeline.
package types

import "time"

// TrendDirection classifies how a parameter evolved across an observation window.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// Significance ranks the strength of a pairwise correlation.
type Significance string

const (
	SignificanceHigh   Significance = "high"   // |r| > 0.7
	SignificanceMedium Significance = "medium" // |r| > 0.4
	SignificanceLow    Significance = "low"
)

// GenerationStatus tracks where a narrative request is in its lifecycle.
type GenerationStatus string

const (
	StatusValid      GenerationStatus = "valid"      // Served from cache
	StatusChecking   GenerationStatus = "checking"   // Cache validity being evaluated
	StatusGenerating GenerationStatus = "generating" // Remote call or fallback in flight
	StatusInvalid    GenerationStatus = "invalid"    // No usable narrative produced
)

// ActivityLevel is a qualitative tier for solar-wind conditions.
type ActivityLevel string

const (
	ActivityQuiet    ActivityLevel = "quiet"
	ActivityModerate ActivityLevel = "moderate"
	ActivityElevated ActivityLevel = "elevated"
	ActivityExtreme  ActivityLevel = "extreme"
)

// Reading is one telemetry sample: a flat record of named numeric fields.
// Fields not sampled carry the telemetry sentinel value.
type Reading struct {
	Timestamp       time.Time `json:"timestamp"`
	ProtonBulkSpeed float64   `json:"proton_bulk_speed"` // km/s
	ProtonDensity   float64   `json:"proton_density"`    // n/cm³
	ProtonThermal   float64   `json:"proton_thermal"`    // km/s
	AlphaBulkSpeed  float64   `json:"alpha_bulk_speed"`  // km/s
	AlphaDensity    float64   `json:"alpha_density"`     // n/cm³
	FPGATemp        float64   `json:"fpga_temp_mon"`     // °C
	Score           float64   `json:"score"`             // anomaly score 0..1
	XPos            float64   `json:"spacecraft_xpos"`   // km
	YPos            float64   `json:"spacecraft_ypos"`   // km
	ZPos            float64   `json:"spacecraft_zpos"`   // km
}

// DataSummary holds per-parameter statistics for one analysis run.
type DataSummary struct {
	Parameter         string         `json:"parameter"`
	Min               float64        `json:"min"`
	Max               float64        `json:"max"`
	Mean              float64        `json:"mean"`
	Median            float64        `json:"median"`
	StdDev            float64        `json:"std_dev"`
	Percentile5       float64        `json:"percentile_5"`
	Percentile95      float64        `json:"percentile_95"`
	TotalReadings     int            `json:"total_readings"`
	ValidReadings     int            `json:"valid_readings"`
	AnomalyCount      int            `json:"anomaly_count"`
	TrendDirection    TrendDirection `json:"trend_direction"`
	Unit              string         `json:"unit"`
	Threshold         float64        `json:"threshold,omitempty"`
	HasThreshold      bool           `json:"has_threshold"`
	ThresholdExceeded bool           `json:"threshold_exceeded"`
}

// SeverityBuckets counts anomalous readings by score range.
type SeverityBuckets struct {
	High   int `json:"high"`   // score > 0.7
	Medium int `json:"medium"` // 0.3 < score ≤ 0.7
	Low    int `json:"low"`    // score ≤ 0.3
}

// DataQuality summarizes how usable the observation window's data was.
type DataQuality struct {
	CompletenessPercent float64 `json:"completeness_percent"` // valid/(total×params)×100
	ReliabilityPercent  float64 `json:"reliability_percent"`  // 100 − anomalies/total×100, floored at 0
}

// Position is the spacecraft location taken from the last valid reading.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ObservationSummary aggregates one analysis run over a day of telemetry.
type ObservationSummary struct {
	Date             string                 `json:"date"` // YYYY-MM-DD, natural key
	Instrument       string                 `json:"instrument"`
	Channel          string                 `json:"channel"`
	TotalReadings    int                    `json:"total_readings"`
	DurationHours    float64                `json:"duration_hours"`
	Parameters       map[string]DataSummary `json:"parameters"`
	LastPosition     Position               `json:"last_position"`
	AlphaProtonRatio float64                `json:"alpha_proton_ratio"`

	// Qualitative tiers derived from fixed breakpoints.
	ActivityLevel     ActivityLevel `json:"activity_level"`     // from mean proton speed
	DensityTier       string        `json:"density_tier"`       // low/moderate/high
	ProtonFluxTier    string        `json:"proton_flux_tier"`   // low/moderate/high
	TemperatureStatus string        `json:"temperature_status"` // nominal/elevated/critical

	Anomalies SeverityBuckets `json:"anomalies"`
	Quality   DataQuality     `json:"quality"`
	KeyEvents []string        `json:"key_events"`
}

// AnomalyTotal is the number of anomalous readings across all severity buckets.
func (s *ObservationSummary) AnomalyTotal() int {
	return s.Anomalies.High + s.Anomalies.Medium + s.Anomalies.Low
}

// CorrelationEntry is one significant pairwise relationship between parameters.
type CorrelationEntry struct {
	ParameterA   string       `json:"parameter_a"`
	ParameterB   string       `json:"parameter_b"`
	Coefficient  float64      `json:"coefficient"` // Pearson r in [-1, 1]
	Significance Significance `json:"significance"`
}

// CachedNarrative is a persisted narrative body owned by the cache manager.
type CachedNarrative struct {
	Content             string    `json:"content"`
	GeneratedAt         time.Time `json:"generated_at"`
	DataFingerprint     string    `json:"data_fingerprint"`
	Version             int       `json:"version"`
	SourceSummaryDigest string    `json:"source_summary_digest"`
}

// CacheEntryMeta is the bookkeeping record stored alongside each cache entry.
type CacheEntryMeta struct {
	SizeBytes   int       `json:"size_bytes"`
	Checksum    string    `json:"checksum"`
	GeneratedAt time.Time `json:"generated_at"`
}

// BlogPost is the fully derived narrative artifact for one observation date.
type BlogPost struct {
	ID                 string             `json:"id"`
	Title              string             `json:"title"`
	Content            string             `json:"content"`
	SummaryText        string             `json:"summary_text"`
	Date               string             `json:"date"` // YYYY-MM-DD
	Tags               []string           `json:"tags"`
	ReadingTimeMinutes int                `json:"reading_time_minutes"`
	KeyInsights        []string           `json:"key_insights"`
	Technical          ObservationSummary `json:"technical_snapshot"`
	AIGenerated        bool               `json:"ai_generated"` // false when the fallback template authored it
	CreatedAt          time.Time          `json:"created_at"`
}
