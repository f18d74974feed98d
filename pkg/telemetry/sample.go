package telemetry

import (
	"math"
	"math/rand"
	"time"

	"github.com/solarviz/solarblog/pkg/types"
)

// GenerateConfig controls synthetic sample dataset generation.
type GenerateConfig struct {
	Start       time.Time
	Count       int           // number of readings
	Interval    time.Duration // spacing between readings
	DropoutRate float64       // fraction of fields replaced by the sentinel
	EventAt     int           // index where a disturbance starts; -1 for none
	Seed        int64
}

// DefaultGenerateConfig returns a quiet day of per-minute readings.
func DefaultGenerateConfig(start time.Time) GenerateConfig {
	return GenerateConfig{
		Start:       start,
		Count:       1440,
		Interval:    time.Minute,
		DropoutRate: 0.02,
		EventAt:     -1,
		Seed:        1,
	}
}

// Generate produces a synthetic reading series resembling quiet solar wind,
// with an optional CME-like disturbance after EventAt.
func Generate(cfg GenerateConfig) []types.Reading {
	if cfg.Count <= 0 {
		return nil
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	readings := make([]types.Reading, cfg.Count)
	for i := range readings {
		t := cfg.Start.Add(time.Duration(i) * cfg.Interval)

		speed := 380 + 30*math.Sin(float64(i)/180) + rng.NormFloat64()*12
		density := 5 + math.Sin(float64(i)/240) + rng.NormFloat64()*0.6
		thermal := 35 + rng.NormFloat64()*4
		temp := 38 + 3*math.Sin(float64(i)/300) + rng.NormFloat64()*1.5
		score := math.Abs(rng.NormFloat64()) * 0.08

		if cfg.EventAt >= 0 && i >= cfg.EventAt {
			// Disturbance: speed and density jump, anomaly score spikes.
			ramp := math.Min(1, float64(i-cfg.EventAt)/60)
			speed += 250 * ramp
			density += 8 * ramp
			temp += 15 * ramp
			score = math.Min(1, score+0.75*ramp)
		}

		r := types.Reading{
			Timestamp:       t,
			ProtonBulkSpeed: speed,
			ProtonDensity:   math.Max(0.1, density),
			ProtonThermal:   thermal,
			AlphaBulkSpeed:  speed * (0.96 + rng.Float64()*0.06),
			AlphaDensity:    math.Max(0.01, density*0.04+rng.NormFloat64()*0.02),
			FPGATemp:        temp,
			Score:           score,
			XPos:            1.49e6 + float64(i)*2,
			YPos:            -2.3e5 + float64(i),
			ZPos:            1.1e4,
		}

		if cfg.DropoutRate > 0 {
			if rng.Float64() < cfg.DropoutRate {
				r.ProtonBulkSpeed = Sentinel
			}
			if rng.Float64() < cfg.DropoutRate {
				r.ProtonDensity = Sentinel
			}
			if rng.Float64() < cfg.DropoutRate {
				r.AlphaDensity = Sentinel
			}
		}
		readings[i] = r
	}
	return readings
}
