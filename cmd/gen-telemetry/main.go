// Command gen-telemetry writes a synthetic sample telemetry dataset for
// development and demos. Output format follows the file extension
// (.json or .csv, optionally .gz).
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/solarviz/solarblog/pkg/telemetry"
)

func main() {
	var (
		out     = flag.String("out", "telemetry.json.gz", "output file (.json/.csv, optionally .gz)")
		date    = flag.String("date", time.Now().UTC().Format("2006-01-02"), "observation date (YYYY-MM-DD)")
		count   = flag.Int("count", 1440, "number of readings")
		dropout = flag.Float64("dropout", 0.02, "fraction of fields replaced by the missing-value sentinel")
		eventAt = flag.Int("event-at", -1, "reading index where a CME-like disturbance starts (-1 for quiet)")
		seed    = flag.Int64("seed", 1, "random seed")
	)
	flag.Parse()

	start, err := time.Parse("2006-01-02", *date)
	if err != nil {
		log.Fatalf("Bad -date: %v", err)
	}

	cfg := telemetry.DefaultGenerateConfig(start)
	cfg.Count = *count
	cfg.DropoutRate = *dropout
	cfg.EventAt = *eventAt
	cfg.Seed = *seed

	readings := telemetry.Generate(cfg)
	if err := telemetry.WriteFile(*out, readings); err != nil {
		log.Fatalf("Failed to write dataset: %v", err)
	}
	fmt.Printf("Wrote %d readings for %s to %s\n", len(readings), *date, *out)
}
