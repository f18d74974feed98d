// Command solarblog runs the full analytics pipeline on a sample telemetry
// dataset and prints the daily narrative. It stands in for the presentation
// layer during development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/solarviz/solarblog/pkg/analysis"
	"github.com/solarviz/solarblog/pkg/blog"
	"github.com/solarviz/solarblog/pkg/cache"
	"github.com/solarviz/solarblog/pkg/llm"
	"github.com/solarviz/solarblog/pkg/narrative"
	"github.com/solarviz/solarblog/pkg/store"
	"github.com/solarviz/solarblog/pkg/telemetry"
	"github.com/solarviz/solarblog/pkg/types"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	var (
		input    = flag.String("input", "", "telemetry dataset (.json/.csv, optionally .gz); synthetic data when empty")
		dataPath = flag.String("data", "./data", "persistent store directory")
		date     = flag.String("date", time.Now().UTC().Format("2006-01-02"), "observation date (YYYY-MM-DD)")
		force    = flag.Bool("force", false, "invalidate the cache and regenerate")
		offline  = flag.Bool("offline", false, "skip the generation service, use the template narrative")
	)
	flag.Parse()

	ctx := context.Background()

	readings, err := loadReadings(*input, *date)
	if err != nil {
		log.Fatalf("Failed to load telemetry: %v", err)
	}
	fmt.Printf("=== Solarblog Daily Pipeline ===\n\n")
	fmt.Printf("Loaded %d readings for %s\n", len(readings), *date)

	summary := analysis.Summarize(*date, readings)
	printSummary(summary)

	matrix := analysis.CorrelationMatrix(readings, telemetry.Parameters)
	pairs := analysis.SignificantPairs(matrix, telemetry.Parameters)
	if len(pairs) > 0 {
		fmt.Println("Significant correlations:")
		for _, p := range pairs {
			fmt.Printf("  %-18s ↔ %-18s r=%+.3f (%s)\n",
				p.ParameterA, p.ParameterB, p.Coefficient, p.Significance)
		}
		fmt.Println()
	}

	kv, err := store.NewFileStore(*dataPath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	cacheMgr := cache.New(kv, cache.DefaultConfig())
	blogStore := blog.New(kv)

	var gen llm.Generator
	if !*offline {
		gemini, err := llm.NewGeminiGenerator(ctx, llm.DefaultGeminiConfig())
		if err != nil {
			log.Printf("Generation service unavailable, using template narrative: %v", err)
		} else {
			fmt.Printf("Gemini backend initialized (model: %s)\n\n", gemini.Model())
			gen = gemini
		}
	}

	orch := narrative.New(cacheMgr, blogStore, gen, narrative.DefaultConfig())

	var result *narrative.Result
	if *force {
		result, err = orch.Regenerate(ctx, summary)
	} else {
		result, err = orch.Generate(ctx, summary)
	}
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}

	source := "template"
	if result.AIGenerated {
		source = "generated"
	}
	if result.FromCache {
		source = "cached"
	}
	title := "Daily Narrative"
	if result.Post != nil {
		title = result.Post.Title
	}
	fmt.Printf("--- %s (%s) ---\n\n", title, source)
	fmt.Println(result.Content)
	fmt.Println()
	if result.Post != nil {
		for _, insight := range result.Post.KeyInsights {
			fmt.Printf("  • %s\n", insight)
		}
		fmt.Printf("\nTags: %v | %d min read\n", result.Post.Tags, result.Post.ReadingTimeMinutes)
	}

	stats := cacheMgr.GetStats()
	fmt.Printf("Cache: %d entries, %d bytes\n", stats.Count, stats.TotalSize)
	bstats := blogStore.Stats()
	fmt.Printf("Blog:  %d posts (%s … %s)\n", bstats.PostCount, bstats.OldestDate, bstats.NewestDate)
}

func loadReadings(input, date string) ([]types.Reading, error) {
	if input != "" {
		return telemetry.LoadFile(input)
	}
	start, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("bad -date: %w", err)
	}
	cfg := telemetry.DefaultGenerateConfig(start)
	cfg.EventAt = 900 // synthetic disturbance in the afternoon
	return telemetry.Generate(cfg), nil
}

func printSummary(s *types.ObservationSummary) {
	fmt.Printf("Activity %s | density %s | flux %s | temperature %s\n",
		s.ActivityLevel, s.DensityTier, s.ProtonFluxTier, s.TemperatureStatus)
	fmt.Printf("Anomalies: %d high / %d medium / %d low | quality %.1f%% / %.1f%%\n",
		s.Anomalies.High, s.Anomalies.Medium, s.Anomalies.Low,
		s.Quality.CompletenessPercent, s.Quality.ReliabilityPercent)
	for _, ev := range s.KeyEvents {
		fmt.Printf("  ! %s\n", ev)
	}
	fmt.Println()
}
