// Package llm provides the text-generation backends for narrative writing.
package llm

import "context"

// GenerateConfig carries the sampling parameters for one generation request.
type GenerateConfig struct {
	MaxOutputTokens int32
	Temperature     float32
	TopP            float32
	TopK            float32
}

// DefaultGenerateConfig returns the narrative-generation sampling defaults.
func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		MaxOutputTokens: 1024,
		Temperature:     0.7,
		TopP:            0.95,
		TopK:            40,
	}
}

// Generator defines the interface for text-generation backends. Implementations
// must honor ctx cancellation; callers bound requests with a deadline.
type Generator interface {
	Generate(ctx context.Context, prompt string, cfg GenerateConfig) (string, error)
}
