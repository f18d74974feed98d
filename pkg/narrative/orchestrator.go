package narrative

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/solarviz/solarblog/pkg/blog"
	"github.com/solarviz/solarblog/pkg/cache"
	"github.com/solarviz/solarblog/pkg/llm"
	"github.com/solarviz/solarblog/pkg/types"
)

// DefaultTimeout bounds one outbound generation request. At the deadline the
// pending call is abandoned and treated as failed, never retried in-run.
const DefaultTimeout = 5 * time.Second

// Orchestrator runs the summary→narrative pipeline. One pipeline run executes
// at a time; concurrent callers for the same summary are serialized.
type Orchestrator struct {
	mu sync.Mutex

	cache *cache.Manager
	blog  *blog.Store
	gen   llm.Generator

	timeout time.Duration
	genCfg  llm.GenerateConfig
}

// Config holds orchestrator configuration.
type Config struct {
	Timeout  time.Duration      // defaults to DefaultTimeout
	Sampling llm.GenerateConfig // defaults to llm.DefaultGenerateConfig
}

// DefaultConfig returns the production pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:  DefaultTimeout,
		Sampling: llm.DefaultGenerateConfig(),
	}
}

// New creates an orchestrator. gen may be nil, in which case every narrative
// comes from the deterministic fallback template.
func New(cacheMgr *cache.Manager, blogStore *blog.Store, gen llm.Generator, cfg Config) *Orchestrator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Sampling == (llm.GenerateConfig{}) {
		cfg.Sampling = llm.DefaultGenerateConfig()
	}
	return &Orchestrator{
		cache:   cacheMgr,
		blog:    blogStore,
		gen:     gen,
		timeout: cfg.Timeout,
		genCfg:  cfg.Sampling,
	}
}

// Result is the outcome of one pipeline run. Content is always non-empty for
// a non-nil summary; failures degrade, they do not propagate.
type Result struct {
	Content     string
	Status      types.GenerationStatus
	AIGenerated bool
	FromCache   bool
	Post        *types.BlogPost
}

// Generate produces the narrative for a summary, serving from cache when the
// cache manager reports a valid entry.
func (o *Orchestrator) Generate(ctx context.Context, s *types.ObservationSummary) (*Result, error) {
	if s == nil {
		return &Result{Status: types.StatusInvalid}, fmt.Errorf("nil summary")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if reason := o.cache.Check(s); reason == cache.MissNone {
		if content, ok := o.cache.Get(s); ok {
			return &Result{
				Content:     content,
				Status:      types.StatusValid,
				AIGenerated: true, // provenance of cached text is not re-derived
				FromCache:   true,
				Post:        o.blog.Load(s.Date),
			}, nil
		}
	} else if reason != cache.MissAbsent {
		log.Printf("narrative: cache miss for %s: %s", s.Date, reason)
	}

	return o.generateLocked(ctx, s), nil
}

// Regenerate bypasses the cache check, invalidates the prior entry first,
// then re-runs the pipeline.
func (o *Orchestrator) Regenerate(ctx context.Context, s *types.ObservationSummary) (*Result, error) {
	if s == nil {
		return &Result{Status: types.StatusInvalid}, fmt.Errorf("nil summary")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.cache.Invalidate(s); err != nil {
		log.Printf("narrative: invalidate before regenerate failed for %s: %v", s.Date, err)
	}
	return o.generateLocked(ctx, s), nil
}

func (o *Orchestrator) generateLocked(ctx context.Context, s *types.ObservationSummary) *Result {
	content, aiGenerated := o.produceText(ctx, s)
	content = EnrichContent(content, s)

	post := &types.BlogPost{
		Title:              DeriveTitle(s),
		Content:            content,
		SummaryText:        DeriveSummaryText(s),
		Date:               s.Date,
		Tags:               DeriveTags(s),
		ReadingTimeMinutes: ReadingTime(content),
		KeyInsights:        DeriveInsights(s),
		Technical:          *s,
		AIGenerated:        aiGenerated,
	}

	// Write-through. Persistence failures are logged, not raised; the
	// narrative result stays usable either way.
	if err := o.cache.Put(s, content); err != nil {
		log.Printf("narrative: cache write failed for %s: %v", s.Date, err)
	}
	if err := o.blog.Save(post); err != nil {
		log.Printf("narrative: blog save failed for %s: %v", s.Date, err)
	}

	return &Result{
		Content:     content,
		Status:      types.StatusGenerating,
		AIGenerated: aiGenerated,
		Post:        post,
	}
}

// produceText issues one generation request under the deadline and falls back
// to the template on timeout, error, or an empty body.
func (o *Orchestrator) produceText(ctx context.Context, s *types.ObservationSummary) (string, bool) {
	if o.gen == nil {
		return FallbackNarrative(s), false
	}

	reqCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	type genResult struct {
		text string
		err  error
	}
	ch := make(chan genResult, 1)
	go func() {
		start := time.Now()
		text, err := o.gen.Generate(reqCtx, BuildPrompt(s), o.genCfg)
		if d := time.Since(start); d > o.timeout/2 && err == nil {
			log.Printf("narrative: slow generation for %s: %s", s.Date, d.Round(time.Millisecond))
		}
		ch <- genResult{text, err}
	}()

	select {
	case <-reqCtx.Done():
		// Abandon the pending call; its result is discarded.
		log.Printf("narrative: generation timed out for %s after %s", s.Date, o.timeout)
		return FallbackNarrative(s), false
	case res := <-ch:
		if res.err != nil {
			log.Printf("narrative: generation failed for %s: %v", s.Date, res.err)
			return FallbackNarrative(s), false
		}
		if strings.TrimSpace(res.text) == "" {
			log.Printf("narrative: empty generation response for %s", s.Date)
			return FallbackNarrative(s), false
		}
		return res.text, true
	}
}
