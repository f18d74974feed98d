// Package cache implements the content-addressed, time-bounded narrative
// cache. A cache key fingerprints the identity of a summary; a second data
// hash over a broader field subset detects that the underlying data changed
// even when the key-defining fields did not.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/solarviz/solarblog/pkg/store"
	"github.com/solarviz/solarblog/pkg/types"
)

const (
	// SchemaVersion invalidates every entry written by older layouts.
	SchemaVersion = 2

	// DefaultTTL bounds entry lifetime regardless of data hash.
	DefaultTTL = 24 * time.Hour

	entryPrefix = "narrative:"
	metaPrefix  = "narrative_meta:"
)

// MissReason distinguishes why a lookup did not hit, for observability.
type MissReason string

const (
	MissNone    MissReason = ""        // hit
	MissAbsent  MissReason = "absent"  // no entry for the fingerprint
	MissExpired MissReason = "expired" // TTL elapsed
	MissStale   MissReason = "stale"   // data hash changed under the same key
	MissVersion MissReason = "version" // written by a different schema version
	MissCorrupt MissReason = "corrupt" // entry unreadable or undecodable
)

// Manager owns cached narratives in a shared KV store.
type Manager struct {
	kv  store.KV
	ttl time.Duration
	now func() time.Time
}

// Config holds cache manager configuration.
type Config struct {
	TTL time.Duration
	Now func() time.Time // test hook; defaults to time.Now
}

// DefaultConfig returns the production cache configuration.
func DefaultConfig() Config {
	return Config{TTL: DefaultTTL}
}

// New creates a cache manager over the given store.
func New(kv store.KV, cfg Config) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{kv: kv, ttl: cfg.TTL, now: cfg.Now}
}

// Fingerprint derives the cache key from the stable identity subset of a
// summary: sha256 over a canonical sorted-key JSON encoding.
func Fingerprint(s *types.ObservationSummary) string {
	return digest(map[string]any{
		"date":           s.Date,
		"total_readings": s.TotalReadings,
		"duration_hours": s.DurationHours,
		"instrument":     s.Instrument,
		"channel":        s.Channel,
		"activity_level": string(s.ActivityLevel),
	})
}

// DataHash covers the broader subset whose change means the narrative must be
// regenerated: counts, key events, and quality metrics.
func DataHash(s *types.ObservationSummary) string {
	return digest(map[string]any{
		"total_readings":   s.TotalReadings,
		"anomalies_high":   s.Anomalies.High,
		"anomalies_medium": s.Anomalies.Medium,
		"anomalies_low":    s.Anomalies.Low,
		"key_events":       s.KeyEvents,
		"completeness":     s.Quality.CompletenessPercent,
		"reliability":      s.Quality.ReliabilityPercent,
	})
}

// digest canonicalizes via json.Marshal, which emits map keys sorted.
func digest(fields map[string]any) string {
	data, err := json.Marshal(fields)
	if err != nil {
		// Only unmarshalable types can land here; the field sets above are
		// all plain values.
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// load reads and decodes an entry. Any store or decode failure is a miss.
func (m *Manager) load(fingerprint string) (*types.CachedNarrative, MissReason) {
	raw, ok, err := m.kv.Get(entryPrefix + fingerprint)
	if err != nil {
		log.Printf("cache: read failed for %s: %v", fingerprint[:12], err)
		return nil, MissCorrupt
	}
	if !ok {
		return nil, MissAbsent
	}
	var entry types.CachedNarrative
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		log.Printf("cache: corrupt entry %s: %v", fingerprint[:12], err)
		return nil, MissCorrupt
	}
	return &entry, MissNone
}

// Check evaluates entry validity for a summary and reports the miss reason.
func (m *Manager) Check(s *types.ObservationSummary) MissReason {
	entry, reason := m.load(Fingerprint(s))
	if reason != MissNone {
		return reason
	}
	if m.now().Sub(entry.GeneratedAt) > m.ttl {
		return MissExpired
	}
	if entry.SourceSummaryDigest != DataHash(s) {
		return MissStale
	}
	if entry.Version != SchemaVersion {
		return MissVersion
	}
	return MissNone
}

// IsValid reports whether a fresh, matching entry exists for the summary.
func (m *Manager) IsValid(s *types.ObservationSummary) bool {
	return m.Check(s) == MissNone
}

// Get returns the cached content for a summary, or "" with ok=false on any
// miss. Misses are never errors.
func (m *Manager) Get(s *types.ObservationSummary) (string, bool) {
	if reason := m.Check(s); reason != MissNone {
		return "", false
	}
	entry, _ := m.load(Fingerprint(s))
	if entry == nil {
		return "", false
	}
	return entry.Content, true
}

// Put stores content for a summary together with its metadata record.
func (m *Manager) Put(s *types.ObservationSummary, content string) error {
	fp := Fingerprint(s)
	entry := types.CachedNarrative{
		Content:             content,
		GeneratedAt:         m.now(),
		DataFingerprint:     fp,
		Version:             SchemaVersion,
		SourceSummaryDigest: DataHash(s),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := m.kv.Set(entryPrefix+fp, string(data)); err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}

	checksum := sha256.Sum256([]byte(content))
	meta := types.CacheEntryMeta{
		SizeBytes:   len(content),
		Checksum:    hex.EncodeToString(checksum[:]),
		GeneratedAt: entry.GeneratedAt,
	}
	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode cache meta: %w", err)
	}
	if err := m.kv.Set(metaPrefix+fp, string(metaData)); err != nil {
		// The entry itself is stored and valid; stats just lose this record.
		log.Printf("cache: meta write failed for %s: %v", fp[:12], err)
	}
	return nil
}

// Invalidate removes the entry for a summary. Idempotent.
func (m *Manager) Invalidate(s *types.ObservationSummary) error {
	fp := Fingerprint(s)
	if err := m.kv.Delete(entryPrefix + fp); err != nil {
		return fmt.Errorf("invalidate cache entry: %w", err)
	}
	if err := m.kv.Delete(metaPrefix + fp); err != nil {
		log.Printf("cache: meta delete failed for %s: %v", fp[:12], err)
	}
	return nil
}

// InvalidateAll removes every cached narrative and metadata record.
func (m *Manager) InvalidateAll() error {
	for _, prefix := range []string{entryPrefix, metaPrefix} {
		keys, err := m.kv.Keys(prefix)
		if err != nil {
			return fmt.Errorf("list cache keys: %w", err)
		}
		for _, k := range keys {
			if err := m.kv.Delete(k); err != nil {
				return fmt.Errorf("delete cache key %q: %w", k, err)
			}
		}
	}
	return nil
}

// CleanupExpired removes entries past TTL and returns how many were removed.
// Corrupt entries are removed too; they can never be served.
func (m *Manager) CleanupExpired() (int, error) {
	keys, err := m.kv.Keys(entryPrefix)
	if err != nil {
		return 0, fmt.Errorf("list cache keys: %w", err)
	}

	removed := 0
	for _, k := range keys {
		fp := k[len(entryPrefix):]
		entry, reason := m.load(fp)
		expired := reason == MissCorrupt ||
			(entry != nil && m.now().Sub(entry.GeneratedAt) > m.ttl)
		if !expired {
			continue
		}
		if err := m.kv.Delete(k); err != nil {
			log.Printf("cache: cleanup delete failed for %s: %v", fp[:12], err)
			continue
		}
		_ = m.kv.Delete(metaPrefix + fp)
		removed++
	}
	return removed, nil
}

// Stats summarizes the cache population from metadata records.
type Stats struct {
	Count     int       `json:"count"`
	TotalSize int       `json:"total_size"`
	Oldest    time.Time `json:"oldest"`
	Newest    time.Time `json:"newest"`
}

// GetStats aggregates metadata across all entries. Store failures yield
// empty stats rather than an error.
func (m *Manager) GetStats() Stats {
	var stats Stats
	keys, err := m.kv.Keys(metaPrefix)
	if err != nil {
		log.Printf("cache: stats listing failed: %v", err)
		return stats
	}
	for _, k := range keys {
		raw, ok, err := m.kv.Get(k)
		if err != nil || !ok {
			continue
		}
		var meta types.CacheEntryMeta
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			continue
		}
		stats.Count++
		stats.TotalSize += meta.SizeBytes
		if stats.Oldest.IsZero() || meta.GeneratedAt.Before(stats.Oldest) {
			stats.Oldest = meta.GeneratedAt
		}
		if meta.GeneratedAt.After(stats.Newest) {
			stats.Newest = meta.GeneratedAt
		}
	}
	return stats
}
