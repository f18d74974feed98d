package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/solarviz/solarblog/pkg/store"
	"github.com/solarviz/solarblog/pkg/types"
)

func testSummary(date string) *types.ObservationSummary {
	return &types.ObservationSummary{
		Date:          date,
		Instrument:    "SWIS",
		Channel:       "BLK",
		TotalReadings: 1440,
		DurationHours: 24,
		ActivityLevel: types.ActivityModerate,
		Anomalies:     types.SeverityBuckets{High: 2},
		Quality:       types.DataQuality{CompletenessPercent: 98.5, ReliabilityPercent: 99.9},
		KeyEvents:     []string{"2 high-severity anomaly readings detected"},
	}
}

func testManager(kv store.KV, now *time.Time) *Manager {
	return New(kv, Config{
		TTL: DefaultTTL,
		Now: func() time.Time { return *now },
	})
}

func TestManager_PutThenValid(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	m := testManager(store.NewMemStore(), &now)
	s := testSummary("2026-08-29")

	if m.IsValid(s) {
		t.Fatal("expected invalid before any put")
	}
	if reason := m.Check(s); reason != MissAbsent {
		t.Fatalf("expected absent, got %s", reason)
	}

	if err := m.Put(s, "the narrative"); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if !m.IsValid(s) {
		t.Fatal("expected valid immediately after put")
	}
	content, ok := m.Get(s)
	if !ok || content != "the narrative" {
		t.Fatalf("expected cached content back, got %q ok=%v", content, ok)
	}
}

func TestManager_StaleWhenDataChanges(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	m := testManager(store.NewMemStore(), &now)
	s := testSummary("2026-08-29")

	if err := m.Put(s, "old narrative"); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	// Mutate a field that feeds the data hash but not the cache key.
	s.Anomalies.High = 9

	if m.IsValid(s) {
		t.Fatal("expected stale entry after underlying data changed")
	}
	if reason := m.Check(s); reason != MissStale {
		t.Fatalf("expected stale reason, got %s", reason)
	}
	if _, ok := m.Get(s); ok {
		t.Fatal("stale entry must not be served")
	}
}

func TestManager_TTLExpiry(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	m := testManager(store.NewMemStore(), &now)
	s := testSummary("2026-08-29")

	if err := m.Put(s, "content"); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if !m.IsValid(s) {
		t.Fatal("expected valid before TTL")
	}

	now = now.Add(DefaultTTL + time.Minute)

	if m.IsValid(s) {
		t.Fatal("expected expired after TTL")
	}
	if reason := m.Check(s); reason != MissExpired {
		t.Fatalf("expected expired reason, got %s", reason)
	}
}

func TestManager_VersionMismatch(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	kv := store.NewMemStore()
	m := testManager(kv, &now)
	s := testSummary("2026-08-29")

	if err := m.Put(s, "content"); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	// Rewrite the stored entry as if an older schema produced it.
	key := entryPrefix + Fingerprint(s)
	raw, ok, _ := kv.Get(key)
	if !ok {
		t.Fatal("entry missing from store")
	}
	var entry types.CachedNarrative
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		t.Fatalf("decode stored entry: %v", err)
	}
	entry.Version = SchemaVersion - 1
	data, _ := json.Marshal(entry)
	if err := kv.Set(key, string(data)); err != nil {
		t.Fatalf("rewrite entry: %v", err)
	}

	if reason := m.Check(s); reason != MissVersion {
		t.Fatalf("expected version mismatch, got %s", reason)
	}
}

func TestManager_CorruptEntryIsMiss(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	kv := store.NewMemStore()
	m := testManager(kv, &now)
	s := testSummary("2026-08-29")

	if err := kv.Set(entryPrefix+Fingerprint(s), "{not json"); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	if reason := m.Check(s); reason != MissCorrupt {
		t.Fatalf("expected corrupt miss, got %s", reason)
	}
	if _, ok := m.Get(s); ok {
		t.Fatal("corrupt entry must read as a miss, not an error")
	}
}

func TestManager_FingerprintStability(t *testing.T) {
	a := testSummary("2026-08-29")
	b := testSummary("2026-08-29")

	if Fingerprint(a) != Fingerprint(b) {
		t.Fatal("identical summaries must produce identical fingerprints")
	}
	b.Date = "2026-08-30"
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatal("different dates must produce different fingerprints")
	}

	// Data-hash fields must not feed the cache key.
	c := testSummary("2026-08-29")
	c.Anomalies.High = 99
	if Fingerprint(a) != Fingerprint(c) {
		t.Fatal("anomaly counts must not change the cache key")
	}
	if DataHash(a) == DataHash(c) {
		t.Fatal("anomaly counts must change the data hash")
	}
}

func TestManager_InvalidateAndCleanup(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	m := testManager(store.NewMemStore(), &now)

	s1 := testSummary("2026-08-27")
	s2 := testSummary("2026-08-28")
	s3 := testSummary("2026-08-29")
	if err := m.Put(s1, "one"); err != nil {
		t.Fatal(err)
	}

	now = now.Add(12 * time.Hour)
	if err := m.Put(s2, "two"); err != nil {
		t.Fatal(err)
	}
	if err := m.Put(s3, "three"); err != nil {
		t.Fatal(err)
	}

	if err := m.Invalidate(s3); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	if m.IsValid(s3) {
		t.Fatal("expected invalidated entry to miss")
	}
	// Idempotent.
	if err := m.Invalidate(s3); err != nil {
		t.Fatalf("second invalidate failed: %v", err)
	}

	// s1 is now 12h old, s2 fresh. Move past s1's TTL only.
	now = now.Add(13 * time.Hour)
	removed, err := m.CleanupExpired()
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if m.IsValid(s1) {
		t.Fatal("expected s1 expired and removed")
	}

	stats := m.GetStats()
	if stats.Count != 1 {
		t.Fatalf("expected 1 remaining entry in stats, got %d", stats.Count)
	}
	if stats.TotalSize != len("two") {
		t.Errorf("expected total size %d, got %d", len("two"), stats.TotalSize)
	}

	if err := m.InvalidateAll(); err != nil {
		t.Fatalf("invalidate all failed: %v", err)
	}
	if stats := m.GetStats(); stats.Count != 0 {
		t.Fatalf("expected empty cache after InvalidateAll, got %d", stats.Count)
	}
}
