package blog

import (
	"strings"
	"testing"
	"time"

	"github.com/solarviz/solarblog/pkg/store"
	"github.com/solarviz/solarblog/pkg/types"
)

func testPost(date string) *types.BlogPost {
	return &types.BlogPost{
		Title:       "Solar Wind Report " + date,
		Content:     "Quiet conditions throughout the window.",
		SummaryText: "A quiet day.",
		Date:        date,
		Tags:        []string{"solar-wind", "telemetry"},
	}
}

func TestStore_SaveLoadRoundtrip(t *testing.T) {
	s := New(store.NewMemStore())
	post := testPost("2026-08-29")

	if s.Exists("2026-08-29") {
		t.Fatal("expected no post before save")
	}
	if err := s.Save(post); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if post.ID == "" {
		t.Fatal("expected save to assign an id")
	}
	if !s.Exists("2026-08-29") {
		t.Fatal("expected post to exist after save")
	}

	loaded := s.Load("2026-08-29")
	if loaded == nil {
		t.Fatal("expected to load saved post")
	}
	if loaded.ID != post.ID || loaded.Title != post.Title {
		t.Errorf("loaded post differs: got %q/%q", loaded.ID, loaded.Title)
	}

	if s.Load("2026-01-01") != nil {
		t.Error("expected nil for absent date")
	}
}

func TestStore_OverwriteSameDate(t *testing.T) {
	s := New(store.NewMemStore())

	first := testPost("2026-08-29")
	if err := s.Save(first); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second := testPost("2026-08-29")
	second.Title = "Regenerated Report"
	if err := s.Save(second); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	dates := s.ListDates()
	if len(dates) != 1 {
		t.Fatalf("expected exactly one artifact per date, got %v", dates)
	}
	if got := s.Load("2026-08-29"); got.Title != "Regenerated Report" {
		t.Errorf("expected overwrite, got %q", got.Title)
	}
}

func TestStore_IndexFailureFailsSave(t *testing.T) {
	kv := store.NewMemStore()
	kv.FailSets = func(key string) bool { return key == indexKey }
	s := New(kv)

	err := s.Save(testPost("2026-08-29"))
	if err == nil {
		t.Fatal("expected save to fail when the index write fails")
	}
	// The record must have been rolled back: index and records stay in sync.
	if s.Exists("2026-08-29") {
		t.Fatal("expected record rollback after index failure")
	}
}

func TestStore_IndexFailureKeepsPriorRecord(t *testing.T) {
	kv := store.NewMemStore()
	s := New(kv)
	if err := s.Save(testPost("2026-08-29")); err != nil {
		t.Fatalf("initial save failed: %v", err)
	}

	kv.FailSets = func(key string) bool { return key == indexKey }
	update := testPost("2026-08-29")
	update.Title = "Updated Report"
	if err := s.Save(update); err == nil {
		t.Fatal("expected update save to fail")
	}

	kv.FailSets = nil
	if got := s.Load("2026-08-29"); got == nil || got.Title == "Updated Report" {
		t.Fatalf("expected prior record restored, got %+v", got)
	}
}

func TestStore_ListDatesSortedDescending(t *testing.T) {
	s := New(store.NewMemStore())
	for _, date := range []string{"2026-08-27", "2026-08-29", "2026-08-28"} {
		if err := s.Save(testPost(date)); err != nil {
			t.Fatalf("save %s failed: %v", date, err)
		}
	}

	dates := s.ListDates()
	want := []string{"2026-08-29", "2026-08-28", "2026-08-27"}
	if strings.Join(dates, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, dates)
	}
}

func TestStore_DeleteAndClearAll(t *testing.T) {
	s := New(store.NewMemStore())
	s.Save(testPost("2026-08-28"))
	s.Save(testPost("2026-08-29"))

	if err := s.Delete("2026-08-28"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if s.Exists("2026-08-28") {
		t.Fatal("expected post removed")
	}
	// Idempotent.
	if err := s.Delete("2026-08-28"); err != nil {
		t.Fatalf("repeat delete failed: %v", err)
	}

	if err := s.ClearAll(); err != nil {
		t.Fatalf("clear all failed: %v", err)
	}
	if len(s.ListDates()) != 0 {
		t.Fatal("expected empty store after ClearAll")
	}
}

func TestStore_CleanupOlderThan(t *testing.T) {
	s := New(store.NewMemStore())
	fixed := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.Save(testPost("2026-05-01")) // 121 days old
	s.Save(testPost("2026-08-20")) // 10 days old
	s.Save(testPost("2026-08-29"))

	removed, err := s.CleanupOlderThan(30)
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if s.Exists("2026-05-01") {
		t.Fatal("expected old post removed")
	}
	if !s.Exists("2026-08-20") || !s.Exists("2026-08-29") {
		t.Fatal("expected recent posts kept")
	}
}

func TestStore_Stats(t *testing.T) {
	s := New(store.NewMemStore())
	s.Save(testPost("2026-08-28"))
	s.Save(testPost("2026-08-29"))

	stats := s.Stats()
	if stats.PostCount != 2 {
		t.Fatalf("expected 2 posts, got %d", stats.PostCount)
	}
	if stats.TotalBytes == 0 {
		t.Error("expected non-zero total bytes")
	}
	if stats.OldestDate != "2026-08-28" || stats.NewestDate != "2026-08-29" {
		t.Errorf("expected date span 2026-08-28..2026-08-29, got %s..%s",
			stats.OldestDate, stats.NewestDate)
	}
}
