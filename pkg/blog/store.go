// Package blog persists narrative artifacts keyed by observation date, with
// a date→id index maintained alongside every write and delete. Index and
// record writes form one logical operation: a save whose index update fails
// is a failed save, and the record is rolled back.
package blog

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/solarviz/solarblog/pkg/store"
	"github.com/solarviz/solarblog/pkg/types"
)

const (
	postPrefix = "blog:post:"
	indexKey   = "blog:index"

	// DefaultRetentionDays bounds CleanupOlderThan when callers pass zero.
	DefaultRetentionDays = 90
)

// Store is the date-keyed persistence layer for blog posts.
type Store struct {
	mu  sync.Mutex
	kv  store.KV
	now func() time.Time
}

// New creates a blog store over the given KV.
func New(kv store.KV) *Store {
	return &Store{kv: kv, now: time.Now}
}

// loadIndex reads the date→id index. A missing or corrupt index is treated
// as empty; it is rebuilt incrementally by subsequent saves.
func (s *Store) loadIndex() map[string]string {
	raw, ok, err := s.kv.Get(indexKey)
	if err != nil || !ok {
		if err != nil {
			log.Printf("blog: index read failed: %v", err)
		}
		return map[string]string{}
	}
	idx := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &idx); err != nil {
		log.Printf("blog: corrupt index, starting empty: %v", err)
		return map[string]string{}
	}
	return idx
}

func (s *Store) writeIndex(idx map[string]string) error {
	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("encode blog index: %w", err)
	}
	if err := s.kv.Set(indexKey, string(data)); err != nil {
		return fmt.Errorf("store blog index: %w", err)
	}
	return nil
}

// Exists reports whether an artifact is stored for the date.
func (s *Store) Exists(date string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok, err := s.kv.Get(postPrefix + date)
	if err != nil {
		log.Printf("blog: exists check failed for %s: %v", date, err)
		return false
	}
	return ok
}

// Save stores an artifact under its date, superseding any prior artifact for
// that date. Unlike reads, save errors propagate: pretending a save succeeded
// would desynchronize the date→id index.
func (s *Store) Save(post *types.BlogPost) error {
	if post.Date == "" {
		return fmt.Errorf("blog post has no date")
	}
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("encode blog post: %w", err)
	}

	recordKey := postPrefix + post.Date
	prev, hadPrev, _ := s.kv.Get(recordKey)

	if err := s.kv.Set(recordKey, string(data)); err != nil {
		return fmt.Errorf("store blog post %s: %w", post.Date, err)
	}

	idx := s.loadIndex()
	idx[post.Date] = post.ID
	if err := s.writeIndex(idx); err != nil {
		// Roll the record back so index and records stay consistent.
		if hadPrev {
			if rbErr := s.kv.Set(recordKey, prev); rbErr != nil {
				log.Printf("blog: rollback failed for %s: %v", post.Date, rbErr)
			}
		} else if rbErr := s.kv.Delete(recordKey); rbErr != nil {
			log.Printf("blog: rollback failed for %s: %v", post.Date, rbErr)
		}
		return fmt.Errorf("save blog post %s: %w", post.Date, err)
	}
	return nil
}

// Load returns the artifact for a date, or nil when absent or unreadable.
func (s *Store) Load(date string) *types.BlogPost {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.kv.Get(postPrefix + date)
	if err != nil || !ok {
		if err != nil {
			log.Printf("blog: load failed for %s: %v", date, err)
		}
		return nil
	}
	var post types.BlogPost
	if err := json.Unmarshal([]byte(raw), &post); err != nil {
		log.Printf("blog: corrupt post for %s: %v", date, err)
		return nil
	}
	return &post
}

// Delete removes the artifact and its index entry for a date. Idempotent.
func (s *Store) Delete(date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(date)
}

func (s *Store) deleteLocked(date string) error {
	idx := s.loadIndex()
	if _, ok := idx[date]; ok {
		delete(idx, date)
		if err := s.writeIndex(idx); err != nil {
			return fmt.Errorf("delete blog post %s: %w", date, err)
		}
	}
	if err := s.kv.Delete(postPrefix + date); err != nil {
		return fmt.Errorf("delete blog post %s: %w", date, err)
	}
	return nil
}

// ListDates returns all stored dates, newest first.
func (s *Store) ListDates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.kv.Keys(postPrefix)
	if err != nil {
		log.Printf("blog: list failed: %v", err)
		return nil
	}
	dates := make([]string, 0, len(keys))
	for _, k := range keys {
		dates = append(dates, k[len(postPrefix):])
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// ClearAll removes every artifact and resets the index.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.kv.Keys(postPrefix)
	if err != nil {
		return fmt.Errorf("list blog posts: %w", err)
	}
	for _, k := range keys {
		if err := s.kv.Delete(k); err != nil {
			return fmt.Errorf("clear blog post %q: %w", k, err)
		}
	}
	return s.writeIndex(map[string]string{})
}

// CleanupOlderThan removes artifacts older than the given number of days and
// returns how many were removed.
func (s *Store) CleanupOlderThan(days int) (int, error) {
	if days <= 0 {
		days = DefaultRetentionDays
	}
	cutoff := s.now().AddDate(0, 0, -days).Format("2006-01-02")

	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.kv.Keys(postPrefix)
	if err != nil {
		return 0, fmt.Errorf("list blog posts: %w", err)
	}
	removed := 0
	for _, k := range keys {
		date := k[len(postPrefix):]
		if date >= cutoff {
			continue
		}
		if err := s.deleteLocked(date); err != nil {
			log.Printf("blog: cleanup failed for %s: %v", date, err)
			continue
		}
		removed++
	}
	return removed, nil
}

// StorageStats summarizes the stored artifact population.
type StorageStats struct {
	PostCount  int    `json:"post_count"`
	TotalBytes int    `json:"total_bytes"`
	OldestDate string `json:"oldest_date"`
	NewestDate string `json:"newest_date"`
}

// Stats reports artifact counts and sizes. Store failures yield empty stats.
func (s *Store) Stats() StorageStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats StorageStats
	keys, err := s.kv.Keys(postPrefix)
	if err != nil {
		log.Printf("blog: stats listing failed: %v", err)
		return stats
	}
	for _, k := range keys {
		raw, ok, err := s.kv.Get(k)
		if err != nil || !ok {
			continue
		}
		date := k[len(postPrefix):]
		stats.PostCount++
		stats.TotalBytes += len(raw)
		if stats.OldestDate == "" || date < stats.OldestDate {
			stats.OldestDate = date
		}
		if date > stats.NewestDate {
			stats.NewestDate = date
		}
	}
	return stats
}
