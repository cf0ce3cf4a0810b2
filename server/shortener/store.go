// Package shortener maps short codes to URLs and counts redirects. The QR
// pattern for a code encodes the code's short URL.
package shortener

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/plus3/blockfall/bitmap"
)

// ErrNotFound is shared with the bitmap sources so a missing code reads the
// same everywhere.
var ErrNotFound = bitmap.ErrNotFound

type Entry struct {
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists entries. Implementations must be safe for concurrent use.
type Store interface {
	FindByURL(ctx context.Context, url string) (Entry, error)
	FindByCode(ctx context.Context, code string) (Entry, error)
	Create(ctx context.Context, e Entry) error
	IncrementClicks(ctx context.Context, code string) error
	Delete(ctx context.Context, code string) error
	// All returns entries newest first.
	All(ctx context.Context) ([]Entry, error)
}

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	byCode map[string]*Entry
	byURL  map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byCode: make(map[string]*Entry),
		byURL:  make(map[string]string),
	}
}

func (s *MemoryStore) FindByURL(ctx context.Context, url string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.byURL[url]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return *s.byCode[code], nil
}

func (s *MemoryStore) FindByCode(ctx context.Context, code string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byCode[code]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return *e, nil
}

// Create inserts e. A taken code or URL is reported as ErrDuplicate.
func (s *MemoryStore) Create(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byCode[e.ShortCode]; ok {
		return ErrDuplicate
	}
	if _, ok := s.byURL[e.OriginalURL]; ok {
		return ErrDuplicate
	}
	s.byCode[e.ShortCode] = &e
	s.byURL[e.OriginalURL] = e.ShortCode
	return nil
}

func (s *MemoryStore) IncrementClicks(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byCode[code]
	if !ok {
		return ErrNotFound
	}
	e.Clicks++
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byCode[code]
	if !ok {
		return ErrNotFound
	}
	delete(s.byURL, e.OriginalURL)
	delete(s.byCode, code)
	return nil
}

func (s *MemoryStore) All(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	out := make([]Entry, 0, len(s.byCode))
	for _, e := range s.byCode {
		out = append(out, *e)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Entry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ShortCode, b.ShortCode)
	})
	return out, nil
}
