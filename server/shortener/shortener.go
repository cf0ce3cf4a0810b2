package shortener

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/plus3/blockfall/errs"
)

const (
	Alphabet          = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	DefaultCodeLength = 6
	maxAttempts       = 64
)

var ErrDuplicate = errs.NewWarn("shortener: duplicate entry")

// Rand draws code characters. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

type Config struct {
	BaseURL    string
	CodeLength int
	Rand       Rand
	Now        func() time.Time
}

type Stats struct {
	TotalURLs   int   `json:"total_urls"`
	TotalClicks int64 `json:"total_clicks"`
}

type Service struct {
	store   Store
	baseURL string
	length  int
	now     func() time.Time

	mu  sync.Mutex
	rnd Rand
}

func NewService(store Store, cfg Config) *Service {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = DefaultCodeLength
	}
	if cfg.Rand == nil {
		cfg.Rand = globalRand{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		store:   store,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		length:  cfg.CodeLength,
		now:     cfg.Now,
		rnd:     cfg.Rand,
	}
}

// Normalize trims raw and prefixes https:// when no http(s) scheme is given.
func Normalize(raw string) (string, error) {
	u := strings.TrimSpace(raw)
	if u == "" {
		return "", errs.NewWarn("URL is required")
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + u
	}
	return u, nil
}

// Shorten returns the entry for raw, creating one with a fresh code if the URL
// is new.
func (s *Service) Shorten(ctx context.Context, raw string) (Entry, error) {
	u, err := Normalize(raw)
	if err != nil {
		return Entry{}, err
	}

	existing, err := s.store.FindByURL(ctx, u)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Entry{}, errs.Wrap(err, "shortener: find url")
	}

	for range maxAttempts {
		e := Entry{ShortCode: s.newCode(), OriginalURL: u, CreatedAt: s.now()}
		err := s.store.Create(ctx, e)
		if err == nil {
			return e, nil
		}
		if !errors.Is(err, ErrDuplicate) {
			return Entry{}, errs.Wrap(err, "shortener: create")
		}
		// Another request may have stored the same URL in the meantime.
		if existing, err := s.store.FindByURL(ctx, u); err == nil {
			return existing, nil
		}
	}
	return Entry{}, errs.Fatalf("shortener: no free code after %d attempts", maxAttempts)
}

func (s *Service) newCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := make([]byte, s.length)
	for i := range b {
		b[i] = Alphabet[s.rnd.IntN(len(Alphabet))]
	}
	return string(b)
}

// ShortURL joins the base URL and code.
func (s *Service) ShortURL(code string) string {
	return s.baseURL + "/" + code
}

// Lookup returns the entry for code without counting a click.
func (s *Service) Lookup(ctx context.Context, code string) (Entry, error) {
	return s.store.FindByCode(ctx, code)
}

// Follow returns the URL code points at and counts the click.
func (s *Service) Follow(ctx context.Context, code string) (string, error) {
	e, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if err := s.store.IncrementClicks(ctx, code); err != nil {
		return "", err
	}
	return e.OriginalURL, nil
}

func (s *Service) Delete(ctx context.Context, code string) error {
	return s.store.Delete(ctx, code)
}

func (s *Service) List(ctx context.Context) ([]Entry, error) {
	return s.store.All(ctx)
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	all, err := s.store.All(ctx)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{TotalURLs: len(all)}
	for _, e := range all {
		st.TotalClicks += e.Clicks
	}
	return st, nil
}

// QRContent resolves code to the text its QR pattern encodes: the short URL.
// It has the shape of qr.Resolver.
func (s *Service) QRContent(ctx context.Context, code string) (string, error) {
	if _, err := s.store.FindByCode(ctx, code); err != nil {
		return "", err
	}
	return s.ShortURL(code), nil
}
