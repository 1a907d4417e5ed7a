// Package prefs persists the home screen filters: per-list result limits,
// the selected genre and the last submitted search.
package prefs

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/existflow/animeshelf/internal/logger"
	"github.com/existflow/animeshelf/internal/storage"
)

// Limit bounds
const (
	MinLimit = 1
	MaxLimit = 1000
)

// List names a limited list on the home screen
type List int

const (
	Top List = iota
	Genre
	Search
)

func (l List) String() string {
	switch l {
	case Genre:
		return "genre"
	case Search:
		return "search"
	default:
		return "top"
	}
}

func (l List) key() string {
	switch l {
	case Genre:
		return storage.KeyGenreAnimesLimit
	case Search:
		return storage.KeySearchResultsLimit
	default:
		return storage.KeyTopAnimesLimit
	}
}

// DefaultLimit is the page size the catalog uses when none is requested
func (l List) DefaultLimit() int {
	if l == Search {
		return 25
	}
	return 20
}

// Clamp forces n into [MinLimit, MaxLimit]
func Clamp(n int) int {
	return min(max(n, MinLimit), MaxLimit)
}

// ParseLimit interprets typed limit input. Empty input means MinLimit.
// Input that is not a positive number is rejected and current is kept.
func ParseLimit(raw string, current int) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return MinLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < MinLimit {
		return current, false
	}
	return Clamp(n), true
}

// Prefs reads and writes filter preferences
type Prefs struct {
	kv  storage.Store
	log *logger.Logger
}

// New creates Prefs over kv
func New(kv storage.Store, log *logger.Logger) *Prefs {
	if log == nil {
		log = logger.Default()
	}
	return &Prefs{kv: kv, log: log.WithFields(logger.F("component", "prefs"))}
}

// Limit returns the stored limit for l, or its default
func (p *Prefs) Limit(ctx context.Context, l List) int {
	raw, ok, err := p.kv.Get(ctx, l.key())
	if err != nil {
		p.log.Warn("Failed to read limit", logger.F("list", l), logger.F("error", err))
		return l.DefaultLimit()
	}
	if !ok {
		return l.DefaultLimit()
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.log.Warn("Ignoring corrupt limit", logger.F("list", l), logger.F("value", raw))
		return l.DefaultLimit()
	}
	return Clamp(n)
}

// SetLimit stores n clamped to the allowed range and returns what was stored
func (p *Prefs) SetLimit(ctx context.Context, l List, n int) (int, error) {
	n = Clamp(n)
	if err := p.kv.Set(ctx, l.key(), strconv.Itoa(n)); err != nil {
		return n, fmt.Errorf("failed to save %s limit: %w", l, err)
	}
	return n, nil
}

// StepLimit adds delta to the current limit
func (p *Prefs) StepLimit(ctx context.Context, l List, delta int) (int, error) {
	return p.SetLimit(ctx, l, p.Limit(ctx, l)+delta)
}

// SelectedGenre returns the chosen genre, empty when none
func (p *Prefs) SelectedGenre(ctx context.Context) string {
	return p.get(ctx, storage.KeySelectedGenre)
}

// SetSelectedGenre stores name; an empty name clears the selection
func (p *Prefs) SetSelectedGenre(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		if err := p.kv.Delete(ctx, storage.KeySelectedGenre); err != nil {
			return fmt.Errorf("failed to clear genre: %w", err)
		}
		return nil
	}
	if err := p.kv.Set(ctx, storage.KeySelectedGenre, name); err != nil {
		return fmt.Errorf("failed to save genre: %w", err)
	}
	return nil
}

// LastSearch returns the last submitted search
func (p *Prefs) LastSearch(ctx context.Context) string {
	return p.get(ctx, storage.KeyAnimeSearch)
}

// SetLastSearch stores the submitted search
func (p *Prefs) SetLastSearch(ctx context.Context, q string) error {
	if err := p.kv.Set(ctx, storage.KeyAnimeSearch, q); err != nil {
		return fmt.Errorf("failed to save search: %w", err)
	}
	return nil
}

func (p *Prefs) get(ctx context.Context, key string) string {
	v, _, err := p.kv.Get(ctx, key)
	if err != nil {
		p.log.Warn("Failed to read preference", logger.F("key", key), logger.F("error", err))
		return ""
	}
	return v
}
