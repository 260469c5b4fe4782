// Package supply serves player hands from an embedded card catalog.
package supply

import (
	"embed"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"cardbattle/internal/game"
)

//go:embed catalogs/*.txt
var catalogFS embed.FS

// DefaultCatalog is the catalog shipped with the server.
const DefaultCatalog = "standard"

// Catalogs returns the names of the embedded catalogs.
func Catalogs() []string {
	entries, err := fs.ReadDir(catalogFS, "catalogs")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".txt"))
	}
	return out
}

// LoadCatalog reads an embedded catalog by name.
func LoadCatalog(name string) ([]game.CardMeta, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultCatalog
	}
	b, err := fs.ReadFile(catalogFS, "catalogs/"+name+".txt")
	if err != nil {
		return nil, fmt.Errorf("catalog %q: %w", name, err)
	}
	return ParseCatalog(string(b))
}

// ParseCatalog reads one card per line as "name | damage | max health | image".
// Blank lines and lines starting with # are skipped; the image is optional.
func ParseCatalog(text string) ([]game.CardMeta, error) {
	var out []game.CardMeta
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) < 3 {
			return nil, fmt.Errorf("line %d: want at least 3 fields, got %d", i+1, len(fields))
		}
		for j := range fields {
			fields[j] = strings.TrimSpace(fields[j])
		}
		damage, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: damage: %w", i+1, err)
		}
		health, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: max health: %w", i+1, err)
		}
		meta := game.CardMeta{Name: fields[0], Damage: damage, MaxHealth: health}
		if len(fields) > 3 {
			meta.ImageRef = fields[3]
		}
		if _, err := game.NewCard(meta); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, meta)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	return out, nil
}

// CatalogSupplier deals uniformly random cards from a catalog. It is safe
// for use by many engines at once.
type CatalogSupplier struct {
	mu      sync.Mutex
	rng     *rand.Rand
	catalog []game.CardMeta
}

// Option configures a CatalogSupplier.
type Option func(*CatalogSupplier)

// WithSeed makes the deal sequence reproducible. Zero keeps the random seed.
func WithSeed(seed uint64) Option {
	return func(s *CatalogSupplier) {
		if seed != 0 {
			s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		}
	}
}

// NewCatalogSupplier returns a supplier over catalog.
func NewCatalogSupplier(catalog []game.CardMeta, opts ...Option) (*CatalogSupplier, error) {
	if len(catalog) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	now := uint64(time.Now().UnixNano())
	s := &CatalogSupplier{
		rng:     rand.New(rand.NewPCG(now, now>>1)),
		catalog: append([]game.CardMeta(nil), catalog...),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ServeHand returns count fresh cards.
func (s *CatalogSupplier) ServeHand(count int) []*game.Card {
	if count <= 0 {
		return nil
	}
	s.mu.Lock()
	picks := make([]game.CardMeta, count)
	for i := range picks {
		picks[i] = s.catalog[s.rng.IntN(len(s.catalog))]
	}
	s.mu.Unlock()

	out := make([]*game.Card, 0, count)
	for _, meta := range picks {
		out = append(out, game.MustCard(meta))
	}
	return out
}

// Roster returns n cards for an opponent, each pre-damaged by a growing
// amount so later cards fall faster.
func (s *CatalogSupplier) Roster(n int, wear int) []*game.Card {
	cards := s.ServeHand(n)
	for i, c := range cards {
		c.TakeDamage(min((i+1)*wear, c.MaxHealth-1))
	}
	return cards
}

var _ game.DeckSupplier = (*CatalogSupplier)(nil)
