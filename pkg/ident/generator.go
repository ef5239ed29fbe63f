package ident

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// suffixLength is the number of random characters appended to every id.
	suffixLength = 4
	// suffixAlphabet is the character set for random suffixes.
	suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	// maxAttempts bounds collision retries. With 36^4 suffixes per slug this
	// only trips under adversarial exists predicates, but the bound keeps
	// Generate total.
	maxAttempts = 1000
	// fallbackSlug is used when the seed text slugifies to nothing.
	fallbackSlug = "item"
)

// ErrExhausted is returned when Generate runs out of collision retries.
var ErrExhausted = errors.New("identifier generation exhausted all retries")

// stripMarks decomposes characters and removes combining marks, turning
// "Café" into "Cafe".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Generator produces human-readable, collision-free entity identifiers of
// the form {prefix}_{slug}_{suffix}. The slug is derived deterministically
// from a seed text; only the suffix is random, and the random source is
// injectable so tests can assert exact ids.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator with a time-seeded random source.
func NewGenerator() *Generator {
	return NewGeneratorWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewGeneratorWithSource creates a generator backed by the given source.
// Pass a fixed-seed source for deterministic ids in tests.
func NewGeneratorWithSource(src rand.Source) *Generator {
	return &Generator{rng: rand.New(src)}
}

// Generate derives an id from prefix and seedText and retries the random
// suffix until exists reports the id as free. Returns ErrExhausted after
// maxAttempts collisions.
func (g *Generator) Generate(prefix, seedText string, exists func(id string) bool) (string, error) {
	slug := Slugify(seedText)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		id := prefix + "_" + slug + "_" + g.suffix()
		if exists == nil || !exists(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("generate id for prefix %q: %w", prefix, ErrExhausted)
}

// Slugify lowercases the seed, strips diacritics, collapses runs of
// non-alphanumeric characters into single hyphens and trims leading and
// trailing hyphens. An empty result falls back to "item". The function is
// pure: equal inputs always produce equal slugs.
func Slugify(seedText string) string {
	stripped, _, err := transform.String(stripMarks, seedText)
	if err != nil {
		stripped = seedText
	}
	stripped = strings.ToLower(stripped)

	var b strings.Builder
	lastHyphen := true // swallow leading separators
	for _, r := range stripped {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		return fallbackSlug
	}
	return slug
}

// suffix draws suffixLength characters from suffixAlphabet.
func (g *Generator) suffix() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	buf := make([]byte, suffixLength)
	for i := range buf {
		buf[i] = suffixAlphabet[g.rng.Intn(len(suffixAlphabet))]
	}
	return string(buf)
}
