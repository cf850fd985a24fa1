// Package idgen provides identity generators for workspace entities.
//
// Entity ids look like "<kind>-<suffix>", e.g. "issue-4" or "issue-V1StGXR8_Z".
package idgen

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet defines the character set used for random suffixes.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 10

// Generator hands out unique ids for a given entity kind.
type Generator interface {
	NewID(kind string) string
}

// Observer is implemented by generators that must skip ids already in
// use, such as ids loaded from a database.
type Observer interface {
	Observe(id string)
}

// Sequence is a deterministic generator backed by a single monotonic counter.
type Sequence struct {
	mu sync.Mutex
	n  int
}

// NewSequence returns a Sequence whose first id ends in 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// NewID returns "<kind>-<n>".
func (s *Sequence) NewID(kind string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", kind, s.n)
}

// Observe advances the counter past the numeric suffix of id.
// Ids without one are ignored.
func (s *Sequence) Observe(id string) {
	i := strings.LastIndexByte(id, '-')
	if i < 0 {
		return
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > s.n {
		s.n = n
	}
}

// Random generates nanoid-suffixed ids.
type Random struct {
	fallback *Sequence
}

// NewRandom returns a Random generator.
func NewRandom() *Random {
	return &Random{fallback: NewSequence()}
}

// Observe keeps the fallback sequence clear of loaded "-seq-" ids.
func (r *Random) Observe(id string) {
	r.fallback.Observe(id)
}

// NewID returns "<kind>-<nanoid>". If the random source fails the
// sequence suffix is used so callers never see an error.
func (r *Random) NewID(kind string) string {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return r.fallback.NewID(kind + "-seq")
	}
	return kind + "-" + id
}

// New returns the generator named by style ("sequence" or "random").
func New(style string) (Generator, error) {
	switch style {
	case "", "random":
		return NewRandom(), nil
	case "sequence":
		return NewSequence(), nil
	default:
		return nil, fmt.Errorf("idgen: unknown id style %q", style)
	}
}
