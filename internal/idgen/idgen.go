// Package idgen produces human-readable booking references in the form
// {prefix}{epochMillis}{rand4}, e.g. BK17091234567894321. References are
// probabilistically unique only; callers persist them with insert-if-absent
// and regenerate on collision.
package idgen

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Reference prefixes.
const (
	PrefixBooking = "BK"
	PrefixParking = "PK"
	PrefixSupport = "ST"
)

// Generator produces booking references. The zero value is not usable;
// construct with New.
type Generator struct {
	mu   sync.Mutex
	rand *rand.Rand
	now  func() time.Time
}

// New returns a Generator seeded from the current time.
func New() *Generator {
	return &Generator{
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
		now:  time.Now,
	}
}

// NewWithSource returns a Generator with a fixed source and clock, for tests.
func NewWithSource(src rand.Source, now func() time.Time) *Generator {
	return &Generator{rand: rand.New(src), now: now}
}

// Next returns a new reference with the given prefix.
func (g *Generator) Next(prefix string) string {
	g.mu.Lock()
	n := 1000 + g.rand.Intn(9000)
	ts := g.now().UnixMilli()
	g.mu.Unlock()
	return fmt.Sprintf("%s%d%d", prefix, ts, n)
}
