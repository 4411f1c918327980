package idgen

import (
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextFormat(t *testing.T) {
	fixed := time.UnixMilli(1709123456789)
	g := NewWithSource(rand.NewSource(1), func() time.Time { return fixed })

	ref := g.Next(PrefixBooking)

	assert.True(t, strings.HasPrefix(ref, "BK1709123456789"))
	// 2-char prefix + 13-digit millis + 4-digit suffix
	assert.Len(t, ref, 19)
}

func TestNextSuffixRange(t *testing.T) {
	g := New()
	for i := 0; i < 1000; i++ {
		ref := g.Next(PrefixParking)
		suffix := ref[len(ref)-4:]
		assert.True(t, suffix[0] >= '1' && suffix[0] <= '9', "suffix %s must not have a leading zero", suffix)
	}
}

func TestNextConcurrent(t *testing.T) {
	g := New()

	var wg sync.WaitGroup
	refs := make(chan string, 100)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				refs <- g.Next(PrefixSupport)
			}
		}()
	}
	wg.Wait()
	close(refs)

	for ref := range refs {
		assert.True(t, strings.HasPrefix(ref, PrefixSupport))
	}
}
