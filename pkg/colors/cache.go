package colors

import (
	"fmt"
	"image/color"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of distinct color strings a CachedResolver
// remembers per strategy.
const DefaultCacheSize = 1024

type computedAnswer struct {
	value string
	err   error
}

type pixelAnswer struct {
	px  color.NRGBA
	err error
}

// CachedResolver memoizes another resolver's answers, failures included.
// Caching is a host concern; the normalizer works the same without it.
type CachedResolver struct {
	next     ColorSpaceResolver
	computed *lru.Cache[string, computedAnswer]
	pixels   *lru.Cache[string, pixelAnswer]
}

// NewCachedResolver wraps next. size <= 0 selects DefaultCacheSize.
func NewCachedResolver(next ColorSpaceResolver, size int) (*CachedResolver, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	computed, err := lru.New[string, computedAnswer](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create computed color cache: %w", err)
	}
	pixels, err := lru.New[string, pixelAnswer](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create pixel cache: %w", err)
	}
	return &CachedResolver{next: next, computed: computed, pixels: pixels}, nil
}

// ResolveComputed implements ColorSpaceResolver.
func (c *CachedResolver) ResolveComputed(raw string) (string, error) {
	if a, ok := c.computed.Get(raw); ok {
		return a.value, a.err
	}
	v, err := c.next.ResolveComputed(raw)
	c.computed.Add(raw, computedAnswer{value: v, err: err})
	return v, err
}

// Rasterize implements ColorSpaceResolver.
func (c *CachedResolver) Rasterize(raw string) (color.NRGBA, error) {
	if a, ok := c.pixels.Get(raw); ok {
		return a.px, a.err
	}
	px, err := c.next.Rasterize(raw)
	c.pixels.Add(raw, pixelAnswer{px: px, err: err})
	return px, err
}

// Len returns the number of cached computed-style answers.
func (c *CachedResolver) Len() int {
	return c.computed.Len()
}
