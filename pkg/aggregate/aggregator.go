// Package aggregate folds resolved-style samples into ranked, deduplicated
// color and font inventories.
package aggregate

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/gnana997/stylelens/pkg/colors"
	"github.com/gnana997/stylelens/pkg/typography"
)

// Options configures an Aggregator.
type Options struct {
	// Normalizer buckets colors. Defaults to a native normalizer.
	Normalizer *colors.Normalizer

	// Visible decides visibility. When nil, ViewportVisibility(Viewport) is
	// used, so a zero Viewport disables viewport clipping.
	Visible  VisibilityFunc
	Viewport Viewport

	// Excluder recognizes the inspector UI. When nil, the reserved markers
	// are used.
	Excluder *Excluder

	Logger *slog.Logger
}

// Aggregator builds inventories from samples. Every call starts from
// scratch; nothing is carried between passes.
type Aggregator struct {
	norm     *colors.Normalizer
	visible  VisibilityFunc
	excluder *Excluder
	logger   *slog.Logger
}

// New creates an Aggregator.
func New(opts Options) *Aggregator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	norm := opts.Normalizer
	if norm == nil {
		norm = colors.NewNormalizer(nil, logger)
	}
	visible := opts.Visible
	if visible == nil {
		visible = ViewportVisibility(opts.Viewport)
	}
	excluder := opts.Excluder
	if excluder == nil {
		// The default selectors are constant and always compile.
		excluder, _ = NewExcluder()
	}
	return &Aggregator{
		norm:     norm,
		visible:  visible,
		excluder: excluder,
		logger:   logger,
	}
}

// Aggregate runs the color and font passes over one filtered sample set.
func (a *Aggregator) Aggregate(samples []StyleSample) Inventory {
	kept, stats := a.filter(samples)
	colorTokens, fallbacks := a.foldColors(kept)
	stats.FallbackColors = fallbacks
	return Inventory{
		Colors: colorTokens,
		Fonts:  a.foldFonts(kept),
		Stats:  stats,
	}
}

// AggregateColors returns the ranked color inventory.
func (a *Aggregator) AggregateColors(samples []StyleSample) []ColorToken {
	kept, _ := a.filter(samples)
	tokens, _ := a.foldColors(kept)
	return tokens
}

// AggregateFonts returns the ranked font inventory.
func (a *Aggregator) AggregateFonts(samples []StyleSample) []FontToken {
	kept, _ := a.filter(samples)
	return a.foldFonts(kept)
}

func (a *Aggregator) filter(samples []StyleSample) ([]StyleSample, Stats) {
	stats := Stats{Samples: len(samples)}
	kept := make([]StyleSample, 0, len(samples))
	for _, s := range samples {
		if a.excluder.Excluded(s) {
			stats.Excluded++
			continue
		}
		if !a.visible(s) {
			stats.Invisible++
			continue
		}
		kept = append(kept, s)
	}
	a.logger.Debug("samples filtered",
		"total", stats.Samples,
		"excluded", stats.Excluded,
		"invisible", stats.Invisible)
	return kept, stats
}

func (a *Aggregator) foldColors(samples []StyleSample) ([]ColorToken, int) {
	var tokens []*ColorToken
	index := make(map[string]*ColorToken)
	fallbacks := 0

	add := func(s StyleSample, raw string, role Role) {
		res := a.norm.Normalize(raw)
		if !res.OK() {
			return
		}
		if res.Fallback {
			fallbacks++
			a.logger.Debug("color tallied as fallback",
				"element", s.Label(),
				"role", role.String(),
				"value", raw)
		}
		tok, ok := index[res.Hex]
		if !ok {
			tok = &ColorToken{Hex: res.Hex}
			index[res.Hex] = tok
			tokens = append(tokens, tok)
		}
		tok.Count++
		tok.Roles = tok.Roles.With(role)
	}

	for _, s := range samples {
		add(s, s.Color, RoleText)
		add(s, s.BackgroundColor, RoleBackground)
		if hasBorder(s.BorderWidth) {
			add(s, s.BorderColor, RoleBorder)
		}
	}

	out := make([]ColorToken, len(tokens))
	for i, t := range tokens {
		out[i] = *t
	}
	slices.SortStableFunc(out, func(x, y ColorToken) int { return cmp.Compare(y.Count, x.Count) })
	return out, fallbacks
}

func (a *Aggregator) foldFonts(samples []StyleSample) []FontToken {
	type fontAcc struct {
		family  string
		count   int
		sizes   []float64
		weights []int
	}
	var accs []*fontAcc
	index := make(map[string]*fontAcc)

	for _, s := range samples {
		family := typography.PrimaryFamily(s.FontFamily)
		if family == "" || typography.IsGeneric(family) {
			continue
		}
		acc, ok := index[family]
		if !ok {
			acc = &fontAcc{family: family}
			index[family] = acc
			accs = append(accs, acc)
		}
		acc.count++

		if px, ok := typography.ParseSizePx(s.FontSize); ok {
			if !slices.Contains(acc.sizes, px) {
				acc.sizes = append(acc.sizes, px)
			}
		} else if s.FontSize != "" {
			a.logger.Debug("unparseable font size", "element", s.Label(), "value", s.FontSize)
		}
		if w, ok := typography.ParseWeight(s.FontWeight); ok {
			if !slices.Contains(acc.weights, w) {
				acc.weights = append(acc.weights, w)
			}
		} else if s.FontWeight != "" {
			a.logger.Debug("unparseable font weight", "element", s.Label(), "value", s.FontWeight)
		}
	}

	out := make([]FontToken, len(accs))
	for i, acc := range accs {
		slices.Sort(acc.sizes)
		slices.Sort(acc.weights)
		out[i] = FontToken{
			Family:  acc.family,
			Count:   acc.count,
			SizesPx: acc.sizes,
			Weights: acc.weights,
		}
	}
	slices.SortStableFunc(out, func(x, y FontToken) int { return cmp.Compare(y.Count, x.Count) })
	return out
}
