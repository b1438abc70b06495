// Package colors converts CSS color values into canonical #RRGGBB form and
// computes WCAG luminance and contrast from that form.
//
// Normalization escalates through a fixed sequence of strategies:
//
//  1. direct syntactic match for hex, rgb() and rgba()
//  2. ColorSpaceResolver.ResolveComputed, re-entering step 1 once when the
//     resolver answers with an rgb()-shaped string
//  3. ColorSpaceResolver.Rasterize, reading back a single RGBA8 pixel
//  4. the FallbackHex sentinel
//
// Normalize never returns an error: aggregation over an arbitrary document
// must keep going when a single value cannot be resolved.
package colors

import (
	"fmt"
	"image/color"
	"log/slog"
	"strings"
)

// Normalizer maps raw CSS color strings to Results. It holds no mutable
// state and is safe for concurrent use if its resolver is.
type Normalizer struct {
	resolver ColorSpaceResolver
	logger   *slog.Logger
}

// NewNormalizer creates a Normalizer. A nil resolver selects the
// NativeResolver; a nil logger discards output.
func NewNormalizer(resolver ColorSpaceResolver, logger *slog.Logger) *Normalizer {
	if resolver == nil {
		resolver = NewNativeResolver()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Normalizer{resolver: resolver, logger: logger}
}

// Normalize converts raw to its canonical form.
func (n *Normalizer) Normalize(raw string) Result {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "transparent") {
		return transparentResult
	}

	if r, ok := matchDirect(s); ok {
		return r
	}

	resolved, err := n.resolveComputed(s)
	switch {
	case err != nil:
		n.logger.Debug("computed color resolution failed", "value", s, "error", err)
	case resolved != s && looksLikeRGB(resolved):
		// Single re-entry: the resolved string is matched, never resolved again.
		if r, ok := matchDirect(strings.TrimSpace(resolved)); ok {
			return r
		}
	}

	px, err := n.rasterize(s)
	if err == nil {
		if px.A < pixelAlphaThreshold {
			return transparentResult
		}
		return hexResult(px.R, px.G, px.B)
	}
	n.logger.Debug("color rasterization failed", "value", s, "error", err)

	n.logger.Debug("color unresolved, using fallback",
		"value", s,
		"modernSpace", isModernSpace(s),
		"fallback", FallbackHex)
	return fallbackResult()
}

// Contrast normalizes two colors and returns their contrast.
func (n *Normalizer) Contrast(fg, bg string) Contrast {
	return ContrastOf(n.Normalize(fg), n.Normalize(bg))
}

func (n *Normalizer) resolveComputed(s string) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrProbeFailure, p)
		}
	}()
	return n.resolver.ResolveComputed(s)
}

func (n *Normalizer) rasterize(s string) (px color.NRGBA, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrProbeFailure, p)
		}
	}()
	return n.resolver.Rasterize(s)
}
