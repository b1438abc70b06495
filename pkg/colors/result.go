package colors

import (
	"errors"
	"fmt"
	"math"
)

// Alpha thresholds below which a color counts as absent.
const (
	// alphaThreshold applies to alpha channels parsed from text (0..1).
	alphaThreshold = 0.01
	// pixelAlphaThreshold applies to rasterized RGBA8 pixels (0..255).
	pixelAlphaThreshold = 10
)

// FallbackHex is returned for strings no strategy could resolve.
const FallbackHex = "#000000"

var (
	// ErrUnparseable is returned by resolvers for strings they do not understand.
	// Normalize never surfaces it; unresolved input degrades to FallbackHex.
	ErrUnparseable = errors.New("unparseable color")

	// ErrProbeFailure wraps errors and panics raised by a resolution probe.
	ErrProbeFailure = errors.New("color probe failed")

	// ErrInvalidHex is returned by the luminance helpers for non-hex input.
	ErrInvalidHex = errors.New("invalid hex color")
)

// Result is the outcome of normalizing one color string.
type Result struct {
	// Hex is the canonical uppercase #RRGGBB form. Empty when Transparent.
	Hex string `json:"hex,omitempty"`

	// Transparent reports a color that is absent or nearly invisible.
	Transparent bool `json:"transparent,omitempty"`

	// Fallback marks the FallbackHex sentinel produced for unresolvable input.
	Fallback bool `json:"fallback,omitempty"`
}

// OK reports whether r carries a concrete color.
func (r Result) OK() bool {
	return !r.Transparent && r.Hex != ""
}

// String returns the hex form, or "transparent".
func (r Result) String() string {
	if r.Transparent {
		return "transparent"
	}
	return r.Hex
}

var transparentResult = Result{Transparent: true}

func fallbackResult() Result {
	return Result{Hex: FallbackHex, Fallback: true}
}

func hexResult(r, g, b uint8) Result {
	return Result{Hex: formatHex(r, g, b)}
}

func formatHex(r, g, b uint8) string {
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// clampByte rounds a channel value to the nearest byte.
func clampByte(v float64) uint8 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(math.Round(v))
	}
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
