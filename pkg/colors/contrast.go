package colors

import (
	"fmt"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Level is a WCAG 2.x conformance level for a contrast ratio.
type Level string

const (
	LevelAAA     Level = "AAA"
	LevelAA      Level = "AA"
	LevelAALarge Level = "AA-LARGE"
	LevelFail    Level = "FAIL"
)

// Contrast is a WCAG contrast ratio between two colors. When either color is
// transparent or invalid the contrast is undefined: Defined is false, Ratio is
// zero and Level is empty.
type Contrast struct {
	Ratio   float64 `json:"ratio,omitempty"`
	Level   Level   `json:"level,omitempty"`
	Defined bool    `json:"defined"`
}

// Luminance returns the WCAG 2.x relative luminance of a #RRGGBB or #RGB color.
func Luminance(hex string) (float64, error) {
	hex = strings.TrimSpace(hex)
	if len(hex) != 4 && len(hex) != 7 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHex, hex)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHex, hex)
	}
	return 0.2126*gammaExpand(c.R) + 0.7152*gammaExpand(c.G) + 0.0722*gammaExpand(c.B), nil
}

// gammaExpand linearizes an sRGB channel with the WCAG 2.x threshold.
func gammaExpand(c float64) float64 {
	if c <= 0.03928 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// ContrastRatio returns the contrast between two hex colors, rounded to two
// decimals. The level is classified on the unrounded ratio, so a ratio just
// below a threshold may display as 4.50 or 7.00 and still carry the lower
// level.
func ContrastRatio(hexA, hexB string) Contrast {
	la, err := Luminance(hexA)
	if err != nil {
		return Contrast{}
	}
	lb, err := Luminance(hexB)
	if err != nil {
		return Contrast{}
	}
	hi, lo := math.Max(la, lb), math.Min(la, lb)
	ratio := (hi + 0.05) / (lo + 0.05)
	return Contrast{
		Ratio:   math.Round(ratio*100) / 100,
		Level:   classify(ratio),
		Defined: true,
	}
}

// ContrastOf returns the contrast between two normalized colors.
func ContrastOf(a, b Result) Contrast {
	if !a.OK() || !b.OK() {
		return Contrast{}
	}
	return ContrastRatio(a.Hex, b.Hex)
}

func classify(ratio float64) Level {
	switch {
	case ratio >= 7:
		return LevelAAA
	case ratio >= 4.5:
		return LevelAA
	case ratio >= 3:
		return LevelAALarge
	default:
		return LevelFail
	}
}
