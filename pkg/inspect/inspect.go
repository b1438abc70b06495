// Package inspect reports the resolved visual properties of a single element.
package inspect

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/gnana997/stylelens/pkg/aggregate"
	"github.com/gnana997/stylelens/pkg/colors"
	"github.com/gnana997/stylelens/pkg/typography"
)

// CanvasHex is the backdrop assumed when neither the element nor any
// ancestor paints an opaque background.
const CanvasHex = "#FFFFFF"

// Report is the inspection result for one element.
type Report struct {
	Label  string  `json:"label"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Size   string  `json:"size"`

	Color      colors.Result `json:"color"`
	Background colors.Result `json:"background"`
	Border     colors.Result `json:"border"`

	// Backdrop is the color text is actually drawn on: the element's own
	// background, the nearest painted ancestor's, or CanvasHex.
	Backdrop       string `json:"backdrop"`
	BackdropSource string `json:"backdropSource"`

	FontFamily    string   `json:"fontFamily,omitempty"`
	FontStack     []string `json:"fontStack,omitempty"`
	FontSizePx    float64  `json:"fontSizePx,omitempty"`
	FontWeight    int      `json:"fontWeight,omitempty"`
	LineHeight    string   `json:"lineHeight,omitempty"`
	LetterSpacing string   `json:"letterSpacing,omitempty"`

	Contrast colors.Contrast `json:"contrast"`
}

// Backdrop sources.
const (
	BackdropSelf     = "self"
	BackdropAncestor = "ancestor"
	BackdropCanvas   = "canvas"
)

// Inspector builds Reports.
type Inspector struct {
	norm   *colors.Normalizer
	logger *slog.Logger
}

// New creates an Inspector. A nil normalizer selects the native one.
func New(norm *colors.Normalizer, logger *slog.Logger) *Inspector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if norm == nil {
		norm = colors.NewNormalizer(nil, logger)
	}
	return &Inspector{norm: norm, logger: logger}
}

// Inspect resolves the properties of s.
func (in *Inspector) Inspect(s aggregate.StyleSample) Report {
	r := Report{
		Label:         s.Label(),
		Width:         s.Rect.Width,
		Height:        s.Rect.Height,
		Size:          fmt.Sprintf("%d×%d", int(math.Round(s.Rect.Width)), int(math.Round(s.Rect.Height))),
		Color:         in.norm.Normalize(s.Color),
		Background:    in.norm.Normalize(s.BackgroundColor),
		FontFamily:    typography.PrimaryFamily(s.FontFamily),
		FontStack:     typography.Stack(s.FontFamily),
		LineHeight:    strings.TrimSpace(s.LineHeight),
		LetterSpacing: strings.TrimSpace(s.LetterSpacing),
	}
	if strings.TrimSpace(s.BorderColor) != "" {
		r.Border = in.norm.Normalize(s.BorderColor)
	}
	if px, ok := typography.ParseSizePx(s.FontSize); ok {
		r.FontSizePx = px
	}
	if w, ok := typography.ParseWeight(s.FontWeight); ok {
		r.FontWeight = w
	}

	r.Backdrop, r.BackdropSource = in.backdrop(r.Background, s.Ancestors)
	if r.Color.OK() {
		r.Contrast = colors.ContrastRatio(r.Color.Hex, r.Backdrop)
	}

	in.logger.Debug("element inspected",
		"element", r.Label,
		"color", r.Color.String(),
		"backdrop", r.Backdrop,
		"contrast", r.Contrast.Ratio)
	return r
}

func (in *Inspector) backdrop(own colors.Result, ancestors []aggregate.ElementRef) (string, string) {
	if own.OK() {
		return own.Hex, BackdropSelf
	}
	for i := len(ancestors) - 1; i >= 0; i-- {
		if bg := in.norm.Normalize(ancestors[i].BackgroundColor); bg.OK() {
			return bg.Hex, BackdropAncestor
		}
	}
	return CanvasHex, BackdropCanvas
}
