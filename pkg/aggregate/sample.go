package aggregate

import (
	"strconv"
	"strings"
)

// Rect is an element's bounding box in viewport coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Viewport is the visible area of the document at sampling time.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ElementRef identifies an ancestor element of a sample.
type ElementRef struct {
	Tag     string   `json:"tag"`
	ID      string   `json:"id,omitempty"`
	Classes []string `json:"classList,omitempty"`

	// BackgroundColor is the ancestor's resolved background, used by the
	// inspector to find the effective backdrop of transparent elements.
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// StyleSample is one element's resolved-style snapshot. Field names follow
// the host's computed-style property names.
type StyleSample struct {
	Tag     string   `json:"tag"`
	ID      string   `json:"id,omitempty"`
	Classes []string `json:"classList,omitempty"`

	Color           string `json:"color,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	BorderColor     string `json:"borderColor,omitempty"`
	BorderWidth     string `json:"borderWidth,omitempty"`

	FontFamily    string `json:"fontFamily,omitempty"`
	FontSize      string `json:"fontSize,omitempty"`
	FontWeight    string `json:"fontWeight,omitempty"`
	LineHeight    string `json:"lineHeight,omitempty"`
	LetterSpacing string `json:"letterSpacing,omitempty"`

	Display    string `json:"display,omitempty"`
	Visibility string `json:"visibility,omitempty"`
	Opacity    string `json:"opacity,omitempty"`

	Rect Rect `json:"rect"`

	// Ancestors lists the element's ancestors, outermost first. Optional.
	Ancestors []ElementRef `json:"ancestors,omitempty"`

	// Marked is set by hosts that tag the inspector's own UI themselves.
	Marked bool `json:"inspectorUI,omitempty"`
}

// Label returns a selector-like label such as "div#main.card.wide".
func (s StyleSample) Label() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(s.Tag))
	if s.ID != "" {
		b.WriteByte('#')
		b.WriteString(s.ID)
	}
	for _, c := range s.Classes {
		if c == "" {
			continue
		}
		b.WriteByte('.')
		b.WriteString(c)
	}
	return b.String()
}

// hasBorder reports whether the border width is a non-zero length. A
// shorthand such as "0px 1px" counts when any side is non-zero.
func hasBorder(width string) bool {
	for _, f := range strings.Fields(width) {
		v, err := strconv.ParseFloat(strings.TrimSuffix(strings.ToLower(f), "px"), 64)
		if err == nil && v > 0 {
			return true
		}
	}
	return false
}
