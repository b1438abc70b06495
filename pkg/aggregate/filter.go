package aggregate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Reserved markers carried by the inspector's own injected UI.
const (
	MarkerClass = "style-inspector-ui"
	MarkerID    = "style-inspector-panel"
)

// DefaultExcludeSelectors matches the inspector UI by its reserved markers.
var DefaultExcludeSelectors = []string{"." + MarkerClass, "#" + MarkerID}

// VisibilityFunc decides whether a sample is currently visible.
type VisibilityFunc func(StyleSample) bool

// ViewportVisibility returns the default visibility predicate: the element
// has a non-empty box, is displayed, not hidden, not fully transparent, and
// its box intersects the viewport on all four edges. A zero viewport skips
// the intersection test.
func ViewportVisibility(vp Viewport) VisibilityFunc {
	return func(s StyleSample) bool {
		r := s.Rect
		if r.Width <= 0 || r.Height <= 0 {
			return false
		}
		if strings.EqualFold(strings.TrimSpace(s.Display), "none") {
			return false
		}
		if strings.EqualFold(strings.TrimSpace(s.Visibility), "hidden") {
			return false
		}
		if op := strings.TrimSpace(s.Opacity); op != "" {
			if v, err := strconv.ParseFloat(op, 64); err == nil && v == 0 {
				return false
			}
		}
		if vp.Width <= 0 || vp.Height <= 0 {
			return true
		}
		return r.Bottom() > 0 && r.Right() > 0 && r.Top() < vp.Height && r.Left() < vp.Width
	}
}

// Excluder recognizes samples belonging to the inspector's own UI subtree.
// A sample is excluded when it, or any of its ancestors, matches one of the
// selectors.
type Excluder struct {
	sel cascadia.SelectorGroup
}

// NewExcluder compiles a selector group. With no selectors the reserved
// markers are used.
func NewExcluder(selectors ...string) (*Excluder, error) {
	if len(selectors) == 0 {
		selectors = DefaultExcludeSelectors
	}
	sel, err := cascadia.ParseGroup(strings.Join(selectors, ", "))
	if err != nil {
		return nil, fmt.Errorf("invalid exclusion selector %q: %w", strings.Join(selectors, ", "), err)
	}
	return &Excluder{sel: sel}, nil
}

// Excluded reports whether s belongs to the inspector UI.
func (e *Excluder) Excluded(s StyleSample) bool {
	if s.Marked {
		return true
	}
	if e == nil {
		return false
	}
	for n := elementChain(s); n != nil; n = n.Parent {
		if n.Type == html.ElementNode && e.sel.Match(n) {
			return true
		}
	}
	return false
}

// elementChain builds a detached node for s with its ancestors linked as
// parents, so descendant and child combinators resolve.
func elementChain(s StyleSample) *html.Node {
	var parent *html.Node
	for _, a := range s.Ancestors {
		n := elementNode(a.Tag, a.ID, a.Classes)
		if parent != nil {
			parent.AppendChild(n)
		}
		parent = n
	}
	n := elementNode(s.Tag, s.ID, s.Classes)
	if parent != nil {
		parent.AppendChild(n)
	}
	return n
}

func elementNode(tag, id string, classes []string) *html.Node {
	if tag == "" {
		tag = "div"
	}
	n := &html.Node{Type: html.ElementNode, Data: strings.ToLower(tag)}
	if id != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "id", Val: id})
	}
	if len(classes) > 0 {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: strings.Join(classes, " ")})
	}
	return n
}
