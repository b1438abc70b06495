package tokens

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/gosimple/slug"

	"github.com/gnana997/stylelens/pkg/aggregate"
)

// Version is the catalog format version written by Build.
const Version = "1.0"

// Build turns an inventory into a catalog. Colors are named by rank
// (color-1 is the most used), fonts by slugged family name, and sizes and
// weights by value. Sizes and weights count the families observed with them.
func Build(name, source string, inv aggregate.Inventory) *Catalog {
	b := &builder{used: make(map[string]bool)}

	for i, c := range inv.Colors {
		roles := make([]string, 0, 3)
		for _, r := range c.Roles.Roles() {
			roles = append(roles, r.String())
		}
		b.add(CategoryColor, fmt.Sprintf("color-%d", i+1), Token{Value: c.Hex, Count: c.Count, Roles: roles})
	}

	sizes := make(map[float64]int)
	weights := make(map[int]int)
	for _, f := range inv.Fonts {
		b.add(CategoryFontFamily, "font-"+slugOr(f.Family, "family"), Token{Value: f.Family, Count: f.Count})
		for _, px := range f.SizesPx {
			sizes[px]++
		}
		for _, w := range f.Weights {
			weights[w]++
		}
	}

	for _, px := range sortedKeys(sizes) {
		v := strconv.FormatFloat(px, 'f', -1, 64)
		b.add(CategoryFontSize, "font-size-"+slugOr(v, "size"), Token{Value: v + "px", Count: sizes[px]})
	}
	for _, w := range sortedKeys(weights) {
		v := strconv.Itoa(w)
		b.add(CategoryFontWeight, "font-weight-"+v, Token{Value: v, Count: weights[w]})
	}

	return &Catalog{
		Name:       name,
		Version:    Version,
		Source:     source,
		Tokens:     b.tokens,
		Categories: b.categories(),
	}
}

type builder struct {
	tokens []Token
	used   map[string]bool
}

// add appends a token under a unique name, suffixing -2, -3, ... on collision.
func (b *builder) add(category, name string, t Token) {
	unique := name
	for n := 2; b.used[unique]; n++ {
		unique = fmt.Sprintf("%s-%d", name, n)
	}
	b.used[unique] = true
	t.Name = unique
	t.Category = category
	b.tokens = append(b.tokens, t)
}

func (b *builder) categories() []Category {
	var out []Category
	for _, cat := range Categories {
		var names []string
		for _, t := range b.tokens {
			if t.Category == cat {
				names = append(names, t.Name)
			}
		}
		if len(names) > 0 {
			out = append(out, Category{Name: cat, Tokens: names})
		}
	}
	return out
}

func slugOr(s, fallback string) string {
	if v := slug.Make(s); v != "" {
		return v
	}
	return fallback
}

func sortedKeys[K int | float64](m map[K]int) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
