// Package tokens exports aggregated inventories as a design-token catalog.
package tokens

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// Catalog is a design-token catalog built from one inventory.
type Catalog struct {
	Name       string     `json:"name"`
	Version    string     `json:"version"`
	Source     string     `json:"source,omitempty"`
	Tokens     []Token    `json:"tokens"`
	Categories []Category `json:"categories"`
}

// CatalogIndex provides O(1) lookups into the catalog.
type CatalogIndex struct {
	// TokenByName maps token name -> *Token.
	TokenByName map[string]*Token

	// TokensByCategory maps category name -> []*Token in catalog order.
	TokensByCategory map[string][]*Token
}

var (
	validCategories = map[string]bool{
		CategoryColor:      true,
		CategoryFontFamily: true,
		CategoryFontSize:   true,
		CategoryFontWeight: true,
	}
	canonicalHex = regexp.MustCompile(`^#[0-9A-F]{6}$`)
)

// Validate checks the catalog for internal consistency.
// Returns a slice of validation errors (empty slice if valid).
func (c *Catalog) Validate() []error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, fmt.Errorf("catalog name is required"))
	}
	if c.Version == "" {
		errs = append(errs, fmt.Errorf("catalog version is required"))
	}

	names := make(map[string]bool, len(c.Tokens))
	for i, t := range c.Tokens {
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("tokens[%d]: name is required", i))
			continue
		}
		if names[t.Name] {
			errs = append(errs, fmt.Errorf("token %q: duplicate token name", t.Name))
			continue
		}
		names[t.Name] = true

		if !validCategories[t.Category] {
			errs = append(errs, fmt.Errorf("token %q: invalid category %q", t.Name, t.Category))
		}
		if t.Value == "" {
			errs = append(errs, fmt.Errorf("token %q: value is required", t.Name))
		}
		if t.Category == CategoryColor && t.Value != "" && !canonicalHex.MatchString(t.Value) {
			errs = append(errs, fmt.Errorf("token %q: color value %q is not canonical #RRGGBB", t.Name, t.Value))
		}
		if t.Category != CategoryColor && len(t.Roles) > 0 {
			errs = append(errs, fmt.Errorf("token %q: roles are only valid on color tokens", t.Name))
		}
	}

	seen := make(map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		if !validCategories[cat.Name] {
			errs = append(errs, fmt.Errorf("categories[%d]: invalid category %q", i, cat.Name))
			continue
		}
		if seen[cat.Name] {
			errs = append(errs, fmt.Errorf("categories[%d]: duplicate category name %q", i, cat.Name))
			continue
		}
		seen[cat.Name] = true
		for _, name := range cat.Tokens {
			if !names[name] {
				errs = append(errs, fmt.Errorf("category %q: references non-existent token %q", cat.Name, name))
			}
		}
	}

	return errs
}

// BuildIndex creates lookup maps for fast access.
// Should be called after Validate() passes.
func (c *Catalog) BuildIndex() *CatalogIndex {
	idx := &CatalogIndex{
		TokenByName:      make(map[string]*Token, len(c.Tokens)),
		TokensByCategory: make(map[string][]*Token, len(Categories)),
	}
	for i := range c.Tokens {
		t := &c.Tokens[i]
		idx.TokenByName[t.Name] = t
		idx.TokensByCategory[t.Category] = append(idx.TokensByCategory[t.Category], t)
	}
	return idx
}

// LoadFromFile loads a catalog from a JSON file, validates it, and builds the index.
func LoadFromFile(path string) (*Catalog, *CatalogIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses a catalog from raw JSON bytes, validates it, and builds the index.
func LoadFromBytes(data []byte) (*Catalog, *CatalogIndex, error) {
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}

	if errs := catalog.Validate(); len(errs) > 0 {
		return nil, nil, fmt.Errorf("catalog validation failed: %w", errors.Join(errs...))
	}

	return &catalog, catalog.BuildIndex(), nil
}

// SaveToFile validates the catalog and writes it as indented JSON.
func (c *Catalog) SaveToFile(path string) error {
	if errs := c.Validate(); len(errs) > 0 {
		return fmt.Errorf("catalog validation failed: %w", errors.Join(errs...))
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}
