package tokens

import "strings"

// QueryService provides read-only query methods over a loaded catalog.
type QueryService struct {
	Catalog *Catalog
	Index   *CatalogIndex
}

// NewQueryService creates a QueryService from a validated catalog and its index.
func NewQueryService(cat *Catalog, idx *CatalogIndex) *QueryService {
	if idx == nil {
		idx = cat.BuildIndex()
	}
	return &QueryService{Catalog: cat, Index: idx}
}

// LoadAndQuery loads a catalog from file and returns a ready-to-use QueryService.
func LoadAndQuery(path string) (*QueryService, error) {
	cat, idx, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	return NewQueryService(cat, idx), nil
}

// ListCategories returns all categories in the catalog.
func (q *QueryService) ListCategories() []Category {
	return q.Catalog.Categories
}

// GetTokens returns design tokens, optionally filtered by category.
// Pass "" to return all tokens.
func (q *QueryService) GetTokens(category string) []Token {
	if category == "" {
		return q.Catalog.Tokens
	}
	result := make([]Token, 0)
	for _, t := range q.Index.TokensByCategory[category] {
		result = append(result, *t)
	}
	return result
}

// GetToken looks up a token by name.
func (q *QueryService) GetToken(name string) (*Token, bool) {
	t, ok := q.Index.TokenByName[name]
	return t, ok
}

// SearchTokens matches tokens whose name or value contains query,
// case-insensitively.
func (q *QueryService) SearchTokens(query string) []Token {
	query = strings.ToLower(query)
	if query == "" {
		return nil
	}
	var result []Token
	for _, t := range q.Catalog.Tokens {
		if strings.Contains(strings.ToLower(t.Name), query) || strings.Contains(strings.ToLower(t.Value), query) {
			result = append(result, t)
		}
	}
	return result
}
