package tokens

// Token categories.
const (
	CategoryColor      = "color"
	CategoryFontFamily = "font-family"
	CategoryFontSize   = "font-size"
	CategoryFontWeight = "font-weight"
)

// Categories lists every token category in export order.
var Categories = []string{CategoryColor, CategoryFontFamily, CategoryFontSize, CategoryFontWeight}

// Token is one exported design token.
type Token struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Category string `json:"category"`

	// Count is how often the value was observed.
	Count int `json:"count,omitempty"`

	// Roles lists color usage roles. Colors only.
	Roles []string `json:"roles,omitempty"`
}

// Category groups token names.
type Category struct {
	Name   string   `json:"name"`
	Tokens []string `json:"tokens"`
}
