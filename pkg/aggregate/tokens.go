package aggregate

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the CSS property category a color was observed filling.
type Role uint8

const (
	RoleText Role = 1 << iota
	RoleBackground
	RoleBorder
)

var roleNames = []struct {
	role Role
	name string
}{
	{RoleText, "TEXT"},
	{RoleBackground, "BACKGROUND"},
	{RoleBorder, "BORDER"},
}

func (r Role) String() string {
	for _, rn := range roleNames {
		if rn.role == r {
			return rn.name
		}
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// RoleSet is a set of roles.
type RoleSet uint8

// Has reports whether r is in the set.
func (s RoleSet) Has(r Role) bool { return s&RoleSet(r) != 0 }

// With returns the set with r added.
func (s RoleSet) With(r Role) RoleSet { return s | RoleSet(r) }

// Roles lists the members in TEXT, BACKGROUND, BORDER order.
func (s RoleSet) Roles() []Role {
	var out []Role
	for _, rn := range roleNames {
		if s.Has(rn.role) {
			out = append(out, rn.role)
		}
	}
	return out
}

func (s RoleSet) String() string {
	names := make([]string, 0, 3)
	for _, r := range s.Roles() {
		names = append(names, r.String())
	}
	return strings.Join(names, ",")
}

// MarshalJSON encodes the set as a list of role names.
func (s RoleSet) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, 3)
	for _, r := range s.Roles() {
		names = append(names, r.String())
	}
	return json.Marshal(names)
}

// UnmarshalJSON decodes a list of role names.
func (s *RoleSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	var out RoleSet
	for _, n := range names {
		found := false
		for _, rn := range roleNames {
			if strings.EqualFold(rn.name, n) {
				out = out.With(rn.role)
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown usage role %q", n)
		}
	}
	*s = out
	return nil
}

// ColorToken is one distinct canonical color observed in the document.
type ColorToken struct {
	Hex   string  `json:"hex"`
	Count int     `json:"count"`
	Roles RoleSet `json:"roles"`
}

// FontToken is one distinct primary font family observed in the document.
type FontToken struct {
	Family  string    `json:"family"`
	Count   int       `json:"count"`
	SizesPx []float64 `json:"sizesPx"`
	Weights []int     `json:"weights"`
}

// Stats describes how the samples of one pass were treated.
type Stats struct {
	Samples   int `json:"samples"`
	Excluded  int `json:"excluded"`
	Invisible int `json:"invisible"`

	// FallbackColors counts color values that could not be resolved and were
	// tallied as the fallback black.
	FallbackColors int `json:"fallbackColors"`
}

// Inventory is the result of one aggregation pass.
type Inventory struct {
	Colors []ColorToken `json:"colors"`
	Fonts  []FontToken  `json:"fonts"`
	Stats  Stats        `json:"stats"`
}
