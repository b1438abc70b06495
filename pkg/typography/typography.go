// Package typography parses the font-related values of a computed style.
package typography

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// genericFamilies name no specific typeface and never become font tokens.
var genericFamilies = map[string]bool{
	"serif":      true,
	"sans-serif": true,
	"monospace":  true,
	"cursive":    true,
	"fantasy":    true,
	"system-ui":  true,
	"initial":    true,
	"inherit":    true,
}

// Named font weights.
const (
	WeightNormal = 400
	WeightBold   = 700
)

// PrimaryFamily returns the first family of a font-family declaration with
// quotes and surrounding whitespace removed. Quoted names may contain commas.
func PrimaryFamily(decl string) string {
	l := css.NewLexer(parse.NewInputString(decl))

	var parts []string
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken, css.CommaToken:
			return strings.TrimSpace(strings.Join(parts, " "))
		case css.StringToken:
			parts = append(parts, unquote(string(data)))
		case css.IdentToken, css.NumberToken, css.DimensionToken:
			parts = append(parts, unescape(string(data)))
		case css.WhitespaceToken, css.CommentToken:
		default:
			// Unbalanced or odd input: fall back to a plain split.
			first := decl
			if idx := nextTopLevelComma(decl); idx >= 0 {
				first = decl[:idx]
			}
			return strings.TrimSpace(unquote(strings.TrimSpace(first)))
		}
	}
}

// Stack returns every family of a font-family declaration in order.
func Stack(decl string) []string {
	var out []string
	rest := decl
	for rest != "" {
		first := PrimaryFamily(rest)
		if first != "" {
			out = append(out, first)
		}
		idx := nextTopLevelComma(rest)
		if idx < 0 {
			break
		}
		rest = rest[idx+1:]
	}
	return out
}

// nextTopLevelComma finds the first unescaped comma outside quotes.
func nextTopLevelComma(s string) int {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ',':
			return i
		}
	}
	return -1
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	} else if len(s) >= 1 && (s[0] == '"' || s[0] == '\'') {
		s = s[1:]
	}
	return strings.TrimSpace(unescape(s))
}

// unescape decodes CSS backslash escapes: up to six hex digits name a code
// point (one trailing whitespace is consumed), an escaped newline is a line
// continuation, and any other escaped character stands for itself.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		j := i + 1
		if j == len(s) {
			break
		}
		for j < len(s) && j < i+7 && isHex(s[j]) {
			j++
		}
		if j > i+1 {
			cp, _ := strconv.ParseUint(s[i+1:j], 16, 32)
			r := rune(cp)
			if cp == 0 || cp > unicode.MaxRune || (r >= 0xD800 && r <= 0xDFFF) {
				r = utf8.RuneError
			}
			b.WriteRune(r)
			if j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n') {
				j++
			}
			i = j - 1
			continue
		}
		if s[j] != '\n' {
			b.WriteByte(s[j])
		}
		i = j
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// IsGeneric reports whether name is a generic family or a CSS-wide keyword.
func IsGeneric(name string) bool {
	return genericFamilies[strings.ToLower(strings.TrimSpace(name))]
}

// ParseSizePx extracts the pixel value of a computed font size such as
// "16px". Unitless numbers are accepted as pixels; other units, negative
// values and non-finite values are rejected.
func ParseSizePx(v string) (float64, bool) {
	v = strings.TrimSpace(strings.ToLower(v))
	v = strings.TrimSuffix(v, "px")
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || !finite(f) || f < 0 {
		return 0, false
	}
	return f, true
}

// ParseWeight maps a font-weight value to its number: "normal" is 400,
// "bold" is 700, and numeric weights 1..1000 are taken as is.
func ParseWeight(v string) (int, bool) {
	v = strings.TrimSpace(strings.ToLower(v))
	switch v {
	case "normal":
		return WeightNormal, true
	case "bold":
		return WeightBold, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || !finite(f) || f < 1 || f > 1000 {
		return 0, false
	}
	return int(f), true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
