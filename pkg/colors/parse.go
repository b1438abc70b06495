package colors

import (
	"math"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

type argKind int

const (
	argNumber argKind = iota
	argPercent
	argAngle // value in degrees
	argNone  // the "none" keyword
)

// fnArg is one component of a CSS color function.
type fnArg struct {
	kind  argKind
	value float64
}

// colorFunc is a tokenized CSS color function such as "lab(50% 20 -30 / 0.5)".
type colorFunc struct {
	name  string // lower-cased, without the parenthesis
	space string // color() only: the predefined color space
	args  []fnArg
	alpha *fnArg
}

// parseFunc tokenizes raw as a single color function. Both the legacy comma
// syntax and the space/slash syntax are accepted.
func parseFunc(raw string) (colorFunc, bool) {
	var fn colorFunc

	l := css.NewLexer(parse.NewInputString(raw))
	tt, data := nextSignificant(l)
	if tt != css.FunctionToken {
		return fn, false
	}
	fn.name = strings.ToLower(strings.TrimSuffix(string(data), "("))

	var comps []fnArg
	slashAt := -1
	for {
		tt, data = l.Next()
		switch tt {
		case css.WhitespaceToken, css.CommentToken, css.CommaToken:
			continue
		case css.DelimToken:
			if string(data) != "/" || slashAt >= 0 {
				return fn, false
			}
			slashAt = len(comps)
			continue
		case css.NumberToken:
			v, err := strconv.ParseFloat(string(data), 64)
			if err != nil {
				return fn, false
			}
			comps = append(comps, fnArg{kind: argNumber, value: v})
			continue
		case css.PercentageToken:
			v, err := strconv.ParseFloat(strings.TrimSuffix(string(data), "%"), 64)
			if err != nil {
				return fn, false
			}
			comps = append(comps, fnArg{kind: argPercent, value: v})
			continue
		case css.DimensionToken:
			deg, ok := parseAngle(string(data))
			if !ok {
				return fn, false
			}
			comps = append(comps, fnArg{kind: argAngle, value: deg})
			continue
		case css.IdentToken:
			ident := strings.ToLower(string(data))
			switch {
			case ident == "none":
				comps = append(comps, fnArg{kind: argNone})
			case fn.name == "color" && fn.space == "" && len(comps) == 0:
				fn.space = ident
			default:
				return fn, false
			}
			continue
		case css.RightParenthesisToken:
		default:
			return fn, false
		}
		break
	}

	// Only whitespace may follow the closing parenthesis.
	if tt, _ = nextSignificant(l); tt != css.ErrorToken {
		return fn, false
	}

	switch {
	case slashAt >= 0:
		if len(comps) != slashAt+1 {
			return fn, false
		}
		a := comps[slashAt]
		fn.alpha = &a
		comps = comps[:slashAt]
	case len(comps) == 4:
		a := comps[3]
		fn.alpha = &a
		comps = comps[:3]
	}
	fn.args = comps
	return fn, true
}

func nextSignificant(l *css.Lexer) (css.TokenType, []byte) {
	for {
		tt, data := l.Next()
		if tt != css.WhitespaceToken && tt != css.CommentToken {
			return tt, data
		}
	}
}

// parseAngle converts a dimension such as "120deg" or "0.5turn" to degrees.
func parseAngle(dim string) (float64, bool) {
	i := len(dim)
	for i > 0 && isUnitByte(dim[i-1]) {
		i--
	}
	v, err := strconv.ParseFloat(dim[:i], 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToLower(dim[i:]) {
	case "deg":
		return v, true
	case "rad":
		return v * 180 / math.Pi, true
	case "grad":
		return v * 0.9, true
	case "turn":
		return v * 360, true
	}
	return 0, false
}

func isUnitByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// alphaValue maps an alpha component to 0..1.
func alphaValue(a fnArg) float64 {
	switch a.kind {
	case argPercent:
		return clamp01(a.value / 100)
	case argNone:
		return 0
	default:
		return clamp01(a.value)
	}
}

// matchDirect recognizes the encodings a renderer hands back verbatim:
// hex and rgb()/rgba().
func matchDirect(s string) (Result, bool) {
	if strings.HasPrefix(s, "#") {
		return parseHex(s)
	}
	if looksLikeRGB(s) {
		return parseRGB(s)
	}
	return Result{}, false
}

// looksLikeRGB reports whether s is shaped like an rgb()/rgba() value.
func looksLikeRGB(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba(")
}

func parseHex(s string) (Result, bool) {
	digits := s[1:]
	switch len(digits) {
	case 3, 4:
		var b strings.Builder
		for i := 0; i < len(digits); i++ {
			b.WriteByte(digits[i])
			b.WriteByte(digits[i])
		}
		digits = b.String()
	case 6, 8:
	default:
		return Result{}, false
	}

	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return Result{}, false
	}
	if len(digits) == 8 {
		if float64(v&0xff)/255 < alphaThreshold {
			return transparentResult, true
		}
		v >>= 8
	}
	return hexResult(uint8(v>>16), uint8(v>>8), uint8(v)), true
}

func parseRGB(s string) (Result, bool) {
	fn, ok := parseFunc(s)
	if !ok || (fn.name != "rgb" && fn.name != "rgba") || len(fn.args) != 3 {
		return Result{}, false
	}
	ch, ok := rgbChannels(fn.args)
	if !ok {
		return Result{}, false
	}
	if fn.alpha != nil && alphaValue(*fn.alpha) < alphaThreshold {
		return transparentResult, true
	}
	return hexResult(ch[0], ch[1], ch[2]), true
}

func rgbChannels(args []fnArg) ([3]uint8, bool) {
	var ch [3]uint8
	for i, a := range args {
		switch a.kind {
		case argNumber:
			ch[i] = clampByte(a.value)
		case argPercent:
			ch[i] = clampByte(a.value * 255 / 100)
		case argNone:
			ch[i] = 0
		default:
			return ch, false
		}
	}
	return ch, true
}

// isModernSpace reports whether s names one of the non-sRGB color functions.
func isModernSpace(s string) bool {
	s = strings.ToLower(s)
	for _, p := range []string{"lab(", "lch(", "oklab(", "oklch(", "color("} {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
