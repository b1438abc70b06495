package colors

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// NativeResolver resolves colors without a browser. Named colors and the
// CSS Color 4 functions are converted with go-colorful; Rasterize paints
// an SVG probe with oksvg.
type NativeResolver struct{}

// NewNativeResolver returns the native resolver.
func NewNativeResolver() *NativeResolver {
	return &NativeResolver{}
}

// ResolveComputed implements ColorSpaceResolver.
func (NativeResolver) ResolveComputed(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if c, ok := namedColor(s); ok {
		return formatRGB(c.R, c.G, c.B, 1), nil
	}

	fn, ok := parseFunc(s)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnparseable, raw)
	}
	c, err := convertFunc(fn)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrUnparseable, raw, err)
	}
	alpha := 1.0
	if fn.alpha != nil {
		alpha = alphaValue(*fn.alpha)
	}
	r, g, b := c.Clamped().RGB255()
	return formatRGB(r, g, b, alpha), nil
}

// Rasterize implements ColorSpaceResolver.
func (NativeResolver) Rasterize(raw string) (color.NRGBA, error) {
	return rasterizeFill(raw)
}

// namedColor looks up a CSS named color.
func namedColor(name string) (color.RGBA, bool) {
	if name == "rebeccapurple" {
		return color.RGBA{R: 0x66, G: 0x33, B: 0x99, A: 0xff}, true
	}
	c, ok := colornames.Map[name]
	return c, ok
}

// convertFunc converts a tokenized color function to sRGB.
func convertFunc(fn colorFunc) (colorful.Color, error) {
	if fn.name != "color" && len(fn.args) != 3 {
		return colorful.Color{}, fmt.Errorf("%s() takes 3 components, got %d", fn.name, len(fn.args))
	}

	switch fn.name {
	case "rgb", "rgba":
		ch, ok := rgbChannels(fn.args)
		if !ok {
			return colorful.Color{}, fmt.Errorf("invalid rgb components")
		}
		return colorful.Color{R: float64(ch[0]) / 255, G: float64(ch[1]) / 255, B: float64(ch[2]) / 255}, nil

	case "hsl", "hsla":
		h := hue(fn.args[0])
		s := unit(fn.args[1], 100)
		l := unit(fn.args[2], 100)
		return colorful.Hsl(h, s, l), nil

	case "hwb":
		h := hue(fn.args[0])
		w := unit(fn.args[1], 100)
		bl := unit(fn.args[2], 100)
		if w+bl >= 1 {
			gray := w / (w + bl)
			return colorful.Color{R: gray, G: gray, B: gray}, nil
		}
		v := 1 - bl
		return colorful.Hsv(h, 1-w/v, v), nil

	case "lab":
		l := scaled(fn.args[0], 1)
		a := scaled(fn.args[1], 1.25)
		b := scaled(fn.args[2], 1.25)
		return labD50(l, a, b), nil

	case "lch":
		l := scaled(fn.args[0], 1)
		c := scaled(fn.args[1], 1.5)
		h := hue(fn.args[2]) * math.Pi / 180
		return labD50(l, c*math.Cos(h), c*math.Sin(h)), nil

	case "oklab":
		l := unit(fn.args[0], 1)
		a := scaled(fn.args[1], 0.004)
		b := scaled(fn.args[2], 0.004)
		return colorful.OkLab(l, a, b), nil

	case "oklch":
		l := unit(fn.args[0], 1)
		c := scaled(fn.args[1], 0.004)
		return colorful.OkLch(l, c, hue(fn.args[2])), nil

	case "color":
		return convertPredefined(fn)
	}
	return colorful.Color{}, fmt.Errorf("unsupported color function %s()", fn.name)
}

// convertPredefined handles color(<space> c1 c2 c3).
func convertPredefined(fn colorFunc) (colorful.Color, error) {
	if len(fn.args) != 3 {
		return colorful.Color{}, fmt.Errorf("color() takes 3 components, got %d", len(fn.args))
	}
	c1 := unit(fn.args[0], 1)
	c2 := unit(fn.args[1], 1)
	c3 := unit(fn.args[2], 1)

	switch fn.space {
	case "srgb":
		return colorful.Color{R: c1, G: c2, B: c3}, nil
	case "srgb-linear":
		return colorful.LinearRgb(c1, c2, c3), nil
	case "display-p3":
		lin := [3]float64{srgbLinearize(c1), srgbLinearize(c2), srgbLinearize(c3)}
		x, y, z := mulMatrix(displayP3ToXYZ, lin)
		return colorful.Xyz(x, y, z), nil
	case "xyz", "xyz-d65":
		return colorful.Xyz(c1, c2, c3), nil
	case "xyz-d50":
		x, y, z := mulMatrix(bradfordD50ToD65, [3]float64{c1, c2, c3})
		return colorful.Xyz(x, y, z), nil
	}
	return colorful.Color{}, fmt.Errorf("unsupported color space %q", fn.space)
}

// labD50 converts CIE Lab (L 0..100, D50 white, as CSS defines it) to sRGB.
func labD50(l, a, b float64) colorful.Color {
	x, y, z := colorful.LabToXyzWhiteRef(l/100, a/100, b/100, colorful.D50)
	x, y, z = mulMatrix(bradfordD50ToD65, [3]float64{x, y, z})
	return colorful.Xyz(x, y, z)
}

// hue returns an angle component in degrees, normalized to [0, 360).
func hue(a fnArg) float64 {
	if a.kind == argNone {
		return 0
	}
	h := math.Mod(a.value, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// unit maps a component to 0..1; percentages map 100% to 1 and plain
// numbers are divided by numberScale.
func unit(a fnArg, numberScale float64) float64 {
	switch a.kind {
	case argPercent:
		return clamp01(a.value / 100)
	case argNone:
		return 0
	default:
		return clamp01(a.value / numberScale)
	}
}

// scaled returns a signed component; 1% equals percentScale.
func scaled(a fnArg, percentScale float64) float64 {
	switch a.kind {
	case argPercent:
		return a.value * percentScale
	case argNone:
		return 0
	default:
		return a.value
	}
}

func srgbLinearize(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

var (
	displayP3ToXYZ = [3][3]float64{
		{0.4865709486482162, 0.26566769316909306, 0.1982172852343625},
		{0.2289745640697488, 0.6917385218365064, 0.079286914093745},
		{0.0, 0.04511338185890264, 1.043944368900976},
	}
	bradfordD50ToD65 = [3][3]float64{
		{0.955473421488075, -0.02309845494876471, 0.06325924320057072},
		{-0.0283697093338637, 1.0099953980813041, 0.021041441191917323},
		{0.012314014864481998, -0.020507649298898964, 1.330365926242124},
	}
)

func mulMatrix(m [3][3]float64, v [3]float64) (float64, float64, float64) {
	return m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2]
}
