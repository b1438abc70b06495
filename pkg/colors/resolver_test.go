package colors

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- NativeResolver ---

func TestNativeResolver_NamedColors(t *testing.T) {
	r := NewNativeResolver()

	got, err := r.ResolveComputed("Red")
	require.NoError(t, err)
	assert.Equal(t, "rgb(255, 0, 0)", got)

	got, err = r.ResolveComputed("rebeccapurple")
	require.NoError(t, err)
	assert.Equal(t, "rgb(102, 51, 153)", got)

	got, err = r.ResolveComputed("cornflowerblue")
	require.NoError(t, err)
	assert.Equal(t, "rgb(100, 149, 237)", got)
}

func TestNativeResolver_Functions(t *testing.T) {
	r := NewNativeResolver()
	for _, tc := range []struct {
		in, want string
	}{
		{"hsl(0, 100%, 50%)", "rgb(255, 0, 0)"},
		{"hsl(120deg 100% 25%)", "rgb(0, 128, 0)"},
		{"hsla(240, 100%, 50%, 0.5)", "rgba(0, 0, 255, 0.5)"},
		{"hwb(0 0% 0%)", "rgb(255, 0, 0)"},
		{"hwb(0 50% 50%)", "rgb(128, 128, 128)"},
		{"oklch(1 0 0)", "rgb(255, 255, 255)"},
		{"oklch(0 0 0)", "rgb(0, 0, 0)"},
		{"oklab(100% 0 0)", "rgb(255, 255, 255)"},
		{"lab(0 0 0)", "rgb(0, 0, 0)"},
		{"lch(0% 0 0)", "rgb(0, 0, 0)"},
		{"color(srgb 1 0 0)", "rgb(255, 0, 0)"},
		{"color(srgb 0 0 1 / 25%)", "rgba(0, 0, 255, 0.25)"},
		{"color(srgb-linear 0 0 0)", "rgb(0, 0, 0)"},
		{"rgb(10 20 30)", "rgb(10, 20, 30)"},
	} {
		got, err := r.ResolveComputed(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestNativeResolver_LabIsNearWhiteAtFullLightness(t *testing.T) {
	got, err := NewNativeResolver().ResolveComputed("lab(100 0 0)")
	require.NoError(t, err)

	res, ok := matchDirect(got)
	require.True(t, ok)
	l, err := Luminance(res.Hex)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, l, 0.02)
}

func TestNativeResolver_Unparseable(t *testing.T) {
	r := NewNativeResolver()
	for _, in := range []string{
		"", "notacolor", "lab(1 2)", "oklch(a b c)", "color(rec2020 1 0 0)", "lab(1 2 3) extra", "foo(1 2 3)",
	} {
		_, err := r.ResolveComputed(in)
		assert.True(t, errors.Is(err, ErrUnparseable), in)
	}
}

func TestNativeResolver_Rasterize(t *testing.T) {
	px, err := NewNativeResolver().Rasterize("red")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, px.R, uint8(250))
	assert.LessOrEqual(t, px.G, uint8(5))
	assert.LessOrEqual(t, px.B, uint8(5))
	assert.GreaterOrEqual(t, px.A, uint8(250))
}

// --- parseFunc ---

func TestParseFunc(t *testing.T) {
	fn, ok := parseFunc("LAB(50% -20 30 / 0.4)")
	require.True(t, ok)
	assert.Equal(t, "lab", fn.name)
	assert.Equal(t, []fnArg{{argPercent, 50}, {argNumber, -20}, {argNumber, 30}}, fn.args)
	require.NotNil(t, fn.alpha)
	assert.Equal(t, 0.4, fn.alpha.value)

	fn, ok = parseFunc("hsl(0.5turn none 10%)")
	require.True(t, ok)
	assert.Equal(t, fnArg{argAngle, 180}, fn.args[0])
	assert.Equal(t, argNone, fn.args[1].kind)

	fn, ok = parseFunc("color(display-p3 1 0.5 0)")
	require.True(t, ok)
	assert.Equal(t, "display-p3", fn.space)
	assert.Len(t, fn.args, 3)

	for _, bad := range []string{"rgb(1 2 3", "rgb(1 / 2 / 3)", "rgb(1px 2 3)", "red", "rgb(1 2 3) x"} {
		_, ok := parseFunc(bad)
		assert.False(t, ok, bad)
	}
}

// --- HostResolver ---

type fakeProbe struct {
	computed string
	pixel    [4]uint8
	panic    bool
	closed   *int
}

func (p *fakeProbe) ComputedColor(string) (string, error) {
	if p.panic {
		panic("element detached mid-probe")
	}
	return p.computed, nil
}

func (p *fakeProbe) Pixel(string) ([4]uint8, error) {
	if p.panic {
		panic("canvas context lost")
	}
	return p.pixel, nil
}

func (p *fakeProbe) Close() error {
	*p.closed++
	return nil
}

func TestHostResolver_ClosesProbe(t *testing.T) {
	closed, opened := 0, 0
	h := NewHostResolver(func() (Probe, error) {
		opened++
		return &fakeProbe{computed: "rgb(1, 2, 3)", pixel: [4]uint8{4, 5, 6, 255}, closed: &closed}, nil
	}, nil)

	got, err := h.ResolveComputed("lab(1 2 3)")
	require.NoError(t, err)
	assert.Equal(t, "rgb(1, 2, 3)", got)

	px, err := h.Rasterize("lab(1 2 3)")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 4, G: 5, B: 6, A: 255}, px)

	assert.Equal(t, 2, opened)
	assert.Equal(t, 2, closed)
}

func TestHostResolver_ClosesProbeOnPanic(t *testing.T) {
	closed := 0
	h := NewHostResolver(func() (Probe, error) {
		return &fakeProbe{panic: true, closed: &closed}, nil
	}, nil)

	_, err := h.ResolveComputed("lab(1 2 3)")
	assert.True(t, errors.Is(err, ErrProbeFailure))
	_, err = h.Rasterize("lab(1 2 3)")
	assert.True(t, errors.Is(err, ErrProbeFailure))
	assert.Equal(t, 2, closed)
}

func TestHostResolver_OpenFailure(t *testing.T) {
	h := NewHostResolver(func() (Probe, error) { return nil, errors.New("no document") }, nil)
	_, err := h.ResolveComputed("red")
	assert.True(t, errors.Is(err, ErrProbeFailure))

	var nilFactory HostResolver
	_, err = nilFactory.Rasterize("red")
	assert.True(t, errors.Is(err, ErrProbeFailure))
}

func TestHostResolver_InNormalizer(t *testing.T) {
	closed := 0
	h := NewHostResolver(func() (Probe, error) {
		return &fakeProbe{computed: "lab(50 0 0)", pixel: [4]uint8{119, 119, 119, 255}, closed: &closed}, nil
	}, nil)
	n := NewNormalizer(h, nil)

	// Computed value stays in lab space, so the raster probe decides.
	assert.Equal(t, "#777777", n.Normalize("lab(50 0 0)").Hex)
	assert.Equal(t, 2, closed)
}

// --- CachedResolver ---

func TestCachedResolver_Memoizes(t *testing.T) {
	s := &stubResolver{
		computed: map[string]string{"teal": "rgb(0, 128, 128)"},
		pixels:   map[string]color.NRGBA{"x": {A: 255}},
	}
	c, err := NewCachedResolver(s, 0)
	require.NoError(t, err)

	for range 3 {
		v, err := c.ResolveComputed("teal")
		require.NoError(t, err)
		assert.Equal(t, "rgb(0, 128, 128)", v)

		_, err = c.ResolveComputed("missing")
		assert.Error(t, err)

		_, err = c.Rasterize("x")
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"teal", "missing"}, s.computedCalls)
	assert.Equal(t, []string{"x"}, s.rasterCalls)
	assert.Equal(t, 2, c.Len())
}
