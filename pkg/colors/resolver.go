package colors

import (
	"fmt"
	"image/color"
	"strconv"
)

// ColorSpaceResolver resolves color strings the syntactic matcher does not
// understand. NativeResolver implements it with color-space math;
// HostResolver delegates to probes supplied by a browser host.
type ColorSpaceResolver interface {
	// ResolveComputed returns the rendered form of raw, normally
	// "rgb(r, g, b)" or "rgba(r, g, b, a)". Renderers that keep values in
	// their original space may return something else.
	ResolveComputed(raw string) (string, error)

	// Rasterize paints raw onto a 1x1 surface and returns the pixel.
	Rasterize(raw string) (color.NRGBA, error)
}

// formatRGB renders channels the way a computed style reports them.
func formatRGB(r, g, b uint8, alpha float64) string {
	if alpha >= 1 {
		return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(alpha, 'f', -1, 64))
}
