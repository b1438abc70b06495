package colors

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// probeSVG is a 1x1 document whose only shape is filled with the probed color.
const probeSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="1" height="1" viewBox="0 0 1 1">` +
	`<rect x="0" y="0" width="1" height="1" fill="%s"/></svg>`

// rasterizeFill paints raw onto a transparent 1x1 surface and reads the pixel
// back. The surface lives only for the duration of the call.
func rasterizeFill(raw string) (color.NRGBA, error) {
	var esc bytes.Buffer
	if err := xml.EscapeText(&esc, []byte(strings.TrimSpace(raw))); err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	icon, err := oksvg.ReadIconStream(strings.NewReader(fmt.Sprintf(probeSVG, esc.String())), oksvg.StrictErrorMode)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q: %v", ErrUnparseable, raw, err)
	}
	icon.SetTarget(0, 0, 1, 1)

	dst := image.NewRGBA(image.Rect(0, 0, 1, 1))
	scanner := rasterx.NewScannerGV(1, 1, dst, dst.Bounds())
	dasher := rasterx.NewDasher(1, 1, scanner)
	icon.Draw(dasher, 1.0)

	return color.NRGBAModel.Convert(dst.At(0, 0)).(color.NRGBA), nil
}
