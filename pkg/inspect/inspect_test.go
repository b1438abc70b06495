package inspect

import (
	"testing"

	"github.com/gnana997/stylelens/pkg/aggregate"
	"github.com/gnana997/stylelens/pkg/colors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect_FullReport(t *testing.T) {
	s := aggregate.StyleSample{
		Tag:             "BUTTON",
		ID:              "save",
		Classes:         []string{"btn", "primary"},
		Color:           "rgb(255, 255, 255)",
		BackgroundColor: "rgb(0, 0, 0)",
		BorderColor:     "#336699",
		BorderWidth:     "1px",
		FontFamily:      `"Helvetica Neue", Arial, sans-serif`,
		FontSize:        "14px",
		FontWeight:      "bold",
		LineHeight:      "20px",
		LetterSpacing:   "normal",
		Rect:            aggregate.Rect{X: 4, Y: 4, Width: 120.4, Height: 31.6},
	}

	r := New(nil, nil).Inspect(s)

	assert.Equal(t, "button#save.btn.primary", r.Label)
	assert.Equal(t, "120×32", r.Size)
	assert.Equal(t, "#FFFFFF", r.Color.Hex)
	assert.Equal(t, "#000000", r.Background.Hex)
	assert.Equal(t, "#336699", r.Border.Hex)
	assert.Equal(t, "Helvetica Neue", r.FontFamily)
	assert.Equal(t, []string{"Helvetica Neue", "Arial", "sans-serif"}, r.FontStack)
	assert.Equal(t, 14.0, r.FontSizePx)
	assert.Equal(t, 700, r.FontWeight)
	assert.Equal(t, "20px", r.LineHeight)
	assert.Equal(t, "normal", r.LetterSpacing)

	assert.Equal(t, "#000000", r.Backdrop)
	assert.Equal(t, BackdropSelf, r.BackdropSource)
	assert.True(t, r.Contrast.Defined)
	assert.Equal(t, 21.0, r.Contrast.Ratio)
	assert.Equal(t, colors.LevelAAA, r.Contrast.Level)
}

func TestInspect_BackdropFromNearestAncestor(t *testing.T) {
	s := aggregate.StyleSample{
		Tag:             "span",
		Color:           "#767676",
		BackgroundColor: "rgba(0, 0, 0, 0)",
		Ancestors: []aggregate.ElementRef{
			{Tag: "body", BackgroundColor: "rgb(0, 0, 0)"},
			{Tag: "main", BackgroundColor: "rgb(255, 255, 255)"},
			{Tag: "p", BackgroundColor: "transparent"},
		},
	}

	r := New(nil, nil).Inspect(s)
	assert.True(t, r.Background.Transparent)
	assert.Equal(t, "#FFFFFF", r.Backdrop)
	assert.Equal(t, BackdropAncestor, r.BackdropSource)
	assert.Equal(t, 4.54, r.Contrast.Ratio)
	assert.Equal(t, colors.LevelAA, r.Contrast.Level)
}

func TestInspect_CanvasBackdrop(t *testing.T) {
	r := New(nil, nil).Inspect(aggregate.StyleSample{Tag: "p", Color: "#CCCCCC"})
	assert.Equal(t, CanvasHex, r.Backdrop)
	assert.Equal(t, BackdropCanvas, r.BackdropSource)
	assert.Equal(t, colors.LevelFail, r.Contrast.Level)
}

func TestInspect_TransparentTextHasNoContrast(t *testing.T) {
	r := New(nil, nil).Inspect(aggregate.StyleSample{
		Tag:             "p",
		Color:           "transparent",
		BackgroundColor: "white",
	})
	require.True(t, r.Color.Transparent)
	assert.False(t, r.Contrast.Defined)
	assert.Empty(t, r.Border.Hex)
	assert.Zero(t, r.FontWeight)
}
