package aggregate

import (
	"encoding/json"
	"image/color"
	"testing"

	"github.com/gnana997/stylelens/pkg/colors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testViewport = Viewport{Width: 1024, Height: 768}

func visibleSample(tag string) StyleSample {
	return StyleSample{
		Tag:     tag,
		Display: "block",
		Opacity: "1",
		Rect:    Rect{X: 10, Y: 10, Width: 100, Height: 20},
	}
}

func withColors(text, bg string) StyleSample {
	s := visibleSample("p")
	s.Color = text
	s.BackgroundColor = bg
	return s
}

func withFont(family, size, weight string) StyleSample {
	s := visibleSample("span")
	s.FontFamily = family
	s.FontSize = size
	s.FontWeight = weight
	return s
}

func newTestAggregator() *Aggregator {
	return New(Options{Viewport: testViewport})
}

func TestAggregateColors_Scenario(t *testing.T) {
	samples := []StyleSample{
		withColors("rgb(0,0,0)", "rgb(255,255,255)"),
		withColors("rgb(0,0,0)", "transparent"),
		withColors("rgb(0,0,0)", "rgb(255,255,255)"),
	}

	got := newTestAggregator().AggregateColors(samples)
	require.Len(t, got, 2)

	assert.Equal(t, "#000000", got[0].Hex)
	assert.Equal(t, 3, got[0].Count)
	assert.Equal(t, []Role{RoleText}, got[0].Roles.Roles())

	assert.Equal(t, "#FFFFFF", got[1].Hex)
	assert.Equal(t, 2, got[1].Count)
	assert.Equal(t, []Role{RoleBackground}, got[1].Roles.Roles())
}

func TestAggregateColors_SharedHexCountsPerRole(t *testing.T) {
	s := withColors("#336699", "rgb(51, 102, 153)")
	s.BorderColor = "#336699"
	s.BorderWidth = "1px"

	got := newTestAggregator().AggregateColors([]StyleSample{s})
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Count)
	assert.True(t, got[0].Roles.Has(RoleText))
	assert.True(t, got[0].Roles.Has(RoleBackground))
	assert.True(t, got[0].Roles.Has(RoleBorder))
}

func TestAggregateColors_ZeroWidthBorderSkipped(t *testing.T) {
	s := withColors("", "")
	s.BorderColor = "rgb(255, 0, 0)"
	s.BorderWidth = "0px"

	assert.Empty(t, newTestAggregator().AggregateColors([]StyleSample{s}))

	s.BorderWidth = "0px 2px"
	got := newTestAggregator().AggregateColors([]StyleSample{s})
	require.Len(t, got, 1)
	assert.Equal(t, "#FF0000", got[0].Hex)
	assert.Equal(t, []Role{RoleBorder}, got[0].Roles.Roles())
}

func TestAggregateColors_TransparentSkipped(t *testing.T) {
	got := newTestAggregator().AggregateColors([]StyleSample{
		withColors("rgba(10, 20, 30, 0)", "rgba(0, 0, 0, 0.005)"),
	})
	assert.Empty(t, got)
}

func TestAggregateColors_StableTieOrder(t *testing.T) {
	samples := []StyleSample{
		withColors("#111111", ""),
		withColors("#222222", ""),
		withColors("#333333", ""),
		withColors("#222222", ""),
	}
	got := newTestAggregator().AggregateColors(samples)
	require.Len(t, got, 3)
	assert.Equal(t, "#222222", got[0].Hex)
	assert.Equal(t, "#111111", got[1].Hex)
	assert.Equal(t, "#333333", got[2].Hex)
}

func TestAggregate_Deterministic(t *testing.T) {
	var samples []StyleSample
	for _, c := range []string{"red", "blue", "#00FF00", "hsl(0 0% 50%)", "blue", "teal", "red", "navy"} {
		s := withColors(c, "white")
		s.FontFamily = c + "-font, serif"
		samples = append(samples, s)
	}

	agg := newTestAggregator()
	first := agg.Aggregate(samples)
	for range 5 {
		assert.Equal(t, first, agg.Aggregate(samples))
	}
}

func TestAggregateFonts_Scenario(t *testing.T) {
	got := newTestAggregator().AggregateFonts([]StyleSample{
		withFont(`"Helvetica Neue", sans-serif`, "16px", "bold"),
	})
	require.Len(t, got, 1)
	assert.Equal(t, "Helvetica Neue", got[0].Family)
	assert.Equal(t, 1, got[0].Count)
	assert.Equal(t, []float64{16}, got[0].SizesPx)
	assert.Equal(t, []int{700}, got[0].Weights)
}

func TestAggregateFonts_GenericSkipped(t *testing.T) {
	got := newTestAggregator().AggregateFonts([]StyleSample{
		withFont("sans-serif", "16px", "400"),
		withFont("inherit", "12px", "normal"),
		withFont("", "12px", "normal"),
	})
	assert.Empty(t, got)
}

func TestAggregateFonts_SetsAscending(t *testing.T) {
	got := newTestAggregator().AggregateFonts([]StyleSample{
		withFont("Inter, sans-serif", "18px", "600"),
		withFont("Inter", "12px", "normal"),
		withFont("'Inter'", "18px", "bold"),
		withFont("Inter", "1.5em", "heavy"),
		withFont("Georgia, serif", "14px", "400"),
	})
	require.Len(t, got, 2)
	assert.Equal(t, "Inter", got[0].Family)
	assert.Equal(t, 4, got[0].Count)
	assert.Equal(t, []float64{12, 18}, got[0].SizesPx)
	assert.Equal(t, []int{400, 600, 700}, got[0].Weights)
	assert.Equal(t, "Georgia", got[1].Family)
}

func TestAggregateFonts_FamilyIsCaseSensitive(t *testing.T) {
	got := newTestAggregator().AggregateFonts([]StyleSample{
		withFont("Inter", "12px", "400"),
		withFont("inter", "12px", "400"),
	})
	assert.Len(t, got, 2)
}

func TestAggregateFonts_NonFiniteValuesIgnored(t *testing.T) {
	inv := newTestAggregator().Aggregate([]StyleSample{
		withFont("Inter", "NaN", "NaN"),
		withFont("Inter", "NaN", "400"),
		withFont("Inter", "+Inf", "Inf"),
		withFont("Inter", "14px", "-Inf"),
	})
	require.Len(t, inv.Fonts, 1)
	assert.Equal(t, 4, inv.Fonts[0].Count)
	assert.Equal(t, []float64{14}, inv.Fonts[0].SizesPx)
	assert.Equal(t, []int{400}, inv.Fonts[0].Weights)

	_, err := json.Marshal(inv)
	assert.NoError(t, err)
}

func TestAggregate_ZeroViewportSkipsClipping(t *testing.T) {
	s := withColors("rgb(1, 2, 3)", "")
	s.Rect = Rect{X: 10, Y: 5000, Width: 100, Height: 20}
	hidden := withColors("rgb(4, 5, 6)", "")
	hidden.Display = "none"

	inv := New(Options{}).Aggregate([]StyleSample{s, hidden})
	require.Len(t, inv.Colors, 1)
	assert.Equal(t, "#010203", inv.Colors[0].Hex)
	assert.Equal(t, 1, inv.Stats.Invisible)
}

func TestAggregate_InvisibleContributesNothing(t *testing.T) {
	s := withColors("rgb(1, 2, 3)", "rgb(4, 5, 6)")
	s.FontFamily = "Inter"
	s.FontSize = "12px"
	s.Rect = Rect{X: 10, Y: 900, Width: 100, Height: 20} // below the fold

	inv := newTestAggregator().Aggregate([]StyleSample{s})
	assert.Empty(t, inv.Colors)
	assert.Empty(t, inv.Fonts)
	assert.Equal(t, 1, inv.Stats.Invisible)
}

func TestAggregate_ExcludesInspectorUI(t *testing.T) {
	panel := withColors("rgb(9, 9, 9)", "")
	panel.ID = MarkerID

	child := withColors("rgb(8, 8, 8)", "")
	child.Ancestors = []ElementRef{{Tag: "html"}, {Tag: "div", Classes: []string{MarkerClass}}}

	marked := withColors("rgb(7, 7, 7)", "")
	marked.Marked = true

	page := withColors("rgb(1, 1, 1)", "")

	inv := newTestAggregator().Aggregate([]StyleSample{panel, child, marked, page})
	require.Len(t, inv.Colors, 1)
	assert.Equal(t, "#010101", inv.Colors[0].Hex)
	assert.Equal(t, Stats{Samples: 4, Excluded: 3}, inv.Stats)
}

// unresolvable fails every probe, forcing the fallback path.
type unresolvable struct{}

func (unresolvable) ResolveComputed(string) (string, error) { return "", colors.ErrUnparseable }
func (unresolvable) Rasterize(string) (color.NRGBA, error) {
	return color.NRGBA{}, colors.ErrUnparseable
}

func TestAggregate_CountsFallbacks(t *testing.T) {
	agg := New(Options{Viewport: testViewport, Normalizer: colors.NewNormalizer(unresolvable{}, nil)})
	inv := agg.Aggregate([]StyleSample{
		withColors("not-a-color", ""),
		withColors("rgb(0, 0, 0)", ""),
	})
	require.Len(t, inv.Colors, 1)
	assert.Equal(t, "#000000", inv.Colors[0].Hex)
	assert.Equal(t, 2, inv.Colors[0].Count)
	assert.Equal(t, 1, inv.Stats.FallbackColors)
}

func TestAggregate_CustomVisibility(t *testing.T) {
	agg := New(Options{Visible: func(StyleSample) bool { return true }})
	s := withColors("red", "")
	s.Rect = Rect{}

	assert.Len(t, agg.AggregateColors([]StyleSample{s}), 1)
}

func TestRoleSet_JSON(t *testing.T) {
	set := RoleSet(0).With(RoleBorder).With(RoleText)
	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `["TEXT","BORDER"]`, string(data))

	var back RoleSet
	require.NoError(t, json.Unmarshal([]byte(`["background","TEXT"]`), &back))
	assert.Equal(t, RoleSet(0).With(RoleText).With(RoleBackground), back)

	assert.Error(t, json.Unmarshal([]byte(`["FILL"]`), &back))
}
