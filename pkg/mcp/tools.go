package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/stylelens/pkg/tokens"
)

const snapshotArgDescription = "Snapshot file path, relative to the server root"

func normalizeColorTool() mcp.Tool {
	return mcp.NewTool("normalize_color",
		mcp.WithDescription("Normalize a CSS color (hex, rgb/rgba, named, hsl, hwb, lab, lch, oklab, oklch, color()) to canonical #RRGGBB or transparent."),
		mcp.WithString("color", mcp.Required(), mcp.Description("CSS color value")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func contrastRatioTool() mcp.Tool {
	return mcp.NewTool("contrast_ratio",
		mcp.WithDescription("WCAG 2.x contrast ratio and conformance level (AAA, AA, AA-LARGE, FAIL) between two colors."),
		mcp.WithString("foreground", mcp.Required(), mcp.Description("Text color")),
		mcp.WithString("background", mcp.Required(), mcp.Description("Background color")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func listSnapshotsTool() mcp.Tool {
	return mcp.NewTool("list_snapshots",
		mcp.WithDescription("List snapshot files under the server root in natural order."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func aggregateColorsTool() mcp.Tool {
	return mcp.NewTool("aggregate_colors",
		mcp.WithDescription("Distinct colors visible in a page snapshot, ranked by usage, with TEXT/BACKGROUND/BORDER roles."),
		mcp.WithString("snapshot", mcp.Required(), mcp.Description(snapshotArgDescription)),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func aggregateFontsTool() mcp.Tool {
	return mcp.NewTool("aggregate_fonts",
		mcp.WithDescription("Distinct primary font families visible in a page snapshot, ranked by usage, with observed sizes and weights."),
		mcp.WithString("snapshot", mcp.Required(), mcp.Description(snapshotArgDescription)),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func inspectElementTool() mcp.Tool {
	return mcp.NewTool("inspect_element",
		mcp.WithDescription("Resolved colors, typography, and text contrast of one element in a snapshot."),
		mcp.WithString("snapshot", mcp.Required(), mcp.Description(snapshotArgDescription)),
		mcp.WithString("selector", mcp.Description("Element label such as button#save.primary or #save")),
		mcp.WithNumber("index", mcp.Description("Zero-based sample index, used when selector is empty")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func getTokensTool() mcp.Tool {
	return mcp.NewTool("get_tokens",
		mcp.WithDescription("Design tokens derived from a snapshot's colors and fonts, optionally filtered by category."),
		mcp.WithString("snapshot", mcp.Required(), mcp.Description(snapshotArgDescription)),
		mcp.WithString("category", mcp.Description("Token category"), mcp.Enum(tokens.Categories...)),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}
