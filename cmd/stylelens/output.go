package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xlab/treeprint"

	"github.com/gnana997/stylelens/pkg/aggregate"
	"github.com/gnana997/stylelens/pkg/colors"
	"github.com/gnana997/stylelens/pkg/inspect"
	"github.com/gnana997/stylelens/pkg/tokens"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printColors renders the color inventory as a table with dynamic column widths.
func printColors(w io.Writer, title string, list []aggregate.ColorToken) {
	if len(list) == 0 {
		fmt.Fprintf(w, "%s  (none)\n", title)
		return
	}
	fmt.Fprintln(w, title)

	countW := len("COUNT")
	for _, c := range list {
		if n := len(strconv.Itoa(c.Count)); n > countW {
			countW = n
		}
	}
	fmt.Fprintf(w, "  %-7s  %*s  %s\n", "HEX", countW, "COUNT", "ROLES")
	fmt.Fprintf(w, "  %s\n", strings.Repeat("─", 7+2+countW+2+len("TEXT,BACKGROUND,BORDER")))
	for _, c := range list {
		fmt.Fprintf(w, "  %-7s  %*d  %s\n", c.Hex, countW, c.Count, c.Roles)
	}
}

// fontTree renders the font inventory as a tree: family, then sizes and weights.
func fontTree(title string, list []aggregate.FontToken) treeprint.Tree {
	tree := treeprint.NewWithRoot(title)
	for _, f := range list {
		branch := tree.AddMetaBranch(strconv.Itoa(f.Count), f.Family)
		branch.AddNode("sizes: " + joinOrDash(f.SizesPx, formatPx))
		branch.AddNode("weights: " + joinOrDash(f.Weights, strconv.Itoa))
	}
	return tree
}

func printFonts(w io.Writer, title string, list []aggregate.FontToken) {
	if len(list) == 0 {
		fmt.Fprintf(w, "%s  (none)\n", title)
		return
	}
	fmt.Fprint(w, fontTree(title, list).String())
}

func printStats(w io.Writer, st aggregate.Stats) {
	fmt.Fprintf(w, "  %d samples, %d excluded, %d invisible", st.Samples, st.Excluded, st.Invisible)
	if st.FallbackColors > 0 {
		fmt.Fprintf(w, ", %d unresolved colors counted as %s", st.FallbackColors, colors.FallbackHex)
	}
	fmt.Fprintln(w)
}

// printReport renders one inspected element as aligned key/value rows.
func printReport(w io.Writer, r inspect.Report) {
	fmt.Fprintf(w, "%s  [%s]\n", r.Label, r.Size)

	rows := [][2]string{
		{"color", dash(r.Color.String())},
		{"background", dash(r.Background.String())},
		{"border", dash(r.Border.String())},
		{"backdrop", r.Backdrop + " (" + r.BackdropSource + ")"},
		{"font", dash(r.FontFamily)},
		{"stack", dash(strings.Join(r.FontStack, ", "))},
		{"size", dash(formatPxOrEmpty(r.FontSizePx))},
		{"weight", dash(intOrEmpty(r.FontWeight))},
		{"line-height", dash(r.LineHeight)},
		{"letter-spacing", dash(r.LetterSpacing)},
		{"contrast", formatContrast(r.Contrast)},
	}
	keyW := 0
	for _, row := range rows {
		keyW = max(keyW, len(row[0]))
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %-*s  %s\n", keyW, row[0], row[1])
	}
}

func formatContrast(c colors.Contrast) string {
	if !c.Defined {
		return "undefined"
	}
	return fmt.Sprintf("%.2f:1  %s", c.Ratio, c.Level)
}

// tokenTree renders a catalog grouped by category.
func tokenTree(cat *tokens.Catalog, category string) treeprint.Tree {
	tree := treeprint.NewWithRoot(fmt.Sprintf("%s (%s)", cat.Name, cat.Source))
	q := tokens.NewQueryService(cat, nil)
	for _, c := range q.ListCategories() {
		if category != "" && c.Name != category {
			continue
		}
		branch := tree.AddBranch(c.Name)
		for _, name := range c.Tokens {
			t, ok := q.GetToken(name)
			if !ok {
				continue
			}
			value := t.Value
			if len(t.Roles) > 0 {
				value += "  " + strings.Join(t.Roles, ",")
			}
			branch.AddMetaNode(t.Name, value)
		}
	}
	return tree
}

func joinOrDash[T any](vs []T, format func(T) string) string {
	if len(vs) == 0 {
		return "—"
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = format(v)
	}
	return strings.Join(parts, ", ")
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

func formatPxOrEmpty(v float64) string {
	if v == 0 {
		return ""
	}
	return formatPx(v)
}

func intOrEmpty(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func dash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
