package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/stylelens/pkg/snapshot"
	"github.com/gnana997/stylelens/pkg/tokens"
	"github.com/gnana997/stylelens/pkg/util"
)

// --- helpers ---

const pageSnapshot = `{
  "url": "https://example.com/",
  "title": "Example",
  "viewport": {"width": 1280, "height": 800},
  "samples": [
    {"tag": "p", "color": "rgb(0,0,0)", "backgroundColor": "rgb(255,255,255)",
     "fontFamily": "\"Helvetica Neue\", sans-serif", "fontSize": "16px", "fontWeight": "bold",
     "rect": {"x": 0, "y": 0, "width": 100, "height": 20}},
    {"tag": "p", "color": "rgb(0,0,0)", "backgroundColor": "transparent",
     "rect": {"x": 0, "y": 30, "width": 100, "height": 20}},
    {"tag": "button", "id": "save", "classList": ["btn"], "color": "#767676", "backgroundColor": "white",
     "fontFamily": "Inter", "fontSize": "14px", "fontWeight": "500",
     "rect": {"x": 0, "y": 60, "width": 120, "height": 32}},
    {"tag": "div", "classList": ["style-inspector-ui"], "color": "rgb(1,2,3)",
     "rect": {"x": 0, "y": 100, "width": 100, "height": 20}}
  ]
}`

// workspace creates a temp dir with one snapshot and makes it the working
// directory so no user config is picked up.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "home.json"), []byte(pageSnapshot), 0644))
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(context.Background(), append([]string{"stylelens"}, args...), &out, &errOut)
	return out.String(), err
}

// --- color commands ---

func TestNormalizeCommand(t *testing.T) {
	workspace(t)

	out, err := runCLI(t, "normalize", "red", "transparent", "#abc")
	require.NoError(t, err)
	assert.Equal(t, "red          #FF0000\ntransparent  transparent\n#abc         #AABBCC\n", out)

	out, err = runCLI(t, "--json", "normalize", "rgb(0 128 0)")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"input":"rgb(0 128 0)","hex":"#008000"}]`, out)

	_, err = runCLI(t, "normalize")
	assert.ErrorIs(t, err, errNoArgs)
}

func TestContrastCommand(t *testing.T) {
	workspace(t)

	out, err := runCLI(t, "contrast", "black", "white")
	require.NoError(t, err)
	assert.Equal(t, "#000000 on #FFFFFF  21.00:1  AAA\n", out)

	out, err = runCLI(t, "contrast", "black", "transparent")
	require.NoError(t, err)
	assert.Contains(t, out, "undefined")

	_, err = runCLI(t, "contrast", "black")
	assert.ErrorIs(t, err, errNoArgs)
}

// --- snapshot commands ---

func TestListCommand(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", "x.json"), []byte(pageSnapshot), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "about.json"), []byte(pageSnapshot), 0644))

	out, err := runCLI(t, "--json", "list")
	require.NoError(t, err)
	var files []string
	require.NoError(t, json.Unmarshal([]byte(out), &files))
	require.Len(t, files, 2)
	assert.Equal(t, "about.json", filepath.Base(files[0]))
	assert.Equal(t, "home.json", filepath.Base(files[1]))
}

func TestColorsCommand_JSON(t *testing.T) {
	workspace(t)

	out, err := runCLI(t, "--json", "colors", "home.json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"path": "home.json",
		"url": "https://example.com/",
		"colors": [
			{"hex": "#000000", "count": 2, "roles": ["TEXT"]},
			{"hex": "#FFFFFF", "count": 2, "roles": ["BACKGROUND"]},
			{"hex": "#767676", "count": 1, "roles": ["TEXT"]}
		],
		"stats": {"samples": 4, "excluded": 1, "invisible": 0, "fallbackColors": 0}
	}]`, out)
}

func TestColorsCommand_Table(t *testing.T) {
	workspace(t)

	out, err := runCLI(t, "colors", "home.json")
	require.NoError(t, err)
	assert.Contains(t, out, "home.json  https://example.com/\n")
	assert.Contains(t, out, "  #000000      2  TEXT\n")
	assert.Contains(t, out, "  #FFFFFF      2  BACKGROUND\n")
	assert.Contains(t, out, "  4 samples, 1 excluded, 0 invisible\n")
}

func TestColorsCommand_DiscoversAndReportsFailures(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))

	out, err := runCLI(t, "--json", "colors", "--root", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.json")

	var reports []colorsReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "home.json", filepath.Base(reports[0].Path))
}

func TestFontsCommand(t *testing.T) {
	workspace(t)

	out, err := runCLI(t, "--json", "fonts", "home.json")
	require.NoError(t, err)
	var reports []fontsReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Fonts, 2)
	assert.Equal(t, "Helvetica Neue", reports[0].Fonts[0].Family)
	assert.Equal(t, "Inter", reports[0].Fonts[1].Family)

	out, err = runCLI(t, "fonts", "home.json")
	require.NoError(t, err)
	assert.Contains(t, out, "Helvetica Neue")
	assert.Contains(t, out, "sizes: 14px")
	assert.Contains(t, out, "weights: 500")
}

func TestInspectCommand(t *testing.T) {
	workspace(t)

	out, err := runCLI(t, "inspect", "home.json", "#save")
	require.NoError(t, err)
	assert.Contains(t, out, "button#save.btn  [120×32]\n")
	assert.Contains(t, out, "4.54:1  AA")
	assert.Contains(t, out, "#FFFFFF (self)")

	out, err = runCLI(t, "--json", "inspect", "--index", "1", "home.json")
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "canvas", report["backdropSource"])

	_, err = runCLI(t, "inspect", "home.json", "#missing")
	assert.Error(t, err)
	_, err = runCLI(t, "inspect", "home.json")
	assert.Error(t, err)
}

func TestTokensCommand(t *testing.T) {
	dir := workspace(t)
	catalogPath := filepath.Join(dir, "out", "tokens.json")

	out, err := runCLI(t, "--json", "tokens", "--category", "font-family", "--out", catalogPath, "home.json")
	require.NoError(t, err)
	var list []tokens.Token
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "font-helvetica-neue", list[0].Name)

	cat, _, err := tokens.LoadFromFile(catalogPath)
	require.NoError(t, err)
	assert.Equal(t, "Example", cat.Name)
	assert.Len(t, cat.Tokens, 9) // 3 colors, 2 families, 2 sizes, 2 weights

	out, err = runCLI(t, "tokens", "home.json")
	require.NoError(t, err)
	assert.Contains(t, out, "Example (https://example.com/)")
	assert.Contains(t, out, "color-1")
}

// --- configuration ---

func TestConfigFile_ExcludeSelectors(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".stylelens"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, defaultConfigPath), []byte(`
resolver: native
exclude_selectors: [".btn", ".style-inspector-ui"]
`), 0644))

	out, err := runCLI(t, "--json", "colors", "home.json")
	require.NoError(t, err)
	var reports []colorsReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, 2, reports[0].Stats.Excluded)
	assert.Len(t, reports[0].Colors, 2)
}

func TestConfigFile_Invalid(t *testing.T) {
	dir := workspace(t)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resolver: gpu\n"), 0644))

	_, err := runCLI(t, "--config", path, "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown resolver")

	_, err = runCLI(t, "--config", filepath.Join(dir, "missing.yaml"), "version")
	assert.Error(t, err)
}

func TestConfigCommand_Default(t *testing.T) {
	workspace(t)

	out, err := runCLI(t, "config", "--default")
	require.NoError(t, err)
	assert.Contains(t, out, "resolver: cached")
	assert.Contains(t, out, "debounce: 200ms")
	assert.Contains(t, out, "- .style-inspector-ui")
}

func TestVersionCommand(t *testing.T) {
	workspace(t)
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "stylelens "+version+"\n", out)
}

// --- watch ---

func TestWatchHandler(t *testing.T) {
	dir := workspace(t)
	var out bytes.Buffer
	env := envFromContext(contextWithEnv(context.Background(), &out, &bytes.Buffer{}))
	require.NoError(t, env.prepare(&ProjectConfig{}, util.LevelError, util.FormatText))
	t.Cleanup(func() { env.close() })

	path := filepath.Join(dir, "home.json")
	handle := watchHandler(env)

	handle(snapshot.Event{Path: path})
	assert.Equal(t, path+"  3 colors, 2 fonts\n", out.String())

	out.Reset()
	handle(snapshot.Event{Path: path, Removed: true})
	assert.Equal(t, path+"  removed\n", out.String())
}

// Without a config file the watcher gets the default exclude globs.
func TestWatch_DefaultExcludesWithoutConfig(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules"), 0755))
	env := envFromContext(contextWithEnv(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}))
	require.NoError(t, env.prepare(&ProjectConfig{}, util.LevelError, util.FormatText))
	t.Cleanup(func() { env.close() })

	assert.True(t, env.matcher.Excluded("node_modules/"))
	assert.False(t, env.matcher.Matches(".git/config.json"))

	events := make(chan snapshot.Event, 16)
	w, err := snapshot.NewWatcher(snapshot.WatchOptions{Debounce: 20 * time.Millisecond, Matcher: env.matcher},
		func(ev snapshot.Event) { events <- ev }, env.log)
	require.NoError(t, err)
	require.NoError(t, w.Start(dir))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", "x.json"), []byte(pageSnapshot), 0644))
	path := filepath.Join(dir, "about.json")
	require.NoError(t, os.WriteFile(path, []byte(pageSnapshot), 0644))

	select {
	case ev := <-events:
		assert.Equal(t, path, ev.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("no event for about.json")
	}
	select {
	case ev := <-events:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}
