package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/stylelens/pkg/aggregate"
	"github.com/gnana997/stylelens/pkg/colors"
	"github.com/gnana997/stylelens/pkg/snapshot"
	"github.com/gnana997/stylelens/pkg/tokens"
)

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// resolve maps a snapshot argument to a path inside the server root.
func (s *Server) resolve(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("snapshot path is empty")
	}
	root, err := filepath.Abs(s.root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve server root: %w", err)
	}
	path := arg
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	path = filepath.Clean(path)
	rel, err := filepath.Rel(root, path)
	if err != nil || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("snapshot %q is outside the server root", arg)
	}
	return path, nil
}

// loadSnapshot resolves and loads the "snapshot" argument.
func (s *Server) loadSnapshot(req mcp.CallToolRequest) (*snapshot.Snapshot, error) {
	arg, err := req.RequireString("snapshot")
	if err != nil {
		return nil, err
	}
	path, err := s.resolve(arg)
	if err != nil {
		return nil, err
	}
	return s.loader.Load(path)
}

func (s *Server) aggregator(snap *snapshot.Snapshot) *aggregate.Aggregator {
	return aggregate.New(aggregate.Options{
		Normalizer: s.norm,
		Viewport:   snap.Viewport,
		Excluder:   s.excluder,
		Logger:     s.logger,
	})
}

type normalizeResponse struct {
	Input string `json:"input"`
	colors.Result
}

func (s *Server) handleNormalizeColor(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("color")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(normalizeResponse{Input: raw, Result: s.norm.Normalize(raw)})
}

type contrastResponse struct {
	Foreground colors.Result   `json:"foreground"`
	Background colors.Result   `json:"background"`
	Contrast   colors.Contrast `json:"contrast"`
}

func (s *Server) handleContrastRatio(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fg, err := req.RequireString("foreground")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bg, err := req.RequireString("background")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fr, br := s.norm.Normalize(fg), s.norm.Normalize(bg)
	c := colors.ContrastOf(fr, br)
	if !c.Defined {
		return mcp.NewToolResultError(fmt.Sprintf("contrast is undefined: %s on %s", fr, br)), nil
	}
	return jsonResult(contrastResponse{Foreground: fr, Background: br, Contrast: c})
}

func (s *Server) handleListSnapshots(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files, err := snapshot.Discover(s.root, s.matcher)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	root, _ := filepath.Abs(s.root)
	rel := make([]string, 0, len(files))
	for _, f := range files {
		if r, err := filepath.Rel(root, f); err == nil {
			f = filepath.ToSlash(r)
		}
		rel = append(rel, f)
	}
	return jsonResult(rel)
}

type colorsResponse struct {
	URL    string                 `json:"url,omitempty"`
	Colors []aggregate.ColorToken `json:"colors"`
	Stats  aggregate.Stats        `json:"stats"`
}

func (s *Server) handleAggregateColors(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.loadSnapshot(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	inv := s.aggregator(snap).Aggregate(snap.Samples)
	return jsonResult(colorsResponse{URL: snap.URL, Colors: nonNil(inv.Colors), Stats: inv.Stats})
}

type fontsResponse struct {
	URL   string                `json:"url,omitempty"`
	Fonts []aggregate.FontToken `json:"fonts"`
	Stats aggregate.Stats       `json:"stats"`
}

func (s *Server) handleAggregateFonts(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.loadSnapshot(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	inv := s.aggregator(snap).Aggregate(snap.Samples)
	return jsonResult(fontsResponse{URL: snap.URL, Fonts: nonNil(inv.Fonts), Stats: inv.Stats})
}

func (s *Server) handleInspectElement(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.loadSnapshot(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sample aggregate.StyleSample
	if sel := strings.TrimSpace(req.GetString("selector", "")); sel != "" {
		found, ok := snap.Find(sel)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("no element matches %q", sel)), nil
		}
		sample = found
	} else {
		idx := req.GetInt("index", -1)
		if idx < 0 || idx >= len(snap.Samples) {
			return mcp.NewToolResultError(fmt.Sprintf("selector or index in [0, %d) is required", len(snap.Samples))), nil
		}
		sample = snap.Samples[idx]
	}
	return jsonResult(s.inspector.Inspect(sample))
}

func (s *Server) handleGetTokens(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.loadSnapshot(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	inv := s.aggregator(snap).Aggregate(snap.Samples)
	cat := tokens.Build(catalogName(snap), snap.URL, inv)
	q := tokens.NewQueryService(cat, nil)
	return jsonResult(nonNil(q.GetTokens(req.GetString("category", ""))))
}

func catalogName(snap *snapshot.Snapshot) string {
	if snap.Title != "" {
		return snap.Title
	}
	if snap.URL != "" {
		return snap.URL
	}
	return "snapshot"
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
