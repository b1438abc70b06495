package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	cli "github.com/urfave/cli/v3"
)

const serverName = "stylelens"

// agentDef describes how to detect and configure one AI agent.
type agentDef struct {
	ID          string
	DisplayName string
	Method      string            // "cli" or "file"
	Binary      string            // CLI agents: binary name on PATH
	DirMarkers  []string          // file agents: dirs that indicate presence
	ConfigPath  func() string     // file agents: config file path
	ServersKey  string            // "servers" (VS Code) or "mcpServers"
	NeedsScope  bool              // prompt for project/user scope
	ExtraFields map[string]string // extra entry fields, e.g. "type": "stdio"
}

// detectedAgent is an agent found on the system.
type detectedAgent struct {
	Def            agentDef
	AlreadySetup   bool
	ResolvedConfig string
}

// Replaceable for testing.
var (
	lookPathFunc = exec.LookPath
	statFunc     = os.Stat
	runAgentFunc = runAgentCommand
	stdin        io.Reader = os.Stdin
)

var agentRegistry = []agentDef{
	{
		ID: "claude_code", DisplayName: "Claude Code",
		Method: "cli", Binary: "claude", NeedsScope: true,
	},
	{
		ID: "openai_codex", DisplayName: "OpenAI Codex",
		Method: "cli", Binary: "codex", NeedsScope: true,
	},
	{
		ID: "vscode_copilot", DisplayName: "VS Code Copilot",
		Method: "file", DirMarkers: []string{".vscode"},
		ConfigPath:  func() string { return filepath.Join(".vscode", "mcp.json") },
		ServersKey:  "servers",
		ExtraFields: map[string]string{"type": "stdio"},
	},
	{
		ID: "cursor", DisplayName: "Cursor",
		Method: "file", DirMarkers: []string{".cursor"},
		ConfigPath: func() string { return filepath.Join(".cursor", "mcp.json") },
		ServersKey: "mcpServers",
	},
	{
		ID: "claude_desktop", DisplayName: "Claude Desktop",
		Method:     "file",
		ConfigPath: claudeDesktopConfigPath,
		ServersKey: "mcpServers",
	},
}

func claudeDesktopConfigPath() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Claude", "claude_desktop_config.json")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "Claude", "claude_desktop_config.json")
	}
}

// detectAgents lists the agents present on this machine or in this project.
func detectAgents() []detectedAgent {
	var detected []detectedAgent
	for _, def := range agentRegistry {
		switch def.Method {
		case "cli":
			if _, err := lookPathFunc(def.Binary); err == nil {
				detected = append(detected, detectedAgent{
					Def:          def,
					AlreadySetup: isConfiguredFile(".mcp.json", "mcpServers"),
				})
			}
		case "file":
			if configPath, ok := detectFileAgent(def); ok {
				detected = append(detected, detectedAgent{
					Def:            def,
					ResolvedConfig: configPath,
					AlreadySetup:   isConfiguredFile(configPath, def.ServersKey),
				})
			}
		}
	}
	return detected
}

func detectFileAgent(def agentDef) (string, bool) {
	for _, marker := range def.DirMarkers {
		if _, err := statFunc(marker); err == nil {
			return def.ConfigPath(), true
		}
	}
	// Agents without markers are present when their config directory exists.
	if len(def.DirMarkers) == 0 && def.ConfigPath != nil {
		configPath := def.ConfigPath()
		if _, err := statFunc(filepath.Dir(configPath)); err == nil {
			return configPath, true
		}
	}
	return "", false
}

func isConfiguredFile(configPath, serversKey string) bool {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return false
	}
	var config map[string]any
	if err := json.Unmarshal(data, &config); err != nil {
		return false
	}
	servers, ok := config[serversKey].(map[string]any)
	if !ok {
		return false
	}
	_, exists := servers[serverName]
	return exists
}

// serverEntry returns the MCP server config object.
func serverEntry(extra map[string]string) map[string]any {
	entry := map[string]any{
		"command": serverName,
		"args":    []any{"serve"},
	}
	for k, v := range extra {
		entry[k] = v
	}
	return entry
}

// mergeServerEntry adds the server under serversKey of an existing JSON
// config. It returns nil, nil when the entry is already present.
func mergeServerEntry(existing []byte, serversKey string, extra map[string]string) ([]byte, error) {
	config := make(map[string]any)
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &config); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	servers, ok := config[serversKey].(map[string]any)
	if !ok {
		servers = make(map[string]any)
	}
	if _, exists := servers[serverName]; exists {
		return nil, nil
	}
	servers[serverName] = serverEntry(extra)
	config[serversKey] = servers

	out, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func runAgentCommand(binary string, args []string, w io.Writer) error {
	cmd := exec.Command(binary, args...)
	cmd.Stdout = w
	cmd.Stderr = w
	return cmd.Run()
}

func configureCLIAgent(def agentDef, scope string, w io.Writer) error {
	args := []string{"mcp", "add"}
	if scope != "" {
		args = append(args, "--scope", scope)
	}
	args = append(args, serverName, "--", serverName, "serve")
	return runAgentFunc(def.Binary, args, w)
}

func configureFileAgent(def agentDef, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	var existing []byte
	if data, err := os.ReadFile(configPath); err == nil {
		existing = data
	}
	merged, err := mergeServerEntry(existing, def.ServersKey, def.ExtraFields)
	if err != nil {
		return err
	}
	if merged == nil {
		return nil
	}
	return os.WriteFile(configPath, merged, 0644)
}

// --- prompts ---

// promptYesNo reads Y/n; empty input and EOF mean yes.
func promptYesNo(in *bufio.Scanner, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s ", question)
	if !in.Scan() {
		return true
	}
	answer := strings.TrimSpace(strings.ToLower(in.Text()))
	return answer == "" || answer == "y" || answer == "yes"
}

// promptScope returns "project", "user", or "" to skip.
func promptScope(in *bufio.Scanner, w io.Writer, agentName string) string {
	fmt.Fprintf(w, "\n%s: add %s MCP server?\n", agentName, serverName)
	fmt.Fprintln(w, "  [1] Project scope (shared with team)")
	fmt.Fprintln(w, "  [2] User scope (personal, global)")
	fmt.Fprintln(w, "  [3] Skip")
	fmt.Fprintf(w, "  > ")

	if !in.Scan() {
		return "project"
	}
	switch strings.TrimSpace(in.Text()) {
	case "1", "":
		return "project"
	case "2":
		return "user"
	default:
		return ""
	}
}

// --- orchestration ---

func runSetup(ctx context.Context, cmd *cli.Command) error {
	executeSetup(stdin, envFromContext(ctx).out, cmd.Bool("auto"))
	return nil
}

func executeSetup(r io.Reader, w io.Writer, auto bool) {
	detected := detectAgents()
	if len(detected) == 0 {
		fmt.Fprintln(w, "No supported AI agents detected.")
		return
	}

	fmt.Fprintln(w, "Detected AI agents:")
	for _, d := range detected {
		if d.AlreadySetup {
			fmt.Fprintf(w, "  * %s (already configured)\n", d.Def.DisplayName)
		} else {
			fmt.Fprintf(w, "  * %s\n", d.Def.DisplayName)
		}
	}
	fmt.Fprintln(w)

	in := bufio.NewScanner(r)
	if !auto && !promptYesNo(in, w, "Configure agents? [Y/n]") {
		return
	}
	for _, d := range detected {
		if d.AlreadySetup {
			fmt.Fprintf(w, "\n%s: already configured, skipping\n", d.Def.DisplayName)
			continue
		}
		configureOneAgent(in, w, d, auto)
	}
}

func configureOneAgent(in *bufio.Scanner, w io.Writer, d detectedAgent, auto bool) {
	switch d.Def.Method {
	case "cli":
		scope := "project"
		if !auto && d.Def.NeedsScope {
			if scope = promptScope(in, w, d.Def.DisplayName); scope == "" {
				fmt.Fprintln(w, "  skipped")
				return
			}
		}
		if err := configureCLIAgent(d.Def, scope, w); err != nil {
			fmt.Fprintf(w, "  ! %s: failed: %v\n", d.Def.DisplayName, err)
			return
		}
		fmt.Fprintf(w, "  + %s configured (scope: %s)\n", d.Def.DisplayName, scope)

	case "file":
		if !auto && !promptYesNo(in, w, fmt.Sprintf("\n%s: add to %s? [Y/n]", d.Def.DisplayName, d.ResolvedConfig)) {
			fmt.Fprintln(w, "  skipped")
			return
		}
		if err := configureFileAgent(d.Def, d.ResolvedConfig); err != nil {
			fmt.Fprintf(w, "  ! %s: failed: %v\n", d.Def.DisplayName, err)
			return
		}
		fmt.Fprintf(w, "  + %s configured (%s)\n", d.Def.DisplayName, d.ResolvedConfig)
	}
}
