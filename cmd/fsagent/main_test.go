package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCommand executes the root command with args and stdin, returning stdout
// and stderr.
func runCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	dir := t.TempDir()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(dir, "config.yaml"),
		"--log-file", filepath.Join(dir, "fsagent.log"),
	}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func setupProject(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	files := map[string]string{
		"notes.txt":          "alpha\nbeta\n",
		"src/main.go":        "package main\n// beta\n",
		"node_modules/x.js":  "beta\n",
		".hidden/secret.txt": "beta\n",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return root
}

func TestListCommand(t *testing.T) {
	root := setupProject(t)

	stdout, _, err := runCommand(t, "", "ls", root)
	if err != nil {
		t.Fatalf("ls failed: %v", err)
	}

	var resp struct {
		Entries []struct {
			Path string `json:"path"`
		} `json:"entries"`
		Summary struct {
			Files int `json:"files"`
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout)
	}

	for _, entry := range resp.Entries {
		if strings.HasPrefix(entry.Path, "node_modules") {
			t.Errorf("ignored path listed: %s", entry.Path)
		}
	}
	if resp.Summary.Files != 3 {
		t.Errorf("expected 3 files, got %d", resp.Summary.Files)
	}
}

func TestListCommand_NotRecursive(t *testing.T) {
	root := setupProject(t)

	stdout, _, err := runCommand(t, "", "ls", "--recursive=false", root)
	if err != nil {
		t.Fatalf("ls failed: %v", err)
	}
	if strings.Contains(stdout, "main.go") {
		t.Errorf("non-recursive listing descended into src:\n%s", stdout)
	}
	if !strings.Contains(stdout, `"recursive": false`) {
		t.Errorf("expected recursive=false in output:\n%s", stdout)
	}
}

func TestReadCommand(t *testing.T) {
	root := setupProject(t)

	stdout, _, err := runCommand(t, "", "read", filepath.Join(root, "notes.txt"), "--start", "2", "-n")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var resp struct {
		Content    string `json:"content"`
		TotalLines int    `json:"total_lines"`
	}
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if resp.Content != "    2:beta" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.TotalLines != 2 {
		t.Errorf("expected 2 lines, got %d", resp.TotalLines)
	}
}

func TestGrepCommand(t *testing.T) {
	root := setupProject(t)

	stdout, _, err := runCommand(t, "", "grep", "beta", root)
	if err != nil {
		t.Fatalf("grep failed: %v", err)
	}

	var resp struct {
		Matches []struct {
			FilePath string `json:"file_path"`
		} `json:"matches"`
	}
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(resp.Matches) != 3 {
		t.Fatalf("expected 3 matches, got %d: %s", len(resp.Matches), stdout)
	}
	for _, m := range resp.Matches {
		if strings.HasPrefix(m.FilePath, "node_modules") {
			t.Errorf("ignored file searched: %s", m.FilePath)
		}
	}
}

func TestCompleteCommand(t *testing.T) {
	root := setupProject(t)

	line := "read @" + root + "/no"
	stdout, _, err := runCommand(t, "", "complete", line)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	want := "@" + root + "/notes.txt\n"
	if stdout != want {
		t.Errorf("expected %q, got %q", want, stdout)
	}
}

func TestCompleteCommand_InvalidCursor(t *testing.T) {
	_, _, err := runCommand(t, "", "complete", "read @", "abc")
	if err == nil {
		t.Fatal("expected error for invalid cursor")
	}
}

func TestToolsCommand(t *testing.T) {
	stdout, _, err := runCommand(t, "", "tools")
	if err != nil {
		t.Fatalf("tools failed: %v", err)
	}

	for _, name := range []string{"list_files", "read_file", "grep"} {
		if !strings.Contains(stdout, `"`+name+`"`) {
			t.Errorf("missing tool %s in output", name)
		}
	}
}

func TestCallCommand_UnknownTool(t *testing.T) {
	_, _, err := runCommand(t, "", "call", "delete_everything")
	if err == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestRootCommand_ScriptFromStdin(t *testing.T) {
	root := setupProject(t)

	script := strings.Join([]string{
		"read @" + filepath.Join(root, "notes.txt"),
		"",
		"bogus",
		"exit",
		"read " + filepath.Join(root, "src", "main.go"),
	}, "\n")

	stdout, stderr, err := runCommand(t, script, "--no-history")
	if err == nil {
		t.Fatal("expected the failing command to be reported")
	}
	if !strings.Contains(stdout, "alpha") {
		t.Errorf("expected file content in output:\n%s", stdout)
	}
	if strings.Contains(stdout, "package main") {
		t.Errorf("commands after exit were executed:\n%s", stdout)
	}
	if !strings.Contains(stderr, "unknown command") {
		t.Errorf("expected unknown command error, got %q", stderr)
	}
	if !strings.Contains(err.Error(), "1 command(s) failed") {
		t.Errorf("unexpected summary error %q", err)
	}
}

func TestExecute_ReportsFailures(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown tool", []string{"call", "nope"}, "unknown tool"},
		{"missing argument", []string{"read"}, "accepts 1 arg"},
		{"bad flag", []string{"ls", "--bogus"}, "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			cmd := newRootCmd()
			var stdout, stderr bytes.Buffer
			cmd.SetIn(strings.NewReader(""))
			cmd.SetOut(&stdout)
			cmd.SetErr(&stderr)
			cmd.SetArgs(append([]string{
				"--config", filepath.Join(dir, "config.yaml"),
				"--log-file", filepath.Join(dir, "fsagent.log"),
			}, tt.args...))

			if code := execute(context.Background(), cmd); code != 1 {
				t.Errorf("expected exit status 1, got %d", code)
			}
			if !strings.Contains(stderr.String(), "Error: ") || !strings.Contains(stderr.String(), tt.want) {
				t.Errorf("expected error containing %q on stderr, got %q", tt.want, stderr.String())
			}
		})
	}
}

func TestExecute_SuccessIsSilentOnStderr(t *testing.T) {
	dir := t.TempDir()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{
		"--config", filepath.Join(dir, "config.yaml"),
		"--log-file", filepath.Join(dir, "fsagent.log"),
		"tools",
	})

	if code := execute(context.Background(), cmd); code != 0 {
		t.Fatalf("expected exit status 0, got %d: %s", code, stderr.String())
	}
	if stderr.Len() != 0 {
		t.Errorf("expected empty stderr, got %q", stderr.String())
	}
}

func TestRootCommand_InvalidConfigFallsBack(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("triggerSymbol: \"@@\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs([]string{
		"--config", configPath,
		"--log-file", filepath.Join(dir, "fsagent.log"),
		"complete", "x @",
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	logContent, err := os.ReadFile(filepath.Join(dir, "fsagent.log"))
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	if !strings.Contains(string(logContent), "triggerSymbol must be a single character") {
		t.Errorf("expected config error to be logged, got:\n%s", logContent)
	}
}
