package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/simcheck/internal/canon"
	"github.com/nvandessel/simcheck/internal/config"
)

const sumSource = `int sum(int a, int b) {
    int total = a + b;
    return total;
}
`

const addSource = `int add(int x, int y) {
    int result = x + y;
    return result;
}
`

// isolateHome sets HOME to a temp directory to avoid touching real ~/.simcheck/
// MUST be called for any test that loads config or opens stores
func isolateHome(t *testing.T, tmpDir string) {
	t.Helper()
	tmpHome := filepath.Join(tmpDir, "home")
	if err := os.MkdirAll(tmpHome, 0700); err != nil {
		t.Fatalf("Failed to create temp home: %v", err)
	}
	t.Setenv("HOME", tmpHome)
	for _, key := range []string{
		"SIMCHECK_LOG_LEVEL", "SIMCHECK_COUNT_INSERTIONS", "SIMCHECK_SYMMETRIC",
		"SIMCHECK_STORE_ENABLED", "SIMCHECK_MAX_INPUT_BYTES", "SIMCHECK_MAX_IDENTIFIERS",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// runCmd executes the root command with args and returns its stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := newRootCmd()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()

	for _, name := range []string{"json", "root", "log-level"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("missing persistent --%s flag", name)
		}
	}
	if f := cmd.Flags().ShorthandLookup("f"); f == nil || f.Name != "full" {
		t.Error("missing -f/--full flag")
	}

	want := []string{"align", "canon", "compare", "config", "history", "mcp-server", "version"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing %q subcommand", name)
		}
	}
}

func TestLegacyCompare_Pair(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	a := writeFile(t, tmpDir, "sum.c", sumSource)
	b := writeFile(t, tmpDir, "add.c", addSource)

	out, err := runCmd(t, "--root", tmpDir, a, b)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if out != "Similarity: 100.000000%\n" {
		t.Errorf("output = %q", out)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, ".simcheck", "out2.txt"))
	if err != nil {
		t.Fatalf("out2.txt not written: %v", err)
	}
	if string(data) != "int 0 int 1 int 2 int 3 1 + 2 return 3" {
		t.Errorf("out2.txt = %q", data)
	}
}

func TestLegacyCompare_Full(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	a := writeFile(t, tmpDir, "a.txt", "kitten")
	b := writeFile(t, tmpDir, "b.txt", "sitting")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"directional", []string{a, b}, "Similarity: 66.666667%\n"},
		{"full short flag", []string{a, b, "-f"}, "Similarity: 61.904762%\n"},
		{"full long flag", []string{"--full", a, b}, "Similarity: 61.904762%\n"},
		{"compare subcommand", []string{"compare", a, b, "-f"}, "Similarity: 61.904762%\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCmd(t, append([]string{"--root", tmpDir}, tt.args...)...)
			if err != nil {
				t.Fatalf("compare failed: %v", err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestLegacyCompare_Directory(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	query := writeFile(t, tmpDir, "query.txt", "abc")
	dir := filepath.Join(tmpDir, "corpus")
	writeFile(t, dir, "xyz.txt", "xyz")
	writeFile(t, dir, "abx.txt", "abx")
	writeFile(t, dir, "abc.txt", "abc")
	writeFile(t, dir, "bad.c", "int x.y = 3;")

	out, err := runCmd(t, "--root", tmpDir, query, dir)
	if err != nil {
		t.Fatalf("directory compare failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %q", out)
	}
	want := []string{
		"n: " + filepath.Join(dir, "abc.txt") + " p: 100.000000",
		"n: " + filepath.Join(dir, "abx.txt") + " p: 66.666667",
		"n: " + filepath.Join(dir, "xyz.txt") + " p: 0.000000",
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d = %q, want %q", i, lines[i], w)
		}
	}
	if !strings.HasPrefix(lines[3], "n: "+filepath.Join(dir, "bad.c")+" error: ") {
		t.Errorf("failed entry line = %q", lines[3])
	}
}

func TestCompare_JSON(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	a := writeFile(t, tmpDir, "a.txt", "kitten")
	b := writeFile(t, tmpDir, "b.txt", "sitting")

	out, err := runCmd(t, "--root", tmpDir, "--json", "compare", a, b)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if result["symmetric"] != false {
		t.Errorf("symmetric = %v", result["symmetric"])
	}
	counts, ok := result["counts"].(map[string]any)
	if !ok {
		t.Fatalf("counts missing: %v", result)
	}
	if counts["match"] != 4.0 || counts["substitute"] != 2.0 || counts["insert"] != 1.0 {
		t.Errorf("counts = %v", counts)
	}
}

func TestCompare_Errors(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	a := writeFile(t, tmpDir, "a.txt", "kitten")
	bad := writeFile(t, tmpDir, "bad.c", "int x.y = 3;")

	t.Run("missing file", func(t *testing.T) {
		_, err := runCmd(t, "--root", tmpDir, a, filepath.Join(tmpDir, "missing.txt"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected os.ErrNotExist, got %v", err)
		}
	})

	t.Run("invalid identifier", func(t *testing.T) {
		_, err := runCmd(t, "--root", tmpDir, a, bad)
		if !errors.Is(err, canon.ErrInvalidIdentifier) {
			t.Errorf("expected ErrInvalidIdentifier, got %v", err)
		}
	})

	t.Run("one argument", func(t *testing.T) {
		if _, err := runCmd(t, "--root", tmpDir, a); err == nil {
			t.Error("expected error for a single argument")
		}
	})

	t.Run("too many arguments", func(t *testing.T) {
		if _, err := runCmd(t, "--root", tmpDir, a, a, a); err == nil {
			t.Error("expected error for three arguments")
		}
	})
}

func TestCompare_ExtensionFilter(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	cfg := config.Default()
	cfg.Input.Extensions = []string{".c"}
	path, err := config.DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath failed: %v", err)
	}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	txt := writeFile(t, tmpDir, "a.txt", "kitten")
	c := writeFile(t, tmpDir, "a.c", sumSource)

	if _, err := runCmd(t, "--root", tmpDir, txt, c); err == nil || !strings.Contains(err.Error(), "input.extensions") {
		t.Errorf("expected extension error, got %v", err)
	}
	if _, err := runCmd(t, "--root", tmpDir, c, txt); err != nil {
		t.Errorf("allowed query file rejected: %v", err)
	}
}

func TestCanonCmd(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	file := writeFile(t, tmpDir, "sum.c", sumSource)

	out, err := runCmd(t, "--root", tmpDir, "canon", file, "--identifiers")
	if err != nil {
		t.Fatalf("canon failed: %v", err)
	}
	want := "int 0 int 1 int 2 int 3 1 + 2 return 3\n0: sum\n1: a\n2: b\n3: total\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestAlignCmd(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	a := writeFile(t, tmpDir, "a.txt", "kitten")
	b := writeFile(t, tmpDir, "b.txt", "sitting")

	out, err := runCmd(t, "--root", tmpDir, "align", a, b)
	if err != nil {
		t.Fatalf("align failed: %v", err)
	}
	for _, want := range []string{
		"Matches:       4\n",
		"Substitutions: 2\n",
		"Deletions:     0\n",
		"Insertions:    1\n",
		"Cost:          3\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Script:") {
		t.Error("script should only be printed with --script")
	}

	out, err = runCmd(t, "--root", tmpDir, "--json", "align", a, b, "--script")
	if err != nil {
		t.Fatalf("align --json failed: %v", err)
	}
	var result struct {
		Cost     int    `json:"cost"`
		Distance int    `json:"distance"`
		Script   string `json:"script"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if result.Cost != 3 || result.Distance != 3 || len(result.Script) != 7 {
		t.Errorf("result = %+v", result)
	}
}

func TestAlignCmd_LongInput(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	a := writeFile(t, tmpDir, "a.txt", "x")
	b := writeFile(t, tmpDir, "b.txt", strings.Repeat("y", 70000))

	out, err := runCmd(t, "--root", tmpDir, "--json", "align", a, b)
	if err != nil {
		t.Fatalf("align failed on long input: %v", err)
	}
	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if result["cost"] != 70000.0 {
		t.Errorf("cost = %v, want 70000", result["cost"])
	}
	if _, ok := result["distance"]; ok {
		t.Error("distance should be omitted when the cross-check is skipped")
	}
}

func TestCrossCheck(t *testing.T) {
	tests := []struct {
		name        string
		a, b        []byte
		wantDist    int
		wantChecked bool
	}{
		{"short", []byte("kitten"), []byte("sitting"), 3, true},
		{"below limit", []byte("x"), bytes.Repeat([]byte("y"), math.MaxUint16-1), math.MaxUint16 - 1, true},
		{"at limit", []byte("x"), bytes.Repeat([]byte("y"), math.MaxUint16), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dist, checked := crossCheck(tt.a, tt.b)
			if dist != tt.wantDist || checked != tt.wantChecked {
				t.Errorf("crossCheck() = %d, %v, want %d, %v", dist, checked, tt.wantDist, tt.wantChecked)
			}
		})
	}
}

func TestByteString(t *testing.T) {
	in := []byte{'a', 0xff, 0x00}
	if got := []rune(byteString(in)); len(got) != 3 || got[1] != 0xff {
		t.Errorf("byteString(%v) runes = %v", in, got)
	}
}

func TestHistoryCmd(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	a := writeFile(t, tmpDir, "a.txt", "kitten")
	b := writeFile(t, tmpDir, "b.txt", "sitting")

	out, err := runCmd(t, "--root", tmpDir, "history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if out != "No comparisons recorded.\n" {
		t.Errorf("empty history output = %q", out)
	}

	if _, err := runCmd(t, "--root", tmpDir, a, b); err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if _, err := runCmd(t, "--root", tmpDir, a, b, "-f"); err != nil {
		t.Fatalf("compare failed: %v", err)
	}

	out, err = runCmd(t, "--root", tmpDir, "history", "--limit", "1")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %q", out)
	}
	if !strings.Contains(lines[0], "symmetric") || !strings.Contains(lines[0], a+" -> "+b) {
		t.Errorf("newest entry = %q", lines[0])
	}

	out, err = runCmd(t, "--root", tmpDir, "--json", "history")
	if err != nil {
		t.Fatalf("history --json failed: %v", err)
	}
	var result struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if result.Count != 2 {
		t.Errorf("count = %d, want 2", result.Count)
	}
}

func TestConfigCmd(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	out, err := runCmd(t, "config", "set", "scoring.symmetric", "true")
	if err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	if out != "Set scoring.symmetric = true\n" {
		t.Errorf("set output = %q", out)
	}

	out, err = runCmd(t, "config", "get", "scoring.symmetric")
	if err != nil {
		t.Fatalf("config get failed: %v", err)
	}
	if out != "scoring.symmetric = true\n" {
		t.Errorf("get output = %q", out)
	}

	out, err = runCmd(t, "config", "get", "llm.provider")
	if err != nil {
		t.Fatalf("config get failed: %v", err)
	}
	if !strings.Contains(out, "Unknown configuration key") {
		t.Errorf("unknown key output = %q", out)
	}

	out, err = runCmd(t, "config", "list")
	if err != nil {
		t.Fatalf("config list failed: %v", err)
	}
	for _, key := range config.Keys() {
		if !strings.Contains(out, key+":") {
			t.Errorf("list output missing %s", key)
		}
	}

	out, err = runCmd(t, "--json", "config", "set", "logging.level", "loud")
	if err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	if !strings.Contains(out, `"error"`) {
		t.Errorf("expected JSON error, got %q", out)
	}

	path, _ := config.DefaultPath()
	saved, err := config.LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if !saved.Scoring.Symmetric || saved.Logging.Level != "info" {
		t.Errorf("saved config = %+v", saved)
	}
}

func TestConfigSet_IgnoresEnvironment(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	t.Setenv("SIMCHECK_LOG_LEVEL", "trace")

	if _, err := runCmd(t, "config", "set", "scoring.symmetric", "true"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}

	path, _ := config.DefaultPath()
	saved, err := config.LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if saved.Logging.Level != "info" {
		t.Errorf("environment override leaked into config file: level = %q", saved.Logging.Level)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "simcheck version "+version) {
		t.Errorf("output = %q", out)
	}

	out, err = runCmd(t, "--json", "version")
	if err != nil {
		t.Fatalf("version --json failed: %v", err)
	}
	var result map[string]string
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if result["version"] != version {
		t.Errorf("version = %q", result["version"])
	}
}
