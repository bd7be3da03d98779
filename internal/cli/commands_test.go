package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	derrors "github.com/matzehuels/discrete/pkg/errors"
	"github.com/matzehuels/discrete/pkg/group"
	"github.com/matzehuels/discrete/pkg/toddcoxeter"
)

// isolate points every default path into a temp dir so tests never see the
// user's settings or cache.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return dir
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var logs, stdout bytes.Buffer
	var stderr syncBuffer

	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(""))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// writeSettings writes a settings file that caches into dir.
func writeSettings(t *testing.T, dir string) string {
	t.Helper()
	return writeScopedSettings(t, dir, "settings.toml", "")
}

// writeScopedSettings writes a settings file named name that caches into
// dir/results under the key prefix.
func writeScopedSettings(t *testing.T, dir, name, prefix string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	body := `limit = 500

[tiling]
schlafli = "{5,3}"
relations = []
subgroup = "0 1"

[cache]
backend = "file"
dir = "` + filepath.ToSlash(filepath.Join(dir, "results")) + `"
prefix = "` + prefix + `"
ttl = "1h"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type enumerationOutput struct {
	Group    *group.Group      `json:"group"`
	Stats    toddcoxeter.Stats `json:"stats"`
	CacheHit bool              `json:"cache_hit"`
}

func decodeEnumeration(t *testing.T, out string) enumerationOutput {
	t.Helper()
	var got enumerationOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	return got
}

func TestEnumerateCommandJSON(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "enumerate", "-g", "2", "-r", "0 1;3", "--no-cache", "-f", "json")
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}

	got := decodeEnumeration(t, out)
	if got.Group.PointCount() != 6 {
		t.Errorf("points = %d, want 6", got.Group.PointCount())
	}
	if !got.Stats.Complete {
		t.Error("dihedral group of order 6 should be complete")
	}
	if got.CacheHit {
		t.Error("--no-cache run reported a cache hit")
	}
}

func TestEnumerateCommandTable(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "enumerate", "--schlafli", "{5,3}", "-s", "0 1", "--no-cache")
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	for _, want := range []string{"point", "g2", "12 points", "complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestEnumerateCommandSettingsAndCache(t *testing.T) {
	dir := isolate(t)
	settings := writeSettings(t, dir)

	out, _, err := execute(t, "--config", settings, "enumerate", "-f", "json")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := decodeEnumeration(t, out)
	if first.Group.PointCount() != 12 {
		t.Errorf("points = %d, want 12 dodecahedron faces", first.Group.PointCount())
	}
	if first.CacheHit {
		t.Error("first run should compute")
	}

	out, _, err = execute(t, "--config", settings, "enumerate", "-f", "json")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !decodeEnumeration(t, out).CacheHit {
		t.Error("second run should be served from the cache")
	}

	out, _, err = execute(t, "--config", settings, "enumerate", "-f", "json", "--refresh")
	if err != nil {
		t.Fatalf("refresh run: %v", err)
	}
	if decodeEnumeration(t, out).CacheHit {
		t.Error("--refresh should bypass the cache")
	}
}

func TestEnumerateCommandCachePrefix(t *testing.T) {
	dir := isolate(t)
	staging := writeScopedSettings(t, dir, "staging.toml", "staging:")
	prod := writeScopedSettings(t, dir, "prod.toml", "prod:")

	enumerate := func(settings string) bool {
		t.Helper()
		out, _, err := execute(t, "--config", settings, "enumerate", "-f", "json")
		if err != nil {
			t.Fatalf("enumerate with %s: %v", filepath.Base(settings), err)
		}
		return decodeEnumeration(t, out).CacheHit
	}

	if enumerate(staging) {
		t.Error("first staging run should compute")
	}
	if enumerate(prod) {
		t.Error("prod must not see the staging entry in the shared directory")
	}
	if !enumerate(staging) {
		t.Error("second staging run should hit its own entry")
	}

	out, _, err := execute(t, "--config", staging, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out, "Cleared 2 cached entries") {
		t.Errorf("both scoped entries live in one directory, clear output = %q", out)
	}
}

func TestEnumerateCommandOutputFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "d3.json")

	_, stderr, err := execute(t, "enumerate", "-g", "2", "-r", "0 1;3", "--no-cache", "-f", "json", "-o", path)
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if !strings.Contains(stderr, path) {
		t.Errorf("stderr should name the output file, got %q", stderr)
	}

	g, err := readGroupFile(path)
	if err != nil {
		t.Fatalf("readGroupFile: %v", err)
	}
	if g.PointCount() != 6 {
		t.Errorf("points = %d, want 6", g.PointCount())
	}
}

func TestEnumerateCommandErrors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
		code derrors.Code
	}{
		{"bad format", []string{"-g", "2", "-r", "0 1;3", "-f", "xml"}, derrors.ErrCodeInvalidFormat},
		{"bad schlafli", []string{"--schlafli", "{5,x}"}, derrors.ErrCodeInvalidSchlafli},
		{"relation out of range", []string{"-g", "2", "-r", "0 2;3"}, derrors.ErrCodeInvalidRelation},
		{"negative limit", []string{"-g", "2", "-r", "0 1;3", "--limit=-1"}, derrors.ErrCodeInvalidLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"enumerate", "--no-cache"}, tt.args...)
			_, _, err := execute(t, args...)
			if !derrors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestQuotientCommand(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "quotient", "--schlafli", "{5,3}", "-s", "0 1", "--no-cache")
	if err != nil {
		t.Fatalf("quotient: %v", err)
	}
	for _, want := range []string{"120", "12", "Both tables complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestQuotientCommandUnknownRank(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "quotient", "--rank", "7", "--no-cache")
	if !derrors.Is(err, derrors.ErrCodeUnsupported) {
		t.Errorf("error = %v, want UNSUPPORTED", err)
	}
}

func TestRenderCommandDOT(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "render", "-g", "2", "-r", "0 1;2", "--no-cache", "-f", "dot")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out, "graph Cayley {") {
		t.Errorf("output is not a Cayley graph:\n%s", out)
	}
	if got := strings.Count(out, "tooltip="); got != 4 {
		t.Errorf("Klein four-group has %d edges, want 4", got)
	}
}

func TestRenderCommandInput(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "klein.json")

	if _, _, err := execute(t, "enumerate", "-g", "2", "-r", "0 1;2", "--no-cache", "-f", "json", "-o", path); err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	out, _, err := execute(t, "render", "--input", path, "-f", "dot", "--words")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, `label="e"`) {
		t.Errorf("--words should label the identity e:\n%s", out)
	}
}

func TestReadGroupFileBare(t *testing.T) {
	g, err := group.New(2, 1, []group.Point{1, 0}, []group.Word{{}, {0}})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "z2.json")
	data, err := group.MarshalGroup(g)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := readGroupFile(path)
	if err != nil {
		t.Fatalf("readGroupFile: %v", err)
	}
	if got.PointCount() != 2 || got.GeneratorCount() != 1 {
		t.Errorf("got %d points, %d generators, want 2 and 1", got.PointCount(), got.GeneratorCount())
	}

	if _, err := readGroupFile(filepath.Join(t.TempDir(), "missing.json")); !derrors.Is(err, derrors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestConfigCommands(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "config.toml")

	out, _, err := execute(t, "--config", path, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("config path = %q, want %q", strings.TrimSpace(out), path)
	}

	if _, _, err := execute(t, "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, _, err := execute(t, "--config", path, "config", "init"); !derrors.IsInvalid(err) {
		t.Errorf("second init error = %v, want invalid input", err)
	}
	if _, _, err := execute(t, "--config", path, "config", "init", "--force", "--rank", "4"); err != nil {
		t.Fatalf("config init --force: %v", err)
	}

	out, _, err = execute(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, `schlafli = "{8,3,3}"`) {
		t.Errorf("config show should reflect the rank 4 preset:\n%s", out)
	}
}

func TestConfigShowDefaults(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"limit = 500", `schlafli = "{7,3}"`, `backend = "file"`} {
		if !strings.Contains(out, want) {
			t.Errorf("defaults missing %q:\n%s", want, out)
		}
	}
}

func TestCacheCommands(t *testing.T) {
	dir := isolate(t)
	settings := writeSettings(t, dir)

	out, _, err := execute(t, "--config", settings, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if want := filepath.Join(dir, "results"); strings.TrimSpace(out) != filepath.ToSlash(want) && strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), want)
	}

	out, _, err = execute(t, "--config", settings, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear on empty cache: %v", err)
	}
	if !strings.Contains(out, "Cache is empty") {
		t.Errorf("empty clear output = %q", out)
	}

	if _, _, err := execute(t, "--config", settings, "enumerate"); err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	out, _, err = execute(t, "--config", settings, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out, "Cleared 1 cached entries") {
		t.Errorf("clear output = %q", out)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, _, err := execute(t, "completion", shell)
			if err != nil {
				t.Fatalf("completion %s: %v", shell, err)
			}
			if !strings.Contains(out, "discrete") {
				t.Errorf("%s completion does not mention the binary", shell)
			}
		})
	}

	if _, _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("unsupported shell should fail")
	}
}

func TestVersionFlag(t *testing.T) {
	out, _, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.Contains(out, "discrete") {
		t.Errorf("version output = %q", out)
	}
}
