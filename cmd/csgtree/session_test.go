package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/csgtree/pkg/cache"
	"github.com/chazu/csgtree/pkg/gear"
	"github.com/chazu/csgtree/pkg/kernel/sdfx"
	"github.com/chazu/csgtree/pkg/shape"
	"github.com/chazu/csgtree/pkg/tree"
)

var testCacheDir string

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "csgtree-cmd-cache")
	if err != nil {
		panic(err)
	}
	testCacheDir = dir
	// The root command loads its configuration from the environment; keep
	// it identical to the cache configured here.
	os.Setenv("CSGTREE_CACHE_DIR", dir)
	os.Setenv("CSGTREE_CACHE_PERSIST", "true")
	os.Setenv("CSGTREE_CACHE_BACKEND", cache.BackendDir)
	cache.Configure(cache.Config{Dir: dir, Persist: true, Backend: cache.BackendDir})
	code := m.Run()
	_ = cache.Shutdown()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func readExample(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile("../../examples/" + name)
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(b)
}

// TestE2EBracketExample exercises the full pipeline: script -> engine ->
// graph -> tessellate -> meshes.
func TestE2EBracketExample(t *testing.T) {
	s := newSession(sdfx.New(sdfx.WithMeshCells(64)), true)
	result := s.Evaluate(readExample(t, "bracket.csg"))

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}

	m := result.Meshes[0]
	if m.PartName != "bracket" || m.Count != 2 {
		t.Errorf("mesh = %q x%d, want bracket x2", m.PartName, m.Count)
	}
	if len(m.Vertices) == 0 || len(m.Normals) == 0 || len(m.Indices) == 0 {
		t.Fatal("mesh has no geometry")
	}
	if m.Color != colorPalette[0] {
		t.Errorf("color = %q, want %q", m.Color, colorPalette[0])
	}

	// The part is meshed in its own frame: plate plus upright.
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	maxX := math.Inf(-1)
	for i := 0; i < len(m.Vertices); i += 3 {
		maxX = math.Max(maxX, float64(m.Vertices[i]))
		minZ = math.Min(minZ, float64(m.Vertices[i+2]))
		maxZ = math.Max(maxZ, float64(m.Vertices[i+2]))
	}
	if math.Abs(maxX-20) > 1 || math.Abs(minZ+1.5) > 1 || math.Abs(maxZ-20) > 1 {
		t.Errorf("unexpected extent: maxX %f, z %f..%f", maxX, minZ, maxZ)
	}
	if math.Abs(m.Size[0]-40) > 2 || math.Abs(m.Size[2]-21.5) > 2 {
		t.Errorf("size = %v, want about 40 x 20 x 21.5", m.Size)
	}
}

func TestE2EGearboxStructure(t *testing.T) {
	s := newSession(sdfx.New(), false)
	result := s.Evaluate(readExample(t, "gearbox.csg"))
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("meshing disabled, got %d meshes", len(result.Meshes))
	}
	root := result.Root()
	if root == nil || root.Kind() != tree.KindGroup || root.Name() != "gearbox" {
		t.Fatalf("unexpected root %v", root)
	}
	parts := result.graph.Parts()
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if parts[0].Part != "pinion" || parts[0].Uses != 2 {
		t.Errorf("first part = %s x%d, want pinion x2", parts[0].Part, parts[0].Uses)
	}
}

func TestE2EEmptySource(t *testing.T) {
	for _, source := range []string{"", "   \n\t", ";; only a comment\n; another\n"} {
		result := newSession(sdfx.New(), true).Evaluate(source)
		if len(result.Errors) > 0 {
			t.Errorf("unexpected errors for %q: %v", source, result.Errors)
		}
		if len(result.Meshes) != 0 {
			t.Errorf("expected 0 meshes for %q, got %d", source, len(result.Meshes))
		}
		if result.Root() != nil {
			t.Errorf("expected no root for %q", source)
		}
	}
}

func TestE2ESyntaxError(t *testing.T) {
	result := newSession(sdfx.New(), true).Evaluate("(cube 1")
	if len(result.Errors) == 0 {
		t.Fatal("expected errors for malformed source")
	}
	if result.Root() != nil {
		t.Error("expected no root after a syntax error")
	}
}

func TestE2EWarnings(t *testing.T) {
	result := newSession(sdfx.New(), false).Evaluate(`(union (cube 1 :name "a") (sphere 1 :name "a"))`)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", result.Warnings)
	}
	if !strings.Contains(result.Warnings[0].Message, `"a"`) {
		t.Errorf("warning = %q", result.Warnings[0].Message)
	}
}

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		msg  Message
		want string
	}{
		{Message{Message: "bad"}, "bad"},
		{Message{Line: 3, Message: "bad"}, "line 3: bad"},
		{Message{Message: "odd", Node: "0123abcd"}, "odd [0123abcd]"},
	}
	for _, tt := range tests {
		if got := formatMessage(tt.msg); got != tt.want {
			t.Errorf("formatMessage(%+v) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

func TestE2EPlanarDesignCannotBeMeshed(t *testing.T) {
	result := newSession(sdfx.New(), true).Evaluate(`(circle 1)`)
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !strings.HasPrefix(result.Errors[0].Message, "tessellation failed") {
		t.Errorf("error = %q", result.Errors[0].Message)
	}
}

func TestE2EColorPaletteWrapping(t *testing.T) {
	var b strings.Builder
	b.WriteString("(union")
	for i := range len(colorPalette) + 2 {
		fmt.Fprintf(&b, ` (translate :x %d (part "p%02d" (cube 1 1 %d)))`, 3*i, i, i+1)
	}
	b.WriteString(")")

	result := newSession(sdfx.New(sdfx.WithMeshCells(16)), true).Evaluate(b.String())
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != len(colorPalette)+2 {
		t.Fatalf("expected %d meshes, got %d", len(colorPalette)+2, len(result.Meshes))
	}
	for i, m := range result.Meshes {
		if want := colorPalette[i%len(colorPalette)]; m.Color != want {
			t.Errorf("mesh %d color = %q, want %q", i, m.Color, want)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	res := &Result{
		Meshes: []MeshData{{
			Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
			Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
			Indices:  []uint32{0, 1, 2},
			PartName: "tri",
			Count:    3,
			Color:    colorPalette[0],
		}},
		Errors:   []Message{},
		Warnings: []Message{{Message: "careful", Node: "deadbeef"}},
	}
	var buf bytes.Buffer
	if err := writeJSON(&buf, res); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}

	var got Result
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(got.Meshes) != 1 || got.Meshes[0].PartName != "tri" || got.Meshes[0].Count != 3 {
		t.Errorf("meshes = %+v", got.Meshes)
	}
	if len(got.Meshes[0].Indices) != 3 {
		t.Errorf("indices = %v", got.Meshes[0].Indices)
	}
	if len(got.Warnings) != 1 || got.Warnings[0].Node != "deadbeef" {
		t.Errorf("warnings = %+v", got.Warnings)
	}
	if strings.Contains(buf.String(), "graph") {
		t.Error("unexported fields must not be encoded")
	}
}

func TestMateDistance(t *testing.T) {
	saved := []any{gearMate, mateInner}
	t.Cleanup(func() {
		gearMate, mateInner = saved[0].(int), saved[1].(bool)
	})

	pinion := gear.NewGeometry(gear.Params{N: 20, M: 2})

	gearMate, mateInner = 40, true
	if d := mateDistance(pinion, false); math.Abs(d-20) > 1e-9 {
		t.Errorf("distance to ring = %f, want 20", d)
	}

	gearMate, mateInner = 30, false
	if d := mateDistance(pinion, false); math.Abs(d-50) > 1e-9 {
		t.Errorf("distance to external gear = %f, want 50", d)
	}
}

func TestCatchConvertsPanics(t *testing.T) {
	err := catch(func() { gear.NewGeometry(gear.Params{N: 20}) })
	if err == nil || !strings.Contains(err.Error(), "exactly one") {
		t.Errorf("err = %v", err)
	}
	if err := catch(func() {}); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestPrintGeometry(t *testing.T) {
	var buf bytes.Buffer
	printGeometry(&buf, gear.NewProfile(gear.Params{N: 20, M: 2}))
	out := buf.String()
	for _, want := range []string{
		"external gear, 20 teeth",
		"pitch diameter      40.0000",
		"module              2.0000",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--config="}, args...))
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("csgtree %v: %v", args, err)
	}
	return out.String()
}

func TestCacheCommands(t *testing.T) {
	out := execute(t, "cache", "info")
	if !strings.Contains(out, testCacheDir) || !strings.Contains(out, "backend:  dir") {
		t.Errorf("unexpected info output:\n%s", out)
	}
	for _, want := range []string{"hits:     ", "(memory ", "misses:   ", "stores:   ", "errors:   "} {
		if !strings.Contains(out, want) {
			t.Errorf("info output missing %q:\n%s", want, out)
		}
	}
	if out := execute(t, "cache", "clear"); !strings.Contains(out, "cache cleared") {
		t.Errorf("unexpected clear output:\n%s", out)
	}
}

func TestEvalCommand(t *testing.T) {
	out := execute(t, "eval", "../../examples/gearbox.csg")
	for _, want := range []string{"root: tree.Group (3D)", "parts: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGearCommand(t *testing.T) {
	png := t.TempDir() + "/profile.png"
	out := execute(t, "gear", "--n", "20", "--m", "2", "--mate", "40", "--mate-inner", "--png", png, "--png-size", "64")
	if !strings.Contains(out, "axis distance to 40 teeth: 20.0000") {
		t.Errorf("unexpected output:\n%s", out)
	}
	b, err := os.ReadFile(png)
	if err != nil {
		t.Fatalf("no preview written: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Error("preview is not a PNG")
	}
}

func TestWritePreviewLeavesNoScratch(t *testing.T) {
	png := t.TempDir() + "/circle.png"
	if err := writePreview(png, shape.NewCircle(5), 32); err != nil {
		t.Fatalf("writePreview: %v", err)
	}
	if _, err := os.Stat(png); err != nil {
		t.Fatalf("no preview written: %v", err)
	}
	tmp, err := cache.TempFile("png")
	if err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(filepath.Dir(tmp))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("scratch area holds %d leftover files", len(entries))
	}
	if err := writePreview(png, nil, 32); err != errNoDesign {
		t.Errorf("err = %v, want errNoDesign", err)
	}
}
