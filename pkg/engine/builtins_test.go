package engine

import (
	"math"
	"os"
	"strings"
	"testing"

	"github.com/chazu/csgtree/pkg/boolean"
	"github.com/chazu/csgtree/pkg/cache"
	"github.com/chazu/csgtree/pkg/gear"
	"github.com/chazu/csgtree/pkg/shape"
	"github.com/chazu/csgtree/pkg/solid"
	"github.com/chazu/csgtree/pkg/transform"
	"github.com/chazu/csgtree/pkg/tree"
	zygo "github.com/glycerine/zygomys/zygo"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "engine-cache")
	if err != nil {
		panic(err)
	}
	cache.Configure(cache.Config{Dir: dir, Backend: cache.BackendDir})
	code := m.Run()
	_ = cache.Shutdown()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(circle :r 5)`,
			expect: `(circle "__kw_r" 5)`,
		},
		{
			name:   "multiple keywords",
			input:  `(cylinder :h 10 :r1 2)`,
			expect: `(cylinder "__kw_h" 10 "__kw_r1" 2)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(linear-extrude :height 5 c)`,
			expect: `(linear_extrude "__kw_height" 5 c)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative number preserved",
			input:  `(vec3 -5 0 0)`,
			expect: `(vec3 -5 0 0)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:pressure-angle`,
			expect: `"__kw_pressure-angle"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// runSource evaluates source in a fresh sandbox and returns the value of
// the last expression.
func runSource(t *testing.T, source string) zygo.Sexp {
	t.Helper()
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	var root tree.Item
	registerBuiltins(env, &root)
	if err := env.LoadString(preprocessSource(source)); err != nil {
		t.Fatalf("load: %v", err)
	}
	res, err := env.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return res
}

// evalRoot evaluates source through the engine and returns the root item.
func evalRoot(t *testing.T, source string) tree.Item {
	t.Helper()
	g, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if g == nil || g.RootNode() == nil {
		t.Fatal("expected a design")
	}
	return g.RootNode().Item
}

// ---------------------------------------------------------------------------
// Shapes and solids
// ---------------------------------------------------------------------------

func TestSimpleCircle(t *testing.T) {
	eng := NewEngine()

	g, evalErrs, err := eng.Evaluate(`(circle :r 5 :name "disc" :fn 12)`)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if g.NodeCount() != 1 {
		t.Fatalf("expected 1 node, got %d", g.NodeCount())
	}

	disc := g.Lookup("disc")
	if disc == nil {
		t.Fatal("expected node named 'disc'")
	}
	if disc.Kind != shape.KindCircle {
		t.Errorf("expected %s, got %s", shape.KindCircle, disc.Kind)
	}
	c, ok := disc.Item.(*shape.Circle)
	if !ok {
		t.Fatalf("expected *shape.Circle, got %T", disc.Item)
	}
	if c.Radius() != 5 {
		t.Errorf("expected radius 5, got %f", c.Radius())
	}
	if fn, _ := c.Attributes().Get(tree.AttrFixedCount); fn != 12 {
		t.Errorf("expected $fn 12, got %v", fn)
	}
}

func TestVariableReference(t *testing.T) {
	root := evalRoot(t, `
(def r 3)
(sphere :d (* 2 r))
`)
	s, ok := root.(*solid.Sphere)
	if !ok {
		t.Fatalf("expected *solid.Sphere, got %T", root)
	}
	if s.Radius() != 3 {
		t.Errorf("expected radius 3, got %f", s.Radius())
	}
}

func TestSizeForms(t *testing.T) {
	tests := []struct {
		source string
		want   [3]float64
	}{
		{`(cube 4)`, [3]float64{4, 4, 4}},
		{`(cube 1 2 3)`, [3]float64{1, 2, 3}},
		{`(cube :size (vec3 1 2 3))`, [3]float64{1, 2, 3}},
		{`(cube 4 :z 1)`, [3]float64{4, 4, 1}},
		{`(cube :x 1 :y 2 :z 3)`, [3]float64{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			c, ok := evalRoot(t, tt.source).(*solid.Cube)
			if !ok {
				t.Fatal("expected a cube")
			}
			size := c.Size()
			if got := [3]float64{size.X, size.Y, size.Z}; got != tt.want {
				t.Errorf("size = %v, want %v", got, tt.want)
			}
		})
	}

	sq, ok := evalRoot(t, `(square 10 20)`).(*shape.Square)
	if !ok {
		t.Fatal("expected a square")
	}
	if size := sq.Size(); size.X != 10 || size.Y != 20 {
		t.Errorf("square size = %v, want 10x20", size)
	}
}

func TestCylinderRadii(t *testing.T) {
	c, ok := evalRoot(t, `(cylinder :h 10 :r 2 :r2 1)`).(*solid.Cylinder)
	if !ok {
		t.Fatal("expected a cylinder")
	}
	if c.Height() != 10 || c.Radius1() != 2 || c.Radius2() != 1 {
		t.Errorf("cylinder = h%g r%g/%g, want h10 r2/1", c.Height(), c.Radius1(), c.Radius2())
	}
}

func TestPolygonWithPaths(t *testing.T) {
	root := evalRoot(t, `
(polygon
  :points (list (vec2 0 0) (vec2 10 0) (vec2 10 10) (vec2 0 10)
                (vec2 2 2) (vec2 4 2) (vec2 4 4))
  :paths (list (list 0 1 2 3) (list 4 5 6)))
`)
	p, ok := root.(*shape.Polygon)
	if !ok {
		t.Fatalf("expected *shape.Polygon, got %T", root)
	}
	paths := p.Paths()
	if len(paths) != 2 || len(paths[0]) != 4 || len(paths[1]) != 3 {
		t.Errorf("unexpected paths: %v", paths)
	}
}

func TestExtrusion(t *testing.T) {
	root := evalRoot(t, `(linear-extrude :height 5 :twist 90 (square 2))`)
	e, ok := root.(*solid.LinearExtrude)
	if !ok {
		t.Fatalf("expected *solid.LinearExtrude, got %T", root)
	}
	if e.Height() != 5 || e.Twist() != 90 || e.Scale() != 1 {
		t.Errorf("extrusion = %g/%g/%g, want 5/90/1", e.Height(), e.Twist(), e.Scale())
	}
	if e.Profile().Kind() != shape.KindSquare {
		t.Errorf("profile kind = %s", e.Profile().Kind())
	}
}

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

func TestTransformForms(t *testing.T) {
	tests := []struct {
		source string
		kind   tree.Kind
		want   [3]float64
	}{
		{`(translate (vec3 1 2 3) (cube 1))`, transform.KindTranslate, [3]float64{1, 2, 3}},
		{`(translate :x 5 (cube 1))`, transform.KindTranslate, [3]float64{5, 0, 0}},
		{`(rotate 45 (cube 1))`, transform.KindRotate, [3]float64{0, 0, 45}},
		{`(rotate :by (vec3 90 0 0) (cube 1))`, transform.KindRotate, [3]float64{90, 0, 0}},
		{`(scale 2 (cube 1))`, transform.KindScale, [3]float64{2, 2, 2}},
		{`(scale :z 3 (cube 1))`, transform.KindScale, [3]float64{1, 1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			root := evalRoot(t, tt.source)
			tr, ok := root.(transform.Transform)
			if !ok || tr.Kind() != tt.kind {
				t.Fatalf("expected %s, got %s", tt.kind, root.Kind())
			}
			v := tr.Vector()
			if got := [3]float64{v.X, v.Y, v.Z}; got != tt.want {
				t.Errorf("vector = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDifferenceUnitesCuts(t *testing.T) {
	root := evalRoot(t, `(difference (cube 10) (sphere 1) (translate :x 3 (sphere 1)))`)
	d, ok := root.(*boolean.Difference)
	if !ok {
		t.Fatalf("expected *boolean.Difference, got %T", root)
	}
	if d.Child(1).Kind() != boolean.KindUnion {
		t.Errorf("cut kind = %s, want %s", d.Child(1).Kind(), boolean.KindUnion)
	}
}

func TestListChildrenAreFlattened(t *testing.T) {
	root := evalRoot(t, `(union (list (cube 1) (sphere 1)) (cylinder :h 1 :r 1))`)
	u, ok := root.(*boolean.Union)
	if !ok {
		t.Fatalf("expected *boolean.Union, got %T", root)
	}
	if u.NumChildren() != 3 {
		t.Errorf("expected 3 children, got %d", u.NumChildren())
	}
}

func TestExplicitDesign(t *testing.T) {
	root := evalRoot(t, `
(design (cube 1 :name "chosen"))
(sphere 2)
`)
	if root.Name() != "chosen" {
		t.Errorf("root name = %q, want %q", root.Name(), "chosen")
	}
}

// ---------------------------------------------------------------------------
// Gears
// ---------------------------------------------------------------------------

func TestAxisDistance(t *testing.T) {
	res := runSource(t, `
(def pinion (gear-wheel :n 20 :m 2 :height 5))
(def ring (inner-wheel :n 40 :m 2 :height 5 :rim 3))
(axis-distance pinion ring)
`)
	f, ok := res.(*zygo.SexpFloat)
	if !ok {
		t.Fatalf("expected a float, got %T", res)
	}
	if math.Abs(f.Val-20) > 1e-9 {
		t.Errorf("axis distance = %f, want 20", f.Val)
	}
}

func TestGearbox(t *testing.T) {
	eng := NewEngine()

	source := `
(def m 2)
(def pw (gear-wheel :n 20 :m m :height 5))
(def rw (inner-wheel :n 40 :m m :height 5 :rim 3))
(def d (axis-distance pw rw))

(design
  (group :name "gearbox"
    (part "ring" rw)
    (translate :x d (part "pinion" pw))
    (translate :x (- 0 d) (part "pinion" pw))))
`
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	if g.Lookup("gearbox") == nil {
		t.Fatal("missing 'gearbox' node")
	}
	parts := g.Parts()
	if len(parts) != 2 {
		t.Fatalf("expected 2 distinct parts, got %d", len(parts))
	}
	if parts[0].Part != "pinion" || parts[0].Uses != 2 {
		t.Errorf("first part = %s used %d times, want pinion used 2 times", parts[0].Part, parts[0].Uses)
	}
	if parts[1].Part != "ring" {
		t.Errorf("second part = %s, want ring", parts[1].Part)
	}
	wheel, ok := g.Children(parts[0])[0].Item.(*gear.Wheel)
	if !ok {
		t.Fatalf("pinion child is %T, want *gear.Wheel", g.Children(parts[0])[0].Item)
	}
	if wheel.Geometry().N() != 20 {
		t.Errorf("pinion teeth = %d, want 20", wheel.Geometry().N())
	}
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"circle without radius", `(circle)`, "radius required"},
		{"bad number", `(cube :x "a")`, "expected number"},
		{"difference needs a cut", `(difference (cube 1))`, "at least one cut"},
		{"part of a shape", `(part "p" (circle 1))`, "part"},
		{"wheel without height", `(gear-wheel :n 20 :m 2)`, ":height required"},
		{"gear without teeth", `(gear-profile :m 2)`, ":n required"},
		{"axis distance of cubes", `(axis-distance (cube 1) (cube 1))`, "not a gear"},
		{"translate by a number", `(translate 5 (cube 1))`, "expected a vector"},
		{"mixed union", `(union (cube 1) (circle 1))`, "mixes 2D and 3D"},
		{"zero fragment size", `(gear-profile :n 20 :m 2 :fs 0)`, "fs must be positive"},
		{"negative fragment angle", `(circle 1 :fa -1)`, "fa must be positive"},
		{"negative fragment count", `(sphere 1 :fn -2)`, "fn must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, evalErrs, err := NewEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if g != nil {
				t.Fatal("expected nil graph on eval error")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected an eval error")
			}
			if !strings.Contains(evalErrs[0].Message, tt.want) {
				t.Errorf("message = %q, want containing %q", evalErrs[0].Message, tt.want)
			}
		})
	}
}

func TestEvaluateFullReportsWarnings(t *testing.T) {
	res, err := NewEngine().EvaluateFull(`(union (cube 1 :name "a") (sphere 1 :name "a"))`)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", res.Warnings)
	}
	if !strings.Contains(res.Warnings[0].Message, `"a"`) {
		t.Errorf("warning = %q", res.Warnings[0].Message)
	}
	if res.Root() == nil || res.Root().Kind() != boolean.KindUnion {
		t.Errorf("root = %v", res.Root())
	}
}

func TestEvaluateFullEmpty(t *testing.T) {
	res, err := NewEngine().EvaluateFull("")
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if res.Root() != nil {
		t.Errorf("expected no root, got %v", res.Root())
	}
	var none *EvalResult
	if none.Root() != nil {
		t.Error("nil result should have no root")
	}
}

// ---------------------------------------------------------------------------
// Plain arithmetic still works (regression)
// ---------------------------------------------------------------------------

func TestArithmeticStillWorks(t *testing.T) {
	eng := NewEngine()
	g, evalErrs, err := eng.Evaluate("(+ 1 2)")
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if g == nil {
		t.Fatal("expected non-nil graph")
	}
	if g.NodeCount() != 0 {
		t.Errorf("expected no nodes, got %d", g.NodeCount())
	}
}
