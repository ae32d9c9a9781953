package main

import (
	"io"

	"github.com/ugorji/go/codec"

	"github.com/chazu/csgtree/pkg/engine"
	"github.com/chazu/csgtree/pkg/graph"
	"github.com/chazu/csgtree/pkg/kernel"
	"github.com/chazu/csgtree/pkg/logging"
	"github.com/chazu/csgtree/pkg/tessellate"
	"github.com/chazu/csgtree/pkg/tree"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// session evaluates design sources and optionally meshes them.
type session struct {
	engine *engine.Engine
	kernel kernel.Kernel
	// mesh enables tessellation after a successful evaluation.
	mesh bool
}

// MeshData is the JSON mesh format written by eval --json.
type MeshData struct {
	Vertices []float32  `json:"vertices"`
	Normals  []float32  `json:"normals"`
	Indices  []uint32   `json:"indices"`
	PartName string     `json:"partName"`
	Count    int        `json:"count"`
	Size     [3]float64 `json:"size"`
	Color    string     `json:"color"`
}

// Message is a located error or warning.
type Message struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
	Node    string `json:"node,omitempty"`
}

// Result is the outcome of one evaluation.
type Result struct {
	Meshes   []MeshData `json:"meshes"`
	Errors   []Message  `json:"errors"`
	Warnings []Message  `json:"warnings"`

	graph *graph.DesignGraph
}

// Root returns the evaluated design or nil.
func (r *Result) Root() tree.Item {
	return (&engine.EvalResult{Graph: r.graph}).Root()
}

func newSession(k kernel.Kernel, mesh bool) *session {
	return &session{engine: engine.NewEngine(), kernel: k, mesh: mesh}
}

// Evaluate takes design source and returns the graph, messages and, when
// meshing is enabled, one mesh per part.
func (s *session) Evaluate(source string) *Result {
	result := &Result{
		Meshes:   []MeshData{},
		Errors:   []Message{},
		Warnings: []Message{},
	}
	log := logging.Logger()

	// Step 1: Evaluate the source into a validated design graph.
	res, err := s.engine.EvaluateFull(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Error("evaluate failed", "err", err)
		result.Errors = append(result.Errors, Message{Message: err.Error()})
		return result
	}
	result.graph = res.Graph
	for _, w := range res.Warnings {
		m := Message{Line: w.Line, Col: w.Col, Message: w.Message}
		if !w.NodeID.IsZero() {
			m.Node = w.NodeID.Short()
		}
		result.Warnings = append(result.Warnings, m)
	}
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, Message{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}
	root := result.Root()
	if !s.mesh || root == nil {
		return result
	}

	// Step 2: Tessellate the design into triangle meshes.
	meshes, err := tessellate.Tessellate(root, s.kernel, tree.Attributes{})
	if err != nil {
		log.Error("tessellate failed", "err", err)
		result.Errors = append(result.Errors, Message{Message: "tessellation failed: " + err.Error()})
		return result
	}

	// Step 3: Convert kernel meshes to the output format.
	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Count:    m.Count,
			Size:     m.Size(),
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return result
}

var jsonHandle = &codec.JsonHandle{}

func init() {
	jsonHandle.Indent = 2
}

// writeJSON encodes v to w.
func writeJSON(w io.Writer, v any) error {
	return codec.NewEncoder(w, jsonHandle).Encode(v)
}
