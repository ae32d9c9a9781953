package main

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"slices"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/chazu/csgtree/pkg/cache"
	"github.com/chazu/csgtree/pkg/kernel/sdfx"
	"github.com/chazu/csgtree/pkg/preview"
	"github.com/chazu/csgtree/pkg/tree"
)

var (
	evalMesh    bool
	evalJSON    bool
	evalCells   int
	evalPNG     string
	evalPNGSize int

	evalCmd = &cobra.Command{
		Use:   "eval [file]",
		Short: "Evaluate a design script and report its structure",
		Long: `Evaluate a design script ("-" or no argument reads stdin), validate the
resulting tree and print a summary. With --mesh every part is tessellated;
with --json the meshes are written as JSON instead of the summary.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runEval,
	}
)

func init() {
	evalCmd.Flags().BoolVar(&evalMesh, "mesh", false, "tessellate every part")
	evalCmd.Flags().BoolVar(&evalJSON, "json", false, "write the result as JSON (implies --mesh)")
	evalCmd.Flags().IntVar(&evalCells, "cells", 200, "marching cubes cells along the longest axis")
	evalCmd.Flags().StringVar(&evalPNG, "png", "", "render a planar design to this PNG file")
	evalCmd.Flags().IntVar(&evalPNGSize, "png-size", preview.DefaultOptions.Size, "longer side of the PNG in pixels")
}

func readSource(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(args[0])
	return string(b), err
}

func runEval(cmd *cobra.Command, args []string) error {
	source, err := readSource(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if evalCells < 8 {
		return fmt.Errorf("--cells must be at least 8, got %d", evalCells)
	}
	s := newSession(sdfx.New(sdfx.WithMeshCells(evalCells)), evalMesh || evalJSON)
	res := s.Evaluate(source)
	out := cmd.OutOrStdout()

	if evalJSON {
		if err := writeJSON(out, res); err != nil {
			return err
		}
	} else {
		printResult(out, res)
	}
	if len(res.Errors) > 0 {
		return fmt.Errorf("%d evaluation error(s)", len(res.Errors))
	}
	if evalPNG != "" {
		return writePreview(evalPNG, res.Root(), evalPNGSize)
	}
	return nil
}

func printResult(w io.Writer, res *Result) {
	for _, e := range res.Errors {
		fmt.Fprintln(w, "error:", formatMessage(e))
	}
	for _, m := range res.Warnings {
		fmt.Fprintln(w, "warning:", formatMessage(m))
	}
	if res.graph == nil || res.Root() == nil {
		if len(res.Errors) == 0 {
			fmt.Fprintln(w, "empty design")
		}
		return
	}

	root := res.Root()
	st := res.graph.Stats()
	fmt.Fprintf(w, "root: %s (%s)\n", root.Kind(), root.Dim())
	fmt.Fprintf(w, "nodes: %d  items: %d  parts: %d\n", st.Nodes, st.Items, st.Parts)
	kinds := lo.Keys(st.ByKind)
	slices.Sort(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-24s %d\n", k, st.ByKind[k])
	}
	for _, m := range res.Meshes {
		fmt.Fprintf(w, "part %s x%d: %d triangles, %d vertices, %.2f x %.2f x %.2f\n",
			m.PartName, m.Count, len(m.Indices)/3, len(m.Vertices)/3, m.Size[0], m.Size[1], m.Size[2])
	}
}

func formatMessage(m Message) string {
	s := m.Message
	if m.Line > 0 {
		s = fmt.Sprintf("line %d: %s", m.Line, s)
	}
	if m.Node != "" {
		s += " [" + m.Node + "]"
	}
	return s
}

var errNoDesign = errors.New("nothing to render")

func writePreview(path string, it tree.Item, size int) (err error) {
	if it == nil {
		return errNoDesign
	}
	opts := preview.DefaultOptions
	opts.Size = size
	img, err := preview.Render(it, tree.Attributes{}, opts)
	if err != nil {
		return err
	}
	// Encode into the cache scratch area first so a failed write never
	// leaves a truncated image at path.
	tmp, err := cache.TempFile("png")
	if err != nil {
		return err
	}
	if err := encodeFile(tmp, img); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err == nil {
		return nil
	}
	// Rename fails across file systems.
	return copyFile(tmp, path)
}

func encodeFile(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return preview.Encode(f, img, preview.FormatPNG)
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(out, in)
	return err
}
