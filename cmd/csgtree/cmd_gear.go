package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chazu/csgtree/pkg/gear"
	"github.com/chazu/csgtree/pkg/preview"
)

var (
	gearFlags   gear.Params
	gearShift   float64
	gearInner   bool
	gearMate    int
	mateShift   float64
	mateInner   bool
	gearPNG     string
	gearPNGSize int

	gearCmd = &cobra.Command{
		Use:   "gear",
		Short: "Print the geometry of an involute gear",
		Long: `Resolve an involute gear from its tooth count and one size parameter
(--m, --d0, --da or --p0) and print its diameters. With --mate the axis
distance to a mating gear is printed as well.`,
		Args: cobra.NoArgs,
		RunE: runGear,
	}
)

func init() {
	f := gearCmd.Flags()
	f.IntVar(&gearFlags.N, "n", 0, "number of teeth")
	f.Float64Var(&gearFlags.M, "m", 0, "module")
	f.Float64Var(&gearFlags.D0, "d0", 0, "pitch diameter")
	f.Float64Var(&gearFlags.Da, "da", 0, "addendum diameter")
	f.Float64Var(&gearFlags.P0, "p0", 0, "circular pitch")
	f.Float64Var(&gearShift, "x", 0, "profile shift factor (default 1 - n/17 below 16 teeth)")
	f.Float64Var(&gearFlags.A, "a", gear.DefaultPressureAngle, "pressure angle in degrees")
	f.Float64Var(&gearFlags.B, "b", 0, "helix angle in degrees")
	f.Float64Var(&gearFlags.Mhf, "mhf", gear.DefaultMinTipWidth, "minimum tip width as a multiple of the module")
	f.Float64Var(&gearFlags.Rot, "rot", 0, "profile rotation in degrees")
	f.BoolVar(&gearInner, "inner", false, "describe an internal (ring) gear")
	f.IntVar(&gearMate, "mate", 0, "teeth of a mating gear; prints the axis distance")
	f.Float64Var(&mateShift, "mate-x", 0, "profile shift factor of the mating gear")
	f.BoolVar(&mateInner, "mate-inner", false, "the mating gear is an internal gear")
	f.StringVar(&gearPNG, "png", "", "render the gear profile to this PNG file")
	f.IntVar(&gearPNGSize, "png-size", preview.DefaultOptions.Size, "longer side of the PNG in pixels")
	_ = gearCmd.MarkFlagRequired("n")
}

// catch converts a constructor panic into an error.
func catch(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	f()
	return nil
}

func runGear(cmd *cobra.Command, args []string) error {
	p := gearFlags
	if cmd.Flags().Changed("x") {
		p.X = gear.Shift(gearShift)
	}

	var prof *gear.Profile
	err := catch(func() {
		if gearInner {
			prof = gear.NewInnerProfile(p)
		} else {
			prof = gear.NewProfile(p)
		}
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printGeometry(out, prof)

	if gearMate > 0 {
		var d float64
		err := catch(func() {
			d = mateDistance(prof.Geometry(), cmd.Flags().Changed("mate-x"))
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "axis distance to %d teeth: %.4f\n", gearMate, d)
	}

	if gearPNG != "" {
		return writePreview(gearPNG, prof, gearPNGSize)
	}
	return nil
}

func mateDistance(g gear.Geometry, shifted bool) float64 {
	mp := gear.Params{N: gearMate, M: g.M(), A: g.PressureAngle(), B: g.HelixAngle()}
	if !g.Inner() && !mateInner {
		mp.B = -mp.B
	}
	if shifted {
		mp.X = gear.Shift(mateShift)
	}
	mate := gear.NewGeometry(mp)
	if mateInner {
		mate = gear.NewInnerProfile(mp).Geometry()
	}
	return gear.CenterDistance(g, mate)
}

func printGeometry(w io.Writer, p *gear.Profile) {
	g := p.Geometry()
	kind := "external"
	if g.Inner() {
		kind = "internal"
	}
	fmt.Fprintf(w, "%s gear, %d teeth\n", kind, g.N())
	fmt.Fprintf(w, "  module              %.4f\n", g.M())
	fmt.Fprintf(w, "  profile shift       %.4f\n", g.X())
	fmt.Fprintf(w, "  pressure angle      %.2f°\n", g.PressureAngle())
	fmt.Fprintf(w, "  helix angle         %.2f°\n", g.HelixAngle())
	fmt.Fprintf(w, "  circular pitch      %.4f\n", g.P0())
	fmt.Fprintf(w, "  pitch diameter      %.4f\n", g.D0())
	fmt.Fprintf(w, "  base diameter       %.4f\n", p.Db())
	fmt.Fprintf(w, "  addendum diameter   %.4f\n", p.Da())
}
