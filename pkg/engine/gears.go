package engine

import (
	"fmt"

	"github.com/chazu/csgtree/pkg/gear"
	"github.com/chazu/csgtree/pkg/tree"
	zygo "github.com/glycerine/zygomys/zygo"
)

// gearParams reads gear parameters from keyword arguments:
// :n, one of :m :d0 :da :p0, and optionally :x :a :b :mhf :rot.
func gearParams(pa kwArgs) (gear.Params, error) {
	var p gear.Params
	v, ok := pa.kw["n"]
	if !ok {
		return p, fmt.Errorf(":n required")
	}
	n, err := toInt(v)
	if err != nil {
		return p, fmt.Errorf("n: %w", err)
	}
	p.N = n
	for key, dst := range map[string]*float64{
		"m": &p.M, "d0": &p.D0, "da": &p.Da, "p0": &p.P0,
		"a": &p.A, "b": &p.B, "mhf": &p.Mhf, "rot": &p.Rot,
	} {
		if *dst, err = floatArg("gear", pa, 0, key); err != nil {
			return p, err
		}
	}
	if v, ok := pa.kw["x"]; ok {
		x, err := toFloat64(v)
		if err != nil {
			return p, fmt.Errorf("x: %w", err)
		}
		p.X = gear.Shift(x)
	}
	return p, nil
}

// wheelArgs reads the gear parameters and the wheel height.
func wheelArgs(pa kwArgs) (gear.Params, float64, error) {
	p, err := gearParams(pa)
	if err != nil {
		return p, 0, err
	}
	h, err := floatArg("wheel", pa, 0, "height", "h")
	if err != nil {
		return p, 0, err
	}
	if h <= 0 {
		return p, 0, fmt.Errorf(":height required")
	}
	return p, h, nil
}

// registerGears installs the involute gear builtins.
func registerGears(env *zygo.Zlisp) {
	// (gear-profile :n 20 :m 2)
	addItem(env, "gear-profile", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		p, err := gearParams(pa)
		if err != nil {
			return nil, err
		}
		return func() tree.Item { return gear.NewProfile(p, opts...) }, nil
	})

	// (inner-gear-profile :n 40 :m 2)
	addItem(env, "inner-gear-profile", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		p, err := gearParams(pa)
		if err != nil {
			return nil, err
		}
		return func() tree.Item { return gear.NewInnerProfile(p, opts...) }, nil
	})

	// (gear-wheel :n 20 :m 2 :height 10 :b 15)
	addItem(env, "gear-wheel", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		p, h, err := wheelArgs(pa)
		if err != nil {
			return nil, err
		}
		return func() tree.Item { return gear.NewWheel(p, h, opts...) }, nil
	})

	// (herringbone-wheel :n 20 :m 2 :height 10 :b 20)
	addItem(env, "herringbone-wheel", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		p, h, err := wheelArgs(pa)
		if err != nil {
			return nil, err
		}
		return func() tree.Item { return gear.NewHerringboneWheel(p, h, opts...) }, nil
	})

	// (inner-wheel :n 40 :m 2 :height 10 :rim 3)
	addItem(env, "inner-wheel", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		p, h, err := wheelArgs(pa)
		if err != nil {
			return nil, err
		}
		rim, err := floatArg("inner-wheel", pa, 0, "rim")
		if err != nil {
			return nil, err
		}
		return func() tree.Item { return gear.NewInnerWheel(p, h, rim, opts...) }, nil
	})

	// (inner-herringbone-wheel :n 40 :m 2 :height 10 :b 20 :rim 3)
	addItem(env, "inner-herringbone-wheel", func(pa kwArgs, opts []tree.Option) (func() tree.Item, error) {
		p, h, err := wheelArgs(pa)
		if err != nil {
			return nil, err
		}
		rim, err := floatArg("inner-herringbone-wheel", pa, 0, "rim")
		if err != nil {
			return nil, err
		}
		return func() tree.Item { return gear.NewInnerHerringboneWheel(p, h, rim, opts...) }, nil
	})

	// (axis-distance pinion ring)
	env.AddFunction("axis_distance", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (s zygo.Sexp, err error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("axis-distance requires exactly 2 gears, got %d", len(args))
		}
		var gears [2]gear.Gear
		for i, a := range args {
			it, err := toItem(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("axis-distance: %w", err)
			}
			g, ok := it.(gear.Gear)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("axis-distance: %s is not a gear", it.Kind())
			}
			gears[i] = g
		}
		defer func() {
			if r := recover(); r != nil {
				s, err = zygo.SexpNull, fmt.Errorf("axis-distance: %v", r)
			}
		}()
		return &zygo.SexpFloat{Val: gear.AxisDistance(gears[0], gears[1])}, nil
	})
}
