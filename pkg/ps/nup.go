package ps

import (
	"fmt"
	"io"
)

// DefaultTolerance is the largest acceptable wasted-area score for an
// N-up layout.
const DefaultTolerance = 100000

// NUpOptions configures an N-up run. Paper dimensions come from the
// Config; InWidth and InHeight default to the output paper.
type NUpOptions struct {
	N         int
	InWidth   float64
	InHeight  float64
	Margin    float64
	Border    float64
	Tolerance float64 // zero means DefaultTolerance
	Scale     float64 // user override; zero picks the computed scale
	Draw      float64
	Column    bool
	LeftRight bool
	TopBottom bool
	Flip      bool
	NoBind    bool
}

// nupLayout is the winning grid for one N-up search.
type nupLayout struct {
	hor, ver int
	rotated  bool
	scale    float64
}

// NUp lays out N input pages per output sheet and runs the engine with
// the synthesised specification.
func NUp(cfg *Config, o NUpOptions, in io.ReadSeeker, doc *DocumentInfo, out io.Writer) error {
	if cfg == nil {
		cfg = &Config{}
	}
	specs, err := nupSpecs(cfg, &o)
	if err != nil {
		return err
	}
	engine := NewEngine(cfg, Options{
		Modulo: o.N,
		PPS:    1,
		NoBind: o.NoBind,
		Draw:   o.Draw,
		Specs:  specs,
	})
	return engine.Run(in, doc, out)
}

// nupSpecs searches the grid space and synthesises the spec list.
func nupSpecs(cfg *Config, o *NUpOptions) ([]*PageSpec, error) {
	if o.N < 1 {
		return nil, fmt.Errorf("pages per sheet must be positive")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("output paper size not set")
	}
	iw, ih := o.InWidth, o.InHeight
	if iw <= 0 || ih <= 0 {
		iw, ih = cfg.Width, cfg.Height
	}
	if o.Flip {
		iw, ih = ih, iw
	}
	tolerance := o.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	ppwid := cfg.Width - 2*o.Margin
	pphgt := cfg.Height - 2*o.Margin
	if ppwid <= 0 || pphgt <= 0 {
		return nil, fmt.Errorf("margin is too large")
	}

	layout, waste := searchLayout(o.N, ppwid, pphgt, iw, ih)
	if waste >= tolerance {
		return nil, fmt.Errorf("can't find acceptable layout for %d-up", o.N)
	}

	hor, ver := layout.hor, layout.ver
	if layout.rotated {
		// In the rotated layout the grid roles swap: hor counted cells
		// vertically during the search.
		hor, ver = ver, hor
	}

	// Recompute the scale allowing for per-cell borders, and the shifts
	// that centre each page inside its cell.
	cellw := ppwid / float64(hor)
	cellh := pphgt / float64(ver)
	var scale, pw, ph float64
	if layout.rotated {
		scale = minf((pphgt-2*o.Border*float64(ver))/(iw*float64(ver)),
			(ppwid-2*o.Border*float64(hor))/(ih*float64(hor)))
		pw, ph = ih*scale, iw*scale
	} else {
		scale = minf((pphgt-2*o.Border*float64(ver))/(ih*float64(ver)),
			(ppwid-2*o.Border*float64(hor))/(iw*float64(hor)))
		pw, ph = iw*scale, ih*scale
	}
	if scale <= 0 {
		return nil, fmt.Errorf("border is too large")
	}
	hshift := (cellw - pw) / 2
	vshift := (cellh - ph) / 2

	uscale := scale
	if o.Scale > 0 {
		uscale = o.Scale
	}

	specs := make([]*PageSpec, o.N)
	for page := 0; page < o.N; page++ {
		across, up := cellFor(page, hor, ver, o.Column, o.LeftRight, o.TopBottom)
		sp := &PageSpec{
			PageNo: page,
			Scale:  uscale,
			Flags:  FlagScale | FlagOffset | FlagGSave,
			XOff:   o.Margin + float64(across)*cellw + hshift,
			YOff:   o.Margin + float64(up)*cellh + vshift,
		}
		if layout.rotated {
			// rotate 90 swings the page left of its origin; shift the
			// origin to the cell's right edge of the placed page.
			sp.Flags |= FlagRotate
			sp.Rotate = 90
			sp.XOff += pw
		}
		if page < o.N-1 {
			sp.Flags |= FlagAddNext
		}
		specs[page] = sp
	}
	return specs, nil
}

// searchLayout enumerates every divisor pair and both orientations and
// returns the layout with the least squared wasted area. The first
// candidate wins ties.
func searchLayout(nup int, ppwid, pphgt, iw, ih float64) (nupLayout, float64) {
	best := nupLayout{}
	bestWaste := -1.0
	for hor := 1; hor <= nup; hor++ {
		if nup%hor != 0 {
			continue
		}
		ver := nup / hor

		s := minf(pphgt/(ih*float64(ver)), ppwid/(iw*float64(hor)))
		waste := sq(ppwid-s*iw*float64(hor)) + sq(pphgt-s*ih*float64(ver))
		if bestWaste < 0 || waste < bestWaste {
			best = nupLayout{hor: hor, ver: ver, scale: s}
			bestWaste = waste
		}

		s = minf(pphgt/(iw*float64(hor)), ppwid/(ih*float64(ver)))
		waste = sq(ppwid-s*ih*float64(ver)) + sq(pphgt-s*iw*float64(hor))
		if waste < bestWaste {
			best = nupLayout{hor: hor, ver: ver, rotated: true, scale: s}
			bestWaste = waste
		}
	}
	return best, bestWaste
}

// cellFor maps a page index within the sheet to its grid cell.
func cellFor(page, hor, ver int, column, leftright, topbottom bool) (across, up int) {
	if column {
		across = page / ver
		up = page % ver
	} else {
		across = page % hor
		up = page / hor
	}
	if !leftright {
		across = hor - 1 - across
	}
	if topbottom {
		up = ver - 1 - up
	}
	return across, up
}

// minf returns the smaller of two floats.
func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// sq squares a float.
func sq(x float64) float64 {
	return x * x
}
