package gerber

import (
	"errors"
	"math"

	"github.com/gerbonara-go/gerbonara/cam"
	"github.com/gerbonara-go/gerbonara/graphic"
)

// ErrBadOperands is returned by Interpolate when linear mode carries I/J
// operands (spec.md §4.4 "BadOperands").
var ErrBadOperands = errors.New("linear interpolation does not take I/J operands")

// Flash updates the current point (via updatePoint, respecting
// absolute/incremental notation) and returns a Flash object at the mapped
// coordinate (spec.md §4.4).
func (g *GraphicsState) Flash(x, y *float64) *graphic.Flash {
	nx, ny := g.updatePoint(x, y)
	g.X, g.Y = nx, ny
	g.HasCurrentPoint = true

	mx, my := g.mapCoord(nx, ny, false)
	return &graphic.Flash{
		Common:   graphic.Common{PolarityDark: g.PolarityDark, Unit: g.Unit},
		X:        mx,
		Y:        my,
		Aperture: g.CurrentAperture,
	}
}

// Move updates the current point without producing an object (D02).
func (g *GraphicsState) Move(x, y *float64) {
	nx, ny := g.updatePoint(x, y)
	g.X, g.Y = nx, ny
	g.HasCurrentPoint = true
}

// Interpolate implements the D01 graphics-state transition (spec.md §4.4):
// linear or circular interpolation from the current point to (x,y), with
// I/J as a center offset in circular mode. Returns nil with no error when a
// multi-quadrant full circle (start == end) collapses to nothing, per the
// boundary case in spec.md §8.
func (g *GraphicsState) Interpolate(x, y, i, j *float64, sink cam.Sink) (graphic.Object, error) {
	if !g.HasCurrentPoint {
		sink("interpolation with no current point; assuming (0,0)", cam.SyntaxWarning)
		g.X, g.Y = 0, 0
		g.HasCurrentPoint = true
	}

	x1, y1 := g.X, g.Y
	nx, ny := g.updatePoint(x, y)

	mode := g.Interpolation
	hasIJ := i != nil || j != nil

	if mode == Linear {
		if hasIJ {
			return nil, ErrBadOperands
		}
		g.X, g.Y = nx, ny
		mx1, my1 := g.mapCoord(x1, y1, false)
		mx2, my2 := g.mapCoord(nx, ny, false)
		return &graphic.Line{
			Common:   graphic.Common{PolarityDark: g.PolarityDark, Unit: g.Unit},
			X1:       mx1,
			Y1:       my1,
			X2:       mx2,
			Y2:       my2,
			Aperture: g.CurrentAperture,
		}, nil
	}

	if !hasIJ {
		sink("circular interpolation without I/J; degrading to linear", cam.DeprecationWarning)
		g.X, g.Y = nx, ny
		mx1, my1 := g.mapCoord(x1, y1, false)
		mx2, my2 := g.mapCoord(nx, ny, false)
		return &graphic.Line{
			Common:   graphic.Common{PolarityDark: g.PolarityDark, Unit: g.Unit},
			X1:       mx1,
			Y1:       my1,
			X2:       mx2,
			Y2:       my2,
			Aperture: g.CurrentAperture,
		}, nil
	}

	iv, jv := deref(i), deref(j)
	clockwise := mode == ClockwiseCircular

	var cx, cy float64 // center, absolute, relative to x1,y1 as offset
	if g.MultiQuadrant {
		if x1 == nx && y1 == ny {
			// Full circle: not rendered as an object per the boundary
			// case, but we still must advance the current point.
			g.X, g.Y = nx, ny
			return nil, nil
		}
		cx, cy = iv, jv
	} else {
		cx, cy = resolveSingleQuadrantCenter(x1, y1, nx, ny, iv, jv, clockwise)
	}

	g.X, g.Y = nx, ny

	mx1, my1 := g.mapCoord(x1, y1, false)
	mx2, my2 := g.mapCoord(nx, ny, false)
	mcx, mcy := g.mapCoord(cx, cy, true) // relative: matrix only, no offset

	return &graphic.Arc{
		Common:    graphic.Common{PolarityDark: g.PolarityDark, Unit: g.Unit},
		X1:        mx1,
		Y1:        my1,
		X2:        mx2,
		Y2:        my2,
		CX:        mcx,
		CY:        mcy,
		Clockwise: clockwise,
		Aperture:  g.CurrentAperture,
	}, nil
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// resolveSingleQuadrantCenter picks, among the four quadrant reflections of
// (i,j), the center that minimizes the "numeric error" metric (distance
// from center to end minus distance from center to start) and whose signed
// area sign matches the declared rotation direction (spec.md §4.4).
func resolveSingleQuadrantCenter(x1, y1, x2, y2, i, j float64, clockwise bool) (cx, cy float64) {
	candidates := [4][2]float64{
		{i, j}, {-i, j}, {i, -j}, {-i, -j},
	}

	bestErr := math.Inf(1)
	var bestCX, bestCY float64
	found := false

	for _, c := range candidates {
		ccx, ccy := x1+c[0], y1+c[1]
		r1 := math.Hypot(x1-ccx, y1-ccy)
		r2 := math.Hypot(x2-ccx, y2-ccy)
		numErr := math.Abs(r2 - r1)

		if !arcDirectionMatches(x1, y1, x2, y2, ccx, ccy, clockwise) {
			continue
		}
		if numErr < bestErr {
			bestErr = numErr
			bestCX, bestCY = c[0], c[1]
			found = true
		}
	}

	if !found {
		// No candidate satisfied the direction constraint (degenerate
		// input); fall back to the smallest numeric error regardless of
		// direction, rather than producing no object.
		for _, c := range candidates {
			ccx, ccy := x1+c[0], y1+c[1]
			r1 := math.Hypot(x1-ccx, y1-ccy)
			r2 := math.Hypot(x2-ccx, y2-ccy)
			numErr := math.Abs(r2 - r1)
			if numErr < bestErr {
				bestErr = numErr
				bestCX, bestCY = c[0], c[1]
			}
		}
	}

	return bestCX, bestCY
}

// arcDirectionMatches reports whether the signed area of the triangle
// (start, end, center) has the sign implied by the declared rotation
// direction: a clockwise arc sweeps with the center to the right of the
// start->end chord (negative signed area in a standard right-handed system
// for CW, positive for CCW), used to disambiguate single-quadrant centers.
func arcDirectionMatches(x1, y1, x2, y2, cx, cy float64, clockwise bool) bool {
	// Cross product of (end-start) x (center-start).
	cross := (x2-x1)*(cy-y1) - (y2-y1)*(cx-x1)
	if clockwise {
		return cross <= 0
	}
	return cross >= 0
}
