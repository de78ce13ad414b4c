package excellon

import (
	"math"

	"github.com/gerbonara-go/gerbonara/cam"
	"github.com/gerbonara-go/gerbonara/unit"
)

// ProgramState is the Excellon program state machine position (spec.md
// §4.3): none (before M48/first content) -> header (between M48 and %/M95)
// -> drilling (default body mode) -> routing (entered by G00 or M15; M16 and
// G05 return to drilling) -> finished (after M30).
type ProgramState int

const (
	StateNone ProgramState = iota
	StateHeader
	StateDrilling
	StateRouting
	StateFinished
)

// RoutMode is the sub-state within StateRouting: tool is up (traveling,
// M16/G00) or down (cutting, M15).
type RoutMode int

const (
	RoutUp RoutMode = iota
	RoutDown
)

// ExcellonState is the explicit, never-global interpreter state threaded
// through statement handling (mirrors gerber.GraphicsState's design,
// DESIGN NOTES §9).
type ExcellonState struct {
	Unit            unit.Unit
	Notation        cam.Notation
	ZeroSuppression cam.ZeroSuppression
	NumberFormat    cam.NumberFormat

	Program ProgramState
	Rout    RoutMode

	HasCurrentPoint bool
	X, Y            float64
	CurrentTool     int

	Dialect string
}

// NewExcellonState returns the initial state: everything unknown, program
// state None, absolute notation (the overwhelmingly common default).
func NewExcellonState() *ExcellonState {
	return &ExcellonState{
		Notation:        cam.Absolute,
		ZeroSuppression: cam.ZeroSuppressionUnknown,
		NumberFormat:    cam.UnknownNumberFormat,
		Program:         StateNone,
		CurrentTool:     -1,
	}
}

// updatePoint resolves a statement's possibly-omitted X/Y against the
// current point and notation.
func (s *ExcellonState) updatePoint(x, y *float64) (nx, ny float64) {
	nx, ny = s.X, s.Y
	if s.Notation == cam.Incremental {
		if x != nil {
			nx = s.X + *x
		}
		if y != nil {
			ny = s.Y + *y
		}
		return
	}
	if x != nil {
		nx = *x
	}
	if y != nil {
		ny = *y
	}
	return
}

// resolveArcCenter computes the center of an Excellon routing arc given in
// endpoint-radius notation: start (x1,y1), end (x2,y2), radius r, and
// direction. Of the two circles of radius r through both endpoints, the one
// on the side consistent with the declared rotation direction is chosen
// (spec.md §4.4's single-quadrant disambiguation, adapted to a radius
// rather than an explicit offset).
func resolveArcCenter(x1, y1, x2, y2, r float64, clockwise bool) (cx, cy float64) {
	mx, my := (x1+x2)/2, (y1+y2)/2
	dx, dy := x2-x1, y2-y1
	chordLen := math.Hypot(dx, dy)
	if chordLen == 0 {
		return x1, y1
	}
	h := r*r - (chordLen/2)*(chordLen/2)
	if h < 0 {
		h = 0
	}
	h = math.Sqrt(h)

	// Unit perpendicular to the chord.
	ux, uy := -dy/chordLen, dx/chordLen

	c1x, c1y := mx+ux*h, my+uy*h
	c2x, c2y := mx-ux*h, my-uy*h

	if arcDirectionMatchesExcellon(x1, y1, x2, y2, c1x, c1y, clockwise) {
		return c1x, c1y
	}
	return c2x, c2y
}

func arcDirectionMatchesExcellon(x1, y1, x2, y2, cx, cy float64, clockwise bool) bool {
	cross := (x2-x1)*(cy-y1) - (y2-y1)*(cx-x1)
	if clockwise {
		return cross <= 0
	}
	return cross >= 0
}

