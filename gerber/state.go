package gerber

import (
	"math"

	"github.com/gerbonara-go/gerbonara/graphic"
	"github.com/gerbonara-go/gerbonara/unit"
)

// InterpMode is the current interpolation mode (spec.md §3.6/§4.4).
type InterpMode int

const (
	Linear InterpMode = iota
	ClockwiseCircular
	CounterClockwiseCircular
)

// ImageMirror is the deprecated MI mirror-axis state.
type ImageMirror struct {
	X, Y bool
}

// GraphicsState is the explicit, never-global input graphics state driving
// statement interpretation (spec.md §4.4; DESIGN NOTES §9 "graphics state as
// explicit context").
type GraphicsState struct {
	Unit unit.Unit

	HasCurrentPoint  bool
	X, Y             float64
	CurrentAperture  graphic.ApertureRef
	Interpolation    InterpMode
	PolarityDark     bool
	MultiQuadrant    bool
	Notation         AbsIncNotation

	// Aperture-local transform (LM/LR/LS set these as a side channel some
	// dialects use instead of per-aperture rotation; kept for parity with
	// the source's graphics state).
	ApertureMirror ImageMirror
	ApertureRotate float64
	ApertureScale  float64

	// Deprecated image transforms (IP/IR/MI/SF/OF/IN).
	ImagePolarityNegative bool
	ImageRotation         int // 0, 90, 180, 270
	ImageMirror           ImageMirror
	ImageScale            [2]float64 // x, y
	ImageOffset           [2]float64 // x, y

	matrixDirty bool
	matrix      [2][2]float64
	offset      [2]float64
}

// AbsIncNotation is the G90/G91 coordinate notation.
type AbsIncNotation int

const (
	AbsoluteNotation AbsIncNotation = iota
	IncrementalNotation
)

// NewGraphicsState returns the initial state: no current point, dark
// polarity, linear interpolation, absolute notation, unit scale 1.
func NewGraphicsState(u unit.Unit) *GraphicsState {
	return &GraphicsState{
		Unit:          u,
		PolarityDark:  true,
		ApertureScale: 1,
		ImageScale:    [2]float64{1, 1},
		matrixDirty:   true,
	}
}

// SetPolarity records a locally-set polarity, applying the deprecated
// "negative image polarity inverts all subsequent LPD/LPC" rule (spec.md
// §4.4, §8 boundary case).
func (g *GraphicsState) SetPolarity(dark bool) {
	if g.ImagePolarityNegative {
		dark = !dark
	}
	g.PolarityDark = dark
}

// invalidate marks the cached transform matrix dirty; called whenever any
// deprecated image transform input changes.
func (g *GraphicsState) invalidate() { g.matrixDirty = true }

// SetImageRotation sets IR and invalidates the matrix.
func (g *GraphicsState) SetImageRotation(deg int) { g.ImageRotation = deg; g.invalidate() }

// SetImageMirror sets MI and invalidates the matrix.
func (g *GraphicsState) SetImageMirror(x, y bool) { g.ImageMirror = ImageMirror{x, y}; g.invalidate() }

// SetImageScale sets SF and invalidates the matrix.
func (g *GraphicsState) SetImageScale(x, y float64) { g.ImageScale = [2]float64{x, y}; g.invalidate() }

// SetImageOffset sets OF and invalidates the matrix.
func (g *GraphicsState) SetImageOffset(x, y float64) { g.ImageOffset = [2]float64{x, y}; g.invalidate() }

// rebuildMatrix derives the cached 2x2 matrix + offset from the deprecated
// image transforms: rotation, then mirror, then scale, then offset.
func (g *GraphicsState) rebuildMatrix() {
	theta := float64(g.ImageRotation) * math.Pi / 180
	sin, cos := math.Sin(theta), math.Cos(theta)
	// Rotation matrix.
	m := [2][2]float64{{cos, -sin}, {sin, cos}}

	// Mirror (applied as a sign flip on the relevant axis, composed after
	// rotation as the source's deprecated-transform order does).
	if g.ImageMirror.X {
		m[0][0], m[0][1] = -m[0][0], -m[0][1]
	}
	if g.ImageMirror.Y {
		m[1][0], m[1][1] = -m[1][0], -m[1][1]
	}

	// Scale.
	m[0][0] *= g.ImageScale[0]
	m[0][1] *= g.ImageScale[0]
	m[1][0] *= g.ImageScale[1]
	m[1][1] *= g.ImageScale[1]

	g.matrix = m
	g.offset = g.ImageOffset
	g.matrixDirty = false
}

// mapCoord applies the deprecated-transform matrix and, unless relative,
// the offset (spec.md §4.4).
func (g *GraphicsState) mapCoord(x, y float64, relative bool) (float64, float64) {
	if g.matrixDirty {
		g.rebuildMatrix()
	}
	mx := g.matrix[0][0]*x + g.matrix[0][1]*y
	my := g.matrix[1][0]*x + g.matrix[1][1]*y
	if relative {
		return mx, my
	}
	return mx + g.offset[0], my + g.offset[1]
}

// updatePoint resolves an operation's possibly-omitted X/Y against the
// current point and notation, returning the new absolute point.
func (g *GraphicsState) updatePoint(x, y *float64) (nx, ny float64) {
	nx, ny = g.X, g.Y
	switch g.Notation {
	case IncrementalNotation:
		if x != nil {
			nx = g.X + *x
		}
		if y != nil {
			ny = g.Y + *y
		}
	default:
		if x != nil {
			nx = *x
		}
		if y != nil {
			ny = *y
		}
	}
	return nx, ny
}
