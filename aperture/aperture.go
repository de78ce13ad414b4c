// Package aperture implements the Gerber aperture sum type (§3.3) and
// aperture macros (§3.4): the parameterised shapes a Gerber file stamps
// (flash) or strokes (line/arc) with.
package aperture

import (
	"math"

	"github.com/gerbonara-go/gerbonara/unit"
)

// Aperture is the sum type of standard shapes plus macro instances. The
// unexported marker method closes the set to this package, per DESIGN NOTES
// §9 ("sum types over inheritance").
type Aperture interface {
	isAperture()
	// Attrs returns the aperture's attribute dictionary (string -> value
	// list), shared across Circle/Rectangle/Obround/Polygon/MacroInstance.
	Attrs() map[string][]string
}

// Common carries the fields every aperture variant has regardless of shape:
// native unit, rotation (radians), mirror, scale, and attributes.
type Common struct {
	Unit      unit.Unit
	Rotation  float64 // radians
	MirrorX   bool
	MirrorY   bool
	Scale     float64 // 1.0 = no scaling
	Attribute map[string][]string
}

func (c *Common) Attrs() map[string][]string {
	if c.Attribute == nil {
		c.Attribute = make(map[string][]string)
	}
	return c.Attribute
}

func defaultCommon(u unit.Unit) Common {
	return Common{Unit: u, Scale: 1.0}
}

// Circle is a circular aperture, optionally with a circular hole
// (annulus, used by some plated-through apertures).
type Circle struct {
	Common
	Diameter     float64
	HoleDiameter float64 // 0 means no hole
}

func (*Circle) isAperture() {}

// NewCircle builds a standard circle aperture.
func NewCircle(u unit.Unit, diameter, holeDiameter float64) *Circle {
	return &Circle{Common: defaultCommon(u), Diameter: diameter, HoleDiameter: holeDiameter}
}

// Rectangle is a rectangular aperture.
type Rectangle struct {
	Common
	Width, Height float64
	HoleDiameter  float64
}

func (*Rectangle) isAperture() {}

func NewRectangle(u unit.Unit, w, h, holeDiameter float64) *Rectangle {
	return &Rectangle{Common: defaultCommon(u), Width: w, Height: h, HoleDiameter: holeDiameter}
}

// Obround is a rectangle with semicircular caps on its shorter sides.
type Obround struct {
	Common
	Width, Height float64
	HoleDiameter  float64
}

func (*Obround) isAperture() {}

func NewObround(u unit.Unit, w, h, holeDiameter float64) *Obround {
	return &Obround{Common: defaultCommon(u), Width: w, Height: h, HoleDiameter: holeDiameter}
}

// Polygon is a regular polygon aperture.
type Polygon struct {
	Common
	OuterDiameter float64
	Vertices      int
	PolyRotation  float64 // degrees, per the AD modifier convention
	HoleDiameter  float64
}

func (*Polygon) isAperture() {}

func NewPolygon(u unit.Unit, outerDiameter float64, vertices int, rotation, holeDiameter float64) *Polygon {
	return &Polygon{Common: defaultCommon(u), OuterDiameter: outerDiameter, Vertices: vertices, PolyRotation: rotation, HoleDiameter: holeDiameter}
}

// MacroInstance is an aperture instantiated from a named macro template with
// a positional parameter list.
type MacroInstance struct {
	Common
	MacroRef   string // key into the owning file's macro table
	Parameters []float64
}

func (*MacroInstance) isAperture() {}

func NewMacroInstance(u unit.Unit, macroRef string, params []float64) *MacroInstance {
	return &MacroInstance{Common: defaultCommon(u), MacroRef: macroRef, Parameters: params}
}

// EquivalentWidth returns the width a stroked Line/Arc using this aperture
// should render at, converted to unit out (spec.md §4.2).
func EquivalentWidth(a Aperture, out unit.Unit) float64 {
	switch v := a.(type) {
	case *Circle:
		return out.Convert(v.Diameter, v.Unit)
	case *Rectangle:
		w := out.Convert(v.Width, v.Unit)
		h := out.Convert(v.Height, v.Unit)
		return math.Hypot(w, h)
	case *Obround:
		w := out.Convert(v.Width, v.Unit)
		h := out.Convert(v.Height, v.Unit)
		return math.Hypot(w, h)
	case *Polygon:
		return out.Convert(v.OuterDiameter, v.Unit)
	case *MacroInstance:
		// The macro body lives in the owning file's macro table, not on
		// the instance itself; callers that have it should call
		// EquivalentWidthWithMacro instead. Resolvable here as 0 width.
		_ = v
		return 0
	default:
		return 0
	}
}
