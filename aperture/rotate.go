package aperture

import "math"

// Canonical macro names the emitter always defines, used as the lowering
// target for apertures with non-right-angle rotation (spec.md §4.2, §4.7).
const (
	CanonicalCircleMacro  = "GERBONARA_CIRCLE"
	CanonicalRectMacro    = "GERBONARA_RECT"
	CanonicalObroundMacro = "GERBONARA_OBROUND"
	CanonicalPolygonMacro = "GERBONARA_POLYGON"
)

// rightAngleMultiple reports whether angle (radians) is a multiple of π/2
// within a small tolerance, in which case a standard shape can represent the
// rotation without lowering to a macro.
func rightAngleMultiple(angle float64) bool {
	const tol = 1e-9
	quarter := angle / (math.Pi / 2)
	return math.Abs(quarter-math.Round(quarter)) < tol
}

// NeedsMacroLowering reports whether a has a rotation that is not a multiple
// of π/2 and therefore cannot be represented by its standard shape alone.
func NeedsMacroLowering(a Aperture) bool {
	switch v := a.(type) {
	case *Rectangle:
		return v.Rotation != 0 && !rightAngleMultiple(v.Rotation)
	case *Obround:
		return v.Rotation != 0 && !rightAngleMultiple(v.Rotation)
	case *Polygon:
		return v.Rotation != 0 && !rightAngleMultiple(v.Rotation)
	default:
		return false // circles are rotation-invariant; macro instances already lowered
	}
}

// LowerToMacro rewrites a into an equivalent MacroInstance of one of the
// four canonical macros, carrying rotation as a macro parameter instead of
// as aperture rotation. Apertures that don't need lowering are returned
// unchanged.
func LowerToMacro(a Aperture) Aperture {
	if !NeedsMacroLowering(a) {
		return a
	}

	switch v := a.(type) {
	case *Rectangle:
		inst := &MacroInstance{Common: v.Common, MacroRef: CanonicalRectMacro,
			Parameters: []float64{v.Width, v.Height, degrees(v.Rotation)}}
		inst.Rotation = 0
		return inst
	case *Obround:
		inst := &MacroInstance{Common: v.Common, MacroRef: CanonicalObroundMacro,
			Parameters: []float64{v.Width, v.Height, degrees(v.Rotation)}}
		inst.Rotation = 0
		return inst
	case *Polygon:
		inst := &MacroInstance{Common: v.Common, MacroRef: CanonicalPolygonMacro,
			Parameters: []float64{v.OuterDiameter, float64(v.Vertices), degrees(v.Rotation)}}
		inst.Rotation = 0
		return inst
	default:
		return a
	}
}

func degrees(radians float64) float64 {
	return radians * 180 / math.Pi
}

// CanonicalMacros returns the four canonical rotation-capable macro
// definitions the Gerber emitter always writes out, keyed by name.
func CanonicalMacros() map[string]Macro {
	return map[string]Macro{
		CanonicalCircleMacro: {
			Name: CanonicalCircleMacro,
			Primitives: []Primitive{
				{Code: PrimitiveCircle, Modifiers: []string{"1", "$1", "0", "0"}},
			},
		},
		CanonicalRectMacro: {
			Name: CanonicalRectMacro,
			Primitives: []Primitive{
				{Code: PrimitiveCenterLine, Modifiers: []string{"1", "$1", "$2", "0", "0", "$3"}},
			},
		},
		CanonicalObroundMacro: {
			Name: CanonicalObroundMacro,
			Primitives: []Primitive{
				{Code: PrimitiveCenterLine, Modifiers: []string{"1", "$1", "$2", "0", "0", "$3"}},
			},
		},
		CanonicalPolygonMacro: {
			Name: CanonicalPolygonMacro,
			Primitives: []Primitive{
				{Code: PrimitivePolygon, Modifiers: []string{"1", "$2", "0", "0", "$1", "$3"}},
			},
		},
	}
}
