package aperture

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Primitive codes per the Gerber aperture macro sublanguage (Ucamco spec
// table 6.1).
const (
	PrimitiveComment    = 0
	PrimitiveCircle     = 1
	PrimitiveVectorLine = 20
	PrimitiveCenterLine = 21
	PrimitiveOutline    = 4
	PrimitivePolygon    = 5
	PrimitiveMoire      = 6
	PrimitiveThermal    = 7
)

// Primitive is one instruction of a macro body: a primitive code plus its
// modifier expressions, exactly as written in the macro source (e.g. "$1",
// "0.5", "$1+$2"). Evaluating the general aperture-macro arithmetic
// language (nested expressions, all four operators, parentheses) is out of
// scope per spec.md §1; Eval resolves the common case of a bare numeric
// literal or a bare parameter reference and leaves anything more complex as
// unresolved (0), which only affects the best-effort EquivalentWidth
// estimate, never parsing correctness.
type Primitive struct {
	Code      int
	Modifiers []string
}

// Eval resolves p's modifiers against the instantiation parameters (1-indexed,
// as $1, $2, ... in Gerber macro source).
func (p Primitive) Eval(params []float64) []float64 {
	out := make([]float64, len(p.Modifiers))
	for i, mod := range p.Modifiers {
		out[i] = evalModifier(mod, params)
	}
	return out
}

func evalModifier(mod string, params []float64) float64 {
	mod = strings.TrimSpace(mod)
	if strings.HasPrefix(mod, "$") {
		if n, err := strconv.Atoi(mod[1:]); err == nil && n >= 1 && n <= len(params) {
			return params[n-1]
		}
		return 0
	}
	if v, err := strconv.ParseFloat(mod, 64); err == nil {
		return v
	}
	return 0 // unresolved arithmetic expression; best-effort only
}

// Macro is a named aperture-macro template (spec.md §3.4). Macros are
// content-addressable: two macros with identical CanonicalText are
// identified (used by Merge/emit deduplication).
type Macro struct {
	Name       string
	Primitives []Primitive
}

// CanonicalText renders the macro body deterministically, ignoring Name, so
// that two macros with different names but identical bodies compare equal.
func (m Macro) CanonicalText() string {
	var b strings.Builder
	for _, p := range m.Primitives {
		b.WriteString(strconv.Itoa(p.Code))
		for _, mod := range p.Modifiers {
			b.WriteByte(',')
			b.WriteString(mod)
		}
		b.WriteByte('*')
	}
	return b.String()
}

// BoundingExtent estimates the (width, height) of the macro body when
// instantiated with params (and no further rotation), used to derive
// MacroInstance equivalent widths. Best-effort: primitives whose position or
// size modifiers don't resolve to a literal or a bare $N reference are
// ignored, per Eval's documented limitation.
func (m Macro) BoundingExtent(params []float64) (width, height float64) {
	maxX, maxY := 0.0, 0.0
	grow := func(cx, cy, halfW, halfH float64) {
		maxX = math.Max(maxX, math.Abs(cx)+halfW)
		maxY = math.Max(maxY, math.Abs(cy)+halfH)
	}
	for _, p := range m.Primitives {
		mods := p.Eval(params)
		switch p.Code {
		case PrimitiveCircle:
			if len(mods) >= 4 {
				d := mods[1]
				grow(mods[2], mods[3], d/2, d/2)
			}
		case PrimitiveCenterLine:
			if len(mods) >= 5 {
				grow(mods[3], mods[4], mods[1]/2, mods[2]/2)
			}
		case PrimitivePolygon:
			if len(mods) >= 5 {
				d := mods[4]
				grow(mods[2], mods[3], d/2, d/2)
			}
		case PrimitiveMoire, PrimitiveThermal:
			if len(mods) >= 3 {
				d := mods[2]
				grow(mods[0], mods[1], d/2, d/2)
			}
		case PrimitiveOutline:
			for i := 2; i+1 < len(mods); i += 2 {
				grow(mods[i], mods[i+1], 0, 0)
			}
		}
	}
	return maxX * 2, maxY * 2
}

// Table owns a file's named macros, keyed by name. Define does not
// deduplicate; callers that merge or emit tables compare CanonicalText.
type Table struct {
	byName map[string]Macro
}

// NewTable returns an empty macro table.
func NewTable() *Table {
	return &Table{byName: make(map[string]Macro)}
}

// Define adds or replaces the macro named name.
func (t *Table) Define(name string, m Macro) {
	m.Name = name
	t.byName[name] = m
}

// Lookup returns the macro named name.
func (t *Table) Lookup(name string) (Macro, bool) {
	m, ok := t.byName[name]
	return m, ok
}

// Names returns the defined macro names in sorted order, for deterministic
// emission.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EquivalentWidthWithMacro computes a MacroInstance's equivalent stroke
// width using the macro body it references, scaled by the instance's Scale.
func EquivalentWidthWithMacro(inst *MacroInstance, macro Macro) float64 {
	w, h := macro.BoundingExtent(inst.Parameters)
	scale := inst.Scale
	if scale == 0 {
		scale = 1
	}
	return math.Hypot(w, h) * scale
}
