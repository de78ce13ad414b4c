package gerber

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gerbonara-go/gerbonara/aperture"
	"github.com/gerbonara-go/gerbonara/cam"
	"github.com/gerbonara-go/gerbonara/graphic"
	"github.com/gerbonara-go/gerbonara/unit"
)

// emitFormat is the fixed-point format emission always canonicalizes to,
// regardless of what the source file used (spec.md §4.7): 4 integer digits,
// 6 fractional digits, trailing-zero suppression. Coordinates are written in
// the file's own unit, which the MO statement declares (inch for an inch
// file, millimeters otherwise).
var emitFormat = cam.NumberFormat{Integer: 4, Fractional: 6}

// Emit renders f as canonical RS-274X source text (spec.md §4.7): a
// generator comment, file attributes, MO/FS/IP/G75/LPD, the four canonical rotation
// macros plus f's user macros (deduplicated by canonical text), ADD
// statements from the aperture table, the object stream, and M02.
func Emit(f *File) string {
	var b strings.Builder

	fmt.Fprintf(&b, "G04 generated by gerbonara-go*\n")
	for _, kv := range sortedAttrs(f.FileAttributes) {
		fmt.Fprintf(&b, "%%TF%s,%s*%%\n", kv.key, strings.Join(kv.values, ","))
	}

	if f.Settings.Unit == unit.Inch {
		fmt.Fprintf(&b, "%%MOIN*%%\n")
	} else {
		fmt.Fprintf(&b, "%%MOMM*%%\n")
	}
	fmt.Fprintf(&b, "%%FSTAX%d%dY%d%d*%%\n", emitFormat.Integer, emitFormat.Fractional, emitFormat.Integer, emitFormat.Fractional)
	fmt.Fprintf(&b, "%%IPPOS*%%\n")
	// Arcs are written with signed I/J offsets, which only multi-quadrant
	// mode reads correctly.
	fmt.Fprintf(&b, "G75*\n")
	fmt.Fprintf(&b, "%%LPD*%%\n")

	dedup := dedupMacros(f.Macros)
	for _, name := range dedup.Names() {
		m, _ := dedup.Lookup(name)
		emitMacro(&b, m)
	}

	dRefToCode := make(map[graphic.ApertureRef]int)
	nextCode := 10
	for ref, ap := range f.Apertures {
		code := nextCode
		nextCode++
		dRefToCode[graphic.ApertureRef(ref)] = code
		emitAperture(&b, code, ap)
	}

	emitObjects(&b, f, dRefToCode)

	fmt.Fprintf(&b, "M02*\n")
	return b.String()
}

type attrKV struct {
	key    string
	values []string
}

func sortedAttrs(m map[string][]string) []attrKV {
	out := make([]attrKV, 0, len(m))
	for k, v := range m {
		out = append(out, attrKV{k, v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// dedupMacros returns the macros Emit writes: the four canonical
// rotation-lowering macros, always, plus f's user macros deduplicated by
// CanonicalText so two differently-named but identical user macro bodies
// emit once.
func dedupMacros(user *aperture.Table) *aperture.Table {
	merged := aperture.NewTable()
	for name, m := range aperture.CanonicalMacros() {
		merged.Define(name, m)
	}
	seen := make(map[string]string) // canonical text -> name already used

	add := func(name string, m aperture.Macro) {
		text := m.CanonicalText()
		if _, ok := seen[text]; ok {
			return
		}
		seen[text] = name
		merged.Define(name, m)
	}

	if user != nil {
		for _, name := range user.Names() {
			m, _ := user.Lookup(name)
			add(name, m)
		}
	}
	return merged
}

func emitMacro(b *strings.Builder, m aperture.Macro) {
	fmt.Fprintf(b, "%%AM%s*\n", m.Name)
	for i, p := range m.Primitives {
		sep := "*\n"
		if i == len(m.Primitives)-1 {
			sep = "*%\n"
		}
		fmt.Fprintf(b, "%d,%s%s", p.Code, strings.Join(p.Modifiers, ","), sep)
	}
	if len(m.Primitives) == 0 {
		fmt.Fprintf(b, "%%\n")
	}
}

func emitAperture(b *strings.Builder, code int, a aperture.Aperture) {
	switch v := a.(type) {
	case *aperture.Circle:
		fmt.Fprintf(b, "%%ADD%dC,%s%s*%%\n", code, fnum(v.Diameter), holeSuffix(v.HoleDiameter))
	case *aperture.Rectangle:
		fmt.Fprintf(b, "%%ADD%dR,%sX%s%s*%%\n", code, fnum(v.Width), fnum(v.Height), holeSuffix(v.HoleDiameter))
	case *aperture.Obround:
		fmt.Fprintf(b, "%%ADD%dO,%sX%s%s*%%\n", code, fnum(v.Width), fnum(v.Height), holeSuffix(v.HoleDiameter))
	case *aperture.Polygon:
		fmt.Fprintf(b, "%%ADD%dP,%sX%dX%s%s*%%\n", code, fnum(v.OuterDiameter), v.Vertices, fnum(v.PolyRotation), holeSuffix(v.HoleDiameter))
	case *aperture.MacroInstance:
		var mods []string
		for _, p := range v.Parameters {
			mods = append(mods, fnum(p))
		}
		fmt.Fprintf(b, "%%ADD%d%s", code, v.MacroRef)
		if len(mods) > 0 {
			fmt.Fprintf(b, ",%s", strings.Join(mods, "X"))
		}
		fmt.Fprintf(b, "*%%\n")
	}
}

func holeSuffix(hole float64) string {
	if hole == 0 {
		return ""
	}
	return "X" + fnum(hole)
}

func fnum(v float64) string {
	s := fmt.Sprintf("%.6f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		s = "0"
	}
	return s
}

// emitObjects walks f.Objects, tracking enough output-side graphics state
// (current point, aperture, polarity, interpolation mode) to emit a minimal
// D-code stream: only the statements that changed since the last object are
// written.
func emitObjects(b *strings.Builder, f *File, dRefToCode map[graphic.ApertureRef]int) {
	var curX, curY float64
	hasPoint := false
	curAperture := -2 // sentinel: none selected
	polarity := true
	mode := Linear

	setPolarity := func(dark bool) {
		if dark != polarity {
			polarity = dark
			if dark {
				fmt.Fprintf(b, "LPD*\n")
			} else {
				fmt.Fprintf(b, "LPC*\n")
			}
		}
	}
	selectAperture := func(ref graphic.ApertureRef) {
		code, ok := dRefToCode[ref]
		if !ok {
			return
		}
		if code != curAperture {
			curAperture = code
			fmt.Fprintf(b, "D%d*\n", code)
		}
	}
	setMode := func(m InterpMode) {
		if m != mode {
			mode = m
			switch m {
			case Linear:
				fmt.Fprintf(b, "G01*\n")
			case ClockwiseCircular:
				fmt.Fprintf(b, "G02*\n")
			case CounterClockwiseCircular:
				fmt.Fprintf(b, "G03*\n")
			}
		}
	}

	for _, obj := range f.Objects {
		switch o := obj.(type) {
		case *graphic.Flash:
			setPolarity(o.PolarityDark)
			selectAperture(o.Aperture)
			fmt.Fprintf(b, "X%sY%sD03*\n", emitCoord(o.X), emitCoord(o.Y))
			curX, curY, hasPoint = o.X, o.Y, true

		case *graphic.Line:
			setPolarity(o.PolarityDark)
			selectAperture(o.Aperture)
			setMode(Linear)
			if !hasPoint || curX != o.X1 || curY != o.Y1 {
				fmt.Fprintf(b, "X%sY%sD02*\n", emitCoord(o.X1), emitCoord(o.Y1))
			}
			fmt.Fprintf(b, "X%sY%sD01*\n", emitCoord(o.X2), emitCoord(o.Y2))
			curX, curY, hasPoint = o.X2, o.Y2, true

		case *graphic.Arc:
			setPolarity(o.PolarityDark)
			selectAperture(o.Aperture)
			if o.Clockwise {
				setMode(ClockwiseCircular)
			} else {
				setMode(CounterClockwiseCircular)
			}
			if !hasPoint || curX != o.X1 || curY != o.Y1 {
				fmt.Fprintf(b, "X%sY%sD02*\n", emitCoord(o.X1), emitCoord(o.Y1))
			}
			fmt.Fprintf(b, "X%sY%sI%sJ%sD01*\n", emitCoord(o.X2), emitCoord(o.Y2), emitCoord(o.CX), emitCoord(o.CY))
			curX, curY, hasPoint = o.X2, o.Y2, true

		case *graphic.Region:
			setPolarity(o.PolarityDark)
			emitRegion(b, o, &curX, &curY, &hasPoint)
			// emitRegion writes its own G01/G02/G03; force the next
			// setMode to write its mode again.
			mode = -1
		}
	}
}

func emitRegion(b *strings.Builder, r *graphic.Region, curX, curY *float64, hasPoint *bool) {
	fmt.Fprintf(b, "G36*\n")
	for i, p := range r.Outline {
		if i == 0 {
			fmt.Fprintf(b, "X%sY%sD02*\n", emitCoord(p[0]), emitCoord(p[1]))
			continue
		}
		seg := r.ArcData[i]
		if seg.Straight {
			fmt.Fprintf(b, "G01*\n")
			fmt.Fprintf(b, "X%sY%sD01*\n", emitCoord(p[0]), emitCoord(p[1]))
		} else {
			if seg.Clockwise {
				fmt.Fprintf(b, "G02*\n")
			} else {
				fmt.Fprintf(b, "G03*\n")
			}
			prev := r.Outline[i-1]
			fmt.Fprintf(b, "X%sY%sI%sJ%sD01*\n", emitCoord(p[0]), emitCoord(p[1]), emitCoord(seg.CenterX-prev[0]), emitCoord(seg.CenterY-prev[1]))
		}
	}
	fmt.Fprintf(b, "G37*\n")
	if len(r.Outline) > 0 {
		*curX, *curY = r.Outline[len(r.Outline)-1][0], r.Outline[len(r.Outline)-1][1]
		*hasPoint = true
	}
}

func emitCoord(v float64) string {
	return cam.EmitCoordinate(v, emitFormat, cam.Trailing)
}
