package excellon

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gerbonara-go/gerbonara/cam"
	"github.com/gerbonara-go/gerbonara/graphic"
	"github.com/gerbonara-go/gerbonara/unit"
)

// emitFormat mirrors gerber.emitFormat: canonical output always uses
// explicit decimal points, so the integer/fractional split only bounds
// precision, never zero-suppression ambiguity (spec.md §6 "Excellon
// output").
var emitFormat = cam.NumberFormat{Integer: 4, Fractional: 4}

// Emit renders f as canonical XNC source text (spec.md §4.7, §6): an M48
// header with METRIC/inch declaration and a tool table sorted by (plated,
// diameter, depth_offset) and re-indexed from 1 (with an Altium-style
// ;TYPE=PLATED/;TYPE=NON_PLATED marker preceding each entry when the file
// mixes plated and non-plated tools), a %, the object stream addressed by
// explicit-decimal coordinates, and M30 (grounded on excellon.py's
// _generate_statements).
func Emit(f *File) string {
	var b strings.Builder

	fmt.Fprintf(&b, "M48\n")
	fmt.Fprintf(&b, ";gerbonara-go generated\n")
	if f.Settings.Unit == unit.Inch {
		fmt.Fprintf(&b, "INCH,TZ\n")
	} else {
		fmt.Fprintf(&b, "METRIC,TZ\n")
	}

	origIndices := f.Tools.Indices()
	sort.SliceStable(origIndices, func(i, j int) bool {
		ti, _ := f.Tools.Lookup(origIndices[i])
		tj, _ := f.Tools.Lookup(origIndices[j])
		if ti.Plating != tj.Plating {
			return ti.Plating < tj.Plating
		}
		if ti.Diameter != tj.Diameter {
			return ti.Diameter < tj.Diameter
		}
		return ti.DepthOffset < tj.DepthOffset
	})

	platings := make(map[Plating]bool)
	for _, idx := range origIndices {
		t, _ := f.Tools.Lookup(idx)
		platings[t.Plating] = true
	}
	mixedPlating := len(platings) > 1

	remap := make(map[int]int, len(origIndices))
	for newIdx, origIdx := range origIndices {
		remap[origIdx] = newIdx + 1
	}

	for _, origIdx := range origIndices {
		t, _ := f.Tools.Lookup(origIdx)
		newIdx := remap[origIdx]
		if mixedPlating {
			if t.Plating == Plated {
				fmt.Fprintf(&b, ";TYPE=PLATED\n")
			} else {
				fmt.Fprintf(&b, ";TYPE=NON_PLATED\n")
			}
		}
		fmt.Fprintf(&b, "T%02dC%s\n", newIdx, fnum(t.Diameter))
	}
	fmt.Fprintf(&b, "%%\n")

	curTool := -1
	for objIdx, obj := range f.Objects {
		tool := -1
		if ti, ok := f.ObjectTool[objIdx]; ok {
			if newIdx, ok := remap[int(ti)]; ok {
				tool = newIdx
			}
		}
		if tool != curTool && tool >= 0 {
			curTool = tool
			fmt.Fprintf(&b, "T%02d\n", tool)
		}

		switch o := obj.(type) {
		case *graphic.Drill:
			fmt.Fprintf(&b, "X%sY%s\n", emitCoord(o.X), emitCoord(o.Y))
		case *graphic.Slot:
			fmt.Fprintf(&b, "G00X%sY%s\n", emitCoord(o.X1), emitCoord(o.Y1))
			fmt.Fprintf(&b, "M15\n")
			fmt.Fprintf(&b, "G01X%sY%s\n", emitCoord(o.X2), emitCoord(o.Y2))
			fmt.Fprintf(&b, "M16\n")
		case *graphic.Arc:
			g := "G02"
			if !o.Clockwise {
				g = "G03"
			}
			cx, cy := o.Center()
			r := distance(o.X1, o.Y1, cx, cy)
			fmt.Fprintf(&b, "G00X%sY%s\n", emitCoord(o.X1), emitCoord(o.Y1))
			fmt.Fprintf(&b, "M15\n")
			fmt.Fprintf(&b, "%sX%sY%sA%s\n", g, emitCoord(o.X2), emitCoord(o.Y2), emitCoord(r))
			fmt.Fprintf(&b, "M16\n")
		}
	}

	fmt.Fprintf(&b, "M30\n")
	return b.String()
}

func emitCoord(v float64) string {
	return cam.EmitCoordinateExplicit(v, emitFormat)
}

func fnum(v float64) string {
	s := fmt.Sprintf("%.4f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		s = "0"
	}
	return s
}
