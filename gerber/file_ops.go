package gerber

import (
	"strconv"

	"github.com/gerbonara-go/gerbonara/aperture"
	"github.com/gerbonara-go/gerbonara/graphic"
	"github.com/gerbonara-go/gerbonara/unit"
)

// Offset translates every object in f by (dx, dy), given in unit u
// (spec.md §4.6).
func (f *File) Offset(dx, dy float64, u unit.Unit) {
	for i, obj := range f.Objects {
		f.Objects[i] = graphic.Offset(obj, dx, dy, u)
	}
}

// Rotate rotates every object in f by angle radians about (cx, cy), given in
// unit u (spec.md §4.6).
func (f *File) Rotate(angle, cx, cy float64, u unit.Unit) {
	for i, obj := range f.Objects {
		f.Objects[i] = graphic.Rotate(obj, angle, cx, cy, u)
	}
}

// Merge appends src's objects, apertures, and macros into dst, remapping
// every ApertureRef in the copied objects to the corresponding new index in
// dst's aperture table (spec.md §4.6). Macro tables are unioned,
// deduplicated by canonical text so identical macros from both files
// collapse to one definition.
func Merge(dst *File, src *File) {
	refRemap := make(map[graphic.ApertureRef]graphic.ApertureRef, len(src.Apertures))
	for i, ap := range src.Apertures {
		newRef := dst.AddAperture(ap)
		refRemap[graphic.ApertureRef(i)] = newRef
	}

	for _, obj := range src.Objects {
		dst.Objects = append(dst.Objects, remapObjectAperture(obj, refRemap))
	}

	if src.Macros != nil {
		existing := make(map[string]bool)
		for _, name := range dst.Macros.Names() {
			m, _ := dst.Macros.Lookup(name)
			existing[m.CanonicalText()] = true
		}
		for _, name := range src.Macros.Names() {
			m, _ := src.Macros.Lookup(name)
			if existing[m.CanonicalText()] {
				continue
			}
			dst.Macros.Define(uniqueName(dst.Macros, name), m)
			existing[m.CanonicalText()] = true
		}
	}

	for k, v := range src.FileAttributes {
		if _, ok := dst.FileAttributes[k]; !ok {
			dst.FileAttributes[k] = v
		}
	}
	dst.Comments = append(dst.Comments, src.Comments...)
}

// uniqueName returns name, or name suffixed with an incrementing counter if
// it already exists in t (two merged files defining different macros under
// the same name).
func uniqueName(t *aperture.Table, name string) string {
	if _, ok := t.Lookup(name); !ok {
		return name
	}
	for i := 2; ; i++ {
		candidate := name + "_" + strconv.Itoa(i)
		if _, ok := t.Lookup(candidate); !ok {
			return candidate
		}
	}
}

func remapObjectAperture(obj graphic.Object, remap map[graphic.ApertureRef]graphic.ApertureRef) graphic.Object {
	switch o := obj.(type) {
	case *graphic.Flash:
		cp := *o
		if nr, ok := remap[o.Aperture]; ok {
			cp.Aperture = nr
		}
		return &cp
	case *graphic.Line:
		cp := *o
		if nr, ok := remap[o.Aperture]; ok {
			cp.Aperture = nr
		}
		return &cp
	case *graphic.Arc:
		cp := *o
		if nr, ok := remap[o.Aperture]; ok {
			cp.Aperture = nr
		}
		return &cp
	default:
		return obj
	}
}
