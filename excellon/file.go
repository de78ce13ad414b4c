package excellon

import (
	"sort"

	"github.com/gerbonara-go/gerbonara/cam"
	"github.com/gerbonara-go/gerbonara/graphic"
)

// File owns everything produced by parsing one Excellon/XNC source: the
// ordered object list (graphic.Drill for plain holes, graphic.Slot/Arc for
// routed slots), the tool table, comments, discovered import settings, and
// generator hints (spec.md §3.7-§3.8).
type File struct {
	Objects        []graphic.Object
	Tools          *ToolTable
	ObjectTool     map[int]graphic.ApertureRef // Objects index -> tool table index, for HitCount/PathLengths/SplitByPlating/Emit
	Comments       []string
	Settings       cam.FileSettings
	GeneratorHints []string
}

// NewFile returns an empty Excellon file with unknown settings.
func NewFile() *File {
	return &File{
		Tools:    NewToolTable(),
		Settings: cam.NewFileSettings(),
	}
}

// Bounds returns the union of every object's bounding box.
func (f *File) Bounds() graphic.Box {
	b := graphic.EmptyBox()
	for _, obj := range f.Objects {
		b = b.Union(obj.Bounds())
	}
	return b
}

// HitCount returns the number of Drill objects using toolIndex (spec.md §4.8
// "drill analytics").
func (f *File) HitCount(toolIndex int) int {
	n := 0
	for objIdx := range f.Objects {
		if ti, ok := f.ObjectTool[objIdx]; ok && int(ti) == toolIndex {
			if _, isDrill := f.Objects[objIdx].(*graphic.Drill); isDrill {
				n++
			}
		}
	}
	return n
}

// DrillSizes returns the distinct drill diameters present, sorted
// ascending, in the file's native unit (spec.md §4.8).
func (f *File) DrillSizes() []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, obj := range f.Objects {
		if d, ok := obj.(*graphic.Drill); ok {
			if !seen[d.Diameter] {
				seen[d.Diameter] = true
				out = append(out, d.Diameter)
			}
		}
	}
	sort.Float64s(out)
	return out
}

// PathLengths returns the total routed length per tool index, summing
// straight Slot lengths and Arc chord-angle arclengths (spec.md §4.8).
func (f *File) PathLengths() map[int]float64 {
	totals := make(map[int]float64)
	for objIdx, obj := range f.Objects {
		ti, ok := f.ObjectTool[objIdx]
		if !ok {
			continue
		}
		switch o := obj.(type) {
		case *graphic.Slot:
			totals[int(ti)] += distance(o.X1, o.Y1, o.X2, o.Y2)
		case *graphic.Arc:
			totals[int(ti)] += arcLength(o)
		}
	}
	return totals
}

// SplitByPlating partitions f's objects into plated and non-plated files
// according to each object's originating tool's Plating (spec.md §4.8);
// objects whose tool has unknown plating are placed in unknown.
func (f *File) SplitByPlating() (plated, nonPlated, unknown *File) {
	plated, nonPlated, unknown = NewFile(), NewFile(), NewFile()
	plated.Settings, nonPlated.Settings, unknown.Settings = f.Settings, f.Settings, f.Settings

	for objIdx, obj := range f.Objects {
		ti, ok := f.ObjectTool[objIdx]
		dst := unknown
		if ok {
			if tool, found := f.Tools.Lookup(int(ti)); found {
				switch tool.Plating {
				case Plated:
					dst = plated
				case NonPlated:
					dst = nonPlated
				}
			}
		}
		dst.Objects = append(dst.Objects, obj)
		if ok {
			if dst.ObjectTool == nil {
				dst.ObjectTool = make(map[int]graphic.ApertureRef)
			}
			dst.ObjectTool[len(dst.Objects)-1] = ti
		}
	}
	for _, idx := range f.Tools.Indices() {
		t, _ := f.Tools.Lookup(idx)
		plated.Tools.Define(idx, t, cam.NopSink)
		nonPlated.Tools.Define(idx, t, cam.NopSink)
		unknown.Tools.Define(idx, t, cam.NopSink)
	}
	return
}
