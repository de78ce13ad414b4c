package gerber

import (
	"github.com/gerbonara-go/gerbonara/aperture"
	"github.com/gerbonara-go/gerbonara/cam"
	"github.com/gerbonara-go/gerbonara/graphic"
)

// File owns everything produced by parsing one Gerber source: the ordered
// object list, the aperture table (indexed by graphic.ApertureRef), the
// macro table, file-level attributes, comments, import settings, and
// informational generator hints (spec.md §3.7).
type File struct {
	Objects        []graphic.Object
	Apertures      []aperture.Aperture
	Macros         *aperture.Table
	FileAttributes map[string][]string
	Comments       []string
	Settings       cam.FileSettings
	GeneratorHints []string
	EOF            bool
}

// NewFile returns an empty Gerber file with unknown settings.
func NewFile() *File {
	return &File{
		Macros:         aperture.NewTable(),
		FileAttributes: make(map[string][]string),
		Settings:       cam.NewFileSettings(),
	}
}

// Aperture resolves a handle to its aperture, or (nil, false) if unset.
func (f *File) Aperture(ref graphic.ApertureRef) (aperture.Aperture, bool) {
	if ref < 0 || int(ref) >= len(f.Apertures) {
		return nil, false
	}
	return f.Apertures[ref], true
}

// AddAperture appends a to the aperture table and returns its handle.
func (f *File) AddAperture(a aperture.Aperture) graphic.ApertureRef {
	f.Apertures = append(f.Apertures, a)
	return graphic.ApertureRef(len(f.Apertures) - 1)
}

// Bounds returns the union of every object's bounding box, in the file's
// native unit. Per DESIGN NOTES §9, this correctly uses the loop variable's
// bounds (the source's corresponding bug is not reproduced).
func (f *File) Bounds() graphic.Box {
	b := graphic.EmptyBox()
	for _, obj := range f.Objects {
		b = b.Union(obj.Bounds())
	}
	return b
}
