// Package graphic implements the geometric object sum type shared by Gerber
// and Excellon files (spec.md §3.6): Flash, Line, Arc, Region, Drill, Slot.
//
// Grounded on original_source/gerbonara/gerber/graphic_objects.py. Per
// DESIGN NOTES §9, the original has two same-named modules; this package
// implements only the later (authoritative) definition.
package graphic

import (
	"math"

	"github.com/gerbonara-go/gerbonara/unit"
)

// ApertureRef is a stable handle into the owning file's aperture (Gerber) or
// tool (Excellon) table: an integer index, never a pointer, per DESIGN NOTES
// §9 ("handle-based references").
type ApertureRef int

// NoAperture marks an object with no aperture reference (e.g. a Region
// outline segment).
const NoAperture ApertureRef = -1

// Object is the sum type of geometric primitives. The unexported marker
// closes the set to this package.
type Object interface {
	isObject()
	// Polarity reports whether this object is drawn dark (true) or clear
	// (false, i.e. it erases previously drawn material).
	Polarity() bool
	// NativeUnit is the unit the object's coordinates are expressed in.
	NativeUnit() unit.Unit
	// Bounds returns the object's axis-aligned bounding box in NativeUnit().
	Bounds() Box
	// Attrs returns the object's attribute dictionary.
	Attrs() map[string][]string
}

// Common carries the fields every object variant shares.
type Common struct {
	PolarityDark bool
	Unit         unit.Unit
	Attribute    map[string][]string
}

func (c *Common) Polarity() bool            { return c.PolarityDark }
func (c *Common) NativeUnit() unit.Unit     { return c.Unit }
func (c *Common) Attrs() map[string][]string {
	if c.Attribute == nil {
		c.Attribute = make(map[string][]string)
	}
	return c.Attribute
}

// Box is an axis-aligned bounding box. An empty Box (Empty() == true) is the
// identity for Union.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
	empty                  bool
}

// EmptyBox returns the identity bounding box for Union.
func EmptyBox() Box { return Box{empty: true} }

func (b Box) Empty() bool { return b.empty }

// Union returns the smallest box containing both b and other.
func (b Box) Union(other Box) Box {
	if b.Empty() {
		return other
	}
	if other.Empty() {
		return b
	}
	return Box{
		MinX: math.Min(b.MinX, other.MinX),
		MinY: math.Min(b.MinY, other.MinY),
		MaxX: math.Max(b.MaxX, other.MaxX),
		MaxY: math.Max(b.MaxY, other.MaxY),
	}
}

func pointBox(x, y float64) Box {
	return Box{MinX: x, MinY: y, MaxX: x, MaxY: y}
}

// ---- Flash ----

// Flash places an aperture's shape at (X, Y).
type Flash struct {
	Common
	X, Y     float64
	Aperture ApertureRef
}

func (*Flash) isObject() {}

func (f *Flash) Bounds() Box { return pointBox(f.X, f.Y) }

// ---- Line ----

// Line strokes from (X1,Y1) to (X2,Y2) with round caps sized by Aperture.
type Line struct {
	Common
	X1, Y1, X2, Y2 float64
	Aperture       ApertureRef
}

func (*Line) isObject() {}

func (l *Line) Bounds() Box {
	return pointBox(l.X1, l.Y1).Union(pointBox(l.X2, l.Y2))
}

// ---- Arc ----

// Arc strokes an arc from (X1,Y1) to (X2,Y2) around a center expressed as an
// offset (CX,CY) from (X1,Y1). Invariant: |p1-center| ≈ |p2-center|.
type Arc struct {
	Common
	X1, Y1, X2, Y2 float64
	CX, CY         float64 // center offset from (X1,Y1)
	Clockwise      bool
	Aperture       ApertureRef
}

func (*Arc) isObject() {}

// Center returns the arc's absolute center point.
func (a *Arc) Center() (float64, float64) {
	return a.X1 + a.CX, a.Y1 + a.CY
}

// RadiusError returns |p1-center| - |p2-center|, which should be ~0 for a
// well-formed arc (spec.md §8 invariant 1).
func (a *Arc) RadiusError() float64 {
	cx, cy := a.Center()
	r1 := math.Hypot(a.X1-cx, a.Y1-cy)
	r2 := math.Hypot(a.X2-cx, a.Y2-cy)
	return r1 - r2
}

func (a *Arc) Bounds() Box {
	// Conservative bound: the chord endpoints plus the four axis-aligned
	// extrema of the circle containing the arc. Good enough for layout
	// and stencil purposes; exact arc-sweep clipping is not required by
	// any consumer in scope.
	cx, cy := a.Center()
	r := math.Hypot(a.X1-cx, a.Y1-cy)
	b := pointBox(a.X1, a.Y1).Union(pointBox(a.X2, a.Y2))
	b = b.Union(Box{MinX: cx - r, MinY: cy - r, MaxX: cx + r, MaxY: cy + r})
	return b
}

// ---- Region ----

// ArcSegment describes the segment arriving at outline point i (i>=1):
// Straight for a straight segment from point i-1, otherwise the arc's
// direction and absolute center.
type ArcSegment struct {
	Straight  bool
	Clockwise bool
	CenterX   float64
	CenterY   float64
}

// Region is a closed polygon-with-arcs: an ordered outline plus a parallel
// arc-data sequence (spec.md §3.6).
type Region struct {
	Common
	Outline  [][2]float64
	ArcData  []ArcSegment // len(ArcData) == len(Outline); ArcData[0] is unused
	Aperture ApertureRef  // regions have no aperture in Gerber; kept for uniformity
}

func (*Region) isObject() {}

func (r *Region) Bounds() Box {
	b := EmptyBox()
	for _, p := range r.Outline {
		b = b.Union(pointBox(p[0], p[1]))
	}
	return b
}

// ---- Drill / Slot (Excellon projection) ----

// Drill is a round hole at (X, Y) with the given diameter.
type Drill struct {
	Common
	X, Y     float64
	Diameter float64
}

func (*Drill) isObject() {}

func (d *Drill) Bounds() Box {
	r := d.Diameter / 2
	return Box{MinX: d.X - r, MinY: d.Y - r, MaxX: d.X + r, MaxY: d.Y + r}
}

// Slot is a routed slot from (X1,Y1) to (X2,Y2) of the given width.
type Slot struct {
	Common
	X1, Y1, X2, Y2 float64
	Width          float64
}

func (*Slot) isObject() {}

func (s *Slot) Bounds() Box {
	r := s.Width / 2
	b := pointBox(s.X1, s.Y1).Union(pointBox(s.X2, s.Y2))
	return Box{MinX: b.MinX - r, MinY: b.MinY - r, MaxX: b.MaxX + r, MaxY: b.MaxY + r}
}
