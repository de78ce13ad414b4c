package main

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/gerbonara-go/gerbonara/aperture"
	"github.com/gerbonara-go/gerbonara/gerber"
	"github.com/gerbonara-go/gerbonara/graphic"
	"github.com/gerbonara-go/gerbonara/unit"
)

// rasterize renders a parsed Gerber file to a 1-bit-ish RGBA mask: black is
// stencil material, white is cut-through (the polarity-dark objects paint
// white, matching the teacher's stencil convention of "white holes in a
// black body").
func rasterize(f *gerber.File, dpi float64) image.Image {
	bounds := f.Bounds()
	if bounds.Empty() {
		bounds = graphic.Box{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	}
	const padding = 2.0
	minX, minY := bounds.MinX-padding, bounds.MinY-padding
	maxX, maxY := bounds.MaxX+padding, bounds.MaxY+padding

	out := unit.MM
	scale := dpi / unit.MillimetersPerInch

	widthMM := maxX - minX
	heightMM := maxY - minY
	imgW := int(widthMM * scale)
	imgH := int(heightMM * scale)
	if imgW < 1 {
		imgW = 1
	}
	if imgH < 1 {
		imgH = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, imgW, imgH))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.Black}, image.Point{}, draw.Src)
	white := &image.Uniform{color.White}

	toPix := func(x, y float64) (int, int) {
		px := int((x - minX) * scale)
		py := int((heightMM - (y - minY)) * scale)
		return px, py
	}

	r := &rasterState{f: f, img: img, toPix: toPix, scale: scale, out: out, white: white}
	for _, obj := range f.Objects {
		r.draw(obj)
	}
	return img
}

type rasterState struct {
	f     *gerber.File
	img   *image.RGBA
	toPix func(x, y float64) (int, int)
	scale float64
	out   unit.Unit
	white *image.Uniform
}

func (r *rasterState) draw(obj graphic.Object) {
	if !obj.Polarity() {
		return // clear polarity: out of scope for the stencil mask (spec.md §1 non-goal: full polarity compositing)
	}
	switch o := obj.(type) {
	case *graphic.Flash:
		ap, ok := r.f.Aperture(o.Aperture)
		if !ok {
			return
		}
		cx, cy := r.toPix(o.X, o.Y)
		r.drawAperture(cx, cy, ap)
	case *graphic.Line:
		ap, ok := r.f.Aperture(o.Aperture)
		if !ok {
			return
		}
		x1, y1 := r.toPix(o.X1, o.Y1)
		x2, y2 := r.toPix(o.X2, o.Y2)
		r.drawStroke(x1, y1, x2, y2, ap)
	case *graphic.Arc:
		ap, ok := r.f.Aperture(o.Aperture)
		if !ok {
			return
		}
		r.drawArc(o, ap)
	case *graphic.Region:
		r.drawRegion(o)
	}
}

func (r *rasterState) drawAperture(cx, cy int, ap aperture.Aperture) {
	switch v := ap.(type) {
	case *aperture.Circle:
		rad := int(r.out.Convert(v.Diameter, v.Unit) * r.scale / 2)
		drawCircle(r.img, cx, cy, rad)
	case *aperture.Rectangle:
		w := int(r.out.Convert(v.Width, v.Unit) * r.scale)
		h := int(r.out.Convert(v.Height, v.Unit) * r.scale)
		draw.Draw(r.img, image.Rect(cx-w/2, cy-h/2, cx+w/2, cy+h/2), r.white, image.Point{}, draw.Src)
	case *aperture.Obround:
		w := int(r.out.Convert(v.Width, v.Unit) * r.scale)
		h := int(r.out.Convert(v.Height, v.Unit) * r.scale)
		draw.Draw(r.img, image.Rect(cx-w/2, cy-h/2, cx+w/2, cy+h/2), r.white, image.Point{}, draw.Src)
	case *aperture.Polygon:
		rad := int(r.out.Convert(v.OuterDiameter, v.Unit) * r.scale / 2)
		drawCircle(r.img, cx, cy, rad) // best-effort: a regular polygon renders as its circumscribing circle
	case *aperture.MacroInstance:
		r.drawMacro(cx, cy, v)
	}
}

func (r *rasterState) drawMacro(cx, cy int, inst *aperture.MacroInstance) {
	macro, ok := r.f.Macros.Lookup(inst.MacroRef)
	if !ok {
		return
	}
	for _, prim := range macro.Primitives {
		mods := prim.Eval(inst.Parameters)
		switch prim.Code {
		case aperture.PrimitiveCircle:
			if len(mods) >= 4 {
				dia := mods[1] * r.scale
				px := cx + int(mods[2]*r.scale)
				py := cy - int(mods[3]*r.scale)
				drawCircle(r.img, px, py, int(dia/2))
			}
		case aperture.PrimitiveCenterLine:
			if len(mods) >= 6 {
				w := mods[1] * r.scale
				h := mods[2] * r.scale
				px := cx + int(mods[3]*r.scale)
				py := cy - int(mods[4]*r.scale)
				rect := image.Rect(px-int(w)/2, py-int(h)/2, px+int(w)/2, py+int(h)/2)
				draw.Draw(r.img, rect, r.white, image.Point{}, draw.Src)
			}
		}
	}
}

func (r *rasterState) drawStroke(x1, y1, x2, y2 int, ap aperture.Aperture) {
	dx, dy := float64(x2-x1), float64(y2-y1)
	dist := math.Hypot(dx, dy)
	steps := int(dist)
	if steps == 0 {
		r.drawAperture(x1, y1, ap)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := x1 + int(t*dx)
		y := y1 + int(t*dy)
		r.drawAperture(x, y, ap)
	}
}

func (r *rasterState) drawArc(a *graphic.Arc, ap aperture.Aperture) {
	cx, cy := a.Center()
	radius := math.Hypot(a.X1-cx, a.Y1-cy)
	a1 := math.Atan2(a.Y1-cy, a.X1-cx)
	a2 := math.Atan2(a.Y2-cy, a.X2-cx)
	sweep := a2 - a1
	if a.Clockwise {
		for sweep > 0 {
			sweep -= 2 * math.Pi
		}
	} else {
		for sweep < 0 {
			sweep += 2 * math.Pi
		}
	}
	steps := int(math.Abs(sweep)*radius*r.scale) + 1
	prevX, prevY := r.toPix(a.X1, a.Y1)
	for i := 1; i <= steps; i++ {
		t := a1 + sweep*float64(i)/float64(steps)
		x := cx + radius*math.Cos(t)
		y := cy + radius*math.Sin(t)
		px, py := r.toPix(x, y)
		r.drawStroke(prevX, prevY, px, py, ap)
		prevX, prevY = px, py
	}
}

func (r *rasterState) drawRegion(region *graphic.Region) {
	if len(region.Outline) < 3 {
		return
	}
	pts := make([][2]int, len(region.Outline))
	for i, p := range region.Outline {
		x, y := r.toPix(p[0], p[1])
		pts[i] = [2]int{x, y}
	}
	fillPolygon(r.img, pts, r.white)
}

func drawCircle(img *image.RGBA, x0, y0, radius int) {
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= radius*radius {
				img.Set(x0+x, y0+y, color.White)
			}
		}
	}
}

// fillPolygon scan-fills pts using an even-odd edge-crossing rule, adequate
// for the non-self-intersecting outlines a sealed G36/G37 region produces.
func fillPolygon(img *image.RGBA, pts [][2]int, c *image.Uniform) {
	if len(pts) < 3 {
		return
	}
	minY, maxY := pts[0][1], pts[0][1]
	for _, p := range pts {
		if p[1] < minY {
			minY = p[1]
		}
		if p[1] > maxY {
			maxY = p[1]
		}
	}
	for y := minY; y <= maxY; y++ {
		var xs []int
		n := len(pts)
		for i := 0; i < n; i++ {
			x1, y1 := pts[i][0], pts[i][1]
			x2, y2 := pts[(i+1)%n][0], pts[(i+1)%n][1]
			if (y1 <= y && y2 > y) || (y2 <= y && y1 > y) {
				t := float64(y-y1) / float64(y2-y1)
				xs = append(xs, x1+int(t*float64(x2-x1)))
			}
		}
		if len(xs) < 2 {
			continue
		}
		for i := 0; i < len(xs); i++ {
			for j := i + 1; j < len(xs); j++ {
				if xs[j] < xs[i] {
					xs[i], xs[j] = xs[j], xs[i]
				}
			}
		}
		for i := 0; i+1 < len(xs); i += 2 {
			for x := xs[i]; x <= xs[i+1]; x++ {
				img.Set(x, y, c.C)
			}
		}
	}
}
