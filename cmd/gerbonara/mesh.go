package main

import (
	"fmt"
	"image"
	"os"
)

// point is one mesh vertex in millimeters.
type point struct {
	X, Y, Z float64
}

// writeSTL writes triangles as ASCII STL; the board sizes this toolkit deals
// with keep ASCII STL's size penalty irrelevant next to its simplicity.
func writeSTL(filename string, triangles [][3]point) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString("solid stencil\n"); err != nil {
		return err
	}
	for _, t := range triangles {
		fmt.Fprintf(f, "facet normal 0 0 0\n")
		fmt.Fprintf(f, "  outer loop\n")
		for _, p := range t {
			fmt.Fprintf(f, "    vertex %f %f %f\n", p.X, p.Y, p.Z)
		}
		fmt.Fprintf(f, "  endloop\n")
		fmt.Fprintf(f, "endfacet\n")
	}
	_, err = f.WriteString("endsolid stencil\n")
	return err
}

// addBox appends the twelve triangles of an axis-aligned box to triangles.
func addBox(triangles *[][3]point, x, y, w, h, zHeight float64) {
	x0, y0 := x, y
	x1, y1 := x+w, y+h
	z0, z1 := 0.0, zHeight

	p000 := point{x0, y0, z0}
	p100 := point{x1, y0, z0}
	p110 := point{x1, y1, z0}
	p010 := point{x0, y1, z0}
	p001 := point{x0, y0, z1}
	p101 := point{x1, y0, z1}
	p111 := point{x1, y1, z1}
	p011 := point{x0, y1, z1}

	addQuad := func(a, b, c, d point) {
		*triangles = append(*triangles, [3]point{a, b, c})
		*triangles = append(*triangles, [3]point{c, d, a})
	}

	addQuad(p000, p010, p110, p100) // bottom
	addQuad(p101, p111, p011, p001) // top
	addQuad(p000, p100, p101, p001) // front
	addQuad(p100, p110, p111, p101) // right
	addQuad(p110, p010, p011, p111) // back
	addQuad(p010, p000, p001, p011) // left
}

// meshFromImage extrudes every black run of pixels in img into a box of the
// given height, using run-length encoding per scanline so that a long
// solid stencil wall is one box instead of one per pixel.
func meshFromImage(img image.Image, pixelToMM, height float64) [][3]point {
	bounds := img.Bounds()
	width := bounds.Max.X
	rows := bounds.Max.Y
	var triangles [][3]point

	for y := 0; y < rows; y++ {
		startX := -1
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			isSolid := r < 10000 && g < 10000 && b < 10000
			if isSolid {
				if startX == -1 {
					startX = x
				}
				continue
			}
			if startX != -1 {
				stripLen := x - startX
				addBox(&triangles, float64(startX)*pixelToMM, float64(y)*pixelToMM, float64(stripLen)*pixelToMM, pixelToMM, height)
				startX = -1
			}
		}
		if startX != -1 {
			stripLen := width - startX
			addBox(&triangles, float64(startX)*pixelToMM, float64(y)*pixelToMM, float64(stripLen)*pixelToMM, pixelToMM, height)
		}
	}
	return triangles
}
