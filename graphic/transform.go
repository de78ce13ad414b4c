package graphic

import (
	"math"

	"github.com/gerbonara-go/gerbonara/unit"
)

// Offset returns a copy of obj translated by (dx, dy), given in unit u.
func Offset(obj Object, dx, dy float64, u unit.Unit) Object {
	nu := obj.NativeUnit()
	dx = nu.Convert(dx, u)
	dy = nu.Convert(dy, u)

	switch v := obj.(type) {
	case *Flash:
		cp := *v
		cp.X += dx
		cp.Y += dy
		return &cp
	case *Line:
		cp := *v
		cp.X1 += dx
		cp.Y1 += dy
		cp.X2 += dx
		cp.Y2 += dy
		return &cp
	case *Arc:
		cp := *v
		cp.X1 += dx
		cp.Y1 += dy
		cp.X2 += dx
		cp.Y2 += dy
		// CX, CY are an offset from X1,Y1: translation-invariant.
		return &cp
	case *Region:
		cp := *v
		cp.Outline = make([][2]float64, len(v.Outline))
		for i, p := range v.Outline {
			cp.Outline[i] = [2]float64{p[0] + dx, p[1] + dy}
		}
		cp.ArcData = append([]ArcSegment(nil), v.ArcData...)
		// Region arc centers are absolute, so they move with the outline.
		for i := range cp.ArcData {
			if !cp.ArcData[i].Straight {
				cp.ArcData[i].CenterX += dx
				cp.ArcData[i].CenterY += dy
			}
		}
		return &cp
	case *Drill:
		cp := *v
		cp.X += dx
		cp.Y += dy
		return &cp
	case *Slot:
		cp := *v
		cp.X1 += dx
		cp.Y1 += dy
		cp.X2 += dx
		cp.Y2 += dy
		return &cp
	default:
		return obj
	}
}

// Rotate returns a copy of obj rotated by angle radians about (cx, cy),
// given in unit u.
func Rotate(obj Object, angle float64, cx, cy float64, u unit.Unit) Object {
	nu := obj.NativeUnit()
	cx = nu.Convert(cx, u)
	cy = nu.Convert(cy, u)
	rot := func(x, y float64) (float64, float64) {
		return rotatePoint(x, y, cx, cy, angle)
	}

	switch v := obj.(type) {
	case *Flash:
		cp := *v
		cp.X, cp.Y = rot(v.X, v.Y)
		return &cp
	case *Line:
		cp := *v
		cp.X1, cp.Y1 = rot(v.X1, v.Y1)
		cp.X2, cp.Y2 = rot(v.X2, v.Y2)
		return &cp
	case *Arc:
		cp := *v
		cp.X1, cp.Y1 = rot(v.X1, v.Y1)
		cp.X2, cp.Y2 = rot(v.X2, v.Y2)
		// the center offset rotates with the chord since it's relative
		ccx, ccy := rotateVector(v.CX, v.CY, angle)
		cp.CX, cp.CY = ccx, ccy
		return &cp
	case *Region:
		cp := *v
		cp.Outline = make([][2]float64, len(v.Outline))
		for i, p := range v.Outline {
			x, y := rot(p[0], p[1])
			cp.Outline[i] = [2]float64{x, y}
		}
		cp.ArcData = append([]ArcSegment(nil), v.ArcData...)
		for i := range cp.ArcData {
			if !cp.ArcData[i].Straight {
				cp.ArcData[i].CenterX, cp.ArcData[i].CenterY = rot(cp.ArcData[i].CenterX, cp.ArcData[i].CenterY)
			}
		}
		return &cp
	case *Drill:
		cp := *v
		cp.X, cp.Y = rot(v.X, v.Y)
		return &cp
	case *Slot:
		cp := *v
		cp.X1, cp.Y1 = rot(v.X1, v.Y1)
		cp.X2, cp.Y2 = rot(v.X2, v.Y2)
		return &cp
	default:
		return obj
	}
}

func rotatePoint(x, y, cx, cy, angle float64) (float64, float64) {
	sin, cos := math.Sin(angle), math.Cos(angle)
	dx, dy := x-cx, y-cy
	return cos*dx-sin*dy + cx, sin*dx+cos*dy + cy
}

func rotateVector(x, y, angle float64) (float64, float64) {
	sin, cos := math.Sin(angle), math.Cos(angle)
	return cos*x - sin*y, sin*x + cos*y
}
