package excellon

import (
	"math"

	"github.com/gerbonara-go/gerbonara/graphic"
)

func distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// arcLength returns a's arc length: radius times the swept angle, with the
// sweep direction taken from a.Clockwise.
func arcLength(a *graphic.Arc) float64 {
	cx, cy := a.Center()
	r := math.Hypot(a.X1-cx, a.Y1-cy)
	if r == 0 {
		return 0
	}
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
	return r * math.Abs(sweep)
}
