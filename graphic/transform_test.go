package graphic_test

import (
	"math"
	"testing"

	"github.com/gerbonara-go/gerbonara/graphic"
	"github.com/gerbonara-go/gerbonara/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffsetFlash(t *testing.T) {
	f := &graphic.Flash{Common: graphic.Common{PolarityDark: true, Unit: unit.MM}, X: 1, Y: 2}
	out := graphic.Offset(f, 3, -1, unit.MM)
	flash, ok := out.(*graphic.Flash)
	require.True(t, ok)
	assert.InDelta(t, 4.0, flash.X, 1e-9)
	assert.InDelta(t, 1.0, flash.Y, 1e-9)
}

func TestOffsetConvertsUnits(t *testing.T) {
	d := &graphic.Drill{Common: graphic.Common{PolarityDark: true, Unit: unit.MM}, X: 0, Y: 0}
	// offset given in inches, object is in mm: 1 inch should become 25.4mm
	out := graphic.Offset(d, 1, 0, unit.Inch)
	drill, ok := out.(*graphic.Drill)
	require.True(t, ok)
	assert.InDelta(t, 25.4, drill.X, 1e-6)
}

func TestRotateLineQuarterTurn(t *testing.T) {
	l := &graphic.Line{Common: graphic.Common{PolarityDark: true, Unit: unit.MM}, X1: 1, Y1: 0, X2: 2, Y2: 0}
	out := graphic.Rotate(l, math.Pi/2, 0, 0, unit.MM)
	line, ok := out.(*graphic.Line)
	require.True(t, ok)
	assert.InDelta(t, 0.0, line.X1, 1e-9)
	assert.InDelta(t, 1.0, line.Y1, 1e-9)
	assert.InDelta(t, 0.0, line.X2, 1e-9)
	assert.InDelta(t, 2.0, line.Y2, 1e-9)
}

func TestRotateArcCenterOffsetRotatesWithChord(t *testing.T) {
	a := &graphic.Arc{
		Common: graphic.Common{PolarityDark: true, Unit: unit.MM},
		X1:     1, Y1: 0, X2: 0, Y2: 1,
		CX: -1, CY: 0,
	}
	out := graphic.Rotate(a, math.Pi/2, 0, 0, unit.MM)
	arc, ok := out.(*graphic.Arc)
	require.True(t, ok)
	assert.InDelta(t, 0.0, arc.CX, 1e-9)
	assert.InDelta(t, -1.0, arc.CY, 1e-9)
}

func TestBoxUnionWithEmpty(t *testing.T) {
	empty := graphic.EmptyBox()
	box := graphic.Box{MinX: 1, MinY: 1, MaxX: 2, MaxY: 2}
	assert.Equal(t, box, empty.Union(box))
	assert.Equal(t, box, box.Union(empty))
	assert.True(t, empty.Empty())
	assert.False(t, box.Empty())
}
