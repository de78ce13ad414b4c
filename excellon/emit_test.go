package excellon_test

import (
	"context"
	"strings"
	"testing"

	"github.com/gerbonara-go/gerbonara/cam"
	"github.com/gerbonara-go/gerbonara/excellon"
	"github.com/gerbonara-go/gerbonara/graphic"
	"github.com/gerbonara-go/gerbonara/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEmitRoundTrip checks that parsing, emitting, and reparsing a drill
// file preserves its object count and bounds, including a routed slot
// (spec.md §4.7 round-trip goal applied to Excellon).
func TestEmitRoundTrip(t *testing.T) {
	src := "M48\nMETRIC,TZ\nT01C0.300\nT02C1.000\n%\nT01\nX1.0Y1.0\nX2.0Y1.0\nT02\nG00X0.0Y0.0\nM15\nG01X5.0Y0.0\nM16\nM30\n"
	f, _ := mustParse(t, src)
	require.Len(t, f.Objects, 3)

	out := excellon.Emit(f)
	require.NotEmpty(t, out)

	collector := &cam.CollectingSink{}
	p2 := excellon.NewParser("roundtrip.drl", collector.Sink(), nil)
	f2, err := p2.Parse(context.Background(), out)
	require.NoError(t, err)

	assert.Equal(t, len(f.Objects), len(f2.Objects))
	b1, b2 := f.Bounds(), f2.Bounds()
	assert.InDelta(t, b1.MinX, b2.MinX, 1e-3)
	assert.InDelta(t, b1.MaxX, b2.MaxX, 1e-3)
	assert.InDelta(t, b1.MinY, b2.MinY, 1e-3)
	assert.InDelta(t, b1.MaxY, b2.MaxY, 1e-3)
}

// TestEmitMixedPlatingSortsAndMarksType checks the XNC emitter's tool table
// handling of a file with one plated and one non-plated tool of the same
// diameter: tools are re-indexed from 1 in (plated, diameter) order, and
// each tool is preceded by its ;TYPE= marker since the plating is mixed
// (spec.md §4.7, scenario S5).
func TestEmitMixedPlatingSortsAndMarksType(t *testing.T) {
	f := excellon.NewFile()
	f.Tools.Define(5, excellon.Tool{Diameter: 0.3, Plating: excellon.NonPlated}, cam.NopSink)
	f.Tools.Define(7, excellon.Tool{Diameter: 0.3, Plating: excellon.Plated}, cam.NopSink)
	f.Objects = []graphic.Object{
		&graphic.Drill{Common: graphic.Common{PolarityDark: true, Unit: unit.MM}, X: 1, Y: 1, Diameter: 0.3},
		&graphic.Drill{Common: graphic.Common{PolarityDark: true, Unit: unit.MM}, X: 2, Y: 2, Diameter: 0.3},
	}
	f.ObjectTool = map[int]graphic.ApertureRef{0: 5, 1: 7}

	out := excellon.Emit(f)

	platedAt := strings.Index(out, ";TYPE=PLATED")
	nonPlatedAt := strings.Index(out, ";TYPE=NON_PLATED")
	require.NotEqual(t, -1, platedAt)
	require.NotEqual(t, -1, nonPlatedAt)
	assert.Less(t, platedAt, nonPlatedAt) // Plated sorts before NonPlated

	assert.Contains(t, out, "T01C0.3")
	assert.Contains(t, out, "T02C0.3")
}
