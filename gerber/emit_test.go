package gerber_test

import (
	"context"
	"testing"

	"github.com/gerbonara-go/gerbonara/cam"
	"github.com/gerbonara-go/gerbonara/gerber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEmitRoundTrip checks that parsing, emitting, and reparsing a file
// preserves its object count and bounds (spec.md §4.7 round-trip goal).
func TestEmitRoundTrip(t *testing.T) {
	src := "%FSLAX26Y26*%\n%MOMM*%\n%ADD10C,0.5*%\nD10*\nX1.0Y1.0D02*\nX2.0Y1.0D01*\nX3.0Y2.0D03*\nM02*\n"
	f, _ := mustParse(t, src)

	out := gerber.Emit(f)
	require.NotEmpty(t, out)

	collector := &cam.CollectingSink{}
	p2 := gerber.NewParser("roundtrip.gbr", collector.Sink())
	f2, err := p2.Parse(context.Background(), out)
	require.NoError(t, err)

	assert.Equal(t, len(f.Objects), len(f2.Objects))
	b1, b2 := f.Bounds(), f2.Bounds()
	assert.InDelta(t, b1.MinX, b2.MinX, 1e-3)
	assert.InDelta(t, b1.MaxX, b2.MaxX, 1e-3)
	assert.InDelta(t, b1.MinY, b2.MinY, 1e-3)
	assert.InDelta(t, b1.MaxY, b2.MaxY, 1e-3)
}
