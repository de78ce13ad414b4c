package gerber_test

import (
	"context"
	"testing"

	"github.com/gerbonara-go/gerbonara/cam"
	"github.com/gerbonara-go/gerbonara/gerber"
	"github.com/gerbonara-go/gerbonara/graphic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) (*gerber.File, *cam.CollectingSink) {
	t.Helper()
	collector := &cam.CollectingSink{}
	p := gerber.NewParser("test.gbr", collector.Sink())
	f, err := p.Parse(context.Background(), src)
	require.NoError(t, err)
	return f, collector
}

// A single extended-command block chaining FS and MO is the real-world
// form this parser must split into two statements (the multi-statement
// splitting fix).
func TestParseChainedExtendedBlock(t *testing.T) {
	src := "%FSLAX26Y26*MOMM*%\n%ADD10C,0.5*%\nD10*\nX1.0Y1.0D02*\nX2.0Y1.0D01*\nX3.0Y2.0D03*\nM02*\n"
	f, collector := mustParse(t, src)
	assert.False(t, collector.Has(cam.UnknownStatementWarning))

	require.Len(t, f.Objects, 2)
	line, ok := f.Objects[0].(*graphic.Line)
	require.True(t, ok)
	assert.InDelta(t, 1.0, line.X1, 1e-9)
	assert.InDelta(t, 2.0, line.X2, 1e-9)

	flash, ok := f.Objects[1].(*graphic.Flash)
	require.True(t, ok)
	assert.InDelta(t, 3.0, flash.X, 1e-9)
	assert.InDelta(t, 2.0, flash.Y, 1e-9)
}

func TestParseUndefinedApertureIsError(t *testing.T) {
	collector := &cam.CollectingSink{}
	p := gerber.NewParser("test.gbr", collector.Sink())
	_, err := p.Parse(context.Background(), "%FSLAX26Y26*%\n%MOMM*%\nD10*\n")
	require.Error(t, err)
	var pe *cam.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, cam.UndefinedAperture, pe.Kind)
}

// Deprecated G54Dnn aperture selection must still select the aperture,
// unlike the genuinely no-op G55/G70/G71 legacy codes.
func TestParseG54ApertureSelect(t *testing.T) {
	src := "%FSLAX26Y26*%\n%MOMM*%\n%ADD10C,0.5*%\nG54D10*\nX1.0Y1.0D03*\nM02*\n"
	f, collector := mustParse(t, src)
	assert.True(t, collector.Has(cam.DeprecationWarning))
	require.Len(t, f.Objects, 1)
	flash, ok := f.Objects[0].(*graphic.Flash)
	require.True(t, ok)
	assert.Equal(t, graphic.ApertureRef(0), flash.Aperture)
}

func TestParseRegionProducesOneObject(t *testing.T) {
	src := "%FSLAX26Y26*%\n%MOMM*%\nG36*\nX0.0Y0.0D02*\nX1.0Y0.0D01*\nX1.0Y1.0D01*\nX0.0Y1.0D01*\nX0.0Y0.0D01*\nG37*\nM02*\n"
	f, _ := mustParse(t, src)
	require.Len(t, f.Objects, 1)
	region, ok := f.Objects[0].(*graphic.Region)
	require.True(t, ok)
	assert.Len(t, region.Outline, 5)
}

func TestParseMacroInstance(t *testing.T) {
	src := "%FSLAX26Y26*%\n%MOMM*%\n%AMBOX*21,1,0.5,0.5,0,0,0*%\n%ADD11BOX*%\nD11*\nX0.0Y0.0D03*\nM02*\n"
	f, _ := mustParse(t, src)
	require.Len(t, f.Objects, 1)
	_, ok := f.Objects[0].(*graphic.Flash)
	require.True(t, ok)
	require.Len(t, f.Apertures, 1)
}

func TestFSRejectsUnequalDigitWidths(t *testing.T) {
	collector := &cam.CollectingSink{}
	p := gerber.NewParser("test.gbr", collector.Sink())
	_, err := p.Parse(context.Background(), "%FSLAX24Y26*%\n")
	require.Error(t, err)
	var pe *cam.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, cam.FormatMismatch, pe.Kind)
}

func TestTDCannotDeleteFileScopeAttribute(t *testing.T) {
	collector := &cam.CollectingSink{}
	p := gerber.NewParser("test.gbr", collector.Sink())
	_, err := p.Parse(context.Background(), "%TF.Part,Single*%\n%TD.Part*%\n")
	require.Error(t, err)
}
