package excellon_test

import (
	"context"
	"testing"

	"github.com/gerbonara-go/gerbonara/cam"
	"github.com/gerbonara-go/gerbonara/excellon"
	"github.com/gerbonara-go/gerbonara/graphic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) (*excellon.File, *cam.CollectingSink) {
	t.Helper()
	collector := &cam.CollectingSink{}
	p := excellon.NewParser("test.drl", collector.Sink(), nil)
	f, err := p.Parse(context.Background(), src)
	require.NoError(t, err)
	return f, collector
}

func TestParseHeaderAndDrills(t *testing.T) {
	src := "M48\nMETRIC,TZ\nT01C0.300\nT02C0.500\n%\nT01\nX1.0Y1.0\nX2.0Y1.0\nT02\nX3.0Y3.0\nM30\n"
	f, _ := mustParse(t, src)

	require.Len(t, f.Objects, 3)
	assert.Equal(t, 2, f.HitCount(1))
	assert.Equal(t, 1, f.HitCount(2))

	sizes := f.DrillSizes()
	require.Len(t, sizes, 2)
	assert.InDelta(t, 0.3, sizes[0], 1e-9)
	assert.InDelta(t, 0.5, sizes[1], 1e-9)
}

func TestToolSelectBeforeDefinitionWarns(t *testing.T) {
	src := "M48\nMETRIC,TZ\n%\nT05\nX1.0Y1.0\nM30\n"
	_, collector := mustParse(t, src)
	assert.True(t, collector.Has(cam.SyntaxWarning))
}

func TestRoutedSlotEmitsSlotObject(t *testing.T) {
	src := "M48\nMETRIC,TZ\nT01C1.000\n%\nT01\nG00X0.0Y0.0\nM15\nG01X5.0Y0.0\nM16\nM30\n"
	f, _ := mustParse(t, src)

	require.Len(t, f.Objects, 1)
	slot, ok := f.Objects[0].(*graphic.Slot)
	require.True(t, ok)
	assert.InDelta(t, 0.0, slot.X1, 1e-9)
	assert.InDelta(t, 5.0, slot.X2, 1e-9)
}

func TestRepeatHoleProducesMultipleDrills(t *testing.T) {
	src := "M48\nMETRIC,TZ\nT01C0.300\n%\nT01\nX1.0Y1.0\nR3X2.0Y0.0\nM30\n"
	f, _ := mustParse(t, src)
	require.Len(t, f.Objects, 4) // the initial hit plus 3 repeats
	d0 := f.Objects[0].(*graphic.Drill)
	d3 := f.Objects[3].(*graphic.Drill)
	assert.InDelta(t, 1.0, d0.X, 1e-9)
	assert.InDelta(t, 7.0, d3.X, 1e-9) // 1.0 + 3*2.0
}

func TestToolRedefinitionWarnsAndKeepsOriginal(t *testing.T) {
	src := "M48\nMETRIC,TZ\nT01C0.300\nT01C0.999\n%\nT01\nX1.0Y1.0\nM30\n"
	f, collector := mustParse(t, src)
	assert.True(t, collector.Has(cam.ResourceWarning))
	tool, ok := f.Tools.Lookup(1)
	require.True(t, ok)
	assert.InDelta(t, 0.3, tool.Diameter, 1e-9)
}

func TestIncludeDisabledByDefault(t *testing.T) {
	src := "M48\nMETRIC,TZ\nT01C0.300\n%\nIF,\"sub.drl\"\nT01\nX1.0Y1.0\nM30\n"
	f, collector := mustParse(t, src)
	assert.True(t, collector.Has(cam.SyntaxWarning))
	require.Len(t, f.Objects, 1)
}

func TestIncludeEnabledRecursesIntoContent(t *testing.T) {
	collector := &cam.CollectingSink{}
	p := excellon.NewParser("test.drl", collector.Sink(), nil)
	p.AllowIncludes = true
	p.Include = func(path string) (string, error) {
		assert.Equal(t, "sub.drl", path)
		return "X2.0Y2.0\n", nil
	}
	src := "M48\nMETRIC,TZ\nT01C0.300\n%\nT01\nX1.0Y1.0\nIF,\"sub.drl\"\nM30\n"
	f, err := p.Parse(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, f.Objects, 2)
}

func TestAllegroCommentTooldefParsesDiameterAndPlating(t *testing.T) {
	src := "M48\n;T1 Holesize 1. = 10.0 Tolerance = +0.0/-0.0 PLATED MILS Quantity = 5\nINCH,TZ\n%\nT01\nX1.0Y1.0\nM30\n"
	f, _ := mustParse(t, src)

	tool, ok := f.Tools.Lookup(1)
	require.True(t, ok)
	assert.InDelta(t, 0.01, tool.Diameter, 1e-9) // 10 mils = 0.01 inch
	assert.Equal(t, excellon.Plated, tool.Plating)
	assert.Contains(t, f.GeneratorHints, "allegro")
}

func TestAllegroCommentTooldefMismatchedIndexIsSyntaxError(t *testing.T) {
	collector := &cam.CollectingSink{}
	p := excellon.NewParser("test.drl", collector.Sink(), nil)
	src := "M48\n;T1 Holesize 2. = 10.0 Tolerance = +0.0/-0.0 PLATED MILS Quantity = 5\n%\nM30\n"
	_, err := p.Parse(context.Background(), src)
	require.Error(t, err)
	var pe *cam.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, cam.SyntaxError, pe.Kind)
}

func TestEasyEDACommentTooldefParsesDiameterAndUnit(t *testing.T) {
	src := "M48\nMETRIC,TZ\n;Holesize 1 = 0.3 mm\n%\nT01\nX1.0Y1.0\nM30\n"
	f, _ := mustParse(t, src)

	tool, ok := f.Tools.Lookup(1)
	require.True(t, ok)
	assert.InDelta(t, 0.3, tool.Diameter, 1e-9)
	assert.Contains(t, f.GeneratorHints, "easyeda")
}

func TestSiemensFormatCommentInvertsZeroSuppressionAndHints(t *testing.T) {
	src := "M48\n; Format : 2.4 / Absolute / MM / Leading\n%\nM30\n"
	f, _ := mustParse(t, src)

	assert.Contains(t, f.GeneratorHints, "siemens")
	assert.Equal(t, cam.Trailing, f.Settings.ZeroSuppression)
	assert.Equal(t, cam.NumberFormat{Integer: 2, Fractional: 4}, f.Settings.NumberFormat)
}

func TestAltiumFileFormatCommentSetsNumberFormat(t *testing.T) {
	src := "M48\n;FILE_FORMAT=2:4\n%\nM30\n"
	f, _ := mustParse(t, src)

	assert.Equal(t, cam.NumberFormat{Integer: 2, Fractional: 4}, f.Settings.NumberFormat)
	assert.Contains(t, f.GeneratorHints, "altium")
}

func TestIncludePathTraversalRejected(t *testing.T) {
	collector := &cam.CollectingSink{}
	p := excellon.NewParser("test.drl", collector.Sink(), nil)
	p.AllowIncludes = true
	p.Include = func(path string) (string, error) { return "", nil }
	_, err := p.Parse(context.Background(), "M48\nMETRIC,TZ\n%\nIF,\"../escape.drl\"\nM30\n")
	require.Error(t, err)
	var pe *cam.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, cam.IncludeError, pe.Kind)
}
