package cam_test

import (
	"math"
	"testing"

	"github.com/gerbonara-go/gerbonara/cam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseCoordinateExplicitDecimal(t *testing.T) {
	v, err := cam.ParseCoordinate("1.5", cam.UnknownNumberFormat, cam.ZeroSuppressionUnknown)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, v, 1e-9)
}

func TestParseCoordinateExplicitDecimalNegative(t *testing.T) {
	v, err := cam.ParseCoordinate("-0.025", cam.UnknownNumberFormat, cam.ZeroSuppressionUnknown)
	require.NoError(t, err)
	assert.InDelta(t, -0.025, v, 1e-9)
}

func TestParseCoordinateUnknownFormatNoDot(t *testing.T) {
	_, err := cam.ParseCoordinate("12345", cam.UnknownNumberFormat, cam.ZeroSuppressionUnknown)
	require.ErrorIs(t, err, cam.ErrNumberFormatUnknown)
}

func TestParseCoordinateLeadingSuppression(t *testing.T) {
	// 2.4 format, leading-zero suppression: "1500" is the last 4 digits of
	// a 6-digit field, left-padded with the zeros that were suppressed from
	// the front: 001500 -> 00.1500 -> 0.15
	v, err := cam.ParseCoordinate("1500", cam.NumberFormat{Integer: 2, Fractional: 4}, cam.Leading)
	require.NoError(t, err)
	assert.InDelta(t, 0.15, v, 1e-9)
}

func TestParseCoordinateTrailingSuppression(t *testing.T) {
	v, err := cam.ParseCoordinate("15", cam.NumberFormat{Integer: 2, Fractional: 4}, cam.Trailing)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, v, 1e-9)
}

func TestParseCoordinateNoSuppressionWrongWidth(t *testing.T) {
	_, err := cam.ParseCoordinate("15", cam.NumberFormat{Integer: 2, Fractional: 4}, cam.NoSuppression)
	require.Error(t, err)
}

func TestEmitCoordinateRoundTrip(t *testing.T) {
	format := cam.NumberFormat{Integer: 2, Fractional: 4}
	s := cam.EmitCoordinate(15.0, format, cam.Trailing)
	v, err := cam.ParseCoordinate(s, format, cam.Trailing)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, v, 1e-6)
}

func TestEmitCoordinateExplicit(t *testing.T) {
	format := cam.NumberFormat{Integer: 2, Fractional: 3}
	s := cam.EmitCoordinateExplicit(1.5, format)
	assert.Equal(t, "01.500", s)
}

// TestCoordinateRoundTripProperty checks that any value within a fixed-point
// format's representable precision round-trips through Emit then Parse,
// regardless of which zero-suppression rule is used (spec.md §4.1 round-trip
// invariant).
func TestCoordinateRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		intDigits := rapid.IntRange(1, 6).Draw(t, "intDigits")
		fracDigits := rapid.IntRange(0, 6).Draw(t, "fracDigits")
		format := cam.NumberFormat{Integer: intDigits, Fractional: fracDigits}

		maxVal := math.Pow10(intDigits) - 2*math.Pow10(-fracDigits)
		value := rapid.Float64Range(0, maxVal).Draw(t, "value")

		zs := rapid.SampledFrom([]cam.ZeroSuppression{cam.Leading, cam.Trailing}).Draw(t, "zs")

		encoded := cam.EmitCoordinate(value, format, zs)
		decoded, err := cam.ParseCoordinate(encoded, format, zs)
		require.NoError(t, err)

		scale := math.Pow10(fracDigits)
		assert.InDelta(t, math.Round(value*scale)/scale, decoded, 1/scale+1e-9)
	})
}
