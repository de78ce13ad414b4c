package unit_test

import (
	"testing"

	"github.com/gerbonara-go/gerbonara/unit"
	"github.com/stretchr/testify/assert"
)

func TestConvertInchToMM(t *testing.T) {
	v := unit.MM.Convert(1.0, unit.Inch)
	assert.InDelta(t, 25.4, v, 1e-9)
}

func TestConvertMMToInch(t *testing.T) {
	v := unit.Inch.Convert(25.4, unit.MM)
	assert.InDelta(t, 1.0, v, 1e-9)
}

func TestConvertSameUnitIsNoOp(t *testing.T) {
	v := unit.MM.Convert(3.0, unit.MM)
	assert.InDelta(t, 3.0, v, 1e-9)
}

func TestConvertUnknownUnitIsNoOp(t *testing.T) {
	var unknown unit.Unit
	v := unit.MM.Convert(5.0, unknown)
	assert.InDelta(t, 5.0, v, 1e-9)
	assert.False(t, unknown.Known())
	assert.Equal(t, "unknown", unknown.String())
}

func TestFromName(t *testing.T) {
	cases := map[string]unit.Unit{
		"mm":          unit.MM,
		"MM":          unit.MM,
		"millimeter":  unit.MM,
		"millimeters": unit.MM,
		"in":          unit.Inch,
		"inch":        unit.Inch,
		"INCH":        unit.Inch,
	}
	for name, want := range cases {
		got, ok := unit.FromName(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := unit.FromName("furlong")
	assert.False(t, ok)
}
