package aperture_test

import (
	"testing"

	"github.com/gerbonara-go/gerbonara/aperture"
	"github.com/gerbonara-go/gerbonara/unit"
	"github.com/stretchr/testify/assert"
)

func TestEquivalentWidthCircle(t *testing.T) {
	c := aperture.NewCircle(unit.MM, 0.5, 0)
	assert.InDelta(t, 0.5, aperture.EquivalentWidth(c, unit.MM), 1e-9)
}

func TestEquivalentWidthRectangleIsDiagonal(t *testing.T) {
	r := aperture.NewRectangle(unit.MM, 3, 4, 0)
	assert.InDelta(t, 5.0, aperture.EquivalentWidth(r, unit.MM), 1e-9)
}

func TestEquivalentWidthConvertsUnit(t *testing.T) {
	c := aperture.NewCircle(unit.Inch, 1, 0)
	assert.InDelta(t, 25.4, aperture.EquivalentWidth(c, unit.MM), 1e-6)
}

func TestMacroCanonicalTextIgnoresName(t *testing.T) {
	body := []aperture.Primitive{{Code: aperture.PrimitiveCircle, Modifiers: []string{"1", "0.5", "0", "0", "0"}}}
	a := aperture.Macro{Name: "BOX", Primitives: body}
	b := aperture.Macro{Name: "SQUARE", Primitives: body}
	assert.Equal(t, a.CanonicalText(), b.CanonicalText())
}

func TestMacroBoundingExtentCircle(t *testing.T) {
	m := aperture.Macro{Primitives: []aperture.Primitive{
		{Code: aperture.PrimitiveCircle, Modifiers: []string{"1", "2.0", "1.0", "0.5", "0"}},
	}}
	w, h := m.BoundingExtent(nil)
	assert.InDelta(t, 4.0, w, 1e-9)
	assert.InDelta(t, 3.0, h, 1e-9)
}

func TestMacroBoundingExtentResolvesParameters(t *testing.T) {
	m := aperture.Macro{Primitives: []aperture.Primitive{
		{Code: aperture.PrimitiveCircle, Modifiers: []string{"1", "$1", "0", "0", "0"}},
	}}
	w, h := m.BoundingExtent([]float64{2.0})
	assert.InDelta(t, 2.0, w, 1e-9)
	assert.InDelta(t, 2.0, h, 1e-9)
}

func TestEquivalentWidthWithMacroAppliesScale(t *testing.T) {
	m := aperture.Macro{Primitives: []aperture.Primitive{
		{Code: aperture.PrimitiveCircle, Modifiers: []string{"1", "2.0", "1.0", "0.5", "0"}},
	}}
	inst := aperture.NewMacroInstance(unit.MM, "BOX", nil)
	inst.Scale = 2.0
	ew := aperture.EquivalentWidthWithMacro(inst, m)
	assert.InDelta(t, 10.0, ew, 1e-9) // hypot(4,3)*2 = 10
}

func TestTableDedupeByName(t *testing.T) {
	table := aperture.NewTable()
	table.Define("A", aperture.Macro{Primitives: []aperture.Primitive{{Code: aperture.PrimitiveCircle}}})
	table.Define("B", aperture.Macro{Primitives: []aperture.Primitive{{Code: aperture.PrimitiveCircle}}})
	assert.Equal(t, []string{"A", "B"}, table.Names())

	m, ok := table.Lookup("A")
	assert.True(t, ok)
	assert.Equal(t, "A", m.Name)
}
