package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidUnit(t *testing.T) {
	for _, u := range []Unit{UnitPiece, UnitKg, UnitGm, UnitMg, UnitLiter, UnitMl, UnitDozen} {
		assert.True(t, IsValidUnit(u), "unit %s should be valid", u)
	}
	assert.False(t, IsValidUnit("pound"))
	assert.False(t, IsValidUnit(""))
}

func TestAreUnitsCompatible(t *testing.T) {
	tests := []struct {
		name string
		a, b Unit
		want bool
	}{
		{"kg with gm", UnitKg, UnitGm, true},
		{"gm with mg", UnitGm, UnitMg, true},
		{"liter with ml", UnitLiter, UnitMl, true},
		{"piece with dozen", UnitPiece, UnitDozen, true},
		{"kg with liter", UnitKg, UnitLiter, false},
		{"piece with kg", UnitPiece, UnitKg, false},
		{"ml with dozen", UnitMl, UnitDozen, false},
		{"unknown left", "pound", UnitKg, false},
		{"unknown right", UnitKg, "pound", false},
		{"both unknown", "pound", "ounce", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AreUnitsCompatible(tt.a, tt.b))
			// Compatibility is symmetric.
			assert.Equal(t, tt.want, AreUnitsCompatible(tt.b, tt.a))
		})
	}
}

func TestAreUnitsCompatibleReflexive(t *testing.T) {
	for u := range unitGroups {
		assert.True(t, AreUnitsCompatible(u, u), "unit %s should be compatible with itself", u)
	}
}

func TestDisplayStock(t *testing.T) {
	merged := &ProductGroup{BaseStock: 40, StockMergeType: StockMergeMerged}
	independent := &ProductGroup{BaseStock: 0, StockMergeType: StockMergeIndependent}
	p := &Product{Stock: 7}

	assert.Equal(t, int64(40), p.DisplayStock(merged))
	assert.Equal(t, int64(7), p.DisplayStock(independent))
	assert.Equal(t, int64(7), p.DisplayStock(nil))
}

func TestIsStandalone(t *testing.T) {
	groupID := "g1"
	empty := ""

	assert.True(t, (&Product{}).IsStandalone())
	assert.True(t, (&Product{GroupID: &empty}).IsStandalone())
	assert.False(t, (&Product{GroupID: &groupID}).IsStandalone())
}
