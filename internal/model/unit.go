package model

// Unit is the closed set of measurement units a product may be sold in.
type Unit string

const (
	UnitPiece Unit = "piece"
	UnitKg    Unit = "kg"
	UnitGm    Unit = "gm"
	UnitMg    Unit = "mg"
	UnitLiter Unit = "liter"
	UnitMl    Unit = "ml"
	UnitDozen Unit = "dozen"
)

// unitGroups maps every unit to its compatibility group. Units are
// interchangeable only within one group (a 500gm variant can subdivide a kg
// group, a ml variant cannot).
var unitGroups = map[Unit]string{
	UnitKg:    "mass",
	UnitGm:    "mass",
	UnitMg:    "mass",
	UnitLiter: "volume",
	UnitMl:    "volume",
	UnitDozen: "count",
	UnitPiece: "count",
}

// IsValidUnit reports whether u belongs to the closed unit set.
func IsValidUnit(u Unit) bool {
	_, ok := unitGroups[u]
	return ok
}

// AreUnitsCompatible reports whether two units fall in the same
// compatibility group. Reflexive and symmetric for every valid unit;
// always false when either unit is unknown.
func AreUnitsCompatible(a, b Unit) bool {
	ga, ok := unitGroups[a]
	if !ok {
		return false
	}
	gb, ok := unitGroups[b]
	if !ok {
		return false
	}
	return ga == gb
}
