package enums

import "fmt"

// Unit is a measurement unit. Units are part of an ingredient's identity in
// the pantry and are compared byte-for-byte; no conversion is ever attempted.
type Unit string

const (
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitPiece      Unit = "pcs"
	UnitTablespoon Unit = "tbsp"
	UnitTeaspoon   Unit = "tsp"
	UnitEach       Unit = "u"
)

var validUnits = []Unit{
	UnitGram,
	UnitKilogram,
	UnitMilliliter,
	UnitLiter,
	UnitPiece,
	UnitTablespoon,
	UnitTeaspoon,
	UnitEach,
}

// String implements fmt.Stringer.
func (u Unit) String() string {
	return string(u)
}

// IsValid reports whether the value is a known Unit.
func (u Unit) IsValid() bool {
	for _, candidate := range validUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUnit converts raw input into a Unit.
func ParseUnit(value string) (Unit, error) {
	for _, candidate := range validUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid unit %q", value)
}

// Units returns the supported units in display order.
func Units() []Unit {
	out := make([]Unit, len(validUnits))
	copy(out, validUnits)
	return out
}
