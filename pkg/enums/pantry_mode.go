package enums

import (
	"fmt"
	"strings"
)

// PantryMode selects how an upsert treats the stored quantity.
type PantryMode string

const (
	// PantryModeAdd increments the stored quantity; negative deltas consume.
	PantryModeAdd PantryMode = "add"
	// PantryModeSet replaces the stored quantity.
	PantryModeSet PantryMode = "set"
)

var validPantryModes = []PantryMode{PantryModeAdd, PantryModeSet}

func (m PantryMode) String() string {
	return string(m)
}

func (m PantryMode) IsValid() bool {
	for _, candidate := range validPantryModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePantryMode converts raw input into a PantryMode, ignoring case.
// Empty input means add.
func ParsePantryMode(value string) (PantryMode, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return PantryModeAdd, nil
	}
	for _, candidate := range validPantryModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pantry mode %q", value)
}
