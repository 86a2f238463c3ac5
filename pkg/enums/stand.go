package enums

import (
	"fmt"
	"strings"
)

// StandType is the stand's position in the hall, which fixes how many
// sides face the aisle.
type StandType string

const (
	StandTypeCentro    StandType = "centro"
	StandTypeEsquina   StandType = "esquina"
	StandTypePeninsula StandType = "peninsula"
	StandTypeIsla      StandType = "isla"
)

var standSides = map[StandType]int{
	StandTypeCentro:    1,
	StandTypeEsquina:   2,
	StandTypePeninsula: 3,
	StandTypeIsla:      4,
}

var standLabels = map[StandType]string{
	StandTypeCentro:    "Centro",
	StandTypeEsquina:   "Esquina",
	StandTypePeninsula: "Peninsula",
	StandTypeIsla:      "Isla",
}

func (s StandType) String() string {
	return string(s)
}

func (s StandType) IsValid() bool {
	_, ok := standSides[s]
	return ok
}

// Sides is the number of open sides (1..4).
func (s StandType) Sides() int {
	return standSides[s]
}

// ClosedSides is the number of walled sides out of four.
func (s StandType) ClosedSides() int {
	if !s.IsValid() {
		return 0
	}
	return 4 - s.Sides()
}

// Label is the capitalized form used by the workspace selects.
func (s StandType) Label() string {
	if label, ok := standLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseStandType is case-insensitive.
func ParseStandType(value string) (StandType, error) {
	s := StandType(strings.ToLower(strings.TrimSpace(value)))
	if !s.IsValid() {
		return "", fmt.Errorf("invalid stand type %q", value)
	}
	return s, nil
}

// StandTypeOrDefault maps unknown values to centro.
func StandTypeOrDefault(value string) StandType {
	if s, err := ParseStandType(value); err == nil {
		return s
	}
	return StandTypeCentro
}
