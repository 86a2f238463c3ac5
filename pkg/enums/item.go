package enums

import "fmt"

// ItemType controls how an item is picked: a quantity counter or a single checkbox.
type ItemType string

const (
	ItemTypeCounter  ItemType = "counter"
	ItemTypeCheckbox ItemType = "checkbox"
)

func (t ItemType) String() string {
	return string(t)
}

func (t ItemType) IsValid() bool {
	return t == ItemTypeCounter || t == ItemTypeCheckbox
}

// ParseItemType defaults empty input to counter.
func ParseItemType(value string) (ItemType, error) {
	if value == "" {
		return ItemTypeCounter, nil
	}
	t := ItemType(value)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid item type %q", value)
	}
	return t, nil
}

// CalcFormula selects the auto-quantity rule of an auto-calculated item.
type CalcFormula string

const (
	CalcFormulaPerimeter CalcFormula = "perimeter"
	CalcFormulaSpots     CalcFormula = "spots"
	CalcFormulaDirect    CalcFormula = "direct"
)

func (f CalcFormula) String() string {
	return string(f)
}

func (f CalcFormula) IsValid() bool {
	switch f {
	case CalcFormulaPerimeter, CalcFormulaSpots, CalcFormulaDirect:
		return true
	}
	return false
}

// ParseCalcFormula defaults empty input to direct.
func ParseCalcFormula(value string) (CalcFormula, error) {
	if value == "" {
		return CalcFormulaDirect, nil
	}
	f := CalcFormula(value)
	if !f.IsValid() {
		return "", fmt.Errorf("invalid calc formula %q", value)
	}
	return f, nil
}
