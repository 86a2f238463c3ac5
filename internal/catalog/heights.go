package catalog

import (
	"github.com/mepex/cotizador-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Height is one tier of the stand height table.
type Height struct {
	ID         enums.HeightType `json:"id"`
	Name       string           `json:"name"`
	Label      string           `json:"height"`
	Meters     decimal.Decimal  `json:"meters"`
	Multiplier decimal.Decimal  `json:"multiplier"`
}

var heightTable = []Height{
	{ID: enums.HeightStandard, Name: "Estándar", Label: "2,50m", Meters: decimal.RequireFromString("2.5"), Multiplier: decimal.RequireFromString("1")},
	{ID: enums.HeightMedia, Name: "Media", Label: "3,00m", Meters: decimal.RequireFromString("3"), Multiplier: decimal.RequireFromString("1.15")},
	{ID: enums.HeightPlus, Name: "Plus", Label: "3,50m", Meters: decimal.RequireFromString("3.5"), Multiplier: decimal.RequireFromString("1.25")},
	{ID: enums.HeightExtra, Name: "Extra", Label: "4,00m", Meters: decimal.RequireFromString("4"), Multiplier: decimal.RequireFromString("1.4")},
	{ID: enums.HeightMaxima, Name: "Máxima", Label: "5,00m", Meters: decimal.RequireFromString("5"), Multiplier: decimal.RequireFromString("1.7")},
}

// Heights returns the table from lowest to highest tier.
func Heights() []Height {
	out := make([]Height, len(heightTable))
	copy(out, heightTable)
	return out
}

// LookupHeight returns the tier for id, falling back to standard.
func LookupHeight(id enums.HeightType) Height {
	for _, h := range heightTable {
		if h.ID == id {
			return h
		}
	}
	return heightTable[0]
}

// MatchHeightMultiplier finds the tier whose multiplier equals m exactly.
func MatchHeightMultiplier(m decimal.Decimal) (Height, bool) {
	for _, h := range heightTable {
		if h.Multiplier.Equal(m) {
			return h, true
		}
	}
	return heightTable[0], false
}
