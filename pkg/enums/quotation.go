package enums

import (
	"fmt"
	"strings"
)

// QuotationType selects the pricing mode of a quotation.
type QuotationType string

const (
	QuotationTypeStand    QuotationType = "stand"
	QuotationTypeExpo     QuotationType = "expo"
	QuotationTypeAlquiler QuotationType = "alquiler"
)

var quotationTypeLabels = map[QuotationType]string{
	QuotationTypeStand:    "Stand",
	QuotationTypeExpo:     "Expo",
	QuotationTypeAlquiler: "Alquiler",
}

func (t QuotationType) String() string {
	return string(t)
}

func (t QuotationType) IsValid() bool {
	_, ok := quotationTypeLabels[t]
	return ok
}

// IsMultiSpace reports whether the type prices per named space.
func (t QuotationType) IsMultiSpace() bool {
	return t == QuotationTypeExpo || t == QuotationTypeAlquiler
}

// Label is the capitalized form used by the workspace selects.
func (t QuotationType) Label() string {
	if label, ok := quotationTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// ParseQuotationType is case-insensitive so workspace labels round-trip.
func ParseQuotationType(value string) (QuotationType, error) {
	t := QuotationType(strings.ToLower(strings.TrimSpace(value)))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid quotation type %q", value)
	}
	return t, nil
}
