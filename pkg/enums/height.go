package enums

import (
	"fmt"
	"strings"
)

// HeightType identifies a row of the stand height multiplier table.
type HeightType string

const (
	HeightStandard HeightType = "standard"
	HeightMedia    HeightType = "media"
	HeightPlus     HeightType = "plus"
	HeightExtra    HeightType = "extra"
	HeightMaxima   HeightType = "maxima"
)

var validHeightTypes = []HeightType{
	HeightStandard,
	HeightMedia,
	HeightPlus,
	HeightExtra,
	HeightMaxima,
}

func (h HeightType) String() string {
	return string(h)
}

func (h HeightType) IsValid() bool {
	for _, candidate := range validHeightTypes {
		if candidate == h {
			return true
		}
	}
	return false
}

// HeightTypes returns the table ids from lowest to highest.
func HeightTypes() []HeightType {
	out := make([]HeightType, len(validHeightTypes))
	copy(out, validHeightTypes)
	return out
}

func ParseHeightType(value string) (HeightType, error) {
	h := HeightType(strings.ToLower(strings.TrimSpace(value)))
	if !h.IsValid() {
		return "", fmt.Errorf("invalid height type %q", value)
	}
	return h, nil
}
