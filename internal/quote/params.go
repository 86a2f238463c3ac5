package quote

import (
	"strings"

	"github.com/mepex/cotizador-backend/internal/catalog"
	"github.com/mepex/cotizador-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

const (
	MinMetraje     = 9
	MaxMetraje     = 500
	DefaultMetraje = 25
)

var (
	minModifier = decimal.NewFromInt(-50)
	maxModifier = decimal.NewFromInt(100)
	maxFee      = decimal.NewFromInt(1)
	defaultFee  = decimal.RequireFromString("0.10")
)

// StandParams are the parameters of a single undivided stand. Sides and the
// height multiplier are derived, never stored.
type StandParams struct {
	Metraje     int              `json:"metraje"`
	Frontal     *decimal.Decimal `json:"frontal,omitempty"`
	Profundidad *decimal.Decimal `json:"profundidad,omitempty"`
	StandType   enums.StandType  `json:"standType"`
	HeightType  enums.HeightType `json:"heightType"`
}

func (p StandParams) StandSides() int {
	return p.StandType.Sides()
}

func (p StandParams) Height() catalog.Height {
	return catalog.LookupHeight(p.HeightType)
}

func (p StandParams) HeightMultiplier() decimal.Decimal {
	return p.Height().Multiplier
}

// HeightLabel is the display label, e.g. "Media (3,00m)".
func (p StandParams) HeightLabel() string {
	h := p.Height()
	return h.Name + " (" + h.Label + ")"
}

type Space struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Surface *decimal.Decimal `json:"surface,omitempty"`
	Items   Pool             `json:"items"`
}

func (s Space) clone() Space {
	out := s
	out.Items = s.Items.Clone()
	if s.Surface != nil {
		v := *s.Surface
		out.Surface = &v
	}
	return out
}

// MultiSpaceParams hold the independent pools of an expo or rental quotation.
// Counter only grows so space ids are never reused.
type MultiSpaceParams struct {
	Spaces        []Space `json:"spaces"`
	ActiveSpaceID string  `json:"activeSpaceId,omitempty"`
	Counter       int     `json:"spaceCounter"`
}

// Common fields apply to every quotation type.
type Common struct {
	Client             *ClientRef      `json:"client,omitempty"`
	Project            *ProjectRef     `json:"project,omitempty"`
	Event              *EventRef       `json:"event,omitempty"`
	ModifierName       string          `json:"modifierName"`
	ModifierPercentage decimal.Decimal `json:"modifierPercentage"`
	IncludeFee         bool            `json:"includeFee"`
	FeePercentage      decimal.Decimal `json:"feePercentage"`
}

// ParamsPatch is a partial update of the general parameters. Nil fields are
// left untouched; the Clear flags drop an identity reference.
type ParamsPatch struct {
	Client       *ClientRef  `json:"client"`
	ClearClient  bool        `json:"clearClient"`
	Project      *ProjectRef `json:"project"`
	ClearProject bool        `json:"clearProject"`
	Event        *EventRef   `json:"event"`
	ClearEvent   bool        `json:"clearEvent"`

	Metraje     *int             `json:"metraje"`
	Frontal     *decimal.Decimal `json:"frontal"`
	Profundidad *decimal.Decimal `json:"profundidad"`
	StandType   *string          `json:"standType"`
	HeightType  *string          `json:"heightType"`

	ModifierName       *string          `json:"modifierName"`
	ModifierPercentage *decimal.Decimal `json:"modifierPercentage"`
	IncludeFee         *bool            `json:"includeFee"`
	FeePercentage      *decimal.Decimal `json:"feePercentage"`
}

func defaultStand() StandParams {
	return StandParams{
		Metraje:    DefaultMetraje,
		StandType:  enums.StandTypeCentro,
		HeightType: enums.HeightStandard,
	}
}

func defaultCommon() Common {
	return Common{
		ModifierPercentage: decimal.Zero,
		FeePercentage:      defaultFee,
	}
}

// ClampMetraje bounds the stand surface to the sellable range.
func ClampMetraje(m int) int {
	switch {
	case m < MinMetraje:
		return MinMetraje
	case m > MaxMetraje:
		return MaxMetraje
	}
	return m
}

func ClampModifier(p decimal.Decimal) decimal.Decimal {
	return clamp(p, minModifier, maxModifier)
}

func ClampFee(p decimal.Decimal) decimal.Decimal {
	return clamp(p, decimal.Zero, maxFee)
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

// positiveOrNil keeps informative dimensions only when they are set.
func positiveOrNil(v *decimal.Decimal) *decimal.Decimal {
	if v == nil || !v.IsPositive() {
		return nil
	}
	out := *v
	return &out
}

// heightOrDefault resolves a height id, falling back to standard.
func heightOrDefault(raw string) enums.HeightType {
	h, err := enums.ParseHeightType(raw)
	if err != nil {
		return enums.HeightStandard
	}
	return h
}

func normalizeStand(p StandParams) StandParams {
	if p.Metraje == 0 {
		p.Metraje = DefaultMetraje
	}
	p.Metraje = ClampMetraje(p.Metraje)
	p.Frontal = positiveOrNil(p.Frontal)
	p.Profundidad = positiveOrNil(p.Profundidad)
	p.StandType = enums.StandTypeOrDefault(string(p.StandType))
	p.HeightType = heightOrDefault(string(p.HeightType))
	return p
}

func normalizeCommon(c Common) Common {
	c.ModifierName = strings.TrimSpace(c.ModifierName)
	c.ModifierPercentage = ClampModifier(c.ModifierPercentage)
	c.FeePercentage = ClampFee(c.FeePercentage)
	return c
}
