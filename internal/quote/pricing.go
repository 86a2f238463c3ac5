package quote

import (
	"fmt"

	"github.com/mepex/cotizador-backend/internal/catalog"
	"github.com/mepex/cotizador-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// TaxRate is the VAT applied to the adjusted subtotal.
var TaxRate = decimal.RequireFromString("0.21")

var hundred = decimal.NewFromInt(100)

type Line struct {
	ItemID      string          `json:"itemId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Unit        string          `json:"unit"`
	Category    enums.Category  `json:"category"`
	Quantity    int             `json:"quantity"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
}

// Group is a category block in stand mode or a space block in multi-space
// mode. Summarized groups contribute to the subtotal but list no lines.
type Group struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Icon       string           `json:"icon,omitempty"`
	Summary    string           `json:"summary,omitempty"`
	Summarized bool             `json:"summarized,omitempty"`
	Surface    *decimal.Decimal `json:"surface,omitempty"`
	Active     bool             `json:"active,omitempty"`
	ItemCount  int              `json:"itemCount"`
	Lines      []Line           `json:"lines"`
	Subtotal   decimal.Decimal  `json:"subtotal"`
}

type DisplayTotals struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// Breakdown is the priced result of a state. Money values are unrounded;
// Display holds the integer amounts shown to the customer.
type Breakdown struct {
	Type        enums.QuotationType `json:"type"`
	MultiSpace  bool                `json:"multiSpace"`
	Groups      []Group             `json:"groups"`
	RawSubtotal decimal.Decimal     `json:"rawSubtotal"`
	Subtotal    decimal.Decimal     `json:"subtotal"`
	Tax         decimal.Decimal     `json:"tax"`
	Total       decimal.Decimal     `json:"total"`
	Display     DisplayTotals       `json:"display"`
	Empty       bool                `json:"empty"`
	ItemCount   int                 `json:"itemCount"`

	Surface            int             `json:"surface"`
	StandType          enums.StandType `json:"standType"`
	HeightLabel        string          `json:"heightLabel"`
	HeightMultiplier   decimal.Decimal `json:"heightMultiplier"`
	ModifierName       string          `json:"modifierName,omitempty"`
	ModifierPercentage decimal.Decimal `json:"modifierPercentage"`
	IncludeFee         bool            `json:"includeFee"`
	FeePercentage      decimal.Decimal `json:"feePercentage"`
}

// Engine prices states against a catalog.
type Engine struct {
	catalog Lookup
}

func NewEngine(lookup Lookup) *Engine {
	return &Engine{catalog: lookup}
}

func (e *Engine) Compute(s *State) Breakdown {
	return Price(s.Snapshot(), e.catalog)
}

// Price is the pure pricing function. Selections whose item is missing from
// the catalog contribute nothing.
func Price(snap Snapshot, lookup Lookup) Breakdown {
	stand := normalizeStand(snap.Stand)
	common := normalizeCommon(snap.Common)
	b := Breakdown{
		Type:               snap.Type,
		MultiSpace:         snap.Type.IsMultiSpace(),
		Surface:            stand.Metraje,
		StandType:          stand.StandType,
		HeightLabel:        stand.HeightLabel(),
		HeightMultiplier:   stand.HeightMultiplier(),
		ModifierName:       common.ModifierName,
		ModifierPercentage: common.ModifierPercentage,
		IncludeFee:         common.IncludeFee,
		FeePercentage:      common.FeePercentage,
		Groups:             []Group{},
	}
	if b.Type == "" {
		b.Type = enums.QuotationTypeStand
	}

	if b.MultiSpace {
		priceSpaces(&b, snap.Multi, common, lookup)
	} else {
		priceStand(&b, snap.Items, stand, common, lookup)
	}

	b.Tax = b.Subtotal.Mul(TaxRate)
	b.Total = b.Subtotal.Add(b.Tax)
	b.Display = DisplayTotals{
		Subtotal: b.Subtotal.Round(0).IntPart(),
		Tax:      b.Tax.Round(0).IntPart(),
		Total:    b.Total.Round(0).IntPart(),
	}
	b.Empty = b.ItemCount == 0
	return b
}

func modifierFactor(c Common) decimal.Decimal {
	return decimal.NewFromInt(1).Add(c.ModifierPercentage.Div(hundred))
}

func feeFactor(c Common) decimal.Decimal {
	if !c.IncludeFee {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(1).Add(c.FeePercentage)
}

// LoadedPrice applies modifier, height (for height-affected categories) and
// fee to an item's base price.
func LoadedPrice(item catalog.Item, stand StandParams, c Common) decimal.Decimal {
	loaded := item.Price.Mul(modifierFactor(c))
	if item.Category.HeightAffected() {
		loaded = loaded.Mul(stand.HeightMultiplier())
	}
	return loaded.Mul(feeFactor(c))
}

func priceStand(b *Breakdown, pool Pool, stand StandParams, c Common, lookup Lookup) {
	byCategory := make(map[enums.Category][]Line)
	for _, e := range pool.Entries() {
		if e.Quantity <= 0 || lookup == nil {
			continue
		}
		item, ok := lookup.GetByID(e.ItemID)
		if !ok {
			continue
		}
		loaded := LoadedPrice(item, stand, c)
		byCategory[item.Category] = append(byCategory[item.Category], Line{
			ItemID:      item.ID,
			Name:        item.Name,
			Description: item.Description,
			Unit:        item.Unit,
			Category:    item.Category,
			Quantity:    e.Quantity,
			BasePrice:   item.Price,
			UnitPrice:   loaded,
			Total:       loaded.Mul(decimal.NewFromInt(int64(e.Quantity))),
		})
	}

	subtotal := decimal.Zero
	for _, cat := range enums.Categories() {
		lines := byCategory[cat]
		if len(lines) == 0 {
			continue
		}
		info := catalog.CategoryByID(cat)
		g := Group{ID: string(cat), Name: info.Name, Icon: info.Icon, ItemCount: len(lines), Subtotal: decimal.Zero}
		for _, l := range lines {
			g.Subtotal = g.Subtotal.Add(l.Total)
		}
		if cat == enums.CategoryInfrastructure {
			g.Summarized = true
			g.Summary = fmt.Sprintf("Superficie: %dm² — Altura: %s", stand.Metraje, stand.HeightLabel())
			g.Lines = []Line{}
		} else {
			g.Lines = lines
		}
		subtotal = subtotal.Add(g.Subtotal)
		b.ItemCount += len(lines)
		b.Groups = append(b.Groups, g)
	}
	b.RawSubtotal = subtotal
	b.Subtotal = subtotal
}

func priceSpaces(b *Breakdown, multi MultiSpaceParams, c Common, lookup Lookup) {
	raw := decimal.Zero
	for _, sp := range multi.Spaces {
		g := Group{
			ID:       sp.ID,
			Name:     sp.Name,
			Surface:  sp.Surface,
			Active:   sp.ID == multi.ActiveSpaceID,
			Lines:    []Line{},
			Subtotal: decimal.Zero,
		}
		for _, e := range sp.Items.Entries() {
			if e.Quantity <= 0 || lookup == nil {
				continue
			}
			item, ok := lookup.GetByID(e.ItemID)
			if !ok {
				continue
			}
			total := item.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
			g.Lines = append(g.Lines, Line{
				ItemID:      item.ID,
				Name:        item.Name,
				Description: item.Description,
				Unit:        item.Unit,
				Category:    item.Category,
				Quantity:    e.Quantity,
				BasePrice:   item.Price,
				UnitPrice:   item.Price,
				Total:       total,
			})
			g.Subtotal = g.Subtotal.Add(total)
		}
		g.ItemCount = len(g.Lines)
		b.ItemCount += g.ItemCount
		raw = raw.Add(g.Subtotal)
		b.Groups = append(b.Groups, g)
	}
	b.RawSubtotal = raw
	b.Subtotal = raw.Mul(modifierFactor(c)).Mul(feeFactor(c))
}
