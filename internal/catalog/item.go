package catalog

import (
	"fmt"
	"time"

	"github.com/mepex/cotizador-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

const (
	SourceLocal  = "local"
	SourceNotion = "notion"
)

// Item is one priced catalog entry. Selections reference it by ID only.
type Item struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Code          string            `json:"code,omitempty"`
	Price         decimal.Decimal   `json:"price"`
	Unit          string            `json:"unit"`
	Category      enums.Category    `json:"category"`
	Subcategory   enums.Subcategory `json:"subcategory,omitempty"`
	Type          enums.ItemType    `json:"type"`
	AutoCalculate bool              `json:"autoCalculate"`
	CalcFormula   enums.CalcFormula `json:"calcFormula,omitempty"`
	CalcFactor    decimal.Decimal   `json:"calcFactor"`
	Favorite      bool              `json:"favorite"`

	NotionID       string     `json:"notionId,omitempty"`
	NotionURL      string     `json:"notionUrl,omitempty"`
	NotionCategory string     `json:"notionCategory,omitempty"`
	NotionRubro    string     `json:"notionRubro,omitempty"`
	Source         string     `json:"source,omitempty"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// Validate checks the invariants an item must hold before it enters the index.
func (i Item) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("item id is required")
	}
	if i.Price.IsNegative() {
		return fmt.Errorf("item %s: price must not be negative", i.ID)
	}
	if !i.Category.IsValid() {
		return fmt.Errorf("item %s: invalid category %q", i.ID, i.Category)
	}
	if i.Subcategory != "" && i.Subcategory.Parent() != i.Category {
		return fmt.Errorf("item %s: subcategory %q does not belong to %q", i.ID, i.Subcategory, i.Category)
	}
	if !i.Type.IsValid() {
		return fmt.Errorf("item %s: invalid type %q", i.ID, i.Type)
	}
	if i.AutoCalculate && !i.CalcFormula.IsValid() {
		return fmt.Errorf("item %s: auto-calculated items need a formula", i.ID)
	}
	return nil
}

// normalize fills defaults so partially specified items (seed files, admin
// input) behave predictably.
func (i Item) normalize() Item {
	if i.Type == "" {
		i.Type = enums.ItemTypeCounter
	}
	if i.Unit == "" {
		i.Unit = "unidad"
	}
	if i.Source == "" {
		i.Source = SourceLocal
	}
	if i.AutoCalculate {
		if i.CalcFormula == "" {
			i.CalcFormula = enums.CalcFormulaDirect
		}
		if i.CalcFactor.IsZero() {
			i.CalcFactor = decimal.NewFromInt(1)
		}
	} else {
		i.CalcFormula = ""
	}
	return i
}
