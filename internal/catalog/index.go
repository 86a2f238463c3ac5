package catalog

import (
	"math"
	"sync"

	"github.com/mepex/cotizador-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Index is the in-memory catalog. One instance is shared by every quotation
// session; reads vastly outnumber writes (sync and admin edits).
type Index struct {
	mu    sync.RWMutex
	items []Item
	byID  map[string]int
}

// MergeResult summarizes a catalog merge.
type MergeResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// NewIndex builds an index; later duplicates of an id replace earlier ones in place.
func NewIndex(items ...Item) *Index {
	x := &Index{byID: make(map[string]int, len(items))}
	for _, item := range items {
		x.upsertLocked(item.normalize())
	}
	return x
}

func (x *Index) GetByID(id string) (Item, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	pos, ok := x.byID[id]
	if !ok {
		return Item{}, false
	}
	return x.items[pos], true
}

// GetByCategory returns the category's items in insertion order.
func (x *Index) GetByCategory(category enums.Category) []Item {
	return x.filter(func(item Item) bool { return item.Category == category })
}

// GetBySubcategory returns the subcategory's items in insertion order.
func (x *Index) GetBySubcategory(category enums.Category, subcategory enums.Subcategory) []Item {
	return x.filter(func(item Item) bool {
		return item.Category == category && item.Subcategory == subcategory
	})
}

// FindByNotionID resolves a workspace page id to its catalog item.
func (x *Index) FindByNotionID(notionID string) (Item, bool) {
	if notionID == "" {
		return Item{}, false
	}
	matches := x.filter(func(item Item) bool { return item.NotionID == notionID })
	if len(matches) == 0 {
		return Item{}, false
	}
	return matches[0], true
}

func (x *Index) All() []Item {
	return x.filter(func(Item) bool { return true })
}

func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.items)
}

// Upsert replaces the item with the same id in place or appends it.
func (x *Index) Upsert(item Item) (created bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.upsertLocked(item.normalize())
}

// Merge applies workspace items on top of the index. Existing entries take
// the incoming data but keep their local pick type and auto-calculation
// setup, which the workspace does not carry. Invalid items are skipped.
func (x *Index) Merge(incoming []Item) MergeResult {
	var res MergeResult
	if len(incoming) == 0 {
		return res
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	for _, item := range incoming {
		item = item.normalize()
		if err := item.Validate(); err != nil {
			res.Skipped++
			continue
		}
		if pos, ok := x.byID[item.ID]; ok {
			local := x.items[pos]
			if local.Type != "" {
				item.Type = local.Type
			}
			item.AutoCalculate = local.AutoCalculate
			item.CalcFormula = local.CalcFormula
			item.CalcFactor = local.CalcFactor
			x.items[pos] = item
			res.Updated++
			continue
		}
		x.upsertLocked(item)
		res.Added++
	}
	return res
}

// CalculateAutoQuantity derives the quantity of a formula-driven item.
func (x *Index) CalculateAutoQuantity(item Item, surface int, standType enums.StandType, heightType enums.HeightType) int {
	return AutoQuantity(item, surface, standType, heightType)
}

// AutoQuantity returns 0 for items that are not auto-calculated. Perimeter
// items treat the stand as a square of the given surface and only count its
// walled sides; spots and direct items scale with the surface. Results are
// rounded up. Height does not take part in any current formula.
func AutoQuantity(item Item, surface int, standType enums.StandType, _ enums.HeightType) int {
	if !item.AutoCalculate || surface <= 0 {
		return 0
	}
	factor := item.CalcFactor
	if factor.IsZero() {
		factor = decimal.NewFromInt(1)
	}

	var qty decimal.Decimal
	switch item.CalcFormula {
	case enums.CalcFormulaPerimeter:
		perimeter := decimal.NewFromFloat(4 * math.Sqrt(float64(surface)))
		qty = perimeter.
			Mul(decimal.NewFromInt(int64(standType.ClosedSides()))).
			Div(decimal.NewFromInt(4)).
			Mul(factor)
	default:
		qty = decimal.NewFromInt(int64(surface)).Mul(factor)
	}
	if !qty.IsPositive() {
		return 0
	}
	return int(qty.Ceil().IntPart())
}

func (x *Index) filter(keep func(Item) bool) []Item {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]Item, 0)
	for _, item := range x.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func (x *Index) upsertLocked(item Item) bool {
	if x.byID == nil {
		x.byID = make(map[string]int)
	}
	if pos, ok := x.byID[item.ID]; ok {
		x.items[pos] = item
		return false
	}
	x.byID[item.ID] = len(x.items)
	x.items = append(x.items, item)
	return true
}
