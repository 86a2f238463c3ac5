package catalog

import (
	"strings"
	"time"

	"github.com/mepex/cotizador-backend/pkg/enums"
	"github.com/mepex/cotizador-backend/pkg/notion"
	"github.com/shopspring/decimal"
)

// Column names of the items database.
const (
	colItemName        = "Item"
	colItemCode        = "Código"
	colItemDescription = "Descripción"
	colItemRubro       = "RUBRO"
	colItemCategory    = "Categoría"
	colItemUnit        = "Unidad"
	colItemPrice       = "Importe"
	colItemFavorite    = "Favorito"
)

const maxNameIDLength = 20

// WorkspaceItem is an items-database row as read from the workspace. It is
// also the shape cached between syncs.
type WorkspaceItem struct {
	NotionID    string     `json:"notionId"`
	URL         string     `json:"url,omitempty"`
	Name        string     `json:"name"`
	Code        string     `json:"code,omitempty"`
	Description string     `json:"description,omitempty"`
	Rubro       string     `json:"rubro,omitempty"`
	Categories  []string   `json:"categories,omitempty"`
	Unit        string     `json:"unit,omitempty"`
	Price       float64    `json:"price"`
	Favorite    bool       `json:"favorite"`
	EditedAt    *time.Time `json:"editedAt,omitempty"`
}

var rubroCategories = map[string]enums.Category{
	"Pisos":           enums.CategoryFlooring,
	"Infraestructura": enums.CategoryInfrastructure,
	"Iluminación":     enums.CategoryLighting,
	"Equipamiento":    enums.CategoryEquipment,
	"Marketing":       enums.CategoryMarketing,
	"Más servicios":   enums.CategoryMoreServices,
}

var workspaceSubcategories = map[string]enums.Subcategory{
	"Alfombramiento":       enums.SubcategoryFurniture,
	"Sistema modular":      enums.SubcategoryFurniture,
	"Tableros":             enums.SubcategoryFurniture,
	"Audiovisual":          enums.SubcategoryElectronics,
	"Gráfica y cartelería": enums.SubcategoryGraphics,
	"Limpieza":             enums.SubcategoryServices,
}

var workspaceUnits = map[string]string{
	"m2":       "m²",
	"m²":       "m²",
	"ml":       "ml",
	"Unidad":   "unidad",
	"unidad":   "unidad",
	"día":      "día",
	"set":      "set",
	"proyecto": "proyecto",
}

// FromPage reads an items-database page.
func FromPage(page notion.Page) WorkspaceItem {
	price, _ := page.Number(colItemPrice)
	item := WorkspaceItem{
		NotionID:    page.ID,
		URL:         page.URL,
		Name:        strings.TrimSpace(page.Title(colItemName)),
		Code:        strings.TrimSpace(page.RichText(colItemCode)),
		Description: strings.TrimSpace(page.RichText(colItemDescription)),
		Rubro:       strings.TrimSpace(page.Select(colItemRubro)),
		Categories:  page.MultiSelect(colItemCategory),
		Unit:        strings.TrimSpace(page.Select(colItemUnit)),
		Price:       price,
		Favorite:    page.Checkbox(colItemFavorite),
	}
	if ts, err := time.Parse(time.RFC3339, page.LastEditedTime); err == nil {
		item.EditedAt = &ts
	}
	return item
}

// Convert maps a workspace row to a catalog item. Unknown rubros land in
// equipment; only equipment and marketing carry a subcategory.
func Convert(w WorkspaceItem) Item {
	category := CategoryForRubro(w.Rubro)
	name := strings.TrimSpace(w.Name)
	if name == "" {
		name = "Sin nombre"
	}
	price := decimal.NewFromFloat(w.Price)
	if price.IsNegative() {
		price = decimal.Zero
	}
	return Item{
		ID:             WorkspaceItemID(w.Code, name),
		Name:           name,
		Description:    w.Description,
		Code:           w.Code,
		Price:          price,
		Unit:           UnitFor(w.Unit),
		Category:       category,
		Subcategory:    subcategoryFor(category, w.Categories),
		Type:           enums.ItemTypeCounter,
		Favorite:       w.Favorite,
		NotionID:       w.NotionID,
		NotionURL:      w.URL,
		NotionCategory: strings.Join(w.Categories, ", "),
		NotionRubro:    w.Rubro,
		Source:         SourceNotion,
		UpdatedAt:      w.EditedAt,
	}
}

// CategoryForRubro resolves a workspace rubro label; blank and unknown
// labels map to equipment.
func CategoryForRubro(rubro string) enums.Category {
	if c, ok := rubroCategories[strings.TrimSpace(rubro)]; ok {
		return c
	}
	return enums.CategoryEquipment
}

func subcategoryFor(category enums.Category, labels []string) enums.Subcategory {
	var fallback enums.Subcategory
	switch category {
	case enums.CategoryEquipment:
		fallback = enums.SubcategoryFurniture
	case enums.CategoryMarketing:
		fallback = enums.SubcategoryGraphics
	default:
		return ""
	}
	for _, label := range labels {
		if sub, ok := workspaceSubcategories[strings.TrimSpace(label)]; ok && sub.Parent() == category {
			return sub
		}
	}
	return fallback
}

// UnitFor normalizes a workspace unit label.
func UnitFor(unit string) string {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return "unidad"
	}
	if mapped, ok := workspaceUnits[unit]; ok {
		return mapped
	}
	return unit
}

// WorkspaceItemID derives a stable catalog id from the item code, or from the
// name when the code is blank.
func WorkspaceItemID(code, name string) string {
	if code = strings.TrimSpace(code); code != "" {
		return "notion_" + sanitizeID(code)
	}
	id := sanitizeID(name)
	if len(id) > maxNameIDLength {
		id = id[:maxNameIDLength]
	}
	return "notion_" + id
}

func sanitizeID(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}
