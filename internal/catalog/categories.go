package catalog

import "github.com/mepex/cotizador-backend/pkg/enums"

type SubcategoryInfo struct {
	ID   enums.Subcategory `json:"id"`
	Name string            `json:"name"`
	Icon string            `json:"icon"`
}

// CategoryInfo is display metadata for a rubro.
type CategoryInfo struct {
	ID            enums.Category    `json:"id"`
	Name          string            `json:"name"`
	Icon          string            `json:"icon"`
	Order         int               `json:"order"`
	HeightAware   bool              `json:"heightAffected"`
	Subcategories []SubcategoryInfo `json:"subcategories,omitempty"`
}

var categoryMeta = map[enums.Category]CategoryInfo{
	enums.CategoryFlooring:       {Name: "Pisos", Icon: "🏠"},
	enums.CategoryInfrastructure: {Name: "Infraestructura", Icon: "🔧"},
	enums.CategoryLighting:       {Name: "Iluminación", Icon: "💡"},
	enums.CategoryEquipment: {Name: "Equipamiento", Icon: "🪑", Subcategories: []SubcategoryInfo{
		{ID: enums.SubcategoryFurniture, Name: "Mobiliario", Icon: "🛋️"},
		{ID: enums.SubcategoryElectronics, Name: "Electrónicos", Icon: "📺"},
	}},
	enums.CategoryMarketing: {Name: "Marketing y Servicios", Icon: "📢", Subcategories: []SubcategoryInfo{
		{ID: enums.SubcategoryGraphics, Name: "Gráfica y Cartelería", Icon: "🎨"},
		{ID: enums.SubcategoryDesign, Name: "Diseño y Branding", Icon: "✏️"},
		{ID: enums.SubcategoryServices, Name: "Servicios Adicionales", Icon: "👥"},
	}},
	enums.CategoryMoreServices: {Name: "Más Servicios", Icon: "🛎️"},
}

// Categories lists rubro metadata in display order.
func Categories() []CategoryInfo {
	out := make([]CategoryInfo, 0, len(categoryMeta))
	for _, c := range enums.Categories() {
		out = append(out, CategoryByID(c))
	}
	return out
}

// CategoryByID returns metadata for c; unknown ids get a bare entry.
func CategoryByID(c enums.Category) CategoryInfo {
	info, ok := categoryMeta[c]
	if !ok {
		return CategoryInfo{ID: c, Name: string(c)}
	}
	info.ID = c
	info.Order = c.Order()
	info.HeightAware = c.HeightAffected()
	return info
}
