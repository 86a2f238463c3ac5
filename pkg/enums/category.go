package enums

import "fmt"

// Category is a catalog rubro. Declaration order is display order.
type Category string

const (
	CategoryFlooring       Category = "flooring"
	CategoryInfrastructure Category = "infrastructure"
	CategoryLighting       Category = "lighting"
	CategoryEquipment      Category = "equipment"
	CategoryMarketing      Category = "marketing"
	CategoryMoreServices   Category = "moreservices"
)

var validCategories = []Category{
	CategoryFlooring,
	CategoryInfrastructure,
	CategoryLighting,
	CategoryEquipment,
	CategoryMarketing,
	CategoryMoreServices,
}

// Categories returns every category in display order.
func Categories() []Category {
	out := make([]Category, len(validCategories))
	copy(out, validCategories)
	return out
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Category.
func (c Category) IsValid() bool {
	return c.Order() > 0
}

// Order is the 1-based display position, 0 for unknown values.
func (c Category) Order() int {
	for i, candidate := range validCategories {
		if candidate == c {
			return i + 1
		}
	}
	return 0
}

// HeightAffected reports whether the stand height multiplier applies.
func (c Category) HeightAffected() bool {
	return c == CategoryInfrastructure || c == CategoryLighting
}

// ParseCategory converts raw input into a Category.
func ParseCategory(value string) (Category, error) {
	for _, candidate := range validCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid category %q", value)
}

// Subcategory groups equipment and marketing items.
type Subcategory string

const (
	SubcategoryFurniture   Subcategory = "furniture"
	SubcategoryElectronics Subcategory = "electronics"
	SubcategoryGraphics    Subcategory = "graphics"
	SubcategoryDesign      Subcategory = "design"
	SubcategoryServices    Subcategory = "services"
)

var subcategoryParents = map[Subcategory]Category{
	SubcategoryFurniture:   CategoryEquipment,
	SubcategoryElectronics: CategoryEquipment,
	SubcategoryGraphics:    CategoryMarketing,
	SubcategoryDesign:      CategoryMarketing,
	SubcategoryServices:    CategoryMarketing,
}

func (s Subcategory) String() string {
	return string(s)
}

func (s Subcategory) IsValid() bool {
	_, ok := subcategoryParents[s]
	return ok
}

// Parent returns the category the subcategory belongs to.
func (s Subcategory) Parent() Category {
	return subcategoryParents[s]
}

// ParseSubcategory accepts the empty string as "no subcategory".
func ParseSubcategory(value string) (Subcategory, error) {
	if value == "" {
		return "", nil
	}
	s := Subcategory(value)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid subcategory %q", value)
	}
	return s, nil
}
