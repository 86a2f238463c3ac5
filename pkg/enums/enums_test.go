package enums

import "testing"

func TestCategoryOrderAndHeight(t *testing.T) {
	tests := []struct {
		category Category
		order    int
		height   bool
	}{
		{CategoryFlooring, 1, false},
		{CategoryInfrastructure, 2, true},
		{CategoryLighting, 3, true},
		{CategoryEquipment, 4, false},
		{CategoryMarketing, 5, false},
		{CategoryMoreServices, 6, false},
		{Category("other"), 0, false},
	}
	for _, tt := range tests {
		if got := tt.category.Order(); got != tt.order {
			t.Fatalf("%s: expected order %d got %d", tt.category, tt.order, got)
		}
		if got := tt.category.HeightAffected(); got != tt.height {
			t.Fatalf("%s: expected height affected %v", tt.category, tt.height)
		}
	}
	if _, err := ParseCategory("lighting"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseCategory("Lighting"); err == nil {
		t.Fatalf("category ids are case sensitive")
	}
}

func TestSubcategoryParent(t *testing.T) {
	if SubcategoryElectronics.Parent() != CategoryEquipment {
		t.Fatalf("electronics belongs to equipment")
	}
	if SubcategoryServices.Parent() != CategoryMarketing {
		t.Fatalf("services belongs to marketing")
	}
	if s, err := ParseSubcategory(""); err != nil || s != "" {
		t.Fatalf("empty subcategory should be accepted")
	}
	if _, err := ParseSubcategory("chairs"); err == nil {
		t.Fatalf("expected error for unknown subcategory")
	}
}

func TestStandTypeSides(t *testing.T) {
	tests := []struct {
		value  string
		sides  int
		closed int
		label  string
	}{
		{"centro", 1, 3, "Centro"},
		{"esquina", 2, 2, "Esquina"},
		{"Peninsula", 3, 1, "Peninsula"},
		{" ISLA ", 4, 0, "Isla"},
	}
	for _, tt := range tests {
		s, err := ParseStandType(tt.value)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tt.value, err)
		}
		if s.Sides() != tt.sides || s.ClosedSides() != tt.closed || s.Label() != tt.label {
			t.Fatalf("%q: got sides=%d closed=%d label=%q", tt.value, s.Sides(), s.ClosedSides(), s.Label())
		}
	}
	if StandTypeOrDefault("tribuna") != StandTypeCentro {
		t.Fatalf("unknown stand types default to centro")
	}
	if StandType("x").ClosedSides() != 0 {
		t.Fatalf("unknown stand type has no closed sides")
	}
}

func TestQuotationTypeModes(t *testing.T) {
	if QuotationTypeStand.IsMultiSpace() {
		t.Fatalf("stand is single pool")
	}
	for _, raw := range []string{"expo", "Alquiler"} {
		qt, err := ParseQuotationType(raw)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", raw, err)
		}
		if !qt.IsMultiSpace() {
			t.Fatalf("%q should be multi-space", raw)
		}
	}
	if QuotationTypeExpo.Label() != "Expo" {
		t.Fatalf("unexpected label %q", QuotationTypeExpo.Label())
	}
}

func TestItemEnumsDefaults(t *testing.T) {
	if it, _ := ParseItemType(""); it != ItemTypeCounter {
		t.Fatalf("expected counter default")
	}
	if f, _ := ParseCalcFormula(""); f != CalcFormulaDirect {
		t.Fatalf("expected direct default")
	}
	if _, err := ParseCalcFormula("area"); err == nil {
		t.Fatalf("expected error for unknown formula")
	}
	if _, err := ParseHeightType("Media"); err != nil {
		t.Fatalf("height parse should be case-insensitive: %v", err)
	}
	if len(HeightTypes()) != 5 {
		t.Fatalf("expected five height tiers")
	}
}
