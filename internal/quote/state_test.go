package quote

import (
	"testing"

	"github.com/mepex/cotizador-backend/internal/catalog"
	"github.com/mepex/cotizador-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func testCatalog() *catalog.Index {
	return catalog.NewIndex(
		catalog.Item{ID: "spot", Name: "Spot LED", Category: enums.CategoryLighting, Price: decimal.NewFromInt(1000)},
		catalog.Item{ID: "chair", Name: "Silla", Category: enums.CategoryEquipment, Subcategory: enums.SubcategoryFurniture, Price: decimal.NewFromInt(500)},
		catalog.Item{ID: "carpet", Name: "Alfombra", Category: enums.CategoryFlooring, Price: decimal.NewFromInt(200), Unit: "m²",
			AutoCalculate: true, CalcFormula: enums.CalcFormulaDirect, CalcFactor: decimal.NewFromInt(1)},
		catalog.Item{ID: "wall", Name: "Pared", Category: enums.CategoryInfrastructure, Price: decimal.NewFromInt(3000),
			AutoCalculate: true, CalcFormula: enums.CalcFormulaPerimeter, CalcFactor: decimal.NewFromInt(1)},
		catalog.Item{ID: "tv", Name: "TV", Category: enums.CategoryEquipment, Subcategory: enums.SubcategoryElectronics, Price: decimal.NewFromInt(2000)},
	)
}

func TestNewStateDefaults(t *testing.T) {
	s := NewState(testCatalog())
	stand := s.Stand()
	if stand.Metraje != 25 || stand.StandType != enums.StandTypeCentro || stand.HeightType != enums.HeightStandard {
		t.Fatalf("unexpected stand defaults %+v", stand)
	}
	if stand.StandSides() != 1 || !stand.HeightMultiplier().Equal(decimal.NewFromInt(1)) {
		t.Fatalf("unexpected derived values")
	}
	c := s.Common()
	if c.IncludeFee || !c.FeePercentage.Equal(decimal.RequireFromString("0.1")) || !c.ModifierPercentage.IsZero() {
		t.Fatalf("unexpected common defaults %+v", c)
	}
	if s.Type() != enums.QuotationTypeStand || s.IsMultiSpaceMode() {
		t.Fatalf("expected stand mode")
	}
}

func TestToggleItem(t *testing.T) {
	s := NewState(testCatalog())
	changes := 0
	s.OnChange(func() { changes++ })

	s.ToggleItem("chair", nil)
	if sel, ok := findEntry(s.Items(), "chair"); !ok || sel.Quantity != 1 || sel.AutoCalc {
		t.Fatalf("expected manual item with qty 1, got %+v", sel)
	}
	s.ToggleItem("carpet", nil)
	if sel, _ := findEntry(s.Items(), "carpet"); sel.Quantity != 25 || !sel.AutoCalc {
		t.Fatalf("expected auto quantity 25, got %+v", sel)
	}
	s.ToggleItem("chair", nil)
	if _, ok := findEntry(s.Items(), "chair"); ok {
		t.Fatalf("second toggle should remove")
	}

	s.ToggleItem("carpet", intPtr(30))
	if sel, _ := findEntry(s.Items(), "carpet"); sel.Quantity != 30 || sel.AutoCalc {
		t.Fatalf("explicit quantity should disable auto tracking, got %+v", sel)
	}
	s.ToggleItem("carpet", intPtr(0))
	if len(s.Items()) != 0 {
		t.Fatalf("zero quantity should remove")
	}
	s.ToggleItem("carpet", intPtr(-3))
	if len(s.Items()) != 0 {
		t.Fatalf("negative quantity must never be stored")
	}

	before := changes
	s.ToggleItem("ghost", nil)
	if changes != before || len(s.Items()) != 0 {
		t.Fatalf("unknown items are ignored")
	}
}

func TestUpdateParamsClampsAndRecalculates(t *testing.T) {
	s := NewState(testCatalog())
	s.ToggleItem("carpet", nil)
	s.ToggleItem("wall", nil)
	s.ToggleItem("chair", intPtr(4))

	s.UpdateParams(ParamsPatch{Metraje: intPtr(36)})
	if sel, _ := findEntry(s.Items(), "carpet"); sel.Quantity != 36 {
		t.Fatalf("auto item should follow the surface, got %d", sel.Quantity)
	}
	if sel, _ := findEntry(s.Items(), "wall"); sel.Quantity != 18 {
		t.Fatalf("perimeter wall for 36m² centro should be 18, got %d", sel.Quantity)
	}
	if sel, _ := findEntry(s.Items(), "chair"); sel.Quantity != 4 {
		t.Fatalf("manual items must not change")
	}

	s.UpdateParams(ParamsPatch{StandType: strPtr("isla")})
	if _, ok := findEntry(s.Items(), "wall"); ok {
		t.Fatalf("wall with no closed sides should drop out")
	}

	s.UpdateParams(ParamsPatch{
		Metraje:            intPtr(2),
		ModifierPercentage: decPtr("-80"),
		FeePercentage:      decPtr("1.5"),
		HeightType:         strPtr("altísima"),
		Frontal:            decPtr("-1"),
	})
	stand, common := s.Stand(), s.Common()
	if stand.Metraje != MinMetraje {
		t.Fatalf("metraje should clamp to %d, got %d", MinMetraje, stand.Metraje)
	}
	if !common.ModifierPercentage.Equal(decimal.NewFromInt(-50)) || !common.FeePercentage.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("percentages should clamp, got %s %s", common.ModifierPercentage, common.FeePercentage)
	}
	if stand.HeightType != enums.HeightStandard || stand.Frontal != nil {
		t.Fatalf("invalid height and dimensions should default")
	}

	s.UpdateParams(ParamsPatch{Metraje: intPtr(900), ModifierPercentage: decPtr("250"), FeePercentage: decPtr("-1")})
	if s.Stand().Metraje != MaxMetraje || !s.Common().ModifierPercentage.Equal(decimal.NewFromInt(100)) || !s.Common().FeePercentage.IsZero() {
		t.Fatalf("upper clamps not applied")
	}

	s.UpdateParams(ParamsPatch{Client: &ClientRef{ID: "c1", Name: "ACME"}})
	if s.Common().Client == nil || s.Common().Client.Name != "ACME" {
		t.Fatalf("client should be set")
	}
	s.UpdateParams(ParamsPatch{ClearClient: true})
	if s.Common().Client != nil {
		t.Fatalf("client should be cleared")
	}
}

func TestSpaces(t *testing.T) {
	s := NewState(testCatalog())
	s.SetQuotationType(enums.QuotationTypeExpo)
	if len(s.Spaces()) != 1 || s.ActiveSpaceID() != "space_1" || s.Spaces()[0].Name != "Espacio 1" {
		t.Fatalf("entering multi-space mode should create the first space: %+v", s.Spaces())
	}
	second := s.AddSpace("")
	if second.ID != "space_2" || second.Name != "Espacio 2" || s.ActiveSpaceID() != "space_2" {
		t.Fatalf("unexpected new space %+v", second)
	}
	s.ToggleItem("tv", nil)
	s.SetActiveSpace("space_1")
	s.ToggleItem("chair", intPtr(3))
	s.SetActiveSpace("space_9")
	if s.ActiveSpaceID() != "space_1" {
		t.Fatalf("unknown space must not change the active one")
	}

	spaces := s.Spaces()
	if spaces[0].Items.Len() != 1 || spaces[1].Items.Len() != 1 {
		t.Fatalf("pools should be independent")
	}

	s.RemoveSpace("space_1")
	if s.ActiveSpaceID() != "space_2" {
		t.Fatalf("removing the active space should activate the first remaining")
	}
	third := s.AddSpace("Sala VIP")
	if third.ID != "space_3" {
		t.Fatalf("ids must never be reused, got %s", third.ID)
	}
	s.SetSpaceDetails("space_3", "  ", decPtr("40"))
	if sp := s.Spaces()[1]; sp.Name != "Sala VIP" || !sp.Surface.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("unexpected space details %+v", sp)
	}
	s.RemoveSpace("space_2")
	s.RemoveSpace("space_3")
	if s.ActiveSpaceID() != "" {
		t.Fatalf("no active space once all are removed")
	}
	s.ToggleItem("tv", nil)
	if len(s.CurrentItems()) != 0 {
		t.Fatalf("toggle without an active space is a no-op")
	}
	s.RemoveSpace("space_2")
}

func TestModeMigrationConservesItems(t *testing.T) {
	s := NewState(testCatalog())
	s.ToggleItem("chair", intPtr(4))
	s.ToggleItem("spot", intPtr(2))
	s.ToggleItem("carpet", nil)
	before := s.Items()

	s.SetQuotationType(enums.QuotationTypeAlquiler)
	spaces := s.Spaces()
	if len(spaces) != 1 || spaces[0].Items.Len() != 3 {
		t.Fatalf("flat pool should be copied into the first space")
	}

	s.SetQuotationType(enums.QuotationTypeStand)
	after := s.Items()
	if len(after) != len(before) {
		t.Fatalf("expected %d items, got %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("entry %d changed: %+v vs %+v", i, before[i], after[i])
		}
	}

	s.ToggleItem("tv", nil)
	if s.Spaces()[0].Items.Len() != 3 {
		t.Fatalf("pools must not alias after migration")
	}
}

func TestMultiToStandKeepsFlatPoolWhenActiveEmpty(t *testing.T) {
	s := NewState(testCatalog())
	s.ToggleItem("chair", nil)
	s.SetQuotationType(enums.QuotationTypeExpo)
	s.AddSpace("Vacío")
	s.SetQuotationType(enums.QuotationTypeStand)
	if len(s.Items()) != 1 {
		t.Fatalf("empty active space should not wipe the stand pool")
	}
	s.SetQuotationType(enums.QuotationTypeExpo)
	if len(s.Spaces()) != 2 {
		t.Fatalf("existing spaces are kept on re-entry")
	}
}

func TestReset(t *testing.T) {
	s := NewState(testCatalog())
	s.UpdateParams(ParamsPatch{Metraje: intPtr(80), IncludeFee: boolPtr(true)})
	s.SetQuotationType(enums.QuotationTypeExpo)
	s.AddSpace("B")
	s.ToggleItem("tv", nil)

	s.Reset()
	if s.Type() != enums.QuotationTypeStand || len(s.Spaces()) != 0 || len(s.Items()) != 0 || s.SpaceCounter() != 0 {
		t.Fatalf("reset should clear everything")
	}
	if s.Stand().Metraje != 25 || s.Common().IncludeFee {
		t.Fatalf("reset should restore defaults")
	}
	s.SetQuotationType(enums.QuotationTypeExpo)
	if s.Spaces()[0].ID != "space_1" {
		t.Fatalf("space counter should restart")
	}
}

func boolPtr(v bool) *bool { return &v }

func findEntry(entries []Entry, id string) (Selection, bool) {
	for _, e := range entries {
		if e.ItemID == id {
			return e.Selection, true
		}
	}
	return Selection{}, false
}
