package quote

import (
	"encoding/json"
	"testing"

	"github.com/mepex/cotizador-backend/pkg/enums"
)

func TestSnapshotJSONRoundTrip(t *testing.T) {
	st := NewState(testCatalog())
	st.UpdateParams(ParamsPatch{
		Metraje:     intPtr(40),
		Frontal:     decPtr("8"),
		Profundidad: decPtr("5"),
		StandType:   strPtr("esquina"),
		HeightType:  strPtr("plus"),
		Client:      &ClientRef{ID: "c1", Name: "ACME", CUIT: "30712345678"},
	})
	st.ToggleItem("chair", intPtr(3))
	st.ToggleItem("carpet", nil)
	st.SetQuotationType(enums.QuotationTypeExpo)
	st.AddSpace("Sala 2")
	st.ToggleItem("tv", nil)

	raw, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	snap, err := DecodeSnapshot(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	restored := NewState(testCatalog())
	signals := 0
	restored.OnChange(func() { signals++ })
	restored.Load(snap)
	if signals != 1 {
		t.Fatalf("load should signal once, got %d", signals)
	}

	if restored.Type() != enums.QuotationTypeExpo || restored.ActiveSpaceID() != "space_2" || restored.SpaceCounter() != 2 {
		t.Fatalf("unexpected multi-space state")
	}
	if restored.Stand().Metraje != 40 || restored.Stand().StandType != enums.StandTypeEsquina {
		t.Fatalf("stand params lost")
	}
	if !restored.Stand().Frontal.Equal(*st.Stand().Frontal) || restored.Stand().HeightType != enums.HeightPlus {
		t.Fatalf("dimensions lost")
	}
	if len(restored.Items()) != 2 || restored.Spaces()[1].Items.Len() != 1 {
		t.Fatalf("pools lost")
	}
	if restored.Common().Client.CUIT != "30712345678" {
		t.Fatalf("identity lost")
	}
	if got := Price(restored.Snapshot(), testCatalog()); !got.Total.Equal(Price(st.Snapshot(), testCatalog()).Total) {
		t.Fatalf("restored state should price identically")
	}
}

func TestLoadNormalizesInput(t *testing.T) {
	var snap Snapshot
	if err := json.Unmarshal([]byte(`{
		"quotationType":"booth",
		"stand":{"metraje":1000,"standType":"tribuna","heightType":"??"},
		"common":{"modifierPercentage":"-99","feePercentage":"3"},
		"items":[{"itemId":"chair","quantity":0},{"itemId":"spot","quantity":2}],
		"multi":{"spaces":[{"id":"space_4","name":"A","items":[]},{"id":"space_4","name":"dup","items":[]}],"activeSpaceId":"space_9","spaceCounter":1}
	}`), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	st := NewState(testCatalog())
	st.Load(snap)

	if st.Type() != enums.QuotationTypeStand || st.Stand().Metraje != MaxMetraje || st.Stand().StandType != enums.StandTypeCentro {
		t.Fatalf("unexpected normalized state %+v", st.Stand())
	}
	if len(st.Items()) != 1 {
		t.Fatalf("zero quantities must be dropped")
	}
	if len(st.Spaces()) != 1 || st.ActiveSpaceID() != "space_4" || st.SpaceCounter() != 1 {
		t.Fatalf("unexpected spaces after load")
	}
	if !st.Common().ModifierPercentage.Equal(minModifier) || !st.Common().FeePercentage.Equal(maxFee) {
		t.Fatalf("percentages should clamp on load")
	}
}

func TestLooseString(t *testing.T) {
	var ref ClientRef
	if err := json.Unmarshal([]byte(`{"id":"c","name":"n","cuit":30712345678}`), &ref); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ref.CUIT != "30712345678" {
		t.Fatalf("numeric cuit should become a string, got %q", ref.CUIT)
	}
	if err := json.Unmarshal([]byte(`{"cuit":null}`), &ref); err != nil || ref.CUIT != "" {
		t.Fatalf("null cuit should be blank")
	}
}
