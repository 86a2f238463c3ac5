package quotations

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mepex/cotizador-backend/internal/catalog"
	"github.com/mepex/cotizador-backend/internal/quote"
	"github.com/mepex/cotizador-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

const (
	dateLayout    = "2006-01-02"
	savedAtLayout = "2006-01-02T15:04:05.000Z07:00"
)

// OptionalNumber is a dimension that may be absent. Stored records carry it
// as null, an empty string, a number or a numeric string.
type OptionalNumber struct {
	Value float64
	Valid bool
}

func Number(v float64) OptionalNumber {
	return OptionalNumber{Value: v, Valid: true}
}

func (n OptionalNumber) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *OptionalNumber) UnmarshalJSON(data []byte) error {
	*n = OptionalNumber{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
		if raw == "" {
			return nil
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", raw)
	}
	*n = OptionalNumber{Value: v, Valid: true}
	return nil
}

func (n OptionalNumber) decimal() *decimal.Decimal {
	if !n.Valid || n.Value <= 0 {
		return nil
	}
	d := decimal.NewFromFloat(n.Value)
	return &d
}

func optionalFrom(d *decimal.Decimal) OptionalNumber {
	if d == nil || !d.IsPositive() {
		return OptionalNumber{}
	}
	return Number(d.InexactFloat64())
}

// Record is the persisted, self-contained form of a quotation.
type Record struct {
	ID        string              `json:"id"`
	CotNumber string              `json:"cotNumber"`
	Date      string              `json:"date"`
	Type      enums.QuotationType `json:"type"`
	Params    Params              `json:"params"`
	Items     []Item              `json:"items"`
	Spaces    []SpaceRecord       `json:"spaces"`
	Totals    Totals              `json:"totals"`
	SavedAt   string              `json:"savedAt"`
	NotionURL string              `json:"notionUrl,omitempty"`
}

type Params struct {
	Client      ClientParams   `json:"client"`
	Project     ProjectParams  `json:"project"`
	Event       EventParams    `json:"event"`
	Surface     float64        `json:"surface"`
	Frontal     OptionalNumber `json:"frontal"`
	Profundidad OptionalNumber `json:"profundidad"`
	StandType   string         `json:"standType"`
	Height      HeightParams   `json:"height"`
	Modifier    ModifierParams `json:"modifier"`
	Fee         FeeParams      `json:"fee"`
}

type ClientParams struct {
	ID    *string           `json:"id"`
	Name  string            `json:"name"`
	CUIT  quote.LooseString `json:"cuit"`
	Email string            `json:"email"`
}

type ProjectParams struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

// EventParams keeps the setup date under "dates" for older readers.
type EventParams struct {
	ID             *string `json:"id"`
	Name           string  `json:"name"`
	Dates          string  `json:"dates"`
	EventStartDate *string `json:"eventStartDate"`
	EventEndDate   *string `json:"eventEndDate"`
	Venue          string  `json:"venue"`
}

type HeightParams struct {
	Label      string  `json:"label"`
	Value      float64 `json:"value"`
	Multiplier float64 `json:"multiplier"`
}

type ModifierParams struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// FeeParams stores the percentage as a whole number (10 for 10%).
type FeeParams struct {
	Enabled    bool    `json:"enabled"`
	Percentage float64 `json:"percentage"`
}

type Item struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Category enums.Category `json:"category"`
	Price    float64        `json:"price"`
	Quantity int            `json:"quantity"`
	Unit     string         `json:"unit"`
}

type SpaceRecord struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Surface OptionalNumber `json:"surface"`
	Items   []Item         `json:"items"`
}

// Totals are the integer amounts displayed when the record was saved.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

var fallbackHeight = HeightParams{Label: "Estándar", Value: 2.5, Multiplier: 1}

// Collect captures the session's current state as a record with a fresh id.
func Collect(sess *quote.Session, lookup quote.Lookup, cotNumber string, now time.Time) Record {
	st := sess.State()
	stand := st.Stand()
	common := st.Common()
	display := sess.Breakdown().Display
	qtype := st.Type()
	if qtype == "" {
		qtype = enums.QuotationTypeStand
	}

	rec := Record{
		ID:        uuid.NewString(),
		CotNumber: cotNumber,
		Date:      now.Format(dateLayout),
		Type:      qtype,
		Params: Params{
			Client:      clientParams(common.Client),
			Project:     projectParams(common.Project),
			Event:       eventParams(common.Event),
			Surface:     float64(stand.Metraje),
			Frontal:     optionalFrom(stand.Frontal),
			Profundidad: optionalFrom(stand.Profundidad),
			StandType:   string(stand.StandType),
			Height:      heightParams(stand),
			Modifier: ModifierParams{
				Name:       common.ModifierName,
				Percentage: common.ModifierPercentage.InexactFloat64(),
			},
			Fee: FeeParams{
				Enabled:    common.IncludeFee,
				Percentage: common.FeePercentage.Mul(decimal.NewFromInt(100)).Round(0).InexactFloat64(),
			},
		},
		Items:  []Item{},
		Spaces: []SpaceRecord{},
		Totals: Totals{
			Subtotal: float64(display.Subtotal),
			Tax:      float64(display.Tax),
			Total:    float64(display.Total),
		},
		SavedAt: now.UTC().Format(savedAtLayout),
	}

	if st.IsMultiSpaceMode() {
		for _, sp := range st.Spaces() {
			rec.Spaces = append(rec.Spaces, SpaceRecord{
				ID:      sp.ID,
				Name:    sp.Name,
				Surface: optionalFrom(sp.Surface),
				Items:   expandItems(sp.Items.Entries(), lookup),
			})
		}
	} else {
		rec.Items = expandItems(st.Items(), lookup)
	}
	return rec
}

// expandItems joins selections with the catalog. Unknown items and empty
// quantities are dropped.
func expandItems(entries []quote.Entry, lookup quote.Lookup) []Item {
	out := make([]Item, 0, len(entries))
	for _, e := range entries {
		if e.Quantity <= 0 {
			continue
		}
		item, ok := lookup.GetByID(e.ItemID)
		if !ok {
			continue
		}
		out = append(out, Item{
			ID:       e.ItemID,
			Name:     item.Name,
			Category: item.Category,
			Price:    item.Price.InexactFloat64(),
			Quantity: e.Quantity,
			Unit:     item.Unit,
		})
	}
	return out
}

func heightParams(stand quote.StandParams) HeightParams {
	h := stand.Height()
	if h.Name == "" {
		return fallbackHeight
	}
	return HeightParams{
		Label:      h.Name,
		Value:      h.Meters.InexactFloat64(),
		Multiplier: h.Multiplier.InexactFloat64(),
	}
}

func optionalID(id string) *string {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	return &id
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func clientParams(c *quote.ClientRef) ClientParams {
	if c == nil {
		return ClientParams{}
	}
	return ClientParams{ID: optionalID(c.ID), Name: c.Name, CUIT: c.CUIT, Email: c.Email}
}

func projectParams(p *quote.ProjectRef) ProjectParams {
	if p == nil {
		return ProjectParams{}
	}
	return ProjectParams{ID: optionalID(p.ID), Name: p.Name}
}

func eventParams(e *quote.EventRef) EventParams {
	if e == nil {
		return EventParams{}
	}
	return EventParams{
		ID:             optionalID(e.ID),
		Name:           e.Name,
		Dates:          e.SetupDate,
		EventStartDate: optionalString(e.EventStartDate),
		EventEndDate:   optionalString(e.EventEndDate),
		Venue:          e.Venue,
	}
}

// heightForMultiplier resolves a stored multiplier to its tier.
func heightForMultiplier(m float64) catalog.Height {
	h, _ := catalog.MatchHeightMultiplier(decimal.NewFromFloat(m))
	return h
}

// Decode parses a stored payload.
func Decode(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decoding quotation record: %w", err)
	}
	if rec.Items == nil {
		rec.Items = []Item{}
	}
	if rec.Spaces == nil {
		rec.Spaces = []SpaceRecord{}
	}
	return rec, nil
}
