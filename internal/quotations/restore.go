package quotations

import (
	"math"

	"github.com/mepex/cotizador-backend/internal/quote"
	"github.com/mepex/cotizador-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Restore replaces st with the saved record. The quotation number is never
// carried over. With clearIdentity the client, project and event are left
// empty so the record serves as a template. Selections come back as manual
// quantities.
func Restore(st *quote.State, rec Record, clearIdentity bool) {
	st.Load(SnapshotOf(rec, clearIdentity))
}

// SnapshotOf builds the state a record describes.
func SnapshotOf(rec Record, clearIdentity bool) quote.Snapshot {
	p := rec.Params
	qtype := rec.Type
	if !qtype.IsValid() {
		qtype = enums.QuotationTypeStand
	}

	snap := quote.Snapshot{
		Type: qtype,
		Stand: quote.StandParams{
			Metraje:     int(math.Round(p.Surface)),
			Frontal:     p.Frontal.decimal(),
			Profundidad: p.Profundidad.decimal(),
			StandType:   enums.StandTypeOrDefault(p.StandType),
			HeightType:  heightForMultiplier(p.Height.Multiplier).ID,
		},
		Common: quote.Common{
			ModifierName:       p.Modifier.Name,
			ModifierPercentage: decimal.NewFromFloat(p.Modifier.Percentage),
			IncludeFee:         p.Fee.Enabled,
			FeePercentage:      decimal.NewFromFloat(p.Fee.Percentage).Div(decimal.NewFromInt(100)),
		},
	}

	if !clearIdentity {
		snap.Common.Client = clientRef(p.Client)
		snap.Common.Project = projectRef(p.Project)
		snap.Common.Event = eventRef(p.Event)
	}

	if qtype.IsMultiSpace() {
		for _, sp := range rec.Spaces {
			snap.Multi.Spaces = append(snap.Multi.Spaces, quote.Space{
				ID:      sp.ID,
				Name:    sp.Name,
				Surface: sp.Surface.decimal(),
				Items:   manualPool(sp.Items),
			})
		}
		snap.Multi.Counter = len(rec.Spaces)
		if len(rec.Spaces) > 0 {
			snap.Multi.ActiveSpaceID = rec.Spaces[0].ID
		}
	} else {
		snap.Items = manualPool(rec.Items)
	}
	return snap
}

func manualPool(items []Item) quote.Pool {
	var pool quote.Pool
	for _, it := range items {
		if it.ID == "" || it.Quantity <= 0 {
			continue
		}
		pool.Set(it.ID, quote.Selection{Quantity: it.Quantity})
	}
	return pool
}

func clientRef(c ClientParams) *quote.ClientRef {
	if c.ID == nil && c.Name == "" {
		return nil
	}
	return &quote.ClientRef{ID: deref(c.ID), Name: c.Name, CUIT: c.CUIT, Email: c.Email}
}

func projectRef(p ProjectParams) *quote.ProjectRef {
	if p.ID == nil && p.Name == "" {
		return nil
	}
	return &quote.ProjectRef{ID: deref(p.ID), Name: p.Name}
}

func eventRef(e EventParams) *quote.EventRef {
	if e.ID == nil && e.Name == "" {
		return nil
	}
	return &quote.EventRef{
		ID:             deref(e.ID),
		Name:           e.Name,
		SetupDate:      e.Dates,
		EventStartDate: deref(e.EventStartDate),
		EventEndDate:   deref(e.EventEndDate),
		Venue:          e.Venue,
	}
}
