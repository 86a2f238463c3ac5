package quote

import (
	"fmt"
	"strings"

	"github.com/mepex/cotizador-backend/internal/catalog"
	"github.com/mepex/cotizador-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Lookup resolves catalog items by id.
type Lookup interface {
	GetByID(id string) (catalog.Item, bool)
}

// State is the in-progress quotation owned by one session. It is not safe
// for concurrent use; callers serialize access. Every mutation invokes the
// registered listener.
type State struct {
	catalog  Lookup
	listener func()

	qtype  enums.QuotationType
	common Common
	stand  StandParams
	items  Pool
	multi  MultiSpaceParams
}

// NewState returns a state holding the documented defaults.
func NewState(lookup Lookup) *State {
	s := &State{catalog: lookup}
	s.resetLocked()
	return s
}

// OnChange registers the single change listener.
func (s *State) OnChange(fn func()) {
	s.listener = fn
}

func (s *State) changed() {
	if s.listener != nil {
		s.listener()
	}
}

func (s *State) Type() enums.QuotationType {
	return s.qtype
}

func (s *State) IsMultiSpaceMode() bool {
	return s.qtype.IsMultiSpace()
}

func (s *State) Common() Common {
	return s.common
}

func (s *State) Stand() StandParams {
	return s.stand
}

// Items returns the stand-mode pool.
func (s *State) Items() []Entry {
	return s.items.Entries()
}

// Spaces returns a copy of the spaces in order.
func (s *State) Spaces() []Space {
	out := make([]Space, 0, len(s.multi.Spaces))
	for _, sp := range s.multi.Spaces {
		out = append(out, sp.clone())
	}
	return out
}

func (s *State) ActiveSpaceID() string {
	return s.multi.ActiveSpaceID
}

func (s *State) SpaceCounter() int {
	return s.multi.Counter
}

func (s *State) spaceIndex(id string) int {
	for i := range s.multi.Spaces {
		if s.multi.Spaces[i].ID == id {
			return i
		}
	}
	return -1
}

// currentPool is the flat pool in stand mode or the active space's pool.
// It is nil in multi-space mode when no space is active.
func (s *State) currentPool() *Pool {
	if !s.IsMultiSpaceMode() {
		return &s.items
	}
	if i := s.spaceIndex(s.multi.ActiveSpaceID); i >= 0 {
		return &s.multi.Spaces[i].Items
	}
	return nil
}

// CurrentItems lists the pool that item toggles operate on.
func (s *State) CurrentItems() []Entry {
	if p := s.currentPool(); p != nil {
		return p.Entries()
	}
	return nil
}

func (s *State) autoQuantity(item catalog.Item) int {
	return catalog.AutoQuantity(item, s.stand.Metraje, s.stand.StandType, s.stand.HeightType)
}

// ToggleItem selects or deselects an item in the current pool. A nil
// quantity toggles: auto-calculated items start at their derived quantity,
// others at 1. An explicit quantity sets the entry by hand, removing it when
// not positive. Unknown items and a missing active space are ignored.
func (s *State) ToggleItem(itemID string, quantity *int) {
	if s.catalog == nil {
		return
	}
	item, ok := s.catalog.GetByID(itemID)
	if !ok {
		return
	}
	pool := s.currentPool()
	if pool == nil {
		return
	}

	switch {
	case quantity == nil:
		if _, selected := pool.Get(itemID); selected {
			pool.Delete(itemID)
			break
		}
		qty := 1
		if item.AutoCalculate {
			qty = s.autoQuantity(item)
		}
		pool.Set(itemID, Selection{Quantity: qty, AutoCalc: item.AutoCalculate})
	case *quantity <= 0:
		pool.Delete(itemID)
	default:
		pool.Set(itemID, Selection{Quantity: *quantity, AutoCalc: false})
	}
	s.changed()
}

// UpdateParams applies a partial update with domain clamping, then brings
// auto-calculated entries of the current pool back in line.
func (s *State) UpdateParams(patch ParamsPatch) {
	switch {
	case patch.ClearClient:
		s.common.Client = nil
	case patch.Client != nil:
		c := *patch.Client
		s.common.Client = &c
	}
	switch {
	case patch.ClearProject:
		s.common.Project = nil
	case patch.Project != nil:
		p := *patch.Project
		s.common.Project = &p
	}
	switch {
	case patch.ClearEvent:
		s.common.Event = nil
	case patch.Event != nil:
		e := *patch.Event
		s.common.Event = &e
	}

	if patch.Metraje != nil {
		s.stand.Metraje = ClampMetraje(*patch.Metraje)
	}
	if patch.Frontal != nil {
		s.stand.Frontal = positiveOrNil(patch.Frontal)
	}
	if patch.Profundidad != nil {
		s.stand.Profundidad = positiveOrNil(patch.Profundidad)
	}
	if patch.StandType != nil {
		s.stand.StandType = enums.StandTypeOrDefault(*patch.StandType)
	}
	if patch.HeightType != nil {
		s.stand.HeightType = heightOrDefault(*patch.HeightType)
	}
	if patch.ModifierName != nil {
		s.common.ModifierName = strings.TrimSpace(*patch.ModifierName)
	}
	if patch.ModifierPercentage != nil {
		s.common.ModifierPercentage = ClampModifier(*patch.ModifierPercentage)
	}
	if patch.IncludeFee != nil {
		s.common.IncludeFee = *patch.IncludeFee
	}
	if patch.FeePercentage != nil {
		s.common.FeePercentage = ClampFee(*patch.FeePercentage)
	}

	s.recalculateAuto()
	s.changed()
}

// recalculateAuto refreshes AutoCalc entries of the current pool; entries
// whose derived quantity drops to zero are removed.
func (s *State) recalculateAuto() {
	pool := s.currentPool()
	if pool == nil || s.catalog == nil {
		return
	}
	for _, e := range pool.Entries() {
		if !e.AutoCalc {
			continue
		}
		item, ok := s.catalog.GetByID(e.ItemID)
		if !ok {
			continue
		}
		pool.Set(e.ItemID, Selection{Quantity: s.autoQuantity(item), AutoCalc: true})
	}
}

// AddSpace appends a space and makes it active. A blank name defaults to
// "Espacio {n}".
func (s *State) AddSpace(name string) Space {
	sp := s.addSpaceLocked(name)
	s.changed()
	return sp.clone()
}

func (s *State) addSpaceLocked(name string) Space {
	s.multi.Counter++
	// restored records may carry ids ahead of the counter
	for s.spaceIndex(fmt.Sprintf("space_%d", s.multi.Counter)) >= 0 {
		s.multi.Counter++
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Espacio %d", s.multi.Counter)
	}
	sp := Space{ID: fmt.Sprintf("space_%d", s.multi.Counter), Name: name}
	s.multi.Spaces = append(s.multi.Spaces, sp)
	s.multi.ActiveSpaceID = sp.ID
	return sp
}

// RemoveSpace drops a space. Removing the active space activates the first
// remaining one, or none.
func (s *State) RemoveSpace(id string) {
	i := s.spaceIndex(id)
	if i < 0 {
		return
	}
	s.multi.Spaces = append(s.multi.Spaces[:i], s.multi.Spaces[i+1:]...)
	if s.multi.ActiveSpaceID == id {
		s.multi.ActiveSpaceID = ""
		if len(s.multi.Spaces) > 0 {
			s.multi.ActiveSpaceID = s.multi.Spaces[0].ID
		}
	}
	s.changed()
}

func (s *State) SetActiveSpace(id string) {
	if s.spaceIndex(id) < 0 {
		return
	}
	s.multi.ActiveSpaceID = id
	s.changed()
}

// SetSpaceDetails renames a space and sets its informative surface. A blank
// name keeps the current one; a nil or non-positive surface clears it.
func (s *State) SetSpaceDetails(id, name string, surface *decimal.Decimal) {
	i := s.spaceIndex(id)
	if i < 0 {
		return
	}
	if name = strings.TrimSpace(name); name != "" {
		s.multi.Spaces[i].Name = name
	}
	s.multi.Spaces[i].Surface = positiveOrNil(surface)
	s.changed()
}

// SetQuotationType switches mode, copying items across once: stand to
// multi-space seeds a first space from the flat pool when there are no
// spaces yet; multi-space to stand copies a non-empty active pool back.
func (s *State) SetQuotationType(t enums.QuotationType) {
	if !t.IsValid() {
		return
	}
	old := s.qtype
	switch {
	case !old.IsMultiSpace() && t.IsMultiSpace():
		if len(s.multi.Spaces) == 0 {
			s.addSpaceLocked("Espacio 1")
			if s.items.Len() > 0 {
				s.multi.Spaces[len(s.multi.Spaces)-1].Items = s.items.Clone()
			}
		}
	case old.IsMultiSpace() && !t.IsMultiSpace():
		if i := s.spaceIndex(s.multi.ActiveSpaceID); i >= 0 && s.multi.Spaces[i].Items.Len() > 0 {
			s.items = s.multi.Spaces[i].Items.Clone()
		}
	}
	s.qtype = t
	if t.IsMultiSpace() && len(s.multi.Spaces) == 0 {
		s.addSpaceLocked("Espacio 1")
	}
	s.changed()
}

// Reset clears every selection and space and restores defaults.
func (s *State) Reset() {
	s.resetLocked()
	s.changed()
}

func (s *State) resetLocked() {
	s.qtype = enums.QuotationTypeStand
	s.common = defaultCommon()
	s.stand = defaultStand()
	s.items.Clear()
	s.multi = MultiSpaceParams{}
}
