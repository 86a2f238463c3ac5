package quote

import (
	"encoding/json"
	"fmt"

	"github.com/mepex/cotizador-backend/pkg/enums"
)

// Snapshot is the complete serializable state. The stand and multi-space
// variants are both carried; Type selects which one prices.
type Snapshot struct {
	Type   enums.QuotationType `json:"quotationType"`
	Common Common              `json:"common"`
	Stand  StandParams         `json:"stand"`
	Items  Pool                `json:"items"`
	Multi  MultiSpaceParams    `json:"multi"`
}

// Snapshot returns an independent copy of the state.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Type:   s.qtype,
		Common: s.common,
		Stand:  s.stand,
		Items:  s.items.Clone(),
		Multi: MultiSpaceParams{
			Spaces:        s.Spaces(),
			ActiveSpaceID: s.multi.ActiveSpaceID,
			Counter:       s.multi.Counter,
		},
	}
	snap.Common = copyCommon(s.common)
	return snap
}

// Load replaces the whole state with snap after normalizing it, then
// signals once.
func (s *State) Load(snap Snapshot) {
	s.qtype = snap.Type
	if !s.qtype.IsValid() {
		s.qtype = enums.QuotationTypeStand
	}
	s.common = normalizeCommon(copyCommon(snap.Common))
	s.stand = normalizeStand(snap.Stand)
	s.items = snap.Items.Clone()

	spaces := make([]Space, 0, len(snap.Multi.Spaces))
	seen := make(map[string]struct{}, len(snap.Multi.Spaces))
	for _, sp := range snap.Multi.Spaces {
		if sp.ID == "" {
			continue
		}
		if _, dup := seen[sp.ID]; dup {
			continue
		}
		seen[sp.ID] = struct{}{}
		sp = sp.clone()
		sp.Surface = positiveOrNil(sp.Surface)
		spaces = append(spaces, sp)
	}
	counter := snap.Multi.Counter
	if counter < len(spaces) {
		counter = len(spaces)
	}
	s.multi = MultiSpaceParams{Spaces: spaces, ActiveSpaceID: snap.Multi.ActiveSpaceID, Counter: counter}
	if s.spaceIndex(s.multi.ActiveSpaceID) < 0 {
		s.multi.ActiveSpaceID = ""
		if len(spaces) > 0 {
			s.multi.ActiveSpaceID = spaces[0].ID
		}
	}
	s.changed()
}

func copyCommon(c Common) Common {
	out := c
	if c.Client != nil {
		v := *c.Client
		out.Client = &v
	}
	if c.Project != nil {
		v := *c.Project
		out.Project = &v
	}
	if c.Event != nil {
		v := *c.Event
		v.Pavilion = append([]string(nil), c.Event.Pavilion...)
		out.Event = &v
	}
	return out
}

func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// DecodeSnapshot parses a stored state.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decoding quotation state: %w", err)
	}
	return snap, nil
}
