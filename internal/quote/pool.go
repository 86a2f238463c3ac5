package quote

import "encoding/json"

// Selection is the chosen quantity of one catalog item. AutoCalc entries
// follow the stand parameters until the quantity is set by hand.
type Selection struct {
	Quantity int  `json:"quantity"`
	AutoCalc bool `json:"autoCalc"`
}

type Entry struct {
	ItemID string `json:"itemId"`
	Selection
}

// Pool is an insertion-ordered set of selections keyed by item id. Entries
// with a non-positive quantity are never stored.
type Pool struct {
	order []string
	sel   map[string]Selection
}

func (p *Pool) Get(itemID string) (Selection, bool) {
	s, ok := p.sel[itemID]
	return s, ok
}

// Set upserts the selection keeping its original position; a quantity of
// zero or less removes it.
func (p *Pool) Set(itemID string, s Selection) {
	if s.Quantity <= 0 {
		p.Delete(itemID)
		return
	}
	if p.sel == nil {
		p.sel = make(map[string]Selection)
	}
	if _, ok := p.sel[itemID]; !ok {
		p.order = append(p.order, itemID)
	}
	p.sel[itemID] = s
}

func (p *Pool) Delete(itemID string) {
	if _, ok := p.sel[itemID]; !ok {
		return
	}
	delete(p.sel, itemID)
	for i, id := range p.order {
		if id == itemID {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

func (p *Pool) Len() int {
	return len(p.order)
}

func (p *Pool) Entries() []Entry {
	out := make([]Entry, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, Entry{ItemID: id, Selection: p.sel[id]})
	}
	return out
}

// Clone returns an independent copy.
func (p *Pool) Clone() Pool {
	var out Pool
	for _, e := range p.Entries() {
		out.Set(e.ItemID, e.Selection)
	}
	return out
}

func (p *Pool) Clear() {
	p.order = nil
	p.sel = nil
}

func (p Pool) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Entries())
}

func (p *Pool) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	p.Clear()
	for _, e := range entries {
		if e.ItemID == "" {
			continue
		}
		p.Set(e.ItemID, e.Selection)
	}
	return nil
}

// PoolOf builds a pool from entries, dropping invalid ones.
func PoolOf(entries ...Entry) Pool {
	var p Pool
	for _, e := range entries {
		if e.ItemID == "" {
			continue
		}
		p.Set(e.ItemID, e.Selection)
	}
	return p
}
