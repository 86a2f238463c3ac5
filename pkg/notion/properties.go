package notion

import "strings"

// Title returns the text of the named title property. An empty name picks
// whichever property is the page title.
func (p Page) Title(name string) string {
	if name != "" {
		return PlainText(p.Properties[name].Title)
	}
	for _, prop := range p.Properties {
		if prop.Type == "title" {
			return PlainText(prop.Title)
		}
	}
	return ""
}

func (p Page) RichText(name string) string {
	return PlainText(p.Properties[name].RichText)
}

func (p Page) Select(name string) string {
	if sel := p.Properties[name].Select; sel != nil {
		return sel.Name
	}
	return ""
}

func (p Page) Status(name string) string {
	if st := p.Properties[name].Status; st != nil {
		return st.Name
	}
	return ""
}

func (p Page) MultiSelect(name string) []string {
	opts := p.Properties[name].MultiSelect
	out := make([]string, 0, len(opts))
	for _, opt := range opts {
		out = append(out, opt.Name)
	}
	return out
}

// Number reports the value and whether the property was set.
func (p Page) Number(name string) (float64, bool) {
	if n := p.Properties[name].Number; n != nil {
		return *n, true
	}
	return 0, false
}

func (p Page) Date(name string) string {
	start, _ := p.DateRange(name)
	return start
}

func (p Page) DateRange(name string) (start, end string) {
	if d := p.Properties[name].Date; d != nil {
		return d.Start, d.End
	}
	return "", ""
}

func (p Page) Checkbox(name string) bool {
	return p.Properties[name].Checkbox
}

func (p Page) Email(name string) string {
	if e := p.Properties[name].Email; e != nil {
		return *e
	}
	return ""
}

func (p Page) Phone(name string) string {
	if ph := p.Properties[name].PhoneNumber; ph != nil {
		return *ph
	}
	return ""
}

// Relation returns the related page ids.
func (p Page) Relation(name string) []string {
	refs := p.Properties[name].Relation
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ref.ID)
	}
	return out
}

// FirstRelation is the first related page id or "".
func (p Page) FirstRelation(name string) string {
	if ids := p.Relation(name); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

func textSegment(content string) map[string]any {
	return map[string]any{"type": "text", "text": map[string]any{"content": content}}
}

func TitleValue(text string) map[string]any {
	return map[string]any{"title": []any{textSegment(text)}}
}

func RichTextValue(text string) map[string]any {
	if text == "" {
		return map[string]any{"rich_text": []any{}}
	}
	return map[string]any{"rich_text": []any{textSegment(text)}}
}

func NumberValue(n float64) map[string]any {
	return map[string]any{"number": n}
}

// SelectValue clears the property when name is blank.
func SelectValue(name string) map[string]any {
	name = strings.TrimSpace(name)
	if name == "" {
		return map[string]any{"select": nil}
	}
	return map[string]any{"select": map[string]any{"name": name}}
}

func MultiSelectValue(names ...string) map[string]any {
	opts := make([]any, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		opts = append(opts, map[string]any{"name": name})
	}
	return map[string]any{"multi_select": opts}
}

func DateValueOf(start string) map[string]any {
	if start == "" {
		return map[string]any{"date": nil}
	}
	return map[string]any{"date": map[string]any{"start": start}}
}

// RelationValue always sends an array; no ids clears the relation.
func RelationValue(ids ...string) map[string]any {
	refs := make([]any, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		refs = append(refs, map[string]any{"id": id})
	}
	return map[string]any{"relation": refs}
}

// FileUploadValue attaches a completed file upload to a files property.
func FileUploadValue(uploadID string) map[string]any {
	return map[string]any{"files": []any{
		map[string]any{"type": "file_upload", "file_upload": map[string]any{"id": uploadID}},
	}}
}
