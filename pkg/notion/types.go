package notion

import "strings"

// RichText is one segment of a text-like property or block.
type RichText struct {
	Type      string       `json:"type,omitempty"`
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

type TextContent struct {
	Content string `json:"content"`
}

type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type DateValue struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

type Reference struct {
	ID string `json:"id"`
}

// Property is the read shape of a page property. Only the member matching
// Type is populated.
type Property struct {
	ID          string         `json:"id,omitempty"`
	Type        string         `json:"type"`
	Title       []RichText     `json:"title,omitempty"`
	RichText    []RichText     `json:"rich_text,omitempty"`
	Number      *float64       `json:"number,omitempty"`
	Select      *SelectOption  `json:"select,omitempty"`
	Status      *SelectOption  `json:"status,omitempty"`
	MultiSelect []SelectOption `json:"multi_select,omitempty"`
	Date        *DateValue     `json:"date,omitempty"`
	Checkbox    bool           `json:"checkbox,omitempty"`
	Email       *string        `json:"email,omitempty"`
	PhoneNumber *string        `json:"phone_number,omitempty"`
	Relation    []Reference    `json:"relation,omitempty"`
}

type Page struct {
	ID             string              `json:"id"`
	URL            string              `json:"url,omitempty"`
	CreatedTime    string              `json:"created_time,omitempty"`
	LastEditedTime string              `json:"last_edited_time,omitempty"`
	Properties     map[string]Property `json:"properties"`
}

// DatabaseProperty describes one column of a database schema.
type DatabaseProperty struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Select      *OptionsConfig `json:"select,omitempty"`
	MultiSelect *OptionsConfig `json:"multi_select,omitempty"`
	Status      *OptionsConfig `json:"status,omitempty"`
}

type OptionsConfig struct {
	Options []SelectOption `json:"options"`
}

// Options returns the choices of a select-like column.
func (p DatabaseProperty) Options() []SelectOption {
	switch {
	case p.Select != nil:
		return p.Select.Options
	case p.MultiSelect != nil:
		return p.MultiSelect.Options
	case p.Status != nil:
		return p.Status.Options
	}
	return nil
}

type Database struct {
	ID         string                      `json:"id"`
	Title      []RichText                  `json:"title"`
	Properties map[string]DatabaseProperty `json:"properties"`
}

// Name is the plain-text database title.
func (d Database) Name() string {
	return PlainText(d.Title)
}

type CodeBlock struct {
	Language string     `json:"language"`
	RichText []RichText `json:"rich_text"`
}

type Block struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	HasChildren bool       `json:"has_children,omitempty"`
	Code        *CodeBlock `json:"code,omitempty"`
}

// PlainText joins the plain text of every segment.
func PlainText(segments []RichText) string {
	var b strings.Builder
	for _, seg := range segments {
		switch {
		case seg.PlainText != "":
			b.WriteString(seg.PlainText)
		case seg.Text != nil:
			b.WriteString(seg.Text.Content)
		}
	}
	return b.String()
}
