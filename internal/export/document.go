package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mepex/cotizador-backend/internal/catalog"
	"github.com/mepex/cotizador-backend/internal/quote"
	"github.com/mepex/cotizador-backend/pkg/money"
	"github.com/shopspring/decimal"
)

const (
	unknownValue      = "No especificado"
	infrastructureTag = "Construcción modular con sistema OCTEXA"
)

// Legends printed under the total; Terms go in the footer next to the
// reference.
var (
	Legends = []string{
		"El presupuesto es en concepto de alquiler",
		"Incluye armado, desarme, logística",
		"No incluye diseño del material gráfico",
	}
	Terms = []string{
		"La oferta tiene una vigencia de 15 días.",
		"La forma de pago es a convenir.",
	}
)

// Contact is the issuer block of the footer.
var Contact = struct {
	WhatsApp string
	Web      string
	Address  string
}{
	WhatsApp: "11 4970 7000",
	Web:      "www.mepex.com.ar",
	Address:  "Pallares 549 - Dpto 1, CP 1824, Lanús Oeste",
}

// Line is one printed item.
type Line struct {
	Label      string
	Name       string
	Quantity   int
	Unit       string
	UnitPrice  string
	Total      string
	UnitValue  float64
	TotalValue int64
}

// LineGroup is a run of lines under an optional heading.
type LineGroup struct {
	Title string
	Lines []Line
}

// Section is a category block in stand mode or a space in multi-space mode.
type Section struct {
	Name          string
	Title         string
	Surface       string
	Summary       string
	Note          string
	Groups        []LineGroup
	ShowPrices    bool
	Subtotal      string
	SubtotalValue int64
}

// Document holds every display string the renderers need. Renderers never
// price anything themselves.
type Document struct {
	CotNumber  string
	TypeLabel  string
	IssueDate  string
	IssuedOn   time.Time
	FileName   string
	Client     string
	Project    string
	Event      string
	EventDates string
	Venue      string

	MultiSpace bool
	Surface    string
	StandType  string
	Height     string
	SpaceCount int
	Modifier   string
	Fee        string

	Sections []Section

	Subtotal      string
	Tax           string
	Total         string
	TaxSummary    string
	SubtotalValue int64
	TaxValue      int64
	TotalValue    int64
}

// NewDocument turns a breakdown and the quotation's identity fields into a
// printable document issued at date.
func NewDocument(b quote.Breakdown, c quote.Common, cotNumber string, date time.Time) Document {
	doc := Document{
		CotNumber:  cotNumber,
		TypeLabel:  strings.ToUpper(b.Type.Label()),
		IssueDate:  FormatIssueDate(date),
		IssuedOn:   date,
		Client:     unknownValue,
		Event:      unknownValue,
		MultiSpace: b.MultiSpace,
		Surface:    fmt.Sprintf("%dm²", b.Surface),
		StandType:  b.StandType.Label(),
		Height:     b.HeightLabel,

		Subtotal:      money.FormatInt(b.Display.Subtotal),
		Tax:           money.FormatInt(b.Display.Tax),
		Total:         money.FormatInt(b.Display.Total),
		SubtotalValue: b.Display.Subtotal,
		TaxValue:      b.Display.Tax,
		TotalValue:    b.Display.Total,
	}
	doc.TaxSummary = fmt.Sprintf("Subtotal %s + IVA (%s%%) %s",
		doc.Subtotal, quote.TaxRate.Mul(decimal.NewFromInt(100)).String(), doc.Tax)

	if c.Client != nil && strings.TrimSpace(c.Client.Name) != "" {
		doc.Client = c.Client.Name
	}
	if c.Project != nil {
		doc.Project = c.Project.Name
	}
	if c.Event != nil {
		if strings.TrimSpace(c.Event.Name) != "" {
			doc.Event = c.Event.Name
		}
		doc.EventDates = FormatEventDateRange(c.Event.EventStartDate, c.Event.EventEndDate)
		doc.Venue = c.Event.Venue
	}
	if !b.ModifierPercentage.IsZero() {
		name := b.ModifierName
		if name == "" {
			name = "Modificador"
		}
		doc.Modifier = fmt.Sprintf("%s %s%%", name, signed(b.ModifierPercentage))
	}
	if b.IncludeFee {
		doc.Fee = fmt.Sprintf("Fee agencia %s%%", b.FeePercentage.Mul(decimal.NewFromInt(100)).String())
	}

	if b.MultiSpace {
		doc.SpaceCount = len(b.Groups)
		doc.Sections = spaceSections(b.Groups)
	} else {
		doc.Sections = categorySections(b.Groups)
	}
	doc.FileName = FileName(cotNumber, doc.Client, date)
	return doc
}

// FileName is MEPEX_{cot}_{client}_{yyyy-mm-dd}.pdf with whitespace in the
// client replaced by underscores.
func FileName(cotNumber, client string, date time.Time) string {
	return fmt.Sprintf("MEPEX_%s_%s_%s.pdf", cotNumber, strings.Join(strings.Fields(client), "_"), date.Format("2006-01-02"))
}

func categorySections(groups []quote.Group) []Section {
	out := make([]Section, 0, len(groups))
	for _, g := range groups {
		s := Section{
			Name:          g.Name,
			Title:         strings.ToUpper(g.Name),
			Subtotal:      money.FormatARS(g.Subtotal),
			SubtotalValue: g.Subtotal.Round(0).IntPart(),
		}
		if g.Summarized {
			s.Summary = g.Summary
			s.Note = infrastructureTag
		} else {
			lines := make([]Line, 0, len(g.Lines))
			for _, l := range g.Lines {
				ln := lineOf(l)
				ln.Label = fmt.Sprintf("%d - %s", l.Quantity, l.Name)
				lines = append(lines, ln)
			}
			s.Groups = []LineGroup{{Lines: lines}}
		}
		out = append(out, s)
	}
	return out
}

// spaceSections lists each space's lines grouped by category in catalog
// order, with prices.
func spaceSections(groups []quote.Group) []Section {
	out := make([]Section, 0, len(groups))
	for _, g := range groups {
		s := Section{
			Name:          g.Name,
			Title:         strings.ToUpper(g.Name),
			ShowPrices:    true,
			Subtotal:      money.FormatARS(g.Subtotal),
			SubtotalValue: g.Subtotal.Round(0).IntPart(),
		}
		if g.Surface != nil {
			s.Surface = g.Surface.String() + "m²"
		}
		lines := append([]quote.Line(nil), g.Lines...)
		sort.SliceStable(lines, func(i, j int) bool {
			return lines[i].Category.Order() < lines[j].Category.Order()
		})
		for _, l := range lines {
			title := strings.ToUpper(catalog.CategoryByID(l.Category).Name)
			if n := len(s.Groups); n == 0 || s.Groups[n-1].Title != title {
				s.Groups = append(s.Groups, LineGroup{Title: title})
			}
			ln := lineOf(l)
			if l.Quantity > 1 {
				ln.Label = fmt.Sprintf("• %dx %s", l.Quantity, l.Name)
			} else {
				ln.Label = "• " + l.Name
			}
			last := &s.Groups[len(s.Groups)-1]
			last.Lines = append(last.Lines, ln)
		}
		out = append(out, s)
	}
	return out
}

func lineOf(l quote.Line) Line {
	unit, _ := l.UnitPrice.Float64()
	return Line{
		Name:       l.Name,
		Quantity:   l.Quantity,
		Unit:       l.Unit,
		UnitPrice:  money.FormatARS(l.UnitPrice),
		Total:      money.FormatARS(l.Total),
		UnitValue:  unit,
		TotalValue: l.Total.Round(0).IntPart(),
	}
}

func signed(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.String()
	}
	return d.String()
}
