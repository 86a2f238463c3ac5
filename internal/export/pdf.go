package export

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	cyan      = &props.Color{Red: 0, Green: 174, Blue: 239}
	white     = &props.Color{Red: 255, Green: 255, Blue: 255}
	midGray   = &props.Color{Red: 120, Green: 120, Blue: 120}
	darkGray  = &props.Color{Red: 50, Green: 50, Blue: 50}
	surfaceBg = &props.Color{Red: 242, Green: 244, Blue: 246}
	spaceBg   = &props.Color{Red: 40, Green: 40, Blue: 40}
)

// RenderPDF draws the proposal as an A4 PDF.
func RenderPDF(doc Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(12).
		WithRightMargin(15).
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   midGray,
		}).
		Build()

	m := maroto.New(cfg)

	addHeader(m, doc)
	addProjectCard(m, doc)
	addTitle(m)
	for _, s := range doc.Sections {
		if doc.MultiSpace {
			addSpaceSection(m, s)
		} else {
			addCategorySection(m, s)
		}
	}
	addTotal(m, doc)
	addFooter(m, doc)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate quotation pdf: %w", err)
	}
	return out.GetBytes(), nil
}

func addHeader(m core.Maroto, doc Document) {
	m.AddRows(
		row.New(10).Add(
			col.New(8).Add(text.New("MEPEX", props.Text{
				Size:  18,
				Style: fontstyle.Bold,
				Align: align.Left,
				Color: cyan,
			})),
			col.New(4).Add(text.New(doc.TypeLabel, props.Text{
				Size:  9,
				Style: fontstyle.Bold,
				Align: align.Center,
				Color: white,
				Top:   2,
			})).WithStyle(&props.Cell{BackgroundColor: cyan}),
		),
		row.New(6).Add(
			col.New(8).Add(text.New(doc.CotNumber, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Left})),
			col.New(4).Add(text.New(doc.IssueDate, props.Text{Size: 8, Align: align.Right, Color: midGray})),
		),
		row.New(1).WithStyle(&props.Cell{BackgroundColor: cyan}),
		row.New(4),
	)
}

func addProjectCard(m core.Maroto, doc Document) {
	card := &props.Cell{BackgroundColor: surfaceBg}
	label := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Left, Color: cyan, Left: 3, Top: 1}
	value := props.Text{Size: 9, Align: align.Left, Color: darkGray, Left: 3}

	left := []string{"Cliente: " + doc.Client}
	if doc.Project != "" {
		left = append(left, "Proyecto: "+doc.Project)
	}
	left = append(left, "Evento: "+doc.Event)

	var right []string
	if doc.MultiSpace {
		right = append(right, fmt.Sprintf("Espacios: %d", doc.SpaceCount))
	} else {
		right = append(right,
			"Superficie: "+doc.Surface,
			fmt.Sprintf("Tipo: %s  |  Altura: %s", doc.StandType, doc.Height))
	}
	if doc.EventDates != "" {
		right = append(right, "Fecha evento: "+doc.EventDates)
	}
	if doc.Venue != "" {
		right = append(right, "Lugar: "+doc.Venue)
	}

	m.AddRows(row.New(7).Add(col.New(12).Add(text.New("D A T O S   D E L   P R O Y E C T O", label))).WithStyle(card))
	for i := 0; i < max(len(left), len(right)); i++ {
		m.AddRows(row.New(6).Add(
			col.New(6).Add(text.New(at(left, i), value)),
			col.New(6).Add(text.New(at(right, i), value)),
		).WithStyle(card))
	}
	m.AddRows(row.New(6))
}

func addTitle(m core.Maroto) {
	m.AddRows(
		row.New(10).Add(col.New(12).Add(text.New("P R O P U E S T A   D E   C O T I Z A C I Ó N", props.Text{
			Size:  12,
			Style: fontstyle.Bold,
			Align: align.Center,
		}))),
		row.New(2),
	)
}

func addCategorySection(m core.Maroto, s Section) {
	m.AddRows(row.New(7).Add(col.New(12).Add(text.New(s.Title, props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Left,
		Color: cyan,
	}))))
	body := props.Text{Size: 9, Align: align.Left, Color: darkGray, Left: 5}
	if s.Summary != "" {
		m.AddRows(row.New(5).Add(col.New(12).Add(text.New(s.Summary, body))))
	}
	if s.Note != "" {
		m.AddRows(row.New(6).Add(col.New(12).Add(text.New(s.Note, props.Text{
			Size:  8,
			Style: fontstyle.Italic,
			Align: align.Left,
			Color: midGray,
			Left:  5,
		}))))
	}
	for _, g := range s.Groups {
		for _, l := range g.Lines {
			m.AddRows(row.New(5).Add(col.New(12).Add(text.New(l.Label, body))))
		}
	}
	m.AddRows(row.New(4))
}

func addSpaceSection(m core.Maroto, s Section) {
	head := &props.Cell{BackgroundColor: spaceBg}
	m.AddRows(row.New(8).Add(
		col.New(9).Add(text.New(s.Title, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Left, Color: cyan, Left: 3, Top: 1.5})),
		col.New(3).Add(text.New(s.Surface, props.Text{Size: 8, Align: align.Right, Color: white, Right: 3, Top: 2})),
	).WithStyle(head))

	body := props.Text{Size: 9, Align: align.Left, Color: darkGray, Left: 6}
	price := props.Text{Size: 9, Align: align.Right}
	for _, g := range s.Groups {
		m.AddRows(row.New(6).Add(col.New(12).Add(text.New(g.Title, props.Text{
			Size:  9,
			Style: fontstyle.Bold,
			Align: align.Left,
			Color: cyan,
			Left:  3,
			Top:   1,
		}))))
		for _, l := range g.Lines {
			m.AddRows(row.New(5).Add(
				col.New(9).Add(text.New(l.Label, body)),
				col.New(3).Add(text.New(l.Total, price)),
			))
		}
	}
	m.AddRows(
		row.New(7).Add(
			col.New(9).Add(text.New("Subtotal "+s.Name, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Left, Color: midGray, Left: 4, Top: 1})),
			col.New(3).Add(text.New(s.Subtotal, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right, Color: cyan, Top: 1})),
		),
		row.New(4),
	)
}

func addTotal(m core.Maroto, doc Document) {
	box := &props.Cell{BackgroundColor: cyan}
	m.AddRows(
		row.New(4),
		row.New(10).Add(
			col.New(8).Add(text.New("T O T A L   D E   L A   P R O P U E S T A", props.Text{
				Size: 11, Style: fontstyle.Bold, Align: align.Left, Color: white, Left: 4, Top: 3,
			})),
			col.New(4).Add(text.New(doc.Total, props.Text{
				Size: 14, Style: fontstyle.Bold, Align: align.Right, Color: white, Right: 4, Top: 2,
			})),
		).WithStyle(box),
		row.New(7).Add(col.New(12).Add(text.New(doc.TaxSummary, props.Text{
			Size: 8, Align: align.Right, Color: white, Right: 4, Top: 1,
		}))).WithStyle(box),
		row.New(3),
	)
	for _, adj := range []string{doc.Modifier, doc.Fee} {
		if adj == "" {
			continue
		}
		m.AddRows(row.New(4).Add(col.New(12).Add(text.New(adj, props.Text{Size: 7, Align: align.Right, Color: midGray}))))
	}
	for _, l := range Legends {
		m.AddRows(row.New(4).Add(col.New(12).Add(text.New(l, props.Text{Size: 8, Align: align.Left, Color: midGray}))))
	}
}

func addFooter(m core.Maroto, doc Document) {
	small := props.Text{Size: 7, Align: align.Left, Color: midGray}
	contact := props.Text{Size: 8, Align: align.Right, Color: midGray}
	link := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right, Color: cyan}

	left := append(append([]string(nil), Terms...), "Ref: "+doc.CotNumber)
	m.AddRows(
		row.New(6),
		row.New(1).WithStyle(&props.Cell{BackgroundColor: cyan}),
		row.New(2),
	)
	m.AddRows(
		row.New(4).Add(
			col.New(7).Add(text.New(left[0], small)),
			col.New(5).Add(text.New("WhatsApp: "+Contact.WhatsApp, link)),
		),
		row.New(4).Add(
			col.New(7).Add(text.New(left[1], small)),
			col.New(5).Add(text.New("Web: "+Contact.Web, link)),
		),
		row.New(4).Add(
			col.New(7).Add(text.New(left[2], small)),
			col.New(5).Add(text.New(Contact.Address, contact)),
		),
	)
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
