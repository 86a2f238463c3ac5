package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Cotización"

var xlsxColumns = []string{"A", "B", "C", "D", "E", "F"}

// RenderXLSX writes the document as a one-sheet workbook. Amounts are
// numeric cells so the sheet can be recomputed.
func RenderXLSX(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	widths := []float64{22, 44, 10, 10, 16, 16}
	for i, c := range xlsxColumns {
		if err := f.SetColWidth(sheetName, c, c, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", c, err)
		}
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}
	w := &sheetWriter{f: f, styles: styles, row: 1}

	w.title(fmt.Sprintf("Propuesta %s (%s)", doc.CotNumber, doc.TypeLabel))
	w.pair("Fecha", doc.IssueDate)
	w.pair("Cliente", doc.Client)
	if doc.Project != "" {
		w.pair("Proyecto", doc.Project)
	}
	w.pair("Evento", doc.Event)
	if doc.EventDates != "" {
		w.pair("Fecha evento", doc.EventDates)
	}
	if doc.Venue != "" {
		w.pair("Lugar", doc.Venue)
	}
	if doc.MultiSpace {
		w.pair("Espacios", fmt.Sprintf("%d", doc.SpaceCount))
	} else {
		w.pair("Superficie", doc.Surface)
		w.pair("Tipo", doc.StandType)
		w.pair("Altura", doc.Height)
	}
	if doc.Modifier != "" {
		w.pair("Modificador", doc.Modifier)
	}
	if doc.Fee != "" {
		w.pair("Fee", doc.Fee)
	}
	w.row++

	w.header([]string{"Sección", "Ítem", "Cantidad", "Unidad", "Precio unitario", "Total"})
	for _, s := range doc.Sections {
		w.section(s)
	}
	w.row++
	w.total("Subtotal", doc.SubtotalValue)
	w.total("IVA", doc.TaxValue)
	w.total("Total", doc.TotalValue)
	if w.err != nil {
		return nil, w.err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type sheetStyles struct {
	title, label, header, section, body, money, totalLabel, totalValue int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}},
		{&s.label, &excelize.Style{Font: &excelize.Font{Bold: true, Color: "#787878"}}},
		{&s.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#00AEEF"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border:    thinBorders(),
		}},
		{&s.section, &excelize.Style{Font: &excelize.Font{Bold: true, Color: "#00AEEF"}, Border: thinBorders()}},
		{&s.body, &excelize.Style{Border: thinBorders()}},
		{&s.money, &excelize.Style{Border: thinBorders(), CustomNumFmt: strPtr(`"$"#,##0`)}},
		{&s.totalLabel, &excelize.Style{Font: &excelize.Font{Bold: true}, Alignment: &excelize.Alignment{Horizontal: "right"}}},
		{&s.totalValue, &excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: strPtr(`"$"#,##0`)}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return s, fmt.Errorf("create style: %w", err)
		}
		*d.dst = id
	}
	return s, nil
}

func thinBorders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "#D0D0D0", Style: 1},
		{Type: "right", Color: "#D0D0D0", Style: 1},
		{Type: "top", Color: "#D0D0D0", Style: 1},
		{Type: "bottom", Color: "#D0D0D0", Style: 1},
	}
}

// sheetWriter appends rows top to bottom and keeps the first error.
type sheetWriter struct {
	f      *excelize.File
	styles sheetStyles
	row    int
	err    error
}

func (w *sheetWriter) cell(col string) string {
	return fmt.Sprintf("%s%d", col, w.row)
}

func (w *sheetWriter) set(col string, value any, style int) {
	if w.err != nil {
		return
	}
	if s, ok := value.(string); ok {
		value = sanitizeCell(s)
	}
	if err := w.f.SetCellValue(sheetName, w.cell(col), value); err != nil {
		w.err = fmt.Errorf("set %s: %w", w.cell(col), err)
		return
	}
	if style != 0 {
		if err := w.f.SetCellStyle(sheetName, w.cell(col), w.cell(col), style); err != nil {
			w.err = fmt.Errorf("style %s: %w", w.cell(col), err)
		}
	}
}

func (w *sheetWriter) title(text string) {
	if w.err == nil {
		if err := w.f.MergeCell(sheetName, w.cell("A"), w.cell("F")); err != nil {
			w.err = fmt.Errorf("merge title: %w", err)
		}
	}
	w.set("A", text, w.styles.title)
	w.row += 2
}

func (w *sheetWriter) pair(label, value string) {
	w.set("A", label, w.styles.label)
	w.set("B", value, 0)
	w.row++
}

func (w *sheetWriter) header(titles []string) {
	for i, t := range titles {
		w.set(xlsxColumns[i], t, w.styles.header)
	}
	w.row++
}

func (w *sheetWriter) section(s Section) {
	w.set("A", s.Name, w.styles.section)
	switch {
	case s.Summary != "":
		w.set("B", s.Summary, w.styles.body)
	case s.Surface != "":
		w.set("B", s.Surface, w.styles.body)
	}
	w.set("F", s.SubtotalValue, w.styles.money)
	w.row++
	for _, g := range s.Groups {
		for _, l := range g.Lines {
			w.set("A", g.Title, w.styles.body)
			w.set("B", l.Name, w.styles.body)
			w.set("C", l.Quantity, w.styles.body)
			w.set("D", l.Unit, w.styles.body)
			w.set("E", l.UnitValue, w.styles.money)
			w.set("F", l.TotalValue, w.styles.money)
			w.row++
		}
	}
}

func (w *sheetWriter) total(label string, value int64) {
	w.set("E", label, w.styles.totalLabel)
	w.set("F", value, w.styles.totalValue)
	w.row++
}

// sanitizeCell keeps user text from being read as a formula.
func sanitizeCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@", rune(s[0])) {
		return "'" + s
	}
	return s
}

func strPtr(s string) *string { return &s }
