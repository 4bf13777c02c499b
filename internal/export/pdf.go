package export

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/mmynk/natiapp/internal/format"
	"github.com/mmynk/natiapp/internal/models"
	"github.com/mmynk/natiapp/internal/report"
)

type rgb struct{ r, g, b int }

var (
	emerald   = rgb{16, 185, 129}
	gray100   = rgb{243, 244, 246}
	gray50    = rgb{249, 250, 251}
	gray500   = rgb{107, 114, 128}
	yellow100 = rgb{254, 243, 199}
	yellow900 = rgb{146, 64, 14}
	white     = rgb{255, 255, 255}
	black     = rgb{0, 0, 0}
)

// statusColors maps a status to its card background and text colour.
var statusColors = map[models.Status][2]rgb{
	models.StatusConfirmed: {{220, 252, 231}, {21, 128, 61}},
	models.StatusPending:   {{254, 249, 195}, {161, 98, 7}},
	models.StatusRejected:  {{254, 226, 226}, {185, 28, 28}},
}

const (
	margin  = 14.0
	lineGap = 5.0
)

// entryColumns are the widths of the contribution table, in mm.
var entryColumns = []float64{40, 25, 25, 23, 22, 47}

// statColumns are the widths of the per-member table, in mm.
var statColumns = []float64{50, 18, 18, 18, 18, 30, 30}

// compressPDF deflates page streams. Tests turn it off to read page text.
var compressPDF = true

type pdfWriter struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	width float64
}

func (w *pdfWriter) fill(c rgb)  { w.pdf.SetFillColor(c.r, c.g, c.b) }
func (w *pdfWriter) color(c rgb) { w.pdf.SetTextColor(c.r, c.g, c.b) }

func (w *pdfWriter) font(style string, size float64) {
	w.pdf.SetFont("Helvetica", style, size)
}

func (w *pdfWriter) text(x, y float64, s string) {
	w.pdf.Text(x, y, w.tr(s))
}

// centered writes s centred on the page at height y.
func (w *pdfWriter) centered(y float64, s string) {
	w.pdf.SetXY(0, y)
	w.pdf.CellFormat(w.width, 6, w.tr(s), "", 0, "C", false, 0, "")
}

func (w *pdfWriter) banner(height float64) {
	w.fill(emerald)
	w.pdf.Rect(0, 0, w.width, height, "F")
	w.color(white)
}

func renderPDF(r *report.Report, now time.Time) ([]byte, error) {
	n := r.Natillera

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(now)
	pdf.SetCompression(compressPDF)
	pdf.SetTitle("Reporte "+n.Name, true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AliasNbPages("")

	width, height := pdf.GetPageSize()
	w := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), width: width}

	pdf.SetFooterFunc(func() {
		pdf.SetY(height - 14)
		w.font("", 8)
		w.color(gray500)
		footer := fmt.Sprintf("Página %d de {nb} - %s", pdf.PageNo(), n.Name)
		pdf.CellFormat(0, 6, w.tr(footer), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	w.header(r, now)
	y := w.metadata(r, 50)
	y = w.filters(r, y)
	y = w.cards(r, y)
	w.entryTable(r, y)

	if len(r.PerMember) > 0 {
		pdf.AddPage()
		w.statTable(r)
	}

	if err := pdf.Error(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *pdfWriter) header(r *report.Report, now time.Time) {
	w.banner(40)
	w.font("B", 20)
	w.centered(8, "REPORTE DE NATILLERA")
	w.font("B", 13)
	w.centered(18, format.Upper(r.Natillera.Name))
	w.font("", 9)
	w.centered(27, "Generado: "+format.DateAt(now, format.Short, now))
}

func (w *pdfWriter) metadata(r *report.Report, y float64) float64 {
	n := r.Natillera
	box := 85.0

	w.fill(gray100)
	w.pdf.Rect(margin, y, box, 25, "F")
	w.pdf.Rect(w.width-margin-box, y, box, 25, "F")

	w.font("", 9)
	w.color(gray500)
	w.text(margin+5, y+8, "MONTO CUOTA")
	w.text(w.width-margin-box+5, y+8, "PERIODICIDAD")

	w.font("B", 13)
	w.color(black)
	w.text(margin+5, y+18, format.Currency(n.QuotaAmount))
	w.text(w.width-margin-box+5, y+18, format.Upper(n.Periodicity.Label()))

	return y + 35
}

// filters draws the applied-filters block when any filter is active.
func (w *pdfWriter) filters(r *report.Report, y float64) float64 {
	lines := filterLines(r)
	if len(lines) == 0 {
		return y
	}

	boxHeight := 12 + float64(len(lines))*lineGap + 4
	w.fill(yellow100)
	w.pdf.Rect(margin, y, w.width-2*margin, boxHeight, "F")

	w.font("B", 10)
	w.color(yellow900)
	w.text(margin+5, y+7, "Filtros aplicados:")

	w.font("", 8)
	ly := y + 12
	for _, l := range lines {
		w.text(margin+7, ly+1, "- "+l[0]+": "+l[1])
		ly += lineGap
	}

	return y + boxHeight + 8
}

func (w *pdfWriter) cards(r *report.Report, y float64) float64 {
	w.font("B", 12)
	w.color(black)
	w.text(margin, y, "RESUMEN GENERAL")
	y += 4

	s := r.Summary
	cards := []struct {
		label  string
		status models.Status
		count  int
		amount int64
	}{
		{"Confirmados", models.StatusConfirmed, s.Confirmed, s.ConfirmedAmount},
		{"Pendientes", models.StatusPending, s.Pending, s.PendingAmount},
		{"Rechazados", models.StatusRejected, s.Rejected, s.RejectedAmount},
	}

	gap := 7.0
	cardWidth := (w.width - 2*margin - 2*gap) / 3
	for i, c := range cards {
		x := margin + float64(i)*(cardWidth+gap)
		colors := statusColors[c.status]

		w.fill(colors[0])
		w.pdf.Rect(x, y, cardWidth, 28, "F")
		w.color(colors[1])
		w.font("", 9)
		w.text(x+5, y+7, c.label)
		w.font("B", 18)
		w.text(x+5, y+18, strconv.Itoa(c.count))
		w.font("", 8)
		w.text(x+5, y+24, format.Currency(c.amount))
	}

	return y + 38
}

func (w *pdfWriter) tableHeader(widths []float64, titles ...string) {
	w.fill(emerald)
	w.color(white)
	w.font("B", 9)
	for i, t := range titles {
		w.pdf.CellFormat(widths[i], 8, w.tr(t), "", 0, "C", true, 0, "")
	}
	w.pdf.Ln(-1)
}

func (w *pdfWriter) entryTable(r *report.Report, y float64) {
	w.font("B", 12)
	w.color(black)
	w.text(margin, y, fmt.Sprintf("DETALLE DE APORTES (%d)", len(r.Entries)))

	w.pdf.SetXY(margin, y+3)
	if len(r.Entries) == 0 {
		w.font("", 9)
		w.color(gray500)
		w.text(margin, y+12, "No hay aportes que coincidan con los filtros")
		return
	}

	titles := []string{"Socio", "Mes", "Monto", "Fecha", "Estado", "Observación"}
	w.tableHeader(entryColumns, titles...)

	_, pageHeight := w.pdf.GetPageSize()
	for i, e := range r.Entries {
		if w.pdf.GetY()+7 > pageHeight-20 {
			w.pdf.AddPage()
			w.tableHeader(entryColumns, titles...)
		}

		w.fill(white)
		if i%2 == 1 {
			w.fill(gray50)
		}
		cells := []struct {
			text  string
			align string
		}{
			{format.Truncate(e.DisplayName, 22), "L"},
			{format.MonthName(e.QuotaMonth), "C"},
			{format.Currency(e.Amount), "R"},
			{paymentDate(r, e), "C"},
			{format.Upper(e.Status.Label()), "C"},
			{note(e, noteWidth), "L"},
		}
		for j, c := range cells {
			w.font("", 8)
			w.color(black)
			if j == 4 {
				w.font("B", 8)
				w.color(statusColors[e.Status][1])
			}
			w.pdf.CellFormat(entryColumns[j], 7, w.tr(c.text), "", 0, c.align, true, 0, "")
		}
		w.pdf.Ln(-1)
	}
}

func (w *pdfWriter) statTable(r *report.Report) {
	w.banner(30)
	w.font("B", 16)
	w.centered(12, "ESTADÍSTICAS POR SOCIO")

	w.pdf.SetXY(margin, 40)
	titles := []string{"Socio", "Total", "Conf.", "Pend.", "Rech.", "Monto Conf.", "Monto Pend."}
	w.tableHeader(statColumns, titles...)

	_, pageHeight := w.pdf.GetPageSize()
	for _, m := range r.PerMember {
		if w.pdf.GetY()+7 > pageHeight-20 {
			w.pdf.AddPage()
			w.tableHeader(statColumns, titles...)
		}

		cells := []struct {
			text  string
			align string
			color rgb
		}{
			{format.Truncate(m.DisplayName, 28), "L", black},
			{strconv.Itoa(m.Count), "C", black},
			{strconv.Itoa(m.Confirmed), "C", statusColors[models.StatusConfirmed][1]},
			{strconv.Itoa(m.Pending), "C", statusColors[models.StatusPending][1]},
			{strconv.Itoa(m.Rejected), "C", statusColors[models.StatusRejected][1]},
			{format.Currency(m.ConfirmedAmount), "R", black},
			{format.Currency(m.PendingAmount), "R", black},
		}
		w.font("", 9)
		for j, c := range cells {
			w.color(c.color)
			w.pdf.CellFormat(statColumns[j], 7, w.tr(c.text), "1", 0, c.align, false, 0, "")
		}
		w.pdf.Ln(-1)
	}
}
