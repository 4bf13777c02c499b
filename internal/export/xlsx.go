package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mmynk/natiapp/internal/format"
	"github.com/mmynk/natiapp/internal/report"
)

// Sheet names of the XLSX export.
const (
	SheetSummary   = "Resumen"
	SheetEntries   = "Aportes"
	SheetPerMember = "Por Socio"
)

// TotalsLabel starts the trailing totals row of the per-member sheet.
const TotalsLabel = "TOTALES"

func renderXLSX(r *report.Report, now time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("failed to name summary sheet: %w", err)
	}
	for _, name := range []string{SheetEntries, SheetPerMember} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	title, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"10B981"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create title style: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D1FAE5"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	w := &sheetWriter{f: f, title: title, header: header}
	w.summary(r, now)
	w.entries(r)
	w.perMember(r)
	if w.err != nil {
		return nil, w.err
	}

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter appends rows to a sheet and keeps the first error.
type sheetWriter struct {
	f      *excelize.File
	title  int
	header int
	sheet  string
	row    int
	err    error
}

func (w *sheetWriter) start(sheet string, widths ...float64) {
	w.sheet = sheet
	w.row = 0
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			w.fail(err)
			return
		}
		w.fail(w.f.SetColWidth(sheet, col, col, width))
	}
}

func (w *sheetWriter) fail(err error) {
	if w.err == nil && err != nil {
		w.err = fmt.Errorf("sheet %s: %w", w.sheet, err)
	}
}

func (w *sheetWriter) cell(col int) string {
	name, err := excelize.CoordinatesToCellName(col, w.row)
	w.fail(err)
	return name
}

// add writes values on the next row and returns its number.
func (w *sheetWriter) add(values ...interface{}) int {
	w.row++
	if len(values) > 0 {
		w.fail(w.f.SetSheetRow(w.sheet, w.cell(1), &values))
	}
	return w.row
}

func (w *sheetWriter) titleRow(text string, span int) {
	w.add(text)
	w.fail(w.f.MergeCell(w.sheet, w.cell(1), w.cell(span)))
	w.fail(w.f.SetCellStyle(w.sheet, w.cell(1), w.cell(span), w.title))
}

func (w *sheetWriter) headerRow(values ...interface{}) {
	w.add(values...)
	w.fail(w.f.SetCellStyle(w.sheet, w.cell(1), w.cell(len(values)), w.header))
}

func (w *sheetWriter) summary(r *report.Report, now time.Time) {
	n := r.Natillera
	w.start(SheetSummary, 25, 30, 20)

	w.titleRow("REPORTE DE NATILLERA", 3)
	w.add()
	w.headerRow("Información General")
	w.add("Natillera:", n.Name)
	w.add("Monto Cuota:", format.Currency(n.QuotaAmount))
	w.add("Periodicidad:", n.Periodicity.Label())
	w.add("Fecha de Generación:", format.DateAt(now, format.Short, now))
	w.add()

	w.headerRow("Filtros Aplicados")
	lines := filterLines(r)
	if len(lines) == 0 {
		w.add("Sin filtros aplicados")
	}
	for _, l := range lines {
		w.add(l[0]+":", l[1])
	}
	w.add()

	s := r.Summary
	w.headerRow("Estadísticas Generales")
	w.add()
	w.headerRow("Concepto", "Cantidad", "Monto")
	w.add("Total de Aportes", s.Count, "")
	w.add("Confirmados", s.Confirmed, format.Currency(s.ConfirmedAmount))
	w.add("Pendientes", s.Pending, format.Currency(s.PendingAmount))
	w.add("Rechazados", s.Rejected, format.Currency(s.RejectedAmount))
}

func (w *sheetWriter) entries(r *report.Report) {
	w.start(SheetEntries, 25, 15, 15, 15, 15, 45)

	w.titleRow("DETALLE DE APORTES", 6)
	w.add()
	w.headerRow("Socio", "Mes", "Monto", "Fecha Pago", "Estado", "Observación")
	for _, e := range r.Entries {
		w.add(
			e.DisplayName,
			format.MonthName(e.QuotaMonth),
			e.Amount,
			paymentDate(r, e),
			format.Upper(e.Status.Label()),
			note(e, 0),
		)
	}
}

func (w *sheetWriter) perMember(r *report.Report) {
	w.start(SheetPerMember, 25, 10, 10, 10, 10, 18, 18)

	w.titleRow("ESTADÍSTICAS POR SOCIO", 7)
	w.add()
	w.headerRow("Socio", "Total", "Conf.", "Pend.", "Rech.", "Monto Confirmado", "Monto Pendiente")
	for _, m := range r.PerMember {
		w.add(m.DisplayName, m.Count, m.Confirmed, m.Pending, m.Rejected, m.ConfirmedAmount, m.PendingAmount)
	}

	s := r.Summary
	w.add()
	w.headerRow(TotalsLabel, s.Count, s.Confirmed, s.Pending, s.Rejected, s.ConfirmedAmount, s.PendingAmount)
}
