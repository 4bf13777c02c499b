// Package export renders a report into downloadable PDF, XLSX and CSV artifacts.
// Generators never filter: they render exactly the entries of the report they
// are handed.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmynk/natiapp/internal/format"
	"github.com/mmynk/natiapp/internal/models"
	"github.com/mmynk/natiapp/internal/report"
)

// Format names an export format.
type Format string

const (
	PDF  Format = "pdf"
	XLSX Format = "xlsx"
	CSV  Format = "csv"
)

// Formats lists the supported formats.
var Formats = []Format{PDF, XLSX, CSV}

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case PDF, XLSX, CSV:
		return f, nil
	}
	return "", &models.ValidationError{Field: "format", Message: fmt.Sprintf("formato no soportado %q", s)}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case PDF:
		return "application/pdf"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case CSV:
		return "text/csv; charset=utf-8"
	}
	return "application/octet-stream"
}

// Message is the user-facing error shown when the format fails to generate.
func (f Format) Message() string {
	switch f {
	case PDF:
		return "No se pudo generar el archivo PDF"
	case XLSX:
		return "No se pudo generar el archivo Excel"
	case CSV:
		return "No se pudo generar el archivo CSV"
	}
	return "No se pudo generar el archivo"
}

// Artifact is a generated file.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Options configures generation.
type Options struct {
	// Now stamps the filename and the "generated" line. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) now(loc *time.Location) time.Time {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc)
}

// Error is a generation failure of one format.
type Error struct {
	Format Format
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("export: %s: %v", e.Format, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Generate renders r in the given format.
func Generate(f Format, r *report.Report, opts Options) (*Artifact, error) {
	if r == nil || r.Natillera == nil {
		return nil, &Error{Format: f, Err: fmt.Errorf("empty report")}
	}

	now := opts.now(r.Location)

	var data []byte
	var err error
	switch f {
	case PDF:
		data, err = renderPDF(r, now)
	case XLSX:
		data, err = renderXLSX(r, now)
	case CSV:
		data, err = renderCSV(r)
	default:
		return nil, &Error{Format: f, Err: fmt.Errorf("unsupported format")}
	}
	if err != nil {
		return nil, &Error{Format: f, Err: err}
	}

	return &Artifact{
		Filename:    Filename(f, r.Natillera.Name, now),
		ContentType: f.ContentType(),
		Data:        data,
	}, nil
}

// Filename builds the download name: the natillera name with whitespace
// replaced by underscores plus a date (PDF, XLSX) or a millisecond
// timestamp (CSV).
func Filename(f Format, name string, now time.Time) string {
	safe := format.SafeFilename(name)
	switch f {
	case PDF:
		return fmt.Sprintf("Reporte_%s_%s.pdf", safe, now.Format(time.DateOnly))
	case XLSX:
		return fmt.Sprintf("reporte_%s_%s.xlsx", safe, now.Format(time.DateOnly))
	default:
		return fmt.Sprintf("reporte_%s_%d.%s", safe, now.UnixMilli(), f)
	}
}

// noteWidth bounds the rejection note shown in the PDF table.
const noteWidth = 35

// note is the observation column: the rejection reason of rejected
// entries, "-" otherwise.
func note(e report.Entry, max int) string {
	if e.Status != models.StatusRejected || e.RejectionReason == "" {
		return "-"
	}
	if max > 0 {
		return format.Truncate(e.RejectionReason, max)
	}
	return e.RejectionReason
}

// paymentDate renders the entry's payment date in the report location.
func paymentDate(r *report.Report, e report.Entry) string {
	return format.DateAt(inLocation(e.PaymentDate(), r.Location), format.Short, time.Time{})
}

func inLocation(t time.Time, loc *time.Location) time.Time {
	if loc == nil || t.IsZero() {
		return t
	}
	return t.In(loc)
}

// filterLines describes the active filters, one label/value pair per line,
// in the order member, status, month, range.
func filterLines(r *report.Report) [][2]string {
	f := r.Filter
	var lines [][2]string
	if f.MemberID != "" {
		lines = append(lines, [2]string{"Socio", r.MemberName(f.MemberID)})
	}
	if f.Status != "" {
		lines = append(lines, [2]string{"Estado", f.Status.Label()})
	}
	if f.QuotaMonth != "" {
		lines = append(lines, [2]string{"Mes", format.MonthName(f.QuotaMonth)})
	}
	if !f.DateFrom.IsZero() || !f.DateTo.IsZero() {
		var parts []string
		if !f.DateFrom.IsZero() {
			parts = append(parts, "desde "+format.DateAt(inLocation(f.DateFrom, r.Location), format.Short, time.Time{}))
		}
		if !f.DateTo.IsZero() {
			parts = append(parts, "hasta "+format.DateAt(inLocation(f.DateTo, r.Location), format.Short, time.Time{}))
		}
		lines = append(lines, [2]string{"Rango", strings.Join(parts, " ")})
	}
	return lines
}
