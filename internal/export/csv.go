package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/mmynk/natiapp/internal/format"
	"github.com/mmynk/natiapp/internal/report"
)

// bom makes spreadsheet applications read the file as UTF-8.
const bom = "\uFEFF"

// CSVHeader is the first record of a CSV export.
var CSVHeader = []string{
	"Socio",
	"Email",
	"Mes Cuota",
	"Monto",
	"Fecha Pago",
	"Estado",
	"Motivo Rechazo",
	"Fecha Confirmación",
}

func renderCSV(r *report.Report) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(bom)

	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return nil, err
	}

	for _, e := range r.Entries {
		confirmed := ""
		if e.ConfirmedAt != nil {
			confirmed = format.DateAt(inLocation(*e.ConfirmedAt, r.Location), format.Short, time.Time{})
		}
		record := []string{
			e.DisplayName,
			e.Email,
			format.MonthName(e.QuotaMonth),
			strconv.FormatInt(e.Amount, 10),
			paymentDate(r, e),
			e.Status.Label(),
			e.RejectionReason,
			confirmed,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
