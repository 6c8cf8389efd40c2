package household

import (
	"encoding/csv"
	"io"
	"strings"

	"AgencyFunnelCRM/api/funnel/ingest"
)

// ExportRow is one household line as the dashboard table displays it.
type ExportRow struct {
	Name         string
	Zip          string
	Products     []string
	PremiumCents int64
	LeadSource   string
	Objection    string
	Producer     string
	Status       string
}

// exportHeader fixes the column order of the exported file.
var exportHeader = []string{"Name", "ZIP", "Products", "Premium", "Lead Source", "Objection", "Producer", "Status"}

// WriteCSV emits the displayed household rows as CSV. encoding/csv applies
// standard quoting, so names containing commas and product lists joined with
// ", " land in single quoted cells.
func WriteCSV(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, row := range rows {
		rec := []string{
			row.Name,
			row.Zip,
			strings.Join(row.Products, ", "),
			ingest.FormatCents(row.PremiumCents),
			row.LeadSource,
			row.Objection,
			row.Producer,
			row.Status,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
