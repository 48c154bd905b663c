package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"factura/internal/domain"
)

// BOM is the UTF-8 byte order mark, written before CSV output for Excel
// compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes the flattened rows as CSV to w, BOM and header included.
// An empty row slice yields a header-only file.
func WriteCSV(w io.Writer, rows []domain.Row) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for i := range rows {
		if err := cw.Write(rowToRecord(&rows[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func rowToRecord(r *domain.Row) []string {
	return []string{
		strOrEmpty(r.InvoiceNumber),
		strOrEmpty(r.InvoiceDate),
		strOrEmpty(r.VendorName),
		strOrEmpty(r.CustomerName),
		strOrEmpty(r.Currency),
		numOrEmpty(r.TotalAmount),
		strOrEmpty(r.Description),
		numOrEmpty(r.Quantity),
		numOrEmpty(r.UnitPrice),
		numOrEmpty(r.TotalPrice),
	}
}

func numOrEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
