package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"factura/internal/domain"
)

// Columns defines the export header row, one column set shared by the XLSX
// and CSV writers. Order is fixed: invoice header fields first, then the
// line item's own fields.
var Columns = []string{
	"Invoice Number",
	"Invoice Date",
	"Vendor Name",
	"Customer Name",
	"Currency",
	"Total Amount",
	"Description",
	"Quantity",
	"Unit Price",
	"Total Price",
}

// BuildWorkbook renders the flattened rows as a single-sheet XLSX workbook
// and returns it as bytes. An empty row slice produces a valid header-only
// workbook.
func BuildWorkbook(sheet string, rows []domain.Row) ([]byte, error) {
	if sheet == "" {
		sheet = "Invoices"
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		defaultSheet := f.GetSheetName(0)
		if defaultSheet != sheet {
			_ = f.DeleteSheet(defaultSheet)
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i := range rows {
		r := &rows[i]
		rowNum := i + 2

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, rowNum)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, strOrEmpty(r.InvoiceNumber))
		write(2, strOrEmpty(r.InvoiceDate))
		write(3, strOrEmpty(r.VendorName))
		write(4, strOrEmpty(r.CustomerName))
		write(5, strOrEmpty(r.Currency))
		writeNumber(write, 6, r.TotalAmount)
		write(7, strOrEmpty(r.Description))
		writeNumber(write, 8, r.Quantity)
		writeNumber(write, 9, r.UnitPrice)
		writeNumber(write, 10, r.TotalPrice)
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "B", 16)
	_ = f.SetColWidth(sheet, "C", "D", 28)
	_ = f.SetColWidth(sheet, "E", "F", 14)
	_ = f.SetColWidth(sheet, "G", "G", 48)
	_ = f.SetColWidth(sheet, "H", "J", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeNumber(write func(col int, v any), col int, v *float64) {
	if v == nil {
		write(col, "")
		return
	}
	write(col, *v)
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
