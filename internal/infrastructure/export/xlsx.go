// Package export renders attendee lists as downloadable spreadsheets.
package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	appevent "github.com/t1tandr/uevent/internal/application/event"
)

const (
	sheetName   = "Attendees"
	xlsxMIME    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	timeLayout  = "2006-01-02 15:04"
	headerColor = "#E6F3FF"
)

// AttendeeHeader is the column order of every attendee export
var AttendeeHeader = []string{
	"Ticket ID",
	"Name",
	"Email",
	"Status",
	"Price",
	"Payment Status",
	"Payment Amount",
	"Purchased At",
}

var columnWidths = []float64{38, 24, 30, 12, 10, 16, 16, 18}

// XLSXExporter writes attendee lists as Excel workbooks
type XLSXExporter struct{}

// NewXLSXExporter creates an Excel exporter
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

func (x *XLSXExporter) ContentType() string { return xlsxMIME }
func (x *XLSXExporter) Extension() string { return "xlsx" }

// Export builds a single-sheet workbook: a title row, a styled header and
// one row per attendee.
func (x *XLSXExporter) Export(ctx context.Context, sheet appevent.AttendeeSheet) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	title := sheet.EventTitle
	if !sheet.EventDate.IsZero() {
		title += " (" + sheet.EventDate.Format(timeLayout) + ")"
	}
	if err := f.SetCellValue(sheetName, "A1", title); err != nil {
		return nil, err
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", titleStyle); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	const headerRow = 3
	for i, h := range AttendeeHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("set header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, err
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheetName, col, col, columnWidths[i]); err != nil {
			return nil, err
		}
	}

	for i, a := range sheet.Attendees {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cell, err := excelize.CoordinatesToCellName(1, headerRow+1+i)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, attendeeRow(a)); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// attendeeRow flattens an attendee into AttendeeHeader order. Money is
// written as float so spreadsheet formulas work on it.
func attendeeRow(a appevent.AttendeeResponse) *[]any {
	paymentAmount := any("")
	if a.PaymentAmount != nil {
		paymentAmount = a.PaymentAmount.InexactFloat64()
	}
	row := []any{
		a.TicketID.String(),
		a.User.Name,
		a.User.Email,
		a.Status,
		a.Price.InexactFloat64(),
		a.PaymentStatus,
		paymentAmount,
		a.PurchasedAt.Format(timeLayout),
	}
	return &row
}

var _ appevent.AttendeeExporter = (*XLSXExporter)(nil)
