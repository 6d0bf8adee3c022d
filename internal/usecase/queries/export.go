package queries

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"studio-booking/internal/domain/booking"
	"studio-booking/internal/pkg/errs"
	"studio-booking/internal/usecase/commands"
	"studio-booking/internal/usecase/readmodel"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Bookings"

var exportHeaders = []string{
	"ID", "Created", "Status", "Customer", "WhatsApp", "Category",
	"Booking Date", "Total Price", "Paid", "Balance", "Coupon", "Notes",
}

type ExportQueries interface {
	ExportBookingsXLSX(ctx context.Context, status *booking.Status) ([]byte, error)
}

type exportQueriesImpl struct {
	bookings BookingQueries
}

func NewExportQueries(bookings BookingQueries) ExportQueries {
	return &exportQueriesImpl{bookings: bookings}
}

// ExportBookingsXLSX renders the booking list as a spreadsheet for the admin
// back office.
func (q *exportQueriesImpl) ExportBookingsXLSX(ctx context.Context, status *booking.Status) ([]byte, error) {
	views, err := q.bookings.List(ctx, status)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, errs.Mark(err, commands.ErrDatabaseOperationFailed)
	}
	f.SetActiveSheet(index)

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(exportSheet, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	_ = f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle)

	for i, v := range views {
		writeExportRow(f, i+2, v)
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 38)
	_ = f.SetColWidth(exportSheet, "B", "L", 18)
	_ = f.DeleteSheet("Sheet1")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errs.Mark(err, commands.ErrDatabaseOperationFailed)
	}
	return buf.Bytes(), nil
}

func writeExportRow(f *excelize.File, row int, v *readmodel.BookingView) {
	coupon := ""
	if v.CouponCode != nil {
		coupon = *v.CouponCode
	}

	values := []any{
		v.ID.String(),
		v.CreatedAt.Format("2006-01-02 15:04"),
		v.Status,
		v.CustomerName,
		v.CustomerWhatsApp,
		v.Category,
		v.BookingDate.Format("2006-01-02 15:04"),
		v.TotalPrice,
		v.AmountPaid,
		v.Balance,
		coupon,
		strings.TrimSpace(v.Notes),
	}
	for col, value := range values {
		cell := fmt.Sprintf("%s%d", columnName(col), row)
		_ = f.SetCellValue(exportSheet, cell, value)
	}
}

func columnName(index int) string {
	name, _ := excelize.ColumnNumberToName(index + 1)
	return name
}
