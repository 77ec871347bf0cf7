package export

import (
	"fmt"
	"io"
	"time"

	"sportspot/internal/models"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Bookings"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{
	"Date", "Start", "End", "Venue", "User", "Full name", "Student number",
	"Participants", "Equipment", "Status", "Notes", "Created",
}

var statusColors = map[models.BookingStatus]string{
	models.StatusConfirmed: "#C6EFCE",
	models.StatusPending:   "#FFEB9C",
	models.StatusCancelled: "#FFC7CE",
}

// FileName names the export of the given period.
func FileName(from, to time.Time) string {
	return fmt.Sprintf("bookings_%s_to_%s.xlsx", from.Format(models.DateLayout), to.Format(models.DateLayout))
}

// WriteBookings renders the bookings of [from, to] as one XLSX sheet.
func WriteBookings(w io.Writer, from, to time.Time, bookings []*models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(SheetName); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	_ = f.SetCellValue(SheetName, "A1", fmt.Sprintf("Period: %s - %s",
		from.Format(models.DateLayout), to.Format(models.DateLayout)))
	_ = f.MergeCell(SheetName, "A1", lastCol+"1")
	if titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err == nil {
		_ = f.SetCellStyle(SheetName, "A1", "A1", titleStyle)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(SheetName, cell, header)
	}
	_ = f.SetCellStyle(SheetName, "A2", lastCol+"2", headerStyle)

	styles := make(map[models.BookingStatus]int, len(statusColors))
	for status, color := range statusColors {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return fmt.Errorf("error creating status style: %w", err)
		}
		styles[status] = style
	}

	for i, b := range bookings {
		row := i + 3
		venue := b.VenueName
		if venue == "" {
			venue = b.Venue.Value
		}
		values := []interface{}{
			b.Date.Format(models.DateLayout),
			b.StartTime.String(),
			b.EndTime.String(),
			venue,
			b.UserID,
			b.FullName,
			b.StudentNumber,
			b.Participants,
			yesNo(b.NeedsEquipment),
			string(b.Status),
			b.Notes,
			b.CreatedAt.Format("2006-01-02 15:04"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("error writing row %d: %w", row, err)
		}
		if style, ok := styles[b.Status]; ok {
			statusCell, _ := excelize.CoordinatesToCellName(10, row)
			_ = f.SetCellStyle(SheetName, statusCell, statusCell, style)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "C", 12)
	_ = f.SetColWidth(SheetName, "D", "G", 22)
	_ = f.SetColWidth(SheetName, "H", "J", 13)
	_ = f.SetColWidth(SheetName, "K", "L", 30)

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("error removing default sheet: %w", err)
	}
	if index, err := f.GetSheetIndex(SheetName); err == nil {
		f.SetActiveSheet(index)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
