package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"eventhub/internal/config"
	"eventhub/internal/domain"
	"eventhub/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const bookingsSheet = "Bookings"

// ExportService builds xlsx snapshots of the bookings ledger for admins.
type ExportService struct {
	repo   domain.Repository
	cfg    config.ExportConfig
	logger *zerolog.Logger
}

func NewExportService(repo domain.Repository, cfg config.ExportConfig, logger *zerolog.Logger) *ExportService {
	return &ExportService{repo: repo, cfg: cfg, logger: logger}
}

// BookingsWorkbook renders all bookings into a workbook and keeps an audit
// copy on disk when an export path is configured. The caller owns closing the
// returned file.
func (s *ExportService) BookingsWorkbook(ctx context.Context) (*excelize.File, string, error) {
	bookings, err := s.repo.GetAllBookings(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("error getting bookings: %w", err)
	}

	f := excelize.NewFile()

	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "Confirmation", "Event", "Event date", "Location", "Customer",
		"Email", "Phone", "Attendees", "Decoration", "Total", "Status",
		"Payment", "Booked at",
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(bookingsSheet, cell, header)
		_ = f.SetCellStyle(bookingsSheet, cell, cell, headerStyle)
	}

	for i, b := range bookings {
		row := i + 2
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("A%d", row), b.ID)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("B%d", row), b.ConfirmationNumber)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("C%d", row), b.EventTitle)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("D%d", row), b.EventDate.Format("02.01.2006 15:04"))
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("E%d", row), b.EventLocation)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("F%d", row), contactOrUser(b))
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("G%d", row), b.ContactInfo.Email)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("H%d", row), b.ContactInfo.Phone)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("I%d", row), b.Attendees)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("J%d", row), models.DecorationPackageNames[b.DecorationPackage])
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("K%d", row), b.TotalAmount)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("L%d", row), b.Status)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("M%d", row), b.PaymentStatus)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("N%d", row), b.BookingDate.Format("02.01.2006 15:04"))
	}

	_ = f.SetColWidth(bookingsSheet, "A", "A", 8)
	_ = f.SetColWidth(bookingsSheet, "B", "B", 24)
	_ = f.SetColWidth(bookingsSheet, "C", "C", 28)
	_ = f.SetColWidth(bookingsSheet, "D", "E", 20)
	_ = f.SetColWidth(bookingsSheet, "F", "G", 24)
	_ = f.SetColWidth(bookingsSheet, "H", "N", 15)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))

	if s.cfg.Path != "" {
		if err := s.saveCopy(f, fileName); err != nil {
			s.logger.Warn().Err(err).Msg("export audit copy failed")
		}
	}

	return f, fileName, nil
}

func (s *ExportService) saveCopy(f *excelize.File, fileName string) error {
	if err := os.MkdirAll(s.cfg.Path, 0o755); err != nil {
		return fmt.Errorf("error creating export directory: %v", err)
	}

	filePath := filepath.Join(s.cfg.Path, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("error saving file: %v", err)
	}

	s.logger.Info().Str("file_path", filePath).Msg("Excel file created")
	return nil
}

func contactOrUser(b *models.BookingDetails) string {
	if b.ContactInfo.Name != "" {
		return b.ContactInfo.Name
	}
	return b.UserName
}
