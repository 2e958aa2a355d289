package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"eventhub/internal/config"
	"eventhub/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingsWorkbook(t *testing.T) {
	db := setupTestDB(t)
	logger := zerolog.Nop()
	svc := NewExportService(db, config.ExportConfig{}, &logger)
	ctx := context.Background()

	user := createTestUser(t, db, "export@example.com")
	event := createTestEvent(t, db, 50, time.Now().AddDate(0, 1, 0))
	booking := &models.Booking{
		UserID: user.ID, EventID: event.ID, Attendees: 2, TotalAmount: 550,
		DecorationPackage:  models.PackagePremium,
		ContactInfo:        models.ContactInfo{Name: "Jane", Email: "jane@example.com", Phone: "+100"},
		Status:             models.StatusConfirmed,
		PaymentStatus:      models.PaymentPaid,
		ConfirmationNumber: "EVT-export-1",
	}
	require.NoError(t, db.CreateBooking(ctx, booking))

	f, fileName, err := svc.BookingsWorkbook(ctx)
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, fileName, "bookings_export_")
	assert.Contains(t, fileName, ".xlsx")

	// Header row plus one data row.
	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "EVT-export-1", rows[1][1])
	assert.Equal(t, event.Title, rows[1][2])
	assert.Equal(t, "Jane", rows[1][5])
	assert.Equal(t, "Premium Package", rows[1][9])
	assert.Equal(t, models.StatusConfirmed, rows[1][11])

	// The placeholder sheet is gone.
	assert.NotContains(t, f.GetSheetList(), "Sheet1")
}

func TestBookingsWorkbook_AuditCopy(t *testing.T) {
	db := setupTestDB(t)
	logger := zerolog.Nop()
	exportDir := filepath.Join(t.TempDir(), "exports")
	svc := NewExportService(db, config.ExportConfig{Path: exportDir}, &logger)

	f, fileName, err := svc.BookingsWorkbook(context.Background())
	require.NoError(t, err)
	defer f.Close()

	copyPath := filepath.Join(exportDir, fileName)
	info, err := os.Stat(copyPath)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}
