package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/models"
)

const bookingColumns = `b.id, b.user_id, b.event_id, b.attendees, b.total_amount,
                 b.decoration_package, b.decoration_cost, b.special_requests,
                 b.contact_name, b.contact_email, b.contact_phone,
                 b.status, b.payment_status, b.confirmation_number,
                 b.booking_date, b.created_at, b.updated_at, b.version`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (
				user_id, event_id, attendees, total_amount,
				decoration_package, decoration_cost, special_requests,
				contact_name, contact_email, contact_phone,
				status, payment_status, confirmation_number,
				booking_date, created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		booking.UserID,
		booking.EventID,
		booking.Attendees,
		booking.TotalAmount,
		booking.DecorationPackage,
		booking.DecorationCost,
		booking.SpecialRequests,
		booking.ContactInfo.Name,
		booking.ContactInfo.Email,
		booking.ContactInfo.Phone,
		booking.Status,
		booking.PaymentStatus,
		booking.ConfirmationNumber,
		now,
		now,
		now,
		1,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.BookingDate = now
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1

	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// GetBookingDetails returns a booking joined with event and user summaries.
func (db *DB) GetBookingDetails(ctx context.Context, id int64) (*models.BookingDetails, error) {
	query := `SELECT ` + bookingColumns + `,
	                 e.title, e.date, e.location, e.image, e.category, e.price,
	                 u.name, u.email
	          FROM bookings b
	          JOIN events e ON e.id = b.event_id
	          JOIN users u ON u.id = b.user_id
	          WHERE b.id = ?`
	d := &models.BookingDetails{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.UserID, &d.EventID, &d.Attendees, &d.TotalAmount,
		&d.DecorationPackage, &d.DecorationCost, &d.SpecialRequests,
		&d.ContactInfo.Name, &d.ContactInfo.Email, &d.ContactInfo.Phone,
		&d.Status, &d.PaymentStatus, &d.ConfirmationNumber,
		&d.BookingDate, &d.CreatedAt, &d.UpdatedAt, &d.Version,
		&d.EventTitle, &d.EventDate, &d.EventLocation, &d.EventImage, &d.EventCategory, &d.EventPrice,
		&d.UserName, &d.UserEmail,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking details: %w", err)
	}
	return d, nil
}

func (db *DB) GetUserBookings(ctx context.Context, userID int64) ([]*models.BookingDetails, error) {
	query := `SELECT ` + bookingColumns + `,
	                 e.title, e.date, e.location, e.image, e.category, e.price
	          FROM bookings b
	          JOIN events e ON e.id = b.event_id
	          WHERE b.user_id = ?
	          ORDER BY b.booking_date DESC`
	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.BookingDetails
	for rows.Next() {
		d := &models.BookingDetails{}
		err := rows.Scan(
			&d.ID, &d.UserID, &d.EventID, &d.Attendees, &d.TotalAmount,
			&d.DecorationPackage, &d.DecorationCost, &d.SpecialRequests,
			&d.ContactInfo.Name, &d.ContactInfo.Email, &d.ContactInfo.Phone,
			&d.Status, &d.PaymentStatus, &d.ConfirmationNumber,
			&d.BookingDate, &d.CreatedAt, &d.UpdatedAt, &d.Version,
			&d.EventTitle, &d.EventDate, &d.EventLocation, &d.EventImage, &d.EventCategory, &d.EventPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, d)
	}
	return bookings, rows.Err()
}

func (db *DB) GetAllBookings(ctx context.Context) ([]*models.BookingDetails, error) {
	query := `SELECT ` + bookingColumns + `,
	                 e.title, e.date, e.location, e.image, e.category, e.price,
	                 u.name, u.email
	          FROM bookings b
	          JOIN events e ON e.id = b.event_id
	          JOIN users u ON u.id = b.user_id
	          ORDER BY b.created_at DESC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.BookingDetails
	for rows.Next() {
		d := &models.BookingDetails{}
		err := rows.Scan(
			&d.ID, &d.UserID, &d.EventID, &d.Attendees, &d.TotalAmount,
			&d.DecorationPackage, &d.DecorationCost, &d.SpecialRequests,
			&d.ContactInfo.Name, &d.ContactInfo.Email, &d.ContactInfo.Phone,
			&d.Status, &d.PaymentStatus, &d.ConfirmationNumber,
			&d.BookingDate, &d.CreatedAt, &d.UpdatedAt, &d.Version,
			&d.EventTitle, &d.EventDate, &d.EventLocation, &d.EventImage, &d.EventCategory, &d.EventPrice,
			&d.UserName, &d.UserEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, d)
	}
	return bookings, rows.Err()
}

func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status, paymentStatus string) error {
	query := `UPDATE bookings SET status = ?, payment_status = ?, version = version + 1, updated_at = ?
	          WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, paymentStatus, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// ConfirmBookingWithSeats transitions a pending booking to confirmed/paid and
// reserves its seats in one transaction. The version guard serializes
// concurrent confirmations of the same booking; the seat ceiling guard
// serializes confirmations competing for the same capacity. Exactly one of
// two racing confirmations can succeed.
func (db *DB) ConfirmBookingWithSeats(ctx context.Context, bookingID, fromVersion, eventID, attendees int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()

	queryBooking := `UPDATE bookings SET status = ?, payment_status = ?, version = version + 1, updated_at = ?
	                 WHERE id = ? AND version = ? AND status = ?`
	result, err := tx.ExecContext(ctx, queryBooking,
		models.StatusConfirmed, models.PaymentPaid, now, bookingID, fromVersion, models.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to confirm booking in tx: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}

	querySeats := `UPDATE events SET current_attendees = current_attendees + ?, updated_at = ?
	               WHERE id = ? AND current_attendees + ? <= max_attendees`
	result, err = tx.ExecContext(ctx, querySeats, attendees, now, eventID, attendees)
	if err != nil {
		return fmt.Errorf("failed to reserve seats in tx: %w", err)
	}
	rows, _ = result.RowsAffected()
	if rows == 0 {
		return ErrNoCapacity
	}

	return tx.Commit()
}

// CancelBookingWithSeats transitions a booking to cancelled/refunded and, when
// releaseSeats is set (the booking had previously reserved capacity), gives
// the seats back in the same transaction. Already-cancelled bookings fail the
// status guard, so a double cancel can never decrement capacity twice.
func (db *DB) CancelBookingWithSeats(ctx context.Context, bookingID, fromVersion, eventID, attendees int64, releaseSeats bool) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()

	queryBooking := `UPDATE bookings SET status = ?, payment_status = ?, version = version + 1, updated_at = ?
	                 WHERE id = ? AND version = ? AND status != ?`
	result, err := tx.ExecContext(ctx, queryBooking,
		models.StatusCancelled, models.PaymentRefunded, now, bookingID, fromVersion, models.StatusCancelled)
	if err != nil {
		return fmt.Errorf("failed to cancel booking in tx: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}

	if releaseSeats {
		querySeats := `UPDATE events SET current_attendees = MAX(current_attendees - ?, 0), updated_at = ?
		               WHERE id = ?`
		if _, err := tx.ExecContext(ctx, querySeats, attendees, now, eventID); err != nil {
			return fmt.Errorf("failed to release seats in tx: %w", err)
		}
	}

	return tx.Commit()
}

func (db *DB) CountBookings(ctx context.Context) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (db *DB) CountBookingsSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE created_at >= ?`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent bookings: %w", err)
	}
	return count, nil
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID, &b.UserID, &b.EventID, &b.Attendees, &b.TotalAmount,
		&b.DecorationPackage, &b.DecorationCost, &b.SpecialRequests,
		&b.ContactInfo.Name, &b.ContactInfo.Email, &b.ContactInfo.Phone,
		&b.Status, &b.PaymentStatus, &b.ConfirmationNumber,
		&b.BookingDate, &b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}
