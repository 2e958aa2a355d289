package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventhub/internal/models"
)

const eventColumns = `id, title, description, date, location, price, image, category,
                 max_attendees, current_attendees, COALESCE(created_by, 0), created_at, updated_at, version`

func (db *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	query := `INSERT INTO events (
				title, description, date, location, price, image, category,
				max_attendees, current_attendees, created_by, created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		event.Title,
		event.Description,
		event.Date,
		event.Location,
		event.Price,
		event.Image,
		event.Category,
		event.MaxAttendees,
		event.CurrentAttendees,
		nullableID(event.CreatedBy),
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	event.ID = id
	event.CreatedAt = now
	event.UpdatedAt = now
	event.Version = 1

	return nil
}

func (db *DB) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	event, err := scanEvent(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (db *DB) ListEvents(ctx context.Context) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (db *DB) UpdateEvent(ctx context.Context, event *models.Event) error {
	query := `UPDATE events SET title = ?, description = ?, date = ?, location = ?, price = ?,
	                 image = ?, category = ?, max_attendees = ?, version = version + 1, updated_at = ?
	          WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query,
		event.Title, event.Description, event.Date, event.Location, event.Price,
		event.Image, event.Category, event.MaxAttendees, time.Now(),
		event.ID, event.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

func (db *DB) DeleteEvent(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ReserveSeats increments current_attendees by n as a single conditional
// update. The ceiling check happens inside the same statement, so two
// concurrent reservations can never both pass it.
func (db *DB) ReserveSeats(ctx context.Context, eventID, n int64) error {
	query := `UPDATE events SET current_attendees = current_attendees + ?, updated_at = ?
	          WHERE id = ? AND current_attendees + ? <= max_attendees`
	result, err := db.ExecContext(ctx, query, n, time.Now(), eventID, n)
	if err != nil {
		return fmt.Errorf("failed to reserve seats: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNoCapacity
	}
	return nil
}

// ReleaseSeats decrements current_attendees by n, clamped so the counter
// never drops below zero.
func (db *DB) ReleaseSeats(ctx context.Context, eventID, n int64) error {
	query := `UPDATE events SET current_attendees = MAX(current_attendees - ?, 0), updated_at = ?
	          WHERE id = ?`
	result, err := db.ExecContext(ctx, query, n, time.Now(), eventID)
	if err != nil {
		return fmt.Errorf("failed to release seats: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) CountEvents(ctx context.Context) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	e := &models.Event{}
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.Price, &e.Image, &e.Category,
		&e.MaxAttendees, &e.CurrentAttendees, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt, &e.Version,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
