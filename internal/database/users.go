package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/models"
)

const userColumns = `id, name, email, password_hash, role, is_active,
                 COALESCE(google_id, ''), COALESCE(last_login, created_at),
                 reset_password_token, reset_password_expire, created_at, updated_at`

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (name, email, password_hash, role, is_active, google_id, last_login, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		nullableString(user.GoogleID),
		nullableTime(user.LastLogin),
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now

	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (db *DB) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = ?`, googleID)
}

// GetUserByResetToken looks up a user by the hashed reset token, requiring
// the expiry window to still be open.
func (db *DB) GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE reset_password_token = ? AND reset_password_token != '' AND reset_password_expire > ?`
	return db.getUser(ctx, query, tokenHash, time.Now())
}

func (db *DB) getUser(ctx context.Context, query string, args ...any) (*models.User, error) {
	u := &models.User{}
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive,
		&u.GoogleID, &u.LastLogin,
		&u.ResetPasswordToken, &u.ResetPasswordExpire, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (db *DB) UpdateLastLogin(ctx context.Context, id int64) error {
	query := `UPDATE users SET last_login = ?, updated_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, time.Now(), time.Now(), id)
	return err
}

func (db *DB) LinkGoogleID(ctx context.Context, id int64, googleID string) error {
	query := `UPDATE users SET google_id = ?, updated_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, googleID, time.Now(), id)
	return err
}

func (db *DB) SetResetToken(ctx context.Context, id int64, tokenHash string, expire time.Time) error {
	query := `UPDATE users SET reset_password_token = ?, reset_password_expire = ?, updated_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, tokenHash, expire, time.Now(), id)
	return err
}

// UpdatePassword sets a new password hash and clears the reset token, making
// the token single-use.
func (db *DB) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = ?, reset_password_token = '', reset_password_expire = NULL, updated_at = ?
	          WHERE id = ?`
	_, err := db.ExecContext(ctx, query, passwordHash, time.Now(), id)
	return err
}

func (db *DB) UpdateUserRole(ctx context.Context, id int64, role string) error {
	result, err := db.ExecContext(ctx, `UPDATE users SET role = ?, updated_at = ? WHERE id = ?`, role, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleUserActive flips is_active and returns the new value.
func (db *DB) ToggleUserActive(ctx context.Context, id int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET is_active = NOT is_active, updated_at = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		return false, fmt.Errorf("failed to toggle user status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return false, ErrNotFound
	}

	var isActive bool
	if err := db.QueryRowContext(ctx, `SELECT is_active FROM users WHERE id = ?`, id).Scan(&isActive); err != nil {
		return false, fmt.Errorf("failed to read user status: %w", err)
	}
	return isActive, nil
}

func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u := &models.User{}
		err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive,
			&u.GoogleID, &u.LastLogin,
			&u.ResetPasswordToken, &u.ResetPasswordExpire, &u.CreatedAt, &u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetUserStats recomputes aggregate counters on every call.
func (db *DB) GetUserStats(ctx context.Context) (*models.UserStats, error) {
	stats := &models.UserStats{}
	dayAgo := time.Now().Add(-24 * time.Hour)

	query := `SELECT COUNT(*),
	                 COALESCE(SUM(is_active), 0),
	                 COALESCE(SUM(role = 'admin'), 0),
	                 COALESCE(SUM(google_id IS NOT NULL), 0),
	                 COALESCE(SUM(last_login >= ?), 0)
	          FROM users`
	err := db.QueryRowContext(ctx, query, dayAgo).Scan(
		&stats.Total, &stats.Active, &stats.Admins, &stats.GoogleUsers, &stats.RecentLogins,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return stats, nil
}

func (db *DB) CountUsersSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE created_at >= ?`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent users: %w", err)
	}
	return count, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
