package models

import (
	"database/sql"
	"time"
)

type User struct {
	ID                  int64        `json:"id"`
	Name                string       `json:"name"`
	Email               string       `json:"email"`
	PasswordHash        string       `json:"-"`
	Role                string       `json:"role"` // user, admin
	IsActive            bool         `json:"is_active"`
	GoogleID            string       `json:"google_id,omitempty"`
	LastLogin           time.Time    `json:"last_login"`
	ResetPasswordToken  string       `json:"-"` // SHA-256 hex of the raw token
	ResetPasswordExpire sql.NullTime `json:"-"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserStats aggregates counters for the admin users view.
type UserStats struct {
	Total        int64 `json:"total"`
	Active       int64 `json:"active"`
	Admins       int64 `json:"admins"`
	GoogleUsers  int64 `json:"googleUsers"`
	RecentLogins int64 `json:"recentLogins"`
}

// DashboardStats aggregates counters for the admin dashboard view.
type DashboardStats struct {
	TotalUsers          int64 `json:"totalUsers"`
	ActiveUsers         int64 `json:"activeUsers"`
	InactiveUsers       int64 `json:"inactiveUsers"`
	AdminUsers          int64 `json:"adminUsers"`
	GoogleUsers         int64 `json:"googleUsers"`
	RecentRegistrations int64 `json:"recentRegistrations"`
	RecentLogins        int64 `json:"recentLogins"`
	TotalBookings       int64 `json:"totalBookings"`
	TotalEvents         int64 `json:"totalEvents"`
	RecentBookings      int64 `json:"recentBookings"`
}
