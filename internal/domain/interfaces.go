package domain

import (
	"context"
	"time"

	"eventhub/internal/models"
)

type Repository interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	ListEvents(ctx context.Context) ([]*models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id int64) error
	CountEvents(ctx context.Context) (int64, error)

	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingDetails(ctx context.Context, id int64) (*models.BookingDetails, error)
	GetUserBookings(ctx context.Context, userID int64) ([]*models.BookingDetails, error)
	GetAllBookings(ctx context.Context) ([]*models.BookingDetails, error)
	UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status, paymentStatus string) error
	ConfirmBookingWithSeats(ctx context.Context, bookingID, fromVersion, eventID, attendees int64) error
	CancelBookingWithSeats(ctx context.Context, bookingID, fromVersion, eventID, attendees int64, releaseSeats bool) error
	CountBookings(ctx context.Context) (int64, error)
	CountBookingsSince(ctx context.Context, since time.Time) (int64, error)

	GetCartItems(ctx context.Context, userID int64) ([]models.CartItem, error)
	AddCartItem(ctx context.Context, userID, eventID, quantity int64, price float64) error
	UpdateCartItemQuantity(ctx context.Context, userID, itemID, quantity int64) error
	RemoveCartItem(ctx context.Context, userID, itemID int64) error
	ClearCart(ctx context.Context, userID int64) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id int64) error
	LinkGoogleID(ctx context.Context, id int64, googleID string) error
	SetResetToken(ctx context.Context, id int64, tokenHash string, expire time.Time) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateUserRole(ctx context.Context, id int64, role string) error
	ToggleUserActive(ctx context.Context, id int64) (bool, error)
	DeleteUser(ctx context.Context, id int64) error
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	GetUserStats(ctx context.Context) (*models.UserStats, error)
	CountUsersSince(ctx context.Context, since time.Time) (int64, error)
}

// SessionRepository stores short-lived handshake state (OAuth nonces) and
// request-rate counters.
type SessionRepository interface {
	SetOAuthState(ctx context.Context, state string, redirectTo string) error
	ConsumeOAuthState(ctx context.Context, state string) (string, bool, error)
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// NotifyWorker accepts outbound notification jobs for asynchronous delivery.
type NotifyWorker interface {
	EnqueueTask(ctx context.Context, taskType string, bookingID, userID int64, payload any) error
}

// Sender delivers a single rendered notification.
type Sender interface {
	SendBookingNotification(ctx context.Context, details *models.BookingDetails) error
	SendBookingConfirmation(ctx context.Context, details *models.BookingDetails) error
	SendBookingCancellation(ctx context.Context, details *models.BookingDetails) error
	SendPasswordReset(ctx context.Context, email, name, resetURL string) error
}
