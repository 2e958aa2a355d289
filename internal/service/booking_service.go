package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventhub/internal/database"
	"eventhub/internal/domain"
	"eventhub/internal/events"
	"eventhub/internal/metrics"
	"eventhub/internal/models"
	"eventhub/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type BookingService struct {
	repo         domain.Repository
	eventBus     domain.EventPublisher
	notifyWorker domain.NotifyWorker
	logger       *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, notifyWorker domain.NotifyWorker, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:         repo,
		eventBus:     eventBus,
		notifyWorker: notifyWorker,
		logger:       logger,
	}
}

// CreateBookingInput is the validated request to place a booking.
type CreateBookingInput struct {
	EventID           int64
	Attendees         int64
	DecorationPackage string
	SpecialRequests   string
	Contact           models.ContactInfo
}

// CreateBooking places a pending booking. Seats are not reserved here; the
// availability check is advisory and the real reservation happens in
// ConfirmPayment.
func (s *BookingService) CreateBooking(ctx context.Context, userID int64, input CreateBookingInput) (*models.Booking, error) {
	if input.Attendees < 1 {
		return nil, fmt.Errorf("%w: attendees must be at least 1", ErrInvalidInput)
	}
	if input.DecorationPackage == "" {
		input.DecorationPackage = models.PackageNone
	}
	if !models.IsValidDecorationPackage(input.DecorationPackage) {
		return nil, fmt.Errorf("%w: unknown decoration package %q", ErrInvalidInput, input.DecorationPackage)
	}
	if len(input.SpecialRequests) > 500 {
		return nil, fmt.Errorf("%w: special requests too long", ErrInvalidInput)
	}

	event, err := s.repo.GetEvent(ctx, input.EventID)
	if err != nil {
		return nil, err
	}
	if event.Date.Before(time.Now()) {
		return nil, ErrEventPassed
	}
	if available := event.AvailableSpots(); input.Attendees > available {
		return nil, &NotEnoughSpotsError{Available: available}
	}

	decorationCost := models.DecorationPrices[input.DecorationPackage]
	booking := &models.Booking{
		UserID:             userID,
		EventID:            input.EventID,
		Attendees:          input.Attendees,
		TotalAmount:        event.Price*float64(input.Attendees) + decorationCost,
		DecorationPackage:  input.DecorationPackage,
		DecorationCost:     decorationCost,
		SpecialRequests:    input.SpecialRequests,
		ContactInfo:        input.Contact,
		Status:             models.StatusPending,
		PaymentStatus:      models.PaymentPending,
		ConfirmationNumber: newConfirmationNumber(),
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	metrics.IncBooking("created")
	s.publishEvent(events.EventBookingCreated, booking, "user")
	s.enqueueNotify(ctx, worker.TaskAdminNotice, booking)
	s.enqueueNotify(ctx, worker.TaskCustomerConfirmation, booking)

	return booking, nil
}

// ConfirmPayment marks the booking paid and reserves its seats atomically.
// When the event filled up since creation the booking is auto-cancelled
// instead of staying pending forever.
func (s *BookingService) ConfirmPayment(ctx context.Context, userID, bookingID int64, isAdmin bool) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID && !isAdmin {
		return nil, ErrForbidden
	}
	if booking.PaymentStatus == models.PaymentPaid {
		return nil, ErrAlreadyPaid
	}
	if booking.Status == models.StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	err = s.repo.ConfirmBookingWithSeats(ctx, booking.ID, booking.Version, booking.EventID, booking.Attendees)
	if errors.Is(err, database.ErrNoCapacity) {
		return nil, s.autoCancel(ctx, booking)
	}
	if err != nil {
		return nil, err
	}

	metrics.IncBooking("confirmed")
	confirmed, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.publishEvent(events.EventBookingConfirmed, confirmed, "user")
	s.enqueueNotify(ctx, worker.TaskCustomerConfirmation, confirmed)

	return confirmed, nil
}

// autoCancel releases a pending booking that lost the capacity race. Seats
// were never reserved for it, so none are released.
func (s *BookingService) autoCancel(ctx context.Context, booking *models.Booking) error {
	err := s.repo.CancelBookingWithSeats(ctx, booking.ID, booking.Version, booking.EventID, booking.Attendees, false)
	if err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("auto-cancel after capacity failure")
		return err
	}

	metrics.IncBooking("auto_cancelled")
	s.publishEvent(events.EventBookingAutoCancelled, booking, "system")
	s.enqueueNotify(ctx, worker.TaskBookingCancelled, booking)

	event, eventErr := s.repo.GetEvent(ctx, booking.EventID)
	if eventErr != nil {
		return &NotEnoughSpotsError{Available: 0}
	}
	return &NotEnoughSpotsError{Available: event.AvailableSpots()}
}

// CancelBooking cancels a booking and refunds its payment status. Seats are
// released only when the booking had actually reserved them, so cancelling a
// pending booking never touches event capacity. Completed bookings are
// terminal and cannot be cancelled.
func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID int64, isAdmin bool) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID && !isAdmin {
		return nil, ErrForbidden
	}
	if booking.Status == models.StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if booking.Status == models.StatusCompleted {
		return nil, ErrBookingCompleted
	}

	releaseSeats := booking.Status == models.StatusConfirmed
	err = s.repo.CancelBookingWithSeats(ctx, booking.ID, booking.Version, booking.EventID, booking.Attendees, releaseSeats)
	if err != nil {
		return nil, err
	}

	metrics.IncBooking("cancelled")
	cancelled, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.publishEvent(events.EventBookingCancelled, cancelled, "user")
	s.enqueueNotify(ctx, worker.TaskBookingCancelled, cancelled)

	return cancelled, nil
}

// SetBookingStatus is the admin override. Transitions that affect capacity go
// through the same transactional paths as the customer flows.
func (s *BookingService) SetBookingStatus(ctx context.Context, bookingID int64, status string) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch status {
	case models.StatusConfirmed:
		if booking.Status != models.StatusPending {
			return nil, fmt.Errorf("%w: only pending bookings can be confirmed", ErrInvalidInput)
		}
		err = s.repo.ConfirmBookingWithSeats(ctx, booking.ID, booking.Version, booking.EventID, booking.Attendees)
		if errors.Is(err, database.ErrNoCapacity) {
			return nil, s.autoCancel(ctx, booking)
		}
	case models.StatusCancelled:
		if booking.Status == models.StatusCancelled {
			return nil, ErrAlreadyCancelled
		}
		if booking.Status == models.StatusCompleted {
			return nil, ErrBookingCompleted
		}
		releaseSeats := booking.Status == models.StatusConfirmed
		err = s.repo.CancelBookingWithSeats(ctx, booking.ID, booking.Version, booking.EventID, booking.Attendees, releaseSeats)
	case models.StatusCompleted:
		if booking.Status != models.StatusConfirmed {
			return nil, fmt.Errorf("%w: only confirmed bookings can be completed", ErrInvalidInput)
		}
		err = s.repo.UpdateBookingStatusWithVersion(ctx, booking.ID, booking.Version, models.StatusCompleted, booking.PaymentStatus)
	case models.StatusPending:
		return nil, fmt.Errorf("%w: bookings cannot be reverted to pending", ErrInvalidInput)
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	if err != nil {
		return nil, err
	}

	metrics.IncBooking("admin_" + status)
	updated, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.publishEvent(eventTypeForStatus(status), updated, "admin")
	if status == models.StatusCancelled {
		s.enqueueNotify(ctx, worker.TaskBookingCancelled, updated)
	}

	return updated, nil
}

// GetBooking returns a booking with event details; non-admins see only their own.
func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID int64, isAdmin bool) (*models.BookingDetails, error) {
	details, err := s.repo.GetBookingDetails(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if details.UserID != userID && !isAdmin {
		return nil, ErrForbidden
	}
	return details, nil
}

func (s *BookingService) GetUserBookings(ctx context.Context, userID int64) ([]*models.BookingDetails, error) {
	return s.repo.GetUserBookings(ctx, userID)
}

func (s *BookingService) GetAllBookings(ctx context.Context) ([]*models.BookingDetails, error) {
	return s.repo.GetAllBookings(ctx)
}

// DecorationPackage is the catalog entry exposed to clients.
type DecorationPackage struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// DecorationPackages lists the fixed decoration catalog in stable order.
func (s *BookingService) DecorationPackages() []DecorationPackage {
	order := []string{models.PackageNone, models.PackageBasic, models.PackagePremium, models.PackageLuxury}
	packages := make([]DecorationPackage, 0, len(order))
	for _, id := range order {
		packages = append(packages, DecorationPackage{
			ID:    id,
			Name:  models.DecorationPackageNames[id],
			Price: models.DecorationPrices[id],
		})
	}
	return packages
}

// newConfirmationNumber builds a human-quotable unique reference like
// EVT1756450800000A1B2C.
func newConfirmationNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:5]
	return fmt.Sprintf("EVT%d%s", time.Now().UnixMilli(), suffix)
}

func eventTypeForStatus(status string) string {
	switch status {
	case models.StatusConfirmed:
		return events.EventBookingConfirmed
	case models.StatusCancelled:
		return events.EventBookingCancelled
	default:
		return "booking_" + status
	}
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedBy string) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:          booking.ID,
		UserID:             booking.UserID,
		EventID:            booking.EventID,
		Attendees:          booking.Attendees,
		TotalAmount:        booking.TotalAmount,
		Status:             booking.Status,
		PaymentStatus:      booking.PaymentStatus,
		ConfirmationNumber: booking.ConfirmationNumber,
		ChangedBy:          changedBy,
		ChangedAt:          time.Now(),
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueNotify(ctx context.Context, taskType string, booking *models.Booking) {
	if s.notifyWorker == nil {
		return
	}

	if err := s.notifyWorker.EnqueueTask(ctx, taskType, booking.ID, booking.UserID, nil); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Str("task", taskType).Msg("notify enqueue error")
	}
}
