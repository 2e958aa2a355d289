package service

import (
	"context"
	"fmt"
	"time"

	"eventhub/internal/domain"
	"eventhub/internal/models"

	"github.com/rs/zerolog"
)

type EventService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewEventService(repo domain.Repository, logger *zerolog.Logger) *EventService {
	return &EventService{repo: repo, logger: logger}
}

// EventInput holds create/update fields for an event.
type EventInput struct {
	Title        string
	Description  string
	Date         time.Time
	Location     string
	Price        float64
	Image        string
	Category     string
	MaxAttendees int64
}

func (i *EventInput) validate() error {
	if i.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if i.Location == "" {
		return fmt.Errorf("%w: location is required", ErrInvalidInput)
	}
	if i.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}
	if i.MaxAttendees < 1 {
		return fmt.Errorf("%w: max attendees must be at least 1", ErrInvalidInput)
	}
	if i.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	return nil
}

func (s *EventService) ListEvents(ctx context.Context, category string) ([]*models.Event, error) {
	all, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return all, nil
	}

	filtered := make([]*models.Event, 0, len(all))
	for _, e := range all {
		if e.Category == category {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (s *EventService) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	return s.repo.GetEvent(ctx, id)
}

func (s *EventService) CreateEvent(ctx context.Context, createdBy int64, input EventInput) (*models.Event, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if input.Image == "" {
		input.Image = models.DefaultEventImage
	}

	event := &models.Event{
		Title:        input.Title,
		Description:  input.Description,
		Date:         input.Date,
		Location:     input.Location,
		Price:        input.Price,
		Image:        input.Image,
		Category:     models.NormalizeCategory(input.Category),
		MaxAttendees: input.MaxAttendees,
		CreatedBy:    createdBy,
	}

	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("event_id", event.ID).Str("title", event.Title).Msg("event created")
	return event, nil
}

// UpdateEvent applies the new fields over the stored event using the stored
// version, so two concurrent admin edits cannot silently overwrite each
// other. current_attendees is never editable; lowering max_attendees below
// the current count is rejected.
func (s *EventService) UpdateEvent(ctx context.Context, id int64, input EventInput) (*models.Event, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.MaxAttendees < event.CurrentAttendees {
		return nil, fmt.Errorf("%w: max attendees cannot drop below %d current attendees",
			ErrInvalidInput, event.CurrentAttendees)
	}

	event.Title = input.Title
	event.Description = input.Description
	event.Date = input.Date
	event.Location = input.Location
	event.Price = input.Price
	if input.Image != "" {
		event.Image = input.Image
	}
	event.Category = models.NormalizeCategory(input.Category)
	event.MaxAttendees = input.MaxAttendees

	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id int64) error {
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("event_id", id).Msg("event deleted")
	return nil
}

// Categories returns the closed category enumeration.
func (s *EventService) Categories() []string {
	return models.EventCategories
}
