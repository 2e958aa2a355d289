package service

import (
	"context"
	"fmt"
	"time"

	"eventhub/internal/domain"
	"eventhub/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewUserService(repo domain.Repository, logger *zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// GetAllUsers returns the user list together with aggregate stats for the
// admin view.
func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, *models.UserStats, error) {
	users, err := s.repo.GetAllUsers(ctx)
	if err != nil {
		return nil, nil, err
	}
	stats, err := s.repo.GetUserStats(ctx)
	if err != nil {
		return nil, nil, err
	}
	return users, stats, nil
}

// GetDashboardStats recomputes the admin dashboard counters on every call.
func (s *UserService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	userStats, err := s.repo.GetUserStats(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	recentRegistrations, err := s.repo.CountUsersSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	totalBookings, err := s.repo.CountBookings(ctx)
	if err != nil {
		return nil, err
	}
	recentBookings, err := s.repo.CountBookingsSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}
	totalEvents, err := s.repo.CountEvents(ctx)
	if err != nil {
		return nil, err
	}

	return &models.DashboardStats{
		TotalUsers:          userStats.Total,
		ActiveUsers:         userStats.Active,
		InactiveUsers:       userStats.Total - userStats.Active,
		AdminUsers:          userStats.Admins,
		GoogleUsers:         userStats.GoogleUsers,
		RecentRegistrations: recentRegistrations,
		RecentLogins:        userStats.RecentLogins,
		TotalBookings:       totalBookings,
		TotalEvents:         totalEvents,
		RecentBookings:      recentBookings,
	}, nil
}

func (s *UserService) ChangeRole(ctx context.Context, id int64, role string) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	if err := s.repo.UpdateUserRole(ctx, id, role); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", id).Str("role", role).Msg("user role changed")
	return s.repo.GetUserByID(ctx, id)
}

func (s *UserService) ToggleActive(ctx context.Context, id int64) (*models.User, error) {
	active, err := s.repo.ToggleUserActive(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", id).Bool("is_active", active).Msg("user status toggled")
	return s.repo.GetUserByID(ctx, id)
}

// DeleteUser removes a user; admins cannot delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return ErrSelfDelete
	}

	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Int64("user_id", id).Int64("deleted_by", actorID).Msg("user deleted")
	return nil
}
