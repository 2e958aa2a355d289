package repository

import (
	"context"
	"sync/atomic"
	"time"

	"eventhub/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverSessionRepository prefers the primary (Redis) store and falls back
// to memory when it errors, probing the primary again after a minute.
type FailoverSessionRepository struct {
	primary   domain.SessionRepository
	fallback  domain.SessionRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nanos of the last failed probe
}

func NewFailoverSessionRepository(primary, fallback domain.SessionRepository, logger *zerolog.Logger) *FailoverSessionRepository {
	return &FailoverSessionRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSessionRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary session repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverSessionRepository) shouldProbe() bool {
	return time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute
}

func (r *FailoverSessionRepository) SetOAuthState(ctx context.Context, state, redirectTo string) error {
	if !r.isDown.Load() || r.shouldProbe() {
		err := r.primary.SetOAuthState(ctx, state, redirectTo)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.SetOAuthState(ctx, state, redirectTo)
}

func (r *FailoverSessionRepository) ConsumeOAuthState(ctx context.Context, state string) (string, bool, error) {
	if !r.isDown.Load() || r.shouldProbe() {
		redirectTo, ok, err := r.primary.ConsumeOAuthState(ctx, state)
		if err == nil {
			r.isDown.Store(false)
			return redirectTo, ok, nil
		}
		r.markDown(err)
	}
	return r.fallback.ConsumeOAuthState(ctx, state)
}

func (r *FailoverSessionRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() || r.shouldProbe() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			r.isDown.Store(false)
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
