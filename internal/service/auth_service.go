package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventhub/internal/auth"
	"eventhub/internal/config"
	"eventhub/internal/database"
	"eventhub/internal/domain"
	"eventhub/internal/events"
	"eventhub/internal/models"
	"eventhub/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2v2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

type AuthService struct {
	repo         domain.Repository
	sessions     domain.SessionRepository
	tokens       *auth.TokenManager
	notifyWorker domain.NotifyWorker
	eventBus     domain.EventPublisher
	oauthConfig  *oauth2.Config
	frontendURL  string
	bcryptCost   int
	minPassword  int
	resetTTL     time.Duration
	logger       *zerolog.Logger
}

func NewAuthService(
	repo domain.Repository,
	sessions domain.SessionRepository,
	tokens *auth.TokenManager,
	notifyWorker domain.NotifyWorker,
	eventBus domain.EventPublisher,
	cfg *config.Config,
	logger *zerolog.Logger,
) *AuthService {
	var oauthConfig *oauth2.Config
	if cfg.Google.ClientID != "" {
		oauthConfig = &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	return &AuthService{
		repo:         repo,
		sessions:     sessions,
		tokens:       tokens,
		notifyWorker: notifyWorker,
		eventBus:     eventBus,
		oauthConfig:  oauthConfig,
		frontendURL:  strings.TrimRight(cfg.App.FrontendURL, "/"),
		bcryptCost:   cfg.Auth.BcryptCost,
		minPassword:  cfg.Auth.MinPasswordLen,
		resetTTL:     cfg.Auth.ResetTokenTTL,
		logger:       logger,
	}
}

// Register creates a password-based account and returns a long-lived token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" {
		return nil, "", fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}
	if len(password) < s.minPassword {
		return nil, "", fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, s.minPassword)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}

	if s.eventBus != nil {
		_ = s.eventBus.PublishJSON(events.EventUserRegistered, map[string]any{
			"user_id": user.ID,
			"email":   user.Email,
		})
	}
	s.logger.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("user registered")

	return user, token, nil
}

// checkAuthRate enforces the shared per-account attempt limit through the
// session store, so the counter holds across instances. A store error fails
// open rather than locking every account out.
func (s *AuthService) checkAuthRate(ctx context.Context, key string) error {
	if s.sessions == nil {
		return nil
	}
	allowed, err := s.sessions.CheckRateLimit(ctx, key, models.RateLimitRequests, models.RateLimitWindow*time.Second)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("rate limit check failed")
		return nil
	}
	if !allowed {
		return ErrRateLimited
	}
	return nil
}

// Login checks credentials and returns a long-lived token. Deactivated
// accounts are rejected even with the right password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = normalizeEmail(email)
	if err := s.checkAuthRate(ctx, "auth:login:"+email); err != nil {
		return nil, "", err
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, "", ErrInvalidCreds
		}
		return nil, "", err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", ErrInvalidCreds
	}
	if !user.IsActive {
		return nil, "", ErrUserDisabled
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("update last login")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GoogleAuthURL starts the OAuth handshake with a single-use state nonce.
func (s *AuthService) GoogleAuthURL(ctx context.Context, redirectTo string) (string, error) {
	if s.oauthConfig == nil {
		return "", fmt.Errorf("%w: google auth is not configured", ErrInvalidInput)
	}

	state := uuid.NewString()
	if err := s.sessions.SetOAuthState(ctx, state, redirectTo); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return s.oauthConfig.AuthCodeURL(state), nil
}

// HandleGoogleCallback finishes the handshake: verifies the state nonce,
// exchanges the code, resolves the account (by google id, then by email with
// auto-link, then a fresh account) and returns the frontend redirect URL
// carrying a short-lived token.
func (s *AuthService) HandleGoogleCallback(ctx context.Context, state, code string) (string, error) {
	if s.oauthConfig == nil {
		return "", fmt.Errorf("%w: google auth is not configured", ErrInvalidInput)
	}

	_, ok, err := s.sessions.ConsumeOAuthState(ctx, state)
	if err != nil {
		return "", fmt.Errorf("consume oauth state: %w", err)
	}
	if !ok {
		return "", ErrTokenExpired
	}

	oauthToken, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange oauth code: %w", err)
	}

	svc, err := oauth2v2.NewService(ctx, option.WithHTTPClient(s.oauthConfig.Client(ctx, oauthToken)))
	if err != nil {
		return "", fmt.Errorf("create oauth2 service: %w", err)
	}
	info, err := svc.Userinfo.Get().Do()
	if err != nil {
		return "", fmt.Errorf("fetch userinfo: %w", err)
	}
	if info.Email == "" {
		return "", fmt.Errorf("%w: google account has no email", ErrInvalidInput)
	}

	user, err := s.resolveGoogleUser(ctx, info)
	if err != nil {
		return "", err
	}
	if !user.IsActive {
		return "", ErrUserDisabled
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("update last login")
	}

	token, err := s.tokens.IssueShort(user)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/auth/google/success?token=%s", s.frontendURL, token), nil
}

func (s *AuthService) resolveGoogleUser(ctx context.Context, info *oauth2v2.Userinfo) (*models.User, error) {
	user, err := s.repo.GetUserByGoogleID(ctx, info.Id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	// Existing password account with the same email gets linked.
	user, err = s.repo.GetUserByEmail(ctx, normalizeEmail(info.Email))
	if err == nil {
		if err := s.repo.LinkGoogleID(ctx, user.ID, info.Id); err != nil {
			return nil, err
		}
		user.GoogleID = info.Id
		return user, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	// First visit: the account has no usable password until a reset.
	hash, err := auth.HashPassword(uuid.NewString(), s.bcryptCost)
	if err != nil {
		return nil, err
	}
	name := info.Name
	if name == "" {
		name = info.Email
	}
	user = &models.User{
		Name:         name,
		Email:        normalizeEmail(info.Email),
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
		GoogleID:     info.Id,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		_ = s.eventBus.PublishJSON(events.EventUserRegistered, map[string]any{
			"user_id": user.ID,
			"email":   user.Email,
			"google":  true,
		})
	}
	return user, nil
}

// ForgotPassword stores a hashed single-use token and queues the reset email.
// Only the SHA-256 digest ever touches the database.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := s.checkAuthRate(ctx, "auth:forgot:"+email); err != nil {
		return err
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	raw, digest, err := auth.NewResetToken()
	if err != nil {
		return err
	}
	if err := s.repo.SetResetToken(ctx, user.ID, digest, time.Now().Add(s.resetTTL)); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, raw)
	if s.notifyWorker != nil {
		err = s.notifyWorker.EnqueueTask(ctx, worker.TaskPasswordReset, 0, user.ID, map[string]string{
			"email":     user.Email,
			"name":      user.Name,
			"reset_url": resetURL,
		})
		if err != nil {
			return fmt.Errorf("enqueue reset email: %w", err)
		}
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("password reset requested")
	return nil
}

// ResetPassword consumes the raw token, replaces the password and returns a
// fresh short-lived login token.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) (*models.User, string, error) {
	if len(newPassword) < s.minPassword {
		return nil, "", fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, s.minPassword)
	}

	user, err := s.repo.GetUserByResetToken(ctx, auth.HashResetToken(rawToken))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, "", ErrTokenExpired
		}
		return nil, "", err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return nil, "", err
	}
	// UpdatePassword also clears the reset token, making it single-use.
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.IssueShort(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("password reset completed")
	return user, token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
