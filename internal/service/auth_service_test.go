package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"eventhub/internal/auth"
	"eventhub/internal/config"
	"eventhub/internal/database"
	"eventhub/internal/models"
	"eventhub/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingNotifyWorker struct {
	taskType string
	userID   int64
	payload  any
}

func (w *capturingNotifyWorker) EnqueueTask(ctx context.Context, taskType string, bookingID, userID int64, payload any) error {
	w.taskType = taskType
	w.userID = userID
	w.payload = payload
	return nil
}

func testAuthConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{FrontendURL: "http://localhost:3000/"},
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret",
			BcryptCost:     4,
			MinPasswordLen: 6,
			ResetTokenTTL:  10 * time.Minute,
		},
	}
}

func setupAuthService(t *testing.T) (*AuthService, *database.DB, *capturingNotifyWorker, *auth.TokenManager) {
	t.Helper()
	db := setupTestDB(t)
	logger := zerolog.Nop()
	tokens := auth.NewTokenManager("test-secret", time.Hour, 30*time.Minute)
	worker := &capturingNotifyWorker{}
	sessions := repository.NewMemorySessionRepository(0)
	svc := NewAuthService(db, sessions, tokens, worker, nil, testAuthConfig(), &logger)
	return svc, db, worker, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _, tokens := setupAuthService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "  Jane Doe  ", "Jane@Example.COM", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", user.Name)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// Lookup is case-insensitive on email.
	logged, _, err := svc.Login(ctx, "JANE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.False(t, logged.LastLogin.IsZero())
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _, _ := setupAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "", "x@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = svc.Register(ctx, "Short", "short@example.com", "12345")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = svc.Register(ctx, "First", "taken@example.com", "secret1")
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, "Second", "taken@example.com", "secret2")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_Failures(t *testing.T) {
	svc, db, _, _ := setupAuthService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "Jane", "login@example.com", "secret1")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCreds)

	_, _, err = svc.Login(ctx, "login@example.com", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCreds)

	_, err = db.ToggleUserActive(ctx, user.ID)
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "login@example.com", "secret1")
	assert.ErrorIs(t, err, ErrUserDisabled)
}

func TestLogin_RateLimited(t *testing.T) {
	svc, _, _, _ := setupAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Jane", "limited@example.com", "secret1")
	require.NoError(t, err)

	for i := 0; i < models.RateLimitRequests; i++ {
		_, _, err = svc.Login(ctx, "limited@example.com", "wrongpass")
		require.ErrorIs(t, err, ErrInvalidCreds)
	}

	// Once the window is exhausted even the right password is rejected.
	_, _, err = svc.Login(ctx, "limited@example.com", "secret1")
	assert.ErrorIs(t, err, ErrRateLimited)

	// The counter is per account, other accounts are unaffected.
	_, _, err = svc.Register(ctx, "Other", "other@example.com", "secret1")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "other@example.com", "secret1")
	assert.NoError(t, err)
}

func TestForgotPassword_RateLimited(t *testing.T) {
	svc, _, _, _ := setupAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Jane", "flood@example.com", "secret1")
	require.NoError(t, err)

	for i := 0; i < models.RateLimitRequests; i++ {
		require.NoError(t, svc.ForgotPassword(ctx, "flood@example.com"))
	}

	err = svc.ForgotPassword(ctx, "flood@example.com")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestForgotAndResetPassword(t *testing.T) {
	svc, db, worker, tokens := setupAuthService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "Jane", "forgot@example.com", "oldpass1")
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "forgot@example.com"))
	assert.Equal(t, "password_reset", worker.taskType)
	assert.Equal(t, user.ID, worker.userID)

	payload, ok := worker.payload.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "forgot@example.com", payload["email"])

	resetURL := payload["reset_url"]
	require.NotEmpty(t, resetURL)
	rawToken := resetURL[strings.LastIndex(resetURL, "/")+1:]

	// Only the digest is stored, never the raw token.
	stored, err := db.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, rawToken, stored.ResetPasswordToken)
	assert.Equal(t, auth.HashResetToken(rawToken), stored.ResetPasswordToken)

	reset, token, err := svc.ResetPassword(ctx, rawToken, "newpass1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, reset.ID)

	_, err = tokens.Parse(token)
	assert.NoError(t, err)

	_, _, err = svc.Login(ctx, "forgot@example.com", "newpass1")
	assert.NoError(t, err)
	_, _, err = svc.Login(ctx, "forgot@example.com", "oldpass1")
	assert.ErrorIs(t, err, ErrInvalidCreds)

	// The token is single-use.
	_, _, err = svc.ResetPassword(ctx, rawToken, "another1")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	svc, _, _, _ := setupAuthService(t)

	err := svc.ForgotPassword(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestResetPassword_InvalidToken(t *testing.T) {
	svc, _, _, _ := setupAuthService(t)
	ctx := context.Background()

	_, _, err := svc.ResetPassword(ctx, "bogus-token", "newpass1")
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, _, err = svc.ResetPassword(ctx, "bogus-token", "short")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGoogleAuthURL(t *testing.T) {
	db := setupTestDB(t)
	logger := zerolog.Nop()
	tokens := auth.NewTokenManager("test-secret", time.Hour, 30*time.Minute)
	sessions := repository.NewMemorySessionRepository(0)

	cfg := testAuthConfig()
	cfg.Google = config.GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/api/auth/google/callback",
	}
	svc := NewAuthService(db, sessions, tokens, nil, nil, cfg, &logger)

	url, err := svc.GoogleAuthURL(context.Background(), "/events")
	require.NoError(t, err)
	assert.Contains(t, url, "client_id=client-id")
	assert.Contains(t, url, "state=")
}

func TestGoogleAuth_NotConfigured(t *testing.T) {
	svc, _, _, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.GoogleAuthURL(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.HandleGoogleCallback(ctx, "state", "code")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
