package api

import (
	"encoding/json"
	"net/http"

	"eventhub/internal/models"

	"github.com/go-chi/chi/v5"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return s.validate.Struct(dst)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Please enter all fields")
		return
	}

	user, token, err := s.authService.Register(r.Context(), req.Name, req.Email, req.Password)
	if writeServiceError(w, err) {
		s.logAuthError(r, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Please enter all fields")
		return
	}

	user, token, err := s.authService.Login(r.Context(), req.Email, req.Password)
	if writeServiceError(w, err) {
		s.logAuthError(r, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) handleGoogleAuth(w http.ResponseWriter, r *http.Request) {
	url, err := s.authService.GoogleAuthURL(r.Context(), r.URL.Query().Get("redirect_to"))
	if writeServiceError(w, err) {
		s.logAuthError(r, "google_auth", err)
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		writeError(w, http.StatusBadRequest, "Missing state or code")
		return
	}

	redirectURL, err := s.authService.HandleGoogleCallback(r.Context(), state, code)
	if writeServiceError(w, err) {
		s.logAuthError(r, "google_callback", err)
		return
	}
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Please enter a valid email")
		return
	}

	if err := s.authService.ForgotPassword(r.Context(), req.Email); writeServiceError(w, err) {
		s.logAuthError(r, "forgot_password", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Password reset email sent"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Please enter a new password")
		return
	}

	user, token, err := s.authService.ResetPassword(r.Context(), chi.URLParam(r, "token"), req.Password)
	if writeServiceError(w, err) {
		s.logAuthError(r, "reset_password", err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	user, err := s.userService.GetUser(r.Context(), claims.UserID)
	if writeServiceError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleLogout exists for client symmetry; tokens are stateless, so the
// client simply drops its copy.
func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Logged out"})
}

func (s *Server) logAuthError(r *http.Request, op string, err error) {
	s.logger.Warn().Err(err).Str("op", op).Str("remote", r.RemoteAddr).Msg("auth request failed")
}
