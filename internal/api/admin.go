package api

import (
	"net/http"

	"eventhub/internal/models"
)

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type bookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled completed"`
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	users, stats, err := s.userService.GetAllUsers(r.Context())
	if writeServiceError(w, err) {
		s.logger.Error().Err(err).Msg("admin users")
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"stats": stats,
	})
}

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.userService.GetDashboardStats(r.Context())
	if writeServiceError(w, err) {
		s.logger.Error().Err(err).Msg("admin dashboard")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAdminChangeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req changeRoleRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Role must be user or admin")
		return
	}

	user, err := s.userService.ChangeRole(r.Context(), id, req.Role)
	if writeServiceError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleAdminToggleUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := s.userService.ToggleActive(r.Context(), id)
	if writeServiceError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	claims := claimsFrom(r.Context())
	if err := s.userService.DeleteUser(r.Context(), claims.UserID, id); writeServiceError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "User removed"})
}

func (s *Server) handleAdminBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.bookingService.GetAllBookings(r.Context())
	if writeServiceError(w, err) {
		s.logger.Error().Err(err).Msg("admin bookings")
		return
	}
	if bookings == nil {
		bookings = []*models.BookingDetails{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *Server) handleAdminBookingsExport(w http.ResponseWriter, r *http.Request) {
	f, fileName, err := s.exportService.BookingsWorkbook(r.Context())
	if writeServiceError(w, err) {
		s.logger.Error().Err(err).Msg("bookings export")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	if err := f.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("stream export file")
	}
}

func (s *Server) handleAdminBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid booking id")
		return
	}

	var req bookingStatusRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	booking, err := s.bookingService.SetBookingStatus(r.Context(), id, req.Status)
	if writeServiceError(w, err) {
		s.logger.Warn().Err(err).Int64("booking_id", id).Str("status", req.Status).Msg("admin booking status")
		return
	}
	writeJSON(w, http.StatusOK, booking)
}
