package api

import (
	"net/http"

	"eventhub/internal/models"
	"eventhub/internal/service"
)

type createBookingRequest struct {
	EventID           int64  `json:"event_id" validate:"required,gt=0"`
	Attendees         int64  `json:"attendees" validate:"required,gte=1"`
	DecorationPackage string `json:"decoration_package"`
	SpecialRequests   string `json:"special_requests" validate:"max=500"`
	ContactName       string `json:"contact_name" validate:"required"`
	ContactEmail      string `json:"contact_email" validate:"required,email"`
	ContactPhone      string `json:"contact_phone"`
}

func (s *Server) handleDecorationPackages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.bookingService.DecorationPackages())
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Please enter all required fields")
		return
	}

	claims := claimsFrom(r.Context())
	booking, err := s.bookingService.CreateBooking(r.Context(), claims.UserID, service.CreateBookingInput{
		EventID:           req.EventID,
		Attendees:         req.Attendees,
		DecorationPackage: req.DecorationPackage,
		SpecialRequests:   req.SpecialRequests,
		Contact: models.ContactInfo{
			Name:  req.ContactName,
			Email: req.ContactEmail,
			Phone: req.ContactPhone,
		},
	})
	if writeServiceError(w, err) {
		s.logger.Error().Err(err).Int64("user_id", claims.UserID).Msg("create booking")
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	bookings, err := s.bookingService.GetUserBookings(r.Context(), claims.UserID)
	if writeServiceError(w, err) {
		s.logger.Error().Err(err).Int64("user_id", claims.UserID).Msg("list bookings")
		return
	}
	if bookings == nil {
		bookings = []*models.BookingDetails{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid booking id")
		return
	}

	claims := claimsFrom(r.Context())
	details, err := s.bookingService.GetBooking(r.Context(), claims.UserID, id, Role(claims.Role) == RoleAdmin)
	if writeServiceError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid booking id")
		return
	}

	claims := claimsFrom(r.Context())
	booking, err := s.bookingService.ConfirmPayment(r.Context(), claims.UserID, id, Role(claims.Role) == RoleAdmin)
	if writeServiceError(w, err) {
		s.logger.Warn().Err(err).Int64("booking_id", id).Msg("confirm payment")
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid booking id")
		return
	}

	claims := claimsFrom(r.Context())
	booking, err := s.bookingService.CancelBooking(r.Context(), claims.UserID, id, Role(claims.Role) == RoleAdmin)
	if writeServiceError(w, err) {
		s.logger.Warn().Err(err).Int64("booking_id", id).Msg("cancel booking")
		return
	}
	writeJSON(w, http.StatusOK, booking)
}
