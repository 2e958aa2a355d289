package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"eventhub/internal/database"
	"eventhub/internal/service"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// Error bodies carry a single msg field.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"msg": message})
}

// writeServiceError maps domain errors onto the HTTP taxonomy. Unknown errors
// become a generic 500; the caller logs the details.
func writeServiceError(w http.ResponseWriter, err error) bool {
	var spots *service.NotEnoughSpotsError

	switch {
	case err == nil:
		return false
	case errors.As(err, &spots):
		writeError(w, http.StatusBadRequest, spots.Error())
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCreds):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrTokenExpired):
		writeError(w, http.StatusBadRequest, "Invalid or expired token")
	case errors.Is(err, service.ErrUserDisabled):
		writeError(w, http.StatusForbidden, "Account is deactivated")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, service.ErrSelfDelete):
		writeError(w, http.StatusBadRequest, "Cannot delete your own account")
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, service.ErrAlreadyPaid):
		writeError(w, http.StatusConflict, "Booking is already paid")
	case errors.Is(err, service.ErrAlreadyCancelled):
		writeError(w, http.StatusConflict, "Booking is already cancelled")
	case errors.Is(err, service.ErrBookingCompleted):
		writeError(w, http.StatusConflict, "Booking is already completed")
	case errors.Is(err, service.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "Too many attempts, try again later")
	case errors.Is(err, service.ErrEventPassed):
		writeError(w, http.StatusBadRequest, "Event date has passed")
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, "Resource was modified concurrently, retry")
	case errors.Is(err, database.ErrNoCapacity):
		writeError(w, http.StatusBadRequest, "Not enough spots available")
	case errors.Is(err, database.ErrDuplicate):
		writeError(w, http.StatusConflict, "Already exists")
	default:
		writeError(w, http.StatusInternalServerError, "Server error")
	}
	return true
}
