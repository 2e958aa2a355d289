package api

import (
	"net/http"
	"strconv"
	"time"

	"eventhub/internal/models"
	"eventhub/internal/service"

	"github.com/go-chi/chi/v5"
)

type eventRequest struct {
	Title        string    `json:"title" validate:"required"`
	Description  string    `json:"description"`
	Date         time.Time `json:"date" validate:"required"`
	Location     string    `json:"location" validate:"required"`
	Price        float64   `json:"price" validate:"gte=0"`
	Image        string    `json:"image"`
	Category     string    `json:"category"`
	MaxAttendees int64     `json:"max_attendees" validate:"gte=1"`
}

// eventResponse extends the stored event with the computed availability.
type eventResponse struct {
	*models.Event
	AvailableSpots int64 `json:"available_spots"`
}

func toEventResponse(e *models.Event) eventResponse {
	return eventResponse{Event: e, AvailableSpots: e.AvailableSpots()}
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.eventService.ListEvents(r.Context(), r.URL.Query().Get("category"))
	if writeServiceError(w, err) {
		s.logger.Error().Err(err).Msg("list events")
		return
	}

	resp := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, toEventResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEventCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.eventService.Categories())
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	event, err := s.eventService.GetEvent(r.Context(), id)
	if writeServiceError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Please enter all required fields")
		return
	}

	claims := claimsFrom(r.Context())
	event, err := s.eventService.CreateEvent(r.Context(), claims.UserID, service.EventInput{
		Title:        req.Title,
		Description:  req.Description,
		Date:         req.Date,
		Location:     req.Location,
		Price:        req.Price,
		Image:        req.Image,
		Category:     req.Category,
		MaxAttendees: req.MaxAttendees,
	})
	if writeServiceError(w, err) {
		s.logger.Error().Err(err).Msg("create event")
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(event))
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	var req eventRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Please enter all required fields")
		return
	}

	event, err := s.eventService.UpdateEvent(r.Context(), id, service.EventInput{
		Title:        req.Title,
		Description:  req.Description,
		Date:         req.Date,
		Location:     req.Location,
		Price:        req.Price,
		Image:        req.Image,
		Category:     req.Category,
		MaxAttendees: req.MaxAttendees,
	})
	if writeServiceError(w, err) {
		s.logger.Error().Err(err).Int64("event_id", id).Msg("update event")
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	if err := s.eventService.DeleteEvent(r.Context(), id); writeServiceError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Event removed"})
}
