package models

import "time"

type Event struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Date             time.Time `json:"date"`
	Location         string    `json:"location"`
	Price            float64   `json:"price"`
	Image            string    `json:"image"`
	Category         string    `json:"category"`
	MaxAttendees     int64     `json:"max_attendees"`
	CurrentAttendees int64     `json:"current_attendees"`
	CreatedBy        int64     `json:"created_by,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Version          int64     `json:"version"`
}

// AvailableSpots is computed on read, never stored.
func (e *Event) AvailableSpots() int64 {
	spots := e.MaxAttendees - e.CurrentAttendees
	if spots < 0 {
		return 0
	}
	return spots
}

const DefaultEventImage = "https://via.placeholder.com/400x300?text=Event+Image"
