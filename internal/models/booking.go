package models

import "time"

type Booking struct {
	ID                 int64       `json:"id"`
	UserID             int64       `json:"user_id"`
	EventID            int64       `json:"event_id"`
	Attendees          int64       `json:"attendees"`
	TotalAmount        float64     `json:"total_amount"`
	DecorationPackage  string      `json:"decoration_package"` // none, basic, premium, luxury
	DecorationCost     float64     `json:"decoration_cost"`
	SpecialRequests    string      `json:"special_requests,omitempty"`
	ContactInfo        ContactInfo `json:"contact_info"`
	Status             string      `json:"status"`         // pending, confirmed, cancelled, completed
	PaymentStatus      string      `json:"payment_status"` // pending, paid, refunded
	ConfirmationNumber string      `json:"confirmation_number"`
	BookingDate        time.Time   `json:"booking_date"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
	Version            int64       `json:"version"`
}

type ContactInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// BookingDetails is a booking joined with user/event summaries for responses.
type BookingDetails struct {
	Booking
	EventTitle    string    `json:"event_title"`
	EventDate     time.Time `json:"event_date"`
	EventLocation string    `json:"event_location"`
	EventImage    string    `json:"event_image,omitempty"`
	EventCategory string    `json:"event_category,omitempty"`
	EventPrice    float64   `json:"event_price,omitempty"`
	UserName      string    `json:"user_name,omitempty"`
	UserEmail     string    `json:"user_email,omitempty"`
}
