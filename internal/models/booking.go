package models

import (
	"fmt"
	"time"
)

// BookingStatus follows this graph; completed and cancelled are terminal:
//
//	pending ──► confirmed ──► completed
//	   │            │
//	   └────────────┴──► cancelled
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

// ParseBookingStatus converts a raw string, rejecting unknown values.
func ParseBookingStatus(s string) (BookingStatus, error) {
	st := BookingStatus(s)
	switch st {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown booking status %q", s)
}

// CanTransition reports whether a booking may move from -> to.
func CanTransition(from, to BookingStatus) bool {
	for _, s := range bookingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	_, ok := bookingTransitions[s]
	return !ok
}

// Booking is a client appointment with a professional. Bookings are never deleted.
type Booking struct {
	ID              string        `json:"id"`
	ClientID        string        `json:"clientId"`
	ProfessionalID  string        `json:"professionalId"`
	ServiceType     string        `json:"serviceType"`
	AppointmentDate *time.Time    `json:"appointmentDate,omitempty"`
	Status          BookingStatus `json:"status"`
	Notes           string        `json:"notes,omitempty"`
	CreatedAt       *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time    `json:"updatedAt,omitempty"`
}

func NormalizeBooking(id string, raw map[string]interface{}) Booking {
	b := Booking{
		ID:              id,
		ClientID:        firstString(raw, "clientId", "client_id"),
		ProfessionalID:  firstString(raw, "professionalId", "professional_id"),
		ServiceType:     orDefault(firstString(raw, "serviceType", "service_type", "type"), "Consultation"),
		AppointmentDate: firstTimePtr(raw, "appointmentDate", "appointment_date"),
		Notes:           text(raw, "notes"),
		CreatedAt:       firstTimePtr(raw, "createdAt", "created_at"),
		UpdatedAt:       firstTimePtr(raw, "updatedAt", "updated_at"),
	}
	if st, err := ParseBookingStatus(firstString(raw, "status")); err == nil {
		b.Status = st
	} else {
		b.Status = BookingPending
	}
	return b
}

// NewBooking is the caller input for creating a booking.
type NewBooking struct {
	ClientID        string    `json:"clientId"`
	ProfessionalID  string    `json:"professionalId"`
	ServiceType     string    `json:"serviceType"`
	AppointmentDate time.Time `json:"appointmentDate"`
	Notes           string    `json:"notes,omitempty"`
}

// Document returns the stored shape of a freshly created booking.
func (n NewBooking) Document(now time.Time) map[string]interface{} {
	doc := map[string]interface{}{
		"clientId":        n.ClientID,
		"professionalId":  n.ProfessionalID,
		"serviceType":     n.ServiceType,
		"appointmentDate": n.AppointmentDate.UTC(),
		"status":          string(BookingPending),
		"createdAt":       now,
		"updatedAt":       now,
	}
	if n.Notes != "" {
		doc["notes"] = n.Notes
	}
	return doc
}

// Consultation status values that count as active.
const (
	ConsultationScheduled = "scheduled"
	ConsultationOngoing   = "ongoing"
)

type Consultation struct {
	ID             string     `json:"id"`
	ClientID       string     `json:"clientId"`
	ProfessionalID string     `json:"professionalId"`
	Type           string     `json:"type"`
	Status         string     `json:"status"`
	ScheduledTime  *time.Time `json:"scheduledTime,omitempty"`
}

func NormalizeConsultation(id string, raw map[string]interface{}) Consultation {
	return Consultation{
		ID:             id,
		ClientID:       firstString(raw, "client_id", "clientId"),
		ProfessionalID: firstString(raw, "professional_id", "professionalId"),
		Type:           orDefault(firstString(raw, "type", "consultation_type"), "Consultation"),
		Status:         firstString(raw, "status"),
		ScheduledTime:  firstTimePtr(raw, "scheduled_time", "scheduledTime"),
	}
}
