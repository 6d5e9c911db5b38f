package createbooking

import "chat-assistant/internal/models"

type Input struct {
	ClientID        string `json:"clientId"`
	ProfessionalID  string `json:"professionalId"`
	AppointmentDate string `json:"appointmentDate"`
	ServiceType     string `json:"serviceType"`
	Notes           string `json:"notes"`
}

type Output struct {
	BookingID string         `json:"bookingId"`
	Booking   models.Booking `json:"booking"`
}
