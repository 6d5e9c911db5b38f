package updatebookingstatus

import "chat-assistant/internal/models"

type Input struct {
	BookingID string `json:"bookingId"`
	Status    string `json:"status"`
}

type Output struct {
	Booking        models.Booking `json:"booking"`
	BookingStatus  string         `json:"bookingStatus"`
	StatusTerminal bool           `json:"statusTerminal"`
}
