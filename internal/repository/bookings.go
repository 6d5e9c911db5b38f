package repository

import (
	"context"
	stderrors "errors"

	"chat-assistant/internal/common/errors"
	"chat-assistant/internal/docstore"
	"chat-assistant/internal/models"
)

// CreateBooking stores a pending booking. A client id is required.
func (r *Repository) CreateBooking(ctx context.Context, in models.NewBooking) (*models.Booking, error) {
	if in.ClientID == "" {
		return nil, errors.NewAuthRequiredError("createBooking")
	}
	if in.ProfessionalID == "" {
		return nil, errors.NewPayloadValidationFailedError("professionalId is required")
	}

	now := r.now().UTC()
	data := in.Document(now)
	id, err := r.store.Add(ctx, docstore.CollectionBookings, data)
	if err != nil {
		return nil, r.writeFailed("createBooking", docstore.CollectionBookings, err)
	}

	r.logger.Info("booking created", map[string]interface{}{
		"bookingId":      id,
		"clientId":       in.ClientID,
		"professionalId": in.ProfessionalID,
	})
	booking := models.NormalizeBooking(id, data)
	return &booking, nil
}

// GetUserBookings lists a client's bookings, newest appointment first. An empty status
// returns every status.
func (r *Repository) GetUserBookings(ctx context.Context, userID string, status models.BookingStatus) ([]models.Booking, error) {
	q := docstore.From(docstore.CollectionBookings).Where("clientId", docstore.OpEqual, userID)
	if status != "" {
		q = q.Where("status", docstore.OpEqual, string(status))
	}
	q = q.OrderBy("appointmentDate", docstore.Desc).WithLimit(DefaultBookingLimit)

	docs, err := r.query(ctx, "getUserBookings", q)
	if err != nil {
		return nil, err
	}
	out := make([]models.Booking, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.NormalizeBooking(d.ID, d.Data))
	}
	return out, nil
}

// GetBooking returns nil when the booking does not exist.
func (r *Repository) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	doc, err := r.get(ctx, "getBooking", docstore.CollectionBookings, id)
	if err != nil || doc == nil {
		return nil, err
	}
	b := models.NormalizeBooking(doc.ID, doc.Data)
	return &b, nil
}

// UpdateBookingStatus moves a booking along the status graph and returns the updated
// booking.
func (r *Repository) UpdateBookingStatus(ctx context.Context, id, status string) (*models.Booking, error) {
	to, err := models.ParseBookingStatus(status)
	if err != nil {
		return nil, errors.NewInvalidBookingStatusError(status)
	}

	current, err := r.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, errors.NewDocumentNotFoundError(docstore.CollectionBookings, id)
	}
	if !models.CanTransition(current.Status, to) {
		return nil, errors.NewInvalidStatusTransitionError(string(current.Status), string(to))
	}

	now := r.now().UTC()
	err = r.store.Update(ctx, docstore.CollectionBookings, id, map[string]interface{}{
		"status":    string(to),
		"updatedAt": now,
	})
	if stderrors.Is(err, docstore.ErrNotFound) {
		return nil, errors.NewDocumentNotFoundError(docstore.CollectionBookings, id)
	}
	if err != nil {
		return nil, r.writeFailed("updateBookingStatus", docstore.CollectionBookings, err)
	}

	r.logger.Info("booking status updated", map[string]interface{}{
		"bookingId": id,
		"from":      string(current.Status),
		"to":        string(to),
	})
	current.Status = to
	current.UpdatedAt = &now
	return current, nil
}

// GetActiveConsultations lists scheduled and ongoing consultations, soonest first.
func (r *Repository) GetActiveConsultations(ctx context.Context, userID string) ([]models.Consultation, error) {
	q := docstore.From(docstore.CollectionConsultations).
		Where("client_id", docstore.OpEqual, userID).
		Where("status", docstore.OpIn, []interface{}{models.ConsultationScheduled, models.ConsultationOngoing}).
		OrderBy("scheduled_time", docstore.Asc).
		WithLimit(DefaultConsultationLimit)

	docs, err := r.query(ctx, "getActiveConsultations", q)
	if err != nil {
		return nil, err
	}
	out := make([]models.Consultation, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.NormalizeConsultation(d.ID, d.Data))
	}
	return out, nil
}
