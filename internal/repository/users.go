package repository

import (
	"context"
	stderrors "errors"
	"time"

	"chat-assistant/internal/common/errors"
	"chat-assistant/internal/docstore"
	"chat-assistant/internal/models"
)

// GetUserProfile returns nil when the user does not exist.
func (r *Repository) GetUserProfile(ctx context.Context, userID string) (*models.User, error) {
	doc, err := r.get(ctx, "getUserProfile", docstore.CollectionUsers, userID)
	if err != nil || doc == nil {
		return nil, err
	}
	u := models.NormalizeUser(doc.ID, doc.Data)
	return &u, nil
}

// UpdateUserProfile merges fields into an existing profile and stamps updatedAt.
func (r *Repository) UpdateUserProfile(ctx context.Context, userID string, fields map[string]interface{}) error {
	update := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		update[k] = v
	}
	update["updatedAt"] = r.now().UTC()

	err := r.store.Update(ctx, docstore.CollectionUsers, userID, update)
	if stderrors.Is(err, docstore.ErrNotFound) {
		return errors.NewDocumentNotFoundError(docstore.CollectionUsers, userID)
	}
	if err != nil {
		return r.writeFailed("updateUserProfile", docstore.CollectionUsers, err)
	}
	return nil
}

// GetProfessionalAvailability lists slots starting within [start, end].
func (r *Repository) GetProfessionalAvailability(ctx context.Context, professionalID string, start, end time.Time) ([]models.AvailabilitySlot, error) {
	q := docstore.From(docstore.CollectionAvailabilitySlots).
		Where("professional_id", docstore.OpEqual, professionalID).
		Where("start_date", docstore.OpGreaterEqual, start.UTC()).
		Where("start_date", docstore.OpLessEqual, end.UTC()).
		OrderBy("start_date", docstore.Asc)

	docs, err := r.query(ctx, "getProfessionalAvailability", q)
	if err != nil {
		return nil, err
	}
	out := make([]models.AvailabilitySlot, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.NormalizeAvailabilitySlot(d.ID, d.Data))
	}
	return out, nil
}

func (r *Repository) GetActiveSpecializations(ctx context.Context) ([]models.Specialization, error) {
	q := docstore.From(docstore.CollectionSpecializations).
		Where("isActive", docstore.OpEqual, true).
		OrderBy("name", docstore.Asc)

	docs, err := r.query(ctx, "getActiveSpecializations", q)
	if err != nil {
		return nil, err
	}
	out := make([]models.Specialization, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.NormalizeSpecialization(d.ID, d.Data))
	}
	return out, nil
}

// NotificationInput is the caller-supplied part of a notification.
type NotificationInput struct {
	Type    string
	Title   string
	Message string
	Data    map[string]interface{}
}

// CreateNotification stores an unread notification for userID.
func (r *Repository) CreateNotification(ctx context.Context, userID string, in NotificationInput) (*models.Notification, error) {
	now := r.now().UTC()
	data := map[string]interface{}{
		"userId":    userID,
		"type":      in.Type,
		"title":     in.Title,
		"message":   in.Message,
		"read":      false,
		"createdAt": now,
	}
	if len(in.Data) > 0 {
		data["data"] = in.Data
	}

	id, err := r.store.Add(ctx, docstore.CollectionNotifications, data)
	if err != nil {
		return nil, r.writeFailed("createNotification", docstore.CollectionNotifications, err)
	}
	n := models.NormalizeNotification(id, data)
	return &n, nil
}

// GetUserNotifications lists a user's notifications, newest first.
func (r *Repository) GetUserNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	q := docstore.From(docstore.CollectionNotifications).
		Where("userId", docstore.OpEqual, userID).
		OrderBy("createdAt", docstore.Desc).
		WithLimit(limit)

	docs, err := r.query(ctx, "getUserNotifications", q)
	if err != nil {
		return nil, err
	}
	out := make([]models.Notification, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.NormalizeNotification(d.ID, d.Data))
	}
	return out, nil
}
