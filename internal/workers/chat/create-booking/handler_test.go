package createbooking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"chat-assistant/internal/common/errors"
	"chat-assistant/internal/common/logger"
	"chat-assistant/internal/docstore"
	"chat-assistant/internal/models"
	"chat-assistant/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	bookings []models.Booking
	err      error
}

func (n *recordingNotifier) BookingCreated(_ context.Context, b models.Booking) (*models.Notification, error) {
	n.bookings = append(n.bookings, b)
	return &models.Notification{}, n.err
}

func createTestHandler(t *testing.T) (*Handler, *docstore.MemoryStore, *recordingNotifier) {
	t.Helper()
	store := docstore.NewMemoryStore().WithIDGenerator(func() string { return "bk1" })
	repo := repository.New(store, nil, repository.Options{}, logger.NewTestLogger(t))
	notifier := &recordingNotifier{}
	return NewHandler(LoadConfig(), repo, notifier, logger.NewTestLogger(t)), store, notifier
}

func validInput() *Input {
	return &Input{
		ClientID:        "u1",
		ProfessionalID:  "p1",
		AppointmentDate: "2026-03-04T15:30:00Z",
	}
}

func TestHandler_Execute_Success(t *testing.T) {
	h, store, notifier := createTestHandler(t)

	out, err := h.execute(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "bk1", out.BookingID)
	assert.Equal(t, models.BookingPending, out.Booking.Status)
	assert.Equal(t, "Consultation", out.Booking.ServiceType)
	require.NotNil(t, out.Booking.AppointmentDate)
	assert.Equal(t, time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC), *out.Booking.AppointmentDate)

	doc, err := store.Get(context.Background(), docstore.CollectionBookings, "bk1")
	require.NoError(t, err)
	assert.Equal(t, "pending", doc.Data["status"])
	assert.Len(t, notifier.bookings, 1)
}

func TestHandler_Execute_NotificationFailureIsNotFatal(t *testing.T) {
	h, _, notifier := createTestHandler(t)
	notifier.err = fmt.Errorf("ses down")

	_, err := h.execute(context.Background(), validInput())
	require.NoError(t, err)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *Input)
		code   errors.ErrorCode
	}{
		{"missing client", func(in *Input) { in.ClientID = "" }, errors.ErrCodeAuthRequired},
		{"missing professional", func(in *Input) { in.ProfessionalID = "" }, errors.ErrCodePayloadValidationFailed},
		{"bad date", func(in *Input) { in.AppointmentDate = "tomorrow" }, errors.ErrCodePayloadValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, notifier := createTestHandler(t)
			in := validInput()
			tt.mutate(in)

			_, err := h.execute(context.Background(), in)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), err.Error())
			assert.Empty(t, notifier.bookings)
		})
	}
}
