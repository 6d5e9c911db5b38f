package updatebookingstatus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"chat-assistant/internal/common/camunda"
	"chat-assistant/internal/common/errors"
	"chat-assistant/internal/common/logger"
	"chat-assistant/internal/common/validation"
	"chat-assistant/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "update-booking-status"

type BookingStore interface {
	UpdateBookingStatus(ctx context.Context, id, status string) (*models.Booking, error)
}

type Notifier interface {
	BookingStatusChanged(ctx context.Context, b models.Booking) (*models.Notification, error)
}

type Handler struct {
	config     *Config
	store      BookingStore
	notifier   Notifier
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

// NewHandler builds the worker handler. notifier may be nil.
func NewHandler(config *Config, store BookingStore, notifier Notifier, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		store:      store,
		notifier:   notifier,
		errHandler: errors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, start, errors.NewPayloadValidationFailedError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, start, err)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"jobKey": job.Key, "error": err.Error()})
		camunda.ObserveJob(TaskType, start, string(errors.ErrCodeInternal))
		return
	}
	camunda.ObserveJob(TaskType, start, "")
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.BookingID == "" {
		return nil, errors.NewPayloadValidationFailedError("bookingId is required")
	}
	result, err := validation.Validate(validation.SchemaBookingStatus, map[string]interface{}{"status": input.Status})
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, errors.NewInvalidBookingStatusError(input.Status).
			WithMetadata("validation", strings.Join(result.GetErrorMessages(), "; "))
	}

	booking, err := h.store.UpdateBookingStatus(ctx, input.BookingID, input.Status)
	if err != nil {
		return nil, err
	}

	if h.notifier != nil {
		if _, err := h.notifier.BookingStatusChanged(ctx, *booking); err != nil {
			h.logger.Warn("status notification failed", map[string]interface{}{
				"bookingId": booking.ID,
				"error":     err.Error(),
			})
		}
	}
	return &Output{
		Booking:        *booking,
		BookingStatus:  string(booking.Status),
		StatusTerminal: booking.Status.IsTerminal(),
	}, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, start time.Time, err error) {
	camunda.ObserveJob(TaskType, start, string(errors.Normalize(err).Code))
	h.errHandler.HandleJobError(ctx, client, job, err)
}
