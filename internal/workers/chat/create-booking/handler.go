package createbooking

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

const TaskType = "create-booking"

type BookingStore interface {
	CreateBooking(ctx context.Context, in models.NewBooking) (*models.Booking, error)
}

type Notifier interface {
	BookingCreated(ctx context.Context, b models.Booking) (*models.Notification, error)
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
	h.logger.Info("job completed", map[string]interface{}{"jobKey": job.Key, "bookingId": output.BookingID})
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.ClientID) == "" {
		return nil, errors.NewAuthRequiredError("createBooking")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	when, err := time.Parse(time.RFC3339, input.AppointmentDate)
	if err != nil {
		return nil, errors.NewPayloadValidationFailedError("appointmentDate must be an RFC 3339 timestamp")
	}
	serviceType := input.ServiceType
	if serviceType == "" {
		serviceType = h.config.DefaultServiceType
	}

	booking, err := h.store.CreateBooking(ctx, models.NewBooking{
		ClientID:        input.ClientID,
		ProfessionalID:  input.ProfessionalID,
		ServiceType:     serviceType,
		AppointmentDate: when,
		Notes:           input.Notes,
	})
	if err != nil {
		return nil, err
	}

	if h.notifier != nil {
		if _, err := h.notifier.BookingCreated(ctx, *booking); err != nil {
			h.logger.Warn("booking notification failed", map[string]interface{}{
				"bookingId": booking.ID,
				"error":     err.Error(),
			})
		}
	}
	return &Output{BookingID: booking.ID, Booking: *booking}, nil
}

func validateInput(input *Input) error {
	doc := map[string]interface{}{
		"clientId":        input.ClientID,
		"professionalId":  input.ProfessionalID,
		"appointmentDate": input.AppointmentDate,
	}
	if input.ServiceType != "" {
		doc["serviceType"] = input.ServiceType
	}
	if input.Notes != "" {
		doc["notes"] = input.Notes
	}
	result, err := validation.Validate(validation.SchemaBookingCreate, doc)
	if err != nil {
		return err
	}
	if !result.Valid {
		return errors.NewPayloadValidationFailedError(strings.Join(result.GetErrorMessages(), "; "))
	}
	return nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, start time.Time, err error) {
	camunda.ObserveJob(TaskType, start, string(errors.Normalize(err).Code))
	h.errHandler.HandleJobError(ctx, client, job, err)
}
