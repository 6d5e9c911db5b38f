package generateresponse

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

const TaskType = "generate-chat-response"

// Responder produces the chat reply for one message.
type Responder interface {
	GenerateResponse(ctx context.Context, text, userID string) models.ChatResponse
}

type Handler struct {
	config     *Config
	responder  Responder
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, responder Responder, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		responder:  responder,
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
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":       job.Key,
		"responseType": string(output.Response.Type),
	})
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	input.Message = strings.TrimSpace(input.Message)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	resp := h.responder.GenerateResponse(ctx, input.Message, input.UserID)
	return &Output{Response: resp}, nil
}

// validateInput checks the chat fields only; process variables carry more.
func validateInput(input *Input) error {
	doc := map[string]interface{}{"message": input.Message}
	if input.UserID != "" {
		doc["userId"] = input.UserID
	}
	result, err := validation.Validate(validation.SchemaChatMessage, doc)
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
