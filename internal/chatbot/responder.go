package chatbot

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"chat-assistant/internal/common/errors"
	"chat-assistant/internal/common/logger"
	"chat-assistant/internal/common/metrics"
	"chat-assistant/internal/common/observability"
	"chat-assistant/internal/models"
	"chat-assistant/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Catalog is the read side of the repository the responder depends on.
type Catalog interface {
	GetProfessionalsByCategory(ctx context.Context, category string, limit int) ([]models.Professional, error)
	SearchProfessionals(ctx context.Context, q repository.ProfessionalQuery) ([]models.Professional, error)
	SearchJobs(ctx context.Context, q repository.JobQuery) ([]models.Job, error)
	GetUserBookings(ctx context.Context, userID string, status models.BookingStatus) ([]models.Booking, error)
	GetActiveConsultations(ctx context.Context, userID string) ([]models.Consultation, error)
	SearchAll(ctx context.Context, term string, limit int) (models.SearchAllResult, error)
}

// InteractionSink receives one event per chat message from a known user.
type InteractionSink interface {
	Log(ctx context.Context, in models.Interaction) error
}

const ActionChatMessage = "chat_message"

type Options struct {
	JobLimit       int
	SearchAllLimit int
	BookingLimit   int
	CategoryLimit  int
	FollowUps      bool
	// Rand picks canned replies; seed it for deterministic output.
	Rand  *rand.Rand
	Clock func() time.Time
}

type Responder struct {
	catalog  Catalog
	contexts ContextStore
	sink     InteractionSink
	obs      *observability.Observability
	opts     Options
	logger   logger.Logger

	randMu sync.Mutex
}

// NewResponder wires the responder. sink and obs may be nil.
func NewResponder(catalog Catalog, contexts ContextStore, sink InteractionSink, obs *observability.Observability, opts Options, log logger.Logger) *Responder {
	if opts.JobLimit <= 0 {
		opts.JobLimit = 5
	}
	if opts.SearchAllLimit <= 0 {
		opts.SearchAllLimit = repository.DefaultSearchAllLimit
	}
	if opts.BookingLimit <= 0 {
		opts.BookingLimit = 10
	}
	if opts.CategoryLimit <= 0 {
		opts.CategoryLimit = repository.DefaultCategoryLimit
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if obs == nil {
		obs = observability.NewNoop()
	}
	return &Responder{
		catalog:  catalog,
		contexts: contexts,
		sink:     sink,
		obs:      obs,
		opts:     opts,
		logger:   logger.Component(log, "responder"),
	}
}

// GenerateResponse always returns a reply; failures become the generic error reply.
func (r *Responder) GenerateResponse(ctx context.Context, text, userID string) models.ChatResponse {
	start := r.opts.Clock()
	ctx, span := r.obs.StartSpan(ctx, "chat.generate_response")
	defer span.End()

	intent := AnalyzeIntent(text)
	filters := ExtractFilters(text)

	if userID != "" && r.sink != nil {
		err := r.sink.Log(ctx, models.Interaction{
			UserID: userID,
			Action: ActionChatMessage,
			Data: map[string]interface{}{
				"message": text,
				"intent":  intent,
				"filters": filters,
			},
			Timestamp: start,
		})
		if err != nil {
			r.logger.Warn("interaction log failed", map[string]interface{}{"userId": userID, "error": err.Error()})
		}
	}

	intent, filters = r.resolveFollowUp(ctx, userID, intent, filters)
	span.SetAttributes(
		attribute.String("chat.intent", string(intent.Type)),
		attribute.String("chat.category", intent.Category),
	)

	resp, err := r.dispatch(ctx, text, intent, filters, userID)
	if err != nil {
		genErr := errors.NewResponseGenerationFailedError(string(intent.Type), err)
		span.RecordError(genErr)
		span.SetStatus(codes.Error, genErr.Details)
		r.logger.Error("response generation failed", map[string]interface{}{
			"intent": string(intent.Type),
			"userId": userID,
			"code":   string(errors.Normalize(err).Code),
			"error":  genErr.Details,
		})
		resp = errorReply()
	}

	if userID != "" && resp.Type != models.ResponseError {
		saveErr := r.contexts.Save(ctx, userID, models.ConversationContext{
			LastIntent: intent.Type,
			Category:   intent.Category,
			Filters:    filters,
		})
		if saveErr != nil {
			r.logger.Warn("context save failed", map[string]interface{}{"userId": userID, "error": saveErr.Error()})
		}
	}

	metrics.ChatResponses.WithLabelValues(string(intent.Type), string(resp.Type)).Inc()
	r.obs.RecordResponse(ctx, string(intent.Type), string(resp.Type), r.opts.Clock().Sub(start))
	return resp
}

// resolveFollowUp re-targets a general message carrying filters at the previous
// search intent, with the new filters laid over the remembered ones.
func (r *Responder) resolveFollowUp(ctx context.Context, userID string, intent models.IntentResult, filters models.Filters) (models.IntentResult, models.Filters) {
	if !r.opts.FollowUps || userID == "" || intent.Type != models.IntentGeneral || filters.IsEmpty() {
		return intent, filters
	}

	prev, ok, err := r.contexts.Get(ctx, userID)
	if err != nil {
		r.logger.Warn("context lookup failed", map[string]interface{}{"userId": userID, "error": err.Error()})
		return intent, filters
	}
	r.obs.RecordContextLookup(ctx, ok)
	if !ok {
		return intent, filters
	}

	switch prev.LastIntent {
	case models.IntentJobSearch, models.IntentServiceSearch:
	default:
		return intent, filters
	}

	metrics.ChatFollowUps.Inc()
	r.logger.Debug("follow-up resolved", map[string]interface{}{
		"userId":     userID,
		"lastIntent": string(prev.LastIntent),
	})
	return models.IntentResult{Type: prev.LastIntent, Category: prev.Category, Confidence: intent.Confidence},
		prev.Filters.Merge(filters)
}

func (r *Responder) dispatch(ctx context.Context, text string, intent models.IntentResult, filters models.Filters, userID string) (models.ChatResponse, error) {
	switch intent.Type {
	case models.IntentServiceSearch:
		return r.handleServiceSearch(ctx, intent.Category)
	case models.IntentJobSearch:
		return r.handleJobSearch(ctx, filters)
	case models.IntentBooking:
		return r.handleBooking(ctx, filters, userID)
	case models.IntentStatusInquiry:
		return r.handleStatusInquiry(ctx, userID)
	case models.IntentHelp:
		return helpReply(), nil
	case models.IntentProfile:
		return profileReply(userID), nil
	default:
		return r.handleGeneral(ctx, text), nil
	}
}

func (r *Responder) pick(n int) int {
	r.randMu.Lock()
	defer r.randMu.Unlock()
	return r.opts.Rand.Intn(n)
}
