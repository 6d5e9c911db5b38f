package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chat-assistant/internal/chatbot"
	"chat-assistant/internal/common/config"
	"chat-assistant/internal/common/logger"
	"chat-assistant/internal/docstore"
	"chat-assistant/internal/models"
	"chat-assistant/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingNotifier struct {
	created []models.Booking
	changed []models.Booking
	alerts  []string
}

func (n *recordingNotifier) BookingCreated(_ context.Context, b models.Booking) (*models.Notification, error) {
	n.created = append(n.created, b)
	return &models.Notification{Type: "booking_created"}, nil
}

func (n *recordingNotifier) BookingStatusChanged(_ context.Context, b models.Booking) (*models.Notification, error) {
	n.changed = append(n.changed, b)
	return &models.Notification{Type: "booking_status"}, nil
}

func (n *recordingNotifier) CategoryAlert(_ context.Context, userID, category string) (*models.Notification, error) {
	n.alerts = append(n.alerts, userID+":"+category)
	return &models.Notification{Type: "category_alert"}, nil
}

type testEnv struct {
	router   *gin.Engine
	store    *docstore.MemoryStore
	contexts *chatbot.MemoryContextStore
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.NewTestLogger(t)
	store := docstore.NewMemoryStore()
	repo := repository.New(store, nil, repository.Options{}, log)
	contexts := chatbot.NewMemoryContextStore(0, nil)
	responder := chatbot.NewResponder(repo, contexts, nil, nil, chatbot.Options{Rand: rand.New(rand.NewSource(1))}, log)
	notifier := &recordingNotifier{}

	srv := New(repo, responder, notifier, config.ServerConfig{AllowedOrigins: []string{"*"}}, log)
	return &testEnv{router: srv.Router(), store: store, contexts: contexts, notifier: notifier}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, rec)
	errBody, ok := body["error"].(map[string]interface{})
	require.True(t, ok, rec.Body.String())
	return errBody["code"].(string)
}

func TestChat_ReturnsReply(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/chat", map[string]interface{}{"message": "how do I use this"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "help_menu", body["type"])
	assert.NotEmpty(t, body["quickReplies"])
}

func TestChat_UserFromHeaderSavesContext(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/chat",
		map[string]interface{}{"message": "I need a therapist"},
		map[string]string{HeaderUserID: "u1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no_results", decode(t, rec)["type"])
	assert.Equal(t, 1, env.contexts.Len())
}

func TestChat_RejectsInvalidPayload(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing message", map[string]interface{}{"userId": "u1"}},
		{"empty message", map[string]interface{}{"message": ""}},
		{"unknown field", map[string]interface{}{"message": "hi", "extra": 1}},
		{"not an object", []string{"hi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/chat", tt.body, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "PAYLOAD_VALIDATION_FAILED", errorCode(t, rec))
		})
	}
}

func TestQuickReplies(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/chat/quick-replies/job_list", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"Apply now", "Save job", "View company", "Search similar"}, decode(t, rec)["quickReplies"])
}

func TestNotifyMe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/chat/notify-me", map[string]interface{}{"category": "lawyer"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/chat/notify-me",
		map[string]interface{}{"category": "lawyer"},
		map[string]string{HeaderUserID: "u1"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"u1:lawyer"}, env.notifier.alerts)
}

func TestProfessionals(t *testing.T) {
	env := newTestEnv(t)
	env.store.Seed(docstore.CollectionProfessionals, "p1", map[string]interface{}{"name": "Dr. Asha", "rating": 4.9})
	env.store.Seed(docstore.CollectionProfessionals, "p2", map[string]interface{}{"name": "Dr. Bala", "rating": 3.9})

	rec := env.do(t, http.MethodGet, "/api/v1/professionals/p1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Dr. Asha", decode(t, rec)["name"])

	rec = env.do(t, http.MethodGet, "/api/v1/professionals/missing", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "DOCUMENT_NOT_FOUND", errorCode(t, rec))

	rec = env.do(t, http.MethodGet, "/api/v1/professionals?minRating=4.5", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["professionals"], 1)

	rec = env.do(t, http.MethodGet, "/api/v1/professionals?minRating=high", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvailabilityWindow(t *testing.T) {
	env := newTestEnv(t)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	env.store.Seed(docstore.CollectionAvailabilitySlots, "s1", map[string]interface{}{"professional_id": "p1", "start_date": start})
	env.store.Seed(docstore.CollectionAvailabilitySlots, "s2", map[string]interface{}{"professional_id": "p1", "start_date": start.Add(30 * 24 * time.Hour)})

	rec := env.do(t, http.MethodGet, "/api/v1/professionals/p1/availability?start=2026-03-01T00:00:00Z", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["slots"], 1)

	rec = env.do(t, http.MethodGet, "/api/v1/professionals/p1/availability?start=2026-03-05T00:00:00Z&end=2026-03-01T00:00:00Z", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobs(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	env.store.Seed(docstore.CollectionPlacements, "j1", map[string]interface{}{"title": "Nurse", "isActive": true, "location": "Mumbai", "createdAt": now})
	env.store.Seed(docstore.CollectionPlacements, "j2", map[string]interface{}{"title": "Clerk", "isActive": true, "location": "Pune", "createdAt": now})

	rec := env.do(t, http.MethodGet, "/api/v1/jobs?location=Mumbai", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	jobs := decode(t, rec)["jobs"].([]interface{})
	require.Len(t, jobs, 1)
	assert.Equal(t, "j1", jobs[0].(map[string]interface{})["id"])

	rec = env.do(t, http.MethodGet, "/api/v1/jobs/j2", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/jobs/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookingFlow(t *testing.T) {
	env := newTestEnv(t)
	payload := map[string]interface{}{
		"professionalId":  "p1",
		"appointmentDate": "2026-03-04T15:30:00Z",
	}

	rec := env.do(t, http.MethodPost, "/api/v1/bookings", payload, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTH_REQUIRED", errorCode(t, rec))

	rec = env.do(t, http.MethodPost, "/api/v1/bookings", payload, map[string]string{HeaderUserID: "u1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, "Consultation", created["serviceType"])
	require.Len(t, env.notifier.created, 1)
	id := created["id"].(string)

	rec = env.do(t, http.MethodPatch, "/api/v1/bookings/"+id+"/status", map[string]interface{}{"status": "completed"}, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", errorCode(t, rec))

	rec = env.do(t, http.MethodPatch, "/api/v1/bookings/"+id+"/status", map[string]interface{}{"status": "archived"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/v1/bookings/"+id+"/status", map[string]interface{}{"status": "confirmed"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "confirmed", decode(t, rec)["status"])
	require.Len(t, env.notifier.changed, 1)

	rec = env.do(t, http.MethodPatch, "/api/v1/bookings/missing/status", map[string]interface{}{"status": "confirmed"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/users/u1/bookings?status=confirmed", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["bookings"], 1)

	rec = env.do(t, http.MethodGet, "/api/v1/users/u1/bookings?status=bogus", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_BOOKING_STATUS", errorCode(t, rec))
}

func TestBookingCreate_BadDate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/bookings", map[string]interface{}{
		"clientId":        "u1",
		"professionalId":  "p1",
		"appointmentDate": "next tuesday",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	env.store.Seed(docstore.CollectionUsers, "u1", map[string]interface{}{"name": "Asha"})

	rec := env.do(t, http.MethodPatch, "/api/v1/users/u1/profile", map[string]interface{}{"name": "Asha K"}, map[string]string{HeaderUserID: "u2"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/v1/users/u1/profile", map[string]interface{}{"name": "Asha K"}, map[string]string{HeaderUserID: "u1"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/users/u1/profile", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Asha K", decode(t, rec)["name"])

	rec = env.do(t, http.MethodGet, "/api/v1/users/ghost/profile", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchRequiresTerm(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/search", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/search?q=nurse", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "buckets are per client")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestRateLimiter_Middleware(t *testing.T) {
	log := logger.NewTestLogger(t)
	store := docstore.NewMemoryStore()
	repo := repository.New(store, nil, repository.Options{}, log)
	responder := chatbot.NewResponder(repo, chatbot.NewMemoryContextStore(0, nil), nil, nil, chatbot.Options{}, log)
	router := New(repo, responder, nil, config.ServerConfig{
		AllowedOrigins: []string{"*"},
		RateLimitRPS:   0.001,
		RateLimitBurst: 1,
	}, log).Router()

	var codes []int
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/chat/quick-replies/error", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestOpsRouter(t *testing.T) {
	healthy := ReadinessCheck{Name: "store", Check: func(context.Context) error { return nil }}
	broken := ReadinessCheck{Name: "redis", Check: func(context.Context) error { return fmt.Errorf("connection refused") }}

	get := func(router *gin.Engine, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	router := OpsRouter(healthy)
	assert.Equal(t, http.StatusOK, get(router, "/health").Code)
	assert.Equal(t, http.StatusOK, get(router, "/ready").Code)
	assert.Equal(t, http.StatusOK, get(router, "/metrics").Code)

	rec := get(OpsRouter(healthy, broken), "/ready")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "not_ready", body["status"])
	assert.Equal(t, "connection refused", body["checks"].(map[string]interface{})["redis"])
}
