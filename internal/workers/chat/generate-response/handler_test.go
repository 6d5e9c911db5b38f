package generateresponse

import (
	"context"
	"strings"
	"testing"
	"time"

	"chat-assistant/internal/common/errors"
	"chat-assistant/internal/common/logger"
	"chat-assistant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResponder struct {
	gotText string
	gotUser string
}

func (s *stubResponder) GenerateResponse(_ context.Context, text, userID string) models.ChatResponse {
	s.gotText, s.gotUser = text, userID
	return models.ChatResponse{Text: "ok", Type: models.ResponseHelpMenu, QuickReplies: []string{"Find jobs"}}
}

func createTestHandler(t *testing.T) (*Handler, *stubResponder) {
	responder := &stubResponder{}
	return NewHandler(&Config{Timeout: time.Second}, responder, logger.NewTestLogger(t)), responder
}

func TestHandler_Execute_Success(t *testing.T) {
	h, responder := createTestHandler(t)

	out, err := h.execute(context.Background(), &Input{Message: "  how does this work ", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, models.ResponseHelpMenu, out.Response.Type)
	assert.Equal(t, "how does this work", responder.gotText)
	assert.Equal(t, "u1", responder.gotUser)
}

func TestHandler_Execute_AnonymousUser(t *testing.T) {
	h, responder := createTestHandler(t)

	_, err := h.execute(context.Background(), &Input{Message: "hello"})
	require.NoError(t, err)
	assert.Empty(t, responder.gotUser)
}

func TestHandler_Execute_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input *Input
	}{
		{"empty message", &Input{Message: "   "}},
		{"message too long", &Input{Message: strings.Repeat("a", 2001)}},
		{"user id too long", &Input{Message: "hi", UserID: strings.Repeat("u", 129)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, responder := createTestHandler(t)
			_, err := h.execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodePayloadValidationFailed))
			assert.Empty(t, responder.gotText, "responder must not run")
		})
	}
}
