package api

import (
	"net/http"

	"chat-assistant/internal/chatbot"
	"chat-assistant/internal/common/errors"
	"chat-assistant/internal/common/validation"
	"chat-assistant/internal/models"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// chat handles POST /api/v1/chat. Any valid message gets a 200 with a reply.
func (s *Server) chat(c *gin.Context) {
	doc, ok := s.decodeBody(c)
	if !ok {
		return
	}
	var req chatRequest
	if !s.validateInto(c, validation.SchemaChatMessage, doc, &req) {
		return
	}

	resp := s.responder.GenerateResponse(clientContext(c), req.Message, userID(c, req.UserID))
	c.JSON(http.StatusOK, resp)
}

// quickReplies handles GET /api/v1/chat/quick-replies/:type
func (s *Server) quickReplies(c *gin.Context) {
	replies := chatbot.ContextualQuickReplies(models.ResponseType(c.Param("type")))
	c.JSON(http.StatusOK, gin.H{"quickReplies": replies})
}

type notifyMeRequest struct {
	Category string `json:"category" binding:"required"`
	UserID   string `json:"userId"`
}

// notifyMe handles POST /api/v1/chat/notify-me
func (s *Server) notifyMe(c *gin.Context) {
	var req notifyMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, errors.NewPayloadValidationFailedError(err.Error()))
		return
	}
	uid := userID(c, req.UserID)
	if uid == "" {
		s.writeError(c, errors.NewAuthRequiredError("notifyMe"))
		return
	}
	if s.notifier == nil {
		c.JSON(http.StatusAccepted, gin.H{"notification": nil})
		return
	}

	n, err := s.notifier.CategoryAlert(c.Request.Context(), uid, req.Category)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"notification": n})
}
