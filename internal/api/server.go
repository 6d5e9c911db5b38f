// Package api exposes the assistant and its catalog over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"chat-assistant/internal/analytics"
	"chat-assistant/internal/chatbot"
	"chat-assistant/internal/common/config"
	"chat-assistant/internal/common/errors"
	"chat-assistant/internal/common/logger"
	"chat-assistant/internal/common/validation"
	"chat-assistant/internal/models"
	"chat-assistant/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HeaderUserID carries the caller's user id when the body does not.
const HeaderUserID = "X-User-ID"

// Notifier delivers booking and alert notifications. Failures never fail a request.
type Notifier interface {
	BookingCreated(ctx context.Context, b models.Booking) (*models.Notification, error)
	BookingStatusChanged(ctx context.Context, b models.Booking) (*models.Notification, error)
	CategoryAlert(ctx context.Context, userID, category string) (*models.Notification, error)
}

type Server struct {
	repo      *repository.Repository
	responder *chatbot.Responder
	notifier  Notifier
	cfg       config.ServerConfig
	logger    logger.Logger
}

// New builds the API server. notifier may be nil.
func New(repo *repository.Repository, responder *chatbot.Responder, notifier Notifier, cfg config.ServerConfig, log logger.Logger) *Server {
	return &Server{
		repo:      repo,
		responder: responder,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger.Component(log, "api"),
	}
}

// Router returns the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = s.cfg.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", HeaderUserID}
	router.Use(cors.New(corsConfig))

	if s.cfg.RateLimitRPS > 0 {
		router.Use(NewRateLimiter(s.cfg.RateLimitRPS, s.cfg.RateLimitBurst).Middleware())
	}

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/chat", s.chat)
		apiV1.GET("/chat/quick-replies/:type", s.quickReplies)
		apiV1.POST("/chat/notify-me", s.notifyMe)

		apiV1.GET("/search", s.searchAll)
		apiV1.GET("/professionals", s.listProfessionals)
		apiV1.GET("/professionals/:id", s.getProfessional)
		apiV1.GET("/professionals/:id/availability", s.getAvailability)
		apiV1.GET("/specializations", s.listSpecializations)

		apiV1.GET("/jobs", s.listJobs)
		apiV1.GET("/jobs/:id", s.getJob)

		apiV1.POST("/bookings", s.createBooking)
		apiV1.PATCH("/bookings/:id/status", s.updateBookingStatus)

		apiV1.GET("/users/:id/bookings", s.listUserBookings)
		apiV1.GET("/users/:id/notifications", s.listNotifications)
		apiV1.GET("/users/:id/profile", s.getProfile)
		apiV1.PATCH("/users/:id/profile", s.updateProfile)
	}
	return router
}

// HTTPServer wraps Router in an http.Server on the configured port.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  config.GetDuration(s.cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(s.cfg.WriteTimeout),
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request", map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}

// userID prefers the explicit value and falls back to the header.
func userID(c *gin.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return strings.TrimSpace(c.GetHeader(HeaderUserID))
}

func clientContext(c *gin.Context) context.Context {
	return analytics.WithClientContext(c.Request.Context(), analytics.ClientContext{
		UserAgent: c.Request.UserAgent(),
		URL:       c.Request.URL.Path,
	})
}

func (s *Server) writeError(c *gin.Context, err error) {
	stdErr := errors.Normalize(err)
	status := errors.HTTPStatus(stdErr.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"path":  c.FullPath(),
			"code":  string(stdErr.Code),
			"error": err.Error(),
		})
	}
	c.AbortWithStatusJSON(status, gin.H{"error": stdErr})
}

// decodeBody reads a JSON object body.
func (s *Server) decodeBody(c *gin.Context) (map[string]interface{}, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		s.writeError(c, errors.NewPayloadValidationFailedError(err.Error()))
		return nil, false
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		s.writeError(c, errors.NewPayloadValidationFailedError("request body must be a JSON object"))
		return nil, false
	}
	return doc, true
}

// validateInto checks doc against schema and decodes it into out.
func (s *Server) validateInto(c *gin.Context, schema string, doc map[string]interface{}, out interface{}) bool {
	result, err := validation.Validate(schema, doc)
	if err != nil {
		s.writeError(c, err)
		return false
	}
	if !result.Valid {
		s.writeError(c, errors.NewPayloadValidationFailedError(strings.Join(result.GetErrorMessages(), "; ")))
		return false
	}

	raw, err := json.Marshal(doc)
	if err == nil {
		err = json.Unmarshal(raw, out)
	}
	if err != nil {
		s.writeError(c, errors.NewPayloadValidationFailedError(err.Error()))
		return false
	}
	return true
}
