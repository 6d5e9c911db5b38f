package api

import (
	"net/http"

	"chat-assistant/internal/common/errors"
	"chat-assistant/internal/common/validation"
	"chat-assistant/internal/models"

	"github.com/gin-gonic/gin"
)

const defaultServiceType = "Consultation"

// createBooking handles POST /api/v1/bookings. The client id comes from the body or
// the user header; without either the call is unauthenticated.
func (s *Server) createBooking(c *gin.Context) {
	doc, ok := s.decodeBody(c)
	if !ok {
		return
	}
	if id, _ := doc["clientId"].(string); id == "" {
		if header := userID(c, ""); header != "" {
			doc["clientId"] = header
		} else {
			s.writeError(c, errors.NewAuthRequiredError("createBooking"))
			return
		}
	}

	var in models.NewBooking
	if !s.validateInto(c, validation.SchemaBookingCreate, doc, &in) {
		return
	}
	if in.ServiceType == "" {
		in.ServiceType = defaultServiceType
	}

	booking, err := s.repo.CreateBooking(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.notify(c, "bookingCreated", func() error {
		_, err := s.notifier.BookingCreated(c.Request.Context(), *booking)
		return err
	})
	c.JSON(http.StatusCreated, booking)
}

type statusRequest struct {
	Status string `json:"status"`
}

// updateBookingStatus handles PATCH /api/v1/bookings/:id/status
func (s *Server) updateBookingStatus(c *gin.Context) {
	doc, ok := s.decodeBody(c)
	if !ok {
		return
	}
	var req statusRequest
	if !s.validateInto(c, validation.SchemaBookingStatus, doc, &req) {
		return
	}

	booking, err := s.repo.UpdateBookingStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.notify(c, "bookingStatusChanged", func() error {
		_, err := s.notifier.BookingStatusChanged(c.Request.Context(), *booking)
		return err
	})
	c.JSON(http.StatusOK, booking)
}

// listUserBookings handles GET /api/v1/users/:id/bookings?status=
func (s *Server) listUserBookings(c *gin.Context) {
	var status models.BookingStatus
	if raw := c.Query("status"); raw != "" {
		st, err := models.ParseBookingStatus(raw)
		if err != nil {
			s.writeError(c, errors.NewInvalidBookingStatusError(raw))
			return
		}
		status = st
	}

	bookings, err := s.repo.GetUserBookings(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// listNotifications handles GET /api/v1/users/:id/notifications?limit=
func (s *Server) listNotifications(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		s.writeError(c, err)
		return
	}
	items, err := s.repo.GetUserNotifications(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

// getProfile handles GET /api/v1/users/:id/profile
func (s *Server) getProfile(c *gin.Context) {
	id := c.Param("id")
	user, err := s.repo.GetUserProfile(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if user == nil {
		s.writeError(c, errors.NewDocumentNotFoundError("users", id))
		return
	}
	c.JSON(http.StatusOK, user)
}

// updateProfile handles PATCH /api/v1/users/:id/profile. Only the user may edit it.
func (s *Server) updateProfile(c *gin.Context) {
	id := c.Param("id")
	if caller := userID(c, ""); caller != id {
		s.writeError(c, errors.NewAuthRequiredError("updateUserProfile"))
		return
	}
	doc, ok := s.decodeBody(c)
	if !ok {
		return
	}
	delete(doc, "id")

	if err := s.repo.UpdateUserProfile(c.Request.Context(), id, doc); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// notify runs send when a notifier is configured; failures are logged only.
func (s *Server) notify(c *gin.Context, event string, send func() error) {
	if s.notifier == nil {
		return
	}
	if err := send(); err != nil {
		s.logger.Warn("notification failed", map[string]interface{}{
			"event": event,
			"path":  c.FullPath(),
			"error": err.Error(),
		})
	}
}
