package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"chat-assistant/internal/chatbot"
	"chat-assistant/internal/common/errors"
	"chat-assistant/internal/docstore"
	"chat-assistant/internal/repository"

	"github.com/gin-gonic/gin"
)

const defaultAvailabilityWindow = 7 * 24 * time.Hour

func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.NewPayloadValidationFailedError(fmt.Sprintf("%s must be a non-negative integer", name))
	}
	return v, nil
}

func floatQuery(c *gin.Context, name string) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.NewPayloadValidationFailedError(fmt.Sprintf("%s must be a number", name))
	}
	return v, nil
}

func timeQuery(c *gin.Context, name string, def time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.NewPayloadValidationFailedError(fmt.Sprintf("%s must be an RFC 3339 timestamp", name))
	}
	return v, nil
}

// listProfessionals handles GET /api/v1/professionals. A category routes through
// category resolution; otherwise q is parsed like a chat message and explicit
// parameters override what it yields.
func (s *Server) listProfessionals(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if category := c.Query("category"); category != "" {
		pros, err := s.repo.GetProfessionalsByCategory(c.Request.Context(), category, limit)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"professionals": pros})
		return
	}

	q := repository.ProfessionalQueryFromFilters(chatbot.ExtractFilters(c.Query("q")), limit)
	if raw := c.Query("verified"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(c, errors.NewPayloadValidationFailedError("verified must be a boolean"))
			return
		}
		q.Verified = &v
	}
	if v, err := floatQuery(c, "minRating"); err != nil {
		s.writeError(c, err)
		return
	} else if v > 0 {
		q.MinRating = v
	}
	if v, err := floatQuery(c, "maxPrice"); err != nil {
		s.writeError(c, err)
		return
	} else if v > 0 {
		q.MaxPrice = v
	}
	if v, err := intQuery(c, "minExperience", 0); err != nil {
		s.writeError(c, err)
		return
	} else if v > 0 {
		q.MinExperience = v
	}
	if sortBy := c.Query("sortBy"); sortBy != "" {
		q.SortBy = sortBy
	}

	pros, err := s.repo.SearchProfessionals(c.Request.Context(), q)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"professionals": pros})
}

// getProfessional handles GET /api/v1/professionals/:id
func (s *Server) getProfessional(c *gin.Context) {
	id := c.Param("id")
	pro, err := s.repo.GetProfessionalByID(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if pro == nil {
		s.writeError(c, errors.NewDocumentNotFoundError(docstore.CollectionProfessionals, id))
		return
	}
	c.JSON(http.StatusOK, pro)
}

// getAvailability handles GET /api/v1/professionals/:id/availability?start=&end=
func (s *Server) getAvailability(c *gin.Context) {
	now := time.Now().UTC()
	start, err := timeQuery(c, "start", now)
	if err != nil {
		s.writeError(c, err)
		return
	}
	end, err := timeQuery(c, "end", start.Add(defaultAvailabilityWindow))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if end.Before(start) {
		s.writeError(c, errors.NewPayloadValidationFailedError("end must not be before start"))
		return
	}

	slots, err := s.repo.GetProfessionalAvailability(c.Request.Context(), c.Param("id"), start, end)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// listSpecializations handles GET /api/v1/specializations
func (s *Server) listSpecializations(c *gin.Context) {
	specs, err := s.repo.GetActiveSpecializations(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"specializations": specs})
}

// listJobs handles GET /api/v1/jobs. Like professionals, q is parsed as chat text and
// explicit parameters win.
func (s *Server) listJobs(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		s.writeError(c, err)
		return
	}
	q := repository.JobQueryFromFilters(chatbot.ExtractFilters(c.Query("q")), limit)

	for name, field := range map[string]*string{
		"jobType":         &q.JobType,
		"location":        &q.Location,
		"experience":      &q.Experience,
		"company":         &q.Company,
		"workArrangement": &q.WorkArrangement,
		"sortBy":          &q.SortBy,
	} {
		if v := c.Query(name); v != "" {
			*field = v
		}
	}
	for name, field := range map[string]*int{
		"minSalary": &q.MinSalary,
		"maxSalary": &q.MaxSalary,
	} {
		v, err := intQuery(c, name, *field)
		if err != nil {
			s.writeError(c, err)
			return
		}
		*field = v
	}

	jobs, err := s.repo.SearchJobs(c.Request.Context(), q)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// getJob handles GET /api/v1/jobs/:id
func (s *Server) getJob(c *gin.Context) {
	id := c.Param("id")
	job, err := s.repo.GetJobByID(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if job == nil {
		s.writeError(c, errors.NewDocumentNotFoundError(docstore.CollectionPlacements, id))
		return
	}
	c.JSON(http.StatusOK, job)
}

// searchAll handles GET /api/v1/search?q=
func (s *Server) searchAll(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		s.writeError(c, errors.NewPayloadValidationFailedError("q is required"))
		return
	}
	limit, err := intQuery(c, "limit", repository.DefaultSearchAllLimit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	result, err := s.repo.SearchAll(c.Request.Context(), term, limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
