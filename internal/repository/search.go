package repository

import (
	"context"
	"strings"

	"chat-assistant/internal/models"
)

// SearchAll runs an unfiltered professional and job search plus a case-insensitive
// name match over active specializations, each capped at limit.
func (r *Repository) SearchAll(ctx context.Context, term string, limit int) (models.SearchAllResult, error) {
	if limit <= 0 {
		limit = DefaultSearchAllLimit
	}

	var out models.SearchAllResult
	pros, err := r.SearchProfessionals(ctx, ProfessionalQuery{Limit: limit})
	if err != nil {
		return out, err
	}
	out.Professionals = pros

	jobs, err := r.SearchJobs(ctx, JobQuery{Limit: limit})
	if err != nil {
		return out, err
	}
	out.Jobs = jobs

	specs, err := r.GetActiveSpecializations(ctx)
	if err != nil {
		return out, err
	}
	needle := strings.ToLower(term)
	for _, s := range specs {
		if len(out.Specializations) == limit {
			break
		}
		if strings.Contains(strings.ToLower(s.Name), needle) {
			out.Specializations = append(out.Specializations, s)
		}
	}
	return out, nil
}
