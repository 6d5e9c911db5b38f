package repository

import (
	"context"

	"chat-assistant/internal/docstore"
	"chat-assistant/internal/models"
)

// Job sort keys.
const (
	SortSalaryHigh = "salary_high"
	SortSalaryLow  = "salary_low"
)

// JobQuery holds the optional constraints of a job search. Only active listings are
// ever returned.
type JobQuery struct {
	JobType         string
	Location        string
	Experience      string
	Company         string
	MinSalary       int
	MaxSalary       int
	WorkArrangement string
	SortBy          string
	Limit           int
}

// JobQueryFromFilters maps extracted chat filters onto a job search.
func JobQueryFromFilters(f models.Filters, limit int) JobQuery {
	q := JobQuery{
		JobType:         f.JobType,
		Location:        f.Location,
		Experience:      f.Experience,
		WorkArrangement: f.WorkArrangement,
		Limit:           limit,
	}
	if f.MinSalary != nil {
		q.MinSalary = *f.MinSalary
	}
	if f.MaxSalary != nil {
		q.MaxSalary = *f.MaxSalary
	}
	switch f.SortBy {
	case SortSalaryHigh, SortSalaryLow, SortNewest:
		q.SortBy = f.SortBy
	}
	return q
}

func (q JobQuery) build() docstore.Query {
	dq := docstore.From(docstore.CollectionPlacements).Where("isActive", docstore.OpEqual, true)
	if q.JobType != "" {
		dq = dq.Where("jobType", docstore.OpEqual, q.JobType)
	}
	if q.Location != "" {
		dq = dq.Where("location", docstore.OpEqual, q.Location)
	}
	if q.Experience != "" {
		dq = dq.Where("experience", docstore.OpEqual, q.Experience)
	}
	if q.MinSalary > 0 {
		dq = dq.Where("salaryMin", docstore.OpGreaterEqual, q.MinSalary)
	}
	if q.MaxSalary > 0 {
		dq = dq.Where("salaryMax", docstore.OpLessEqual, q.MaxSalary)
	}
	if q.Company != "" {
		dq = dq.Where("company", docstore.OpEqual, q.Company)
	}
	if q.WorkArrangement != "" {
		dq = dq.Where("workArrangement", docstore.OpArrayContains, q.WorkArrangement)
	}

	switch q.SortBy {
	case SortSalaryHigh:
		dq = dq.OrderBy("salaryMax", docstore.Desc)
	case SortSalaryLow:
		dq = dq.OrderBy("salaryMin", docstore.Asc)
	default:
		dq = dq.OrderBy("createdAt", docstore.Desc)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultJobLimit
	}
	return dq.WithLimit(limit)
}

func (r *Repository) SearchJobs(ctx context.Context, q JobQuery) ([]models.Job, error) {
	docs, err := r.query(ctx, "searchJobs", q.build())
	if err != nil {
		return nil, err
	}
	jobs := make([]models.Job, 0, len(docs))
	for _, d := range docs {
		jobs = append(jobs, models.NormalizeJob(d.ID, d.Data))
	}
	return jobs, nil
}

// GetJobByID returns nil when the listing does not exist.
func (r *Repository) GetJobByID(ctx context.Context, id string) (*models.Job, error) {
	doc, err := r.get(ctx, "getJobById", docstore.CollectionPlacements, id)
	if err != nil || doc == nil {
		return nil, err
	}
	job := models.NormalizeJob(doc.ID, doc.Data)
	return &job, nil
}
