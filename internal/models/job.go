package models

import "time"

const (
	defaultJobTitle      = "Job Position"
	defaultCompany       = "Company"
	defaultLocation      = "Location"
	defaultJobType       = "full-time"
	defaultJobExperience = "entry level"
)

// Job is the canonical view of a document in the placements collection.
type Job struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Company             string     `json:"company"`
	Location            string     `json:"location"`
	JobType             string     `json:"jobType"`
	WorkArrangement     []string   `json:"workArrangement,omitempty"`
	SalaryMin           float64    `json:"salaryMin,omitempty"`
	SalaryMax           float64    `json:"salaryMax,omitempty"`
	Experience          string     `json:"experience"`
	IsActive            bool       `json:"isActive"`
	CreatedAt           *time.Time `json:"createdAt,omitempty"`
	ApplicationDeadline *time.Time `json:"applicationDeadline,omitempty"`
	Description         string     `json:"description,omitempty"`
	Requirements        string     `json:"requirements,omitempty"`
	Benefits            string     `json:"benefits,omitempty"`
}

// NormalizeJob maps a stored job document onto Job.
func NormalizeJob(id string, raw map[string]interface{}) Job {
	j := Job{
		ID:                  id,
		Title:               orDefault(firstString(raw, "title", "job_title", "position"), defaultJobTitle),
		Company:             orDefault(firstString(raw, "company", "company_name", "employer"), defaultCompany),
		Location:            orDefault(firstString(raw, "location", "city", "workplace_location"), defaultLocation),
		JobType:             orDefault(firstString(raw, "jobType", "job_type", "employment_type"), defaultJobType),
		WorkArrangement:     stringList(raw, "workArrangement", "work_arrangement"),
		Experience:          orDefault(firstString(raw, "experience", "experience_level", "required_experience"), defaultJobExperience),
		IsActive:            firstBool(raw, "isActive", "is_active"),
		CreatedAt:           firstTimePtr(raw, "createdAt", "created_at"),
		ApplicationDeadline: firstTimePtr(raw, "applicationDeadline", "application_deadline", "deadline"),
		Description:         text(raw, "description"),
		Requirements:        text(raw, "requirements"),
		Benefits:            text(raw, "benefits"),
	}
	j.SalaryMin, _ = firstNumber(raw, "salaryMin", "salary_min", "min_salary")
	j.SalaryMax, _ = firstNumber(raw, "salaryMax", "salary_max", "max_salary")
	return j
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
