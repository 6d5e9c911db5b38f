package models

import "time"

// Intent is the classifier's label for a message.
type Intent string

const (
	IntentBooking       Intent = "booking"
	IntentJobSearch     Intent = "job_search"
	IntentServiceSearch Intent = "service_search"
	IntentHelp          Intent = "help"
	IntentProfile       Intent = "profile"
	IntentStatusInquiry Intent = "status_inquiry"
	IntentGeneral       Intent = "general"
)

// IntentResult carries the detected intent. Category is set for service_search only.
type IntentResult struct {
	Type       Intent  `json:"type"`
	Confidence float64 `json:"confidence"`
	Category   string  `json:"category,omitempty"`
}

// Filters is the structured form of constraints found in a message.
// Nil pointers and empty strings mean "not mentioned".
type Filters struct {
	Location        string   `json:"location,omitempty"`
	Experience      string   `json:"experience,omitempty"`
	JobType         string   `json:"jobType,omitempty"`
	WorkArrangement string   `json:"workArrangement,omitempty"`
	MaxPrice        *int     `json:"maxPrice,omitempty"`
	MaxSalary       *int     `json:"maxSalary,omitempty"`
	MinPrice        *int     `json:"minPrice,omitempty"`
	MinSalary       *int     `json:"minSalary,omitempty"`
	MinRating       *float64 `json:"minRating,omitempty"`
	SortBy          string   `json:"sortBy,omitempty"`
	Verified        *bool    `json:"verified,omitempty"`
}

// IsEmpty reports whether no constraint was extracted.
func (f Filters) IsEmpty() bool {
	return f == Filters{}
}

// Merge returns f with every field set in overlay replacing its counterpart.
func (f Filters) Merge(overlay Filters) Filters {
	out := f
	if overlay.Location != "" {
		out.Location = overlay.Location
	}
	if overlay.Experience != "" {
		out.Experience = overlay.Experience
	}
	if overlay.JobType != "" {
		out.JobType = overlay.JobType
	}
	if overlay.WorkArrangement != "" {
		out.WorkArrangement = overlay.WorkArrangement
	}
	if overlay.MaxPrice != nil {
		out.MaxPrice = overlay.MaxPrice
	}
	if overlay.MaxSalary != nil {
		out.MaxSalary = overlay.MaxSalary
	}
	if overlay.MinPrice != nil {
		out.MinPrice = overlay.MinPrice
	}
	if overlay.MinSalary != nil {
		out.MinSalary = overlay.MinSalary
	}
	if overlay.MinRating != nil {
		out.MinRating = overlay.MinRating
	}
	if overlay.SortBy != "" {
		out.SortBy = overlay.SortBy
	}
	if overlay.Verified != nil {
		out.Verified = overlay.Verified
	}
	return out
}

// ResponseType tells the caller how to render a reply.
type ResponseType string

const (
	ResponseProfessionalList    ResponseType = "professional_list"
	ResponseJobList             ResponseType = "job_list"
	ResponseNoResults           ResponseType = "no_results"
	ResponseAuthRequired        ResponseType = "auth_required"
	ResponseBookingStart        ResponseType = "booking_start"
	ResponseBookingSelection    ResponseType = "booking_selection"
	ResponseNoBookings          ResponseType = "no_bookings"
	ResponseStatusSummary       ResponseType = "status_summary"
	ResponseHelpMenu            ResponseType = "help_menu"
	ResponseProfileMenu         ResponseType = "profile_menu"
	ResponseSearchResults       ResponseType = "search_results"
	ResponseClarificationNeeded ResponseType = "clarification_needed"
	ResponseError               ResponseType = "error"
)

// ChatResponse is the single value returned to the chat caller.
type ChatResponse struct {
	Text         string       `json:"text"`
	Type         ResponseType `json:"type"`
	QuickReplies []string     `json:"quickReplies"`
	Data         interface{}  `json:"data,omitempty"`
}

// StatusData is the payload of a status_summary reply.
type StatusData struct {
	Bookings      []Booking      `json:"bookings"`
	Consultations []Consultation `json:"consultations"`
}

// SearchAllResult is the payload of a search_results reply.
type SearchAllResult struct {
	Professionals   []Professional   `json:"professionals"`
	Jobs            []Job            `json:"jobs"`
	Specializations []Specialization `json:"specializations"`
}

func (r SearchAllResult) IsEmpty() bool {
	return len(r.Professionals) == 0 && len(r.Jobs) == 0
}

// ConversationContext is what the assistant remembers about a user's last turn.
type ConversationContext struct {
	LastIntent Intent    `json:"lastIntent"`
	Category   string    `json:"category,omitempty"`
	Filters    Filters   `json:"filters"`
	Timestamp  time.Time `json:"timestamp"`
}
