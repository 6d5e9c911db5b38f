package chatbot

import (
	"context"
	"fmt"
	"strings"

	"chat-assistant/internal/models"
	"chat-assistant/internal/repository"

	"golang.org/x/sync/errgroup"
)

const (
	statusBookingCount      = 3
	statusConsultationCount = 2
	bookingQuickReplyCount  = 3
	generalSummaryCount     = 2
)

func (r *Responder) handleServiceSearch(ctx context.Context, category string) (models.ChatResponse, error) {
	pros, err := r.catalog.GetProfessionalsByCategory(ctx, category, r.opts.CategoryLimit)
	if err != nil {
		return models.ChatResponse{}, fmt.Errorf("service search: %w", err)
	}

	if len(pros) == 0 {
		return models.ChatResponse{
			Text:         fmt.Sprintf("I couldn't find any %s professionals at the moment. Would you like me to search for related services or notify you when new professionals join?", category),
			Type:         models.ResponseNoResults,
			QuickReplies: []string{"Search related services", "Notify me", "Browse all categories"},
		}, nil
	}

	return models.ChatResponse{
		Text:         fmt.Sprintf("Found %d %s professionals. Here are some top-rated options:\n\nClick on any card below to view details or book an appointment.", len(pros), category),
		Type:         models.ResponseProfessionalList,
		QuickReplies: []string{"Refine search", "Browse other services"},
		Data:         pros,
	}, nil
}

func (r *Responder) handleJobSearch(ctx context.Context, filters models.Filters) (models.ChatResponse, error) {
	jobs, err := r.catalog.SearchJobs(ctx, repository.JobQueryFromFilters(filters, r.opts.JobLimit))
	if err != nil {
		return models.ChatResponse{}, fmt.Errorf("job search: %w", err)
	}

	if len(jobs) == 0 {
		return models.ChatResponse{
			Text:         "I couldn't find any jobs matching your criteria at the moment. Would you like me to broaden the search or set up job alerts?",
			Type:         models.ResponseNoResults,
			QuickReplies: []string{"Broaden search", "Set job alerts", "Browse all jobs", "Career guidance"},
		}, nil
	}

	entries := make([]string, 0, len(jobs))
	for _, j := range jobs {
		entries = append(entries, fmt.Sprintf("• **%s** at %s\n  📍 %s | 💰 %s\n  %s - %s",
			j.Title, j.Company, j.Location, salaryText(j.SalaryMin, j.SalaryMax), j.JobType, j.Experience))
	}

	return models.ChatResponse{
		Text:         "Here are some job opportunities I found:\n\n" + strings.Join(entries, "\n\n") + "\n\nWould you like to apply to any of these positions?",
		Type:         models.ResponseJobList,
		QuickReplies: []string{"View details", "Apply now", "Save jobs", "Refine search"},
		Data:         jobs,
	}, nil
}

func (r *Responder) handleBooking(ctx context.Context, filters models.Filters, userID string) (models.ChatResponse, error) {
	if userID == "" {
		return models.ChatResponse{
			Text:         "To book an appointment, please log in to your account first.",
			Type:         models.ResponseAuthRequired,
			QuickReplies: []string{"Login", "Register", "Learn more"},
		}, nil
	}

	pros, err := r.catalog.SearchProfessionals(ctx, repository.ProfessionalQueryFromFilters(filters, r.opts.BookingLimit))
	if err != nil {
		return models.ChatResponse{}, fmt.Errorf("booking search: %w", err)
	}

	if len(pros) == 0 {
		return models.ChatResponse{
			Text:         "I'd be happy to help you book an appointment! Let me first show you available professionals. What type of service are you looking for?",
			Type:         models.ResponseBookingStart,
			QuickReplies: []string{"Healthcare", "Mental Health", "Legal Services", "Financial Advice"},
		}, nil
	}

	entries := make([]string, 0, len(pros))
	replies := make([]string, 0, bookingQuickReplyCount+1)
	for i, p := range pros {
		available := p.NextAvailable
		if available == "" {
			available = "Contact for availability"
		}
		entries = append(entries, fmt.Sprintf("• **%s** - %s\n  Available: %s", p.Name, p.Specialization, available))
		if i < bookingQuickReplyCount {
			replies = append(replies, p.Name)
		}
	}
	replies = append(replies, "View more options")

	return models.ChatResponse{
		Text:         "Here are some available professionals:\n\n" + strings.Join(entries, "\n\n") + "\n\nWhich professional would you like to book with?",
		Type:         models.ResponseBookingSelection,
		QuickReplies: replies,
		Data:         pros,
	}, nil
}

func (r *Responder) handleStatusInquiry(ctx context.Context, userID string) (models.ChatResponse, error) {
	if userID == "" {
		return models.ChatResponse{
			Text:         "To check your bookings and consultations, please log in to your account.",
			Type:         models.ResponseAuthRequired,
			QuickReplies: []string{"Login", "Register"},
		}, nil
	}

	var (
		bookings      []models.Booking
		consultations []models.Consultation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bookings, err = r.catalog.GetUserBookings(gctx, userID, "")
		return err
	})
	g.Go(func() error {
		var err error
		consultations, err = r.catalog.GetActiveConsultations(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.ChatResponse{}, fmt.Errorf("status inquiry: %w", err)
	}

	if len(bookings) == 0 && len(consultations) == 0 {
		return models.ChatResponse{
			Text:         "You don't have any active bookings or consultations at the moment. Would you like to book a service?",
			Type:         models.ResponseNoBookings,
			QuickReplies: []string{"Book service", "Browse professionals", "Get help"},
		}, nil
	}

	var b strings.Builder
	if len(bookings) > 0 {
		b.WriteString("**Your Recent Bookings:**\n")
		for _, bk := range head(bookings, statusBookingCount) {
			fmt.Fprintf(&b, "• %s - %s\n  %s\n\n", bk.ServiceType, bk.Status, formatDate(bk.AppointmentDate))
		}
	}
	if len(consultations) > 0 {
		b.WriteString("**Active Consultations:**\n")
		for _, c := range head(consultations, statusConsultationCount) {
			fmt.Fprintf(&b, "• %s - %s\n  Scheduled: %s\n\n", c.Type, c.Status, formatDate(c.ScheduledTime))
		}
	}

	return models.ChatResponse{
		Text:         b.String(),
		Type:         models.ResponseStatusSummary,
		QuickReplies: []string{"View all bookings", "Book new service", "Reschedule", "Cancel booking"},
		Data:         models.StatusData{Bookings: bookings, Consultations: consultations},
	}, nil
}

var helpText = strings.Join([]string{
	"**How can I help you today?**",
	"",
	"🔍 **Find Services:** Search for healthcare, mental health, legal, and other professionals",
	"💼 **Find Jobs:** Browse employment opportunities and career guidance",
	"📅 **Book Appointments:** Schedule consultations with verified professionals",
	"👤 **Manage Profile:** Update your account and preferences",
	"📱 **App Features:** Learn about our PWA capabilities and offline features",
	"",
	"Just tell me what you're looking for, and I'll help you find the right solution!",
}, "\n")

func helpReply() models.ChatResponse {
	return models.ChatResponse{
		Text:         helpText,
		Type:         models.ResponseHelpMenu,
		QuickReplies: []string{"Find services", "Find jobs", "Book appointment", "Account help"},
	}
}

func profileReply(userID string) models.ChatResponse {
	if userID == "" {
		return models.ChatResponse{
			Text:         "To manage your profile, please log in to your account first.",
			Type:         models.ResponseAuthRequired,
			QuickReplies: []string{"Login", "Register"},
		}
	}
	return models.ChatResponse{
		Text:         "I can help you with your profile settings. What would you like to do?",
		Type:         models.ResponseProfileMenu,
		QuickReplies: []string{"Update information", "Preferences", "Privacy settings", "Account security"},
	}
}

// CannedClarifications are the fallback prompts for messages nothing else matched.
var CannedClarifications = []string{
	"I understand you're looking for assistance. Could you please be more specific about what type of service or help you need?",
	"I'm here to help you find services, jobs, or book appointments. What specifically are you looking for?",
	"Let me help you find what you need. Are you looking for professional services, job opportunities, or something else?",
}

// handleGeneral tries a combined search and falls back to a clarification prompt. A
// failed search is logged and treated as empty.
func (r *Responder) handleGeneral(ctx context.Context, text string) models.ChatResponse {
	res, err := r.catalog.SearchAll(ctx, text, r.opts.SearchAllLimit)
	if err != nil {
		r.logger.Warn("general search failed", map[string]interface{}{"error": err.Error()})
	} else if !res.IsEmpty() {
		var b strings.Builder
		b.WriteString("I found some relevant results for you:\n\n")
		if len(res.Professionals) > 0 {
			b.WriteString("**Professionals:**\n")
			for _, p := range head(res.Professionals, generalSummaryCount) {
				category := p.Category
				if category == "" {
					category = p.Specialization
				}
				fmt.Fprintf(&b, "• %s - %s\n", p.Name, category)
			}
			b.WriteString("\n")
		}
		if len(res.Jobs) > 0 {
			b.WriteString("**Jobs:**\n")
			for _, j := range head(res.Jobs, generalSummaryCount) {
				fmt.Fprintf(&b, "• %s at %s\n", j.Title, j.Company)
			}
			b.WriteString("\n")
		}
		b.WriteString("Would you like to explore any of these options?")

		return models.ChatResponse{
			Text:         b.String(),
			Type:         models.ResponseSearchResults,
			QuickReplies: []string{"View professionals", "View jobs", "Refine search"},
			Data:         res,
		}
	}

	return models.ChatResponse{
		Text:         CannedClarifications[r.pick(len(CannedClarifications))],
		Type:         models.ResponseClarificationNeeded,
		QuickReplies: []string{"Find services", "Find jobs", "Book appointment", "Get help"},
	}
}

func errorReply() models.ChatResponse {
	return models.ChatResponse{
		Text:         "I'm sorry, I encountered an error while processing your request. Please try again.",
		Type:         models.ResponseError,
		QuickReplies: []string{"Try again", "Contact support", "Main menu"},
	}
}

var contextualQuickReplies = map[models.ResponseType][]string{
	models.ResponseProfessionalList: {"Book appointment", "View details", "Compare options", "Search again"},
	models.ResponseJobList:          {"Apply now", "Save job", "View company", "Search similar"},
	models.ResponseBookingStart:     {"Healthcare", "Mental Health", "Legal", "Employment"},
	models.ResponseNoResults:        {"Try different search", "Browse all", "Get recommendations"},
	models.ResponseHelpMenu:         {"Find services", "Find jobs", "My bookings", "Contact support"},
	models.ResponseError:            {"Try again", "Main menu", "Contact support"},
}

// ContextualQuickReplies returns the suggested follow-ups for a reply type.
func ContextualQuickReplies(messageType models.ResponseType) []string {
	if replies, ok := contextualQuickReplies[messageType]; ok {
		return append([]string(nil), replies...)
	}
	return []string{"Main menu", "Help", "Search"}
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
