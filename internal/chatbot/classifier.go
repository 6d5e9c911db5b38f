// Package chatbot turns a user message into a reply: it classifies the intent,
// extracts filters, queries the catalog and renders text plus quick replies.
package chatbot

import (
	"strings"

	"chat-assistant/internal/models"
)

type keywordSet struct {
	label    string
	keywords []string
}

var (
	bookingKeywords = []string{"book", "appointment", "schedule", "meet", "consult", "reserve"}
	jobKeywords     = []string{"job", "work", "career", "employment", "hiring", "position"}
	helpKeywords    = []string{"help", "support", "assist", "guide", "how", "what", "where"}
	profileKeywords = []string{"profile", "account", "settings", "update", "change"}
	statusKeywords  = []string{"status", "booking", "appointment", "consultation", "my"}
)

// serviceCategories is checked in order; the first matching category wins.
var serviceCategories = []keywordSet{
	{"mbbs", []string{"doctor", "physician", "medical", "health", "clinic", "hospital", "medicine", "treatment", "diagnose", "surgery", "specialist", "surgeon"}},
	{"mental", []string{"therapist", "counselor", "psychologist", "psychiatrist", "therapy", "counseling", "mental health", "depression", "anxiety", "stress", "trauma"}},
	{"placement", []string{"job", "work", "career", "employment", "hiring", "interview", "resume", "cv", "salary", "company", "position"}},
	{"legal", []string{"lawyer", "attorney", "legal", "law", "court", "case", "rights", "documentation", "legal advice"}},
	{"pathology", []string{"lab", "test", "blood test", "pathology", "diagnostic", "xray", "scan"}},
	{"other", []string{"service", "help", "support", "assistance"}},
}

// AnalyzeIntent classifies text by substring keyword matching. Checks run in a fixed
// priority order and the first hit wins.
func AnalyzeIntent(text string) models.IntentResult {
	lower := strings.ToLower(text)

	if containsAny(lower, bookingKeywords) {
		return models.IntentResult{Type: models.IntentBooking, Confidence: 0.9}
	}
	if containsAny(lower, jobKeywords) {
		return models.IntentResult{Type: models.IntentJobSearch, Confidence: 0.8}
	}
	for _, c := range serviceCategories {
		if containsAny(lower, c.keywords) {
			return models.IntentResult{Type: models.IntentServiceSearch, Confidence: 0.85, Category: c.label}
		}
	}
	if containsAny(lower, helpKeywords) {
		return models.IntentResult{Type: models.IntentHelp, Confidence: 0.7}
	}
	if containsAny(lower, profileKeywords) {
		return models.IntentResult{Type: models.IntentProfile, Confidence: 0.8}
	}
	if containsAny(lower, statusKeywords) {
		return models.IntentResult{Type: models.IntentStatusInquiry, Confidence: 0.7}
	}
	return models.IntentResult{Type: models.IntentGeneral, Confidence: 0.5}
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
