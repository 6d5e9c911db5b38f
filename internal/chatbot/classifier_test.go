package chatbot

import (
	"testing"

	"chat-assistant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeIntent(t *testing.T) {
	tests := []struct {
		text       string
		want       models.Intent
		category   string
		confidence float64
	}{
		{"I want to book a doctor for my job interview", models.IntentBooking, "", 0.9},
		{"Schedule an Appointment", models.IntentBooking, "", 0.9},
		{"any doctor job openings?", models.IntentJobSearch, "", 0.8},
		{"I need a therapist", models.IntentServiceSearch, "mental", 0.85},
		{"find me a physician", models.IntentServiceSearch, "mbbs", 0.85},
		{"need a lawyer", models.IntentServiceSearch, "legal", 0.85},
		{"blood test near me", models.IntentServiceSearch, "pathology", 0.85},
		{"help me", models.IntentServiceSearch, "other", 0.85},
		{"how do I use this", models.IntentHelp, "", 0.7},
		{"update my profile", models.IntentProfile, "", 0.8},
		{"check my status", models.IntentStatusInquiry, "", 0.7},
		{"hello there", models.IntentGeneral, "", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := AnalyzeIntent(tt.text)
			assert.Equal(t, tt.want, got.Type)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.confidence, got.Confidence)
		})
	}
}

func TestAnalyzeIntent_BookingWinsOverEverything(t *testing.T) {
	for _, text := range []string{
		"book", "reserve a job", "consult a lawyer about my profile status", "meet the therapist",
	} {
		assert.Equal(t, models.IntentBooking, AnalyzeIntent(text).Type, text)
	}
}

func TestExtractFilters_JobsUnderInMumbai(t *testing.T) {
	f := ExtractFilters("jobs under 50000 in Mumbai")

	assert.Equal(t, "Mumbai", f.Location)
	require.NotNil(t, f.MaxPrice)
	require.NotNil(t, f.MaxSalary)
	assert.Equal(t, 50000, *f.MaxPrice)
	assert.Equal(t, 50000000, *f.MaxSalary)
	assert.Nil(t, f.MinPrice)
	assert.Nil(t, f.MinRating)
	assert.Nil(t, f.Verified)
}

func TestExtractFilters(t *testing.T) {
	f := ExtractFilters("Best verified senior remote freelance gigs more than 30")
	assert.Equal(t, "senior", f.Experience)
	assert.Equal(t, "remote", f.JobType, "remote precedes freelance in the job type table")
	assert.Equal(t, "remote", f.WorkArrangement)
	require.NotNil(t, f.MinPrice)
	assert.Equal(t, 30, *f.MinPrice)
	assert.Equal(t, 30000, *f.MinSalary)
	require.NotNil(t, f.MinRating)
	assert.Equal(t, 4.5, *f.MinRating)
	assert.Equal(t, "rating", f.SortBy)
	require.NotNil(t, f.Verified)
	assert.True(t, *f.Verified)

	f = ExtractFilters("fresher internship, hybrid, less than 20")
	assert.Equal(t, "entry", f.Experience)
	assert.Equal(t, "internship", f.JobType)
	assert.Equal(t, "hybrid", f.WorkArrangement)
	assert.Equal(t, 20, *f.MaxPrice)

	assert.True(t, ExtractFilters("hello there").IsEmpty())
}
