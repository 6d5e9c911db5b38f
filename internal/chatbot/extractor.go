package chatbot

import (
	"regexp"
	"strconv"
	"strings"

	"chat-assistant/internal/models"
)

var (
	locationPattern = regexp.MustCompile(`(?i)in\s+([a-zA-Z\s]+)(?:\s|$)`)
	maxPricePattern = regexp.MustCompile(`under\s+(\d+)|below\s+(\d+)|less\s+than\s+(\d+)`)
	minPricePattern = regexp.MustCompile(`above\s+(\d+)|over\s+(\d+)|more\s+than\s+(\d+)`)
)

var (
	entryKeywords  = []string{"fresher", "entry level", "beginner"}
	seniorKeywords = []string{"experienced", "senior", "expert"}
	midKeywords    = []string{"mid level", "intermediate"}

	ratingKeywords   = []string{"top rated", "best", "highest rated", "5 star"}
	verifiedKeywords = []string{"verified", "certified", "licensed"}
)

var jobTypes = []keywordSet{
	{"full-time", []string{"full time", "full-time", "permanent", "regular"}},
	{"part-time", []string{"part time", "part-time", "temporary", "contract"}},
	{"remote", []string{"remote", "work from home", "wfh", "online"}},
	{"freelance", []string{"freelance", "freelancer", "gig", "project-based"}},
	{"internship", []string{"intern", "internship", "trainee", "apprentice"}},
}

var workArrangements = []keywordSet{
	{"remote", []string{"remote", "work from home", "wfh", "online", "virtual"}},
	{"hybrid", []string{"hybrid", "mixed", "flexible"}},
	{"onsite", []string{"onsite", "office", "in-person", "physical"}},
}

// salaryScale converts a price figure to a salary; figures are read as thousands.
const salaryScale = 1000

const superlativeMinRating = 4.5

// ExtractFilters pulls structured constraints out of text. Unmatched patterns leave
// their fields unset.
func ExtractFilters(text string) models.Filters {
	lower := strings.ToLower(text)
	var f models.Filters

	if m := locationPattern.FindStringSubmatch(text); m != nil {
		f.Location = strings.TrimSpace(m[1])
	}

	switch {
	case containsAny(lower, entryKeywords):
		f.Experience = "entry"
	case containsAny(lower, seniorKeywords):
		f.Experience = "senior"
	case containsAny(lower, midKeywords):
		f.Experience = "mid"
	}

	f.JobType = firstLabel(lower, jobTypes)
	f.WorkArrangement = firstLabel(lower, workArrangements)

	if n, ok := firstNumberMatch(maxPricePattern, lower); ok {
		price, salary := n, n*salaryScale
		f.MaxPrice, f.MaxSalary = &price, &salary
	}
	if n, ok := firstNumberMatch(minPricePattern, lower); ok {
		price, salary := n, n*salaryScale
		f.MinPrice, f.MinSalary = &price, &salary
	}

	if containsAny(lower, ratingKeywords) {
		rating := superlativeMinRating
		f.MinRating = &rating
		f.SortBy = "rating"
	}
	if containsAny(lower, verifiedKeywords) {
		verified := true
		f.Verified = &verified
	}
	return f
}

func firstLabel(text string, sets []keywordSet) string {
	for _, s := range sets {
		if containsAny(text, s.keywords) {
			return s.label
		}
	}
	return ""
}

// firstNumberMatch returns the number captured by whichever alternative matched.
func firstNumberMatch(re *regexp.Regexp, text string) (int, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	for _, g := range m[1:] {
		if g == "" {
			continue
		}
		n, err := strconv.Atoi(g)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
