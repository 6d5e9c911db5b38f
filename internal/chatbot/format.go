package chatbot

import (
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var numberPrinter = message.NewPrinter(language.English)

// salaryText renders a salary band in rupees with thousands separators.
func salaryText(minSalary, maxSalary float64) string {
	switch {
	case minSalary > 0 && maxSalary > 0:
		return "₹" + formatNumber(minSalary) + "-" + formatNumber(maxSalary)
	case minSalary > 0:
		return "₹" + formatNumber(minSalary) + "+"
	case maxSalary > 0:
		return "Up to ₹" + formatNumber(maxSalary)
	default:
		return "Salary negotiable"
	}
}

func formatNumber(v float64) string {
	return numberPrinter.Sprintf("%d", int64(math.Round(v)))
}

// formatDate renders t as M/D/YYYY.
func formatDate(t *time.Time) string {
	if t == nil {
		return "Date TBD"
	}
	return t.Format("1/2/2006")
}
