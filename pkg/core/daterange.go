package core

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Report types accepted by DateRange.
const (
	ReportDaily   = "daily"
	ReportWeekly  = "weekly"
	ReportMonthly = "monthly"
)

// DateRange computes the inclusive reporting window that ends before now:
// daily is yesterday, weekly the seven days ending yesterday, monthly the
// previous calendar month.
func DateRange(reportType string, now time.Time) (start, end string, err error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)

	switch strings.ToLower(strings.TrimSpace(reportType)) {
	case ReportDaily:
		return yesterday.Format(DateLayout), yesterday.Format(DateLayout), nil
	case ReportWeekly:
		return today.AddDate(0, 0, -7).Format(DateLayout), yesterday.Format(DateLayout), nil
	case ReportMonthly:
		firstOfThisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		firstOfLastMonth := firstOfThisMonth.AddDate(0, -1, 0)
		lastOfLastMonth := firstOfThisMonth.AddDate(0, 0, -1)
		return firstOfLastMonth.Format(DateLayout), lastOfLastMonth.Format(DateLayout), nil
	default:
		return "", "", &ConfigError{
			Field:  "report_type",
			Reason: fmt.Sprintf("unknown report type %q (want daily, weekly or monthly)", reportType),
		}
	}
}

// ResolveDates returns the explicit start/end when both are set, otherwise
// the window computed from reportType.
func ResolveDates(startDate, endDate, reportType string, now time.Time) (string, string, error) {
	if startDate != "" && endDate != "" {
		return startDate, endDate, nil
	}
	if startDate != "" || endDate != "" {
		return "", "", &ConfigError{Field: "start_date/end_date", Reason: "both dates must be set together"}
	}
	return DateRange(reportType, now)
}
