package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

// DefaultPeriod is the reporting window used when a period is missing
// or unrecognised.
const DefaultPeriod = "7d"

var periodPattern = regexp.MustCompile(`^(\d{1,3})d$`)

// PeriodDays parses an "Nd" period token into a day count.
// Unrecognised periods fall back to 7 days.
func PeriodDays(period string) int {
	m := periodPattern.FindStringSubmatch(period)
	if m == nil {
		return 7
	}
	days, err := strconv.Atoi(m[1])
	if err != nil || days <= 0 {
		return 7
	}
	return days
}

// PeriodStartDate converts a period into the provider's relative-date
// syntax ("NdaysAgo").
func PeriodStartDate(period string) string {
	return fmt.Sprintf("%ddaysAgo", PeriodDays(period))
}

// ClampPeriod validates period against the allowed set, falling back to
// the first allowed period (or DefaultPeriod if none are configured).
func ClampPeriod(period string, allowed []string) string {
	for _, p := range allowed {
		if p == period {
			return period
		}
	}
	if len(allowed) > 0 {
		return allowed[0]
	}
	return DefaultPeriod
}
