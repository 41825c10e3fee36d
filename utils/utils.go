package utils

import (
	"strings"
	"time"
)

// ParseLeaveDate interprets the argument of a leave request. Accepted
// forms are "today", "tomorrow" and an explicit DD-MM-YYYY date; the ok
// flag is false for anything else, which callers treat as a free-form
// reason applying to today.
func ParseLeaveDate(arg string, now time.Time) (dateKey, display string, ok bool) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "today":
		return now.Format("2006-01-02"), now.Format("02 Jan 2006"), true
	case "tomorrow":
		day := now.AddDate(0, 0, 1)
		return day.Format("2006-01-02"), day.Format("02 Jan 2006"), true
	}

	day, err := time.ParseInLocation("02-01-2006", strings.TrimSpace(arg), now.Location())
	if err != nil {
		return "", "", false
	}
	return day.Format("2006-01-02"), day.Format("02 Jan 2006"), true
}

// DisplayDate converts a 2006-01-02 ledger key into the reader-facing
// form. Unparsable keys come back unchanged.
func DisplayDate(dateKey string) string {
	day, err := time.Parse("2006-01-02", dateKey)
	if err != nil {
		return dateKey
	}
	return day.Format("02 Jan 2006")
}

// MonthSheetName names the workbook tab for the month containing the
// given ledger key, e.g. "Aug 2026".
func MonthSheetName(dateKey string) string {
	day, err := time.Parse("2006-01-02", dateKey)
	if err != nil {
		return "Unknown"
	}
	return day.Format("Jan 2006")
}

// Truncate shortens s to at most n runes, appending an ellipsis when it
// had to cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
