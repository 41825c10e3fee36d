package workflow

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"workupdatebot/database"
)

// Record is a classified work update, ready for the ledger and the sinks.
type Record struct {
	EmpID    string
	Name     string
	Dept     string
	Username string // Telegram username of the sender, may be empty

	DateKey string // ledger key, 2006-01-02
	Date    string // display, 02-01-2006
	Day     string // weekday name
	Time    string // 12h clock, e.g. "09:30 AM"

	Work string
	Late bool
}

// ParseDeadline parses an HH:MM (24h) deadline setting.
func ParseDeadline(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid deadline %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid deadline %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid deadline %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("deadline %q out of range", s)
	}
	return hour, minute, nil
}

// IsLate reports whether an arrival time strictly exceeds the deadline.
// An unparsable deadline fails open: the submission counts as on time.
func IsLate(arrival time.Time, deadline string) bool {
	dh, dm, err := ParseDeadline(deadline)
	if err != nil {
		return false
	}
	return arrival.Hour() > dh || (arrival.Hour() == dh && arrival.Minute() > dm)
}

// Classify parses a free-text message into a submission record. The first
// whitespace-delimited token is the employee id (case-folded to upper);
// the rest, newlines included, is the work description. Messages whose
// first token is not a registered id are filtered out, not errors.
//
// Arrivals before 01:00 fall in the midnight grace window: the record is
// attributed to the previous calendar date and always flagged late.
func Classify(text, username string, now time.Time, deadline string, lookup func(string) (database.Employee, bool)) (Record, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Record{}, false
	}

	idx := strings.IndexAny(text, " \t\n")
	if idx < 0 {
		// A lone token carries no work description
		return Record{}, false
	}
	first := strings.ToUpper(text[:idx])
	work := strings.TrimSpace(text[idx:])
	if work == "" {
		return Record{}, false
	}

	emp, ok := lookup(first)
	if !ok {
		return Record{}, false
	}

	rec := Record{
		EmpID:    emp.ID,
		Name:     emp.Name,
		Dept:     emp.Dept,
		Username: username,
		Time:     now.Format("03:04 PM"),
		Work:     work,
	}

	if now.Hour() < 1 {
		// Just-past-midnight submission belongs to yesterday and is
		// late no matter what the deadline says.
		day := now.AddDate(0, 0, -1)
		rec.DateKey = day.Format("2006-01-02")
		rec.Date = day.Format("02-01-2006")
		rec.Day = day.Format("Monday")
		rec.Late = true
		return rec, true
	}

	rec.DateKey = now.Format("2006-01-02")
	rec.Date = now.Format("02-01-2006")
	rec.Day = now.Format("Monday")
	rec.Late = IsLate(now, deadline)
	return rec, true
}
