package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workupdatebot/database"
)

func rosterLookup(t *testing.T) func(string) (database.Employee, bool) {
	t.Helper()
	roster := map[string]database.Employee{
		"EMP1": {ID: "EMP1", Name: "Asha", Dept: "ENG"},
		"EMP2": {ID: "EMP2", Name: "Ravi", Dept: "QA"},
	}
	return func(id string) (database.Employee, bool) {
		emp, ok := roster[id]
		return emp, ok
	}
}

func at(t *testing.T, clock string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", clock)
	require.NoError(t, err)
	return ts
}

func TestClassify(t *testing.T) {
	lookup := rosterLookup(t)

	tests := []struct {
		name     string
		text     string
		now      string
		wantOK   bool
		wantID   string
		wantDate string
		wantLate bool
		wantWork string
	}{
		{
			name:     "on time before deadline",
			text:     "emp1 fixed the login flow",
			now:      "2026-08-28 10:59",
			wantOK:   true,
			wantID:   "EMP1",
			wantDate: "2026-08-28",
			wantLate: false,
			wantWork: "fixed the login flow",
		},
		{
			name:     "late after deadline",
			text:     "EMP1 reviewed PRs",
			now:      "2026-08-28 11:01",
			wantOK:   true,
			wantID:   "EMP1",
			wantDate: "2026-08-28",
			wantLate: true,
		},
		{
			name:     "exactly at deadline counts as on time",
			text:     "EMP2 wrote test cases",
			now:      "2026-08-28 11:00",
			wantOK:   true,
			wantID:   "EMP2",
			wantLate: false,
		},
		{
			name:     "midnight grace attributes to previous day and flags late",
			text:     "EMP2 shipped the release",
			now:      "2026-08-29 00:30",
			wantOK:   true,
			wantID:   "EMP2",
			wantDate: "2026-08-28",
			wantLate: true,
		},
		{
			name:   "unregistered id is ignored",
			text:   "EMP9 did something",
			now:    "2026-08-28 10:00",
			wantOK: false,
		},
		{
			name:   "plain chatter is ignored",
			text:   "good morning everyone",
			now:    "2026-08-28 10:00",
			wantOK: false,
		},
		{
			name:   "lone id without work is ignored",
			text:   "EMP1",
			now:    "2026-08-28 10:00",
			wantOK: false,
		},
		{
			name:     "newline separated work is kept",
			text:     "emp1\nline one\nline two",
			now:      "2026-08-28 09:00",
			wantOK:   true,
			wantID:   "EMP1",
			wantWork: "line one\nline two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := Classify(tt.text, "asha_dev", at(t, tt.now), "11:00", lookup)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantID, rec.EmpID)
			assert.Equal(t, "asha_dev", rec.Username)
			assert.Equal(t, tt.wantLate, rec.Late)
			if tt.wantDate != "" {
				assert.Equal(t, tt.wantDate, rec.DateKey)
			}
			if tt.wantWork != "" {
				assert.Equal(t, tt.wantWork, rec.Work)
			}
		})
	}
}

func TestIsLateUnparsableDeadlineFailsOpen(t *testing.T) {
	assert.False(t, IsLate(at(t, "2026-08-28 23:59"), "whenever"))
	assert.False(t, IsLate(at(t, "2026-08-28 23:59"), ""))
}

func TestParseDeadline(t *testing.T) {
	hour, minute, err := ParseDeadline("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, hour)
	assert.Equal(t, 30, minute)

	for _, bad := range []string{"25:00", "11:75", "eleven", "11", "11:00:00"} {
		_, _, err := ParseDeadline(bad)
		assert.Error(t, err, bad)
	}
}
