package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRosterRoundTrip(t *testing.T) {
	db := testDB(t)

	require.NoError(t, db.AddEmployee(Employee{ID: "emp1", Name: "Asha", Dept: "eng"}))

	// Lookups fold case the same way submissions do
	emp, found, err := db.GetEmployee("emp1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "EMP1", emp.ID)
	assert.Equal(t, "Asha", emp.Name)
	assert.Equal(t, "ENG", emp.Dept)

	// Re-adding updates in place
	require.NoError(t, db.AddEmployee(Employee{ID: "EMP1", Name: "Asha R", Dept: "ENG"}))
	all, err := db.AllEmployees()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Asha R", all[0].Name)

	removed, err := db.RemoveEmployee("EMP1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = db.RemoveEmployee("EMP1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestTelegramLink(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.AddEmployee(Employee{ID: "EMP1", Name: "Asha"}))

	_, found, err := db.GetEmployeeByTelegramID(777)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, db.SetTelegramID("EMP1", 777))

	emp, found, err := db.GetEmployeeByTelegramID(777)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "EMP1", emp.ID)
}

func TestRecordSubmissionRejectsDuplicate(t *testing.T) {
	db := testDB(t)

	sub := Submission{Date: "2026-08-28", EmpID: "EMP1", Username: "asha_dev", Time: "10:00 AM", Work: "first"}
	require.NoError(t, db.RecordSubmission(sub))

	sub.Work = "second"
	err := db.RecordSubmission(sub)
	require.ErrorIs(t, err, ErrDuplicateSubmission)

	// The original row survives the rejected insert
	got, found, err := db.GetSubmission("2026-08-28", "EMP1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "first", got.Work)
	assert.Equal(t, "asha_dev", got.Username)

	// Same employee on another day is fine
	require.NoError(t, db.RecordSubmission(Submission{Date: "2026-08-29", EmpID: "EMP1", Work: "next"}))
}

func TestClearSubmissionIsIdempotent(t *testing.T) {
	db := testDB(t)

	require.NoError(t, db.RecordSubmission(Submission{Date: "2026-08-28", EmpID: "EMP1", Work: "w"}))
	require.NoError(t, db.ClearSubmission("2026-08-28", "EMP1"))
	require.NoError(t, db.ClearSubmission("2026-08-28", "EMP1"))

	has, err := db.HasSubmission("2026-08-28", "EMP1")
	require.NoError(t, err)
	assert.False(t, has)

	// Cleared means a fresh insert goes through
	require.NoError(t, db.RecordSubmission(Submission{Date: "2026-08-28", EmpID: "EMP1", Work: "redo"}))
}

func TestSubmissionsBetween(t *testing.T) {
	db := testDB(t)

	for _, sub := range []Submission{
		{Date: "2026-08-27", EmpID: "EMP1", Work: "a"},
		{Date: "2026-08-28", EmpID: "EMP1", Work: "b"},
		{Date: "2026-08-28", EmpID: "EMP2", Work: "c"},
		{Date: "2026-09-01", EmpID: "EMP1", Work: "d"},
	} {
		require.NoError(t, db.RecordSubmission(sub))
	}

	byDate, err := db.SubmissionsBetween("2026-08-27", "2026-08-31")
	require.NoError(t, err)
	require.Len(t, byDate, 2)
	assert.Len(t, byDate["2026-08-28"], 2)

	all, err := db.AllSubmissions()
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "2026-08-27", all[0].Date)
}

func TestLeaveLedger(t *testing.T) {
	db := testDB(t)

	for _, date := range []string{"2026-08-03", "2026-08-10", "2026-08-17", "2026-08-24"} {
		require.NoError(t, db.AddLeave(LeaveRecord{Date: date, EmpID: "EMP1", Reason: "personal"}))
	}
	require.NoError(t, db.AddLeave(LeaveRecord{Date: "2026-09-01", EmpID: "EMP1", Reason: "travel"}))

	n, err := db.CountMonthlyLeaves("EMP1", "2026-08")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	total, err := db.CountLeaves("EMP1")
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	// Re-approving the same day replaces, not duplicates
	require.NoError(t, db.AddLeave(LeaveRecord{Date: "2026-08-03", EmpID: "EMP1", Reason: "updated"}))
	n, err = db.CountMonthlyLeaves("EMP1", "2026-08")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	leaves, err := db.LeavesForDate("2026-08-03")
	require.NoError(t, err)
	assert.Equal(t, "updated", leaves["EMP1"].Reason)
}

func TestAllowUsageCounter(t *testing.T) {
	db := testDB(t)

	n, err := db.AllowUsage("2026-08-28", "EMP1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = db.IncrementAllowUsage("2026-08-28", "EMP1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = db.IncrementAllowUsage("2026-08-28", "EMP1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Counters are scoped per day
	n, err = db.AllowUsage("2026-08-29", "EMP1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSettings(t *testing.T) {
	db := testDB(t)

	value, err := db.GetSetting("deadline", "11:00")
	require.NoError(t, err)
	assert.Equal(t, "11:00", value)

	require.NoError(t, db.SetSetting("deadline", "12:30"))
	require.NoError(t, db.SetSetting("deadline", "09:45"))

	value, err = db.GetSetting("deadline", "11:00")
	require.NoError(t, err)
	assert.Equal(t, "09:45", value)
}
