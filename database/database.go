package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// ErrDuplicateSubmission is returned when an employee already has a
// submission recorded for the given date.
var ErrDuplicateSubmission = errors.New("submission already recorded for today")

type DB struct {
	*sql.DB
}

func NewDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := InitDB(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// ── Roster ──────────────────────────────────────────────────────────────

// AddEmployee inserts or updates a roster entry. The id and department are
// upper-cased at this boundary; the name is kept as given.
func (db *DB) AddEmployee(emp Employee) error {
	_, err := db.Exec(`
		INSERT INTO staff (emp_id, name, dept) VALUES (?, ?, ?)
		ON CONFLICT(emp_id) DO UPDATE SET name = excluded.name, dept = excluded.dept
	`, strings.ToUpper(emp.ID), emp.Name, strings.ToUpper(emp.Dept))
	return err
}

// RemoveEmployee deletes a roster entry. Returns false if the id was not
// registered; the store is left unchanged in that case.
func (db *DB) RemoveEmployee(empID string) (bool, error) {
	result, err := db.Exec("DELETE FROM staff WHERE emp_id = ?", strings.ToUpper(empID))
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

func (db *DB) GetEmployee(empID string) (Employee, bool, error) {
	var emp Employee
	err := db.QueryRow(
		"SELECT emp_id, name, dept, telegram_id FROM staff WHERE emp_id = ?",
		strings.ToUpper(empID),
	).Scan(&emp.ID, &emp.Name, &emp.Dept, &emp.TelegramID)
	if err == sql.ErrNoRows {
		return Employee{}, false, nil
	}
	if err != nil {
		return Employee{}, false, err
	}
	return emp, true, nil
}

func (db *DB) AllEmployees() ([]Employee, error) {
	rows, err := db.Query("SELECT emp_id, name, dept, telegram_id FROM staff ORDER BY emp_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var emp Employee
		if err := rows.Scan(&emp.ID, &emp.Name, &emp.Dept, &emp.TelegramID); err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// GetEmployeeByTelegramID finds the roster entry linked to a Telegram
// account, if any.
func (db *DB) GetEmployeeByTelegramID(telegramID int64) (Employee, bool, error) {
	var emp Employee
	err := db.QueryRow(
		"SELECT emp_id, name, dept, telegram_id FROM staff WHERE telegram_id = ?",
		telegramID,
	).Scan(&emp.ID, &emp.Name, &emp.Dept, &emp.TelegramID)
	if err == sql.ErrNoRows {
		return Employee{}, false, nil
	}
	if err != nil {
		return Employee{}, false, err
	}
	return emp, true, nil
}

// SetTelegramID remembers the Telegram account an employee submits from,
// so admins can DM them later.
func (db *DB) SetTelegramID(empID string, telegramID int64) error {
	_, err := db.Exec(
		"UPDATE staff SET telegram_id = ? WHERE emp_id = ?",
		telegramID, strings.ToUpper(empID),
	)
	return err
}

// ── Daily submission ledger ─────────────────────────────────────────────

// RecordSubmission inserts a submission. The (date, emp_id) primary key
// makes the duplicate check atomic: a conflicting insert comes back as
// ErrDuplicateSubmission and the existing row is untouched.
func (db *DB) RecordSubmission(sub Submission) error {
	_, err := db.Exec(`
		INSERT INTO daily_log (date, emp_id, username, time, work, late, resubmissions)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sub.Date, sub.EmpID, sub.Username, sub.Time, sub.Work, sub.Late, sub.Resubmissions)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return ErrDuplicateSubmission
		}
		return err
	}
	return nil
}

// ClearSubmission removes a ledger entry. Idempotent: clearing an absent
// entry is a no-op, not an error.
func (db *DB) ClearSubmission(date, empID string) error {
	_, err := db.Exec(
		"DELETE FROM daily_log WHERE date = ? AND emp_id = ?",
		date, strings.ToUpper(empID),
	)
	return err
}

func (db *DB) HasSubmission(date, empID string) (bool, error) {
	var n int
	err := db.QueryRow(
		"SELECT COUNT(1) FROM daily_log WHERE date = ? AND emp_id = ?",
		date, strings.ToUpper(empID),
	).Scan(&n)
	return n > 0, err
}

func (db *DB) GetSubmission(date, empID string) (Submission, bool, error) {
	var sub Submission
	err := db.QueryRow(`
		SELECT date, emp_id, username, time, work, late, resubmissions
		FROM daily_log WHERE date = ? AND emp_id = ?
	`, date, strings.ToUpper(empID)).Scan(
		&sub.Date, &sub.EmpID, &sub.Username, &sub.Time, &sub.Work, &sub.Late, &sub.Resubmissions,
	)
	if err == sql.ErrNoRows {
		return Submission{}, false, nil
	}
	if err != nil {
		return Submission{}, false, err
	}
	return sub, true, nil
}

// SubmissionsForDate returns all submissions for one day keyed by employee.
func (db *DB) SubmissionsForDate(date string) (map[string]Submission, error) {
	rows, err := db.Query(`
		SELECT date, emp_id, username, time, work, late, resubmissions
		FROM daily_log WHERE date = ?
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := make(map[string]Submission)
	for rows.Next() {
		var sub Submission
		if err := rows.Scan(&sub.Date, &sub.EmpID, &sub.Username, &sub.Time, &sub.Work, &sub.Late, &sub.Resubmissions); err != nil {
			return nil, err
		}
		subs[sub.EmpID] = sub
	}
	return subs, rows.Err()
}

// SubmissionsBetween returns date -> employee -> submission for an
// inclusive date range.
func (db *DB) SubmissionsBetween(start, end string) (map[string]map[string]Submission, error) {
	rows, err := db.Query(`
		SELECT date, emp_id, username, time, work, late, resubmissions
		FROM daily_log WHERE date >= ? AND date <= ?
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]map[string]Submission)
	for rows.Next() {
		var sub Submission
		if err := rows.Scan(&sub.Date, &sub.EmpID, &sub.Username, &sub.Time, &sub.Work, &sub.Late, &sub.Resubmissions); err != nil {
			return nil, err
		}
		if result[sub.Date] == nil {
			result[sub.Date] = make(map[string]Submission)
		}
		result[sub.Date][sub.EmpID] = sub
	}
	return result, rows.Err()
}

// AllSubmissions returns the full ledger ordered by date then employee.
func (db *DB) AllSubmissions() ([]Submission, error) {
	rows, err := db.Query(`
		SELECT date, emp_id, username, time, work, late, resubmissions
		FROM daily_log ORDER BY date, emp_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		var sub Submission
		if err := rows.Scan(&sub.Date, &sub.EmpID, &sub.Username, &sub.Time, &sub.Work, &sub.Late, &sub.Resubmissions); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (db *DB) CountSubmissions(empID string) (int, error) {
	var n int
	err := db.QueryRow(
		"SELECT COUNT(1) FROM daily_log WHERE emp_id = ?",
		strings.ToUpper(empID),
	).Scan(&n)
	return n, err
}

// ── Leave ledger ────────────────────────────────────────────────────────

func (db *DB) AddLeave(rec LeaveRecord) error {
	_, err := db.Exec(`
		INSERT OR REPLACE INTO leave_log (date, emp_id, reason, approved_by)
		VALUES (?, ?, ?, ?)
	`, rec.Date, strings.ToUpper(rec.EmpID), rec.Reason, rec.ApprovedBy)
	return err
}

func (db *DB) LeavesForDate(date string) (map[string]LeaveRecord, error) {
	rows, err := db.Query(
		"SELECT date, emp_id, reason, approved_by FROM leave_log WHERE date = ?",
		date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leaves := make(map[string]LeaveRecord)
	for rows.Next() {
		var rec LeaveRecord
		if err := rows.Scan(&rec.Date, &rec.EmpID, &rec.Reason, &rec.ApprovedBy); err != nil {
			return nil, err
		}
		leaves[rec.EmpID] = rec
	}
	return leaves, rows.Err()
}

func (db *DB) LeavesBetween(start, end string) (map[string]map[string]LeaveRecord, error) {
	rows, err := db.Query(
		"SELECT date, emp_id, reason, approved_by FROM leave_log WHERE date >= ? AND date <= ?",
		start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]map[string]LeaveRecord)
	for rows.Next() {
		var rec LeaveRecord
		if err := rows.Scan(&rec.Date, &rec.EmpID, &rec.Reason, &rec.ApprovedBy); err != nil {
			return nil, err
		}
		if result[rec.Date] == nil {
			result[rec.Date] = make(map[string]LeaveRecord)
		}
		result[rec.Date][rec.EmpID] = rec
	}
	return result, rows.Err()
}

// CountMonthlyLeaves counts approved leaves for an employee within a
// calendar month. The month uses the 2006-01 layout.
func (db *DB) CountMonthlyLeaves(empID, month string) (int, error) {
	var n int
	err := db.QueryRow(
		"SELECT COUNT(1) FROM leave_log WHERE emp_id = ? AND date LIKE ?",
		strings.ToUpper(empID), month+"%",
	).Scan(&n)
	return n, err
}

func (db *DB) CountLeaves(empID string) (int, error) {
	var n int
	err := db.QueryRow(
		"SELECT COUNT(1) FROM leave_log WHERE emp_id = ?",
		strings.ToUpper(empID),
	).Scan(&n)
	return n, err
}

// ── Re-submission counter ───────────────────────────────────────────────

func (db *DB) AllowUsage(date, empID string) (int, error) {
	var n int
	err := db.QueryRow(
		"SELECT count FROM allow_usage WHERE date = ? AND emp_id = ?",
		date, strings.ToUpper(empID),
	).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return n, err
}

// IncrementAllowUsage bumps the per-day request counter and returns the
// new value.
func (db *DB) IncrementAllowUsage(date, empID string) (int, error) {
	id := strings.ToUpper(empID)
	_, err := db.Exec(`
		INSERT INTO allow_usage (date, emp_id, count) VALUES (?, ?, 1)
		ON CONFLICT(date, emp_id) DO UPDATE SET count = count + 1
	`, date, id)
	if err != nil {
		return 0, err
	}
	return db.AllowUsage(date, id)
}

// ── Settings ────────────────────────────────────────────────────────────

// GetSetting returns the stored value, or fallback when the key is absent.
func (db *DB) GetSetting(key, fallback string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return fallback, nil
	}
	if err != nil {
		return fallback, err
	}
	return value, nil
}

func (db *DB) SetSetting(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
