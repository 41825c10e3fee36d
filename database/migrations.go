package database

import (
	"database/sql"
	"log"
)

func InitDB(db *sql.DB) error {
	// Roster
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS staff (
			emp_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			dept TEXT NOT NULL,
			telegram_id INTEGER DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	// Daily submission ledger. The composite key is what enforces
	// one-submission-per-employee-per-day.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS daily_log (
			date TEXT NOT NULL,
			emp_id TEXT NOT NULL,
			username TEXT NOT NULL DEFAULT '',
			time TEXT NOT NULL,
			work TEXT NOT NULL,
			late INTEGER NOT NULL DEFAULT 0,
			resubmissions INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (date, emp_id)
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_daily_log_emp
		ON daily_log (emp_id, date)
	`)
	if err != nil {
		return err
	}

	// Approved leave ledger
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS leave_log (
			date TEXT NOT NULL,
			emp_id TEXT NOT NULL,
			reason TEXT NOT NULL,
			approved_by TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (date, emp_id)
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_leave_log_emp
		ON leave_log (emp_id, date)
	`)
	if err != nil {
		return err
	}

	// Re-submission request counter, one row per (date, employee)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS allow_usage (
			date TEXT NOT NULL,
			emp_id TEXT NOT NULL,
			count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (date, emp_id)
		)
	`)
	if err != nil {
		return err
	}

	// Small KV store: deadline override, HR contact override, group chat
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	log.Println("Database initialized successfully")
	return nil
}
