package database

// Employee is a roster entry. IDs and departments are stored upper-cased;
// the display name keeps its original casing.
type Employee struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Dept       string `json:"dept"`
	TelegramID int64  `json:"telegram_id,omitempty"`
}

// Submission is one accepted work update, keyed by (date, employee).
// Date uses the 2006-01-02 layout.
type Submission struct {
	Date          string `json:"date"`
	EmpID         string `json:"emp_id"`
	Username      string `json:"username,omitempty"` // Telegram username of the sender
	Time          string `json:"time"`               // 12h clock, e.g. "09:30 AM"
	Work          string `json:"work"`
	Late          bool   `json:"late"`
	Resubmissions int    `json:"resubmissions,omitempty"`
}

// LeaveRecord is an approved leave day, keyed by (date, employee).
// Immutable once written.
type LeaveRecord struct {
	Date       string `json:"date"`
	EmpID      string `json:"emp_id"`
	Reason     string `json:"reason"`
	ApprovedBy string `json:"approved_by"`
}
