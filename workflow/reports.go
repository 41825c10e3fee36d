package workflow

import (
	"sort"
	"strings"
	"time"

	"workupdatebot/database"
)

// DayStatus classifies one calendar day for one employee.
type DayStatus int

const (
	StatusAbsent DayStatus = iota
	StatusSubmitted
	StatusLeave
	StatusWeekend
)

// DayEntry is one row of an employee's history view.
type DayEntry struct {
	DateKey string // 2006-01-02
	Label   string // "Mon 02 Jan"
	Status  DayStatus
	Sub     *database.Submission
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

func dayStatus(empID, dateKey string, day time.Time,
	subs map[string]map[string]database.Submission,
	leaves map[string]map[string]database.LeaveRecord,
	countWeekends bool) (DayStatus, *database.Submission) {

	if sub, ok := subs[dateKey][empID]; ok {
		return StatusSubmitted, &sub
	}
	if _, ok := leaves[dateKey][empID]; ok {
		return StatusLeave, nil
	}
	if !countWeekends && isWeekend(day) {
		return StatusWeekend, nil
	}
	return StatusAbsent, nil
}

// History projects the last n days for one employee, oldest first.
func History(empID string, days int, today time.Time,
	subs map[string]map[string]database.Submission,
	leaves map[string]map[string]database.LeaveRecord,
	countWeekends bool) []DayEntry {

	entries := make([]DayEntry, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		dateKey := day.Format("2006-01-02")

		status, sub := dayStatus(empID, dateKey, day, subs, leaves, countWeekends)
		entries = append(entries, DayEntry{
			DateKey: dateKey,
			Label:   day.Format("Mon 02 Jan"),
			Status:  status,
			Sub:     sub,
		})
	}
	return entries
}

// Absentees lists roster entries with neither a submission nor an
// approved leave for the day, in id order.
func Absentees(roster []database.Employee,
	subs map[string]database.Submission,
	leaves map[string]database.LeaveRecord) []database.Employee {

	var absent []database.Employee
	for _, emp := range roster {
		if _, ok := subs[emp.ID]; ok {
			continue
		}
		if _, ok := leaves[emp.ID]; ok {
			continue
		}
		absent = append(absent, emp)
	}
	sort.Slice(absent, func(i, j int) bool { return absent[i].ID < absent[j].ID })
	return absent
}

// SplitByDeadline partitions one day's submissions into late and on-time
// lists, each sorted by employee id.
func SplitByDeadline(subs map[string]database.Submission) (late, onTime []database.Submission) {
	for _, sub := range subs {
		if sub.Late {
			late = append(late, sub)
		} else {
			onTime = append(onTime, sub)
		}
	}
	sort.Slice(late, func(i, j int) bool { return late[i].EmpID < late[j].EmpID })
	sort.Slice(onTime, func(i, j int) bool { return onTime[i].EmpID < onTime[j].EmpID })
	return late, onTime
}

// WeeklyRow is one employee's line in the 7-day grid.
type WeeklyRow struct {
	EmpID     string
	Cells     []DayStatus // oldest first, 7 entries
	Submitted int
}

// WeeklyGrid builds the 7-day attendance grid ending today. The returned
// header holds the weekday abbreviations in column order.
func WeeklyGrid(roster []database.Employee, today time.Time,
	subs map[string]map[string]database.Submission,
	leaves map[string]map[string]database.LeaveRecord,
	countWeekends bool) (header []string, rows []WeeklyRow) {

	for i := 6; i >= 0; i-- {
		header = append(header, today.AddDate(0, 0, -i).Format("Mon"))
	}

	for _, emp := range roster {
		row := WeeklyRow{EmpID: emp.ID}
		for i := 6; i >= 0; i-- {
			day := today.AddDate(0, 0, -i)
			dateKey := day.Format("2006-01-02")
			status, _ := dayStatus(emp.ID, dateKey, day, subs, leaves, countWeekends)
			row.Cells = append(row.Cells, status)
			if status == StatusSubmitted {
				row.Submitted++
			}
		}
		rows = append(rows, row)
	}
	return header, rows
}

// MonthlyStat summarizes one employee's attendance for the month to date.
type MonthlyStat struct {
	Emp         database.Employee
	Submitted   int
	Late        int
	Leaves      int
	WorkingDays int
	Percent     int
}

// MonthlyStats walks the current month from its first day through today.
// With countWeekends false, weekends leave the denominator entirely.
func MonthlyStats(roster []database.Employee, today time.Time,
	subs map[string]map[string]database.Submission,
	leaves map[string]map[string]database.LeaveRecord,
	countWeekends bool) []MonthlyStat {

	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())

	workingDays := 0
	for day := first; !day.After(today); day = day.AddDate(0, 0, 1) {
		if countWeekends || !isWeekend(day) {
			workingDays++
		}
	}

	stats := make([]MonthlyStat, 0, len(roster))
	for _, emp := range roster {
		stat := MonthlyStat{Emp: emp, WorkingDays: workingDays}
		for day := first; !day.After(today); day = day.AddDate(0, 0, 1) {
			dateKey := day.Format("2006-01-02")
			if sub, ok := subs[dateKey][emp.ID]; ok {
				stat.Submitted++
				if sub.Late {
					stat.Late++
				}
			}
			if _, ok := leaves[dateKey][emp.ID]; ok {
				stat.Leaves++
			}
		}
		if workingDays > 0 {
			stat.Percent = int(float64(stat.Submitted)/float64(workingDays)*100 + 0.5)
		}
		stats = append(stats, stat)
	}
	return stats
}

// ProgressBar renders a ten-segment attendance bar.
func ProgressBar(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent / 10
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}
