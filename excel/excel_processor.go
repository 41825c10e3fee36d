package excel

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"workupdatebot/database"
	"workupdatebot/utils"
	"workupdatebot/workflow"

	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
)

// ExcelProcessor maintains the local workbook: one sheet per month of
// submissions, a Leave Register and a Dashboard. The mutex serializes
// writers since excelize files are not safe for concurrent use.
type ExcelProcessor struct {
	mu   sync.Mutex
	path string
}

func NewExcelProcessor(path string) *ExcelProcessor {
	return &ExcelProcessor{path: path}
}

func (ep *ExcelProcessor) open() (*excelize.File, error) {
	if _, err := os.Stat(ep.path); os.IsNotExist(err) {
		return excelize.NewFile(), nil
	}
	f, err := excelize.OpenFile(ep.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %v", err)
	}
	return f, nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func altRowStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F2F2F2"}},
	})
}

func statusStyle(f *excelize.File, late bool) (int, error) {
	color := "2E7D32"
	if late {
		color = "C62828"
	}
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: color},
	})
}

var submissionHeaders = []string{"Sr No", "Date", "Day", "Emp ID", "Name", "Username", "Department", "Time", "Work Update", "On Time"}

// ensureSheet creates the named sheet with a styled header row if it does
// not exist yet, returning the index of the next free row.
func (ep *ExcelProcessor) ensureSheet(f *excelize.File, name string, headers []string) (int, error) {
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return 0, err
	}
	if idx >= 0 {
		rows, err := f.GetRows(name)
		if err != nil {
			return 0, err
		}
		return len(rows) + 1, nil
	}

	if _, err := f.NewSheet(name); err != nil {
		return 0, err
	}
	style, err := headerStyle(f)
	if err != nil {
		return 0, err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(name, cell, h); err != nil {
			return 0, err
		}
		if err := f.SetCellStyle(name, cell, cell, style); err != nil {
			return 0, err
		}
	}
	return 2, nil
}

// AppendSubmission writes a record to its month sheet, creating the
// sheet on first use.
func (ep *ExcelProcessor) AppendSubmission(rec workflow.Record) error {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	f, err := ep.open()
	if err != nil {
		return err
	}
	defer f.Close()

	sheet := utils.MonthSheetName(rec.DateKey)
	row, err := ep.ensureSheet(f, sheet, submissionHeaders)
	if err != nil {
		return err
	}

	status := "Yes"
	if rec.Late {
		status = "Late"
	}
	values := []interface{}{row - 1, rec.Date, rec.Day, rec.EmpID, rec.Name, rec.Username, rec.Dept, rec.Time, rec.Work, status}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}

	if row%2 == 0 {
		alt, err := altRowStyle(f)
		if err == nil {
			first, _ := excelize.CoordinatesToCellName(1, row)
			last, _ := excelize.CoordinatesToCellName(len(values)-1, row)
			f.SetCellStyle(sheet, first, last, alt)
		}
	}
	if st, err := statusStyle(f, rec.Late); err == nil {
		cell, _ := excelize.CoordinatesToCellName(len(values), row)
		f.SetCellStyle(sheet, cell, cell, st)
	}

	ep.dropDefaultSheet(f)
	return f.SaveAs(ep.path)
}

var leaveHeaders = []string{"Sr No", "Date", "Emp ID", "Name", "Reason", "Leave #", "Deduction"}

// AppendLeave records an approved leave in the Leave Register sheet.
// leaveNo is the employee's leave count for the month including this
// one; deduction is the resulting salary charge, zero within quota.
func (ep *ExcelProcessor) AppendLeave(dateKey string, emp database.Employee, reason string, leaveNo, deduction int) error {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	f, err := ep.open()
	if err != nil {
		return err
	}
	defer f.Close()

	row, err := ep.ensureSheet(f, "Leave Register", leaveHeaders)
	if err != nil {
		return err
	}

	charge := "-"
	if deduction > 0 {
		charge = strconv.Itoa(deduction)
	}
	values := []interface{}{row - 1, utils.DisplayDate(dateKey), emp.ID, emp.Name, reason, leaveNo, charge}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		if err := f.SetCellValue("Leave Register", cell, v); err != nil {
			return err
		}
	}

	ep.dropDefaultSheet(f)
	return f.SaveAs(ep.path)
}

var dashboardHeaders = []string{"Emp ID", "Name", "Department", "Submitted", "Late", "Leaves", "Working Days", "Attendance %"}

// RefreshDashboard rebuilds the Dashboard sheet from the month's stats.
// The sheet is dropped and recreated rather than edited in place.
func (ep *ExcelProcessor) RefreshDashboard(stats []workflow.MonthlyStat) error {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	f, err := ep.open()
	if err != nil {
		return err
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex("Dashboard"); err == nil && idx >= 0 {
		// excelize refuses to delete the only worksheet, so park a
		// placeholder first; dropDefaultSheet removes it again.
		if len(f.GetSheetList()) == 1 {
			if _, err := f.NewSheet("Sheet1"); err != nil {
				return err
			}
		}
		if err := f.DeleteSheet("Dashboard"); err != nil {
			return err
		}
	}
	row, err := ep.ensureSheet(f, "Dashboard", dashboardHeaders)
	if err != nil {
		return err
	}

	for _, stat := range stats {
		values := []interface{}{
			stat.Emp.ID, stat.Emp.Name, stat.Emp.Dept,
			stat.Submitted, stat.Late, stat.Leaves, stat.WorkingDays,
			fmt.Sprintf("%d%%", stat.Percent),
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellValue("Dashboard", cell, v); err != nil {
				return err
			}
		}
		row++
	}

	ep.dropDefaultSheet(f)
	return f.SaveAs(ep.path)
}

// dropDefaultSheet removes the sheet excelize seeds new files with once
// a real sheet exists.
func (ep *ExcelProcessor) dropDefaultSheet(f *excelize.File) {
	if len(f.GetSheetList()) > 1 {
		f.DeleteSheet("Sheet1")
	}
}

// ExportRow is one line of the full-history export.
type ExportRow struct {
	Date     string
	Day      string
	EmpID    string
	Name     string
	Username string
	Dept     string
	Time     string
	Work     string
	Late     bool
}

// ExportAll writes the complete submission history to a fresh workbook
// in the temp directory and returns its path. The caller sends the file
// and removes it afterwards.
func (ep *ExcelProcessor) ExportAll(rows []ExportRow) (string, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Work Updates")
	if err != nil {
		return "", err
	}

	headerRow := sheet.AddRow()
	for _, h := range []string{"Date", "Day", "Emp ID", "Name", "Username", "Department", "Time", "Work Update", "Status"} {
		headerRow.AddCell().Value = h
	}

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().Value = r.Date
		row.AddCell().Value = r.Day
		row.AddCell().Value = r.EmpID
		row.AddCell().Value = r.Name
		row.AddCell().Value = r.Username
		row.AddCell().Value = r.Dept
		row.AddCell().Value = r.Time
		row.AddCell().Value = r.Work

		statusCell := row.AddCell()
		if r.Late {
			statusCell.Value = "Late"
		} else {
			statusCell.Value = "On Time"
		}
	}

	filename := fmt.Sprintf("work_updates_export_%s.xlsx", time.Now().Format("20060102_150405"))
	path := filepath.Join(os.TempDir(), filename)
	if err := file.Save(path); err != nil {
		return "", err
	}
	return path, nil
}
