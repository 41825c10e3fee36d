package handlers

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"workupdatebot/database"
	"workupdatebot/excel"
	"workupdatebot/utils"
	"workupdatebot/workflow"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// todayKey returns the ledger date the current moment belongs to.
// Before 01:00 that is still the previous calendar day.
func (h *BotHandler) todayKey() string {
	now := h.now()
	if now.Hour() < 1 {
		now = now.AddDate(0, 0, -1)
	}
	return now.Format("2006-01-02")
}

func (h *BotHandler) handleHelp(chatID, userID int64) {
	text := "👋 Send your daily update as:\n" +
		"`EMP_ID what you worked on today`\n\n" +
		"*Commands*\n" +
		"/mystatus - today's submission status\n" +
		"/myprofile - your profile and monthly summary\n" +
		"/edit <new text> - propose a correction to today's update\n" +
		"/leave [today|tomorrow|DD-MM-YYYY] [reason] - request a leave\n" +
		"/allow - request permission to re-submit today"

	if h.isAdmin(userID) {
		text += "\n\n*Admin commands*\n" +
			"/staff, /addstaff <id> | <name> | <dept>, /removestaff <id>\n" +
			"/absent [today|DD-MM-YYYY], /late, /history <id> [days]\n" +
			"/weeklyreport, /monthly, /export\n" +
			"/broadcast <text>, /announce <text>, /remind\n" +
			"/dm <id> <text>, /warning <id>, /deadline [HH:MM]"
	}
	if h.config.IsOwner(userID) {
		text += "\n/sethr <chat id> - set the HR contact"
	}
	h.replyMarkdown(chatID, text)
}

func (h *BotHandler) handleMyStatus(chatID, userID int64) {
	emp, ok := h.employeeFor(chatID, userID)
	if !ok {
		return
	}

	date := h.todayKey()
	sub, found, err := h.db.GetSubmission(date, emp.ID)
	if err != nil {
		log.Printf("Status lookup failed for %s: %v", emp.ID, err)
		h.sendError(chatID, "Lookup failed, please try again.")
		return
	}
	if !found {
		leaves, err := h.db.LeavesForDate(date)
		if err == nil {
			if rec, onLeave := leaves[emp.ID]; onLeave {
				h.replyMarkdown(chatID, fmt.Sprintf("🌴 You are on approved leave today (%s).", rec.Reason))
				return
			}
		}
		h.reply(chatID, "⏳ No update from you yet today. Deadline: "+h.deadline())
		return
	}

	status := "on time ✅"
	if sub.Late {
		status = "late ⚠️"
	}
	h.replyMarkdown(chatID, fmt.Sprintf(
		"📋 Today's update from *%s*:\nSubmitted at %s (%s)\n\n%s",
		emp.Name, sub.Time, status, sub.Work))
}

func (h *BotHandler) handleMyProfile(chatID, userID int64) {
	emp, ok := h.employeeFor(chatID, userID)
	if !ok {
		return
	}

	now := h.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, h.loc).Format("2006-01-02")
	subs, err := h.db.SubmissionsBetween(monthStart, h.todayKey())
	if err != nil {
		log.Printf("Profile lookup failed for %s: %v", emp.ID, err)
		h.sendError(chatID, "Lookup failed, please try again.")
		return
	}

	submitted, late := 0, 0
	for _, day := range subs {
		if sub, ok := day[emp.ID]; ok {
			submitted++
			if sub.Late {
				late++
			}
		}
	}
	leaves, err := h.db.CountMonthlyLeaves(emp.ID, now.Format("2006-01"))
	if err != nil {
		leaves = 0
	}

	h.replyMarkdown(chatID, fmt.Sprintf(
		"👤 *%s* (%s)\nDepartment: %s\n\n*%s so far:*\nUpdates: %d (%d late)\nLeaves: %d",
		emp.Name, emp.ID, emp.Dept, now.Format("January 2006"), submitted, late, leaves))
}

func (h *BotHandler) handleEdit(chatID, userID int64, from *tgbotapi.User, args string) {
	emp, ok := h.employeeFor(chatID, userID)
	if !ok {
		return
	}
	if args == "" {
		h.sendError(chatID, "Usage: /edit <corrected update text>")
		return
	}

	date := h.todayKey()
	_, found, err := h.db.GetSubmission(date, emp.ID)
	if err != nil {
		h.sendError(chatID, "Lookup failed, please try again.")
		return
	}
	if !found {
		h.sendError(chatID, "You have no update today to edit. Just send your update.")
		return
	}

	h.pending.PutEdit(workflow.EditRequest{
		EmpID:         emp.ID,
		NewText:       args,
		RequesterName: from.FirstName,
		ChatID:        chatID,
		CreatedAt:     h.now(),
	})

	tok := workflow.Token{Action: workflow.EditApprove, EmpID: emp.ID, ChatID: chatID}
	prompt := fmt.Sprintf("✏️ Edit request from %s (%s):\n\n%s", emp.Name, emp.ID, utils.Truncate(args, 500))
	h.promptAdmins(prompt, tok)
	h.reply(chatID, "📨 Your edit was sent for approval.")
}

func (h *BotHandler) handleLeave(chatID, userID int64, from *tgbotapi.User, args string) {
	emp, ok := h.employeeFor(chatID, userID)
	if !ok {
		return
	}

	dateKey := h.todayKey()
	display := utils.DisplayDate(dateKey)
	reason := "Personal leave"

	if args != "" {
		first := strings.Fields(args)[0]
		if key, disp, parsed := utils.ParseLeaveDate(first, h.now()); parsed {
			dateKey, display = key, disp
			if rest := strings.TrimSpace(strings.TrimPrefix(args, first)); rest != "" {
				reason = rest
			}
		} else {
			// No recognizable date, the whole argument is the reason and
			// the leave applies today.
			reason = args
		}
	}

	h.pending.PutLeave(workflow.LeaveRequest{
		EmpID:         emp.ID,
		Date:          dateKey,
		Reason:        reason,
		RequesterName: from.FirstName,
		ChatID:        chatID,
		CreatedAt:     h.now(),
	})

	tok := workflow.Token{Action: workflow.LeaveApprove, EmpID: emp.ID, Date: dateKey, ChatID: chatID}
	prompt := fmt.Sprintf("🌴 Leave request from %s (%s)\nDate: %s\nReason: %s",
		emp.Name, emp.ID, display, reason)
	h.promptAdmins(prompt, tok)
	h.reply(chatID, fmt.Sprintf("📨 Leave request for %s sent for approval.", display))
}

func (h *BotHandler) handleAllow(chatID, userID int64, from *tgbotapi.User, args string) {
	var emp database.Employee
	if args != "" && h.isAdmin(userID) {
		// Admins may raise the request on an employee's behalf
		found := false
		var err error
		emp, found, err = h.db.GetEmployee(strings.Fields(args)[0])
		if err != nil || !found {
			h.sendError(chatID, "Unknown employee id.")
			return
		}
	} else {
		var ok bool
		emp, ok = h.employeeFor(chatID, userID)
		if !ok {
			return
		}
	}

	date := h.todayKey()
	has, err := h.db.HasSubmission(date, emp.ID)
	if err != nil {
		h.sendError(chatID, "Lookup failed, please try again.")
		return
	}
	if !has {
		h.reply(chatID, "ℹ️ There is no update to replace today. Just send your update.")
		return
	}

	// The gate counts requests, not approvals: only the first request per
	// day reaches the admins, anything after it is an alert.
	used, err := h.db.IncrementAllowUsage(date, emp.ID)
	if err != nil {
		h.sendError(chatID, "Lookup failed, please try again.")
		return
	}
	if used > 1 {
		h.alertAdmins(fmt.Sprintf(
			"🚨 Suspicious activity: %s (%s) asked to re-submit again today after already raising a request.",
			emp.Name, emp.ID))
		h.sendError(chatID, "You already used your re-submission request for today.")
		return
	}

	h.pending.PutResubmit(workflow.ResubmitRequest{
		EmpID:         emp.ID,
		Date:          date,
		RequesterID:   userID,
		RequesterName: from.FirstName,
		ChatID:        chatID,
		CreatedAt:     h.now(),
	})

	tok := workflow.Token{Action: workflow.AllowApprove, EmpID: emp.ID, ChatID: chatID}
	prompt := fmt.Sprintf("🔁 Re-submission request from %s (%s) for today.", emp.Name, emp.ID)
	h.promptAdmins(prompt, tok)
	h.reply(chatID, "📨 Re-submission request sent for approval.")
}

// ── Admin commands ──────────────────────────────────────────────────────

func (h *BotHandler) handleStaff(chatID int64) {
	employees, err := h.db.AllEmployees()
	if err != nil {
		h.sendError(chatID, "Failed to load the roster: "+err.Error())
		return
	}
	if len(employees) == 0 {
		h.reply(chatID, "The roster is empty. Add people with /addstaff.")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👥 *Roster (%d):*\n\n", len(employees))
	for _, emp := range employees {
		linked := ""
		if emp.TelegramID != 0 {
			linked = " 🔗"
		}
		fmt.Fprintf(&b, "• *%s* - %s (%s)%s\n", emp.ID, emp.Name, emp.Dept, linked)
	}
	h.replyMarkdown(chatID, b.String())
}

func (h *BotHandler) handleAddStaff(chatID int64, args string) {
	parts := strings.Split(args, "|")
	if len(parts) < 2 {
		h.sendError(chatID, "Usage: /addstaff <id> | <name> | <department>")
		return
	}

	emp := database.Employee{
		ID:   strings.TrimSpace(parts[0]),
		Name: strings.TrimSpace(parts[1]),
	}
	if len(parts) > 2 {
		emp.Dept = strings.TrimSpace(parts[2])
	}
	if emp.ID == "" || emp.Name == "" {
		h.sendError(chatID, "Both the id and the name are required.")
		return
	}

	if err := h.db.AddEmployee(emp); err != nil {
		h.sendError(chatID, "Failed to add: "+err.Error())
		return
	}
	h.reply(chatID, fmt.Sprintf("✅ %s added as %s.", emp.Name, strings.ToUpper(emp.ID)))
}

func (h *BotHandler) handleRemoveStaff(chatID int64, args string) {
	if args == "" {
		h.sendError(chatID, "Usage: /removestaff <id>")
		return
	}
	removed, err := h.db.RemoveEmployee(strings.Fields(args)[0])
	if err != nil {
		h.sendError(chatID, "Failed to remove: "+err.Error())
		return
	}
	if !removed {
		h.sendError(chatID, "No such employee id.")
		return
	}
	h.reply(chatID, "✅ Removed. Their submission history is kept.")
}

func (h *BotHandler) handleAbsent(chatID int64, args string) {
	dateKey := h.todayKey()
	if args != "" {
		key, _, ok := utils.ParseLeaveDate(strings.Fields(args)[0], h.now())
		if !ok {
			h.sendError(chatID, "Usage: /absent [today|DD-MM-YYYY]")
			return
		}
		dateKey = key
	}

	roster, err := h.db.AllEmployees()
	if err != nil {
		h.sendError(chatID, "Failed to load the roster: "+err.Error())
		return
	}
	subs, err := h.db.SubmissionsForDate(dateKey)
	if err != nil {
		h.sendError(chatID, "Failed to load submissions: "+err.Error())
		return
	}
	leaves, err := h.db.LeavesForDate(dateKey)
	if err != nil {
		h.sendError(chatID, "Failed to load leaves: "+err.Error())
		return
	}

	absent := workflow.Absentees(roster, subs, leaves)
	display := utils.DisplayDate(dateKey)
	if len(absent) == 0 {
		h.replyMarkdown(chatID, fmt.Sprintf("🎉 Everyone is accounted for on %s.", display))
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🚫 *Missing on %s (%d of %d):*\n\n", display, len(absent), len(roster))
	for _, emp := range absent {
		fmt.Fprintf(&b, "• %s - %s\n", emp.ID, emp.Name)
	}
	h.replyMarkdown(chatID, b.String())
}

func (h *BotHandler) handleLate(chatID int64) {
	subs, err := h.db.SubmissionsForDate(h.todayKey())
	if err != nil {
		h.sendError(chatID, "Failed to load submissions: "+err.Error())
		return
	}

	late, onTime := workflow.SplitByDeadline(subs)
	if len(late) == 0 {
		h.reply(chatID, fmt.Sprintf("✅ Nobody is late today (%d on time).", len(onTime)))
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "⏰ *Late today (%d, deadline %s):*\n\n", len(late), h.deadline())
	for _, sub := range late {
		fmt.Fprintf(&b, "• %s at %s\n", sub.EmpID, sub.Time)
	}
	fmt.Fprintf(&b, "\nOn time: %d", len(onTime))
	h.replyMarkdown(chatID, b.String())
}

func statusIcon(status workflow.DayStatus) string {
	switch status {
	case workflow.StatusSubmitted:
		return "✅"
	case workflow.StatusLeave:
		return "🌴"
	case workflow.StatusWeekend:
		return "⬜"
	default:
		return "❌"
	}
}

func (h *BotHandler) handleHistory(chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		h.sendError(chatID, "Usage: /history <id> [days]")
		return
	}

	emp, found, err := h.db.GetEmployee(fields[0])
	if err != nil || !found {
		h.sendError(chatID, "Unknown employee id.")
		return
	}

	days := 7
	if len(fields) > 1 {
		if n, err := strconv.Atoi(fields[1]); err == nil && n > 0 && n <= 31 {
			days = n
		}
	}

	now := h.now()
	start := now.AddDate(0, 0, -(days - 1)).Format("2006-01-02")
	subs, err := h.db.SubmissionsBetween(start, h.todayKey())
	if err != nil {
		h.sendError(chatID, "Failed to load submissions: "+err.Error())
		return
	}
	leaves, err := h.db.LeavesBetween(start, h.todayKey())
	if err != nil {
		h.sendError(chatID, "Failed to load leaves: "+err.Error())
		return
	}

	entries := workflow.History(emp.ID, days, now, subs, leaves, h.config.CountWeekends)

	var b strings.Builder
	fmt.Fprintf(&b, "📜 *%s (%s), last %d days:*\n\n", emp.Name, emp.ID, days)
	for _, e := range entries {
		line := statusIcon(e.Status) + " " + e.Label
		if e.Sub != nil {
			line += fmt.Sprintf(" %s - %s", e.Sub.Time, utils.Truncate(e.Sub.Work, 40))
		}
		b.WriteString(line + "\n")
	}
	h.replyMarkdown(chatID, b.String())
}

func (h *BotHandler) handleWeeklyReport(chatID int64) {
	roster, err := h.db.AllEmployees()
	if err != nil {
		h.sendError(chatID, "Failed to load the roster: "+err.Error())
		return
	}

	now := h.now()
	start := now.AddDate(0, 0, -6).Format("2006-01-02")
	subs, err := h.db.SubmissionsBetween(start, h.todayKey())
	if err != nil {
		h.sendError(chatID, "Failed to load submissions: "+err.Error())
		return
	}
	leaves, err := h.db.LeavesBetween(start, h.todayKey())
	if err != nil {
		h.sendError(chatID, "Failed to load leaves: "+err.Error())
		return
	}

	header, rows := workflow.WeeklyGrid(roster, now, subs, leaves, h.config.CountWeekends)

	var b strings.Builder
	b.WriteString("📅 *Last 7 days* (" + strings.Join(header, " ") + ")\n\n")
	for _, row := range rows {
		b.WriteString(row.EmpID + " ")
		for _, cell := range row.Cells {
			b.WriteString(statusIcon(cell))
		}
		fmt.Fprintf(&b, " %d/7\n", row.Submitted)
	}
	h.replyMarkdown(chatID, b.String())
}

func (h *BotHandler) handleMonthly(chatID int64) {
	roster, err := h.db.AllEmployees()
	if err != nil {
		h.sendError(chatID, "Failed to load the roster: "+err.Error())
		return
	}

	now := h.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, h.loc).Format("2006-01-02")
	subs, err := h.db.SubmissionsBetween(monthStart, h.todayKey())
	if err != nil {
		h.sendError(chatID, "Failed to load submissions: "+err.Error())
		return
	}
	leaves, err := h.db.LeavesBetween(monthStart, h.todayKey())
	if err != nil {
		h.sendError(chatID, "Failed to load leaves: "+err.Error())
		return
	}

	stats := workflow.MonthlyStats(roster, now, subs, leaves, h.config.CountWeekends)

	var b strings.Builder
	fmt.Fprintf(&b, "📊 *%s attendance:*\n\n", now.Format("January 2006"))
	for _, stat := range stats {
		fmt.Fprintf(&b, "*%s* %s %d%%\n%d/%d updates, %d late, %d leaves",
			stat.Emp.ID, workflow.ProgressBar(stat.Percent), stat.Percent,
			stat.Submitted, stat.WorkingDays, stat.Late, stat.Leaves)
		if deduction := workflow.LeaveDeduction(stat.Leaves); deduction > 0 {
			fmt.Fprintf(&b, ", deduction %d", deduction)
		}
		b.WriteString("\n\n")
	}
	h.replyMarkdown(chatID, b.String())

	if err := h.excel.RefreshDashboard(stats); err != nil {
		log.Printf("Dashboard refresh failed: %v", err)
	}
}

func (h *BotHandler) handleExport(chatID int64) {
	subs, err := h.db.AllSubmissions()
	if err != nil {
		h.sendError(chatID, "Failed to load the ledger: "+err.Error())
		return
	}
	if len(subs) == 0 {
		h.reply(chatID, "Nothing to export yet.")
		return
	}

	roster, err := h.db.AllEmployees()
	if err != nil {
		h.sendError(chatID, "Failed to load the roster: "+err.Error())
		return
	}
	byID := make(map[string]database.Employee, len(roster))
	for _, emp := range roster {
		byID[emp.ID] = emp
	}

	rows := make([]excel.ExportRow, 0, len(subs))
	for _, sub := range subs {
		row := excel.ExportRow{
			Date:     utils.DisplayDate(sub.Date),
			EmpID:    sub.EmpID,
			Username: sub.Username,
			Time:     sub.Time,
			Work:     sub.Work,
			Late:     sub.Late,
		}
		if day, err := time.Parse("2006-01-02", sub.Date); err == nil {
			row.Day = day.Format("Monday")
		}
		if emp, ok := byID[sub.EmpID]; ok {
			row.Name = emp.Name
			row.Dept = emp.Dept
		}
		rows = append(rows, row)
	}

	path, err := h.excel.ExportAll(rows)
	if err != nil {
		h.sendError(chatID, "Export failed: "+err.Error())
		return
	}
	defer os.Remove(path)

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = fmt.Sprintf("Full export, %d updates", len(rows))
	if _, err := h.bot.Send(doc); err != nil {
		log.Printf("Failed to send export to %d: %v", chatID, err)
		h.sendError(chatID, "Could not send the export file.")
	}
}

func (h *BotHandler) handleBroadcast(chatID int64, args string) {
	if args == "" {
		h.sendError(chatID, "Usage: /broadcast <text>")
		return
	}

	roster, err := h.db.AllEmployees()
	if err != nil {
		h.sendError(chatID, "Failed to load the roster: "+err.Error())
		return
	}

	sent, unreachable := 0, 0
	for _, emp := range roster {
		if emp.TelegramID == 0 {
			unreachable++
			continue
		}
		h.reply(emp.TelegramID, "📢 "+args)
		sent++
	}
	h.reply(chatID, fmt.Sprintf("📢 Broadcast sent to %d employees (%d have no linked chat).", sent, unreachable))
}

func (h *BotHandler) handleAnnounce(chatID int64, args string) {
	if args == "" {
		h.sendError(chatID, "Usage: /announce <text>")
		return
	}
	if h.config.GroupChatID == 0 {
		h.sendError(chatID, "GROUP_CHAT_ID is not configured.")
		return
	}
	h.reply(h.config.GroupChatID, "📢 "+args)
	h.reply(chatID, "✅ Announcement posted to the group.")
}

func (h *BotHandler) handleRemind(chatID int64) {
	roster, err := h.db.AllEmployees()
	if err != nil {
		h.sendError(chatID, "Failed to load the roster: "+err.Error())
		return
	}
	date := h.todayKey()
	subs, err := h.db.SubmissionsForDate(date)
	if err != nil {
		h.sendError(chatID, "Failed to load submissions: "+err.Error())
		return
	}
	leaves, err := h.db.LeavesForDate(date)
	if err != nil {
		h.sendError(chatID, "Failed to load leaves: "+err.Error())
		return
	}

	absent := workflow.Absentees(roster, subs, leaves)
	if len(absent) == 0 {
		h.reply(chatID, "🎉 Nobody to remind, everyone is accounted for.")
		return
	}

	reminded := 0
	var unreachable []string
	for _, emp := range absent {
		if emp.TelegramID == 0 {
			unreachable = append(unreachable, emp.ID)
			continue
		}
		h.reply(emp.TelegramID, fmt.Sprintf(
			"⏰ Reminder: your work update for today is still missing. Deadline is %s.", h.deadline()))
		reminded++
	}

	report := fmt.Sprintf("⏰ Reminded %d of %d absentees.", reminded, len(absent))
	if len(unreachable) > 0 {
		report += "\nNo linked chat: " + strings.Join(unreachable, ", ")
	}
	h.reply(chatID, report)
}

func (h *BotHandler) handleDM(chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		h.sendError(chatID, "Usage: /dm <id> <text>")
		return
	}

	emp, found, err := h.db.GetEmployee(fields[0])
	if err != nil || !found {
		h.sendError(chatID, "Unknown employee id.")
		return
	}
	if emp.TelegramID == 0 {
		h.sendError(chatID, emp.ID+" has no linked Telegram chat yet.")
		return
	}

	text := strings.TrimSpace(strings.TrimPrefix(args, fields[0]))
	h.reply(emp.TelegramID, "💬 Message from management:\n\n"+text)
	h.reply(chatID, "✅ Delivered to "+emp.Name+".")
}

func (h *BotHandler) handleWarning(chatID int64, args string) {
	if args == "" {
		h.sendError(chatID, "Usage: /warning <id>")
		return
	}

	emp, found, err := h.db.GetEmployee(strings.Fields(args)[0])
	if err != nil || !found {
		h.sendError(chatID, "Unknown employee id.")
		return
	}
	if emp.TelegramID == 0 {
		h.sendError(chatID, emp.ID+" has no linked Telegram chat yet.")
		return
	}

	h.reply(emp.TelegramID, fmt.Sprintf(
		"⚠️ Official warning: your daily work updates have been irregular. "+
			"Please submit every working day before %s.", h.deadline()))
	h.reply(chatID, "⚠️ Warning sent to "+emp.Name+".")
}

func (h *BotHandler) handleDeadline(chatID int64, args string) {
	if args == "" {
		h.reply(chatID, "⏰ Current submission deadline: "+h.deadline())
		return
	}

	value := strings.Fields(args)[0]
	if _, _, err := workflow.ParseDeadline(value); err != nil {
		h.sendError(chatID, "Use the HH:MM 24-hour format, e.g. /deadline 11:30")
		return
	}
	if err := h.db.SetSetting(settingDeadline, value); err != nil {
		h.sendError(chatID, "Failed to save the deadline: "+err.Error())
		return
	}
	h.reply(chatID, "✅ Submission deadline set to "+value+".")
}

func (h *BotHandler) handleSetHR(chatID int64, args string) {
	if args == "" {
		h.sendError(chatID, "Usage: /sethr <chat id>")
		return
	}
	id, err := strconv.ParseInt(strings.Fields(args)[0], 10, 64)
	if err != nil {
		h.sendError(chatID, "The chat id must be a number.")
		return
	}
	if err := h.db.SetSetting(settingHRChat, strconv.FormatInt(id, 10)); err != nil {
		h.sendError(chatID, "Failed to save the HR contact: "+err.Error())
		return
	}
	h.reply(chatID, fmt.Sprintf("✅ HR contact set to %d.", id))
}
