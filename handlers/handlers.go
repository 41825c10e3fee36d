package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"workupdatebot/config"
	"workupdatebot/database"
	"workupdatebot/excel"
	"workupdatebot/sheets"
	"workupdatebot/workflow"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Settings keys overriding the static config at runtime.
const (
	settingDeadline = "deadline"
	settingHRChat   = "hr_chat_id"
)

type BotHandler struct {
	bot     *tgbotapi.BotAPI
	db      *database.DB
	config  *config.Config
	pending *workflow.PendingStore
	excel   *excel.ExcelProcessor
	sheets  *sheets.Client
	loc     *time.Location
}

func NewBotHandler(bot *tgbotapi.BotAPI, db *database.DB, cfg *config.Config, remote *sheets.Client) *BotHandler {
	return &BotHandler{
		bot:     bot,
		db:      db,
		config:  cfg,
		pending: workflow.NewPendingStore(cfg.PendingTTL),
		excel:   excel.NewExcelProcessor(cfg.ExcelFile),
		sheets:  remote,
		loc:     cfg.Location(),
	}
}

func (h *BotHandler) now() time.Time {
	return time.Now().In(h.loc)
}

// deadline returns the active submission deadline, preferring the value
// set at runtime via /deadline over the configured default.
func (h *BotHandler) deadline() string {
	value, err := h.db.GetSetting(settingDeadline, h.config.Deadline)
	if err != nil {
		log.Printf("Failed to read deadline setting: %v", err)
		return h.config.Deadline
	}
	return value
}

// hrChatID returns the active HR chat, preferring the value set at
// runtime via /sethr.
func (h *BotHandler) hrChatID() int64 {
	fallback := strconv.FormatInt(h.config.HRChatID, 10)
	value, err := h.db.GetSetting(settingHRChat, fallback)
	if err != nil {
		return h.config.HRChatID
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return h.config.HRChatID
	}
	return id
}

func (h *BotHandler) isAdmin(userID int64) bool {
	if h.config.IsOwner(userID) {
		return true
	}
	hr := h.hrChatID()
	return hr != 0 && userID == hr
}

// adminIDs lists every chat that receives approval prompts and alerts.
func (h *BotHandler) adminIDs() []int64 {
	ids := append([]int64{}, h.config.OwnerIDs...)
	if hr := h.hrChatID(); hr != 0 && !h.config.IsOwner(hr) {
		ids = append(ids, hr)
	}
	return ids
}

func (h *BotHandler) HandleMessage(update tgbotapi.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	text := update.Message.Text

	if strings.HasPrefix(text, "/") {
		h.handleCommand(chatID, userID, update.Message.From, text)
		return
	}

	h.handleSubmission(chatID, update.Message.From, text)
}

// handleSubmission runs the classify-record-mirror-notify path for a
// free-text message. Messages that do not look like a work update are
// dropped silently so group chatter stays unanswered.
func (h *BotHandler) handleSubmission(chatID int64, from *tgbotapi.User, text string) {
	rec, ok := workflow.Classify(text, from.UserName, h.now(), h.deadline(), func(id string) (database.Employee, bool) {
		emp, found, err := h.db.GetEmployee(id)
		if err != nil {
			log.Printf("Employee lookup failed for %s: %v", id, err)
			return database.Employee{}, false
		}
		return emp, found
	})
	if !ok {
		return
	}

	err := h.db.RecordSubmission(database.Submission{
		Date:     rec.DateKey,
		EmpID:    rec.EmpID,
		Username: rec.Username,
		Time:     rec.Time,
		Work:     rec.Work,
		Late:     rec.Late,
	})
	if errors.Is(err, database.ErrDuplicateSubmission) {
		h.reply(chatID, fmt.Sprintf(
			"⚠️ %s already submitted an update today. Use /allow to request a re-submission.",
			rec.EmpID))
		return
	}
	if err != nil {
		log.Printf("Failed to record submission for %s: %v", rec.EmpID, err)
		h.sendError(chatID, "Could not save the update, please try again.")
		return
	}

	// Link the Telegram account on first contact so /mystatus and admin
	// DMs work without a separate registration step.
	if err := h.db.SetTelegramID(rec.EmpID, from.ID); err != nil {
		log.Printf("Failed to link telegram id for %s: %v", rec.EmpID, err)
	}

	var warnings []string
	if err := h.excel.AppendSubmission(rec); err != nil {
		log.Printf("Excel sink failed for %s: %v", rec.EmpID, err)
		warnings = append(warnings, "local workbook")
	}

	if h.sheets.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := h.sheets.AppendSubmission(ctx, rec); err != nil {
			log.Printf("Sheets sink failed for %s: %v", rec.EmpID, err)
			warnings = append(warnings, "Google Sheet")
		}
		cancel()
	}

	status := "on time"
	if rec.Late {
		status = "late"
	}
	confirmation := fmt.Sprintf("✅ Update recorded for *%s* (%s) at %s, %s.",
		rec.Name, rec.EmpID, rec.Time, status)
	if len(warnings) > 0 {
		confirmation += fmt.Sprintf("\n⚠️ Saved, but mirroring to %s failed.", strings.Join(warnings, " and "))
	}
	h.replyMarkdown(chatID, confirmation)

	h.notifySubmission(rec, chatID)
}

func (h *BotHandler) handleCommand(chatID, userID int64, from *tgbotapi.User, text string) {
	parts := strings.Fields(text)
	cmd := strings.ToLower(strings.TrimSuffix(parts[0], "@"+h.bot.Self.UserName))
	args := strings.TrimSpace(strings.TrimPrefix(text, parts[0]))

	switch cmd {
	case "/start", "/help":
		h.handleHelp(chatID, userID)
	case "/mystatus":
		h.handleMyStatus(chatID, userID)
	case "/myprofile":
		h.handleMyProfile(chatID, userID)
	case "/edit":
		h.handleEdit(chatID, userID, from, args)
	case "/leave":
		h.handleLeave(chatID, userID, from, args)
	case "/allow":
		h.handleAllow(chatID, userID, from, args)

	case "/staff":
		h.withAdmin(chatID, userID, func() { h.handleStaff(chatID) })
	case "/addstaff":
		h.withAdmin(chatID, userID, func() { h.handleAddStaff(chatID, args) })
	case "/removestaff":
		h.withAdmin(chatID, userID, func() { h.handleRemoveStaff(chatID, args) })
	case "/absent":
		h.withAdmin(chatID, userID, func() { h.handleAbsent(chatID, args) })
	case "/late":
		h.withAdmin(chatID, userID, func() { h.handleLate(chatID) })
	case "/history":
		h.withAdmin(chatID, userID, func() { h.handleHistory(chatID, args) })
	case "/weeklyreport":
		h.withAdmin(chatID, userID, func() { h.handleWeeklyReport(chatID) })
	case "/monthly":
		h.withAdmin(chatID, userID, func() { h.handleMonthly(chatID) })
	case "/export":
		h.withAdmin(chatID, userID, func() { h.handleExport(chatID) })
	case "/broadcast":
		h.withAdmin(chatID, userID, func() { h.handleBroadcast(chatID, args) })
	case "/announce":
		h.withAdmin(chatID, userID, func() { h.handleAnnounce(chatID, args) })
	case "/remind":
		h.withAdmin(chatID, userID, func() { h.handleRemind(chatID) })
	case "/dm":
		h.withAdmin(chatID, userID, func() { h.handleDM(chatID, args) })
	case "/warning":
		h.withAdmin(chatID, userID, func() { h.handleWarning(chatID, args) })
	case "/deadline":
		h.withAdmin(chatID, userID, func() { h.handleDeadline(chatID, args) })

	case "/sethr":
		if !h.config.IsOwner(userID) {
			h.sendError(chatID, "Only the bot owner can change the HR contact.")
			return
		}
		h.handleSetHR(chatID, args)

	default:
		// Unknown commands in group chats stay unanswered
		if chatID == userID {
			h.reply(chatID, "Unknown command. Send /help for the list.")
		}
	}
}

func (h *BotHandler) withAdmin(chatID, userID int64, fn func()) {
	if !h.isAdmin(userID) {
		h.sendError(chatID, "You are not allowed to use this command.")
		return
	}
	fn()
}

// employeeFor resolves the sender to a roster entry, telling them what
// to do when the link is missing.
func (h *BotHandler) employeeFor(chatID, userID int64) (database.Employee, bool) {
	emp, found, err := h.db.GetEmployeeByTelegramID(userID)
	if err != nil {
		log.Printf("Employee lookup by telegram id %d failed: %v", userID, err)
		h.sendError(chatID, "Lookup failed, please try again.")
		return database.Employee{}, false
	}
	if !found {
		h.sendError(chatID, "I don't know your employee id yet. Send a work update first (EMP_ID followed by your update).")
		return database.Employee{}, false
	}
	return emp, true
}

func (h *BotHandler) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.Printf("Failed to send message to %d: %v", chatID, err)
	}
}

func (h *BotHandler) replyMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := h.bot.Send(msg); err != nil {
		log.Printf("Failed to send message to %d: %v", chatID, err)
	}
}

func (h *BotHandler) sendError(chatID int64, message string) {
	h.reply(chatID, "❌ "+message)
}
