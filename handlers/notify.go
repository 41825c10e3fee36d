package handlers

import (
	"fmt"
	"log"

	"workupdatebot/workflow"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// notifySubmission fans a recorded update out to every admin chat. The
// originating chat is skipped so an admin submitting for themselves is
// not told twice.
func (h *BotHandler) notifySubmission(rec workflow.Record, originChat int64) {
	flag := ""
	if rec.Late {
		flag = " ⚠️ LATE"
	}
	text := fmt.Sprintf("📥 *%s* (%s, %s) submitted at %s%s\n\n%s",
		rec.Name, rec.EmpID, rec.Dept, rec.Time, flag, rec.Work)

	for _, adminID := range h.adminIDs() {
		if adminID == originChat {
			continue
		}
		msg := tgbotapi.NewMessage(adminID, text)
		msg.ParseMode = "Markdown"
		if _, err := h.bot.Send(msg); err != nil {
			log.Printf("Failed to notify admin %d: %v", adminID, err)
		}
	}
}

// promptAdmins sends an approval request with its keyboard to every
// admin chat. Delivery is best effort per chat.
func (h *BotHandler) promptAdmins(text string, tok workflow.Token) {
	keyboard := ApprovalKeyboard(tok)
	for _, adminID := range h.adminIDs() {
		msg := tgbotapi.NewMessage(adminID, text)
		msg.ReplyMarkup = keyboard
		if _, err := h.bot.Send(msg); err != nil {
			log.Printf("Failed to prompt admin %d: %v", adminID, err)
		}
	}
}

func (h *BotHandler) alertAdmins(text string) {
	for _, adminID := range h.adminIDs() {
		h.reply(adminID, text)
	}
}
