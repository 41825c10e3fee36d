package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	"workupdatebot/database"
	"workupdatebot/utils"
	"workupdatebot/workflow"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandleCallback resolves an approval button press. Only admins may
// decide; anyone else gets a toast and the prompt stays live.
func (h *BotHandler) HandleCallback(update tgbotapi.Update) {
	cb := update.CallbackQuery
	if cb == nil || cb.Message == nil {
		return
	}

	tok, err := workflow.DecodeToken(cb.Data)
	if err != nil {
		log.Printf("Dropping callback from %d: %v", cb.From.ID, err)
		h.answerCallback(cb.ID, "This button is no longer valid.")
		return
	}

	if !h.isAdmin(cb.From.ID) {
		h.answerCallback(cb.ID, "Only admins can decide this.")
		return
	}

	var outcome string
	switch tok.Action {
	case workflow.AllowApprove, workflow.AllowReject:
		outcome = h.resolveResubmit(tok, cb.From)
	case workflow.EditApprove, workflow.EditReject:
		outcome = h.resolveEdit(tok, cb.From)
	case workflow.LeaveApprove, workflow.LeaveReject:
		outcome = h.resolveLeave(tok, cb.From)
	}

	h.answerCallback(cb.ID, "Done")
	h.finishPrompt(cb, outcome)
}

func (h *BotHandler) resolveResubmit(tok workflow.Token, admin *tgbotapi.User) string {
	req, ok := h.pending.TakeResubmit(tok.EmpID, h.now())
	if !ok {
		return "⌛ This request was already handled or has expired."
	}

	emp, _, err := h.db.GetEmployee(tok.EmpID)
	if err != nil {
		log.Printf("Employee lookup failed for %s: %v", tok.EmpID, err)
	}

	if !tok.Action.IsApprove() {
		h.reply(req.ChatID, fmt.Sprintf("❌ Re-submission request for %s was rejected.", tok.EmpID))
		return fmt.Sprintf("❌ Rejected by %s.", admin.FirstName)
	}

	if err := h.db.ClearSubmission(req.Date, tok.EmpID); err != nil {
		log.Printf("Failed to clear submission for %s on %s: %v", tok.EmpID, req.Date, err)
		return "⚠️ Approval failed, the ledger entry could not be cleared."
	}

	h.reply(req.ChatID, fmt.Sprintf(
		"✅ Re-submission approved for %s. Send the corrected update now.", emp.Name))
	return fmt.Sprintf("✅ Approved by %s, entry cleared.", admin.FirstName)
}

// resolveEdit settles an edit proposal. Approval is advisory: the
// recorded entry stays as submitted, admins simply acknowledge the
// corrected text.
func (h *BotHandler) resolveEdit(tok workflow.Token, admin *tgbotapi.User) string {
	req, ok := h.pending.TakeEdit(tok.EmpID, h.now())
	if !ok {
		return "⌛ This request was already handled or has expired."
	}

	if !tok.Action.IsApprove() {
		h.reply(req.ChatID, fmt.Sprintf("❌ Your edit request for %s was rejected.", tok.EmpID))
		return fmt.Sprintf("❌ Rejected by %s.", admin.FirstName)
	}

	h.reply(req.ChatID, fmt.Sprintf(
		"✅ Your correction was acknowledged by %s:\n\n%s",
		admin.FirstName, utils.Truncate(req.NewText, 500)))
	return fmt.Sprintf("✅ Acknowledged by %s.", admin.FirstName)
}

func (h *BotHandler) resolveLeave(tok workflow.Token, admin *tgbotapi.User) string {
	req, ok := h.pending.TakeLeave(tok.EmpID, tok.Date, h.now())
	if !ok {
		return "⌛ This request was already handled or has expired."
	}

	display := utils.DisplayDate(req.Date)
	if !tok.Action.IsApprove() {
		h.reply(req.ChatID, fmt.Sprintf("❌ Your leave request for %s was rejected.", display))
		return fmt.Sprintf("❌ Rejected by %s.", admin.FirstName)
	}

	err := h.db.AddLeave(database.LeaveRecord{
		Date:       req.Date,
		EmpID:      req.EmpID,
		Reason:     req.Reason,
		ApprovedBy: admin.FirstName,
	})
	if err != nil {
		log.Printf("Failed to record leave for %s on %s: %v", req.EmpID, req.Date, err)
		return "⚠️ Approval failed, the leave could not be recorded."
	}

	// The employee learns the decision only; the deduction figure stays
	// with the admins.
	h.reply(req.ChatID, fmt.Sprintf("✅ Your leave for %s was approved.", display))

	count, err := h.db.CountMonthlyLeaves(req.EmpID, req.Date[:7])
	if err != nil {
		// Without a reliable count the deduction math would be wrong, so
		// the leave stays in the ledger and the figures are left out.
		log.Printf("Failed to count leaves for %s: %v", req.EmpID, err)
		return fmt.Sprintf("✅ Approved by %s (monthly count unavailable).", admin.FirstName)
	}
	deduction := workflow.LeaveDeduction(count)

	emp, _, err := h.db.GetEmployee(req.EmpID)
	if err != nil {
		log.Printf("Employee lookup failed for %s: %v", req.EmpID, err)
	}

	if err := h.excel.AppendLeave(req.Date, emp, req.Reason, count, deduction); err != nil {
		log.Printf("Excel leave sink failed for %s: %v", req.EmpID, err)
	}
	if h.sheets.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := h.sheets.AppendLeave(ctx, req.Date, emp, req.Reason, count, deduction); err != nil {
			log.Printf("Sheets leave sink failed for %s: %v", req.EmpID, err)
		}
		cancel()
	}

	summary := fmt.Sprintf("✅ Approved by %s. Leave #%d this month", admin.FirstName, count)
	if deduction > 0 {
		summary += fmt.Sprintf(", deduction %d", deduction)
	}
	return summary + "."
}

func (h *BotHandler) answerCallback(id, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}
}

// finishPrompt rewrites the prompt message with the outcome and drops
// its keyboard so the buttons cannot fire twice from this chat.
func (h *BotHandler) finishPrompt(cb *tgbotapi.CallbackQuery, outcome string) {
	edited := tgbotapi.NewEditMessageText(
		cb.Message.Chat.ID, cb.Message.MessageID,
		cb.Message.Text+"\n\n"+outcome,
	)
	if _, err := h.bot.Send(edited); err != nil {
		log.Printf("Failed to finalize prompt in %d: %v", cb.Message.Chat.ID, err)
	}
}
