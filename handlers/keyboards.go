package handlers

import (
	"workupdatebot/workflow"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func rejectActionFor(approve workflow.Action) workflow.Action {
	switch approve {
	case workflow.AllowApprove:
		return workflow.AllowReject
	case workflow.EditApprove:
		return workflow.EditReject
	case workflow.LeaveApprove:
		return workflow.LeaveReject
	}
	return approve
}

// ApprovalKeyboard builds the two-button prompt for an approval token.
// The token carries the approve action; the reject button swaps it for
// the matching reject action.
func ApprovalKeyboard(tok workflow.Token) tgbotapi.InlineKeyboardMarkup {
	reject := tok
	reject.Action = rejectActionFor(tok.Action)

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", tok.Encode()),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", reject.Encode()),
		),
	)
}
