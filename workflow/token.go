package workflow

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Action identifies what an approval button does. The set is closed:
// decoding anything outside it is an error.
type Action string

const (
	AllowApprove Action = "allow_approve"
	AllowReject  Action = "allow_reject"
	EditApprove  Action = "edit_approve"
	EditReject   Action = "edit_reject"
	LeaveApprove Action = "leave_approve"
	LeaveReject  Action = "leave_reject"
)

func (a Action) valid() bool {
	switch a {
	case AllowApprove, AllowReject, EditApprove, EditReject, LeaveApprove, LeaveReject:
		return true
	}
	return false
}

// IsApprove reports whether the action is the approving half of its pair.
func (a Action) IsApprove() bool {
	return a == AllowApprove || a == EditApprove || a == LeaveApprove
}

// Token is the payload carried inside an inline-keyboard callback. Date
// is only set for leave actions.
type Token struct {
	Action Action
	EmpID  string
	Date   string // 2006-01-02, leave actions only
	ChatID int64  // originating chat for the courtesy notice
}

// Encode renders the token as callback data. Telegram limits callback
// data to 64 bytes, which colon-joined fields stay well under.
func (t Token) Encode() string {
	if t.Action == LeaveApprove || t.Action == LeaveReject {
		return fmt.Sprintf("%s:%s:%s:%d", t.Action, t.EmpID, t.Date, t.ChatID)
	}
	return fmt.Sprintf("%s:%s:%d", t.Action, t.EmpID, t.ChatID)
}

// DecodeToken parses callback data back into a Token, rejecting anything
// malformed rather than guessing from field counts.
func DecodeToken(data string) (Token, error) {
	parts := strings.Split(data, ":")
	if len(parts) < 3 {
		return Token{}, fmt.Errorf("malformed callback data %q", data)
	}

	action := Action(parts[0])
	if !action.valid() {
		return Token{}, fmt.Errorf("unknown callback action %q", parts[0])
	}

	isLeave := action == LeaveApprove || action == LeaveReject
	if isLeave && len(parts) != 4 || !isLeave && len(parts) != 3 {
		return Token{}, fmt.Errorf("malformed %s callback %q", action, data)
	}

	tok := Token{Action: action, EmpID: parts[1]}
	chatField := parts[2]
	if isLeave {
		if _, err := time.Parse("2006-01-02", parts[2]); err != nil {
			return Token{}, fmt.Errorf("callback %q has invalid date: %v", data, err)
		}
		tok.Date = parts[2]
		chatField = parts[3]
	}

	if tok.EmpID == "" {
		return Token{}, fmt.Errorf("callback %q missing employee id", data)
	}

	chatID, err := strconv.ParseInt(chatField, 10, 64)
	if err != nil {
		return Token{}, fmt.Errorf("callback %q has invalid chat id: %v", data, err)
	}
	tok.ChatID = chatID
	return tok, nil
}
