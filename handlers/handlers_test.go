package handlers

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workupdatebot/config"
	"workupdatebot/database"
	"workupdatebot/workflow"
)

const (
	ownerChat    = int64(10)
	hrChat       = int64(20)
	employeeChat = int64(1001)
)

type apiCall struct {
	method string
	values url.Values
}

// fakeTelegram satisfies tgbotapi.HTTPClient and records every API call
// so tests can assert on what the bot sent.
type fakeTelegram struct {
	mu    sync.Mutex
	calls []apiCall
}

func (f *fakeTelegram) Do(req *http.Request) (*http.Response, error) {
	method := path.Base(req.URL.Path)

	var values url.Values
	if req.Body != nil {
		if body, err := io.ReadAll(req.Body); err == nil {
			values, _ = url.ParseQuery(string(body))
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{method: method, values: values})
	f.mu.Unlock()

	result := `{"message_id":1}`
	switch method {
	case "getMe":
		result = `{"id":1,"is_bot":true,"first_name":"bot","username":"workupdatebot"}`
	case "answerCallbackQuery":
		result = `true`
	}
	body := fmt.Sprintf(`{"ok":true,"result":%s}`, result)
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}, nil
}

func (f *fakeTelegram) callsTo(method string, chatID int64) []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()

	want := strconv.FormatInt(chatID, 10)
	var matched []url.Values
	for _, call := range f.calls {
		if call.method == method && call.values.Get("chat_id") == want {
			matched = append(matched, call.values)
		}
	}
	return matched
}

// messagesTo returns the text of every sendMessage call to a chat.
func (f *fakeTelegram) messagesTo(chatID int64) []string {
	var texts []string
	for _, values := range f.callsTo("sendMessage", chatID) {
		texts = append(texts, values.Get("text"))
	}
	return texts
}

// promptsTo counts the messages to a chat that carry an inline keyboard.
func (f *fakeTelegram) promptsTo(chatID int64) int {
	n := 0
	for _, values := range f.callsTo("sendMessage", chatID) {
		if values.Get("reply_markup") != "" {
			n++
		}
	}
	return n
}

func containsText(texts []string, needle string) bool {
	for _, text := range texts {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

func newTestHandler(t *testing.T) (*BotHandler, *fakeTelegram) {
	t.Helper()

	api := &fakeTelegram{}
	bot, err := tgbotapi.NewBotAPIWithClient("42:token", tgbotapi.APIEndpoint, api)
	require.NoError(t, err)

	db, err := database.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		OwnerIDs:  []int64{ownerChat},
		HRChatID:  hrChat,
		ExcelFile: filepath.Join(t.TempDir(), "ledger.xlsx"),
		Timezone:  "UTC",
		Deadline:  "11:00",
	}
	return NewBotHandler(bot, db, cfg, nil), api
}

func addLinkedEmployee(t *testing.T, h *BotHandler) database.Employee {
	t.Helper()
	require.NoError(t, h.db.AddEmployee(database.Employee{ID: "EMP1", Name: "Asha", Dept: "ENG"}))
	require.NoError(t, h.db.SetTelegramID("EMP1", employeeChat))
	emp, _, err := h.db.GetEmployee("EMP1")
	require.NoError(t, err)
	return emp
}

func TestAllowSecondRequestAlertsAdmins(t *testing.T) {
	h, api := newTestHandler(t)
	emp := addLinkedEmployee(t, h)

	date := h.todayKey()
	require.NoError(t, h.db.RecordSubmission(database.Submission{Date: date, EmpID: emp.ID, Work: "w"}))

	from := &tgbotapi.User{ID: employeeChat, FirstName: "Asha"}
	h.handleAllow(employeeChat, employeeChat, from, "")

	assert.Equal(t, 1, api.promptsTo(ownerChat))
	used, err := h.db.AllowUsage(date, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, used, "the counter tracks requests, not approvals")

	// The second request, raised while the first prompt is still open,
	// never reaches the approval path.
	h.handleAllow(employeeChat, employeeChat, from, "")

	assert.Equal(t, 1, api.promptsTo(ownerChat), "no second approval prompt")
	assert.True(t, containsText(api.messagesTo(ownerChat), "Suspicious activity"))
	assert.True(t, containsText(api.messagesTo(hrChat), "Suspicious activity"))
	assert.True(t, containsText(api.messagesTo(employeeChat), "already used"))

	used, err = h.db.AllowUsage(date, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, used)
}

func TestAllowApprovalClearsLedgerEntry(t *testing.T) {
	h, api := newTestHandler(t)
	emp := addLinkedEmployee(t, h)

	date := h.todayKey()
	require.NoError(t, h.db.RecordSubmission(database.Submission{Date: date, EmpID: emp.ID, Work: "w"}))

	from := &tgbotapi.User{ID: employeeChat, FirstName: "Asha"}
	h.handleAllow(employeeChat, employeeChat, from, "")

	tok := workflow.Token{Action: workflow.AllowApprove, EmpID: emp.ID, ChatID: employeeChat}
	h.HandleCallback(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: ownerChat, FirstName: "Priya"},
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: ownerChat}, Text: "request"},
		Data:    tok.Encode(),
	}})

	has, err := h.db.HasSubmission(date, emp.ID)
	require.NoError(t, err)
	assert.False(t, has, "approval clears the ledger entry")

	used, err := h.db.AllowUsage(date, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, used, "approval must not bump the request counter again")

	assert.True(t, containsText(api.messagesTo(employeeChat), "approved"))
}

func TestLeaveApprovalRecordsAdminName(t *testing.T) {
	h, api := newTestHandler(t)
	addLinkedEmployee(t, h)

	date := h.todayKey()
	h.pending.PutLeave(workflow.LeaveRequest{
		EmpID:         "EMP1",
		Date:          date,
		Reason:        "errand",
		RequesterName: "Asha",
		ChatID:        employeeChat,
		CreatedAt:     h.now(),
	})

	tok := workflow.Token{Action: workflow.LeaveApprove, EmpID: "EMP1", Date: date, ChatID: employeeChat}
	h.HandleCallback(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb2",
		From:    &tgbotapi.User{ID: ownerChat, FirstName: "Priya"},
		Message: &tgbotapi.Message{MessageID: 9, Chat: &tgbotapi.Chat{ID: ownerChat}, Text: "leave request"},
		Data:    tok.Encode(),
	}})

	leaves, err := h.db.LeavesForDate(date)
	require.NoError(t, err)
	rec, ok := leaves["EMP1"]
	require.True(t, ok)
	assert.Equal(t, "Priya", rec.ApprovedBy)
	assert.Equal(t, "errand", rec.Reason)

	assert.True(t, containsText(api.messagesTo(employeeChat), "was approved"))

	// The resolved prompt carries the real monthly count
	edits := api.callsTo("editMessageText", ownerChat)
	require.Len(t, edits, 1)
	assert.Contains(t, edits[0].Get("text"), "Approved by Priya")
	assert.Contains(t, edits[0].Get("text"), "Leave #1")
}

func TestSubmissionCarriesUsername(t *testing.T) {
	h, _ := newTestHandler(t)
	require.NoError(t, h.db.AddEmployee(database.Employee{ID: "EMP1", Name: "Asha", Dept: "ENG"}))

	from := &tgbotapi.User{ID: employeeChat, FirstName: "Asha", UserName: "asha_dev"}
	h.handleSubmission(employeeChat, from, "EMP1 wrote the quarterly summary")

	sub, found, err := h.db.GetSubmission(h.todayKey(), "EMP1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "asha_dev", sub.Username)
	assert.Equal(t, "wrote the quarterly summary", sub.Work)
}
