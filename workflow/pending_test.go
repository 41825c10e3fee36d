package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingStoreTakeRemoves(t *testing.T) {
	store := NewPendingStore(0)
	now := time.Now()

	store.PutResubmit(ResubmitRequest{EmpID: "EMP1", Date: "2026-08-28", CreatedAt: now})

	req, ok := store.TakeResubmit("EMP1", now)
	require.True(t, ok)
	assert.Equal(t, "2026-08-28", req.Date)

	_, ok = store.TakeResubmit("EMP1", now)
	assert.False(t, ok, "a taken request must not be resolvable twice")
}

func TestPendingStoreLastProposalWins(t *testing.T) {
	store := NewPendingStore(0)
	now := time.Now()

	store.PutEdit(EditRequest{EmpID: "EMP1", NewText: "first", CreatedAt: now})
	store.PutEdit(EditRequest{EmpID: "EMP1", NewText: "second", CreatedAt: now})

	req, ok := store.TakeEdit("EMP1", now)
	require.True(t, ok)
	assert.Equal(t, "second", req.NewText)
}

func TestPendingStoreTTL(t *testing.T) {
	store := NewPendingStore(time.Hour)
	created := time.Now()

	store.PutLeave(LeaveRequest{EmpID: "EMP1", Date: "2026-08-28", CreatedAt: created})

	_, ok := store.TakeLeave("EMP1", "2026-08-28", created.Add(2*time.Hour))
	assert.False(t, ok, "expired request must not resolve")

	store.PutLeave(LeaveRequest{EmpID: "EMP1", Date: "2026-08-28", CreatedAt: created})
	_, ok = store.TakeLeave("EMP1", "2026-08-28", created.Add(30*time.Minute))
	assert.True(t, ok)
}

func TestPendingStoreZeroTTLNeverExpires(t *testing.T) {
	store := NewPendingStore(0)
	created := time.Now()

	store.PutResubmit(ResubmitRequest{EmpID: "EMP1", Date: "2026-08-28", CreatedAt: created})

	_, ok := store.TakeResubmit("EMP1", created.Add(1000*time.Hour))
	assert.True(t, ok)
}

func TestPendingStoreLeaveKeyedByDate(t *testing.T) {
	store := NewPendingStore(0)
	now := time.Now()

	store.PutLeave(LeaveRequest{EmpID: "EMP1", Date: "2026-08-28", Reason: "errand", CreatedAt: now})
	store.PutLeave(LeaveRequest{EmpID: "EMP1", Date: "2026-08-29", Reason: "travel", CreatedAt: now})

	req, ok := store.TakeLeave("EMP1", "2026-08-29", now)
	require.True(t, ok)
	assert.Equal(t, "travel", req.Reason)

	req, ok = store.TakeLeave("EMP1", "2026-08-28", now)
	require.True(t, ok)
	assert.Equal(t, "errand", req.Reason)
}
