package workflow

import (
	"sync"
	"time"
)

// ResubmitRequest asks admins to clear today's ledger entry so the
// employee can submit again.
type ResubmitRequest struct {
	EmpID         string
	Date          string // ledger key the entry to clear lives under
	RequesterID   int64
	RequesterName string
	ChatID        int64 // originating chat, for the courtesy notice
	CreatedAt     time.Time
}

// EditRequest proposes replacement text for an employee's update. The
// approval is advisory: historical records are not rewritten.
type EditRequest struct {
	EmpID         string
	NewText       string
	RequesterName string
	ChatID        int64
	CreatedAt     time.Time
}

// LeaveRequest proposes a leave day awaiting admin approval.
type LeaveRequest struct {
	EmpID         string
	Date          string // 2006-01-02
	Reason        string
	RequesterName string
	ChatID        int64
	CreatedAt     time.Time
}

// PendingStore holds in-flight approval requests. It lives in process
// memory only; losing it on restart is acceptable since a request can
// simply be re-issued. A non-zero ttl drops requests that have waited
// too long — by default they wait forever, matching the reference
// behavior.
type PendingStore struct {
	mu  sync.Mutex
	ttl time.Duration

	resubmits map[string]ResubmitRequest
	edits     map[string]EditRequest
	leaves    map[string]LeaveRequest
}

func NewPendingStore(ttl time.Duration) *PendingStore {
	return &PendingStore{
		ttl:       ttl,
		resubmits: make(map[string]ResubmitRequest),
		edits:     make(map[string]EditRequest),
		leaves:    make(map[string]LeaveRequest),
	}
}

func (s *PendingStore) expired(createdAt, now time.Time) bool {
	return s.ttl > 0 && now.Sub(createdAt) > s.ttl
}

func (s *PendingStore) PutResubmit(req ResubmitRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resubmits[req.EmpID] = req
}

// TakeResubmit removes and returns the pending re-submission request for
// an employee. Returns false if there is none or it has expired.
func (s *PendingStore) TakeResubmit(empID string, now time.Time) (ResubmitRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.resubmits[empID]
	if !ok {
		return ResubmitRequest{}, false
	}
	delete(s.resubmits, empID)
	if s.expired(req.CreatedAt, now) {
		return ResubmitRequest{}, false
	}
	return req, true
}

// PutEdit stores a pending edit, overwriting any earlier proposal for the
// same employee: last proposal wins.
func (s *PendingStore) PutEdit(req EditRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits[req.EmpID] = req
}

func (s *PendingStore) TakeEdit(empID string, now time.Time) (EditRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.edits[empID]
	if !ok {
		return EditRequest{}, false
	}
	delete(s.edits, empID)
	if s.expired(req.CreatedAt, now) {
		return EditRequest{}, false
	}
	return req, true
}

func leaveKey(empID, date string) string {
	return empID + ":" + date
}

// PutLeave stores a pending leave request, overwriting any existing
// request for the same (employee, date) pair.
func (s *PendingStore) PutLeave(req LeaveRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaves[leaveKey(req.EmpID, req.Date)] = req
}

func (s *PendingStore) TakeLeave(empID, date string, now time.Time) (LeaveRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := leaveKey(empID, date)
	req, ok := s.leaves[key]
	if !ok {
		return LeaveRequest{}, false
	}
	delete(s.leaves, key)
	if s.expired(req.CreatedAt, now) {
		return LeaveRequest{}, false
	}
	return req, true
}
