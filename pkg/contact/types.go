package contact

import (
	"context"
	"time"
)

// Submission is one validated contact-form payload. It is immutable once
// constructed by Validate and is only ever read downstream.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Number  string `json:"number"`
	Message string `json:"message"`
}

// Record is a Submission as acknowledged by the durable store.
type Record struct {
	ID        string
	Submission
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SyncOutcome is the resolved result of a best-effort external call. CRM and
// mail dispatch always fold into one of these; they never surface as errors.
type SyncOutcome struct {
	OK     bool
	Reason string
}

func Success() SyncOutcome { return SyncOutcome{OK: true} }

func Failure(reason string) SyncOutcome {
	if reason == "" {
		reason = "unknown error"
	}
	return SyncOutcome{Reason: reason}
}

// Store persists submissions. Implementations are expected to establish and
// cache their connection on first use.
type Store interface {
	Save(ctx context.Context, sub Submission) (Record, error)
}

// LeadSyncer pushes a submission into the CRM lead pipeline.
type LeadSyncer interface {
	SyncLead(ctx context.Context, sub Submission) SyncOutcome
}

// Notifier dispatches the acknowledgment and alert emails for a submission.
type Notifier interface {
	Notify(ctx context.Context, sub Submission) SyncOutcome
}

// Email dispatch status as reported to the caller.
const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

// CRM sync status as reported to the caller. Pending means the sync was still
// running when the response was assembled and its deadline had not elapsed.
const (
	CRMStatusSuccess = "success"
	CRMStatusFailed  = "failed"
	CRMStatusTimeout = "timeout"
	CRMStatusPending = "pending"
)
