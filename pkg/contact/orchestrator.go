package contact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/azalea-web/contact-service/pkg/metrics"
)

// ErrPersistence marks a fatal durability failure. A submission is never
// reported as accepted without an acknowledged store write, so this error
// aborts the request with a generic server error.
var ErrPersistence = errors.New("persistence failure")

const (
	defaultCRMTimeout  = 5 * time.Second
	defaultMailTimeout = 8 * time.Second
)

// Orchestrator coordinates one submission end to end: validate, persist,
// then fan out to CRM sync and mail dispatch concurrently, each racing its
// own deadline. Persistence strictly precedes dispatch; CRM and mail have no
// ordering relationship with each other.
type Orchestrator struct {
	store    Store
	crm      LeadSyncer
	notifier Notifier
	log      *zap.SugaredLogger

	crmTimeout  time.Duration
	mailTimeout time.Duration
	now         func() time.Time
}

func NewOrchestrator(store Store, crm LeadSyncer, notifier Notifier, log *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{
		store:       store,
		crm:         crm,
		notifier:    notifier,
		log:         log.Named("orchestrator"),
		crmTimeout:  defaultCRMTimeout,
		mailTimeout: defaultMailTimeout,
		now:         time.Now,
	}
}

// Result is the assembled outcome of an accepted submission. Partial external
// failures are reported through the status fields, never as errors.
type Result struct {
	Record      Record
	EmailStatus string
	CRMStatus   string
	CRMError    string
}

// Handle runs the submission pipeline. It returns a *ValidationError for
// rejected input, an error wrapping ErrPersistence when the store write
// fails, and otherwise a Result: once the write is acknowledged the
// submission is accepted regardless of CRM/mail outcomes.
func (o *Orchestrator) Handle(ctx context.Context, name, email, number, message string) (Result, error) {
	reqLog := o.log.With("requestID", uuid.NewString())

	sub, err := Validate(name, email, number, message)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			metrics.SubmissionsRejected.WithLabelValues(verr.Field).Inc()
			reqLog.Infow("Submission rejected", "stage", "validate", "field", verr.Field, "reason", verr.Message)
		}
		return Result{}, err
	}
	reqLog = reqLog.With("email", sub.Email)

	record, err := o.store.Save(ctx, sub)
	if err != nil {
		metrics.PersistenceFailures.Inc()
		reqLog.Errorw("Submission persistence failed", "stage", "persist", "error", err)
		return Result{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	reqLog.Infow("Submission persisted", "stage", "persist", "recordID", record.ID)

	// Dispatch must not be cut short when the caller's request context ends:
	// a deadline elapsing stops the orchestrator from waiting, not the call.
	bgCtx := context.WithoutCancel(ctx)

	crmStarted := o.now()
	crmCh := make(chan SyncOutcome, 1)
	go func() {
		out := o.crm.SyncLead(bgCtx, sub)
		crmCh <- out
		if out.OK {
			reqLog.Infow("CRM sync finished", "stage", "crm", "outcome", "success")
		} else {
			reqLog.Warnw("CRM sync finished", "stage", "crm", "outcome", "failure", "reason", out.Reason)
		}
	}()

	mailCh := make(chan SyncOutcome, 1)
	go func() {
		out := o.notifier.Notify(bgCtx, sub)
		mailCh <- out
		if out.OK {
			reqLog.Infow("Mail dispatch finished", "stage", "mail", "outcome", "success")
		} else {
			reqLog.Warnw("Mail dispatch finished", "stage", "mail", "outcome", "failure", "reason", out.Reason)
		}
	}()

	res := Result{Record: record}

	// The response blocks only on the mail race; its deadline bounds the
	// total added latency.
	mailTimer := time.NewTimer(o.mailTimeout)
	defer mailTimer.Stop()
	select {
	case out := <-mailCh:
		if out.OK {
			res.EmailStatus = EmailStatusSent
		} else {
			res.EmailStatus = EmailStatusFailed
		}
	case <-mailTimer.C:
		res.EmailStatus = EmailStatusFailed
		reqLog.Warnw("Mail dispatch deadline elapsed, no longer waiting", "stage", "mail", "timeout", o.mailTimeout)
	}

	// The CRM slot is read without blocking: the race only decides whether
	// its value made it into this response.
	select {
	case out := <-crmCh:
		if out.OK {
			res.CRMStatus = CRMStatusSuccess
		} else {
			res.CRMStatus = CRMStatusFailed
			res.CRMError = out.Reason
		}
	default:
		if o.now().Sub(crmStarted) >= o.crmTimeout {
			res.CRMStatus = CRMStatusTimeout
			reqLog.Warnw("CRM sync deadline elapsed, still processing in background", "stage", "crm", "timeout", o.crmTimeout)
		} else {
			res.CRMStatus = CRMStatusPending
		}
	}

	metrics.SubmissionsAccepted.Inc()
	metrics.CRMSyncResults.WithLabelValues(res.CRMStatus).Inc()
	reqLog.Infow("Submission completed", "stage", "completed",
		"emailStatus", res.EmailStatus, "zohoCrmStatus", res.CRMStatus)
	return res, nil
}
