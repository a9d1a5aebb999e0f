package mail

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/azalea-web/contact-service/pkg/contact"
)

const (
	acknowledgmentSubject = "Thank You For Contacting Azalea"
	alertSubject          = "New Contact Form Submission - Azalea"
)

// Notifier dispatches the two submission emails: an acknowledgment to the
// submitter and an alert to the operator mailbox. The sends run concurrently
// and each carries its own retry budget; the aggregate outcome is Success
// only when both ultimately succeed.
type Notifier struct {
	sender          Sender
	operatorAddress string
	log             *zap.SugaredLogger
}

func NewNotifier(sender Sender, operatorAddress string, log *zap.SugaredLogger) *Notifier {
	return &Notifier{
		sender:          sender,
		operatorAddress: operatorAddress,
		log:             log.Named("notifier"),
	}
}

func (n *Notifier) Notify(ctx context.Context, sub contact.Submission) contact.SyncOutcome {
	year := time.Now().Year()

	ackBody, err := RenderAcknowledgment(AcknowledgmentParams{Name: sub.Name, Year: year})
	if err != nil {
		return contact.Failure("rendering acknowledgment template: " + err.Error())
	}
	alertBody, err := RenderAlert(AlertParams{
		Name:    sub.Name,
		Email:   sub.Email,
		Number:  sub.Number,
		Message: sub.Message,
		Year:    year,
	})
	if err != nil {
		return contact.Failure("rendering alert template: " + err.Error())
	}

	// Plain group on purpose: one send failing must not cancel the other's
	// retry budget.
	var g errgroup.Group
	g.Go(func() error {
		return n.sender.Send(ctx, sub.Email, acknowledgmentSubject, ackBody)
	})
	g.Go(func() error {
		return n.sender.Send(ctx, n.operatorAddress, alertSubject, alertBody)
	})

	if err := g.Wait(); err != nil {
		return contact.Failure(err.Error())
	}
	return contact.Success()
}
