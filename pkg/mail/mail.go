package mail

import (
	"context"
	"crypto/tls"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/azalea-web/contact-service/pkg/config"
	"github.com/azalea-web/contact-service/pkg/metrics"
	"github.com/azalea-web/contact-service/pkg/retry"
)

const (
	sendAttempts = 3
	sendBackoff  = time.Second
)

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
	Verify() error
	Host() string
}

type sender struct {
	dialer        *gomail.Dialer
	senderAddress string
	senderName    string
	log           *zap.SugaredLogger
}

func NewSender(cfg config.Mail, log *zap.SugaredLogger) Sender {
	log = log.Named("mail")
	log.Infow("Initializing mail sender", "host", cfg.Host, "port", cfg.Port, "user", cfg.User)
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	if cfg.InsecureSkipVerify {
		log.Warnw("InsecureSkipVerify is enabled for mail TLS connection")
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	senderName := cfg.SenderName
	if senderName == "" {
		senderName = "Azalea"
	}

	return &sender{
		dialer:        d,
		senderAddress: cfg.SenderAddress,
		senderName:    senderName,
		log:           log,
	}
}

// Send delivers one message, retrying up to 3 attempts with linear backoff
// (1s, 2s) before the message is considered failed.
func (s *sender) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", s.senderAddress, s.senderName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	err := retry.Do(ctx, retry.Config{
		Attempts: sendAttempts,
		Delay:    sendBackoff,
		OnRetry: func(attempt int, err error) {
			s.log.Warnw("Mail send attempt failed, retrying",
				"to", to, "subject", subject, "attempt", attempt, "error", err)
		},
	}, func(ctx context.Context) error {
		return s.dialer.DialAndSend(msg)
	})
	if err != nil {
		s.log.Errorw("Failed to send mail after retries",
			"to", to, "subject", subject, "attempts", sendAttempts, "error", err)
		metrics.MailSendFailure.WithLabelValues(s.Host()).Inc()
		return err
	}

	s.log.Infow("Mail sent", "to", to, "subject", subject)
	metrics.MailSendSuccess.WithLabelValues(s.Host()).Inc()
	return nil
}

// Verify dials the relay once to check reachability. It is called eagerly at
// startup for diagnostics and does not gate request handling.
func (s *sender) Verify() error {
	closer, err := s.dialer.Dial()
	if err != nil {
		return err
	}
	return closer.Close()
}

func (s *sender) Host() string {
	return s.dialer.Host
}
