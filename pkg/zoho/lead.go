package zoho

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/azalea-web/contact-service/pkg/config"
	"github.com/azalea-web/contact-service/pkg/contact"
	"github.com/azalea-web/contact-service/pkg/retry"
)

var errUnauthorized = errors.New("zoho: unauthorized")

const (
	leadSource         = "Website"
	leadStatus         = "Not Contacted"
	defaultDescription = "Contact form submission from Azalea website"
)

// Client pushes submissions into the Zoho CRM lead pipeline. It is advisory:
// any failure resolves to a SyncOutcome and never fails the submission.
type Client struct {
	tokens *TokenSource
	http   *resty.Client
	log    *zap.SugaredLogger
}

func NewClient(cfg config.Zoho, tokens *TokenSource, log *zap.SugaredLogger) *Client {
	return &Client{
		tokens: tokens,
		http:   resty.New().SetBaseURL(cfg.CRMAPIURL).SetTimeout(httpTimeout),
		log:    log.Named("zoho-crm"),
	}
}

type lead struct {
	FirstName   string `json:"First_Name"`
	LastName    string `json:"Last_Name"`
	Email       string `json:"Email"`
	Phone       string `json:"Phone"`
	Description string `json:"Description"`
	LeadSource  string `json:"Lead_Source"`
	LeadStatus  string `json:"Lead_Status"`
}

type leadEnvelope struct {
	Data []lead `json:"data"`
}

type leadResult struct {
	Data []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			ID string `json:"id"`
		} `json:"details"`
	} `json:"data"`
	Message string `json:"message"`
}

// buildLead maps a submission onto the external lead schema. Multi-token
// names split into first + rest; single-token names fill both fields.
func buildLead(sub contact.Submission) lead {
	first, last := sub.Name, sub.Name
	if parts := strings.Fields(sub.Name); len(parts) > 1 {
		first = parts[0]
		last = strings.Join(parts[1:], " ")
	}

	description := sub.Message
	if description == "" {
		description = defaultDescription
	}

	return lead{
		FirstName:   first,
		LastName:    last,
		Email:       sub.Email,
		Phone:       sub.Number,
		Description: description,
		LeadSource:  leadSource,
		LeadStatus:  leadStatus,
	}
}

// SyncLead posts the submission as a lead using the cached token. An
// unauthorized response triggers exactly one unconditional token refresh and
// one retry of the same post; every other failure gives up immediately.
func (c *Client) SyncLead(ctx context.Context, sub contact.Submission) contact.SyncOutcome {
	payload := leadEnvelope{Data: []lead{buildLead(sub)}}

	attempt := 0
	var created leadResult
	err := retry.Do(ctx, retry.Config{
		Attempts:  2,
		Retryable: func(err error) bool { return errors.Is(err, errUnauthorized) },
		OnRetry: func(attempt int, err error) {
			c.log.Infow("CRM returned unauthorized, refreshing token and retrying",
				"email", sub.Email, "attempt", attempt)
		},
	}, func(ctx context.Context) error {
		attempt++
		var token string
		var err error
		if attempt == 1 {
			token, err = c.tokens.Token(ctx)
		} else {
			token, err = c.tokens.Refresh(ctx)
		}
		if err != nil {
			return err
		}
		created = leadResult{}
		return c.postLead(ctx, token, payload, &created)
	})
	if err != nil {
		reason := err.Error()
		if errors.Is(err, ErrNoToken) {
			reason = "No access token"
		}
		c.log.Warnw("Failed to create lead in Zoho CRM",
			"email", sub.Email, "attempts", attempt, "error", err)
		return contact.Failure(reason)
	}

	leadID := ""
	if len(created.Data) > 0 {
		leadID = created.Data[0].Details.ID
	}
	c.log.Infow("Lead created in Zoho CRM", "email", sub.Email, "leadID", leadID, "attempts", attempt)
	return contact.Success()
}

func (c *Client) postLead(ctx context.Context, token string, payload leadEnvelope, out *leadResult) error {
	var failure leadResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Zoho-oauthtoken "+token).
		SetBody(payload).
		SetResult(out).
		SetError(&failure).
		Post("/crm/v3/Leads")
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", errUnauthorized, resp.Status())
	}
	if !resp.IsSuccess() {
		msg := failure.Message
		if msg == "" && len(failure.Data) > 0 {
			msg = failure.Data[0].Message
		}
		if msg == "" {
			msg = fmt.Sprintf("lead creation returned %s", resp.Status())
		}
		return errors.New(msg)
	}
	return nil
}
