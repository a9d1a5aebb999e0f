package zoho

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/azalea-web/contact-service/pkg/config"
)

// ErrNoToken signals that no access token could be obtained. Callers must
// treat it as a recoverable condition: CRM sync is best-effort and degrades
// to a failure outcome, never to a crash.
var ErrNoToken = errors.New("zoho: no access token available")

// The issuer-reported lifetime is trimmed by this margin so a token is
// replaced before it can expire mid-call.
const expirySafetyMargin = 60 * time.Second

const httpTimeout = 10 * time.Second

type cachedToken struct {
	access    string
	expiresAt time.Time
}

// TokenSource is the process-wide OAuth credential cache. Refresh is always
// lazy, triggered by the next access past expiry. The cached {token, expiry}
// pair is replaced atomically; concurrent refreshes past expiry are allowed
// (token issuance is idempotent) so no single-flight is needed here.
type TokenSource struct {
	cfg  config.Zoho
	http *resty.Client
	log  *zap.SugaredLogger
	now  func() time.Time

	token atomic.Pointer[cachedToken]
}

func NewTokenSource(cfg config.Zoho, log *zap.SugaredLogger) *TokenSource {
	return &TokenSource{
		cfg:  cfg,
		http: resty.New().SetBaseURL(cfg.AccountsURL).SetTimeout(httpTimeout),
		log:  log.Named("zoho-token"),
		now:  time.Now,
	}
}

// Token returns the cached access token, refreshing it when absent or past
// its conservative expiry.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	if tok := ts.token.Load(); tok != nil && ts.now().Before(tok.expiresAt) {
		return tok.access, nil
	}
	return ts.Refresh(ctx)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error"`
}

// Refresh unconditionally exchanges the long-lived refresh credential for a
// new access token and replaces the cached pair. Failures map to ErrNoToken.
func (ts *TokenSource) Refresh(ctx context.Context) (string, error) {
	if !ts.cfg.Enabled() {
		ts.log.Warnw("Zoho CRM credentials not configured, skipping token refresh")
		return "", ErrNoToken
	}

	var body tokenResponse
	resp, err := ts.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"client_id":     ts.cfg.ClientID,
			"client_secret": ts.cfg.ClientSecret,
			"refresh_token": ts.cfg.RefreshToken,
		}).
		SetResult(&body).
		Post("/oauth/v2/token")
	if err != nil {
		ts.log.Errorw("Zoho token refresh request failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrNoToken, err)
	}
	if !resp.IsSuccess() {
		ts.log.Errorw("Zoho token refresh rejected", "status", resp.StatusCode(), "body", resp.String())
		return "", fmt.Errorf("%w: token endpoint returned %s", ErrNoToken, resp.Status())
	}
	// Zoho reports some grant failures as 200 with an error field.
	if body.Error != "" {
		ts.log.Errorw("Zoho token refresh rejected", "error", body.Error)
		return "", fmt.Errorf("%w: %s", ErrNoToken, body.Error)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token in response", ErrNoToken)
	}

	expiresAt := ts.now().Add(time.Duration(body.ExpiresIn)*time.Second - expirySafetyMargin)
	ts.token.Store(&cachedToken{access: body.AccessToken, expiresAt: expiresAt})
	ts.log.Infow("Zoho access token refreshed", "validUntil", expiresAt.UTC())
	return body.AccessToken, nil
}
