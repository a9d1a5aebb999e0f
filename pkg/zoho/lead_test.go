package zoho

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/azalea-web/contact-service/pkg/config"
	"github.com/azalea-web/contact-service/pkg/contact"
)

func TestBuildLead(t *testing.T) {
	tests := []struct {
		name      string
		sub       contact.Submission
		wantFirst string
		wantLast  string
		wantDesc  string
	}{
		{
			name:      "single-token name fills both fields",
			sub:       contact.Submission{Name: "Jo", Email: "jo@x.com", Number: "12345678"},
			wantFirst: "Jo",
			wantLast:  "Jo",
			wantDesc:  defaultDescription,
		},
		{
			name:      "multi-token name splits into first and rest",
			sub:       contact.Submission{Name: "Jo Ann Smith", Email: "jo@x.com", Number: "12345678", Message: "please call"},
			wantFirst: "Jo",
			wantLast:  "Ann Smith",
			wantDesc:  "please call",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := buildLead(tt.sub)
			assert.Equal(t, tt.wantFirst, l.FirstName)
			assert.Equal(t, tt.wantLast, l.LastName)
			assert.Equal(t, tt.wantDesc, l.Description)
			assert.Equal(t, "Website", l.LeadSource)
			assert.Equal(t, "Not Contacted", l.LeadStatus)
			assert.Equal(t, tt.sub.Email, l.Email)
			assert.Equal(t, tt.sub.Number, l.Phone)
		})
	}
}

// crmFixture wires a Client against fake accounts and CRM servers. The CRM
// handler receives the post attempt number (1-based) and decoded payload.
func crmFixture(t *testing.T, crmHandler func(w http.ResponseWriter, r *http.Request, post int32)) (*Client, *int32, *int32) {
	t.Helper()
	var refreshes, posts int32

	accounts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshes, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok1", "expires_in": 3600})
	}))
	t.Cleanup(accounts.Close)

	crm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/crm/v3/Leads", r.URL.Path)
		crmHandler(w, r, atomic.AddInt32(&posts, 1))
	}))
	t.Cleanup(crm.Close)

	cfg := zohoConfig(accounts.URL)
	cfg.CRMAPIURL = crm.URL
	tokens := NewTokenSource(cfg, zap.NewNop().Sugar())
	return NewClient(cfg, tokens, zap.NewNop().Sugar()), &refreshes, &posts
}

func writeLeadCreated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write([]byte(`{"data":[{"code":"SUCCESS","details":{"id":"554023"}}]}`))
}

func TestSyncLeadSuccess(t *testing.T) {
	client, refreshes, posts := crmFixture(t, func(w http.ResponseWriter, r *http.Request, post int32) {
		assert.Equal(t, "Zoho-oauthtoken tok1", r.Header.Get("Authorization"))
		var envelope leadEnvelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&envelope))
		require.Len(t, envelope.Data, 1)
		assert.Equal(t, "jo@x.com", envelope.Data[0].Email)
		writeLeadCreated(w)
	})

	out := client.SyncLead(context.Background(), contact.Submission{Name: "Jo", Email: "jo@x.com", Number: "12345678"})
	assert.True(t, out.OK)
	assert.EqualValues(t, 1, atomic.LoadInt32(posts))
	assert.EqualValues(t, 1, atomic.LoadInt32(refreshes))
}

func TestSyncLeadUnauthorizedRefreshesAndRetries(t *testing.T) {
	client, refreshes, posts := crmFixture(t, func(w http.ResponseWriter, r *http.Request, post int32) {
		if post == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeLeadCreated(w)
	})

	out := client.SyncLead(context.Background(), contact.Submission{Name: "Jo", Email: "jo@x.com", Number: "12345678"})
	assert.True(t, out.OK)
	assert.EqualValues(t, 2, atomic.LoadInt32(posts), "exactly one retry after the refresh")
	assert.EqualValues(t, 2, atomic.LoadInt32(refreshes), "initial token plus one forced refresh")
}

func TestSyncLeadUnauthorizedTwiceGivesUp(t *testing.T) {
	client, _, posts := crmFixture(t, func(w http.ResponseWriter, r *http.Request, post int32) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	out := client.SyncLead(context.Background(), contact.Submission{Name: "Jo", Email: "jo@x.com", Number: "12345678"})
	assert.False(t, out.OK)
	assert.EqualValues(t, 2, atomic.LoadInt32(posts), "at most two post attempts in total")
}

func TestSyncLeadProviderErrorMessage(t *testing.T) {
	client, _, posts := crmFixture(t, func(w http.ResponseWriter, r *http.Request, post int32) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"data":[{"code":"MANDATORY_NOT_FOUND","message":"required field missing"}]}`))
	})

	out := client.SyncLead(context.Background(), contact.Submission{Name: "Jo", Email: "jo@x.com", Number: "12345678"})
	assert.False(t, out.OK)
	assert.Contains(t, out.Reason, "required field missing")
	assert.EqualValues(t, 1, atomic.LoadInt32(posts), "non-auth failures are not retried")
}

func TestSyncLeadWithoutCredentials(t *testing.T) {
	cfg := config.Zoho{AccountsURL: "http://127.0.0.1:1", CRMAPIURL: "http://127.0.0.1:1"}
	tokens := NewTokenSource(cfg, zap.NewNop().Sugar())
	client := NewClient(cfg, tokens, zap.NewNop().Sugar())

	out := client.SyncLead(context.Background(), contact.Submission{Name: "Jo", Email: "jo@x.com", Number: "12345678"})
	assert.False(t, out.OK)
	assert.Equal(t, "No access token", out.Reason)
}
