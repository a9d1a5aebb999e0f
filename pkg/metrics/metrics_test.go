package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(SubmissionsAccepted)
	SubmissionsAccepted.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(SubmissionsAccepted))

	beforeCRM := testutil.ToFloat64(CRMSyncResults.WithLabelValues("success"))
	CRMSyncResults.WithLabelValues("success").Inc()
	assert.Equal(t, beforeCRM+1, testutil.ToFloat64(CRMSyncResults.WithLabelValues("success")))
}

func TestHandlerServesExposition(t *testing.T) {
	SubmissionsAccepted.Inc()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "contact_submissions_accepted_total")
}
