package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SubmissionsAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "contact_submissions_accepted_total",
		Help: "Total number of contact submissions durably persisted and accepted",
	})
	SubmissionsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contact_submissions_rejected_total",
		Help: "Total number of contact submissions rejected by validation",
	}, []string{"field"})
	PersistenceFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "contact_persistence_failures_total",
		Help: "Total number of submissions lost to store connectivity or write failures",
	})
	CRMSyncResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contact_crm_sync_results_total",
		Help: "CRM sync results as surfaced in responses (success/failed/timeout/pending)",
	}, []string{"status"})
	MailSendSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contact_mail_send_success_total",
		Help: "Total number of emails sent successfully",
	}, []string{"host"})
	MailSendFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contact_mail_send_failure_total",
		Help: "Total number of emails that failed after exhausting retries",
	}, []string{"host"})
	RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "contact_rate_limited_total",
		Help: "Total number of requests rejected by the per-IP rate limiter",
	})
)

func init() {
	prometheus.MustRegister(
		SubmissionsAccepted,
		SubmissionsRejected,
		PersistenceFailures,
		CRMSyncResults,
		MailSendSuccess,
		MailSendFailure,
		RateLimited,
	)
}

// Handler returns the HTTP handler serving the prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
