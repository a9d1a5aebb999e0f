// Package metrics defines the prometheus counters for the submission
// pipeline (accept/reject, persistence, mail, CRM sync) and exposes the
// scrape handler.
package metrics
