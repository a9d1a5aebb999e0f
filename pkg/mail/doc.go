// Package mail sends the submission emails through the SMTP relay: a gomail
// sender with per-message retry, embedded HTML templates, and a notifier
// that dispatches the acknowledgment and operator alert concurrently.
package mail
