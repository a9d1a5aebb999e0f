// Package store persists contact submissions in MongoDB behind a
// process-wide cached connection: establishment is single-flighted and
// retried with linear backoff, then reused for the process lifetime.
package store
