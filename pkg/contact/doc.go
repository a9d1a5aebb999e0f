// Package contact holds the submission domain: input validation, the
// orchestrator that persists and fans out to CRM and mail under per-race
// deadlines, and the HTTP controller for the contact endpoint.
package contact
