// Package zoho integrates with the Zoho CRM lead pipeline: a process-wide
// lazily refreshed OAuth token cache and a best-effort lead client with a
// single refresh-and-retry on unauthorized responses.
package zoho
