// Package api implements the HTTP server (gin-based) for the contact
// service: request logging and recovery middleware, permissive CORS for the
// public form, controller registration, and the operational endpoints.
package api
