// Package apiresponses provides the shared response envelope and helpers
// used by the HTTP surface, keeping status/message formatting consistent
// across handlers without import cycles.
package apiresponses
