// Package httputil holds the shared request/response plumbing for the
// HTTP API: JSON encoding helpers, path/query parameter parsing, and
// the mapping from service error kinds to HTTP status codes.
package httputil
