// Package middleware provides the HTTP middleware stack: bearer-token
// authentication, request ids, structured request logging, and panic
// recovery.
package middleware
