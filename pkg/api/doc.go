// Package api exposes the conference management services over HTTP.
//
// Routing uses gorilla/mux with two route groups under /api/v1: public
// endpoints (registration, login, account recovery) and token-protected
// endpoints for everything else. Authorization decisions live in the
// service layer; handlers only translate between HTTP and service
// requests and map error kinds to status codes via httputil.
package api
