// Package audit records security-relevant events: authentication
// attempts, role changes, authorization denials, and every mutation of
// papers, assignments, reviews, and decisions.
//
// Events carry the acting account, the affected resource, and the
// request they belong to. Backends include a PostgreSQL logger with
// search and retention cleanup, an append-only JSONL file logger, and
// a fan-out MultiLogger.
package audit
