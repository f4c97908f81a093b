// Package auth implements the password and token engine: adaptive salted
// password hashing (bcrypt) and signed, expiring session tokens (HS256 JWT).
//
// Both halves are pure CPU: hashing is bounded by the configured cost factor
// and token validation never performs I/O. Storage-backed concerns (accounts,
// roles) live in their own packages.
package auth
