// Package recovery implements password reset through security
// questions: a stateless two-step protocol where the first step
// returns one stored question at random and the second step compares
// the normalized answer and sets the new password. Unknown identifiers
// and accounts without questions produce identical responses so the
// flow cannot be used to enumerate accounts.
package recovery
