// Package workflow implements the paper lifecycle: submission, reviewer
// assignment, review collection, and the chair's final decision.
//
// Papers move through a fixed state machine (submitted, under_review,
// reviewed, accepted/rejected/withdrawn, camera_ready) and every
// transition is guarded both in the service layer (who may trigger it)
// and in the store (optimistic status checks so concurrent writers
// cannot skip states). Assignment creation, review submission, and
// decision recording each bundle their cascading paper-status updates
// into a single database transaction.
package workflow
