package workflow

import (
	"time"

	"github.com/uth-confms/confms/pkg/errdefs"
)

// PaperStatus represents a paper's position in the review lifecycle.
type PaperStatus string

const (
	PaperSubmitted   PaperStatus = "submitted"
	PaperUnderReview PaperStatus = "under_review"
	PaperReviewed    PaperStatus = "reviewed"
	PaperAccepted    PaperStatus = "accepted"
	PaperRejected    PaperStatus = "rejected"
	PaperWithdrawn   PaperStatus = "withdrawn"
	PaperCameraReady PaperStatus = "camera_ready"
)

// paperTransitions is the full transition table. Statuses missing from
// the map accept no further transitions.
var paperTransitions = map[PaperStatus][]PaperStatus{
	PaperSubmitted:   {PaperUnderReview, PaperWithdrawn},
	PaperUnderReview: {PaperReviewed, PaperWithdrawn},
	PaperReviewed:    {PaperAccepted, PaperRejected, PaperWithdrawn},
	PaperAccepted:    {PaperCameraReady},
}

// CanTransition reports whether the status may move to next.
func (s PaperStatus) CanTransition(next PaperStatus) bool {
	for _, allowed := range paperTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the paper can no longer be updated or
// withdrawn.
func (s PaperStatus) Terminal() bool {
	return s == PaperAccepted || s == PaperRejected || s == PaperWithdrawn
}

// AssignmentStatus represents a review assignment's lifecycle position.
type AssignmentStatus string

const (
	AssignmentAssigned AssignmentStatus = "assigned"
	AssignmentAccepted AssignmentStatus = "accepted"
	AssignmentDeclined AssignmentStatus = "declined"
	AssignmentReviewed AssignmentStatus = "reviewed"
)

var assignmentTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentAssigned: {AssignmentAccepted, AssignmentDeclined, AssignmentReviewed},
	AssignmentAccepted: {AssignmentReviewed},
}

// CanTransition reports whether the status may move to next.
func (s AssignmentStatus) CanTransition(next AssignmentStatus) bool {
	for _, allowed := range assignmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// DecisionResult is a chair's verdict on a reviewed paper.
type DecisionResult string

const (
	DecisionAccepted DecisionResult = "accepted"
	DecisionRejected DecisionResult = "rejected"
)

// ParseDecisionResult validates a verdict string.
func ParseDecisionResult(s string) (DecisionResult, error) {
	r := DecisionResult(s)
	if r != DecisionAccepted && r != DecisionRejected {
		return "", errdefs.Validation("decision result must be %q or %q", DecisionAccepted, DecisionRejected)
	}
	return r, nil
}

// PaperStatusFor maps a decision result onto the paper status it sets.
func (r DecisionResult) PaperStatus() PaperStatus {
	if r == DecisionAccepted {
		return PaperAccepted
	}
	return PaperRejected
}

// Score bounds for reviews, inclusive.
const (
	MinScore = 0
	MaxScore = 10
)

// Paper is a submission to a conference.
type Paper struct {
	ID           string      `json:"id"`
	ConferenceID string      `json:"conference_id"`
	OwnerID      string      `json:"owner_id"`
	Title        string      `json:"title"`
	Abstract     string      `json:"abstract"`
	FileRef      string      `json:"file_ref,omitempty"`
	Status       PaperStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Assignment links a reviewer to a paper.
type Assignment struct {
	ID         string           `json:"id"`
	PaperID    string           `json:"paper_id"`
	ReviewerID string           `json:"reviewer_id"`
	Status     AssignmentStatus `json:"status"`
	Deadline   *time.Time       `json:"deadline,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// Review is a reviewer's verdict on an assignment. One review per
// assignment; re-submission updates in place.
type Review struct {
	ID                  string    `json:"id"`
	AssignmentID        string    `json:"assignment_id"`
	PaperID             string    `json:"paper_id"`
	ReviewerID          string    `json:"reviewer_id"`
	Score               int       `json:"score"`
	Comment             string    `json:"comment,omitempty"`
	ConfidentialComment string    `json:"confidential_comment,omitempty"`
	SubmittedAt         time.Time `json:"submitted_at"`
}

// Decision is a chair's terminal verdict on a paper.
type Decision struct {
	ID        string         `json:"id"`
	PaperID   string         `json:"paper_id"`
	ChairID   string         `json:"chair_id"`
	Result    DecisionResult `json:"result"`
	Comment   string         `json:"comment,omitempty"`
	DecidedAt time.Time      `json:"decided_at"`
}

// Conflict is a declared conflict of interest between a reviewer and a
// paper.
type Conflict struct {
	ID         string    `json:"id"`
	PaperID    string    `json:"paper_id"`
	ReviewerID string    `json:"reviewer_id"`
	DeclaredBy string    `json:"declared_by"`
	Reason     string    `json:"reason,omitempty"`
	DeclaredAt time.Time `json:"declared_at"`
}
