package audit

import (
	"encoding/json"
	"time"
)

// EventType represents the category of audit event
type EventType string

const (
	// Authentication events
	EventTypeAuthRegister       EventType = "auth.register"
	EventTypeAuthLogin          EventType = "auth.login"
	EventTypeAuthLoginFailed    EventType = "auth.login_failed"
	EventTypeAuthLogout         EventType = "auth.logout"
	EventTypeAuthPasswordChange EventType = "auth.password_change"

	// Account recovery events
	EventTypeRecoveryChallenge       EventType = "recovery.challenge"
	EventTypeRecoveryReset           EventType = "recovery.reset"
	EventTypeRecoveryAnswerIncorrect EventType = "recovery.answer_incorrect"

	// Authorization events
	EventTypeAuthzRoleGrant    EventType = "authz.role_grant"
	EventTypeAuthzRoleRevoke   EventType = "authz.role_revoke"
	EventTypeAuthzAccessDenied EventType = "authz.access_denied"

	// Workflow events
	EventTypePaperCreate       EventType = "paper.create"
	EventTypePaperUpdate       EventType = "paper.update"
	EventTypePaperWithdraw     EventType = "paper.withdraw"
	EventTypePaperDelete       EventType = "paper.delete"
	EventTypeAssignmentCreate  EventType = "assignment.create"
	EventTypeAssignmentAccept  EventType = "assignment.accept"
	EventTypeAssignmentDecline EventType = "assignment.decline"
	EventTypeReviewSubmit      EventType = "review.submit"
	EventTypeDecisionRecord    EventType = "decision.record"
	EventTypeConflictDeclare   EventType = "conflict.declare"

	// Admin events
	EventTypeAdminUserDeactivate EventType = "admin.user_deactivate"
)

// EventStatus represents the outcome of an event
type EventStatus string

const (
	EventStatusSuccess EventStatus = "success"
	EventStatusFailure EventStatus = "failure"
	EventStatusDenied  EventStatus = "denied"
)

// ResourceType represents the type of resource being acted on
type ResourceType string

const (
	ResourceTypeAccount    ResourceType = "account"
	ResourceTypeRole       ResourceType = "role"
	ResourceTypePaper      ResourceType = "paper"
	ResourceTypeAssignment ResourceType = "assignment"
	ResourceTypeReview     ResourceType = "review"
	ResourceTypeDecision   ResourceType = "decision"
	ResourceTypeConflict   ResourceType = "conflict"
)

// Event represents a single append-only audit log entry
type Event struct {
	ID        int64       `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	EventType EventType   `json:"event_type"`
	Status    EventStatus `json:"status"`

	// Actor information
	AccountID string `json:"account_id,omitempty"`
	Username  string `json:"username,omitempty"`

	// Resource information
	ResourceType ResourceType `json:"resource_type,omitempty"`
	ResourceID   string       `json:"resource_id,omitempty"`
	ConferenceID string       `json:"conference_id,omitempty"`

	// Request context
	RequestID string `json:"request_id,omitempty"`

	// Additional details
	Message  string                 `json:"message,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ToJSON converts the audit event to JSON
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON parses an audit event from JSON
func FromJSON(data []byte) (*Event, error) {
	var event Event
	err := json.Unmarshal(data, &event)
	return &event, err
}

// SearchFilter represents filters for searching audit logs
type SearchFilter struct {
	StartTime *time.Time
	EndTime   *time.Time

	AccountID  string
	EventTypes []EventType
	Status     *EventStatus

	ResourceType ResourceType
	ResourceID   string

	Limit  int
	Offset int
}

// RetentionPolicy defines how long audit logs are kept
type RetentionPolicy struct {
	Enabled       bool
	RetentionDays int
}

// DefaultRetentionPolicy returns the default retention policy (90 days)
func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{Enabled: true, RetentionDays: 90}
}
