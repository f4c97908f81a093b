package audit

import (
	"context"
	"time"

	"github.com/uth-confms/confms/pkg/observability"
)

// Logger is the interface for audit logging. Implementations must treat the
// log as append-only.
type Logger interface {
	// Log records an audit event
	Log(ctx context.Context, event *Event) error

	// Close closes the logger and flushes any buffered entries
	Close() error
}

// NopLogger is a logger that discards every event. Used when no audit sink
// is configured and as a test stand-in.
type NopLogger struct{}

func (NopLogger) Log(ctx context.Context, event *Event) error { return nil }
func (NopLogger) Close() error                                { return nil }

// newEvent creates an event with common fields populated from the context.
func newEvent(ctx context.Context, eventType EventType, status EventStatus) *Event {
	return &Event{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Status:    status,
		AccountID: observability.GetAccountID(ctx),
		RequestID: observability.GetRequestID(ctx),
	}
}

// Authentication builds an authentication event for the given actor. The
// account id overrides whatever the context carries, since login events are
// recorded before the middleware has authenticated anything.
func Authentication(ctx context.Context, eventType EventType, status EventStatus, accountID, username, message string) *Event {
	e := newEvent(ctx, eventType, status)
	e.AccountID = accountID
	e.Username = username
	e.ResourceType = ResourceTypeAccount
	e.ResourceID = accountID
	e.Message = message
	return e
}

// Authorization builds an access-control event (grants, revokes, denials).
func Authorization(ctx context.Context, eventType EventType, status EventStatus, resourceType ResourceType, resourceID, message string) *Event {
	e := newEvent(ctx, eventType, status)
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	e.Message = message
	return e
}

// Mutation builds a successful data-mutation event.
func Mutation(ctx context.Context, eventType EventType, resourceType ResourceType, resourceID string, metadata map[string]interface{}) *Event {
	e := newEvent(ctx, eventType, EventStatusSuccess)
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	e.Metadata = metadata
	return e
}
