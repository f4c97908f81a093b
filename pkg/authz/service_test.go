package authz

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uth-confms/confms/pkg/audit"
	"github.com/uth-confms/confms/pkg/errdefs"
	"github.com/uth-confms/confms/pkg/observability"
)

type fakeStore struct {
	assignments []RoleAssignment
	listCalls   int
}

func (s *fakeStore) Grant(_ context.Context, assignment *RoleAssignment) error {
	for i, a := range s.assignments {
		if a.AccountID == assignment.AccountID && a.Role == assignment.Role && a.ConferenceID == assignment.ConferenceID {
			s.assignments[i].Active = true
			s.assignments[i].RevokedAt = nil
			assignment.ID = a.ID
			return nil
		}
	}
	if assignment.ID == "" {
		assignment.ID = "assignment-" + assignment.AccountID + "-" + string(assignment.Role)
	}
	assignment.Active = true
	s.assignments = append(s.assignments, *assignment)
	return nil
}

func (s *fakeStore) Revoke(_ context.Context, accountID string, role Role, conferenceID string) (bool, error) {
	for i, a := range s.assignments {
		if a.AccountID == accountID && a.Role == role && a.ConferenceID == conferenceID && a.Active {
			now := time.Now()
			s.assignments[i].Active = false
			s.assignments[i].RevokedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) ListActive(_ context.Context, accountID string) ([]RoleAssignment, error) {
	s.listCalls++
	var out []RoleAssignment
	for _, a := range s.assignments {
		if a.AccountID == accountID && a.Active {
			out = append(out, a)
		}
	}
	return out, nil
}

type auditRecorder struct {
	events []*audit.Event
}

func (r *auditRecorder) Log(_ context.Context, event *audit.Event) error {
	r.events = append(r.events, event)
	return nil
}

func (r *auditRecorder) Close() error { return nil }

func newTestService(t *testing.T) (*Service, *fakeStore, *auditRecorder) {
	t.Helper()

	store := &fakeStore{}
	recorder := &auditRecorder{}
	logger := observability.NewLogger(observability.ErrorLevel, os.Stderr)

	cache, err := NewRoleCache(16, time.Minute, nil, nil)
	require.NoError(t, err)

	svc := NewService(store, cache, recorder, logger, nil)

	// Seed an admin the tests act as.
	require.NoError(t, store.Grant(context.Background(), &RoleAssignment{
		AccountID: "admin-1", Role: RoleAdmin,
	}))
	return svc, store, recorder
}

func TestGrantRequiresAdmin(t *testing.T) {
	svc, _, recorder := newTestService(t)
	ctx := context.Background()

	_, err := svc.Grant(ctx, "acct-1", GrantRequest{AccountID: "acct-2", Role: "reviewer"})
	assert.True(t, errdefs.IsNotAuthorized(err))
	assert.Equal(t, errdefs.ReasonRoleMissing, errdefs.ReasonOf(err))

	// The denial leaves an audit trail.
	require.NotEmpty(t, recorder.events)
	assert.Equal(t, audit.EventTypeAuthzAccessDenied, recorder.events[len(recorder.events)-1].EventType)
}

func TestGrantAndRevokeRoundTrip(t *testing.T) {
	svc, _, recorder := newTestService(t)
	ctx := context.Background()

	assignment, err := svc.Grant(ctx, "admin-1", GrantRequest{AccountID: "acct-1", Role: "reviewer", ConferenceID: "conf-1"})
	require.NoError(t, err)
	assert.Equal(t, RoleReviewer, assignment.Role)
	assert.Equal(t, "admin-1", assignment.GrantedBy)

	ok, err := svc.HasRole(ctx, "acct-1", RoleReviewer, "conf-1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Revoke(ctx, "admin-1", GrantRequest{AccountID: "acct-1", Role: "reviewer", ConferenceID: "conf-1"}))

	ok, err = svc.HasRole(ctx, "acct-1", RoleReviewer, "conf-1")
	require.NoError(t, err)
	assert.False(t, ok, "revocation invalidates the cached role set")

	var types []audit.EventType
	for _, e := range recorder.events {
		types = append(types, e.EventType)
	}
	assert.Contains(t, types, audit.EventTypeAuthzRoleGrant)
	assert.Contains(t, types, audit.EventTypeAuthzRoleRevoke)
}

func TestGrantIsIdempotent(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Grant(ctx, "admin-1", GrantRequest{AccountID: "acct-1", Role: "chair"})
	require.NoError(t, err)
	_, err = svc.Grant(ctx, "admin-1", GrantRequest{AccountID: "acct-1", Role: "chair"})
	require.NoError(t, err)

	roles, err := store.ListActive(ctx, "acct-1")
	require.NoError(t, err)
	assert.Len(t, roles, 1)
}

func TestRevokeMissingRole(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.Revoke(context.Background(), "admin-1", GrantRequest{AccountID: "acct-1", Role: "chair"})
	assert.True(t, errdefs.IsNotFound(err))
}

func TestGrantRejectsUnknownRole(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Grant(context.Background(), "admin-1", GrantRequest{AccountID: "acct-1", Role: "emperor"})
	assert.True(t, errdefs.IsValidation(err))
}

func TestGrantDefaultRole(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.GrantDefaultRole(ctx, "acct-new"))

	ok, err := svc.HasRole(ctx, "acct-new", RoleAuthor, "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestActiveRoleNamesDeduplicates(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, store.Grant(ctx, &RoleAssignment{AccountID: "acct-1", Role: RoleReviewer, ConferenceID: "conf-1"}))
	require.NoError(t, store.Grant(ctx, &RoleAssignment{AccountID: "acct-1", Role: RoleReviewer, ConferenceID: "conf-2"}))
	require.NoError(t, store.Grant(ctx, &RoleAssignment{AccountID: "acct-1", Role: RoleAuthor}))

	names, err := svc.ActiveRoleNames(ctx, "acct-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"author", "reviewer"}, names)
}

func TestRolesForUsesCache(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.GrantDefaultRole(ctx, "acct-1"))
	before := store.listCalls

	_, err := svc.RolesFor(ctx, "acct-1")
	require.NoError(t, err)
	_, err = svc.RolesFor(ctx, "acct-1")
	require.NoError(t, err)

	assert.Equal(t, before+1, store.listCalls, "second lookup is served from cache")
}
