package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uth-confms/confms/pkg/audit"
	"github.com/uth-confms/confms/pkg/errdefs"
)

func seedRoles(t *testing.T, store *fakeStore, grants map[string][]RoleAssignment) {
	t.Helper()
	for account, assignments := range grants {
		for _, a := range assignments {
			a.AccountID = account
			require.NoError(t, store.Grant(context.Background(), &a))
		}
	}
}

func TestAuthorizeRulesTable(t *testing.T) {
	svc, store, _ := newTestService(t)
	seedRoles(t, store, map[string][]RoleAssignment{
		"author-1":   {{Role: RoleAuthor}},
		"reviewer-1": {{Role: RoleReviewer, ConferenceID: "conf-1"}},
		"chair-1":    {{Role: RoleChair, ConferenceID: "conf-1"}},
	})
	ctx := context.Background()

	paper := Resource{Kind: "paper", ID: "paper-1", OwnerID: "author-1", ConferenceID: "conf-1", State: "submitted"}

	tests := []struct {
		name   string
		actor  string
		action Action
		res    Resource
		reason errdefs.Reason
	}{
		{"author may submit", "author-1", ActionPaperCreate, Resource{ConferenceID: "conf-1"}, ""},
		{"reviewer may not submit", "reviewer-1", ActionPaperCreate, Resource{ConferenceID: "conf-1"}, errdefs.ReasonRoleMissing},
		{"owner may update", "author-1", ActionPaperUpdate, paper, ""},
		{"admin may update", "admin-1", ActionPaperUpdate, paper, ""},
		{"stranger may not update", "reviewer-1", ActionPaperUpdate, paper, errdefs.ReasonNotOwner},
		{"only owner withdraws", "admin-1", ActionPaperWithdraw, paper, errdefs.ReasonNotOwner},
		{"chair reads any paper", "chair-1", ActionPaperRead, paper, ""},
		{"reviewer may not read unassigned", "reviewer-1", ActionPaperRead, paper, errdefs.ReasonNotOwner},
		{"chair assigns reviewers", "chair-1", ActionAssignmentCreate, Resource{ConferenceID: "conf-1"}, ""},
		{"chair of another conference may not assign", "chair-1", ActionAssignmentCreate, Resource{ConferenceID: "conf-2"}, errdefs.ReasonRoleMissing},
		{"chair decides", "chair-1", ActionDecisionRecord, Resource{ConferenceID: "conf-1"}, ""},
		{"admin does not decide", "admin-1", ActionDecisionRecord, Resource{ConferenceID: "conf-1"}, errdefs.ReasonRoleMissing},
		{"admin searches the audit log", "admin-1", ActionAuditSearch, Resource{}, ""},
		{"chair may not search the audit log", "chair-1", ActionAuditSearch, Resource{}, errdefs.ReasonRoleMissing},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Authorize(ctx, tc.actor, tc.action, tc.res)
			if tc.reason == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errdefs.IsNotAuthorized(err))
			assert.Equal(t, tc.reason, errdefs.ReasonOf(err))
		})
	}
}

func TestAuthorizeStatePredicate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	paper := Resource{Kind: "paper", ID: "paper-1", OwnerID: "admin-1", ConferenceID: "conf-1"}
	for _, state := range []string{"submitted", "under_review", "reviewed", "camera_ready"} {
		paper.State = state
		assert.NoError(t, svc.Authorize(ctx, "admin-1", ActionPaperUpdate, paper), state)
	}
	for _, state := range []string{"accepted", "rejected", "withdrawn"} {
		paper.State = state
		err := svc.Authorize(ctx, "admin-1", ActionPaperUpdate, paper)
		assert.True(t, errdefs.IsNotAuthorized(err), state)
		assert.Equal(t, errdefs.ReasonInvalidState, errdefs.ReasonOf(err), state)
	}
}

func TestAuthorizeRequiresActor(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.Authorize(context.Background(), "", ActionPaperCreate, Resource{ConferenceID: "conf-1"})
	assert.True(t, errdefs.IsNotAuthorized(err))
	assert.Equal(t, errdefs.ReasonNotAuthenticated, errdefs.ReasonOf(err))
}

func TestAuthorizeDenialIsAudited(t *testing.T) {
	svc, _, recorder := newTestService(t)

	err := svc.Authorize(context.Background(), "acct-1", ActionUserDeactivate,
		Resource{Kind: "account", ID: "acct-2"})
	assert.True(t, errdefs.IsNotAuthorized(err))

	require.NotEmpty(t, recorder.events)
	last := recorder.events[len(recorder.events)-1]
	assert.Equal(t, audit.EventTypeAuthzAccessDenied, last.EventType)
	assert.Equal(t, audit.ResourceTypeAccount, last.ResourceType)
	assert.Equal(t, "acct-2", last.ResourceID)
	assert.Equal(t, "user.deactivate", last.Metadata["action"])
}

func TestAuthorizeOwnershipIgnoresEmptyOwner(t *testing.T) {
	svc, _, _ := newTestService(t)

	// An anonymous-owner resource must not match an arbitrary actor.
	err := svc.Authorize(context.Background(), "acct-1", ActionPaperWithdraw,
		Resource{Kind: "paper", ID: "paper-1"})
	assert.True(t, errdefs.IsNotAuthorized(err))
	assert.Equal(t, errdefs.ReasonNotOwner, errdefs.ReasonOf(err))
}
