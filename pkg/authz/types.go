package authz

import (
	"time"

	"github.com/uth-confms/confms/pkg/errdefs"
)

// Role represents a role in the system
type Role string

const (
	RoleAuthor   Role = "author"
	RoleReviewer Role = "reviewer"
	RoleChair    Role = "chair"
	RoleAdmin    Role = "admin"
)

// DefaultRole is assigned to every account at registration.
const DefaultRole = RoleAuthor

// AllRoles returns every role the system knows about.
func AllRoles() []Role {
	return []Role{RoleAuthor, RoleReviewer, RoleChair, RoleAdmin}
}

// Valid reports whether the role is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAuthor, RoleReviewer, RoleChair, RoleAdmin:
		return true
	}
	return false
}

// ParseRole converts a string into a Role, rejecting unknown names.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", errdefs.Validation("unknown role: %q", s)
	}
	return r, nil
}

// RoleAssignment represents a role granted to an account. An empty
// ConferenceID means the assignment applies to every conference.
type RoleAssignment struct {
	ID           string     `json:"id"`
	AccountID    string     `json:"account_id"`
	Role         Role       `json:"role"`
	ConferenceID string     `json:"conference_id,omitempty"`
	GrantedBy    string     `json:"granted_by,omitempty"`
	GrantedAt    time.Time  `json:"granted_at"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
	Active       bool       `json:"active"`
}

// Matches reports whether this assignment satisfies a check for the
// given role in the given conference. A global assignment satisfies
// any conference; a scoped assignment satisfies its own conference and
// any-conference checks (empty conferenceID).
func (a RoleAssignment) Matches(role Role, conferenceID string) bool {
	if !a.Active || a.Role != role {
		return false
	}
	return a.ConferenceID == "" || conferenceID == "" || a.ConferenceID == conferenceID
}
