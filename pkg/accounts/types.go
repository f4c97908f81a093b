package accounts

import (
	"time"
)

// Account represents a registered user. The password hash and security
// answers never leave this package through the JSON surface.
type Account struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Deleted   bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PasswordHash      string             `json:"-"`
	SecurityQuestions []SecurityQuestion `json:"-"`
}

// SecurityQuestion is a stored challenge pair. Answers are normalized
// (lower-cased and trimmed) before they are persisted.
type SecurityQuestion struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
}

// RegisterRequest carries the inputs for account creation.
type RegisterRequest struct {
	Username          string             `json:"username"`
	Email             string             `json:"email"`
	FullName          string             `json:"full_name"`
	Password          string             `json:"password"`
	SecurityQuestions []SecurityQuestion `json:"security_questions,omitempty"`
}

// LoginRequest carries a login attempt. Identifier is a username or an
// email address.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Account   *Account  `json:"account"`
	Roles     []string  `json:"roles"`
}

// ChangePasswordRequest carries a password change for an authenticated
// account.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Profile is the authenticated view of an account, roles included.
type Profile struct {
	Account *Account `json:"account"`
	Roles   []string `json:"roles"`
}

// ListFilter narrows and pages a user listing.
type ListFilter struct {
	Role    string `json:"role,omitempty"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

// DefaultPerPage bounds unpaged listings.
const DefaultPerPage = 50
