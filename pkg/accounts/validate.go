package accounts

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode"

	"github.com/uth-confms/confms/pkg/errdefs"
)

const (
	usernameMinLen = 4
	usernameMaxLen = 20
	passwordMinLen = 8
	fullNameMaxLen = 100
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateUsername enforces the username shape: 4-20 characters,
// letters, digits, and underscores, not starting with a digit.
func ValidateUsername(username string) error {
	if len(username) < usernameMinLen || len(username) > usernameMaxLen {
		return errdefs.Validation("username must be %d-%d characters", usernameMinLen, usernameMaxLen)
	}
	if !usernamePattern.MatchString(username) {
		return errdefs.Validation("username may contain only letters, digits, and underscores, and must not start with a digit")
	}
	return nil
}

// ValidatePassword enforces the password policy: at least 8 characters
// with an upper-case letter, a lower-case letter, a digit, and a
// special character.
func ValidatePassword(password string) error {
	if len(password) < passwordMinLen {
		return errdefs.Validation("password must be at least %d characters", passwordMinLen)
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return errdefs.Validation("password must contain an upper-case letter, a lower-case letter, a digit, and a special character")
	}
	return nil
}

// ValidateEmail checks that the address is RFC-shaped.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errdefs.Validation("invalid email address")
	}
	return nil
}

// ValidateFullName requires a non-blank name of reasonable length.
func ValidateFullName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errdefs.Validation("full name is required")
	}
	if len(trimmed) > fullNameMaxLen {
		return errdefs.Validation("full name must be at most %d characters", fullNameMaxLen)
	}
	return nil
}

// NormalizeSecurityQuestions trims questions, lower-cases and trims
// answers, and rejects blank entries.
func NormalizeSecurityQuestions(questions []SecurityQuestion) ([]SecurityQuestion, error) {
	normalized := make([]SecurityQuestion, 0, len(questions))
	for _, q := range questions {
		question := strings.TrimSpace(q.Question)
		answer := NormalizeAnswer(q.Answer)
		if question == "" {
			return nil, errdefs.Validation("security question text must not be blank")
		}
		if answer == "" {
			return nil, errdefs.Validation("security question answer must not be blank")
		}
		normalized = append(normalized, SecurityQuestion{Question: question, Answer: answer})
	}
	return normalized, nil
}

// NormalizeAnswer lower-cases and trims a security answer so stored and
// submitted answers compare consistently.
func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}
