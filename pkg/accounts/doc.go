// Package accounts implements registration, authentication, and
// account management. Usernames are 4-20 characters of letters,
// digits, and underscores (not digit-first); passwords must carry an
// upper-case letter, a lower-case letter, a digit, and a special
// character. Logins accept a username or an email address and every
// failure maps to the same generic denial so callers cannot enumerate
// usernames. Accounts are soft-deleted, never removed.
package accounts
