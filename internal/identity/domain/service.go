package domain

import "context"

// Service resolves provider identities to application users and issues the
// bearer identity tokens the HTTP layer accepts.
type Service interface {
	// ResolveOrCreate looks a user up by email, creating a pre-verified
	// account when none exists.
	ResolveOrCreate(ctx context.Context, profile Profile) (*User, error)

	// IssueToken mints a signed identity token for the user.
	IssueToken(user *User) (string, error)

	// VerifyToken validates an identity token and returns the uid it asserts.
	VerifyToken(raw string) (string, error)
}
