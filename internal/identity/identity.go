// Package identity implements authentication for the Swasti server: password
// and federated sign-in, session issuance, and email verification.
package identity

import (
	"context"
	"time"
)

// Principal identifies an authenticated user.
type Principal struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	AvatarURL     string `json:"avatar_url"`
	EmailVerified bool   `json:"email_verified"`
}

// Session is an issued session token together with its owner.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Principal Principal `json:"principal"`
}

// Service is the authentication contract consumed by the state stores and
// the HTTP layer.
type Service interface {
	// SignUp registers a password account. The returned token confirms the
	// email address; the account cannot sign in until it is redeemed.
	SignUp(ctx context.Context, email, password, name string) (verificationToken string, err error)

	// SignInWithPassword authenticates a password account and issues a session.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)

	// FederatedAuthURL returns the provider consent URL for a federated
	// sign-in, along with the state value the callback must echo.
	FederatedAuthURL() (authURL, state string, err error)

	// CompleteFederated finishes a federated sign-in after the provider
	// redirect. The account is created on first sign-in.
	CompleteFederated(ctx context.Context, state, email, name, avatarURL string) (*Session, error)

	// Principal resolves a session token to its owner.
	Principal(ctx context.Context, token string) (*Principal, error)

	// SignOut revokes the session behind the token. Revoking an unknown or
	// expired token is not an error.
	SignOut(ctx context.Context, token string) error

	// VerifyEmail redeems a verification token, marking the account's email
	// as confirmed.
	VerifyEmail(ctx context.Context, token string) error
}
