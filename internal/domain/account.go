package domain

import "time"

// Account represents an identity held by the identity service: the
// credentials side of a user, separate from the social Profile row.
type Account struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	Name            string     `json:"name"`                    // Display name captured at sign-up
	AvatarURL       string     `json:"avatar_url,omitempty"`    // Provided by federated providers
	Provider        string     `json:"provider"`                // "password" or "google"
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// EmailVerified reports whether the account's email address is confirmed.
// Federated accounts arrive verified by their provider.
func (a *Account) EmailVerified() bool {
	return a.EmailVerifiedAt != nil
}

// MarkEmailVerified stamps the email confirmation time.
func (a *Account) MarkEmailVerified() {
	now := time.Now()
	a.EmailVerifiedAt = &now
	a.UpdatedAt = now
}

// AuthSession represents an active sign-in issued by the identity service.
type AuthSession struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	TokenHash string    `json:"token_hash,omitempty"` // Stored hashed, filter from API responses
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired checks if the session has passed its expiration time.
func (s *AuthSession) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
