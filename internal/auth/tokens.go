package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json/v2"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/swastiapp/swasti-server/internal/id"
)

const (
	tokenIssuer   = "swasti-server"
	tokenAudience = "swasti-client"

	// PASETO v4 symmetric key requirements.
	keyBytesSize = 32
	keyHexSize   = 64

	verificationTokenDuration = 24 * time.Hour
)

// Token purposes. A session token must never be accepted where a
// verification token is expected, and vice versa.
const (
	purposeSession     = "session"
	purposeVerifyEmail = "verify-email"
)

// SessionClaims are the claims carried by a PASETO session token.
// v4.local tokens are encrypted, so these are opaque to the client.
type SessionClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	SessionID string `json:"session_id"`
	Purpose   string `json:"purpose"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// TokenService handles PASETO token generation and verification.
type TokenService struct {
	symmetricKey    paseto.V4SymmetricKey
	sessionDuration time.Duration
}

// NewTokenService creates a token service from a hex-encoded 256-bit key.
func NewTokenService(keyHex string, sessionDuration time.Duration) (*TokenService, error) {
	if len(keyHex) != keyHexSize {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d hex characters (%d bytes), got %d", keyHexSize, keyBytesSize, len(keyHex))
	}

	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string for PASETO key: %w", err)
	}

	key, err := paseto.V4SymmetricKeyFromBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		symmetricKey:    key,
		sessionDuration: sessionDuration,
	}, nil
}

// GenerateSessionToken creates an encrypted PASETO v4.local token binding the
// user to a server-side session row.
func (s *TokenService) GenerateSessionToken(userID, email, sessionID string) (string, error) {
	return s.generate(userID, email, sessionID, purposeSession, s.sessionDuration)
}

// GenerateVerificationToken creates a short-lived token used to confirm an
// email address. It carries no session.
func (s *TokenService) GenerateVerificationToken(userID, email string) (string, error) {
	return s.generate(userID, email, "", purposeVerifyEmail, verificationTokenDuration)
}

func (s *TokenService) generate(userID, email, sessionID, purpose string, lifetime time.Duration) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(userID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(lifetime))

	tokenID, err := id.Generate("token")
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(tokenID)

	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("user_id", userID)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("email", email)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("session_id", sessionID)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("purpose", purpose)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifySessionToken verifies and parses a PASETO session token.
func (s *TokenService) VerifySessionToken(tokenString string) (*SessionClaims, error) {
	return s.verify(tokenString, purposeSession)
}

// VerifyVerificationToken verifies and parses an email verification token.
func (s *TokenService) VerifyVerificationToken(tokenString string) (*SessionClaims, error) {
	return s.verify(tokenString, purposeVerifyEmail)
}

func (s *TokenService) verify(tokenString, purpose string) (*SessionClaims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims SessionClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	if claims.Purpose != purpose {
		return nil, fmt.Errorf("unexpected token purpose: %s", claims.Purpose)
	}

	return &claims, nil
}

// SessionDuration returns the configured session token lifetime.
func (s *TokenService) SessionDuration() time.Duration {
	return s.sessionDuration
}

// HashSessionToken hashes a token for database storage, so a leaked
// sessions table can't be replayed against the API.
func HashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
