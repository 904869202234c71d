// Package state implements the two client-facing state stores: the session
// store owning the authenticated identity, and the content store owning tip
// collections and their social metadata.
package state

import (
	"context"
	"log/slog"
	"sync"

	"github.com/swastiapp/swasti-server/internal/domain"
	apperrors "github.com/swastiapp/swasti-server/internal/errors"
	"github.com/swastiapp/swasti-server/internal/identity"
	"github.com/swastiapp/swasti-server/internal/store"
)

// SessionStore owns the current authenticated identity. All reads and
// mutations go through its mutex; operations run their remote calls outside
// any critical section and apply state only after the remote confirms.
type SessionStore struct {
	identity identity.Service
	data     store.Store
	logger   *slog.Logger

	mu                sync.Mutex
	user              *domain.Profile
	token             string
	loading           bool
	lastErr           *apperrors.Error
	needsVerification bool
}

// NewSessionStore creates a session store with no authenticated user.
func NewSessionStore(idsvc identity.Service, data store.Store, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		identity: idsvc,
		data:     data,
		logger:   logger,
	}
}

// User returns a copy of the current user profile, or nil when signed out.
func (s *SessionStore) User() *domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// CurrentUserID returns the signed-in user's ID, or "" when signed out.
func (s *SessionStore) CurrentUserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ""
	}
	return s.user.UserID
}

// Token returns the active session token, or "" when signed out.
func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetToken binds the store to an existing session token without fetching
// anything. RestoreSession resolves it into a user.
func (s *SessionStore) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Loading reports whether an operation is in flight.
func (s *SessionStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last recorded error, or nil.
func (s *SessionStore) Err() *apperrors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearError clears the last error without other side effects.
func (s *SessionStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = nil
}

// NeedsVerification reports whether the last sign-in or registration is
// blocked on email confirmation.
func (s *SessionStore) NeedsVerification() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.needsVerification
}

// begin marks the store loading and clears the previous error.
func (s *SessionStore) begin() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = nil
	s.mu.Unlock()
}

// fail records the error, clears the loading flag, and returns the error so
// callers can branch on its code.
func (s *SessionStore) fail(err error) *apperrors.Error {
	appErr := apperrors.FromErr(err)
	s.mu.Lock()
	s.loading = false
	s.lastErr = appErr
	if appErr.Code == apperrors.CodeEmailUnverified {
		s.needsVerification = true
	}
	s.mu.Unlock()
	return appErr
}

// Login authenticates with email and password and populates the current
// user from merged identity and profile fields.
func (s *SessionStore) Login(ctx context.Context, email, password string) error {
	s.begin()

	session, err := s.identity.SignInWithPassword(ctx, email, password)
	if err != nil {
		return s.fail(err)
	}

	profile := s.loadOrFallbackProfile(ctx, session.Principal)

	s.mu.Lock()
	s.user = profile
	s.token = session.Token
	s.needsVerification = false
	s.loading = false
	s.mu.Unlock()

	s.logger.Info("user logged in", "user_id", profile.UserID)
	return nil
}

// LoginWithGoogle starts a federated sign-in. It returns the provider URL to
// redirect to; the user is populated later, when the callback route invokes
// CompleteGoogleLogin.
func (s *SessionStore) LoginWithGoogle() (string, error) {
	s.begin()

	authURL, _, err := s.identity.FederatedAuthURL()
	if err != nil {
		return "", s.fail(err)
	}

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	return authURL, nil
}

// CompleteGoogleLogin finishes a federated sign-in after the provider
// redirect and restores the session from the issued token.
func (s *SessionStore) CompleteGoogleLogin(ctx context.Context, state, email, name, avatarURL string) error {
	s.begin()

	session, err := s.identity.CompleteFederated(ctx, state, email, name, avatarURL)
	if err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	s.token = session.Token
	s.loading = false
	s.mu.Unlock()

	return s.RestoreSession(ctx)
}

// Register creates a password account. On success the user is populated
// optimistically with zero counters and flagged as needing verification;
// authenticated operations stay unavailable until the email is confirmed.
// The verification token is returned for delivery.
func (s *SessionStore) Register(ctx context.Context, email, password, name string) (string, error) {
	s.begin()

	token, err := s.identity.SignUp(ctx, email, password, name)
	if err != nil {
		return "", s.fail(err)
	}

	s.mu.Lock()
	s.user = domain.NewProfile("", name, email, "")
	s.needsVerification = true
	s.loading = false
	s.mu.Unlock()

	return token, nil
}

// Logout invalidates the remote session. Local state is cleared even when
// the remote call fails; the failure is still recorded.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.begin()

	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	remoteErr := s.identity.SignOut(ctx, token)

	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.needsVerification = false
	s.loading = false
	if remoteErr != nil {
		s.lastErr = apperrors.FromErr(remoteErr)
	}
	s.mu.Unlock()

	return remoteErr
}

// RestoreSession re-establishes the current user from the bound session
// token. A missing or dead token clears the user without error. A verified
// principal with no profile row gets one created with defaults; the create
// is idempotent, so two concurrent restores for a brand-new federated user
// produce a single row.
func (s *SessionStore) RestoreSession(ctx context.Context) error {
	s.begin()

	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	principal, err := s.identity.Principal(ctx, token)
	if err != nil {
		s.mu.Lock()
		s.user = nil
		s.loading = false
		s.mu.Unlock()
		return nil
	}

	if !principal.EmailVerified {
		s.mu.Lock()
		s.user = domain.NewProfile(principal.UserID, principal.Name, principal.Email, principal.AvatarURL)
		s.needsVerification = true
		s.loading = false
		s.mu.Unlock()
		return nil
	}

	profile, err := s.data.GetProfile(ctx, principal.UserID)
	if err == store.ErrNotFound {
		fresh := domain.NewProfile(principal.UserID, principal.Name, principal.Email, principal.AvatarURL)
		if createErr := s.data.CreateProfile(ctx, fresh); createErr != nil && createErr != store.ErrAlreadyExists {
			return s.fail(createErr)
		}
		profile, err = s.data.GetProfile(ctx, principal.UserID)
	}
	if err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	s.user = profile
	s.needsVerification = false
	s.loading = false
	s.mu.Unlock()
	return nil
}

// UpdateProfile persists the given fields to the profile row, then merges
// them into the in-memory user. Nothing is applied locally until the remote
// write confirms.
func (s *SessionStore) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return s.fail(apperrors.NotAuthenticated("no user logged in"))
	}
	updated := *s.user
	s.mu.Unlock()
	s.begin()

	update.Apply(&updated)

	if err := s.data.UpdateProfile(ctx, &updated); err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	s.user = &updated
	s.loading = false
	s.mu.Unlock()
	return nil
}

// loadOrFallbackProfile fetches the profile row, falling back to display
// fields from the identity principal when the row is absent.
func (s *SessionStore) loadOrFallbackProfile(ctx context.Context, p identity.Principal) *domain.Profile {
	profile, err := s.data.GetProfile(ctx, p.UserID)
	if err != nil {
		if err != store.ErrNotFound {
			s.logger.Warn("profile fetch failed, using identity fields", "user_id", p.UserID, "error", err)
		}
		return domain.NewProfile(p.UserID, p.Name, p.Email, p.AvatarURL)
	}
	return profile
}
