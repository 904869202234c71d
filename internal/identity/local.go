package identity

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/swastiapp/swasti-server/internal/auth"
	"github.com/swastiapp/swasti-server/internal/domain"
	apperrors "github.com/swastiapp/swasti-server/internal/errors"
	"github.com/swastiapp/swasti-server/internal/id"
	"github.com/swastiapp/swasti-server/internal/store"
)

const (
	// ProviderPassword marks accounts registered with email and password.
	ProviderPassword = "password"
	// ProviderGoogle marks accounts created through Google sign-in.
	ProviderGoogle = "google"

	// Pending OAuth states older than this are discarded.
	oauthStateTTL = 10 * time.Minute

	minPasswordLength = 8
)

// GoogleConfig holds the provider settings for federated sign-in.
type GoogleConfig struct {
	AuthURL     string
	ClientID    string
	RedirectURL string
}

// LocalService is the self-hosted identity provider, backed by the SQLite
// store. It implements Service.
type LocalService struct {
	store  store.Store
	tokens *auth.TokenService
	google GoogleConfig
	logger *slog.Logger

	mu          sync.Mutex
	oauthStates map[string]time.Time
}

var _ Service = (*LocalService)(nil)

// NewLocalService creates the identity service.
func NewLocalService(st store.Store, tokens *auth.TokenService, google GoogleConfig, logger *slog.Logger) *LocalService {
	return &LocalService{
		store:       st,
		tokens:      tokens,
		google:      google,
		logger:      logger,
		oauthStates: make(map[string]time.Time),
	}
}

// SignUp registers a password account and returns its email verification
// token. The account cannot sign in until the token is redeemed.
func (s *LocalService) SignUp(ctx context.Context, email, password, name string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return "", apperrors.Validation("a valid email address is required")
	}
	if len(password) < minPasswordLength {
		return "", apperrors.Validationf("password must be at least %d characters", minPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeValidation, "invalid password")
	}

	accountID, err := id.Generate("user")
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeService, "generate account id")
	}

	now := time.Now()
	account := &domain.Account{
		ID:           accountID,
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		Provider:     ProviderPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		if err == store.ErrEmailTaken {
			return "", apperrors.AlreadyRegistered("email already registered")
		}
		return "", apperrors.Wrap(err, apperrors.CodeService, "create account")
	}

	if err := s.ensureProfile(ctx, account); err != nil {
		return "", err
	}

	token, err := s.tokens.GenerateVerificationToken(account.ID, account.Email)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeService, "generate verification token")
	}

	s.logger.Info("account registered", "user_id", account.ID)
	return token, nil
}

// SignInWithPassword authenticates a password account and issues a session.
func (s *LocalService) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.store.GetAccountByEmail(ctx, email)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.InvalidCredentials("invalid email or password")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeService, "look up account")
	}

	ok, err := auth.VerifyPassword(account.PasswordHash, password)
	if err != nil || !ok {
		return nil, apperrors.InvalidCredentials("invalid email or password")
	}

	if account.Provider == ProviderPassword && !account.EmailVerified() {
		return nil, apperrors.EmailUnverified("email address not verified")
	}

	return s.issueSession(ctx, account)
}

// FederatedAuthURL builds the Google consent URL and records a pending state.
func (s *LocalService) FederatedAuthURL() (string, string, error) {
	if s.google.ClientID == "" {
		return "", "", apperrors.Service("federated sign-in is not configured")
	}

	state := uuid.NewString()

	s.mu.Lock()
	s.pruneStatesLocked()
	s.oauthStates[state] = time.Now().Add(oauthStateTTL)
	s.mu.Unlock()

	params := url.Values{}
	params.Set("client_id", s.google.ClientID)
	params.Set("redirect_uri", s.google.RedirectURL)
	params.Set("response_type", "code")
	params.Set("scope", "openid email profile")
	params.Set("state", state)

	return fmt.Sprintf("%s?%s", s.google.AuthURL, params.Encode()), state, nil
}

// CompleteFederated finishes a federated sign-in. The provider has already
// verified the email, so first sign-in creates a verified account.
func (s *LocalService) CompleteFederated(ctx context.Context, state, email, name, avatarURL string) (*Session, error) {
	if !s.consumeState(state) {
		return nil, apperrors.NotAuthenticated("unknown or expired sign-in attempt")
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.Validation("provider returned no email address")
	}

	account, err := s.store.GetAccountByEmail(ctx, email)
	if err == store.ErrNotFound {
		account, err = s.createFederatedAccount(ctx, email, name, avatarURL)
	}
	if err != nil {
		return nil, apperrors.FromErr(err)
	}

	return s.issueSession(ctx, account)
}

func (s *LocalService) createFederatedAccount(ctx context.Context, email, name, avatarURL string) (*domain.Account, error) {
	accountID, err := id.Generate("user")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeService, "generate account id")
	}

	now := time.Now()
	verifiedAt := now
	account := &domain.Account{
		ID:              accountID,
		Email:           email,
		Name:            strings.TrimSpace(name),
		AvatarURL:       avatarURL,
		Provider:        ProviderGoogle,
		EmailVerifiedAt: &verifiedAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeService, "create account")
	}

	if err := s.ensureProfile(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("federated account created", "user_id", account.ID)
	return account, nil
}

// Principal resolves a session token to its owner. The token must decrypt,
// and its session row must still exist and be unexpired.
func (s *LocalService) Principal(ctx context.Context, token string) (*Principal, error) {
	claims, err := s.tokens.VerifySessionToken(token)
	if err != nil {
		return nil, apperrors.NotAuthenticated("invalid session token")
	}

	session, err := s.store.GetAuthSessionByTokenHash(ctx, auth.HashSessionToken(token))
	if err != nil {
		return nil, apperrors.NotAuthenticated("session revoked")
	}
	if session.IsExpired() {
		return nil, apperrors.NotAuthenticated("session expired")
	}

	account, err := s.store.GetAccount(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.NotAuthenticated("account no longer exists")
	}

	p := principalFor(account)
	return &p, nil
}

// SignOut revokes the session behind the token. Unknown tokens are ignored.
func (s *LocalService) SignOut(ctx context.Context, token string) error {
	session, err := s.store.GetAuthSessionByTokenHash(ctx, auth.HashSessionToken(token))
	if err != nil {
		return nil
	}
	if err := s.store.DeleteAuthSession(ctx, session.ID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeService, "revoke session")
	}
	return nil
}

// VerifyEmail redeems a verification token. Redeeming twice is harmless.
func (s *LocalService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.tokens.VerifyVerificationToken(token)
	if err != nil {
		return apperrors.Validation("invalid or expired verification token")
	}

	account, err := s.store.GetAccount(ctx, claims.UserID)
	if err != nil {
		return apperrors.NotFound("account not found")
	}
	if account.EmailVerified() {
		return nil
	}

	account.MarkEmailVerified()
	account.UpdatedAt = time.Now()
	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return apperrors.Wrap(err, apperrors.CodeService, "mark email verified")
	}

	s.logger.Info("email verified", "user_id", account.ID)
	return nil
}

// issueSession creates a session row and its PASETO token.
func (s *LocalService) issueSession(ctx context.Context, account *domain.Account) (*Session, error) {
	sessionID, err := id.Generate("sess")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeService, "generate session id")
	}

	token, err := s.tokens.GenerateSessionToken(account.ID, account.Email, sessionID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeService, "generate session token")
	}

	now := time.Now()
	expiresAt := now.Add(s.tokens.SessionDuration())
	session := &domain.AuthSession{
		ID:        sessionID,
		AccountID: account.ID,
		TokenHash: auth.HashSessionToken(token),
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	if err := s.store.CreateAuthSession(ctx, session); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeService, "create session")
	}

	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		Principal: principalFor(account),
	}, nil
}

// ensureProfile creates the account's profile row if it is missing.
func (s *LocalService) ensureProfile(ctx context.Context, account *domain.Account) error {
	profile := domain.NewProfile(account.ID, account.Name, account.Email, account.AvatarURL)
	err := s.store.CreateProfile(ctx, profile)
	if err != nil && err != store.ErrAlreadyExists {
		return apperrors.Wrap(err, apperrors.CodeService, "create profile")
	}
	return nil
}

// consumeState removes a pending OAuth state, reporting whether it was live.
func (s *LocalService) consumeState(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.oauthStates[state]
	if !ok {
		return false
	}
	delete(s.oauthStates, state)
	return time.Now().Before(expiry)
}

func (s *LocalService) pruneStatesLocked() {
	now := time.Now()
	for state, expiry := range s.oauthStates {
		if now.After(expiry) {
			delete(s.oauthStates, state)
		}
	}
}

func principalFor(account *domain.Account) Principal {
	return Principal{
		UserID:        account.ID,
		Email:         account.Email,
		Name:          account.Name,
		AvatarURL:     account.AvatarURL,
		EmailVerified: account.EmailVerified(),
	}
}
