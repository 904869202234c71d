package state

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/swastiapp/swasti-server/internal/auth"
	"github.com/swastiapp/swasti-server/internal/domain"
	"github.com/swastiapp/swasti-server/internal/identity"
	"github.com/swastiapp/swasti-server/internal/logger"
	"github.com/swastiapp/swasti-server/internal/store"
	"github.com/swastiapp/swasti-server/internal/store/sqlite"
)

var errBoom = errors.New("injected failure")

// env bundles everything a state test needs.
type env struct {
	store    *sqlite.Store
	identity *identity.LocalService
	session  *SessionStore
	content  *ContentStore
}

func newTestEnv(t *testing.T) *env {
	t.Helper()

	log := logger.Discard()
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), log.Logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	tokens, err := auth.NewTokenService(strings.Repeat("ab", 32), time.Hour)
	require.NoError(t, err)

	idsvc := identity.NewLocalService(st, tokens, identity.GoogleConfig{
		AuthURL:     "https://accounts.google.com/o/oauth2/v2/auth",
		ClientID:    "test-client",
		RedirectURL: "http://localhost:8080/api/v1/auth/callback",
	}, log.Logger)

	session := NewSessionStore(idsvc, st, log.Logger)
	content := NewContentStore(st, session, log.Logger)
	return &env{store: st, identity: idsvc, session: session, content: content}
}

// withFlakyContent swaps the content store for one backed by a fault
// injection wrapper around the same database.
func (e *env) withFlakyContent(flaky *flakyStore) *ContentStore {
	flaky.Store = e.store
	return NewContentStore(flaky, e.session, logger.Discard().Logger)
}

// signIn registers, verifies and logs in a user through the session store,
// returning their ID.
func (e *env) signIn(t *testing.T, email, name string) string {
	t.Helper()
	ctx := context.Background()

	token, err := e.identity.SignUp(ctx, email, "wellness-first", name)
	require.NoError(t, err)
	require.NoError(t, e.identity.VerifyEmail(ctx, token))
	require.NoError(t, e.session.Login(ctx, email, "wellness-first"))

	return e.session.CurrentUserID()
}

// author creates a verified user without touching the session store, for
// seeding other people's tips.
func (e *env) author(t *testing.T, email, name string) string {
	t.Helper()
	ctx := context.Background()

	token, err := e.identity.SignUp(ctx, email, "wellness-first", name)
	require.NoError(t, err)
	require.NoError(t, e.identity.VerifyEmail(ctx, token))

	session, err := e.identity.SignInWithPassword(ctx, email, "wellness-first")
	require.NoError(t, err)
	return session.Principal.UserID
}

// seedTip inserts a tip directly into the data store.
func (e *env) seedTip(t *testing.T, tipID, authorID, title string, createdAt time.Time) {
	t.Helper()
	tip := &domain.Tip{
		ID:          tipID,
		AuthorID:    authorID,
		Title:       title,
		Description: "a home remedy",
		Category:    "Immunity Boosting",
		Benefits:    []string{"feels good"},
		CreatedAt:   createdAt,
	}
	require.NoError(t, e.store.CreateTip(context.Background(), tip))
}

// flakyStore wraps a real store and fails selected operations, for
// confirm-then-apply tests.
type flakyStore struct {
	store.Store
	failInsertLike    bool
	failInsertSaved   bool
	failCreateTip     bool
	failCreateComment bool
	failUpdateProfile bool
	failListTips      bool
}

func (f *flakyStore) InsertLike(ctx context.Context, userID, tipID string) error {
	if f.failInsertLike {
		return errBoom
	}
	return f.Store.InsertLike(ctx, userID, tipID)
}

func (f *flakyStore) InsertSavedTip(ctx context.Context, userID, tipID string) error {
	if f.failInsertSaved {
		return errBoom
	}
	return f.Store.InsertSavedTip(ctx, userID, tipID)
}

func (f *flakyStore) CreateTip(ctx context.Context, tip *domain.Tip) error {
	if f.failCreateTip {
		return errBoom
	}
	return f.Store.CreateTip(ctx, tip)
}

func (f *flakyStore) CreateComment(ctx context.Context, comment *domain.Comment) error {
	if f.failCreateComment {
		return errBoom
	}
	return f.Store.CreateComment(ctx, comment)
}

func (f *flakyStore) UpdateProfile(ctx context.Context, profile *domain.Profile) error {
	if f.failUpdateProfile {
		return errBoom
	}
	return f.Store.UpdateProfile(ctx, profile)
}

func (f *flakyStore) ListTips(ctx context.Context, q store.TipQuery) ([]*domain.Tip, error) {
	if f.failListTips {
		return nil, errBoom
	}
	return f.Store.ListTips(ctx, q)
}
