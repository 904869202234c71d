package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swastiapp/swasti-server/internal/logger"
)

func newTestRegistry(t *testing.T) (*env, *Registry) {
	t.Helper()
	e := newTestEnv(t)
	return e, NewRegistry(e.identity, e.store, logger.Discard().Logger)
}

func TestRegistryReusesContextPerToken(t *testing.T) {
	e, reg := newTestRegistry(t)
	ctx := context.Background()

	e.signIn(t, "mira@example.com", "Mira")
	token := e.session.Token()

	first, err := reg.For(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, first.Session.User())

	// Load something into the content store, then resolve again.
	e.seedTip(t, "tip-1", first.Session.CurrentUserID(), "ginger tea", time.Now())
	require.NoError(t, first.Content.FetchTips(ctx))

	second, err := reg.For(ctx, token)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Len(t, second.Content.Tips(), 1)
}

func TestRegistryAnonymous(t *testing.T) {
	_, reg := newTestRegistry(t)

	a := reg.Anonymous()
	b := reg.Anonymous()
	assert.NotSame(t, a, b)
	assert.Nil(t, a.Session.User())
}

func TestRegistryRevokedTokenStopsResolving(t *testing.T) {
	e, reg := newTestRegistry(t)
	ctx := context.Background()

	e.signIn(t, "mira@example.com", "Mira")
	token := e.session.Token()

	cached, err := reg.For(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, cached.Session.User())

	// Revoke the session behind the token, as a sign-out on another
	// device would.
	require.NoError(t, e.identity.SignOut(ctx, token))

	sc, err := reg.For(ctx, token)
	require.NoError(t, err)
	assert.NotSame(t, cached, sc)
	assert.Nil(t, sc.Session.User())

	// The dead entry was evicted, not handed out again.
	again, err := reg.For(ctx, token)
	require.NoError(t, err)
	assert.NotSame(t, cached, again)
	assert.Nil(t, again.Session.User())
}

func TestRegistryDeadTokenNotCached(t *testing.T) {
	_, reg := newTestRegistry(t)
	ctx := context.Background()

	sc, err := reg.For(ctx, "v4.local.bogus")
	require.NoError(t, err)
	assert.Nil(t, sc.Session.User())

	again, err := reg.For(ctx, "v4.local.bogus")
	require.NoError(t, err)
	assert.NotSame(t, sc, again)
}

func TestRegistryDrop(t *testing.T) {
	e, reg := newTestRegistry(t)
	ctx := context.Background()

	e.signIn(t, "mira@example.com", "Mira")
	token := e.session.Token()

	first, err := reg.For(ctx, token)
	require.NoError(t, err)

	reg.Drop(token)

	second, err := reg.For(ctx, token)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestRegistryAdopt(t *testing.T) {
	e, reg := newTestRegistry(t)
	ctx := context.Background()

	sc := reg.Anonymous()
	token, err := sc.Session.Register(ctx, "mira@example.com", "wellness-first", "Mira")
	require.NoError(t, err)
	require.NoError(t, e.identity.VerifyEmail(ctx, token))
	require.NoError(t, sc.Session.Login(ctx, "mira@example.com", "wellness-first"))

	reg.Adopt(sc.Session.Token(), sc)

	resolved, err := reg.For(ctx, sc.Session.Token())
	require.NoError(t, err)
	assert.Same(t, sc, resolved)
}
