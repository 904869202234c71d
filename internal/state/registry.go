package state

import (
	"context"
	"log/slog"
	"sync"

	"github.com/swastiapp/swasti-server/internal/identity"
	"github.com/swastiapp/swasti-server/internal/store"
)

// Context bundles the two stores serving one client session.
type Context struct {
	Session *SessionStore
	Content *ContentStore
}

// Registry hands out store contexts keyed by session token, so repeated
// requests from the same session observe the same in-memory collections.
type Registry struct {
	identity identity.Service
	data     store.Store
	logger   *slog.Logger

	mu       sync.Mutex
	contexts map[string]*Context
}

// NewRegistry creates an empty registry.
func NewRegistry(idsvc identity.Service, data store.Store, logger *slog.Logger) *Registry {
	return &Registry{
		identity: idsvc,
		data:     data,
		logger:   logger,
		contexts: make(map[string]*Context),
	}
}

// newContext builds an unbound store context.
func (r *Registry) newContext() *Context {
	session := NewSessionStore(r.identity, r.data, r.logger)
	return &Context{
		Session: session,
		Content: NewContentStore(r.data, session, r.logger),
	}
}

// Anonymous returns a fresh context with no user bound. Anonymous contexts
// are not cached; their collections live for a single request.
func (r *Registry) Anonymous() *Context {
	return r.newContext()
}

// For resolves the context for a session token, creating one and restoring
// its session on first sight. A token the identity service rejects yields a
// context with no user, same as Anonymous. Cached hits re-check the token
// against the identity service, so a session revoked elsewhere stops
// resolving on its next request and the dead entry is evicted.
func (r *Registry) For(ctx context.Context, token string) (*Context, error) {
	if token == "" {
		return r.Anonymous(), nil
	}

	r.mu.Lock()
	sc, ok := r.contexts[token]
	r.mu.Unlock()
	if ok {
		if _, err := r.identity.Principal(ctx, token); err == nil {
			return sc, nil
		}
		r.Drop(token)
	}

	sc = r.newContext()
	sc.Session.SetToken(token)
	if err := sc.Session.RestoreSession(ctx); err != nil {
		return nil, err
	}
	if sc.Session.User() == nil && !sc.Session.NeedsVerification() {
		// Dead token: nothing to cache.
		return sc, nil
	}

	r.mu.Lock()
	// Another request may have raced the restore; keep the first.
	if existing, ok := r.contexts[token]; ok {
		sc = existing
	} else {
		r.contexts[token] = sc
	}
	r.mu.Unlock()
	return sc, nil
}

// Adopt caches a context under a freshly issued token, so the session that
// just logged in keeps its collections on the next request.
func (r *Registry) Adopt(token string, sc *Context) {
	if token == "" {
		return
	}
	r.mu.Lock()
	r.contexts[token] = sc
	r.mu.Unlock()
}

// Drop removes the context bound to a token, typically on logout.
func (r *Registry) Drop(token string) {
	r.mu.Lock()
	delete(r.contexts, token)
	r.mu.Unlock()
}
