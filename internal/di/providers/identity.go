package providers

import (
	"strings"

	"github.com/samber/do/v2"

	"github.com/swastiapp/swasti-server/internal/auth"
	"github.com/swastiapp/swasti-server/internal/config"
	"github.com/swastiapp/swasti-server/internal/identity"
	"github.com/swastiapp/swasti-server/internal/logger"
	"github.com/swastiapp/swasti-server/internal/ratelimit"
	"github.com/swastiapp/swasti-server/internal/state"
)

// IdentityHandle wraps the identity service so the container resolves one
// concrete binding.
type IdentityHandle struct {
	identity.Service
}

// ProvideIdentityService provides the store-backed identity service.
func ProvideIdentityService(i do.Injector) (*IdentityHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	google := identity.GoogleConfig{
		AuthURL:     cfg.OAuth.GoogleAuthURL,
		ClientID:    cfg.OAuth.GoogleClientID,
		RedirectURL: strings.TrimSuffix(cfg.Server.BaseURL, "/") + "/api/v1/auth/callback",
	}

	svc := identity.NewLocalService(storeHandle.Store, tokens, google, log.Logger)

	log.Info("Identity service ready", "google_sign_in", cfg.OAuth.GoogleClientID != "")

	return &IdentityHandle{Service: svc}, nil
}

// ProvideRegistry provides the per-session store registry.
func ProvideRegistry(i do.Injector) (*state.Registry, error) {
	idHandle := do.MustInvoke[*IdentityHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return state.NewRegistry(idHandle.Service, storeHandle.Store, log.Logger), nil
}

// ProvideAuthRateLimiter provides the per-address limiter for auth endpoints.
func ProvideAuthRateLimiter(i do.Injector) (*ratelimit.KeyedRateLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return ratelimit.New(cfg.Auth.AuthRPS, cfg.Auth.AuthBurst), nil
}
