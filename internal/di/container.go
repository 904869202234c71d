// Package di provides dependency injection configuration for the Swasti server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/swastiapp/swasti-server/internal/auth"
	"github.com/swastiapp/swasti-server/internal/config"
	"github.com/swastiapp/swasti-server/internal/di/providers"
	"github.com/swastiapp/swasti-server/internal/logger"
	"github.com/swastiapp/swasti-server/internal/state"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Auth and identity layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideIdentityService)
	do.Provide(injector, providers.ProvideAuthRateLimiter)

	// Session state
	do.Provide(injector, providers.ProvideRegistry)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle
// management. This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*providers.IdentityHandle](injector)
	_ = do.MustInvoke[*state.Registry](injector)
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
