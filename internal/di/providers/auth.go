package providers

import (
	"github.com/samber/do/v2"

	"github.com/swastiapp/swasti-server/internal/auth"
	"github.com/swastiapp/swasti-server/internal/config"
	"github.com/swastiapp/swasti-server/internal/logger"
)

// AuthKey is the hex-encoded PASETO symmetric key.
type AuthKey string

// ProvideAuthKey loads the token key from config, or generates and persists
// one under the data path.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Auth.TokenKeyHex != "" {
		log.Info("Using configured token key", "session_duration", cfg.Auth.SessionDuration)
		return AuthKey(cfg.Auth.TokenKeyHex), nil
	}

	key, err := auth.LoadOrGenerateKey(cfg.Data.BasePath)
	if err != nil {
		return "", err
	}

	log.Info("Token key loaded", "session_duration", cfg.Auth.SessionDuration)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService(string(authKey), cfg.Auth.SessionDuration)
}
