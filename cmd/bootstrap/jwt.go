package bootstrap

import (
	"time"

	"rentflow/internal/pkg/config"
	"rentflow/internal/pkg/jwtauth"

	"go.uber.org/fx"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		NewJWTService,
	),
)

func NewJWTService(cfg config.Config) *jwtauth.Service {
	accessTokenDuration, err := time.ParseDuration(cfg.JWT.AccessTokenDuration)
	if err != nil {
		panic("invalid JWT_ACCESS_TOKEN_DURATION: " + err.Error())
	}

	return jwtauth.NewService(cfg.JWT.Secret, accessTokenDuration)
}
