package logger

import (
	"go.uber.org/zap"

	"trivia-cli/internal/config"
)

// New builds the application logger. Outside production only warnings and
// errors are written, since the log shares the terminal with the game.
func New(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Env == "production" {
		return zap.NewProduction()
	}

	devCfg := zap.NewDevelopmentConfig()
	devCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	devCfg.DisableCaller = true
	return devCfg.Build(zap.AddStacktrace(zap.ErrorLevel))
}
