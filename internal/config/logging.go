package config

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger builds the process logger: a human-readable development logger at
// debug level when LogDebug is set, a JSON production logger otherwise.
func (c Config) Logger() (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if c.LogDebug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Sugar().Named("handfuse"), nil
}
