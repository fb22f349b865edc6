// Package app provides logger initialization.
package app

import (
	"github.com/guttosm/pack-assistant/config"
	"github.com/guttosm/pack-assistant/internal/logger"
)

// InitializeLogger initializes the JSON logger from the loaded configuration.
func InitializeLogger(cfg config.LogConfig) {
	logger.Init(cfg.Level, cfg.Pretty)
}
