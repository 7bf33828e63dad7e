// Package logging builds the zap logger injected into every component.
package logging

import (
	"go.uber.org/zap"
)

// Setup returns a configured logger. verbose selects the development config
// with debug-level output; otherwise the production config is used. The app
// name and version are attached as initial fields.
func Setup(verbose bool, appName, appVersion string) (*zap.Logger, error) {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	cfg.InitialFields = map[string]interface{}{
		"appName":    appName,
		"appVersion": appVersion,
	}

	return cfg.Build()
}
