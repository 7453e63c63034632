package utils

import (
	"go.uber.org/zap"
)

// NewLogger builds the process logger: JSON in production, console otherwise.
func NewLogger(appEnv string) (*zap.Logger, error) {
	if appEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
