package logger

import "go.uber.org/zap"

// New builds the process logger: human-readable in development, JSON
// elsewhere.
func New(appEnv string) (*zap.Logger, error) {
	if appEnv == "development" || appEnv == "test" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
