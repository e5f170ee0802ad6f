package kit

import "go.uber.org/zap"

// NewLogger builds the JSON production logger, or the console development
// logger when env is not "production".
func NewLogger(service, env string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if env != "production" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.InitialFields = map[string]any{"service": service, "env": env}

	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
