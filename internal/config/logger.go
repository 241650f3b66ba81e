package config

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/and161185/pgsql-check/internal/errs"
)

// NewLogger builds a production zap logger at level writing to outputs.
// Every entry carries a run_id unique to this process.
func NewLogger(level string, outputs ...string) (*zap.SugaredLogger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: log level: %w", errs.ErrConfiguration, err)
	}

	logCfg := zap.NewProductionConfig()
	logCfg.Level = lvl
	logCfg.OutputPaths = outputs
	logCfg.ErrorOutputPaths = []string{"stderr"}
	logCfg.InitialFields = map[string]interface{}{"run_id": uuid.NewString()}

	logger, err := logCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: logger: %w", errs.ErrConfiguration, err)
	}
	return logger.Sugar(), nil
}
