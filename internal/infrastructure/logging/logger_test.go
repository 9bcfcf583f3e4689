package logging

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"development", &Config{Env: "development", Level: "debug"}, false},
		{"production", &Config{Env: "production", Level: "warn", AppID: "gate"}, false},
		{"default level", &Config{Env: "production"}, false},
		{"unknown level", &Config{Env: "development", Level: "verbose"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := NewLogger(&Config{Env: "production", Level: "info", FilePath: path})
	require.NoError(t, err)
	logger.Info("hello")
	assert.NoError(t, logger.Sync())
	assert.FileExists(t, path)
}

func TestContextLogger(t *testing.T) {
	assert.NotNil(t, ExtractLoggerFromContext(context.Background()))

	logger := zap.NewExample()
	ctx := SetLoggerInContext(context.Background(), logger)
	assert.Same(t, logger, ExtractLoggerFromContext(ctx))
}
