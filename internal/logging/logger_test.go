package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/iwvelando/credit-wizard/internal/config"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LoggingConfig
		override string
		want     zapcore.Level
		wantErr  bool
	}{
		{name: "defaults to info", want: zapcore.InfoLevel},
		{name: "configured level", cfg: config.LoggingConfig{Level: "error"}, want: zapcore.ErrorLevel},
		{name: "override wins", cfg: config.LoggingConfig{Level: "error"}, override: "debug", want: zapcore.DebugLevel},
		{name: "warning alias", cfg: config.LoggingConfig{Level: "warning", Format: "console"}, want: zapcore.WarnLevel},
		{name: "invalid level", cfg: config.LoggingConfig{Level: "verbose"}, wantErr: true},
		{name: "invalid format", cfg: config.LoggingConfig{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg, tt.override)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if !logger.Core().Enabled(tt.want) {
				t.Errorf("expected level %s to be enabled", tt.want)
			}
			if tt.want > zapcore.DebugLevel && logger.Core().Enabled(tt.want-1) {
				t.Errorf("expected level %s to be disabled", tt.want-1)
			}
		})
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json", OutputFile: path}, "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Fatalf("expected log entry in file, got %q", string(data))
	}
}
