package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"learning-progress-service/internal/config"
)

func TestNewWritesRotatedFile(t *testing.T) {
	var cfg config.Config
	cfg.Log.Level = "debug"
	cfg.Log.File = filepath.Join(t.TempDir(), "service.log")

	log, err := New(cfg)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	log.Debug("quiz completed")
	_ = log.Sync()

	data, err := os.ReadFile(cfg.Log.File)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"quiz completed"`) {
		t.Fatalf("expected JSON entry in log file, got %s", data)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	var cfg config.Config
	cfg.Log.Level = "chatty"
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
