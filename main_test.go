package main

import (
	"os"
	"path/filepath"
	"testing"

	"samplerun/internal/logging"
)

func TestLogManagerInitialization(t *testing.T) {
	// Create temp dir for logs
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	// Initialize the log manager with test config
	lm, err := logging.NewManager(logging.Config{
		FilePath:   logPath,
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
		Level:      "debug",
	})
	if err != nil {
		t.Fatalf("failed to create log manager: %v", err)
	}
	defer lm.Close()

	// Get a scoped logger and write a message
	logger := lm.For("app")
	logger.Info("test message")

	// Sync to flush
	lm.Sync()

	// Verify log file was created
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Error("log file was not created")
	}
}
