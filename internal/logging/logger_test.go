package logging

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewLogger_WhenDevelopmentEnvironment_ThenReturnsDevelopmentLogger(t *testing.T) {
	// Arrange & Act
	logger, err := NewLogger("development", "debug")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger to be non-nil")
	}

	// Cleanup
	_ = logger.Sync()
}

func TestNewLogger_WhenProductionEnvironment_ThenReturnsProductionLogger(t *testing.T) {
	// Arrange & Act
	logger, err := NewLogger("production", "info")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger to be non-nil")
	}

	// Cleanup
	_ = logger.Sync()
}

func TestNewLogger_WhenInvalidLogLevel_ThenDefaultsToInfo(t *testing.T) {
	// Arrange & Act
	logger, err := NewLogger("production", "invalid-level")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger to be non-nil")
	}

	// Cleanup
	_ = logger.Sync()
}

func TestZapLogger_With_WhenCalledWithFields_ThenReturnsLoggerWithFields(t *testing.T) {
	// Arrange
	logger, err := NewLogger("production", "info")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Act
	childLogger := logger.With(zap.String("run_id", "123"))

	// Assert
	if childLogger == nil {
		t.Fatal("expected child logger to be non-nil")
	}

	// Should not panic
	childLogger.Info("test message")
}

func TestNoOpLogger_AllMethods_WhenCalled_ThenDoNothing(t *testing.T) {
	// Arrange
	logger := NewNoOpLogger()

	// Act & Assert (should not panic)
	logger.Debug("test")
	logger.Info("test")
	logger.Warn("test")
	logger.Error("test")

	childLogger := logger.With(zap.String("key", "value"))
	if childLogger == nil {
		t.Fatal("expected child logger to be non-nil")
	}

	if err := logger.Sync(); err != nil {
		t.Errorf("expected no error from Sync, got %v", err)
	}
}
