package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/foodshare/foodshare/pkg/config"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LoggingConfig
	}{
		{"json", config.LoggingConfig{Level: "INFO", Format: "json"}},
		{"flat json", config.LoggingConfig{Level: "DEBUG", Format: "json", FlatJSON: true}},
		{"text", config.LoggingConfig{Level: "WARN", Format: "text"}},
		{"bad level falls back", config.LoggingConfig{Level: "LOUD", Format: "json"}},
	}

	oldLogger := Logger
	defer func() { Logger = oldLogger }()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := InitLogger(&tt.cfg); err != nil {
				t.Fatalf("Failed to initialize logger: %v", err)
			}
			if GetLogger() == nil {
				t.Fatal("Expected logger to be set")
			}
		})
	}
}

func TestFlatEncoder(t *testing.T) {
	var buf bytes.Buffer
	encoder := NewFlatEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.InfoLevel)
	logger := zap.New(core).With(zap.String("component", "claims"))

	logger.Info("claim admitted",
		zap.Int64("post_id", 7),
		zap.Float64("quantity", 2.5),
		zap.Error(errors.New("boom")))

	var logObj map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logObj); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if logObj["message"] != "claim admitted" {
		t.Errorf("Expected message 'claim admitted', got: %v", logObj["message"])
	}
	if logObj["component"] != "claims" {
		t.Errorf("Expected context field 'component'='claims', got: %v", logObj["component"])
	}
	if logObj["post_id"] != float64(7) {
		t.Errorf("Expected field 'post_id'=7, got: %v", logObj["post_id"])
	}
	if logObj["quantity"] != 2.5 {
		t.Errorf("Expected field 'quantity'=2.5, got: %v", logObj["quantity"])
	}
	if logObj["error"] != "boom" {
		t.Errorf("Expected field 'error'='boom', got: %v", logObj["error"])
	}
	if _, ok := logObj["timestamp"]; !ok {
		t.Error("Expected 'timestamp' field in log output")
	}
}
