package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"nthumods/config"
)

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(&config.LogConfig{Level: "debug", Format: "console"})
	if err != nil {
		t.Fatalf("NewLogger 失败: %v", err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug 级别应启用")
	}

	log, err = NewLogger(&config.LogConfig{Level: "warn", Format: "json"})
	if err != nil {
		t.Fatalf("NewLogger 失败: %v", err)
	}
	if log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("warn 级别下 info 不应启用")
	}
}

func TestNewLogger_Invalid(t *testing.T) {
	if _, err := NewLogger(&config.LogConfig{Level: "loud", Format: "json"}); err == nil {
		t.Error("无效级别应报错")
	}
	if _, err := NewLogger(&config.LogConfig{Level: "info", Format: "xml"}); err == nil {
		t.Error("无效格式应报错")
	}
}
