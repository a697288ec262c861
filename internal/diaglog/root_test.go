package diaglog

import (
	"bytes"
	"testing"
)

func captureWriter(buf *bytes.Buffer) Writer {
	return func(b []byte) error {
		buf.Write(b)
		return nil
	}
}

func TestGlobalLogger(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	var buf bytes.Buffer
	logger := NewStructured()
	logger.SetWriter(captureWriter(&buf))
	SetDefault(logger)

	Debug("debug message", String("key", "value"))
	Info("info message", Int("count", 42))
	Warn("warn message", Bool("flag", true))
	Error("error message", Float64("pi", 3.14159))

	if buf.Len() == 0 {
		t.Fatal("no output captured")
	}
}

func TestGlobalSetLevel(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	var buf bytes.Buffer
	logger := NewStructured()
	logger.SetWriter(captureWriter(&buf))
	SetDefault(logger)

	SetLevel(LevelError)

	buf.Reset()
	Debug("debug")
	Info("info")
	Warn("warn")
	if buf.Len() > 0 {
		t.Error("lower level messages were logged")
	}

	buf.Reset()
	Error("error")
	if buf.Len() == 0 {
		t.Error("error message was not logged")
	}
}

func TestGlobalSetWriter(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	logger := NewStructured()
	SetDefault(logger)

	var buf bytes.Buffer
	SetWriter(captureWriter(&buf))

	Info("test message")
	if buf.Len() == 0 {
		t.Error("no output captured after SetWriter")
	}
}

func TestDefaultLoggerUsable(t *testing.T) {
	logger := Default()
	if logger == nil {
		t.Fatal("default logger is nil")
	}
	logger.Info("test")
}
