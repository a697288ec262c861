package diaglog

import (
	"bytes"
	"strings"
	"testing"
)

func TestStructuredLoggerFieldTypes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructured()
	logger.SetWriter(func(b []byte) error {
		buf.Write(b)
		return nil
	})

	logger.Info("event",
		String("s", "value"),
		Int("i", -7),
		Uint64("u", 42),
		Float64("f", 1.5),
		Bool("b", true),
		Bytes("raw", []byte{0xde, 0xad}),
	)

	rec, err := decodeRecord(buf.Bytes())
	if err != nil {
		t.Fatalf("decodeRecord: %v", err)
	}
	if rec.msg != "event" {
		t.Fatalf("msg = %q", rec.msg)
	}

	it := rec.fieldIter()
	got := map[string]string{}
	for {
		key, _, value, ok := it.next()
		if !ok {
			break
		}
		got[key] = value
	}

	want := map[string]string{
		"s":   "value",
		"i":   "-7",
		"u":   "42",
		"f":   "1.500",
		"b":   "true",
		"raw": "dead",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("field %q = %q, want %q", k, got[k], v)
		}
	}
}

func TestStructuredLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructured()
	logger.SetWriter(func(b []byte) error {
		buf.Write(b)
		return nil
	})
	logger.SetLevel(LevelWarn)

	logger.Debug("nope")
	logger.Info("nope")
	if buf.Len() != 0 {
		t.Fatal("debug/info should be suppressed below LevelWarn")
	}

	logger.Warn("yes")
	if buf.Len() == 0 {
		t.Fatal("warn should have been logged")
	}
}

func TestDecodeRecordWithCallStack(t *testing.T) {
	logger := NewStructured()
	var out bytes.Buffer
	logger.SetWriter(func(b []byte) error {
		rec, err := decodeRecord(b)
		if err != nil {
			return err
		}
		out.WriteString(rec.msg)
		return nil
	})
	logger.Error("boom", CallStack())
	if !strings.Contains(out.String(), "boom") {
		t.Fatalf("got %q", out.String())
	}
}
