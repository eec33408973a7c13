package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"calmtrace/internal/platform/logging"
)

func TestNewJSONWritesComponentField(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, err := logging.New("debug", "json", &buf)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logging.Component(logger, "relief").Debug("backfill skipped")

	entry := map[string]any{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["component"] != "relief" || entry["msg"] != "backfill skipped" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewRejectsUnknownLevelAndFormat(t *testing.T) {
	t.Parallel()
	if _, err := logging.New("loud", "text", nil); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := logging.New("info", "xml", nil); err == nil {
		t.Fatalf("expected format error")
	}
}
