package obs

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLoggerProdIsJSON(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "prod").Info("seat locked", "seat_id", "s1")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "seat locked" || rec["seat_id"] != "s1" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNewLoggerDevLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "dev").Debug("sweep", "swept", 2)
	if !strings.Contains(buf.String(), "swept=2") {
		t.Fatalf("expected debug text record, got %q", buf.String())
	}
}
