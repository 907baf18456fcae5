package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestInitWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, false, "json")

	With("run_id", "abc").Info("run finished", "new", 2)
	Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line at info level, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if rec["msg"] != "run finished" || rec["run_id"] != "abc" || rec["new"] != float64(2) {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestInitWriterTextDebug(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, true, "")

	Debug("keyword fetched", "keyword", "피자")

	if !strings.Contains(buf.String(), "level=DEBUG") || !strings.Contains(buf.String(), "keyword=피자") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
