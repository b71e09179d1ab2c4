package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/IdentityFoundry/httpdir-bridge/pkg/models"
)

func TestLogAppend(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLog(dir)
	if err != nil {
		t.Fatalf("NewLog failed: %v", err)
	}

	events := []models.AuditEvent{
		{Timestamp: time.Now(), UseCase: "CreateUser", Target: "alice", Status: "info"},
		{Timestamp: time.Now(), UseCase: "SetPassword", Target: "alice", Status: "fatal", Details: "commit failed"},
	}
	for _, event := range events {
		if err := l.Append(event); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, auditFile))
	if err != nil {
		t.Fatalf("could not read audit log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two events, got %d lines", len(lines))
	}

	var got models.AuditEvent
	if err := json.Unmarshal([]byte(lines[1]), &got); err != nil {
		t.Fatalf("audit line is not valid JSON: %v", err)
	}
	if got.UseCase != "SetPassword" || got.Target != "alice" {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestNewLogCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	if _, err := NewLog(dir); err != nil {
		t.Fatalf("NewLog failed: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("data directory was not created: %v", err)
	}
}
