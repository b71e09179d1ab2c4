package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/IdentityFoundry/httpdir-bridge/pkg/models"
)

const auditFile = "audit.log"

// Log is an append-only record of the directory operations executed through
// the CLI. The pending-write cache itself is never persisted; this log only
// captures what was attempted and how it ended.
type Log struct {
	dataDir string
	mu      sync.Mutex
}

// NewLog creates an audit log manager. It ensures the data directory exists.
func NewLog(dataDir string) (*Log, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create data directory %s: %w", dataDir, err)
	}
	return &Log{dataDir: dataDir}, nil
}

// Append appends a new event to the audit log file.
func (l *Log) Append(event models.AuditEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	path := filepath.Join(l.dataDir, auditFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log for writing: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(string(data) + "\n"); err != nil {
		return fmt.Errorf("failed to write to audit log: %w", err)
	}

	return nil
}
