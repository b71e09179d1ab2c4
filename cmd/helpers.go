package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/IdentityFoundry/httpdir-bridge/pkg/audit"
	"github.com/IdentityFoundry/httpdir-bridge/pkg/directory"
	"github.com/IdentityFoundry/httpdir-bridge/pkg/httpdir"
	"github.com/IdentityFoundry/httpdir-bridge/pkg/models"
)

// newProvider builds the remote directory client from the viper config and
// wraps it in the directory facade. It exits on invalid configuration, the
// same way the admin console would reject it.
func newProvider() *directory.Provider {
	cfg := httpdir.Config{
		URL:      viper.GetString("url"),
		Username: viper.GetString("username"),
		Password: viper.GetString("password"),
	}

	client, err := httpdir.NewClient(cfg)
	if err != nil {
		slog.Error("Failed to create directory client", "config", cfg.String(), "error", err)
		os.Exit(1)
	}
	slog.Debug("Directory client ready", "config", cfg.String())

	return directory.NewProvider(client)
}

// newAuditLog opens the audit log in the configured data directory.
func newAuditLog() *audit.Log {
	dataDir := viper.GetString("data_dir")
	if dataDir == "" {
		dataDir = "./data"
	}
	l, err := audit.NewLog(dataDir)
	if err != nil {
		slog.Error("Failed to open audit log", "error", err)
		os.Exit(1)
	}
	return l
}

// logAndAudit provides a consistent way to log structured messages to the
// console and also append a machine-readable event to the audit.log file.
func logAndAudit(l *audit.Log, useCase, target, level, details string, args ...interface{}) {
	// Structured logging for console/log collection
	logArgs := append([]interface{}{"use_case", useCase, "target", target}, args...)

	switch level {
	case "warn":
		slog.Warn(details, logArgs...)
	case "error":
		slog.Error(details, logArgs...)
	case "fatal":
		// Log as error and then exit.
		slog.Error(details, logArgs...)
		os.Exit(1)
	default:
	}

	event := models.AuditEvent{
		Timestamp: time.Now(),
		UseCase:   useCase,
		Target:    target,
		Status:    level,
		Details:   fmt.Sprintf("%s (%v)", details, args),
	}
	if err := l.Append(event); err != nil {
		slog.Warn("Failed to write to audit log", "error", err)
	}
}

// printUser renders one user for command output.
func printUser(user *directory.UserAdapter) {
	fmt.Printf("id: %s\n", user.ID())
	fmt.Printf("username: %s\n", user.Username())
	fmt.Printf("email: %s\n", user.Email())
	fmt.Printf("name: %s %s\n", user.FirstName(), user.LastName())
	fmt.Printf("enabled: %t\n", user.Enabled())
	fmt.Printf("email verified: %t\n", user.EmailVerified())
	fmt.Printf("persisted: %t\n", user.Persisted())
	for _, group := range user.Groups() {
		roles := make([]string, 0)
		for _, role := range group.Roles() {
			roles = append(roles, role.Name())
		}
		fmt.Printf("group %s: roles %v\n", group.Name(), roles)
	}
}
