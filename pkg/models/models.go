package models

import "time"

// RemoteUser is the JSON payload exchanged with the remote directory for a
// single user. The schema is fixed; unknown keys in responses are ignored by
// the decoder. The password field is write-only: the directory never returns
// it, it is only carried on deferred update payloads.
type RemoteUser struct {
	ID               string              `json:"id,omitempty"`
	Username         string              `json:"username,omitempty"`
	Password         string              `json:"password,omitempty"`
	CreatedTimestamp int64               `json:"createdTimestamp,omitempty"`
	Enabled          bool                `json:"enabled"`
	Attributes       map[string][]string `json:"attributes,omitempty"`
	RequiredActions  []string            `json:"requiredActions,omitempty"`
	Email            string              `json:"email,omitempty"`
	FirstName        string              `json:"firstName,omitempty"`
	LastName         string              `json:"lastName,omitempty"`
	EmailVerified    bool                `json:"emailVerified"`
	GroupsAndRoles   map[string][]string `json:"groupsAndRoles,omitempty"`
}

// AuditEvent represents a single entry in the audit log.
type AuditEvent struct {
	Timestamp time.Time `json:"timestamp"`
	UseCase   string    `json:"use_case"`
	Target    string    `json:"target"`
	Status    string    `json:"status"`
	Details   string    `json:"details,omitempty"`
}
