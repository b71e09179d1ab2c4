package directory

import "strings"

// PendingCache holds users created during the current unit of work that have
// not yet been committed to the remote directory, so lookups within the same
// unit of work can observe them; the remote directory would otherwise answer
// not-found. It is owned by one Session and dies with it: it is not a general
// cache and has no eviction.
//
// An adapter is indexed under every non-blank key it has at insertion time.
// If the username or email changes afterwards the index is not rewritten.
type PendingCache struct {
	byUsername map[string]*UserAdapter
	byEmail    map[string]*UserAdapter
	byID       map[string]*UserAdapter
}

// NewPendingCache creates an empty cache.
func NewPendingCache() *PendingCache {
	return &PendingCache{
		byUsername: map[string]*UserAdapter{},
		byEmail:    map[string]*UserAdapter{},
		byID:       map[string]*UserAdapter{},
	}
}

// Put indexes the adapter under its current username, email and id.
func (c *PendingCache) Put(adapter *UserAdapter) {
	if adapter == nil {
		return
	}
	if username := adapter.Username(); notBlank(username) {
		c.byUsername[username] = adapter
	}
	if email := adapter.Email(); notBlank(email) {
		c.byEmail[email] = adapter
	}
	if id := adapter.ID(); notBlank(id) {
		c.byID[id] = adapter
	}
}

// ByUsername returns the pending adapter with the given username, or nil.
func (c *PendingCache) ByUsername(username string) *UserAdapter {
	return c.byUsername[username]
}

// ByEmail returns the pending adapter with the given email, or nil.
func (c *PendingCache) ByEmail(email string) *UserAdapter {
	return c.byEmail[email]
}

// ByID returns the pending adapter with the given storage-scoped id, or nil.
func (c *PendingCache) ByID(id string) *UserAdapter {
	return c.byID[id]
}

// Remove de-indexes the adapter under its current keys.
func (c *PendingCache) Remove(adapter *UserAdapter) {
	if adapter == nil {
		return
	}
	if username := adapter.Username(); notBlank(username) {
		delete(c.byUsername, username)
	}
	if email := adapter.Email(); notBlank(email) {
		delete(c.byEmail, email)
	}
	if id := adapter.ID(); notBlank(id) {
		delete(c.byID, id)
	}
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
