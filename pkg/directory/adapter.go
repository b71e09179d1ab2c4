package directory

import (
	"log/slog"
	"slices"
)

// UserAdapter wraps one User for a host unit of work. It binds the user to a
// realm, mirrors whether the user is persisted in the remote directory, and
// owns the single deferred write transaction for the user. Every mutating
// setter applies the change in memory and enlists the transaction with the
// session; enlisting is idempotent, so any number of mutations within one
// unit of work flush as exactly one remote write.
type UserAdapter struct {
	user      *User
	realm     string
	session   *Session
	remote    remoteWriter
	persisted bool
	tx        *WriteTransaction

	storageID string
}

// AdaptExistingUser wraps a user that already exists in the remote
// directory.
func AdaptExistingUser(session *Session, realm string, user *User, remote remoteWriter) *UserAdapter {
	adapter := newAdapter(session, realm, user, remote)
	adapter.persisted = true
	return adapter
}

// AdaptNewUser wraps a freshly created user that the remote directory has
// not seen yet.
func AdaptNewUser(session *Session, realm string, user *User, remote remoteWriter) *UserAdapter {
	return newAdapter(session, realm, user, remote)
}

func newAdapter(session *Session, realm string, user *User, remote remoteWriter) *UserAdapter {
	adapter := &UserAdapter{
		user:    user,
		realm:   realm,
		session: session,
		remote:  remote,
	}
	adapter.tx = newWriteTransaction(remote, adapter)
	return adapter
}

// ensureEnlisted registers the write transaction with the session on the
// first mutation after construction or after a previous flush. Subsequent
// mutations within the same unit of work are no-ops here.
func (a *UserAdapter) ensureEnlisted() {
	if a.tx.state == TxApplied {
		a.tx = newWriteTransaction(a.remote, a)
	}
	if a.tx.state != TxIdle {
		return
	}
	slog.Debug("Enlisting deferred directory write", "username", a.user.Username(), "realm", a.realm)
	a.session.EnlistAfterCompletion(a.tx)
	a.tx.state = TxEnlisted
}

// User exposes the wrapped entity.
func (a *UserAdapter) User() *User {
	return a.user
}

// Persisted reports whether the user has been durably written to the remote
// directory at least once.
func (a *UserAdapter) Persisted() bool {
	return a.persisted
}

func (a *UserAdapter) Realm() string {
	return a.realm
}

// ID returns the storage-scoped identifier handed to the host.
func (a *UserAdapter) ID() string {
	if a.storageID == "" {
		a.storageID = StorageID(a.user.ID())
	}
	return a.storageID
}

func (a *UserAdapter) Username() string {
	return a.user.Username()
}

func (a *UserAdapter) SetUsername(username string) {
	if a.user.Username() == username {
		return
	}
	a.user.SetUsername(username)
	a.ensureEnlisted()
}

func (a *UserAdapter) Email() string {
	return a.user.Email()
}

func (a *UserAdapter) SetEmail(email string) {
	if a.user.Email() == email {
		return
	}
	a.user.SetEmail(email)
	a.ensureEnlisted()
}

func (a *UserAdapter) FirstName() string {
	return a.user.FirstName()
}

func (a *UserAdapter) SetFirstName(firstName string) {
	if a.user.FirstName() == firstName {
		return
	}
	a.user.SetFirstName(firstName)
	a.ensureEnlisted()
}

func (a *UserAdapter) LastName() string {
	return a.user.LastName()
}

func (a *UserAdapter) SetLastName(lastName string) {
	if a.user.LastName() == lastName {
		return
	}
	a.user.SetLastName(lastName)
	a.ensureEnlisted()
}

func (a *UserAdapter) Enabled() bool {
	return a.user.Enabled()
}

func (a *UserAdapter) SetEnabled(enabled bool) {
	if a.user.Enabled() == enabled {
		return
	}
	a.user.SetEnabled(enabled)
	a.ensureEnlisted()
}

func (a *UserAdapter) EmailVerified() bool {
	return a.user.EmailVerified()
}

func (a *UserAdapter) SetEmailVerified(verified bool) {
	if a.user.EmailVerified() == verified {
		return
	}
	a.user.SetEmailVerified(verified)
	a.ensureEnlisted()
}

func (a *UserAdapter) CreatedTimestamp() int64 {
	return a.user.CreatedTimestamp()
}

func (a *UserAdapter) SetCreatedTimestamp(timestamp int64) {
	if a.user.CreatedTimestamp() == timestamp {
		return
	}
	a.user.SetCreatedTimestamp(timestamp)
	a.ensureEnlisted()
}

func (a *UserAdapter) SetSingleAttribute(name, value string) {
	if a.user.FirstAttribute(name) == value && len(a.user.Attribute(name)) == 1 {
		return
	}
	a.user.SetSingleAttribute(name, value)
	a.ensureEnlisted()
}

func (a *UserAdapter) SetAttribute(name string, values []string) {
	if slices.Equal(a.user.Attribute(name), values) {
		return
	}
	a.user.SetAttribute(name, values)
	a.ensureEnlisted()
}

func (a *UserAdapter) RemoveAttribute(name string) {
	a.user.RemoveAttribute(name)
	a.ensureEnlisted()
}

func (a *UserAdapter) FirstAttribute(name string) string {
	return a.user.FirstAttribute(name)
}

func (a *UserAdapter) Attribute(name string) []string {
	return a.user.Attribute(name)
}

func (a *UserAdapter) Attributes() map[string][]string {
	return a.user.Attributes()
}

// SetPassword installs the new password on the in-memory user; the remote
// directory receives it with the deferred write at commit.
func (a *UserAdapter) SetPassword(password string) {
	if a.user.Password() == password {
		return
	}
	a.user.SetPassword(password)
	a.ensureEnlisted()
}

// Groups materializes the group views this user belongs to, bound to the
// adapter's realm.
func (a *UserAdapter) Groups() []*Group {
	groupsAndRoles := a.user.GroupsAndRoles()
	groups := make([]*Group, 0, len(groupsAndRoles))
	for name, roles := range groupsAndRoles {
		// Cloned so local-only grants on the view never leak into the entity.
		groups = append(groups, NewGroup(name, slices.Clone(roles), a.realm))
	}
	return groups
}

// IsMemberOf reports membership by group name.
func (a *UserAdapter) IsMemberOf(group *Group) bool {
	if group == nil {
		return false
	}
	_, ok := a.user.GroupsAndRoles()[group.Name()]
	return ok
}

// RoleMappings materializes the distinct role views held across all of the
// user's groups.
func (a *UserAdapter) RoleMappings() []*Role {
	seen := map[string]bool{}
	var roles []*Role
	for _, groupRoles := range a.user.GroupsAndRoles() {
		for _, name := range groupRoles {
			if seen[name] {
				continue
			}
			seen[name] = true
			roles = append(roles, NewRole(name, a.realm))
		}
	}
	return roles
}

// HasRole reports whether the user holds the given role in any group.
func (a *UserAdapter) HasRole(role *Role) bool {
	if role == nil {
		return false
	}
	for _, groupRoles := range a.user.GroupsAndRoles() {
		if slices.Contains(groupRoles, role.Name()) {
			return true
		}
	}
	return false
}
