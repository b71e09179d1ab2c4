package directory

import (
	"fmt"
	"slices"

	"github.com/IdentityFoundry/httpdir-bridge/pkg/models"
)

// User is the in-memory representation of a directory principal. It is
// created either from a remote directory response or freshly by the host,
// and mutated in place by its setters. The identifier is assigned by the
// remote directory once and never changes afterwards; a freshly created user
// carries a synthetic local identifier until its first successful remote
// write.
type User struct {
	data models.RemoteUser
}

// NewUser creates a fresh, not-yet-persisted user with the given local
// identifier.
func NewUser(id string) *User {
	return &User{data: models.RemoteUser{
		ID:             id,
		Attributes:     map[string][]string{},
		GroupsAndRoles: map[string][]string{},
	}}
}

// UserFromRemote wraps a payload deserialized from the remote directory.
func UserFromRemote(data models.RemoteUser) *User {
	if data.Attributes == nil {
		data.Attributes = map[string][]string{}
	}
	if data.GroupsAndRoles == nil {
		data.GroupsAndRoles = map[string][]string{}
	}
	return &User{data: data}
}

// Remote returns the wire payload for this user, as sent to the remote
// directory on create and update.
func (u *User) Remote() models.RemoteUser {
	return u.data
}

func (u *User) ID() string {
	return u.data.ID
}

// bindRemoteID adopts the identifier the remote directory assigned on first
// persist. Only valid while the user still carries its local identifier.
func (u *User) bindRemoteID(id string) {
	u.data.ID = id
}

func (u *User) Username() string {
	return u.data.Username
}

func (u *User) SetUsername(username string) {
	u.data.Username = username
}

func (u *User) Password() string {
	return u.data.Password
}

func (u *User) SetPassword(password string) {
	u.data.Password = password
}

func (u *User) Email() string {
	return u.data.Email
}

func (u *User) SetEmail(email string) {
	u.data.Email = email
}

func (u *User) FirstName() string {
	return u.data.FirstName
}

func (u *User) SetFirstName(firstName string) {
	u.data.FirstName = firstName
}

func (u *User) LastName() string {
	return u.data.LastName
}

func (u *User) SetLastName(lastName string) {
	u.data.LastName = lastName
}

func (u *User) Enabled() bool {
	return u.data.Enabled
}

func (u *User) SetEnabled(enabled bool) {
	u.data.Enabled = enabled
}

func (u *User) EmailVerified() bool {
	return u.data.EmailVerified
}

func (u *User) SetEmailVerified(verified bool) {
	u.data.EmailVerified = verified
}

// CreatedTimestamp is the creation time in milliseconds since the epoch,
// zero when unknown.
func (u *User) CreatedTimestamp() int64 {
	return u.data.CreatedTimestamp
}

func (u *User) SetCreatedTimestamp(timestamp int64) {
	u.data.CreatedTimestamp = timestamp
}

// SetSingleAttribute replaces the named attribute with a single value.
func (u *User) SetSingleAttribute(name, value string) {
	u.data.Attributes[name] = []string{value}
}

// SetAttribute replaces the named attribute with the given values.
func (u *User) SetAttribute(name string, values []string) {
	u.data.Attributes[name] = values
}

// RemoveAttribute drops the named attribute.
func (u *User) RemoveAttribute(name string) {
	delete(u.data.Attributes, name)
}

// FirstAttribute returns the first value of the named attribute, or "".
func (u *User) FirstAttribute(name string) string {
	values := u.data.Attributes[name]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Attribute returns all values of the named attribute.
func (u *User) Attribute(name string) []string {
	return u.data.Attributes[name]
}

// Attributes returns the full attribute mapping.
func (u *User) Attributes() map[string][]string {
	return u.data.Attributes
}

// RequiredActions returns the pending required actions for this user.
func (u *User) RequiredActions() []string {
	return u.data.RequiredActions
}

// AddRequiredAction records a required action unless already present.
func (u *User) AddRequiredAction(action string) {
	if slices.Contains(u.data.RequiredActions, action) {
		return
	}
	u.data.RequiredActions = append(u.data.RequiredActions, action)
}

// RemoveRequiredAction drops a required action.
func (u *User) RemoveRequiredAction(action string) {
	u.data.RequiredActions = slices.DeleteFunc(u.data.RequiredActions, func(a string) bool {
		return a == action
	})
}

// GroupsAndRoles returns the combined group-to-roles mapping held by the
// remote directory for this user.
func (u *User) GroupsAndRoles() map[string][]string {
	return u.data.GroupsAndRoles
}

func (u *User) SetGroupsAndRoles(groupsAndRoles map[string][]string) {
	if groupsAndRoles == nil {
		groupsAndRoles = map[string][]string{}
	}
	u.data.GroupsAndRoles = groupsAndRoles
}

func (u *User) String() string {
	return fmt.Sprintf(
		"User(id=%s, username=%s, firstName=%s, lastName=%s, email=%s, emailVerified=%t, createdTimestamp=%d, enabled=%t, groupsAndRoles=%v)",
		u.data.ID,
		u.data.Username,
		u.data.FirstName,
		u.data.LastName,
		u.data.Email,
		u.data.EmailVerified,
		u.data.CreatedTimestamp,
		u.data.Enabled,
		u.data.GroupsAndRoles,
	)
}
