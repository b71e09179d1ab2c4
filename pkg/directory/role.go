package directory

import "slices"

// Role is a view over one named role attached to a user, materialized on
// demand. Like groups, roles are name-scoped labels in the remote directory:
// identity is the name, and mutations on a view are local-only.
type Role struct {
	name       string
	realm      string
	composites []*Role
	attributes map[string][]string
}

// NewRole materializes a role view for the given realm.
func NewRole(name, realm string) *Role {
	return &Role{
		name:       name,
		realm:      realm,
		attributes: map[string][]string{},
	}
}

// ID of a role is its name.
func (r *Role) ID() string {
	return r.name
}

func (r *Role) Name() string {
	return r.name
}

func (r *Role) Realm() string {
	return r.realm
}

// Equal compares roles by name alone.
func (r *Role) Equal(other *Role) bool {
	return other != nil && r.name == other.name
}

// IsComposite reports whether locally added composite roles exist.
func (r *Role) IsComposite() bool {
	return len(r.composites) > 0
}

// AddComposite attaches a composite role to this view only.
func (r *Role) AddComposite(role *Role) {
	if role == nil {
		return
	}
	r.composites = append(r.composites, role)
}

// RemoveComposite detaches a composite role from this view.
func (r *Role) RemoveComposite(role *Role) {
	if role == nil {
		return
	}
	r.composites = slices.DeleteFunc(r.composites, func(c *Role) bool {
		return c.Equal(role)
	})
}

// Composites returns the locally attached composite roles.
func (r *Role) Composites() []*Role {
	return r.composites
}

// HasRole reports whether the given role is among the composites.
func (r *Role) HasRole(role *Role) bool {
	if role == nil {
		return false
	}
	return slices.ContainsFunc(r.composites, func(c *Role) bool {
		return c.Equal(role)
	})
}

func (r *Role) SetSingleAttribute(name, value string) {
	r.attributes[name] = []string{value}
}

func (r *Role) SetAttribute(name string, values []string) {
	r.attributes[name] = values
}

func (r *Role) RemoveAttribute(name string) {
	delete(r.attributes, name)
}

func (r *Role) FirstAttribute(name string) string {
	values := r.attributes[name]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (r *Role) Attribute(name string) []string {
	return r.attributes[name]
}

func (r *Role) Attributes() map[string][]string {
	return r.attributes
}
