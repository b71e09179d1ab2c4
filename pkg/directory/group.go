package directory

import "slices"

// Group is a view over one named group attached to a user, materialized on
// demand from the entity's groups-and-roles mapping. The remote directory
// models groups as name-scoped labels, not addressable entities, so a group
// has no identifier of its own: two materializations with the same name are
// interchangeable. Mutations on a view are local-only and have no durable
// effect on the remote directory.
type Group struct {
	name       string
	realm      string
	roles      []string
	attributes map[string][]string
}

// NewGroup materializes a group view for the given realm.
func NewGroup(name string, roles []string, realm string) *Group {
	return &Group{
		name:       name,
		roles:      roles,
		realm:      realm,
		attributes: map[string][]string{},
	}
}

// ID of a group is its name.
func (g *Group) ID() string {
	return g.name
}

func (g *Group) Name() string {
	return g.name
}

func (g *Group) Realm() string {
	return g.realm
}

// Roles materializes the role views held in this group.
func (g *Group) Roles() []*Role {
	roles := make([]*Role, 0, len(g.roles))
	for _, name := range g.roles {
		roles = append(roles, NewRole(name, g.realm))
	}
	return roles
}

// HasRole reports whether this group holds the given role, by name.
func (g *Group) HasRole(role *Role) bool {
	return role != nil && slices.Contains(g.roles, role.Name())
}

// GrantRole adds a role to this view only; the remote directory never sees
// the grant.
func (g *Group) GrantRole(role *Role) {
	if role == nil || slices.Contains(g.roles, role.Name()) {
		return
	}
	g.roles = append(g.roles, role.Name())
}

// RevokeRole removes a role from this view only.
func (g *Group) RevokeRole(role *Role) {
	if role == nil {
		return
	}
	g.roles = slices.DeleteFunc(g.roles, func(name string) bool {
		return name == role.Name()
	})
}

// Equal compares groups by name alone.
func (g *Group) Equal(other *Group) bool {
	return other != nil && g.name == other.name
}

func (g *Group) SetSingleAttribute(name, value string) {
	g.attributes[name] = []string{value}
}

func (g *Group) SetAttribute(name string, values []string) {
	g.attributes[name] = values
}

func (g *Group) RemoveAttribute(name string) {
	delete(g.attributes, name)
}

func (g *Group) FirstAttribute(name string) string {
	values := g.attributes[name]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (g *Group) Attribute(name string) []string {
	return g.attributes[name]
}

func (g *Group) Attributes() map[string][]string {
	return g.attributes
}
