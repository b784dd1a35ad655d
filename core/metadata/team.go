// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package metadata

// Permission values carried by team memberships. The platform only
// supports a single true owner per team; every other role is granted
// through membership additions.
const (
	PermissionOwner  = "owner"
	PermissionAdmin  = "admin"
	PermissionMember = "member"
)

// User is a platform user record.
type User Attrs

// Username returns the user's identity key.
func (u User) Username() string {
	return Attrs(u).Username()
}

// IsAdmin reports whether the user is a site administrator.
func (u User) IsAdmin() bool {
	admin, _ := u["admin"].(bool)
	return admin
}

// Team is a platform team record, including its membership list under
// the "teamMembers" attribute.
type Team Attrs

// Username returns the team's handle, which is its identity key.
func (t Team) Username() string {
	return Attrs(t).Username()
}

// Members returns the team's membership entries in record order.
func (t Team) Members() []Member {
	raw, ok := t["teamMembers"].([]interface{})
	if !ok {
		return nil
	}
	members := make([]Member, 0, len(raw))
	for _, entry := range raw {
		if m, ok := entry.(map[string]interface{}); ok {
			members = append(members, Member(m))
		}
	}
	return members
}

// Owners returns the memberships holding the owner permission, in
// record order.
func (t Team) Owners() []Member {
	var owners []Member
	for _, m := range t.Members() {
		if m.Permission() == PermissionOwner {
			owners = append(owners, m)
		}
	}
	return owners
}

// CreatePayload returns the body used to recreate the team on the
// destination. Only the handle survives; membership is replayed
// separately and everything else is destination-assigned.
func (t Team) CreatePayload() Attrs {
	return Attrs{
		"type":     "organization",
		"username": t.Username(),
	}
}

// Member is one (team, user) membership entry.
type Member Attrs

// Username returns the member's identity key.
func (m Member) Username() string {
	return Attrs(m).Username()
}

// Permission returns the member's role on the team.
func (m Member) Permission() string {
	p, _ := m["permission"].(string)
	return p
}

// WithPermission returns a copy of the membership with its role
// replaced.
func (m Member) WithPermission(permission string) Member {
	out := Member(Attrs(m).Copy())
	out["permission"] = permission
	return out
}

// AddPayload returns the body used to add the member to a team. The
// platform rejects unknown fields on membership adds, so only the
// identity and role are kept.
func (m Member) AddPayload() Attrs {
	return Attrs{
		"username":   m.Username(),
		"permission": m.Permission(),
	}
}

// UserAttrs converts user records to raw attribute records.
func UserAttrs(users []User) []Attrs {
	out := make([]Attrs, len(users))
	for i, u := range users {
		out[i] = Attrs(u)
	}
	return out
}

// TeamAttrs converts team records to raw attribute records.
func TeamAttrs(teams []Team) []Attrs {
	out := make([]Attrs, len(teams))
	for i, t := range teams {
		out[i] = Attrs(t)
	}
	return out
}

// MemberAttrs converts membership records to raw attribute records.
func MemberAttrs(members []Member) []Attrs {
	out := make([]Attrs, len(members))
	for i, m := range members {
		out[i] = Attrs(m)
	}
	return out
}
