package models

// Group represents a named set of permissions that users can belong to.
// Deleting a group removes only the membership edges, never the users.
type Group struct {
	Base
	Name        string       `gorm:"size:150;uniqueIndex;not null" json:"name"`
	Permissions []Permission `gorm:"many2many:group_permissions;constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
	Users       []User       `gorm:"many2many:user_groups;constraint:OnDelete:CASCADE" json:"users,omitempty"`
}

// PermissionCodenames returns the codenames of the group's permissions.
func (g *Group) PermissionCodenames() []string {
	codenames := make([]string, 0, len(g.Permissions))
	for _, p := range g.Permissions {
		codenames = append(codenames, p.Codename)
	}
	return codenames
}
