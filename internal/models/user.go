package models

import "time"

// User represents the user model in the database
type User struct {
	Base
	Username         string       `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Email            string       `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone            string       `gorm:"size:32;uniqueIndex;not null" json:"phone"`
	Password         string       `gorm:"not null" json:"-"`
	ProfileImage     string       `json:"profile_image,omitempty"`
	IsActive         bool         `gorm:"default:true" json:"is_active"`
	IsStaff          bool         `gorm:"default:false" json:"is_staff"`
	RefreshTokenHash string       `gorm:"size:64" json:"-"`
	LastLoginAt      *time.Time   `json:"last_login,omitempty"`
	Groups           []Group      `gorm:"many2many:user_groups;constraint:OnDelete:CASCADE" json:"groups,omitempty"`
	Permissions      []Permission `gorm:"many2many:user_permissions;constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
}

// GroupNames returns the names of the user's groups.
func (u *User) GroupNames() []string {
	names := make([]string, 0, len(u.Groups))
	for _, g := range u.Groups {
		names = append(names, g.Name)
	}
	return names
}

// AllPermissionCodenames returns the codenames of the user's direct
// permissions plus those inherited through group membership, deduplicated.
func (u *User) AllPermissionCodenames() []string {
	seen := make(map[string]bool)
	codenames := make([]string, 0, len(u.Permissions))
	for _, p := range u.Permissions {
		if !seen[p.Codename] {
			seen[p.Codename] = true
			codenames = append(codenames, p.Codename)
		}
	}
	for _, g := range u.Groups {
		for _, p := range g.Permissions {
			if !seen[p.Codename] {
				seen[p.Codename] = true
				codenames = append(codenames, p.Codename)
			}
		}
	}
	return codenames
}
