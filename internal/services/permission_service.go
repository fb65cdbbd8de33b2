package services

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
)

// permissionService handles the read-mostly permission catalog.
type permissionService struct {
	db *gorm.DB
}

// NewPermissionService creates a new PermissionServicer.
func NewPermissionService(db *gorm.DB) PermissionServicer {
	return &permissionService{db: db}
}

// ListPermissions returns permissions, optionally filtered by a
// case-insensitive codename substring, ordered by codename.
func (s *permissionService) ListPermissions(search string) ([]models.Permission, error) {
	q := s.db.Model(&models.Permission{})
	if search = strings.TrimSpace(search); search != "" {
		q = q.Where("LOWER(codename) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var perms []models.Permission
	if err := q.Order("codename ASC").Find(&perms).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return perms, nil
}

// defaultPermissions is the seed catalog: add/change/delete/view per managed
// resource, in the shape admin UIs expect.
var defaultPermissions = func() []models.Permission {
	resources := []string{"user", "group", "category", "transaction", "budgetgoal"}
	actions := []string{"add", "change", "delete", "view"}

	perms := make([]models.Permission, 0, len(resources)*len(actions))
	for _, r := range resources {
		for _, a := range actions {
			perms = append(perms, models.Permission{
				Codename: a + "_" + r,
				Name:     "Can " + a + " " + r,
			})
		}
	}
	return perms
}()

// EnsureDefaults idempotently inserts the default permission catalog.
// Existing codenames are left untouched.
func (s *permissionService) EnsureDefaults() error {
	for _, p := range defaultPermissions {
		perm := p
		if err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "codename"}},
			DoNothing: true,
		}).Create(&perm).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}
