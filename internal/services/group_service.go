package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// groupService handles group administration.
type groupService struct {
	db *gorm.DB
}

// NewGroupService creates a new GroupServicer.
func NewGroupService(db *gorm.DB) GroupServicer {
	return &groupService{db: db}
}

// ListGroups retrieves a paginated list of groups, optionally filtered by a
// case-insensitive name substring.
func (s *groupService) ListGroups(search string, page pagination.PageRequest) (*pagination.PageResponse[models.Group], error) {
	page.Defaults()

	base := s.db.Model(&models.Group{})
	if search = strings.TrimSpace(search); search != "" {
		base = base.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var groups []models.Group
	if err := base.Preload("Permissions").
		Scopes(pagination.Paginate(page)).
		Order("name ASC").
		Find(&groups).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(groups, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// CreateGroup creates a group with the given permission codenames attached.
// Unknown codenames are ignored.
func (s *groupService) CreateGroup(name string, permissionCodenames []string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "group name is required")
	}

	var count int64
	if err := s.db.Model(&models.Group{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateGroup
	}

	group := &models.Group{Name: name}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(permissionCodenames) > 0 {
			perms, err := permissionsByCodename(tx, permissionCodenames)
			if err != nil {
				return err
			}
			if err := tx.Model(group).Association("Permissions").Replace(perms); err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetGroupByID(group.ID)
}

// GetGroupByID retrieves a group with its permissions preloaded.
func (s *groupService) GetGroupByID(groupID string) (*models.Group, error) {
	var group models.Group
	if err := s.db.Preload("Permissions").First(&group, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &group, nil
}

// UpdateGroup renames a group and/or replaces its permission set.
func (s *groupService) UpdateGroup(groupID string, name *string, permissionCodenames *[]string) (*models.Group, error) {
	group, err := s.GetGroupByID(groupID)
	if err != nil {
		return nil, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "group name is required")
		}
		var count int64
		if err := s.db.Model(&models.Group{}).
			Where("name = ? AND id <> ?", trimmed, group.ID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return nil, apperrors.ErrDuplicateGroup
		}
		group.Name = trimmed
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(group).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if permissionCodenames != nil {
			perms, err := permissionsByCodename(tx, *permissionCodenames)
			if err != nil {
				return err
			}
			if err := tx.Model(group).Association("Permissions").Replace(perms); err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetGroupByID(group.ID)
}

// DeleteGroup removes a group and its membership edges, returning the
// deleted group for the response message.
func (s *groupService) DeleteGroup(groupID string) (*models.Group, error) {
	group, err := s.GetGroupByID(groupID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return deleteGroupWithEdges(tx, group)
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// BulkDeleteGroups deletes every group in groupIDs, together with their
// membership edges, inside a single transaction: either all of them go or
// none do. Returns the number of groups deleted.
func (s *groupService) BulkDeleteGroups(groupIDs []string) (int64, error) {
	if len(groupIDs) == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "ids must be a non-empty list")
	}

	var groups []models.Group
	if err := s.db.Where("id IN ?", groupIDs).Find(&groups).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(groups) == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrGroupNotFound, "No groups found to delete")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i := range groups {
			if err := deleteGroupWithEdges(tx, &groups[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int64(len(groups)), nil
}

// deleteGroupWithEdges clears a group's user and permission edges, then
// deletes the row. Users themselves are never touched.
func deleteGroupWithEdges(tx *gorm.DB, group *models.Group) error {
	if err := tx.Model(group).Association("Users").Clear(); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := tx.Model(group).Association("Permissions").Clear(); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := tx.Delete(group).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
