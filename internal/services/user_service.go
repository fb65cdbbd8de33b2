package services

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// Register creates a new user account. Username, email, and phone must each
// be globally unique; optional groups (by name) and permissions (by
// codename) are attached on creation.
func (s *userService) Register(params RegisterParams) (*models.User, error) {
	username := strings.TrimSpace(params.Username)
	email := strings.ToLower(strings.TrimSpace(params.Email))
	phone := strings.TrimSpace(params.Phone)

	if username == "" || email == "" || phone == "" || params.Password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "username, email, phone, and password are required")
	}

	if err := s.checkUnique("username", username, ""); err != nil {
		return nil, err
	}
	if err := s.checkUnique("email", email, ""); err != nil {
		return nil, err
	}
	if err := s.checkUnique("phone", phone, ""); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Phone:    phone,
		Password: string(hashedPassword),
		IsActive: true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(params.Groups) > 0 {
			groups, err := groupsByName(tx, params.Groups)
			if err != nil {
				return err
			}
			if err := tx.Model(user).Association("Groups").Replace(groups); err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if len(params.Permissions) > 0 {
			perms, err := permissionsByCodename(tx, params.Permissions)
			if err != nil {
				return err
			}
			if err := tx.Model(user).Association("Permissions").Replace(perms); err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetUserWithAccess(user.ID)
}

// checkUnique reports a field-specific conflict error if another user
// (excluding excludeID) already holds the value in the given column.
func (s *userService) checkUnique(column, value, excludeID string) error {
	q := s.db.Model(&models.User{}).Where(column+" = ?", value)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return nil
	}
	switch column {
	case "username":
		return apperrors.ErrDuplicateUsername
	case "email":
		return apperrors.ErrDuplicateEmail
	default:
		return apperrors.ErrDuplicatePhone
	}
}

// groupsByName resolves group names to rows, ignoring unknown names.
func groupsByName(tx *gorm.DB, names []string) ([]models.Group, error) {
	var groups []models.Group
	if err := tx.Where("name IN ?", names).Find(&groups).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return groups, nil
}

// permissionsByCodename resolves permission codenames to rows, ignoring
// unknown codenames.
func permissionsByCodename(tx *gorm.DB, codenames []string) ([]models.Permission, error) {
	var perms []models.Permission
	if err := tx.Where("codename IN ?", codenames).Find(&perms).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return perms, nil
}

// AttemptLogin verifies the credentials and stamps last_login on success.
func (s *userService) AttemptLogin(username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ? AND is_active = ?", username, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.db.Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetUserWithAccess(user.ID)
}

// GetUserByID retrieves a user by ID.
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserWithAccess retrieves a user with groups, group permissions, and
// direct permissions preloaded.
func (s *userService) GetUserWithAccess(id string) (*models.User, error) {
	var user models.User
	if err := s.db.
		Preload("Groups.Permissions").
		Preload("Permissions").
		First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// UpdateProfile applies self-service profile changes. Username and email are
// immutable here; only phone and profile image can change.
func (s *userService) UpdateProfile(userID string, phone, profileImage *string) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if phone != nil {
		trimmed := strings.TrimSpace(*phone)
		if err := s.checkUnique("phone", trimmed, user.ID); err != nil {
			return nil, err
		}
		user.Phone = trimmed
	}
	if profileImage != nil {
		user.ProfileImage = *profileImage
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetUserWithAccess(user.ID)
}

// ListUsers retrieves a paginated, filtered, ordered list of users with
// their groups and permissions preloaded.
func (s *userService) ListUsers(filter UserFilter, page pagination.PageRequest) (*pagination.PageResponse[models.User], error) {
	page.Defaults()

	var totalItems int64
	if err := filter.Apply(s.db.Model(&models.User{})).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var users []models.User
	if err := filter.Apply(s.db.Model(&models.User{})).
		Preload("Groups.Permissions").
		Preload("Permissions").
		Order(filter.OrderClause).
		Scopes(pagination.Paginate(page)).
		Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(users, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// ListAllUsers retrieves the complete filtered, ordered user set without
// pagination. CSV export uses this.
func (s *userService) ListAllUsers(filter UserFilter) ([]models.User, error) {
	var users []models.User
	if err := filter.Apply(s.db.Model(&models.User{})).
		Preload("Groups.Permissions").
		Preload("Permissions").
		Order(filter.OrderClause).
		Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return users, nil
}

// UpdateUser applies the non-nil fields of params to a user (admin side).
func (s *userService) UpdateUser(userID string, params UpdateUserParams) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if params.Username != nil {
		trimmed := strings.TrimSpace(*params.Username)
		if err := s.checkUnique("username", trimmed, user.ID); err != nil {
			return nil, err
		}
		user.Username = trimmed
	}
	if params.Email != nil {
		lowered := strings.ToLower(strings.TrimSpace(*params.Email))
		if err := s.checkUnique("email", lowered, user.ID); err != nil {
			return nil, err
		}
		user.Email = lowered
	}
	if params.Phone != nil {
		trimmed := strings.TrimSpace(*params.Phone)
		if err := s.checkUnique("phone", trimmed, user.ID); err != nil {
			return nil, err
		}
		user.Phone = trimmed
	}
	if params.IsActive != nil {
		user.IsActive = *params.IsActive
	}
	if params.IsStaff != nil {
		user.IsStaff = *params.IsStaff
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if params.Groups != nil {
			groups, err := groupsByName(tx, *params.Groups)
			if err != nil {
				return err
			}
			if err := tx.Model(user).Association("Groups").Replace(groups); err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if params.Permissions != nil {
			perms, err := permissionsByCodename(tx, *params.Permissions)
			if err != nil {
				return err
			}
			if err := tx.Model(user).Association("Permissions").Replace(perms); err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetUserWithAccess(user.ID)
}

// DeleteUser removes a user. Deleting your own account is forbidden.
func (s *userService) DeleteUser(actorID, userID string) error {
	if actorID == userID {
		return apperrors.ErrSelfDelete
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	// Clear membership edges along with the row.
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Association("Groups").Clear(); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Model(user).Association("Permissions").Clear(); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(user).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// SetPassword bcrypt-hashes and stores a new password for the user.
func (s *userService) SetPassword(userID, password string) error {
	if password == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "password is required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("password", string(hashed)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// StoreRefreshTokenHash stores the SHA-256 hash of the user's active refresh token.
func (s *userService) StoreRefreshTokenHash(userID, tokenHash string) error {
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("refresh_token_hash", tokenHash).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetRefreshTokenHash returns the stored refresh token hash for the user.
func (s *userService) GetRefreshTokenHash(userID string) (string, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}
	return user.RefreshTokenHash, nil
}

// ClearRefreshTokenHash invalidates the user's refresh token on logout.
func (s *userService) ClearRefreshTokenHash(userID string) error {
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("refresh_token_hash", "").Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
