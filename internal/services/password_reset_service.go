package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/uuid"
)

// resetTokenValidity is the fixed window during which an issued token can be
// consumed.
const resetTokenValidity = time.Hour

// passwordResetService implements the reset-token state machine:
// NONE -> ISSUED -> {CONSUMED | EXPIRED}. Both terminal states delete the
// row; expiry is only ever checked lazily at use time.
type passwordResetService struct {
	db          *gorm.DB
	userService UserServicer
}

// NewPasswordResetService creates a new PasswordResetServicer.
func NewPasswordResetService(db *gorm.DB, userService UserServicer) PasswordResetServicer {
	return &passwordResetService{db: db, userService: userService}
}

// IssueToken creates a fresh reset token for the account with the given
// email. Any previously issued token for the same user is deleted first, so
// at most one token is outstanding per user.
func (s *passwordResetService) IssueToken(email string) (*models.PasswordResetToken, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email is required")
	}

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	token := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.New(),
		ExpiresAt: time.Now().Add(resetTokenValidity),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).
			Delete(&models.PasswordResetToken{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Create(token).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

// ResetPassword consumes a token: if it is unknown the attempt is rejected;
// if it is past its window the token is deleted and the attempt rejected;
// otherwise the user's password is replaced and the token deleted, so a
// second use of the same token fails as invalid.
func (s *passwordResetService) ResetPassword(token, newPassword string) error {
	if token == "" || newPassword == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "token and new password are required")
	}

	var resetToken models.PasswordResetToken
	if err := s.db.Where("token = ?", token).First(&resetToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrResetTokenInvalid
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !resetToken.Valid(time.Now()) {
		// Terminal: purge the expired token as part of handling.
		if err := s.db.Delete(&resetToken).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return apperrors.ErrResetTokenExpired
	}

	if err := s.userService.SetPassword(resetToken.UserID, newPassword); err != nil {
		return err
	}
	if err := s.db.Delete(&resetToken).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
