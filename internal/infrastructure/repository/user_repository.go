package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	domainRepo "github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/internal/infrastructure/database"
)

type systemUserRepository struct {
	db *gorm.DB
}

// NewSystemUserRepository creates a new operator repository
func NewSystemUserRepository(db *gorm.DB) domainRepo.SystemUserRepository {
	return &systemUserRepository{db: db}
}

func (r *systemUserRepository) Create(ctx context.Context, user *entity.SystemUser) error {
	return database.TranslateError(conn(ctx, r.db).Create(user).Error)
}

func (r *systemUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.SystemUser, error) {
	var user entity.SystemUser
	err := conn(ctx, r.db).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (r *systemUserRepository) GetByEmail(ctx context.Context, email string) (*entity.SystemUser, error) {
	var user entity.SystemUser
	err := conn(ctx, r.db).First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (r *systemUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return conn(ctx, r.db).Model(&entity.SystemUser{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

// passwordResetTokenRepository implements the PasswordResetTokenRepository interface
type passwordResetTokenRepository struct {
	db *gorm.DB
}

// NewPasswordResetTokenRepository creates a new password reset token repository
func NewPasswordResetTokenRepository(db *gorm.DB) domainRepo.PasswordResetTokenRepository {
	return &passwordResetTokenRepository{db: db}
}

// Create stores a new password reset token
func (r *passwordResetTokenRepository) Create(ctx context.Context, token *entity.PasswordResetToken) error {
	return conn(ctx, r.db).Create(token).Error
}

// GetByTokenHash retrieves a token by the hash of its value
func (r *passwordResetTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*entity.PasswordResetToken, error) {
	var resetToken entity.PasswordResetToken
	err := conn(ctx, r.db).Where("token_hash = ?", tokenHash).First(&resetToken).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resetToken, nil
}

// MarkAsUsed marks a token as used
func (r *passwordResetTokenRepository) MarkAsUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	return conn(ctx, r.db).
		Model(&entity.PasswordResetToken{}).
		Where("id = ?", id).
		Update("used_at", usedAt).Error
}

// DeleteByUser deletes all tokens of a user
func (r *passwordResetTokenRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return conn(ctx, r.db).
		Where("user_id = ?", userID).
		Delete(&entity.PasswordResetToken{}).Error
}

// DeleteExpired deletes all tokens past their expiry
func (r *passwordResetTokenRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	return conn(ctx, r.db).
		Where("expires_at < ?", now).
		Delete(&entity.PasswordResetToken{}).Error
}

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	var ikey entity.IdempotencyKey
	err := conn(ctx, r.db).
		Where("key = ? AND user_id = ?", key, userID).
		First(&ikey).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ikey, err
}

func (r *idempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	return database.TranslateError(conn(ctx, r.db).Create(ikey).Error)
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	return conn(ctx, r.db).
		Where("expires_at < ?", now).
		Delete(&entity.IdempotencyKey{}).Error
}
