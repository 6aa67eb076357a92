package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
)

// SystemUserRepository defines the interface for operator accounts
type SystemUserRepository interface {
	Create(ctx context.Context, user *entity.SystemUser) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.SystemUser, error)
	GetByEmail(ctx context.Context, email string) (*entity.SystemUser, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// PasswordResetTokenRepository defines the interface for password reset token operations
type PasswordResetTokenRepository interface {
	Create(ctx context.Context, token *entity.PasswordResetToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*entity.PasswordResetToken, error)
	MarkAsUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) error
}

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey retrieves an idempotency key by its key string and user ID
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)
	// Create stores a new idempotency key
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error
	// DeleteExpired removes expired idempotency keys
	DeleteExpired(ctx context.Context, now time.Time) error
}
