package testutil

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/internal/domain/repository"
)

// Users returns the operator repository
func (s *Store) Users() repository.SystemUserRepository { return userRepo{s} }

// ResetTokens returns the password reset token repository
func (s *Store) ResetTokens() repository.PasswordResetTokenRepository { return resetTokenRepo{s} }

// IdempotencyKeys returns the idempotency key repository
func (s *Store) IdempotencyKeys() repository.IdempotencyRepository { return idempotencyRepo{s} }

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *entity.SystemUser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.users {
		if strings.EqualFold(other.Email, u.Email) {
			return conflict("A user with this email already exists")
		}
	}
	r.s.stamp(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	r.s.users[u.ID] = *u
	return nil
}

func (r userRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.SystemUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*entity.SystemUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r userRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = r.s.Now()
	r.s.users[id] = u
	return nil
}

type resetTokenRepo struct{ s *Store }

func (r resetTokenRepo) Create(_ context.Context, t *entity.PasswordResetToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.s.Now()
	}
	r.s.resetTokens[t.ID] = *t
	return nil
}

func (r resetTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*entity.PasswordResetToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.resetTokens {
		if t.TokenHash == tokenHash {
			return &t, nil
		}
	}
	return nil, nil
}

func (r resetTokenRepo) MarkAsUsed(_ context.Context, id uuid.UUID, usedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.resetTokens[id]; ok {
		t.UsedAt = &usedAt
		r.s.resetTokens[id] = t
	}
	return nil
}

func (r resetTokenRepo) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, t := range r.s.resetTokens {
		if t.UserID == userID {
			delete(r.s.resetTokens, id)
		}
	}
	return nil
}

func (r resetTokenRepo) DeleteExpired(_ context.Context, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, t := range r.s.resetTokens {
		if t.ExpiresAt.Before(now) {
			delete(r.s.resetTokens, id)
		}
	}
	return nil
}

type idempotencyRepo struct{ s *Store }

func idemKey(key string, userID uuid.UUID) string {
	return userID.String() + "|" + key
}

func (r idempotencyRepo) GetByKey(_ context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k, ok := r.s.idemKeys[idemKey(key, userID)]
	if !ok {
		return nil, nil
	}
	return &k, nil
}

func (r idempotencyRepo) Create(_ context.Context, k *entity.IdempotencyKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id := idemKey(k.Key, k.UserID)
	if _, ok := r.s.idemKeys[id]; ok {
		return conflict("Idempotency key already used")
	}
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	if k.CreatedAt.IsZero() {
		k.CreatedAt = r.s.Now()
	}
	r.s.idemKeys[id] = *k
	return nil
}

func (r idempotencyRepo) DeleteExpired(_ context.Context, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, k := range r.s.idemKeys {
		if k.IsExpired(now) {
			delete(r.s.idemKeys, id)
		}
	}
	return nil
}
