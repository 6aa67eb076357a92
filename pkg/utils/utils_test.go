package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugifyFoldsPortugueseAccents(t *testing.T) {
	assert.Equal(t, "padaria-sao-joao", Slugify("Padaria São João"))
	assert.Equal(t, "acai-conceicao-ltda", Slugify("  Açaí & Conceição LTDA "))
	assert.Equal(t, "2024-05-01", Slugify("2024-05-01"))
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	id := uuid.New()

	token, err := m.GenerateAccessToken(id, "admin@example.com", true)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.True(t, claims.IsAdmin)
}

func TestJWTRejectsExpiredAndForeignTokens(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := m.GenerateAccessToken(uuid.New(), "a@b.c", false)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateAccessToken(expired)
	assert.Error(t, err)

	other := NewJWTManager("another-secret", time.Hour)
	foreign, err := other.GenerateAccessToken(uuid.New(), "a@b.c", true)
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(foreign)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3nha-forte")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3nha-forte", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestHashTokenIsStable(t *testing.T) {
	token, err := RandomToken(32)
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.Equal(t, HashToken(token), HashToken(token))
	assert.NotEqual(t, token, HashToken(token))
}
