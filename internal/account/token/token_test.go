package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafix/internal/account/models"
)

func newAccount() *models.Account {
	return models.New("amal@example.com", "Amal Riad", []byte("hash"), models.RoleAdmin, time.Now())
}

func TestIssueAndValidate(t *testing.T) {
	svc, err := NewService("signing-key")
	require.NoError(t, err)

	signed, err := svc.Issue(newAccount())
	require.NoError(t, err)

	claims, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "amal@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.NotEmpty(t, claims.AccountID)
}

func TestValidateRejectsForeignKey(t *testing.T) {
	issuer, err := NewService("key-one")
	require.NoError(t, err)
	validator, err := NewService("key-two")
	require.NoError(t, err)

	signed, err := issuer.Issue(newAccount())
	require.NoError(t, err)

	_, err = validator.ValidateToken(signed)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	svc, err := NewService("signing-key")
	require.NoError(t, err)
	svc.ttl = -time.Minute

	signed, err := svc.Issue(newAccount())
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc, err := NewService("signing-key")
	require.NoError(t, err)

	_, err = svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestNewServiceRequiresKey(t *testing.T) {
	_, err := NewService("")
	assert.Error(t, err)
}
