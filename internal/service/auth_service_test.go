package service

import (
	"testing"
	"time"

	"github.com/kailashkoshti/udhaar-backend/internal/domain"
	"github.com/kailashkoshti/udhaar-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededAuthService(t *testing.T) (*AuthService, *testutil.MockOperatorRepository) {
	t.Helper()
	repo := testutil.NewMockOperatorRepository()
	svc := NewAuthService(repo, "test-secret", time.Hour)
	_, err := svc.SeedOperator("admin", "changeme")
	require.NoError(t, err)
	return svc, repo
}

func TestLogin_Success(t *testing.T) {
	svc, _ := seededAuthService(t)

	operator, token, err := svc.Login("admin", "changeme")
	require.NoError(t, err)
	assert.Equal(t, "admin", operator.Username)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "changeme", operator.PasswordHash)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := seededAuthService(t)

	_, _, err := svc.Login("admin", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_UnknownUsername(t *testing.T) {
	svc, _ := seededAuthService(t)

	_, _, err := svc.Login("nobody", "changeme")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestResolveOperator_Roundtrip(t *testing.T) {
	svc, _ := seededAuthService(t)

	operator, token, err := svc.Login("admin", "changeme")
	require.NoError(t, err)

	resolved, err := svc.ResolveOperator(token)
	require.NoError(t, err)
	assert.Equal(t, operator.ID, resolved.ID)
	assert.Equal(t, "admin", resolved.Username)
}

func TestResolveOperator_GarbageToken(t *testing.T) {
	svc, _ := seededAuthService(t)

	_, err := svc.ResolveOperator("not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestResolveOperator_WrongSecret(t *testing.T) {
	svc, repo := seededAuthService(t)
	_, token, err := svc.Login("admin", "changeme")
	require.NoError(t, err)

	other := NewAuthService(repo, "different-secret", time.Hour)
	_, err = other.ResolveOperator(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestResolveOperator_ExpiredToken(t *testing.T) {
	repo := testutil.NewMockOperatorRepository()
	svc := NewAuthService(repo, "test-secret", time.Minute)
	_, err := svc.SeedOperator("admin", "changeme")
	require.NoError(t, err)

	nowFunc = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	_, token, err := svc.Login("admin", "changeme")
	nowFunc = time.Now
	require.NoError(t, err)

	_, err = svc.ResolveOperator(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestResolveOperator_OperatorDeleted(t *testing.T) {
	svc, repo := seededAuthService(t)
	_, token, err := svc.Login("admin", "changeme")
	require.NoError(t, err)

	delete(repo.Operators, "admin")
	for id := range repo.ByID {
		delete(repo.ByID, id)
	}

	_, err = svc.ResolveOperator(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSeedOperator_PreservesIDOnReseed(t *testing.T) {
	svc, _ := seededAuthService(t)

	op1, _, err := svc.Login("admin", "changeme")
	require.NoError(t, err)

	_, err = svc.SeedOperator("admin", "rotated")
	require.NoError(t, err)

	op2, _, err := svc.Login("admin", "rotated")
	require.NoError(t, err)
	assert.Equal(t, op1.ID, op2.ID)

	_, _, err = svc.Login("admin", "changeme")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}
