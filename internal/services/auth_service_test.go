package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agrocredbr/agrocred-api/internal/errors"
	"github.com/agrocredbr/agrocred-api/internal/repository"
	"github.com/agrocredbr/agrocred-api/pkg/config"
)

func newAuthFixture(t *testing.T) AuthService {
	t.Helper()
	return newAuthService(newTestRepos(), &config.Config{JWTSecret: "test-secret-key-for-auth-tests"})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthFixture(t)

	user, err := svc.Register(&repository.RegisterRequest{
		Email:    "ana@agrocred.com.br",
		Password: "correct-horse-battery",
		Role:     "analyst",
	})
	require.NoError(t, err)
	assert.Equal(t, "analyst", user.Role)
	assert.Empty(t, user.PasswordHash, "hash must never leave the service")

	resp, err := svc.Login("ana@agrocred.com.br", "correct-horse-battery")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, user.ID, resp.User.ID)

	validated, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, validated.ID)
}

func TestRegisterDefaultsToOperatorRole(t *testing.T) {
	svc := newAuthFixture(t)

	user, err := svc.Register(&repository.RegisterRequest{
		Email:    "novo@agrocred.com.br",
		Password: "some-long-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "operator", user.Role)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.Register(&repository.RegisterRequest{
		Email:    "x@agrocred.com.br",
		Password: "some-long-password",
		Role:     "superuser",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.CodeOf(err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthFixture(t)

	req := &repository.RegisterRequest{Email: "dup@agrocred.com.br", Password: "some-long-password"}
	_, err := svc.Register(req)
	require.NoError(t, err)

	_, err = svc.Register(req)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConflict, apperrors.CodeOf(err))
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.Register(&repository.RegisterRequest{
		Email:    "ana@agrocred.com.br",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	_, err = svc.Login("ana@agrocred.com.br", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.CodeOf(err))
}

func TestLoginUnknownUser(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.Login("ghost@agrocred.com.br", "whatever-password")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.CodeOf(err))
}

func TestRefreshTokenIssuesNewPair(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.Register(&repository.RegisterRequest{
		Email:    "ana@agrocred.com.br",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	login, err := svc.Login("ana@agrocred.com.br", "correct-horse-battery")
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.Token)
	assert.Equal(t, login.User.ID, refreshed.User.ID)
}

func TestRefreshTokenRejectsGarbage(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.RefreshToken("not-a-jwt")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.CodeOf(err))
}
