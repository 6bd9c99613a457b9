package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicfix/civicfix-api/internal/models"
	"github.com/civicfix/civicfix-api/internal/repository"
	appErrors "github.com/civicfix/civicfix-api/pkg/errors"
)

type mockUserRepo struct {
	created   *models.User
	createErr error
	byEmail   *models.User
	findErr   error
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = "u1"
	m.created = user
	return nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.byEmail, nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "civicfix-api",
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	info, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Resident",
		Email:    "resident@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", info.ID)
	require.NotNil(t, repo.created)
	assert.NotEqual(t, "secret123", repo.created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created.PasswordHash), []byte("secret123")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{createErr: repository.ErrDuplicateEmail}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Resident",
		Email:    "resident@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRegisterValidatesPayload(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, nil, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Resident",
		Email:    "not-an-email",
		Password: "short",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockUserRepo{byEmail: &models.User{
		ID:           "u1",
		Name:         "Resident",
		Email:        "resident@example.com",
		PasswordHash: string(hash),
	}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "resident@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "u1", res.User.ID)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "resident@example.com", claims.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockUserRepo{byEmail: &models.User{
		ID:           "u1",
		Email:        "resident@example.com",
		PasswordHash: string(hash),
	}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email:    "resident@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := &mockUserRepo{findErr: sql.ErrNoRows}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ghost@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	// Same error as a wrong password so callers cannot probe for accounts.
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, nil, nil, testAuthConfig())

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrLoginRequired.Code, appErrors.FromError(err).Code)

	other := NewAuthService(&mockUserRepo{}, nil, nil, AuthConfig{
		AccessTokenSecret: "different-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "civicfix-api",
	})
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	otherRepo := &mockUserRepo{byEmail: &models.User{ID: "u2", Email: "b@example.com", PasswordHash: string(hash)}}
	other.repo = otherRepo

	res, err := other.Login(context.Background(), models.LoginRequest{Email: "b@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(res.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrLoginRequired.Code, appErrors.FromError(err).Code)
}
