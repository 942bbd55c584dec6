package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-chatspace-be/internal/dto"
	"ai-chatspace-be/internal/pkg/serverutils"
)

func newAuthFixture() (*fakeFactory, IAuthService) {
	factory := newFakeFactory()
	svc := NewAuthService(factory, "", "", "http://localhost:3000")
	return factory, svc
}

func TestRegisterAndLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	_, svc := newAuthFixture()

	reg, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, reg.Id, res.User.Id)
	assert.Equal(t, "Ada", res.User.Name)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	_, svc := newAuthFixture()

	req := &dto.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "correct horse"}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, serverutils.ErrConflict)
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	_, svc := newAuthFixture()

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong horse",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, serverutils.ErrUnauthorized)
}

func TestLoginUnknownEmailUnauthorized(t *testing.T) {
	_, svc := newAuthFixture()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, serverutils.ErrUnauthorized)
}
