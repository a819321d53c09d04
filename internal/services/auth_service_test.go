package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegister_NormalizesEmailAndRejectsDuplicates(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.authService.Register(RegisterInput{
		Email:    "  Alice@Example.COM ",
		Password: "password123",
		Name:     "Alice",
	})
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)
	require.NotEqual(t, "password123", user.PasswordHash)

	_, err = env.authService.Register(RegisterInput{
		Email:    "alice@example.com",
		Password: "password123",
		Name:     "Alice again",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_PasswordTooShort(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.authService.Register(RegisterInput{
		Email:    "bob@example.com",
		Password: "short",
		Name:     "Bob",
	})
	require.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestLogin_VerifiesCredentialsAndActivity(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "carol@example.com")

	logged, err := env.authService.Login(LoginInput{Email: "carol@example.com", Password: "password123"})
	require.NoError(t, err)
	require.Equal(t, user.ID, logged.ID)

	_, err = env.authService.Login(LoginInput{Email: "carol@example.com", Password: "wrongpassword"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.authService.Login(LoginInput{Email: "nobody@example.com", Password: "password123"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Deactivated accounts cannot log in
	require.NoError(t, env.db.Model(user).Update("is_active", false).Error)
	_, err = env.authService.Login(LoginInput{Email: "carol@example.com", Password: "password123"})
	require.ErrorIs(t, err, ErrAccountInactive)
}
