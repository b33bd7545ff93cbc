package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"talksy/errors"
)

func TestTokens_Generate_Then_Validate(t *testing.T) {
	req := require.New(t)
	tokens := NewTokens([]byte("test-secret"), time.Hour)

	raw, err := tokens.Generate("user-42")
	req.NoError(err)

	claims, err := tokens.Validate(raw)
	req.NoError(err)
	req.Equal("user-42", claims.UserID)
	req.Equal("talksy", claims.Issuer)
}

func TestTokens_Validate_Rejects_Wrong_Secret(t *testing.T) {
	req := require.New(t)
	raw, err := NewTokens([]byte("secret-a"), time.Hour).Generate("user-42")
	req.NoError(err)

	_, err = NewTokens([]byte("secret-b"), time.Hour).Validate(raw)

	req.Error(err)
}

func TestTokens_Validate_Rejects_Expired(t *testing.T) {
	req := require.New(t)
	tokens := NewTokens([]byte("test-secret"), -time.Minute)

	raw, err := tokens.Generate("user-42")
	req.NoError(err)

	_, err = tokens.Validate(raw)

	req.Error(err)
}

func TestPassword_Hash_And_Compare(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("Str0ngPassword")
	req.NoError(err)
	req.NotEqual("Str0ngPassword", hash)

	match, err := ComparePassword("Str0ngPassword", hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("WrongPassword1", hash)
	req.NoError(err)
	req.False(match)
}

func TestPassword_Two_Hashes_Of_Same_Password_Differ(t *testing.T) {
	req := require.New(t)

	// Random salt per hash
	h1, err := HashPassword("Str0ngPassword")
	req.NoError(err)
	h2, err := HashPassword("Str0ngPassword")
	req.NoError(err)

	req.NotEqual(h1, h2)
}

func TestValidateSignup(t *testing.T) {
	base := SignupRequest{
		FullName:        "Ada Lovelace",
		Email:           "ada@example.com",
		Password:        "Analytic4l",
		ConfirmPassword: "Analytic4l",
	}

	t.Run("valid request passes", func(t *testing.T) {
		require.NoError(t, ValidateSignup(base))
	})

	t.Run("mismatched confirmation fails", func(t *testing.T) {
		r := base
		r.ConfirmPassword = "Different1x"
		require.ErrorIs(t, ValidateSignup(r), errors.ErrPasswordMismatch)
	})

	t.Run("weak password fails", func(t *testing.T) {
		r := base
		r.Password = "alllowercase"
		r.ConfirmPassword = r.Password
		require.ErrorIs(t, ValidateSignup(r), errors.ErrInvalidPassword)
	})

	t.Run("bad email fails", func(t *testing.T) {
		r := base
		r.Email = "not-an-email"
		require.Error(t, ValidateSignup(r))
	})
}
