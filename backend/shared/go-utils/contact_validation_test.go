package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsE164(t *testing.T) {
	cases := map[string]bool{
		"+15145550100":  true,
		"+442071838750": true,
		"5145550100":    false,
		"+0123456789":   false,
		"+1":            false,
	}
	for number, want := range cases {
		assert.Equal(t, want, IsE164(number), number)
	}
}

func TestContactValidator_SyntaxOnly(t *testing.T) {
	v := SyntaxOnlyContactValidator()
	ctx := context.Background()

	t.Run("Should accept a well formed email without remote checks", func(t *testing.T) {
		ok, err := v.ValidateEmail(ctx, "plumber@example.com")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Should reject a malformed email", func(t *testing.T) {
		ok, err := v.ValidateEmail(ctx, "not-an-email")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Should use the MX lookup when configured", func(t *testing.T) {
		withMX := &ContactValidator{lookupMX: func(context.Context, string) bool { return false }}
		ok, err := withMX.ValidateEmail(ctx, "plumber@nowhere.invalid")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Should accept an E.164 phone without a Twilio client", func(t *testing.T) {
		ok, err := v.ValidatePhone(ctx, "+15145550100", nil)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestPasswordHelpers(t *testing.T) {
	t.Run("Should round trip a bcrypt hash", func(t *testing.T) {
		hash, err := HashPassword("s3cretpass")
		require.NoError(t, err)
		assert.True(t, CheckPasswordHash("s3cretpass", hash))
		assert.False(t, CheckPasswordHash("wrong", hash))
	})

	t.Run("Should require letters and digits", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePassword("short1"), ErrInvalidPassword)
		assert.ErrorIs(t, ValidatePassword("lettersonly"), ErrInvalidPassword)
		assert.NoError(t, ValidatePassword("letters42"))
	})

	t.Run("Should generate temp passwords that validate", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			assert.NoError(t, ValidatePassword(TempPassword(12)))
		}
	})
}
