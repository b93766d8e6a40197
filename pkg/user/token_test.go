package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyToken(t *testing.T) {
	now := time.Now()

	t.Run("round-trips the user id", func(t *testing.T) {
		token, err := IssueToken("user-1", "secret", time.Hour, now)
		require.NoError(t, err)

		userId, err := VerifyToken(token, "secret")

		require.NoError(t, err)
		assert.Equal(t, "user-1", userId)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		token, err := IssueToken("user-1", "secret", time.Hour, now)
		require.NoError(t, err)

		_, err = VerifyToken(token, "other-secret")

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		token, err := IssueToken("user-1", "secret", time.Hour, now.Add(-2*time.Hour))
		require.NoError(t, err)

		_, err = VerifyToken(token, "secret")

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := VerifyToken("not-a-token", "secret")

		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
