package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTResolverRoundTrip(t *testing.T) {
	r := NewJWTResolver("secret")

	token, err := r.Issue("user-1")
	require.NoError(t, err)

	userID, err := r.ResolveIdentity(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestJWTResolverRejects(t *testing.T) {
	ctx := context.Background()
	r := NewJWTResolver("secret")

	other, err := NewJWTResolver("another-secret").Issue("user-1")
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	expired := NewJWTResolver("secret")
	expired.now = func() time.Time { return time.Now().AddDate(-2, 0, 0) }
	old, err := expired.Issue("user-1")
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":        "",
		"garbage":      "not-a-jwt",
		"wrong secret": other,
		"no user_id":   noUser,
		"expired":      old,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := r.ResolveIdentity(ctx, token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnauthorized))
		})
	}
}
