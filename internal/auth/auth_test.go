package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse/internal/docstore"
	"pulse/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	svc, err := NewService(docstore.NewRedisStore(rdb, docstore.Options{}), "test-secret", time.Hour)
	require.NoError(t, err)
	return svc
}

func TestService_SignUpAndSignIn(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	userID, err := svc.SignUp(ctx, "Alice@Example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, userID)

	// email lookup is case-insensitive
	got, err := svc.SignIn(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestService_SignUp_Duplicate(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, "ALICE@example.com", "different456")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestService_SignUp_Validation(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("bad email", func(t *testing.T) {
		_, err := svc.SignUp(ctx, "not-an-email", "password123")
		assert.Error(t, err)
	})
	t.Run("short password", func(t *testing.T) {
		_, err := svc.SignUp(ctx, "alice@example.com", "short")
		assert.Error(t, err)
	})
}

func TestService_SignIn_WrongPassword(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, "alice@example.com", "wrongwrong")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)

	_, err = svc.SignIn(ctx, "nobody@example.com", "password123")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)
}

func TestService_TokenRoundTrip(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	token, err := svc.Token("user-1")
	require.NoError(t, err)

	sub, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)

	_, err = svc.Parse(token + "tampered")
	assert.Error(t, err)
}

func TestService_ResetTokenIsNotASessionToken(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	reset, err := svc.RequestPasswordReset(ctx, "alice@example.com")
	require.NoError(t, err)

	_, err = svc.Parse(reset)
	assert.Error(t, err, "reset token must not authenticate a session")
}

func TestService_ResetPassword(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	userID, err := svc.SignUp(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	reset, err := svc.RequestPasswordReset(ctx, "alice@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, "alice@example.com", reset, "newpassword1"))

	_, err = svc.SignIn(ctx, "alice@example.com", "password123")
	assert.Error(t, err)

	got, err := svc.SignIn(ctx, "alice@example.com", "newpassword1")
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}
