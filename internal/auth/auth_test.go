package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parshv1234/ChemicalVisualizer/internal/auth"
	"github.com/parshv1234/ChemicalVisualizer/internal/store/memory"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T) (*auth.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	tokens := auth.NewTokenIssuer([]byte(testSecret), "test", time.Hour)
	return auth.NewService(store, auth.NewHasher(4), tokens), store
}

func TestService_LoginAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	user, err := svc.CreateUser(ctx, auth.CreateUserRequest{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	tok, err := svc.Login(ctx, auth.LoginRequest{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	assert.True(t, tok.ExpiresAt.After(time.Now()))

	id, err := svc.Authenticate(ctx, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.ID)
	assert.Equal(t, "alice", id.Username)
}

func TestService_LoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.CreateUser(ctx, auth.CreateUserRequest{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     auth.LoginRequest
		wantErr error
	}{
		{"wrong password", auth.LoginRequest{Username: "alice", Password: "battery-staple"}, auth.ErrInvalidCredentials},
		{"unknown user", auth.LoginRequest{Username: "mallory", Password: "correct-horse"}, auth.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_LoginValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), auth.LoginRequest{Username: "alice"})
	var reqErr *auth.RequestError
	require.True(t, errors.As(err, &reqErr), "got %v", err)
	assert.Equal(t, []string{"password"}, reqErr.Fields)
	assert.Contains(t, reqErr.Error(), "password: this field is required")
}

func TestService_AuthenticateDeletedUser(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	user, err := svc.CreateUser(ctx, auth.CreateUserRequest{Username: "bob", Password: "long-enough"})
	require.NoError(t, err)
	tok, err := svc.Login(ctx, auth.LoginRequest{Username: "bob", Password: "long-enough"})
	require.NoError(t, err)

	_, err = store.DeleteUser(ctx, user.ID)
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, tok.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestService_AuthenticateGarbage(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Authenticate(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestService_CreateUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	tests := []struct {
		name       string
		req        auth.CreateUserRequest
		wantFields []string
	}{
		{"short username", auth.CreateUserRequest{Username: "ab", Password: "long-enough"}, []string{"username"}},
		{"bad characters", auth.CreateUserRequest{Username: "a b c", Password: "long-enough"}, []string{"username"}},
		{"short password", auth.CreateUserRequest{Username: "carol", Password: "short"}, []string{"password"}},
		{"both empty", auth.CreateUserRequest{}, []string{"username", "password"}},
		{"password over 72 characters", auth.CreateUserRequest{Username: "erin", Password: strings.Repeat("p", 73)}, []string{"password"}},
		{"password over 72 bytes", auth.CreateUserRequest{Username: "erin", Password: strings.Repeat("é", 40)}, []string{"password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, tt.req)
			var reqErr *auth.RequestError
			require.True(t, errors.As(err, &reqErr), "got %v", err)
			assert.Equal(t, tt.wantFields, reqErr.Fields)
		})
	}

	_, err := svc.CreateUser(ctx, auth.CreateUserRequest{Username: "frank", Password: strings.Repeat("p", 72)})
	require.NoError(t, err, "72 bytes is the bcrypt limit")

	_, err = svc.CreateUser(ctx, auth.CreateUserRequest{Username: "dave@example.com", Password: "long-enough"})
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, auth.CreateUserRequest{Username: "dave@example.com", Password: "long-enough"})
	assert.ErrorIs(t, err, auth.ErrUsernameTaken)
}
