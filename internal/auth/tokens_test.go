package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parshv1234/ChemicalVisualizer/internal/core"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func TestTokenIssuer_RoundTrip(t *testing.T) {
	p := NewTokenIssuer(secret, "chemical-visualizer", time.Hour)

	token, exp, err := p.Issue(core.Identity{ID: "u1", Username: "alice"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	id, err := p.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, &core.Identity{ID: "u1", Username: "alice"}, id)
}

func TestTokenIssuer_Expired(t *testing.T) {
	p := NewTokenIssuer(secret, "chemical-visualizer", time.Minute)
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return issued }

	token, _, err := p.Issue(core.Identity{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	p.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = p.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
	assert.Contains(t, err.Error(), "expired")
}

func TestTokenIssuer_Rejects(t *testing.T) {
	p := NewTokenIssuer(secret, "chemical-visualizer", time.Hour)
	good, _, err := p.Issue(core.Identity{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	otherSecret := NewTokenIssuer([]byte(strings.Repeat("x", 32)), "chemical-visualizer", time.Hour)
	forged, _, err := otherSecret.Issue(core.Identity{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	otherIssuer := NewTokenIssuer(secret, "someone-else", time.Hour)
	wrongIss, _, err := otherIssuer.Issue(core.Identity{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "chemical-visualizer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: "chemical-visualizer"},
	}).SignedString(secret)
	require.NoError(t, err)

	tests := map[string]string{
		"wrong secret": forged,
		"wrong issuer": wrongIss,
		"alg none":     none,
		"no expiry":    noExp,
		"truncated":    good[:len(good)-4],
		"empty":        "",
		"not a jwt":    "abc",
	}

	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := p.Verify(tok)
			assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)
		})
	}
}

func TestNewHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, 10, NewHasher(0).Cost)
	assert.Equal(t, 4, NewHasher(2).Cost)
	assert.Equal(t, 31, NewHasher(40).Cost)
	assert.Equal(t, 12, NewHasher(12).Cost)
}

func TestHasher_Compare(t *testing.T) {
	h := NewHasher(4)
	hash, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hash, "s3cret-pass"))
	assert.Error(t, h.Compare(hash, "wrong"))
}
