package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"spendfy/internal/core"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte(strings.Repeat("k", MinSecretLength))

func TestNewIssuerRejectsShortSecret(t *testing.T) {
	_, err := NewIssuer([]byte("short"))
	require.ErrorIs(t, err, ErrWeakSecret)
}

func TestIssueAndVerify(t *testing.T) {
	iss, err := NewIssuer(testSecret)
	require.NoError(t, err)

	token, err := iss.Issue("ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", iss.Verify(token))
}

func TestTokenClaims(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	iss, err := NewIssuer(testSecret, WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	token, err := iss.Issue("ana@example.com")
	require.NoError(t, err)

	var claims jwt.RegisteredClaims
	_, _, err = jwt.NewParser().ParseUnverified(token, &claims)
	require.NoError(t, err)
	assert.Equal(t, DefaultIssuer, claims.Issuer)
	assert.Equal(t, fixed.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixed.Add(2*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestVerifyFailsClosed(t *testing.T) {
	now := time.Now()
	iss, err := NewIssuer(testSecret, WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	token, err := iss.Issue("ana@example.com")
	require.NoError(t, err)

	other, err := NewIssuer([]byte(strings.Repeat("x", MinSecretLength)))
	require.NoError(t, err)
	foreign, err := NewIssuer(testSecret, WithIssuer("someone else"))
	require.NoError(t, err)
	foreignToken, err := foreign.Issue("ana@example.com")
	require.NoError(t, err)

	later, err := NewIssuer(testSecret, WithClock(func() time.Time { return now.Add(3 * time.Hour) }))
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "ana@example.com", Issuer: DefaultIssuer})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]struct {
		iss   *Issuer
		token string
	}{
		"empty":        {iss, ""},
		"garbage":      {iss, "not.a.token"},
		"tampered":     {iss, token[:len(token)-2] + "xx"},
		"wrong secret": {other, token},
		"wrong issuer": {iss, foreignToken},
		"expired":      {later, token},
		"alg none":     {iss, unsigned},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, tc.iss.Verify(tc.token))
		})
	}
}

func TestHasher(t *testing.T) {
	h, err := NewHasher(4)
	require.NoError(t, err)

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, h.Compare(hash, "secret1"))
	assert.False(t, h.Compare(hash, "secret2"))
	assert.False(t, h.Compare("corrupt", "secret1"))
	h.CompareDummy("anything")

	_, err = NewHasher(99)
	assert.Error(t, err)
}

func TestHasherRejectsLongPasswords(t *testing.T) {
	h, err := NewHasher(4)
	require.NoError(t, err)

	// 40 runes, 80 bytes
	_, err = h.Hash(strings.Repeat("é", 40))
	require.True(t, errors.Is(err, core.ErrValidation), "got %v", err)
	var cerr *core.Error
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, cerr.Fields["password"], "72 bytes")

	_, err = h.Hash(strings.Repeat("é", 36))
	assert.NoError(t, err)
}
