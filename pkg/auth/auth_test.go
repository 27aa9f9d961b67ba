package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anBertoli/snap-share/pkg/store"
	"github.com/anBertoli/snap-share/pkg/visibility"
)

var ada = store.User{ID: 7, Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"}

func newTokenService(t *testing.T, now func() time.Time) *TokenService {
	t.Helper()
	ts, err := NewTokenService(Config{Secret: "test-secret", Algorithm: "HS256"})
	require.NoError(t, err)
	return ts.WithClock(now)
}

func TestNewTokenService(t *testing.T) {
	_, err := NewTokenService(Config{Secret: "", Algorithm: "HS256"})
	assert.Error(t, err)

	for _, alg := range []string{"RS256", "ES256", "none", "HS1024", ""} {
		_, err = NewTokenService(Config{Secret: "s", Algorithm: alg})
		assert.Error(t, err, alg)
	}
	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		_, err = NewTokenService(Config{Secret: "s", Algorithm: alg})
		assert.NoError(t, err, alg)
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ts := newTokenService(t, func() time.Time { return start })

	token, err := ts.Issue(ada, 15*time.Minute)
	require.NoError(t, err)

	identity, err := ts.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, ada.ID, identity.UserID)
	assert.Equal(t, ada.Email, identity.Email)
	assert.Equal(t, ada.FirstName, identity.FirstName)
	assert.Equal(t, ada.LastName, identity.LastName)
	assert.True(t, identity.ExpiresAt.Equal(start.Add(15*time.Minute)))
}

func TestIssueRequiresPositiveTTL(t *testing.T) {
	ts := newTokenService(t, time.Now)
	_, err := ts.Issue(ada, 0)
	assert.Error(t, err)
	_, err = ts.Issue(ada, -time.Second)
	assert.Error(t, err)
}

// A token verifies at any instant strictly before now + ttl and is expired from then on,
// even when the issue instant is not on a whole second.
func TestExpiryBoundary(t *testing.T) {
	issued := time.Date(2024, 3, 1, 10, 0, 0, 400_000_000, time.UTC)
	ttl := 2 * time.Second

	token, err := newTokenService(t, func() time.Time { return issued }).Issue(ada, ttl)
	require.NoError(t, err)

	verifyAt := func(at time.Time) error {
		_, err := newTokenService(t, func() time.Time { return at }).Verify(token)
		return err
	}

	assert.NoError(t, verifyAt(issued))
	assert.NoError(t, verifyAt(issued.Add(ttl-time.Millisecond)))
	assert.ErrorIs(t, verifyAt(issued.Add(ttl+time.Second)), ErrExpiredToken)
	assert.ErrorIs(t, verifyAt(issued.Add(time.Hour)), ErrExpiredToken)
}

func TestVerifyRejects(t *testing.T) {
	now := time.Now()
	ts := newTokenService(t, func() time.Time { return now })
	valid, err := ts.Issue(ada, time.Hour)
	require.NoError(t, err)

	other, err := NewTokenService(Config{Secret: "other-secret", Algorithm: "HS256"})
	require.NoError(t, err)
	otherToken, err := other.Issue(ada, time.Hour)
	require.NoError(t, err)

	hs512, err := NewTokenService(Config{Secret: "test-secret", Algorithm: "HS512"})
	require.NoError(t, err)
	hs512Token, err := hs512.Issue(ada, time.Hour)
	require.NoError(t, err)

	sign := func(claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		return s
	}
	exp := jwt.NewNumericDate(now.Add(time.Hour))
	noID := sign(Claims{Email: "ada@example.com", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}})
	noEmail := sign(Claims{UserID: 7, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}})
	noExp := sign(Claims{UserID: 7, Email: "ada@example.com"})

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: 7, Email: "ada@example.com", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := map[string]string{
		"empty":          "",
		"garbage":        "not.a.token",
		"bad signature":  otherToken,
		"wrong alg":      hs512Token,
		"alg none":       unsigned,
		"tampered":       tampered,
		"missing id":     noID,
		"missing email":  noEmail,
		"missing expiry": noExp,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ts.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestAuthenticator(t *testing.T) {
	ts := newTokenService(t, time.Now)
	a := &Authenticator{Tokens: ts}
	token, err := ts.Issue(ada, time.Hour)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = a.RequireAuthenticatedUser(&ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, visibility.Anonymous, ContextGetRequester(ctx))

	requester, err := a.OptionalUser(&ctx)
	assert.NoError(t, err)
	assert.True(t, requester.IsAnonymous())

	bad := ContextSetToken(context.Background(), "garbage")
	_, err = a.OptionalUser(&bad)
	assert.ErrorIs(t, err, ErrInvalidToken)

	ctx = ContextSetToken(context.Background(), token)
	identity, err := a.RequireAuthenticatedUser(&ctx)
	require.NoError(t, err)
	assert.Equal(t, ada.ID, identity.UserID)
	assert.Equal(t, identity, MustContextGetIdentity(ctx))
	assert.Equal(t, visibility.User(ada.ID), ContextGetRequester(ctx))

	got, err := ContextGetIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, identity, got)

	_, err = ContextGetIdentity(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Panics(t, func() { MustContextGetIdentity(context.Background()) })
}
