package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/anBertoli/snap-share/pkg/store"
)

// Config holds the immutable signing configuration of the token service. It is
// loaded once at startup and never read again from the environment.
type Config struct {
	Secret    string
	Algorithm string
}

// Identity is the verified content of a bearer token.
type Identity struct {
	UserID    int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Claims are the JWT claims carried by the tokens: {id, email, first_name, last_name, exp}.
type Claims struct {
	UserID    int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	jwt.RegisteredClaims
}

// The TokenService issues and verifies stateless identity tokens signed with a
// shared secret. Only the HMAC family is accepted.
type TokenService struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	now    func() time.Time
}

func NewTokenService(cfg Config) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token secret must be provided")
	}
	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}
	return &TokenService{
		secret: []byte(cfg.Secret),
		method: method,
		now:    time.Now,
	}, nil
}

// WithClock returns a copy of the service reading the current time from now.
func (ts *TokenService) WithClock(now func() time.Time) *TokenService {
	c := *ts
	c.now = now
	return &c
}

// Issue signs a token for the user valid for ttl. The expiry is rounded up to the next
// whole second, since the exp claim has second precision, so the token verifies at any
// instant strictly before now + ttl.
func (ts *TokenService) Issue(user store.User, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("invalid token ttl %s", ttl)
	}

	exp := ts.now().Add(ttl)
	if rounded := exp.Truncate(time.Second); !rounded.Equal(exp) {
		exp = rounded.Add(time.Second)
	}

	token := jwt.NewWithClaims(ts.method, Claims{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	return token.SignedString(ts.secret)
}

// Verify checks the signature and the expiry of the token and returns the identity
// it carries. Verification is all or nothing.
func (ts *TokenService) Verify(plainToken string) (Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(plainToken, &claims, func(t *jwt.Token) (interface{}, error) {
		return ts.secret, nil
	},
		jwt.WithValidMethods([]string{ts.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, ErrExpiredToken
		default:
			return Identity{}, ErrInvalidToken
		}
	}
	if !token.Valid || claims.UserID <= 0 || claims.Email == "" || claims.ExpiresAt == nil {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		UserID:    claims.UserID,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
