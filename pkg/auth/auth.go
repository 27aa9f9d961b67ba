package auth

import (
	"context"
	"errors"

	"github.com/anBertoli/snap-share/pkg/visibility"
)

// This struct verifies the bearer token travelling with the request context and
// exposes the resulting identity to the services.
type Authenticator struct {
	Tokens *TokenService
}

// Perform authentication, extracting the plain token from the context passed in. A
// missing token is reported as ErrUnauthenticated, a bad one as ErrInvalidToken or
// ErrExpiredToken.
func (a *Authenticator) AuthenticateFromCtx(ctx context.Context) (Identity, error) {
	plainToken, ok := ctx.Value(tokenContextKey).(string)
	if !ok || plainToken == "" {
		return Identity{}, ErrUnauthenticated
	}
	return a.Tokens.Verify(plainToken)
}

// Perform authentication extracting the token from the context. Replace the context
// pointed by the ctx pointer with a new one containing the identity.
func (a *Authenticator) RequireAuthenticatedUser(ctx *context.Context) (Identity, error) {
	identity, err := a.AuthenticateFromCtx(*ctx)
	if err != nil {
		return Identity{}, err
	}
	*ctx = context.WithValue(*ctx, identityContextKey, identity)
	return identity, nil
}

// Authenticate the request if a token is present, otherwise fall back to the anonymous
// requester. A token that is present but not valid is still an error: it is never
// silently downgraded to an anonymous request.
func (a *Authenticator) OptionalUser(ctx *context.Context) (visibility.Requester, error) {
	if _, ok := (*ctx).Value(tokenContextKey).(string); !ok {
		return visibility.Anonymous, nil
	}
	identity, err := a.RequireAuthenticatedUser(ctx)
	if err != nil {
		return visibility.Anonymous, err
	}
	return visibility.User(identity.UserID), nil
}

// Declare a private type to be used in context to avoid key collision
// and define the keys to be used with contexts.
type privateKey string

const (
	identityContextKey privateKey = "identity"
	tokenContextKey    privateKey = "token"
)

// Retrieve the identity from a context.
func ContextGetIdentity(ctx context.Context) (Identity, error) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	if !ok {
		return Identity{}, ErrUnauthenticated
	}
	return identity, nil
}

// Retrieve the identity from a context, panicking if not found.
func MustContextGetIdentity(ctx context.Context) Identity {
	identity, err := ContextGetIdentity(ctx)
	if err != nil {
		panic("cannot retrieve identity from context")
	}
	return identity
}

// Retrieve the requester bound to the context, anonymous if no identity was stored.
func ContextGetRequester(ctx context.Context) visibility.Requester {
	identity, err := ContextGetIdentity(ctx)
	if err != nil {
		return visibility.Anonymous
	}
	return visibility.User(identity.UserID)
}

// Set the plain bearer token into the context.
func ContextSetToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpiredToken    = errors.New("expired token")
)
