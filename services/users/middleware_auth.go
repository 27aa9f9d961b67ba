package users

import (
	"context"

	"github.com/anBertoli/snap-share/pkg/auth"
	"github.com/anBertoli/snap-share/pkg/store"
)

// The AuthMiddleware verifies the bearer token of the requests
// on the methods acting on the authenticated account.
type AuthMiddleware struct {
	Auth *auth.Authenticator
	Next Service
}

func (am *AuthMiddleware) SignUp(ctx context.Context, firstName, lastName, email, password string) (store.User, string, error) {
	return am.Next.SignUp(ctx, firstName, lastName, email, password)
}

func (am *AuthMiddleware) SignIn(ctx context.Context, email, password string) (store.User, string, error) {
	return am.Next.SignIn(ctx, email, password)
}

func (am *AuthMiddleware) GenResetToken(ctx context.Context, email string) (store.User, string, error) {
	return am.Next.GenResetToken(ctx, email)
}

func (am *AuthMiddleware) ResetPassword(ctx context.Context, email, token, password string) error {
	return am.Next.ResetPassword(ctx, email, token, password)
}

func (am *AuthMiddleware) Me(ctx context.Context) (store.User, error) {
	_, err := am.Auth.RequireAuthenticatedUser(&ctx)
	if err != nil {
		return store.User{}, err
	}
	return am.Next.Me(ctx)
}

func (am *AuthMiddleware) DeleteMe(ctx context.Context) error {
	_, err := am.Auth.RequireAuthenticatedUser(&ctx)
	if err != nil {
		return err
	}
	return am.Next.DeleteMe(ctx)
}
