package users

import (
	"context"

	"github.com/anBertoli/snap-share/pkg/store"
	"github.com/anBertoli/snap-share/pkg/validator"
)

// The ValidationMiddleware validates incoming data of each request, rejecting them if
// some pieces of needed information are missing or malformed. The middleware makes
// sure the next service in the chain will receive valid data.
type ValidationMiddleware struct {
	Next Service
}

func (vm *ValidationMiddleware) SignUp(ctx context.Context, firstName, lastName, email, password string) (store.User, string, error) {
	v := validator.New()
	validator.ValidateUser(v, store.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     NormalizeEmail(email),
		Password:  password,
	})
	if !v.Ok() {
		return store.User{}, "", v
	}
	return vm.Next.SignUp(ctx, firstName, lastName, email, password)
}

// Password rules are not enforced at sign in, a wrong password is simply a wrong one.
func (vm *ValidationMiddleware) SignIn(ctx context.Context, email, password string) (store.User, string, error) {
	v := validator.New()
	validator.ValidateEmail(v, NormalizeEmail(email))
	v.Check(password != "", "password", "must be provided")
	if !v.Ok() {
		return store.User{}, "", v
	}
	return vm.Next.SignIn(ctx, email, password)
}

func (vm *ValidationMiddleware) GenResetToken(ctx context.Context, email string) (store.User, string, error) {
	v := validator.New()
	validator.ValidateEmail(v, NormalizeEmail(email))
	if !v.Ok() {
		return store.User{}, "", v
	}
	return vm.Next.GenResetToken(ctx, email)
}

func (vm *ValidationMiddleware) ResetPassword(ctx context.Context, email, token, password string) error {
	v := validator.New()
	validator.ValidateEmail(v, NormalizeEmail(email))
	v.Check(token != "", "token", "must be provided")
	validator.ValidatePassword(v, password)
	if !v.Ok() {
		return v
	}
	return vm.Next.ResetPassword(ctx, email, token, password)
}

func (vm *ValidationMiddleware) Me(ctx context.Context) (store.User, error) {
	return vm.Next.Me(ctx)
}

func (vm *ValidationMiddleware) DeleteMe(ctx context.Context) error {
	return vm.Next.DeleteMe(ctx)
}
