package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/anBertoli/snap-share/pkg/store"
)

// Public interface for the users service. The service is exposed
// via transport-specific adapters, e.g. the JSON-HTTP api.
type Service interface {
	SignUp(ctx context.Context, firstName, lastName, email, password string) (store.User, string, error)
	SignIn(ctx context.Context, email, password string) (store.User, string, error)
	GenResetToken(ctx context.Context, email string) (store.User, string, error)
	ResetPassword(ctx context.Context, email, token, password string) error

	Me(ctx context.Context) (store.User, error)
	DeleteMe(ctx context.Context) error
}

var (
	ErrUserNotFound       = fmt.Errorf("user %w", store.ErrRecordNotFound)
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// This checks makes sure that all service implementation remain
// valid while we refactor our code.
var _ Service = &UsersService{}
var _ Service = &AuthMiddleware{}
var _ Service = &ValidationMiddleware{}
