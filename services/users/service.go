package users

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/anBertoli/snap-share/pkg/auth"
	"github.com/anBertoli/snap-share/pkg/store"
	"github.com/anBertoli/snap-share/pkg/validator"
)

// The UsersService manages accounts and issues the identity tokens.
type UsersService struct {
	Store    store.Store
	Tokens   *auth.TokenService
	TokenTTL time.Duration
	ResetTTL time.Duration
}

// Emails identify users regardless of case and surrounding spaces.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (us *UsersService) SignUp(ctx context.Context, firstName, lastName, email, password string) (store.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return store.User{}, "", err
	}

	user, err := us.Store.Users.Insert(ctx, store.User{
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Email:        NormalizeEmail(email),
		PasswordHash: string(hash),
	})
	if err != nil {
		return store.User{}, "", err
	}

	token, err := us.Tokens.Issue(user, us.TokenTTL)
	if err != nil {
		return store.User{}, "", err
	}
	return user, token, nil
}

// Authenticate the user with email and password. Unknown emails and wrong passwords
// are reported with the same error.
func (us *UsersService) SignIn(ctx context.Context, email, password string) (store.User, string, error) {
	user, err := us.Store.Users.GetForEmail(ctx, NormalizeEmail(email))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return store.User{}, "", ErrInvalidCredentials
		default:
			return store.User{}, "", err
		}
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return store.User{}, "", ErrInvalidCredentials
		default:
			return store.User{}, "", err
		}
	}

	token, err := us.Tokens.Issue(user, us.TokenTTL)
	if err != nil {
		return store.User{}, "", err
	}
	return user, token, nil
}

// Generate a one-time password reset token for the user with the given email. Only
// the hash of the token is stored, the plain token is returned to be mailed.
func (us *UsersService) GenResetToken(ctx context.Context, email string) (store.User, string, error) {
	user, err := us.Store.Users.GetForEmail(ctx, NormalizeEmail(email))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return store.User{}, "", ErrUserNotFound
		default:
			return store.User{}, "", err
		}
	}

	plain, hash, err := store.GenerateToken()
	if err != nil {
		return store.User{}, "", err
	}
	err = us.Store.Users.SetResetToken(ctx, user.ID, hash, time.Now().Add(us.ResetTTL))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return store.User{}, "", ErrUserNotFound
		default:
			return store.User{}, "", err
		}
	}

	return user, plain, nil
}

// Replace the password of the user if the reset token is valid. The token
// is consumed by a successful reset.
func (us *UsersService) ResetPassword(ctx context.Context, email, token, password string) error {
	invalidToken := validator.New()
	invalidToken.AddError("token", "invalid or expired reset token")

	user, err := us.Store.Users.GetForEmail(ctx, NormalizeEmail(email))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return invalidToken
		default:
			return err
		}
	}

	tokenHash := store.HashToken(token)
	if user.ResetTokenHash == "" ||
		subtle.ConstantTimeCompare([]byte(tokenHash), []byte(user.ResetTokenHash)) != 1 ||
		!user.ResetTokenExpiry.Valid ||
		!time.Now().Before(user.ResetTokenExpiry.Time) {
		return invalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}

	err = us.Store.Users.ResetPassword(ctx, user.ID, tokenHash, string(hash))
	if err != nil {
		switch {
		// Another request consumed the token in the meantime.
		case errors.Is(err, store.ErrEditConflict):
			return invalidToken
		default:
			return err
		}
	}
	return nil
}

// Return the account of the authenticated user.
func (us *UsersService) Me(ctx context.Context) (store.User, error) {
	identity := auth.MustContextGetIdentity(ctx)
	user, err := us.Store.Users.Get(ctx, identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return store.User{}, ErrUserNotFound
		default:
			return store.User{}, err
		}
	}
	return user, nil
}

// Delete the account of the authenticated user with everything it owns.
func (us *UsersService) DeleteMe(ctx context.Context) error {
	identity := auth.MustContextGetIdentity(ctx)
	err := us.Store.Users.Delete(ctx, identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return ErrUserNotFound
		default:
			return err
		}
	}
	return nil
}
