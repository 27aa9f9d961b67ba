package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type User struct {
	ID               int64        `db:"id" json:"id"`
	FirstName        string       `db:"first_name" json:"first_name"`
	LastName         string       `db:"last_name" json:"last_name"`
	Email            string       `db:"email" json:"email"`
	Password         string       `db:"-" json:"-"`
	PasswordHash     string       `db:"password_hash" json:"-"`
	ResetTokenHash   string       `db:"reset_token_hash" json:"-"`
	ResetTokenExpiry sql.NullTime `db:"reset_token_expiry" json:"-"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
}

const userColumns = `users.id, users.first_name, users.last_name, users.email, users.password_hash,
	users.reset_token_hash, users.reset_token_expiry, users.created_at`

// The store abstraction used to manipulate users into the database.
// It holds a DB connection pool.
type UsersStore struct {
	DB *sqlx.DB
}

// Retrieve a user using its id.
func (us *UsersStore) Get(ctx context.Context, id int64) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var user User
	err := us.DB.GetContext(ctx, &user, us.DB.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return User{}, ErrRecordNotFound
		default:
			return User{}, err
		}
	}

	return user, nil
}

// Retrieve a user using its email. Emails are stored normalized, so the
// argument must already be lowercased.
func (us *UsersStore) GetForEmail(ctx context.Context, email string) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var user User
	err := us.DB.GetContext(ctx, &user, us.DB.Rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), email)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return User{}, ErrRecordNotFound
		default:
			return User{}, err
		}
	}

	return user, nil
}

// Create a new user into the database. The password must be already hashed
// by the caller. The id and the creation time are returned populated.
func (us *UsersStore) Insert(ctx context.Context, user User) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	user.CreatedAt = now()
	err := us.DB.GetContext(ctx, &user.ID, us.DB.Rebind(`
		INSERT INTO users (first_name, last_name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`), user.FirstName, user.LastName, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		switch {
		// We can detect if a user with the same
		// email already exists in our DB.
		case isUniqueViolation(err, "users_email_key", "users.email"):
			return User{}, ErrDuplicateEmail
		default:
			return User{}, err
		}
	}

	return user, nil
}

// Store the hash of a one-time reset token for the user, replacing any previous one.
func (us *UsersStore) SetResetToken(ctx context.Context, userID int64, tokenHash string, expiry time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := us.DB.ExecContext(ctx, us.DB.Rebind(`
		UPDATE users SET reset_token_hash = ?, reset_token_expiry = ? WHERE id = ?
	`), tokenHash, expiry.UTC(), userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Replace the password hash consuming the reset token in the same statement. The update
// only applies if the stored token hash still matches, so a token can be used once: a
// concurrent reset with the same token gets ErrEditConflict.
func (us *UsersStore) ResetPassword(ctx context.Context, userID int64, tokenHash, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := us.DB.ExecContext(ctx, us.DB.Rebind(`
		UPDATE users SET password_hash = ?, reset_token_hash = '', reset_token_expiry = NULL
		WHERE id = ? AND reset_token_hash = ? AND reset_token_hash <> ''
	`), passwordHash, userID, tokenHash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEditConflict
	}
	return nil
}

// Delete the user. Galleries, pictures and download requests
// of the user are removed by the foreign keys cascade.
func (us *UsersStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := us.DB.ExecContext(ctx, us.DB.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}
