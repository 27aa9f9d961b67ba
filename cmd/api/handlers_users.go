package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/anBertoli/snap-share/pkg/tracing"
	"github.com/anBertoli/snap-share/services/users"
)

// Register a new user and return it together with a fresh token, so the client
// is signed in right away.
func (app *application) signUpHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}

	err := readJSON(w, r, &input)
	if err != nil {
		app.malformedJSONResponse(w, r, err)
		return
	}

	user, token, err := app.users.SignUp(r.Context(), input.FirstName, input.LastName, input.Email, input.Password)
	if err != nil {
		app.encodeError(w, r, err)
		return
	}

	app.sendJSON(w, r, http.StatusCreated, env{"user": user, "token": token}, nil)
}

// Authenticate the user via email and password.
func (app *application) signInHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	err := readJSON(w, r, &input)
	if err != nil {
		app.malformedJSONResponse(w, r, err)
		return
	}

	user, token, err := app.users.SignIn(r.Context(), input.Email, input.Password)
	if err != nil {
		app.encodeError(w, r, err)
		return
	}

	app.sendJSON(w, r, http.StatusOK, env{"user": user, "token": token}, nil)
}

// Start the password reset: a one-time token is sent via email. The response is
// the same whether the email belongs to a user or not.
func (app *application) genResetTokenHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
	}

	err := readJSON(w, r, &input)
	if err != nil {
		app.malformedJSONResponse(w, r, err)
		return
	}

	user, token, err := app.users.GenResetToken(r.Context(), input.Email)
	if err != nil && !errors.Is(err, users.ErrUserNotFound) {
		app.encodeError(w, r, err)
		return
	}

	if err == nil {
		logger := app.logger.With("id", tracing.TraceFromRequestCtx(r).ID)

		app.background(func() {
			mailData := map[string]interface{}{
				"Name":  user.FirstName,
				"Token": token,
				"TTL":   app.config.Jwt.ResetTTL.Duration.String(),
			}
			err := app.mailer.Send(context.Background(), user.Email, "password_reset.gohtml", mailData)
			if err != nil {
				logger.Errorw("sending password reset mail", "err", err)
				return
			}
			logger.Infof("password reset mail sent")
		})
	}

	app.sendJSON(w, r, http.StatusAccepted, env{
		"message": "if the email belongs to an account you will receive the instructions to reset the password",
	}, nil)
}

// Set a new password using the one-time token.
func (app *application) resetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Token    string `json:"token"`
		Password string `json:"password"`
	}

	err := readJSON(w, r, &input)
	if err != nil {
		app.malformedJSONResponse(w, r, err)
		return
	}

	err = app.users.ResetPassword(r.Context(), input.Email, input.Token, input.Password)
	if err != nil {
		app.encodeError(w, r, err)
		return
	}

	app.sendJSON(w, r, http.StatusOK, env{"message": "your password was successfully reset"}, nil)
}

// Retrieve information about the user authenticated, namely, itself.
func (app *application) getMeHandler(w http.ResponseWriter, r *http.Request) {
	user, err := app.users.Me(r.Context())
	if err != nil {
		app.encodeError(w, r, err)
		return
	}

	app.sendJSON(w, r, http.StatusOK, env{"user": user}, nil)
}

// Delete the account of the authenticated user with all its galleries.
func (app *application) deleteMeHandler(w http.ResponseWriter, r *http.Request) {
	err := app.users.DeleteMe(r.Context())
	if err != nil {
		app.encodeError(w, r, err)
		return
	}

	app.sendJSON(w, r, http.StatusOK, env{"message": "account deleted"}, nil)
}
