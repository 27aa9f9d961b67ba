package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anBertoli/snap-share/pkg/auth"
	"github.com/anBertoli/snap-share/pkg/store"
	"github.com/anBertoli/snap-share/pkg/validator"
	"github.com/anBertoli/snap-share/services/users"
)

func (app *application) encodeError(w http.ResponseWriter, r *http.Request, err error) {
	v := validator.New()

	switch {
	case errors.As(err, &v):
		app.failedValidationResponse(w, r, v)

	// auth errors
	case errors.Is(err, auth.ErrUnauthenticated):
		app.unauthenticatedResponse(w, r)
	case errors.Is(err, auth.ErrExpiredToken):
		app.expiredAuthenticationTokenResponse(w, r)
	case errors.Is(err, auth.ErrInvalidToken):
		app.invalidAuthenticationTokenResponse(w, r)

	// users service errors
	case errors.Is(err, users.ErrInvalidCredentials):
		app.invalidCredentialsResponse(w, r)

	// store errors
	case errors.Is(err, store.ErrDuplicateEmail):
		app.duplicateResponse(w, r, "email", "a user with this email address already exists", err)
	case errors.Is(err, store.ErrDuplicateTitle):
		app.duplicateResponse(w, r, "title", "a gallery with this title already exists", err)
	case errors.Is(err, store.ErrRecordNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, store.ErrEditConflict):
		app.editConflictResponse(w, r)
	case errors.Is(err, store.ErrForbidden):
		app.forbiddenResponse(w, r)

	// default to 500 errors
	default:
		app.serverErrorResponse(w, r, err)
	}
}

// These are generic responses given back to the user. Below there are more specific
// error responses that may utilize the same HTTP code but differ for the returned message.
func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.sendJSONError(w, r, errResponse{
		message: "the server encountered a problem and could not process your request",
		status:  http.StatusInternalServerError,
		err:     err,
	})
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.sendJSONError(w, r, errResponse{
		message: "the requested resource could not be found",
		status:  http.StatusNotFound,
		err:     err,
	})
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.sendJSONError(w, r, errResponse{
		message: err.Error(),
		status:  http.StatusBadRequest,
		err:     err,
	})
}

func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	err := errors.New("you don't have rights to perform this action")
	app.sendJSONError(w, r, errResponse{
		message: err.Error(),
		status:  http.StatusForbidden,
		err:     err,
	})
}

func (app *application) unauthenticatedResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	err := errors.New("you must be authenticated to access this resource")
	app.sendJSONError(w, r, errResponse{
		message: err.Error(),
		status:  http.StatusUnauthorized,
		err:     err,
	})
}

func (app *application) editConflictResponse(w http.ResponseWriter, r *http.Request) {
	err := errors.New("unable to update the resource due to a conflict, please try again")
	app.sendJSONError(w, r, errResponse{
		message: err.Error(),
		status:  http.StatusConflict,
		err:     err,
	})
}

// Errors responses used by the router.
func (app *application) routeNotFoundHandler(w http.ResponseWriter, r *http.Request) {
	err := errors.New("the requested API endpoint doesn't exist")
	app.sendJSONError(w, r, errResponse{
		message: err.Error(),
		status:  http.StatusNotFound,
		err:     err,
	})
}

func (app *application) methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	err := fmt.Errorf("the %s method is not supported for this endpoint", r.Method)
	app.sendJSONError(w, r, errResponse{
		message: err.Error(),
		status:  http.StatusMethodNotAllowed,
		err:     err,
	})
}

// More specific error responses.
func (app *application) malformedJSONResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.sendJSONError(w, r, errResponse{
		message: err.Error(),
		status:  http.StatusBadRequest,
		err:     err,
	})
}

func (app *application) failedValidationResponse(w http.ResponseWriter, r *http.Request, errors validator.Validator) {
	app.sendJSONError(w, r, errResponse{
		message: errors,
		status:  http.StatusUnprocessableEntity,
		err:     errors,
	})
}

func (app *application) duplicateResponse(w http.ResponseWriter, r *http.Request, field, message string, err error) {
	app.sendJSONError(w, r, errResponse{
		message: map[string]string{field: message},
		status:  http.StatusConflict,
		err:     err,
	})
}

func (app *application) invalidCredentialsResponse(w http.ResponseWriter, r *http.Request) {
	err := errors.New("invalid authentication credentials")
	app.sendJSONError(w, r, errResponse{
		message: err.Error(),
		status:  http.StatusUnauthorized,
		err:     err,
	})
}

func (app *application) invalidAuthenticationTokenResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	err := errors.New("the provided authentication token is invalid")
	app.sendJSONError(w, r, errResponse{
		message: err.Error(),
		status:  http.StatusUnauthorized,
		err:     err,
	})
}

func (app *application) expiredAuthenticationTokenResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	err := errors.New("the provided authentication token is expired")
	app.sendJSONError(w, r, errResponse{
		message: err.Error(),
		status:  http.StatusUnauthorized,
		err:     err,
	})
}
