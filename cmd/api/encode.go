package main

import (
	"encoding/json"
	"net/http"

	"github.com/anBertoli/snap-share/pkg/tracing"
)

type env map[string]interface{}

func (app *application) sendJSON(w http.ResponseWriter, r *http.Request, status int, data env, headers http.Header) {

	trace := tracing.TraceFromRequestCtx(r)
	trace.HttpStatus = status
	trace.PrivateErr = nil

	err := writeJSON(w, status, data, headers)
	if err != nil {
		app.logger.Errorw("sending json", "id", trace.ID, "err", err)
		trace.HttpStatus = http.StatusInternalServerError
		trace.PrivateErr = err
	}
}

// The sendJSONError() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code. The message is an interface{}
// to allow field-level messages, while the private error is recorded in the trace.
func (app *application) sendJSONError(w http.ResponseWriter, r *http.Request, resp errResponse) {

	trace := tracing.TraceFromRequestCtx(r)
	trace.HttpStatus = resp.status
	trace.PubMessage = resp.message
	trace.PrivateErr = resp.err

	err := writeJSON(w, resp.status, env{
		"status_code": resp.status,
		"error":       resp.message,
	}, nil)
	if err != nil {
		app.logger.Errorw("sending json", "id", trace.ID, "err", err)
		trace.HttpStatus = http.StatusInternalServerError
		trace.PrivateErr = err
	}
}

type errResponse struct {
	message interface{}
	status  int
	err     error
}

// Encode the data and write it with the status code and the additional headers.
func writeJSON(w http.ResponseWriter, status int, data env, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	// Append a newline to make it easier to view in terminal applications.
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}
