package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

const (
	// Pictures travel as base64 data-URIs inside the JSON body.
	maxBytesBody = 10 * 1048576
)

// The readJSON helper is used to decode the request body into the target destination.
// Errors are translated into messages that can be returned to the client.
func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytesBody))

	jsonBytes, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesBody)
		default:
			return err
		}
	}

	if len(jsonBytes) == 0 {
		return errors.New("body must not be empty")
	}

	err = json.Unmarshal(jsonBytes, dst)
	if err == nil {
		return nil
	}

	var invalidUnmarshalError *json.InvalidUnmarshalError
	var unmarshalTypeError *json.UnmarshalTypeError
	var syntaxError *json.SyntaxError

	switch {
	case errors.As(err, &syntaxError):
		return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)

	case errors.Is(err, io.ErrUnexpectedEOF):
		return errors.New("body contains badly-formed JSON")

	// If the error relates to a specific field, then we include that in our error
	// message to make it easier for the client to debug.
	case errors.As(err, &unmarshalTypeError):
		if unmarshalTypeError.Field != "" {
			return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
		}
		return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)

	// A nil pointer passed to json.Unmarshal() is a developer error.
	case errors.As(err, &invalidUnmarshalError):
		panic(err)

	default:
		return err
	}
}

// Extract a numeric value from the URL params provided by the used router.
func readUrlIntParam(r *http.Request, param string) (int64, error) {
	params := mux.Vars(r)
	id, err := strconv.ParseInt(params[param], 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s parameter", param)
	}
	return id, nil
}

// Extract a boolean value from the URL params, e.g. "true" or "0".
func readUrlBoolParam(r *http.Request, param string) (bool, error) {
	params := mux.Vars(r)
	b, err := strconv.ParseBool(params[param])
	if err != nil {
		return false, fmt.Errorf("invalid %s parameter, must be true or false", param)
	}
	return b, nil
}
