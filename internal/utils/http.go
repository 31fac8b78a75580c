package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

// ErrBadRequestBody is returned by DecodeJSON after it has written a 400.
var ErrBadRequestBody = errors.New("bad request body")

// JSON writes a JSON response with status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// JSONError writes {"detail": "..."} with a given status.
func JSONError(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"detail": msg})
}

// DecodeJSON parses a single JSON value from the body into v, rejecting
// unknown fields. On failure it writes a 400 and returns ErrBadRequestBody,
// so callers only need to return.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return decode(w, r, v, true)
}

// DecodeJSONLenient is DecodeJSON without the unknown-field check.
func DecodeJSONLenient(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return decode(w, r, v, false)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}, strict bool) error {
	if r.Body == nil || r.Body == http.NoBody {
		JSONError(w, http.StatusBadRequest, "empty request body")
		return ErrBadRequestBody
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if strict {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			JSONError(w, http.StatusBadRequest, "empty request body")
		} else {
			JSONError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		}
		return ErrBadRequestBody
	}

	// Anything but whitespace after the first value is rejected.
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		JSONError(w, http.StatusBadRequest, "request body must contain a single JSON value")
		return ErrBadRequestBody
	}

	return nil
}
