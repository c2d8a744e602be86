package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxJSONBody bounds JSON request bodies. Field maps top out well below it.
const maxJSONBody = 2 << 20

// ErrFileTooLarge is returned by ReadFormFile when the upload exceeds its limit.
var ErrFileTooLarge = errors.New("file too large")

// ParseJSON decodes JSON from the request body into the given destination.
// Unknown fields are rejected so typos in field maps surface as 400s.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

// ReadBody reads a raw request body of at most limit bytes.
func ReadBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, ErrFileTooLarge
		}
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// ReadFormFile reads one multipart file part of at most limit bytes.
func ReadFormFile(w http.ResponseWriter, r *http.Request, field string, limit int64) ([]byte, error) {
	// Multipart framing adds a little on top of the file itself
	r.Body = http.MaxBytesReader(w, r.Body, limit+64<<10)

	file, _, err := r.FormFile(field)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, ErrFileTooLarge
		}
		return nil, fmt.Errorf("read form file %q: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read form file %q: %w", field, err)
	}
	if int64(len(data)) > limit {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
