/*
Package req provides helper functions for HTTP request parsing and data binding.

It encapsulates the logic for reading JSON bodies under a size limit and maps
failures to application error codes.
*/
package req

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"messenger/internal/pkg/errs"
)

// DefaultMaxBodyBytes is the body limit applied by BindJSON.
const DefaultMaxBodyBytes int64 = 1 << 20 // 1 MB

// BindJSON attempts to bind the JSON data from the HTTP request body to the destination struct dst.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	if customErr := checkContentType(r); customErr != nil {
		return customErr
	}

	r.Body = http.MaxBytesReader(w, r.Body, DefaultMaxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return decodeError(err)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// ReadJSONBody reads a whole JSON body of at most limit bytes without
// decoding it, and checks that it is well-formed.
func ReadJSONBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, *errs.CustomError) {
	if customErr := checkContentType(r); customErr != nil {
		return nil, customErr
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, decodeError(err)
	}

	if !json.Valid(raw) {
		return nil, errs.NewError(errs.ErrInvalidJSONFormat)
	}

	return raw, nil
}

func checkContentType(r *http.Request) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}
	return nil
}

func decodeError(err error) *errs.CustomError {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errs.NewError(errs.ErrRequestEntityTooLarge)
	}
	return errs.NewError(errs.ErrInvalidJSONFormat)
}
