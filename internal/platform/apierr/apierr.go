package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes surfaced to API clients.
const (
	CodeAuthFailed          = "auth_failed"
	CodeUnsupportedKind     = "unsupported_kind"
	CodeExtractionFailed    = "extraction_failed"
	CodeTranscriptionFailed = "transcription_failed"
	CodeGenerationFailed    = "generation_failed"
	CodeNotFound            = "not_found"
	CodeIndexOutOfRange     = "index_out_of_range"
	CodeInvalidRequest      = "invalid_request"
	CodeInternal            = "internal_error"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func AuthFailed(err error) *Error {
	return New(http.StatusUnauthorized, CodeAuthFailed, err)
}

func UnsupportedKind(kind string) *Error {
	return New(http.StatusBadRequest, CodeUnsupportedKind, fmt.Errorf("unsupported file type %q", kind))
}

func ExtractionFailed(err error) *Error {
	return New(http.StatusBadRequest, CodeExtractionFailed, err)
}

func TranscriptionFailed(err error) *Error {
	return New(http.StatusBadGateway, CodeTranscriptionFailed, err)
}

func GenerationFailed(err error) *Error {
	return New(http.StatusBadGateway, CodeGenerationFailed, err)
}

func NotFound(what string) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf("%s not found", what))
}

func IndexOutOfRange(index, length int) *Error {
	return New(http.StatusBadRequest, CodeIndexOutOfRange, fmt.Errorf("session index %d out of range [0,%d)", index, length))
}

func InvalidRequest(err error) *Error {
	return New(http.StatusBadRequest, CodeInvalidRequest, err)
}

// From classifies err as an *Error, falling back to a 500 internal error.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return New(http.StatusInternalServerError, CodeInternal, err)
}

// IsCode reports whether err carries the given stable code.
func IsCode(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
