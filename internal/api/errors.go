package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FieldError is one field-level validation message from a 422 response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the normalized shape every failed request resolves to.
// Status 0 means no response was received at all (network failure).
type Error struct {
	Status  int
	Detail  string
	Fields  []FieldError
	Network bool
	cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Network:
		return e.Detail
	case len(e.Fields) > 0:
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
		}
		return fmt.Sprintf("validation failed (%d): %s", e.Status, strings.Join(parts, "; "))
	default:
		return fmt.Sprintf("%s (%d)", e.Detail, e.Status)
	}
}

func (e *Error) Unwrap() error { return e.cause }

// IsNetworkError reports whether err means the server was never reached.
func IsNetworkError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Network
}

// IsUnauthorized reports a 401 response.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports a 404 response.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsServerError reports a 5xx response, which for create operations means
// "possibly succeeded but unconfirmed".
func IsServerError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status >= 500
}

// FieldErrors extracts field-level validation messages, if any.
func FieldErrors(err error) []FieldError {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Fields
	}
	return nil
}

// errorBody matches the backend error envelope. "detail" is a plain string
// for most errors but an array of {loc, msg} objects for validation errors.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationItem struct {
	Loc []json.RawMessage `json:"loc"`
	Msg string            `json:"msg"`
}

// parseError normalizes a non-2xx response body into *Error.
func parseError(status int, body []byte) *Error {
	apiErr := &Error{Status: status, Detail: http.StatusText(status)}
	var envelope errorBody
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return apiErr
	}

	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
		apiErr.Detail = detail
		return apiErr
	}

	var items []validationItem
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		for _, item := range items {
			field := "body"
			if len(item.Loc) > 0 {
				// Last loc element names the offending field.
				var s string
				if json.Unmarshal(item.Loc[len(item.Loc)-1], &s) == nil {
					field = s
				}
			}
			apiErr.Fields = append(apiErr.Fields, FieldError{Field: field, Message: item.Msg})
		}
		apiErr.Detail = "validation error"
	}
	return apiErr
}

func networkError(err error) *Error {
	return &Error{
		Network: true,
		Detail:  "unable to connect to server, check your connection and try again",
		cause:   err,
	}
}
