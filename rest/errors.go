package rest

import (
	"fmt"
	"net/http"
)

// ParseError reports a request body that could not be decoded.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rest: cannot parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error   { return e.Err }
func (e *ParseError) StatusCode() int { return http.StatusBadRequest }

// FieldError reports a field the record refused to take.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("rest: cannot set %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error   { return e.Err }
func (e *FieldError) StatusCode() int { return http.StatusBadRequest }

type SerializationError struct {
	Type string
}

func (e *SerializationError) Error() string {
	if e.Type == "" {
		return "cannot convert object to JSON"
	}
	return "cannot convert object to JSON: " + e.Type
}

func (e *SerializationError) StatusCode() int { return http.StatusInternalServerError }
