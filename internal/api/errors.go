package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Category 失败类别
// Category classifies a failed call
type Category string

const (
	// CategoryRejected covers every non-auth 4xx/5xx answer.
	CategoryRejected Category = "rejected"
	// CategoryUnauthenticated: the credential is missing, invalid or expired.
	CategoryUnauthenticated Category = "unauthenticated"
	// CategoryForbidden: the credential is valid but lacks rights.
	CategoryForbidden Category = "forbidden"
	// CategoryTransport: no HTTP response was received.
	CategoryTransport Category = "transport"
	// CategoryDecode: a 2xx response whose body could not be understood.
	CategoryDecode Category = "decode"
)

// forbiddenMarker is what the server puts in a 401 body when the rejection is
// a permission issue rather than a bad credential.
const forbiddenMarker = "Forbidden"

// Error is the failure half of every Client call.
type Error struct {
	Method   string
	Path     string
	Status   int
	Category Category
	// Message is the server's "error" field, empty when there was none.
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Method, e.Path)
	if e.Status > 0 {
		fmt.Fprintf(&b, ": status=%d", e.Status)
	}
	fmt.Fprintf(&b, " (%s)", e.Category)
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func classify(status int, message string) Category {
	switch {
	case status == http.StatusUnauthorized && strings.Contains(message, forbiddenMarker):
		return CategoryForbidden
	case status == http.StatusUnauthorized:
		return CategoryUnauthenticated
	case status == http.StatusForbidden:
		return CategoryForbidden
	default:
		return CategoryRejected
	}
}

// CategoryOf returns the category of err, or "" when err is not an *Error.
func CategoryOf(err error) Category {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Category
	}
	return ""
}

func IsForbidden(err error) bool { return CategoryOf(err) == CategoryForbidden }

func IsUnauthenticated(err error) bool { return CategoryOf(err) == CategoryUnauthenticated }

// MessageOf returns the server-provided message carried by err, if any.
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// MessageOr returns the server message carried by err, or fallback.
func MessageOr(err error, fallback string) string {
	if msg := strings.TrimSpace(MessageOf(err)); msg != "" {
		return msg
	}
	return fallback
}
