package errors

import (
	stderrs "errors"
	"fmt"
)

// StatusError records a non-success status from an HTTP dependency
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Status)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Body)
}

// Transportf wraps a network failure
func Transportf(orig error, format string, a ...any) error {
	return Wrapf(orig, ErrorCodeTransport, format, a...)
}

// UpstreamStatus wraps a non-success status as ErrorCodeUpstreamHTTP
func UpstreamStatus(status int, body string, format string, a ...any) error {
	return Wrapf(&StatusError{Status: status, Body: body}, ErrorCodeUpstreamHTTP, format, a...)
}

// Decodingf wraps a payload decoding failure
func Decodingf(orig error, format string, a ...any) error {
	return Wrapf(orig, ErrorCodeDecoding, format, a...)
}

// IndexUnavailablef wraps a search backend failure
func IndexUnavailablef(orig error, format string, a ...any) error {
	return Wrapf(orig, ErrorCodeIndexUnavailable, format, a...)
}

// StatusOf returns the upstream status carried in err, or 0
func StatusOf(err error) int {
	var se *StatusError
	if stderrs.As(err, &se) {
		return se.Status
	}
	return 0
}
