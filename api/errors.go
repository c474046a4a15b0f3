package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind classifies a remote failure.
type Kind string

const (
	// KindBadRequest covers 4xx responses other than 401; the message
	// carries the server's detail.
	KindBadRequest Kind = "bad_request"

	// KindUnauthorized covers 401 responses. Callers may refresh the
	// session and retry once; the client never retries on its own.
	KindUnauthorized Kind = "unauthorized"

	// KindNetwork covers transport-level failures where no response was
	// received.
	KindNetwork Kind = "network"

	// KindTimeout covers requests that exceeded the configured deadline.
	KindTimeout Kind = "timeout"

	// KindUnknown covers everything else, including 5xx responses.
	KindUnknown Kind = "unknown"
)

// Error is a classified remote failure.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Detail     string
	cause      error
}

// Error implements error.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "remote %s", e.Kind)
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	return b.String()
}

// Unwrap returns the underlying transport error, if any.
func (e *Error) Unwrap() error { return e.cause }

// classifyStatus maps an HTTP status to a Kind.
func classifyStatus(status int) Kind {
	switch {
	case status == 401:
		return KindUnauthorized
	case status >= 400 && status < 500:
		return KindBadRequest
	default:
		return KindUnknown
	}
}

// parseError builds an Error from an error response body. Backends are not
// consistent about the field carrying the detail, so the usual candidates
// are probed in order.
func parseError(body []byte, status int) *Error {
	msg := ""
	for _, field := range []string{"message", "error_description", "error", "detail"} {
		if v := gjson.GetBytes(body, field); v.Type == gjson.String && v.Str != "" {
			msg = v.Str
			break
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}

	return &Error{
		Kind:       classifyStatus(status),
		StatusCode: status,
		Message:    msg,
		Detail:     gjson.GetBytes(body, "detail").Str,
	}
}

// kindOf extracts the Kind from err, or KindUnknown.
func kindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsUnauthorized reports whether err is a 401 remote failure.
func IsUnauthorized(err error) bool { return kindOf(err) == KindUnauthorized }

// IsBadRequest reports whether err is a non-401 4xx remote failure.
func IsBadRequest(err error) bool { return kindOf(err) == KindBadRequest }

// IsNetwork reports whether err is a transport-level failure.
func IsNetwork(err error) bool { return kindOf(err) == KindNetwork }

// IsTimeout reports whether err is a deadline failure.
func IsTimeout(err error) bool { return kindOf(err) == KindTimeout }
