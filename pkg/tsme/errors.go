package tsme

import (
	"fmt"
)

var (
	ErrMissingCredentials = fmt.Errorf("email and password must both be set")
	ErrUnknownProvider    = fmt.Errorf("unknown provider")

	ErrLoginPreparation   = fmt.Errorf("login preparation failed")
	ErrCSRFSourceNotFound = fmt.Errorf("csrf token source not found")
	ErrPayloadExtraction  = fmt.Errorf("payload extraction failed")
	ErrCSRFTokenMissing   = fmt.Errorf("csrf token missing")
	ErrLoginRequest       = fmt.Errorf("login request failed")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	ErrMeterListing       = fmt.Errorf("meter listing failed")
	ErrMeteringExtraction = fmt.Errorf("metering extraction failed")
)

// ConfigError is returned when a client cannot be built from the given settings.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// AuthError is returned by every failure of the login flow. Kind is one of the Err* login
// sentinels, Cause the lower level error when there is one.
type AuthError struct {
	Kind  error
	Cause error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("auth error: %s: %s", e.Kind, e.Cause)
	}
	return "auth error: " + e.Kind.Error()
}

func (e *AuthError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// APIError is returned when a listing or telemetry response does not pass envelope validation.
type APIError struct {
	Kind       error
	StatusCode int
	Message    string
	Cause      error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("api error: %s: HTTP %d", e.Kind, e.StatusCode)
	if e.Message != "" {
		msg += fmt.Sprintf(" (message %q)", e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *APIError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func authError(kind error, cause error) error {
	return &AuthError{Kind: kind, Cause: cause}
}
