package calendar

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// ErrEventNotFound signals that the provider has no event with the given
// ID. Callers that only want the event gone treat it as success.
var ErrEventNotFound = errors.New("calendar event not found")

// CredentialError means a calendar session could not be established or
// refreshed. Permanent errors (expired or revoked tokens) must not be
// retried; re-auth requires operator intervention.
type CredentialError struct {
	Permanent bool
	Err       error
}

func (e *CredentialError) Error() string {
	if e.Permanent {
		return fmt.Sprintf("calendar credentials invalid (re-auth required): %v", e.Err)
	}
	return fmt.Sprintf("calendar credentials unavailable: %v", e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// ProviderError wraps a failed provider call that is not a credential
// problem.
type ProviderError struct {
	Op   string
	Code int
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("calendar %s failed (status %d): %v", e.Op, e.Code, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// wrapProviderError translates a google API error into the package's
// taxonomy, mapping 404 to ErrEventNotFound.
func wrapProviderError(op string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == 404 {
			return fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return &ProviderError{Op: op, Code: apiErr.Code, Err: err}
	}
	return &ProviderError{Op: op, Err: err}
}

// IsNotFound reports whether err means the event does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound)
}
