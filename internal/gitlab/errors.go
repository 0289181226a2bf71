package gitlab

import "fmt"

// AuthError means the token was missing, rejected, or the identity
// query returned no user. Not retryable.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "gitlab authentication failed: " + e.Reason
}

// QueryError wraps any transport or API-level failure of a query so
// callers never see raw transport errors.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("gitlab query %s failed: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
