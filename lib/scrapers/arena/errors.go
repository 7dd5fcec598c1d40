package arena

import (
	"fmt"

	"github.com/go-resty/resty/v2"
)

// AuthError means the session is invalid or expired. No retry makes an
// invalid session valid, so callers must abort and ask the operator to
// export fresh cookies.
type AuthError struct {
	Status int
	Reason string
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("session rejected (status %d): %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("invalid session: %s", e.Reason)
}

// TransientError covers timeouts, connection failures and 5xx/429
// responses. These are worth retrying with backoff.
type TransientError struct {
	Status int
	Err    error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient http failure: %s", e.Err)
	}
	return fmt.Sprintf("transient http failure: status %d", e.Status)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// ParseError means the remote answered with a payload we no longer
// understand. The profile is skipped, the run continues.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unexpected payload shape: %s", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// classifyResponse maps a resty response/transport error pair onto the
// error taxonomy. A nil return means the response can be consumed.
func classifyResponse(res *resty.Response, err error) error {
	if err != nil {
		return &TransientError{Err: err}
	}
	code := res.StatusCode()
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == 401 || code == 403:
		return &AuthError{Status: code, Reason: "credentials rejected by remote"}
	case code == 429 || code >= 500:
		return &TransientError{Status: code}
	default:
		return fmt.Errorf("unexpected status %d", code)
	}
}
