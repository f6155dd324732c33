package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized means the backend refused the credential, or there was no
// credential to send. The session has already been purged when this is seen.
var ErrUnauthorized = errors.New("unauthorized")

// StatusError is a non-2xx backend answer other than an authorization failure
// on a protected call.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend answered %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend answered %d: %s", e.Status, e.Message)
}

// Rejected reports whether the backend declined a well-formed request, as
// opposed to failing on its side.
func (e *StatusError) Rejected() bool {
	return e.Status >= 400 && e.Status < 500
}

// Rejection returns the backend-provided reason when err is a business-rule
// rejection. The reason may be empty when the backend sent none.
func Rejection(err error) (string, bool) {
	var se *StatusError
	if errors.As(err, &se) && se.Rejected() {
		return se.Message, true
	}
	return "", false
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
