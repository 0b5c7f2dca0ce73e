package notify

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned for requests rejected before sending.
var ErrInvalidInput = errors.New("invalid notification request")

// NotificationError reports a failed delivery. HTTPStatus is zero when the
// request never got a response.
type NotificationError struct {
	HTTPStatus int
	Cause      error
}

func (e *NotificationError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("webhook returned HTTP %d: %v", e.HTTPStatus, e.Cause)
	}
	return fmt.Sprintf("webhook delivery failed: %v", e.Cause)
}

func (e *NotificationError) Unwrap() error {
	return e.Cause
}
