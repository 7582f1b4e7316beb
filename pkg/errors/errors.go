package errors

import (
	"errors"
	"fmt"
)

// ErrRelayFailed indicates a downstream lead delivery failed. Relay
// implementations wrap their failures with RelayError so the dispatcher's
// callers can match on the sentinel regardless of the relay type.
var ErrRelayFailed = errors.New("relay failed")

// RelayError creates a relay error with context
func RelayError(relay string, err error) error {
	return fmt.Errorf("%s: %v: %w", relay, err, ErrRelayFailed)
}
