package ai

import (
	"errors"
	"fmt"
)

// ErrUnavailable means the provider is not usable because required
// configuration (credential, model) is missing. It is raised at
// construction time, before any network call.
var ErrUnavailable = errors.New("ai provider unavailable")

// ProviderError is a non-2xx answer from the remote embedding or
// generation API. It is propagated to the caller unchanged; retrying
// is the caller's decision.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error: status %d: %s", e.Provider, e.Status, e.Message)
}

func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
