package llm

import (
	"errors"
	"fmt"
)

// ConfigError means a required credential or setting is missing. It is
// detected before any network call and maps to a client-facing 400.
type ConfigError struct {
	Provider string
	Missing  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s not configured", e.Provider, e.Missing)
}

// ProviderError means a remote call failed: transport error, non-2xx status
// or an unusable response body. It maps to a 502 at the HTTP layer.
type ProviderError struct {
	Provider string
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ErrAssistantsAPI is returned by the retired Assistants API surface.
var ErrAssistantsAPI = errors.New("assistants API is no longer supported")

func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
