package provider

import "fmt"

// ConfigError reports a settings problem that makes the request impossible,
// e.g. a preset that needs an endpoint URL without one configured. It is
// fatal to the single request and never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Reason
}

// HTTPError reports a non-2xx response. Summary is safe to show to a user:
// HTML bodies are replaced by a fixed diagnostic and other bodies are
// truncated.
type HTTPError struct {
	Status   int
	Summary  string
	Provider string
	URL      string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: %s returned status %d: %s", e.Provider, e.URL, e.Status, e.Summary)
}
