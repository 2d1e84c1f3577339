// Package provider translates questions into provider-specific requests and
// normalizes provider responses back into plain answer strings. Three
// request/response shapes are supported: a generic JSON endpoint, Hugging
// Face style text-generation, and OpenAI style chat-completion.
package provider

import (
	"encoding/json"
	"net/http"

	"github.com/sells-group/interview-copilot/internal/settings"
)

// Query is one question to answer, with optional context and topic.
type Query struct {
	Question string
	Context  string
	Topic    string
}

// Provider is one request/response shape. Implementations are stateless;
// every call receives the settings snapshot backing the request.
type Provider interface {
	// Name returns the preset identifier.
	Name() string
	// URL resolves the endpoint, deriving a default where the preset has
	// one. A missing required endpoint is a *ConfigError.
	URL(s settings.Settings) (string, error)
	// Body builds the JSON-serializable request payload.
	Body(q Query, s settings.Settings) any
	// Authorize sets auth headers, including any provider-specific
	// correction on top of the generic scheme logic.
	Authorize(h http.Header, s settings.Settings)
	// Parse extracts the answer from a decoded JSON response body.
	// Extraction is best-effort: when the expected shape is absent the
	// raw payload is JSON-serialized instead. Parse never fails.
	Parse(doc any, s settings.Settings) string
}

// ForPreset returns the Provider for a preset selector.
func ForPreset(p settings.Preset) (Provider, error) {
	switch p {
	case settings.PresetGeneric:
		return genericProvider{}, nil
	case settings.PresetTextGeneration:
		return textGenerationProvider{}, nil
	case settings.PresetChatCompletion:
		return chatCompletionProvider{}, nil
	default:
		return nil, &ConfigError{Reason: "unknown provider preset: " + string(p)}
	}
}

// stringify returns string values as-is and JSON-serializes everything
// else; a value that cannot be marshaled yields an empty string.
func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(buf)
}
