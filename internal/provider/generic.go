package provider

import (
	"net/http"

	"github.com/sells-group/interview-copilot/internal/jsonpath"
	"github.com/sells-group/interview-copilot/internal/settings"
)

// genericProvider posts a flat JSON object with configurable field names
// and extracts the answer via the configured response path.
type genericProvider struct{}

func (genericProvider) Name() string { return string(settings.PresetGeneric) }

func (genericProvider) URL(s settings.Settings) (string, error) {
	if s.Endpoint == "" {
		return "", &ConfigError{Reason: "endpoint URL is required for the generic preset"}
	}
	return s.Endpoint, nil
}

func (genericProvider) Body(q Query, s settings.Settings) any {
	body := map[string]any{
		s.QuestionField: q.Question,
	}
	if q.Context != "" {
		field := s.ContextField
		if field == "" {
			field = "context"
		}
		body[field] = q.Context
	}
	if q.Topic != "" {
		field := s.TopicField
		if field == "" {
			field = "topic"
		}
		body[field] = q.Topic
	}
	return body
}

func (genericProvider) Authorize(h http.Header, s settings.Settings) {
	ApplyAuth(h, s)
}

func (genericProvider) Parse(doc any, s settings.Settings) string {
	path := s.ResponsePath
	if path == "" {
		path = "answer"
	}
	v, ok := jsonpath.Extract(doc, path)
	if !ok {
		return stringify(doc)
	}
	return stringify(v)
}
