package provider

import (
	"net/http"

	"github.com/sells-group/interview-copilot/internal/jsonpath"
	"github.com/sells-group/interview-copilot/internal/prompt"
	"github.com/sells-group/interview-copilot/internal/settings"
)

const fallbackSystemPrompt = "You are a concise assistant."

// chatCompletionProvider targets OpenAI-compatible chat endpoints
// (Together, Fireworks, OpenRouter and the like). Non-streaming only.
type chatCompletionProvider struct{}

func (chatCompletionProvider) Name() string { return string(settings.PresetChatCompletion) }

func (chatCompletionProvider) URL(s settings.Settings) (string, error) {
	if s.Endpoint == "" {
		return "", &ConfigError{Reason: "endpoint URL is required for the chat-completion preset"}
	}
	return s.Endpoint, nil
}

func (chatCompletionProvider) Body(q Query, s settings.Settings) any {
	model := s.Model
	if model == "" {
		model = defaultModel
	}
	system := s.SystemPrompt
	if system == "" {
		system = fallbackSystemPrompt
	}

	maxTokens := s.MaxTokens
	if maxTokens < settings.MinMaxTokens {
		maxTokens = settings.MinMaxTokens
	}

	// The system prompt travels as its own message, so the user content
	// is composed without it.
	user := prompt.Build(prompt.Parts{
		Question: q.Question,
		Context:  q.Context,
		Topic:    q.Topic,
	})

	return map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"temperature": s.Temperature,
		"max_tokens":  maxTokens,
	}
}

func (chatCompletionProvider) Authorize(h http.Header, s settings.Settings) {
	ApplyAuth(h, s)
}

func (chatCompletionProvider) Parse(doc any, _ settings.Settings) string {
	if v, ok := jsonpath.Extract(doc, "choices[0].message.content"); ok {
		if text, isStr := v.(string); isStr && text != "" {
			return text
		}
	}
	if v, ok := jsonpath.Extract(doc, "choices[0].text"); ok {
		if text, isStr := v.(string); isStr && text != "" {
			return text
		}
	}
	return stringify(doc)
}
