package provider

import (
	"net/http"

	"github.com/sells-group/interview-copilot/internal/prompt"
	"github.com/sells-group/interview-copilot/internal/settings"
)

const (
	hfInferenceBase = "https://api-inference.huggingface.co/models/"
	defaultModel    = "meta-llama/Llama-3.1-8B-Instruct"
)

// textGenerationProvider targets Hugging Face style inference endpoints:
// the request carries a single composed prompt, the response is either an
// array of candidates or one object with a generated_text field.
type textGenerationProvider struct{}

func (textGenerationProvider) Name() string { return string(settings.PresetTextGeneration) }

func (textGenerationProvider) URL(s settings.Settings) (string, error) {
	if s.Endpoint != "" {
		return s.Endpoint, nil
	}
	model := s.Model
	if model == "" {
		model = defaultModel
	}
	return hfInferenceBase + model, nil
}

func (textGenerationProvider) Body(q Query, s settings.Settings) any {
	maxTokens := s.MaxTokens
	if maxTokens < settings.MinMaxTokens {
		maxTokens = settings.MinMaxTokens
	}
	return map[string]any{
		"inputs": prompt.Build(prompt.Parts{
			Question:     q.Question,
			Context:      q.Context,
			Topic:        q.Topic,
			SystemPrompt: s.SystemPrompt,
		}),
		"parameters": map[string]any{
			"max_new_tokens":   maxTokens,
			"temperature":      s.Temperature,
			"return_full_text": false,
		},
	}
}

func (textGenerationProvider) Authorize(h http.Header, s settings.Settings) {
	ApplyAuth(h, s)
	upgradeHFBearer(h, s)
}

func (textGenerationProvider) Parse(doc any, _ settings.Settings) string {
	if arr, ok := doc.([]any); ok {
		if len(arr) == 0 {
			return stringify(doc)
		}
		return generatedText(arr[0])
	}
	return generatedText(doc)
}

// generatedText reads the generated_text field of one candidate, falling
// back to serializing the candidate whole.
func generatedText(candidate any) string {
	if m, ok := candidate.(map[string]any); ok {
		if text, ok := m["generated_text"].(string); ok && text != "" {
			return text
		}
	}
	return stringify(candidate)
}
