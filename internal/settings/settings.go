// Package settings defines the per-request configuration snapshot for the
// answer pipeline. A snapshot is loaded fresh from the store before every
// classify/dispatch cycle and is never partially applied.
package settings

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// AuthScheme selects how the API credential is turned into a header value.
type AuthScheme string

const (
	AuthNone   AuthScheme = "none"
	AuthBearer AuthScheme = "bearer"
	AuthBasic  AuthScheme = "basic"
	AuthRaw    AuthScheme = "raw"
)

// Preset names a provider request/response shape.
type Preset string

const (
	PresetGeneric        Preset = "generic"
	PresetTextGeneration Preset = "text-generation"
	PresetChatCompletion Preset = "chat-completion"
)

// Floors below which stored values are clamped on load.
const (
	MinMaxTokens       = 16
	MinTimeoutMS       = 1000
	MinCaptionDuration = 3
)

// Settings is an immutable per-request configuration snapshot.
type Settings struct {
	Endpoint      string     `json:"endpoint" yaml:"endpoint"`
	AuthScheme    AuthScheme `json:"auth_scheme" yaml:"auth_scheme"`
	APIKey        string     `json:"api_key" yaml:"api_key"`
	HeaderName    string     `json:"header_name" yaml:"header_name"`
	BasicUsername string     `json:"basic_username" yaml:"basic_username"`
	BasicPassword string     `json:"basic_password" yaml:"basic_password"`

	Preset       Preset  `json:"preset" yaml:"preset"`
	Model        string  `json:"model" yaml:"model"`
	SystemPrompt string  `json:"system_prompt" yaml:"system_prompt"`
	Temperature  float64 `json:"temperature" yaml:"temperature"`
	MaxTokens    int     `json:"max_tokens" yaml:"max_tokens"`
	ResponsePath string  `json:"response_path" yaml:"response_path"`

	QuestionField string `json:"question_field" yaml:"question_field"`
	ContextField  string `json:"context_field" yaml:"context_field"`
	TopicField    string `json:"topic_field" yaml:"topic_field"`

	TimeoutMS int `json:"timeout_ms" yaml:"timeout_ms"`

	AutoEnabled            bool     `json:"auto_enabled" yaml:"auto_enabled"`
	Sites                  []string `json:"sites" yaml:"sites"`
	CooldownSeconds        int      `json:"cooldown_seconds" yaml:"cooldown_seconds"`
	MinLength              int      `json:"min_length" yaml:"min_length"`
	RequireQuestionMark    bool     `json:"require_question_mark" yaml:"require_question_mark"`
	DefaultTopic           string   `json:"default_topic" yaml:"default_topic"`
	CaptionDurationSeconds int      `json:"caption_duration_seconds" yaml:"caption_duration_seconds"`
}

// Defaults returns the baseline settings seeded on first run.
func Defaults() Settings {
	return Settings{
		Endpoint:               "",
		AuthScheme:             AuthNone,
		HeaderName:             "Authorization",
		Preset:                 PresetTextGeneration,
		Model:                  "meta-llama/Llama-3.1-8B-Instruct",
		SystemPrompt:           "You are a concise assistant for interview questions. Answer clearly and briefly.",
		Temperature:            0.2,
		MaxTokens:              512,
		ResponsePath:           "answer",
		QuestionField:          "question",
		ContextField:           "context",
		TopicField:             "topic",
		TimeoutMS:              30000,
		AutoEnabled:            false,
		Sites:                  []string{"meet", "zoom", "teams"},
		CooldownSeconds:        12,
		MinLength:              20,
		RequireQuestionMark:    false,
		DefaultTopic:           "general",
		CaptionDurationSeconds: 12,
	}
}

// Normalize clamps out-of-range values to their floors and fills empty
// fields that must never be empty. It returns the adjusted copy.
func (s Settings) Normalize() Settings {
	if s.HeaderName == "" {
		s.HeaderName = "Authorization"
	}
	if s.AuthScheme == "" {
		s.AuthScheme = AuthNone
	}
	if s.Preset == "" {
		s.Preset = PresetGeneric
	}
	if s.ResponsePath == "" {
		s.ResponsePath = "answer"
	}
	if s.QuestionField == "" {
		s.QuestionField = "question"
	}
	if s.Temperature < 0 {
		s.Temperature = 0
	}
	if s.MaxTokens < MinMaxTokens {
		s.MaxTokens = MinMaxTokens
	}
	if s.TimeoutMS < MinTimeoutMS {
		s.TimeoutMS = MinTimeoutMS
	}
	if s.CooldownSeconds < 0 {
		s.CooldownSeconds = 0
	}
	if s.MinLength < 0 {
		s.MinLength = 0
	}
	if s.DefaultTopic == "" {
		s.DefaultTopic = "general"
	}
	if s.CaptionDurationSeconds < MinCaptionDuration {
		s.CaptionDurationSeconds = MinCaptionDuration
	}
	return s
}

// FromKV overlays stored key/value pairs on top of Defaults and returns the
// normalized snapshot. Unknown keys are ignored so older or newer stores can
// coexist with this binary.
func FromKV(kv map[string]json.RawMessage) (Settings, error) {
	base, err := json.Marshal(Defaults())
	if err != nil {
		return Settings{}, eris.Wrap(err, "settings: marshal defaults")
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return Settings{}, eris.Wrap(err, "settings: unmarshal defaults")
	}
	for k, v := range kv {
		merged[k] = v
	}

	buf, err := json.Marshal(merged)
	if err != nil {
		return Settings{}, eris.Wrap(err, "settings: merge")
	}

	var s Settings
	if err := json.Unmarshal(buf, &s); err != nil {
		return Settings{}, eris.Wrap(err, "settings: decode stored values")
	}

	s = migrateLegacy(s, kv)
	return s.Normalize(), nil
}

// migrateLegacy maps the retired use_bearer boolean onto AuthScheme for
// stores written before the scheme field existed.
func migrateLegacy(s Settings, kv map[string]json.RawMessage) Settings {
	if _, ok := kv["auth_scheme"]; ok {
		return s
	}
	raw, ok := kv["use_bearer"]
	if !ok {
		return s
	}
	var useBearer bool
	if err := json.Unmarshal(raw, &useBearer); err != nil {
		return s
	}
	switch {
	case useBearer && s.APIKey != "":
		s.AuthScheme = AuthBearer
	case s.APIKey != "":
		s.AuthScheme = AuthRaw
	default:
		s.AuthScheme = AuthNone
	}
	return s
}

// ToKV flattens a snapshot into the key/value form the store persists.
func ToKV(s Settings) (map[string]json.RawMessage, error) {
	buf, err := json.Marshal(s)
	if err != nil {
		return nil, eris.Wrap(err, "settings: marshal")
	}
	var kv map[string]json.RawMessage
	if err := json.Unmarshal(buf, &kv); err != nil {
		return nil, eris.Wrap(err, "settings: flatten")
	}
	return kv, nil
}

// Keys returns the set of known settings keys, for CLI validation.
func Keys() []string {
	kv, _ := ToKV(Defaults())
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	return keys
}
