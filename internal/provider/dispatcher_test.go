package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/interview-copilot/internal/fetcher"
	"github.com/sells-group/interview-copilot/internal/settings"
)

// staticSource returns a fixed snapshot, standing in for the settings store.
type staticSource struct {
	s settings.Settings
}

func (s staticSource) Settings(context.Context) (settings.Settings, error) {
	return s.s.Normalize(), nil
}

func newDispatcher(s settings.Settings) *Dispatcher {
	return NewDispatcher(staticSource{s: s}, fetcher.New(fetcher.Options{}))
}

func TestSend_GenericEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "What is Go?", req["question"])
		assert.Equal(t, "interviews", req["topic"])
		_, hasContext := req["context"]
		assert.False(t, hasContext, "empty context must be omitted")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"a language"}`))
	}))
	defer srv.Close()

	s := settings.Defaults()
	s.Preset = settings.PresetGeneric
	s.Endpoint = srv.URL
	s.AuthScheme = settings.AuthBearer
	s.APIKey = "sk-test"

	ans, err := newDispatcher(s).Send(context.Background(), Query{
		Question: "What is Go?",
		Topic:    "interviews",
	})
	require.NoError(t, err)
	assert.Equal(t, "a language", ans.Answer)
	assert.Equal(t, "What is Go?", ans.Question)
	assert.Equal(t, "interviews", ans.Topic)
}

func TestSend_ChatCompletionEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "mixtral", req["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"42"}}]}`))
	}))
	defer srv.Close()

	s := settings.Defaults()
	s.Preset = settings.PresetChatCompletion
	s.Endpoint = srv.URL
	s.Model = "mixtral"

	ans, err := newDispatcher(s).Send(context.Background(), Query{Question: "What is the answer?"})
	require.NoError(t, err)
	assert.Equal(t, "42", ans.Answer)
}

func TestSend_MissingEndpointIsConfigError(t *testing.T) {
	s := settings.Defaults()
	s.Preset = settings.PresetChatCompletion

	_, err := newDispatcher(s).Send(context.Background(), Query{Question: "Why?"})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestSend_NonJSONContentTypeReturnsRawText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("plain answer"))
	}))
	defer srv.Close()

	s := settings.Defaults()
	s.Preset = settings.PresetGeneric
	s.Endpoint = srv.URL

	ans, err := newDispatcher(s).Send(context.Background(), Query{Question: "Why?"})
	require.NoError(t, err)
	assert.Equal(t, "plain answer", ans.Answer)
}

func TestSend_HTTPErrorSummaries(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantSummary string
	}{
		{
			name:        "html_body_replaced_by_fixed_diagnostic",
			status:      http.StatusBadGateway,
			contentType: "text/html",
			body:        "<!DOCTYPE html><html><body><h1>502</h1></body></html>",
			wantSummary: htmlErrorSummary,
		},
		{
			name:        "long_body_truncated",
			status:      http.StatusBadRequest,
			contentType: "application/json",
			body:        `{"error":"` + strings.Repeat("x", 500) + `"}`,
			wantSummary: (`{"error":"` + strings.Repeat("x", 500) + `"}`)[:errSummaryLimit],
		},
		{
			name:        "short_body_kept",
			status:      http.StatusUnauthorized,
			contentType: "application/json",
			body:        `{"error":"bad key"}`,
			wantSummary: `{"error":"bad key"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			s := settings.Defaults()
			s.Preset = settings.PresetGeneric
			s.Endpoint = srv.URL

			_, err := newDispatcher(s).Send(context.Background(), Query{Question: "Why?"})
			var httpErr *HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.Status)
			assert.Equal(t, tt.wantSummary, httpErr.Summary)
			assert.Equal(t, string(settings.PresetGeneric), httpErr.Provider)
		})
	}
}

func TestSend_TimeoutSurfaces(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	s := settings.Defaults()
	s.Preset = settings.PresetGeneric
	s.Endpoint = srv.URL
	s.TimeoutMS = 1000

	start := time.Now()
	_, err := newDispatcher(s).Send(context.Background(), Query{Question: "Why is it slow?"})

	var te *fetcher.TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Less(t, time.Since(start), 10*time.Second)
}
