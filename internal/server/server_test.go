package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/interview-copilot/internal/fetcher"
	"github.com/sells-group/interview-copilot/internal/provider"
)

type stubDispatcher struct {
	lastQuery provider.Query
	answer    string
	err       error
}

func (s *stubDispatcher) Send(_ context.Context, q provider.Query) (provider.Answer, error) {
	s.lastQuery = q
	if s.err != nil {
		return provider.Answer{}, s.err
	}
	return provider.Answer{Question: q.Question, Answer: s.answer, Topic: q.Topic}, nil
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := New(&stubDispatcher{answer: "ok"}, nil)
	rec := doRequest(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAsk_Success(t *testing.T) {
	disp := &stubDispatcher{answer: "a language"}
	srv := New(disp, nil)

	rec := doRequest(t, srv, http.MethodPost, "/ask",
		`{"question":"What is Go?","context":"interview","topic":"general","source":"popup"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"question":"What is Go?","answer":"a language"}`, rec.Body.String())
	assert.Equal(t, "interview", disp.lastQuery.Context)
	assert.Equal(t, "general", disp.lastQuery.Topic)
}

func TestAsk_FallsBackToSelection(t *testing.T) {
	disp := &stubDispatcher{answer: "from selection"}
	srv := New(disp, func(context.Context) (string, error) {
		return "  What is a B-tree?  ", nil
	})

	rec := doRequest(t, srv, http.MethodPost, "/ask", `{"source":"command"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "What is a B-tree?", disp.lastQuery.Question)
}

func TestAsk_NoQuestionAnywhere(t *testing.T) {
	srv := New(&stubDispatcher{}, func(context.Context) (string, error) { return "", nil })

	rec := doRequest(t, srv, http.MethodPost, "/ask", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":false`)
}

func TestAsk_InvalidBody(t *testing.T) {
	srv := New(&stubDispatcher{}, nil)
	rec := doRequest(t, srv, http.MethodPost, "/ask", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAsk_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "config_error",
			err:        &provider.ConfigError{Reason: "endpoint URL is required"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "timeout",
			err:        &fetcher.TimeoutError{Millis: 1000},
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:       "other_upstream_failure",
			err:        errors.New("connection refused"),
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(&stubDispatcher{err: tt.err}, nil)
			rec := doRequest(t, srv, http.MethodPost, "/ask", `{"question":"Why?"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), `"ok":false`)
		})
	}
}

func TestTestCall_DefaultPrompt(t *testing.T) {
	disp := &stubDispatcher{answer: "pong"}
	srv := New(disp, nil)

	rec := doRequest(t, srv, http.MethodPost, "/test-call", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ping", disp.lastQuery.Question)
	assert.JSONEq(t, `{"ok":true,"answer":"pong"}`, rec.Body.String())
}

func TestTestCall_CustomPrompt(t *testing.T) {
	disp := &stubDispatcher{answer: "hi"}
	srv := New(disp, nil)

	rec := doRequest(t, srv, http.MethodPost, "/test-call", `{"prompt":"hello there"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello there", disp.lastQuery.Question)
}
