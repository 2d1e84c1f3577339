package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"question":"hi"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"hello"}`))
	}))
	defer srv.Close()

	f := New(Options{})
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Authorization", "Bearer sk-test")

	res, err := f.Do(context.Background(), Request{
		URL:     srv.URL,
		Headers: headers,
		Body:    []byte(`{"question":"hi"}`),
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.True(t, res.IsJSON())
	assert.False(t, res.IsHTML())

	var parsed map[string]string
	require.NoError(t, json.Unmarshal(res.Body, &parsed))
	assert.Equal(t, "hello", parsed["answer"])
}

func TestDo_TimeoutCancelsStalledCall(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	f := New(Options{})
	start := time.Now()
	_, err := f.Do(context.Background(), Request{
		URL:     srv.URL,
		Timeout: 1 * time.Second,
	})
	require.Error(t, err)

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, int64(1000), te.Millis)
	assert.Equal(t, "Request timed out after 1000 ms", te.Error())
	assert.Less(t, time.Since(start), 5*time.Second, "call must be cancelled, not awaited")
}

func TestDo_TimeoutFloorAppliesToTinyValues(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	f := New(Options{})
	_, err := f.Do(context.Background(), Request{
		URL:     srv.URL,
		Timeout: 50 * time.Millisecond,
	})

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, int64(1000), te.Millis, "floor raises sub-second timeouts")
}

func TestDo_NonTwoHundredIsAResultNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream down"}`))
	}))
	defer srv.Close()

	f := New(Options{})
	res, err := f.Do(context.Background(), Request{URL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, http.StatusBadGateway, res.Status)
}

func TestDo_CallerCancellationIsNotATimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	f := New(Options{})
	_, err := f.Do(ctx, Request{URL: srv.URL, Timeout: 30 * time.Second})
	require.Error(t, err)

	var te *TimeoutError
	assert.False(t, errors.As(err, &te))
}

func TestResult_IsHTML(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "doctype", body: "<!DOCTYPE html><html><body>nope</body></html>", want: true},
		{name: "bare_html_tag", body: "  <html lang=\"en\"><head></head></html>", want: true},
		{name: "json", body: `{"answer":"x"}`, want: false},
		{name: "plain_text", body: "it broke", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Result{Body: []byte(tt.body)}
			assert.Equal(t, tt.want, r.IsHTML())
		})
	}
}
