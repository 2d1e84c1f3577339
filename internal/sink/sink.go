// Package sink delivers normalized answers to whatever renders them. The
// overlay process is external; this package only sends and falls back.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/interview-copilot/internal/provider"
)

// Sink receives answers for display.
type Sink interface {
	Show(ctx context.Context, a provider.Answer) error
}

// Console prints answers to a writer, caption-bar style.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole creates a console sink.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Show(_ context.Context, a provider.Answer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if a.Topic != "" {
		fmt.Fprintf(c.out, "[%s]\n", a.Topic)
	}
	fmt.Fprintf(c.out, "Q: %s\nA: %s\n\n", a.Question, a.Answer)
	return nil
}

// Webhook POSTs a show-answer message to an overlay process.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a webhook sink.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

type showAnswerMessage struct {
	Type     string `json:"type"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Topic    string `json:"topic,omitempty"`
}

func (w *Webhook) Show(ctx context.Context, a provider.Answer) error {
	body, err := json.Marshal(showAnswerMessage{
		Type:     "show-answer",
		Question: a.Question,
		Answer:   a.Answer,
		Topic:    a.Topic,
	})
	if err != nil {
		return eris.Wrap(err, "sink: marshal show-answer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "sink: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "sink: send show-answer")
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return eris.Errorf("sink: overlay returned status %d", resp.StatusCode)
	}
	return nil
}

// Fallback tries the primary sink and falls back to the secondary when it
// fails, logging the failure. Mirrors the overlay-then-notification
// behavior of the desktop renderer.
type Fallback struct {
	primary   Sink
	secondary Sink
}

// NewFallback creates a fallback chain of two sinks.
func NewFallback(primary, secondary Sink) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

func (f *Fallback) Show(ctx context.Context, a provider.Answer) error {
	if err := f.primary.Show(ctx, a); err != nil {
		zap.L().Warn("primary sink failed, falling back", zap.Error(err))
		return f.secondary.Show(ctx, a)
	}
	return nil
}
