package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/interview-copilot/internal/fetcher"
	"github.com/sells-group/interview-copilot/internal/settings"
)

// errSummaryLimit caps how much of an error body makes it into an
// HTTPError summary.
const errSummaryLimit = 240

// htmlErrorSummary replaces HTML error bodies, which are markup noise from
// a proxy or a wrong URL, not a provider message.
const htmlErrorSummary = "endpoint returned an HTML page; check the URL and credentials"

// SettingsSource loads a fresh settings snapshot. The store-backed
// implementation lets a user reconfigure without restarting the daemon.
type SettingsSource interface {
	Settings(ctx context.Context) (settings.Settings, error)
}

// Doer issues the timed HTTP call.
type Doer interface {
	Do(ctx context.Context, req fetcher.Request) (*fetcher.Result, error)
}

// Answer is a normalized provider response.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Topic    string `json:"topic,omitempty"`
}

// Dispatcher sends one question through the configured provider and
// normalizes the result. Requests are never retried.
type Dispatcher struct {
	source SettingsSource
	doer   Doer
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(source SettingsSource, doer Doer) *Dispatcher {
	return &Dispatcher{source: source, doer: doer}
}

// Send loads a fresh settings snapshot, dispatches the query, and returns
// the normalized answer. Configuration and HTTP failures surface as
// *ConfigError, *HTTPError or *fetcher.TimeoutError; extraction failures
// never surface, they degrade to the serialized payload.
func (d *Dispatcher) Send(ctx context.Context, q Query) (Answer, error) {
	s, err := d.source.Settings(ctx)
	if err != nil {
		return Answer{}, eris.Wrap(err, "dispatch: load settings")
	}

	p, err := ForPreset(s.Preset)
	if err != nil {
		return Answer{}, err
	}

	url, err := p.URL(s)
	if err != nil {
		return Answer{}, err
	}

	body, err := json.Marshal(p.Body(q, s))
	if err != nil {
		return Answer{}, eris.Wrap(err, "dispatch: marshal request body")
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")
	p.Authorize(headers, s)

	requestID := uuid.New().String()
	log := zap.L().With(
		zap.String("request_id", requestID),
		zap.String("provider", p.Name()),
	)
	log.Debug("dispatching question", zap.Int("question_len", len(q.Question)))

	res, err := d.doer.Do(ctx, fetcher.Request{
		URL:     url,
		Headers: headers,
		Body:    body,
		Timeout: time.Duration(s.TimeoutMS) * time.Millisecond,
	})
	if err != nil {
		return Answer{}, err
	}

	if !res.OK() {
		httpErr := &HTTPError{
			Status:   res.Status,
			Summary:  errorSummary(res),
			Provider: p.Name(),
			URL:      url,
		}
		log.Warn("provider returned error status", zap.Int("status", res.Status))
		return Answer{}, httpErr
	}

	answer := normalize(res, p, s)
	log.Debug("answer received", zap.Int("answer_len", len(answer)))

	return Answer{Question: q.Question, Answer: answer, Topic: q.Topic}, nil
}

// normalize turns a successful response into plain text. A non-JSON
// content type is returned verbatim regardless of preset; an unparsable
// JSON body degrades the same way.
func normalize(res *fetcher.Result, p Provider, s settings.Settings) string {
	if !res.IsJSON() {
		return string(res.Body)
	}
	var doc any
	if err := json.Unmarshal(res.Body, &doc); err != nil {
		return string(res.Body)
	}
	return p.Parse(doc, s)
}

func errorSummary(res *fetcher.Result) string {
	if res.IsHTML() {
		return htmlErrorSummary
	}
	body := strings.TrimSpace(string(res.Body))
	if len(body) > errSummaryLimit {
		body = body[:errSummaryLimit]
	}
	return body
}
