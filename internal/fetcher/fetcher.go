// Package fetcher performs the outbound HTTP calls for answer requests. It
// enforces a hard per-request timeout with a fixed floor, applies per-host
// politeness rate limits, and classifies response bodies so callers can
// build useful error summaries without dumping markup.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// TimeoutFloor is the minimum enforced request timeout. Configured values
// below it are raised, never honored.
const TimeoutFloor = 1000 * time.Millisecond

// maxBodyBytes caps how much of a response is read into memory.
const maxBodyBytes = 4 << 20

// TimeoutError reports that a request exceeded its deadline. The underlying
// call is cancelled when this fires.
type TimeoutError struct {
	Millis int64
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Request timed out after %d ms", e.Millis)
}

// Request describes one outbound POST.
type Request struct {
	URL     string
	Headers http.Header
	Body    []byte
	Timeout time.Duration
}

// Result is a completed HTTP exchange. Body is fully read and the
// connection released before Result is returned.
type Result struct {
	Status      int
	Body        []byte
	ContentType string
}

// IsJSON reports whether the response declared a JSON content type.
func (r *Result) IsJSON() bool {
	return strings.Contains(strings.ToLower(r.ContentType), "application/json")
}

// IsHTML sniffs the body for an HTML document, used to keep markup out of
// error summaries.
func (r *Result) IsHTML() bool {
	head := bytes.TrimSpace(r.Body)
	if len(head) > 64 {
		head = head[:64]
	}
	lower := strings.ToLower(string(head))
	return strings.HasPrefix(lower, "<!doctype html") || strings.HasPrefix(lower, "<html")
}

// OK reports a 2xx status.
func (r *Result) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Options configures a Fetcher.
type Options struct {
	UserAgent    string
	RateLimiters map[string]*rate.Limiter
}

// Fetcher issues timed POST requests. The zero limiter (20 rps, burst 20)
// applies to hosts without an explicit entry.
type Fetcher struct {
	client   *http.Client
	opts     Options
	limiters map[string]*rate.Limiter
	fallback *rate.Limiter
}

// New creates a Fetcher.
func New(opts Options) *Fetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = "interview-copilot/1.0"
	}
	limiters := make(map[string]*rate.Limiter, len(opts.RateLimiters))
	for k, v := range opts.RateLimiters {
		limiters[k] = v
	}
	return &Fetcher{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:     opts,
		limiters: limiters,
		fallback: rate.NewLimiter(20, 20),
	}
}

func (f *Fetcher) limiterFor(rawURL string) *rate.Limiter {
	u, err := url.Parse(rawURL)
	if err != nil {
		return f.fallback
	}
	if lim, ok := f.limiters[u.Host]; ok {
		return lim
	}
	return f.fallback
}

// Do executes the request. The effective timeout is req.Timeout raised to
// TimeoutFloor; expiry cancels the in-flight call and returns a
// *TimeoutError. Non-2xx statuses are returned as Results, not errors;
// status handling belongs to the caller.
func (f *Fetcher) Do(ctx context.Context, req Request) (*Result, error) {
	timeout := req.Timeout
	if timeout < TimeoutFloor {
		timeout = TimeoutFloor
	}

	if err := f.limiterFor(req.URL).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetcher: rate limiter wait")
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create request")
	}
	httpReq.Header.Set("User-Agent", f.opts.UserAgent)
	for k, vals := range req.Headers {
		for _, v := range vals {
			httpReq.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := f.client.Do(httpReq)
	if err != nil {
		if timedOut(callCtx, err) {
			return nil, &TimeoutError{Millis: timeout.Milliseconds()}
		}
		return nil, eris.Wrap(err, "fetcher: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if timedOut(callCtx, err) {
			return nil, &TimeoutError{Millis: timeout.Milliseconds()}
		}
		return nil, eris.Wrap(err, "fetcher: read response")
	}

	zap.L().Debug("request complete",
		zap.String("url", req.URL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Result{
		Status:      resp.StatusCode,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// timedOut distinguishes our deadline from caller cancellation.
func timedOut(ctx context.Context, err error) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded)
}
