// Package server exposes the ask/test-call message surface over HTTP for
// popup and overlay processes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/interview-copilot/internal/fetcher"
	"github.com/sells-group/interview-copilot/internal/provider"
)

// Dispatcher sends one question through the provider pipeline.
type Dispatcher interface {
	Send(ctx context.Context, q provider.Query) (provider.Answer, error)
}

// SelectionFunc returns the user's current text selection, used when an ask
// arrives without a question. The clipboard implementation is wired in
// at startup.
type SelectionFunc func(ctx context.Context) (string, error)

// Server handles inbound messages.
type Server struct {
	dispatch  Dispatcher
	selection SelectionFunc
}

// New creates a Server. selection may be nil when no selection source is
// available.
func New(dispatch Dispatcher, selection SelectionFunc) *Server {
	return &Server{dispatch: dispatch, selection: selection}
}

// Router builds the HTTP routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/ask", s.handleAsk)
	r.Post("/test-call", s.handleTestCall)
	return r
}

type askRequest struct {
	Question string `json:"question"`
	Context  string `json:"context"`
	Topic    string `json:"topic"`
	Source   string `json:"source"`
}

type askResponse struct {
	OK       bool   `json:"ok"`
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, askResponse{OK: false, Error: "invalid request body"})
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" && s.selection != nil {
		sel, err := s.selection(r.Context())
		if err != nil {
			zap.L().Warn("selection read failed", zap.Error(err))
		}
		question = strings.TrimSpace(sel)
	}
	if question == "" {
		writeJSON(w, http.StatusUnprocessableEntity, askResponse{
			OK:    false,
			Error: "No question provided. Select text or pass one explicitly.",
		})
		return
	}

	ans, err := s.dispatch.Send(r.Context(), provider.Query{
		Question: question,
		Context:  req.Context,
		Topic:    req.Topic,
	})
	if err != nil {
		writeJSON(w, statusFor(err), askResponse{OK: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, askResponse{OK: true, Question: ans.Question, Answer: ans.Answer})
}

type testCallRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleTestCall(w http.ResponseWriter, r *http.Request) {
	var req testCallRequest
	if r.Body != nil {
		// An empty or malformed body just means the default prompt.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = "ping"
	}

	ans, err := s.dispatch.Send(r.Context(), provider.Query{Question: prompt})
	if err != nil {
		writeJSON(w, statusFor(err), askResponse{OK: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, askResponse{OK: true, Answer: ans.Answer})
}

// statusFor maps pipeline failures onto response codes; the JSON body
// carries the message either way.
func statusFor(err error) int {
	var cfgErr *provider.ConfigError
	if errors.As(err, &cfgErr) {
		return http.StatusUnprocessableEntity
	}
	var te *fetcher.TimeoutError
	if errors.As(err, &te) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response failed", zap.Error(err))
	}
}
