package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/fundchat"
	"github.com/aretw0/fundchat/internal/logging"
	"github.com/aretw0/fundchat/pkg/domain"
	"github.com/aretw0/fundchat/pkg/funds"
	"github.com/aretw0/fundchat/pkg/mention"
	"github.com/aretw0/fundchat/pkg/ports"
	"github.com/aretw0/fundchat/pkg/runner"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/oapi-codegen/runtime"
)

// Invalidator is implemented by sources that keep their own cache.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Server exposes the mention engine, the fund directory and the animation
// hub over HTTP.
type Server struct {
	Engine     *mention.Engine
	Source     ports.CandidateSource
	Directory  ports.FundDirectory
	Animations *AnimationHub

	logger      *slog.Logger
	metrics     http.Handler
	allowOrigin string
	sanitizer   runner.Sanitizer
	spec        *openapi3.T
	upgrader    websocket.Upgrader
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithAllowOrigin sets the CORS Access-Control-Allow-Origin value ("*" by default).
func WithAllowOrigin(origin string) Option {
	return func(s *Server) {
		if origin != "" {
			s.allowOrigin = origin
		}
	}
}

// WithSanitizer replaces the default input sanitizer.
func WithSanitizer(san runner.Sanitizer) Option {
	return func(s *Server) {
		s.sanitizer = san
	}
}

// NewServer validates the embedded API document and builds a Server.
func NewServer(engine *mention.Engine, source ports.CandidateSource, directory ports.FundDirectory, hub *AnimationHub, opts ...Option) (*Server, error) {
	spec, err := LoadSpec()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Engine:      engine,
		Source:      source,
		Directory:   directory,
		Animations:  hub,
		logger:      logging.NewNop(),
		allowOrigin: "*",
		sanitizer:   runner.NewSanitizer(0),
		spec:        spec,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return s.allowOrigin == "*" || r.Header.Get("Origin") == "" || r.Header.Get("Origin") == s.allowOrigin
		},
	}
	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Get("/schemes", s.ListSchemes)
	r.Delete("/schemes/cache", s.InvalidateSchemes)
	r.Get("/suggest", s.Suggest)
	r.Post("/select", s.SelectSuggestion)
	r.Get("/funds/{name}", s.GetFund)

	r.Post("/animations", s.StartAnimation)
	r.Get("/animations/{id}", s.GetAnimation)
	r.Delete("/animations/{id}", s.StopAnimation)
	r.Post("/animations/{id}/resume", s.ResumeAnimation)
	r.Get("/animations/{id}/events", s.StreamAnimation)
	r.Get("/animations/{id}/ws", s.StreamAnimationWebSocket)

	return enableCORS(s.allowOrigin, r)
}

func enableCORS(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"app":         "fundchat-http",
		"version":     strings.TrimSpace(fundchat.Version),
		"api_version": apiVersion,
	})
}

// ListSchemes handles the GET /schemes request.
func (s *Server) ListSchemes(w http.ResponseWriter, r *http.Request) {
	s.activate(r.Context())

	names := s.Engine.Candidates()
	if len(names) == 0 {
		respondError(w, http.StatusBadGateway, "candidates_unavailable", "fund catalogue is unavailable")
		return
	}
	respondJSON(w, http.StatusOK, names)
}

// InvalidateSchemes handles the DELETE /schemes/cache request.
func (s *Server) InvalidateSchemes(w http.ResponseWriter, r *http.Request) {
	s.Engine.InvalidateCandidates()
	if inv, ok := s.Source.(Invalidator); ok {
		if err := inv.Invalidate(r.Context()); err != nil {
			s.logger.Error("Candidate cache invalidation failed", "error", err)
			respondError(w, http.StatusBadGateway, "cache_error", err.Error())
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// Suggest handles the GET /suggest request.
func (s *Server) Suggest(w http.ResponseWriter, r *http.Request) {
	var q string
	if err := runtime.BindQueryParameter("form", true, true, "q", r.URL.Query(), &q); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_parameter", fmt.Sprintf("Invalid format for parameter q: %v", err))
		return
	}
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_parameter", fmt.Sprintf("Invalid format for parameter limit: %v", err))
		return
	}

	text, ok := s.clean(w, q)
	if !ok {
		return
	}

	view := s.Engine.Evaluate(text)
	if mention.NeedsActivation(view) {
		s.activate(r.Context())
		view = s.Engine.Evaluate(text)
	}
	if limit != nil && *limit > 0 && len(view.Filtered) > *limit {
		view.Filtered = view.Filtered[:*limit]
	}
	respondJSON(w, http.StatusOK, view)
}

type selectRequest struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

type selectResponse struct {
	Text string `json:"text"`
}

// SelectSuggestion handles the POST /select request.
func (s *Server) SelectSuggestion(w http.ResponseWriter, r *http.Request) {
	var body selectRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		s.logger.Warn("Select: Invalid request body", "error", err)
		return
	}
	if strings.TrimSpace(body.Value) == "" {
		respondError(w, http.StatusBadRequest, "empty_selection", domain.ErrEmptySelection.Error())
		return
	}
	text, ok := s.clean(w, body.Text)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, selectResponse{Text: s.Engine.SelectSuggestion(body.Value, text)})
}

type fundResponse struct {
	*domain.FundReport
	Text string `json:"text"`
}

// GetFund handles the GET /funds/{name} request.
func (s *Server) GetFund(w http.ResponseWriter, r *http.Request) {
	var name string
	if err := runtime.BindStyledParameterWithOptions("simple", "name", chi.URLParam(r, "name"), &name,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true}); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_parameter", fmt.Sprintf("Invalid format for parameter name: %v", err))
		return
	}

	report, err := s.Directory.Lookup(r.Context(), name)
	switch {
	case errors.Is(err, domain.ErrFundNotFound):
		respondError(w, http.StatusNotFound, "fund_not_found", err.Error())
		return
	case errors.Is(err, domain.ErrNoNAVData):
		respondError(w, http.StatusNotFound, "no_nav_data", err.Error())
		return
	case err != nil:
		s.logger.Error("Fund lookup failed", "error", err, "fund", name)
		respondError(w, http.StatusBadGateway, "catalogue_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, fundResponse{FundReport: report, Text: funds.FormatNAV(report.Points)})
}

type animationRequest struct {
	SessionID      string   `json:"session_id"`
	Segments       []string `json:"segments"`
	Text           string   `json:"text"`
	InitialDelayMS *int     `json:"initial_delay_ms"`
	PerCharDelayMS *int     `json:"per_char_delay_ms"`
}

type animationResponse struct {
	SessionID  string `json:"session_id"`
	Generation uint64 `json:"generation"`
}

// StartAnimation handles the POST /animations request.
func (s *Server) StartAnimation(w http.ResponseWriter, r *http.Request) {
	var body animationRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		s.logger.Warn("StartAnimation: Invalid request body", "error", err)
		return
	}

	segments := body.Segments
	if len(segments) == 0 && body.Text != "" {
		segments = funds.Chunk(body.Text, domain.DefaultChunkSize)
	}
	for i, seg := range segments {
		clean, ok := s.clean(w, seg)
		if !ok {
			return
		}
		segments[i] = clean
	}

	initial, perChar := s.Animations.Delays()
	if body.InitialDelayMS != nil {
		initial = time.Duration(*body.InitialDelayMS) * time.Millisecond
	}
	if body.PerCharDelayMS != nil {
		perChar = time.Duration(*body.PerCharDelayMS) * time.Millisecond
	}

	id := body.SessionID
	if id == "" {
		id = uuid.NewString()
	}

	gen := s.Animations.Start(id, segments, initial, perChar)
	respondJSON(w, http.StatusCreated, animationResponse{SessionID: id, Generation: gen})
}

// GetAnimation handles the GET /animations/{id} request.
func (s *Server) GetAnimation(w http.ResponseWriter, r *http.Request) {
	frame, err := s.Animations.Snapshot(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, frame)
}

// StopAnimation handles the DELETE /animations/{id} request.
func (s *Server) StopAnimation(w http.ResponseWriter, r *http.Request) {
	if err := s.Animations.Stop(chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResumeAnimation handles the POST /animations/{id}/resume request.
func (s *Server) ResumeAnimation(w http.ResponseWriter, r *http.Request) {
	resumed, err := s.Animations.Resume(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"resumed": resumed})
}

// StreamAnimation handles the GET /animations/{id}/events request (SSE).
// The stream ends after the frame that completes the session.
func (s *Server) StreamAnimation(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming_unsupported", "Streaming not supported")
		s.logger.Error("StreamAnimation: Streaming not supported")
		return
	}

	current, frames, cancel, err := s.Animations.Subscribe(sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	defer cancel()

	s.logger.Info("SSE: Subscribing to animation", "session_id", sessionID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	writeFrame := func(f domain.Frame) {
		data, _ := json.Marshal(f)
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
	writeFrame(current)

	s.pump(r.Context(), current, frames, writeFrame)
	s.logger.Info("SSE: Animation stream closed", "session_id", sessionID)
}

// StreamAnimationWebSocket handles the GET /animations/{id}/ws request.
func (s *Server) StreamAnimationWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	current, frames, cancel, err := s.Animations.Subscribe(sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	defer cancel()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "error", err, "session_id", sessionID)
		return
	}
	defer conn.Close()

	ctx, stop := context.WithCancel(r.Context())
	defer stop()

	// The read loop only notices the client going away.
	go func() {
		defer stop()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var writeErr error
	writeFrame := func(f domain.Frame) {
		if writeErr != nil {
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if writeErr = conn.WriteJSON(f); writeErr != nil {
			s.logger.Warn("WebSocket write failed", "error", writeErr, "session_id", sessionID)
			stop()
		}
	}
	writeFrame(current)

	s.pump(ctx, current, frames, writeFrame)

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "animation complete"),
		time.Now().Add(time.Second))
}

// pump forwards newer frames to write until the session completes or ctx ends.
func (s *Server) pump(ctx context.Context, last domain.Frame, frames <-chan domain.Frame, write func(domain.Frame)) {
	if last.Complete {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			if !newer(f, last) {
				continue
			}
			last = f
			write(f)
			if f.Complete {
				return
			}
		}
	}
}

// activate waits for the engine to settle an activation. The fetch itself
// outlives the request so concurrent callers sharing it are not cut short.
func (s *Server) activate(ctx context.Context) {
	done := s.Engine.Activate(context.WithoutCancel(ctx), s.Source.Candidates)
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (s *Server) clean(w http.ResponseWriter, input string) (string, bool) {
	clean, err := s.sanitizer.Clean(input)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrInputTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		respondError(w, status, "invalid_input", err.Error())
		s.logger.Warn("Input rejected", "error", err, "size", len(input))
		return "", false
	}
	return clean, true
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
