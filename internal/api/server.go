package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"sipwatch/internal/alerting"
	"sipwatch/internal/scoring"
	"sipwatch/internal/types"
)

// Server holds the router and the domain dependencies of the HTTP API.
type Server struct {
	router     chi.Router
	logger     *slog.Logger
	engine     *scoring.Engine
	dispatcher *alerting.Dispatcher
	clock      types.Clock
}

// ServerDeps are the dependencies required to build a Server.
type ServerDeps struct {
	Logger     *slog.Logger
	Engine     *scoring.Engine
	Dispatcher *alerting.Dispatcher
	Clock      types.Clock
}

// NewServer builds the Server and mounts its routes.
func NewServer(deps ServerDeps) (*Server, error) {
	if deps.Engine == nil {
		return nil, fmt.Errorf("api server: engine is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = types.RealClock{}
	}

	s := &Server{
		router:     chi.NewRouter(),
		logger:     deps.Logger,
		engine:     deps.Engine,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
	}
	s.mountRoutes()
	return s, nil
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// mountRoutes registers middleware and routes. Middleware order matters:
// the recoverer is outermost so panics anywhere in the chain are caught.
func (s *Server) mountRoutes() {
	s.router.Use(s.recoverer)
	s.router.Use(requestIDMiddleware)
	s.router.Use(s.requestLogger)

	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/evaluate", s.handleEvaluate)
		r.Get("/alerts", s.handleListAlerts)
	})
	s.router.Get("/health", s.handleHealth)
}

// recoverer catches panics in the handler chain, logs the stack trace, and
// writes a standardized 500 response.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				s.logger.Error("panic recovered",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("panic", fmt.Sprintf("%v", rvr)),
					slog.String("stack", string(debug.Stack())),
				)
				Error(w, r, types.NewAppError(types.ErrCodeInternalUnexpected,
					"an unexpected error occurred", nil))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requestIDMiddleware propagates the caller's X-Request-Id or generates one,
// storing it in the context and echoing it on the response.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(types.WithRequestID(r.Context(), id)))
	})
}

// statusCapture records the response status for the request logger.
type statusCapture struct {
	http.ResponseWriter
	status  int
	written bool
}

func (sc *statusCapture) WriteHeader(code int) {
	if !sc.written {
		sc.status = code
		sc.written = true
	}
	sc.ResponseWriter.WriteHeader(code)
}

func (sc *statusCapture) Write(b []byte) (int, error) {
	if !sc.written {
		sc.status = http.StatusOK
		sc.written = true
	}
	return sc.ResponseWriter.Write(b)
}

func (sc *statusCapture) Unwrap() http.ResponseWriter {
	return sc.ResponseWriter
}

// requestLogger logs request metadata after the handler chain completes.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sc := &statusCapture{ResponseWriter: w}
		next.ServeHTTP(sc, r)

		s.logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", sc.status),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", types.GetRequestID(r.Context())),
		)
	})
}
