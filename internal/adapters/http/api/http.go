// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/shopapi/pkg/logger"
)

// Default server configuration constants.
const (
	defaultMaxBodyBytes = 1 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ProductDependencies
	UserDependencies
	HealthChecker
}

// Server wires HTTP routes for the business API.
type Server struct {
	rootHandler     *RootHandler
	productsHandler *ProductsHandler
	usersHandler    *UsersHandler
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	metricsHandler  http.Handler

	maxBodyBytes int64
	logger       logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxBodyBytes caps the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used for access logs and server-side failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		maxBodyBytes: defaultMaxBodyBytes,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.rootHandler = NewRootHandler()
	s.productsHandler = NewProductsHandler(deps, s.logger)
	s.usersHandler = NewUsersHandler(deps, s.logger)
	s.healthHandler = NewHealthHandler(deps, s.logger)
	s.statsHandler = NewStatsHandler(statsProvider, s.logger)
	s.metricsHandler = NewMetricsHandler()
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	if r == nil {
		panic("router is nil")
	}

	r.Use(RequestIDMiddleware, AccessLogMiddleware(s.logger), BodyLimitMiddleware(s.maxBodyBytes))

	route := func(path, method, endpoint string, h http.HandlerFunc) {
		r.HandleFunc(path, MetricsMiddleware(h, endpoint)).Methods(method).Name(endpoint)
	}

	route("/", http.MethodGet, "root", s.rootHandler.HandleRoot)

	route("/product", http.MethodPost, "product.create", s.productsHandler.HandleCreate)
	route("/products", http.MethodGet, "product.list", s.productsHandler.HandleList)
	route("/product/{id}", http.MethodGet, "product.get", s.productsHandler.HandleGet)
	route("/product/{id}", http.MethodPut, "product.update", s.productsHandler.HandleUpdate)
	route("/product/{id}", http.MethodDelete, "product.delete", s.productsHandler.HandleDelete)

	route("/user", http.MethodPost, "user.create", s.usersHandler.HandleCreate)
	route("/users", http.MethodGet, "user.list", s.usersHandler.HandleList)
	route("/user/{id}", http.MethodGet, "user.get", s.usersHandler.HandleGet)
	route("/user/{id}", http.MethodPut, "user.update", s.usersHandler.HandleUpdate)
	route("/user/{id}", http.MethodDelete, "user.delete", s.usersHandler.HandleDelete)

	route("/healthz", http.MethodGet, "healthz", s.healthHandler.HandleHealth)
	route("/stats", http.MethodGet, "stats", s.statsHandler.HandleStats)
	r.Handle("/metrics", s.metricsHandler).Methods(http.MethodGet).Name("metrics")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", ErrNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
}

// Handler returns a router with every route registered.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := mux.NewRouter()
	s.Register(ctx, r)
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// respondError writes err with the status derived from its kind. Server-side
// failures are logged and their detail is withheld from the client.
func respondError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error(r.Context(), "request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
		writeError(w, status, code, nil)
		return
	}
	writeError(w, status, code, err)
}
