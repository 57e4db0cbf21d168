package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-posts-auth/auth"
	"github.com/jrsteele09/go-posts-auth/internal/config"
	"github.com/jrsteele09/go-posts-auth/internal/metrics"
	"github.com/jrsteele09/go-posts-auth/posts"
	"github.com/jrsteele09/go-posts-auth/token"
	"github.com/jrsteele09/go-posts-auth/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TokenVerifier checks a session token and returns its claims
type TokenVerifier interface {
	Verify(rawToken string) (*token.Claims, error)
}

// Dependencies are the collaborators the HTTP layer is built from
type Dependencies struct {
	Exchanger *auth.Exchanger
	Tokens    TokenVerifier
	Directory *users.Directory
	Posts     *posts.Service
	Metrics   metrics.Recorder    // optional
	Gatherer  prometheus.Gatherer // optional, enables /metrics
}

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	router    chi.Router
	routes    []string
	config    config.Config
	exchanger *auth.Exchanger
	tokens    TokenVerifier
	directory *users.Directory
	posts     *posts.Service
	metrics   metrics.Recorder
	gatherer  prometheus.Gatherer
	limiter   *RateLimiter
	logger    zerolog.Logger
}

func New(ctx context.Context, config config.Config, deps Dependencies) (*Server, error) {
	if deps.Exchanger == nil || deps.Tokens == nil || deps.Directory == nil || deps.Posts == nil {
		return nil, fmt.Errorf("[Server New] exchanger, tokens, directory and posts are required")
	}

	s := &Server{
		env:       config.GetEnv(),
		router:    chi.NewRouter(),
		config:    config,
		exchanger: deps.Exchanger,
		tokens:    deps.Tokens,
		directory: deps.Directory,
		posts:     deps.Posts,
		metrics:   deps.Metrics,
		gatherer:  deps.Gatherer,
		limiter:   NewRateLimiter(config.GetAuthRateLimitPerMinute()),
		logger:    log.With().Str("component", "server").Logger(),
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop{}
	}

	// Bootstrap: ensure configured admins exist
	if err := s.InitialiseSystem(ctx); err != nil {
		s.limiter.Stop()
		return nil, fmt.Errorf("[Server New] Failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources
func (s *Server) Close() {
	s.limiter.Stop()
}

func (s *Server) RegisterRouteHandler(method, pattern string, handler http.Handler) {
	s.routes = append(s.routes, method+" "+pattern)
	s.router.Method(method, pattern, handler)
}

func (s *Server) RegisterRouteFunc(method, pattern string, handler http.HandlerFunc) {
	s.RegisterRouteHandler(method, pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		s.logger.Info().Msgf("route %s", route)
	}
}
