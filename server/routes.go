package server

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jrsteele09/go-posts-auth/internal/config"
	"github.com/jrsteele09/go-posts-auth/internal/metrics"
	"github.com/jrsteele09/go-posts-auth/users"
)

func (s *Server) initRoutes() {
	s.router.Use(s.StdMiddleware()...)

	// Operational
	s.RegisterRouteFunc(http.MethodGet, RouteHealth, s.HealthHandler())
	if s.gatherer != nil {
		s.RegisterRouteHandler(http.MethodGet, RouteMetrics, metrics.Handler(s.gatherer))
	}

	// LOGIN
	s.RegisterRouteHandler(http.MethodGet, RouteLogin, ChainMiddleware(s.LoginHandler(), s.limiter.Middleware))
	s.RegisterRouteHandler(http.MethodGet, RouteOAuthCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.limiter.Middleware))
	if s.config.GetTokenDelivery() == config.DeliveryCookie {
		s.RegisterRouteFunc(http.MethodGet, RouteLogout, s.LogoutHandler())
	}

	// Users
	s.RegisterRouteHandler(http.MethodGet, RouteCurrentUser, ChainMiddleware(s.CurrentUserHandler(), s.Authenticate))
	s.RegisterRouteHandler(http.MethodGet, RouteUsers, ChainMiddleware(s.ListUsersHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler(http.MethodGet, RouteUser, ChainMiddleware(s.GetUserHandler(), s.Authenticate))
	s.RegisterRouteHandler(http.MethodPut, RouteUser, ChainMiddleware(s.UpdateUserHandler(), s.Authenticate))
	s.RegisterRouteHandler(http.MethodDelete, RouteUser, ChainMiddleware(s.DeleteUserHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler(http.MethodPut, RouteUserRole, ChainMiddleware(s.UpdateUserRoleHandler(), s.AdminMiddleware()...))

	// Posts
	s.RegisterRouteHandler(http.MethodGet, RoutePosts, ChainMiddleware(s.ListPostsHandler(), s.Authenticate))
	s.RegisterRouteHandler(http.MethodGet, RoutePost, ChainMiddleware(s.GetPostHandler(), s.Authenticate))
	s.RegisterRouteHandler(http.MethodPost, RoutePost, ChainMiddleware(s.CreatePostHandler(), s.Authenticate))
	s.RegisterRouteHandler(http.MethodPut, RoutePost, ChainMiddleware(s.UpdatePostHandler(), s.Authenticate))
	s.RegisterRouteHandler(http.MethodDelete, RoutePost, ChainMiddleware(s.DeletePostHandler(), s.Authenticate))

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeMessage(w, http.StatusNotFound, "Route not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

// AdminMiddleware authenticates and then requires the admin role
func (s *Server) AdminMiddleware() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		s.Authenticate,
		s.RequireRole(users.RoleAdmin),
	}
}

// StdMiddleware applies to every route. Outermost first.
func (s *Server) StdMiddleware() []func(http.Handler) http.Handler {
	mw := []func(http.Handler) http.Handler{s.TrustedProxyMiddleware}
	mw = append(mw, s.RequestLoggingMiddleware()...)
	return append(mw,
		chimiddleware.Recoverer,
		s.CorsMiddleware,
		s.SecurityHeadersMiddleware,
	)
}
