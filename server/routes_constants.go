package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteLogin         = "/login"
	RouteOAuthCallback = "/oauth"
	RouteLogout        = "/oauth/logout"

	// User Routes
	RouteCurrentUser = "/user/me"
	RouteUsers       = "/users"
	RouteUser        = "/user"
	RouteUserRole    = "/user/role"

	// Post Routes
	RoutePosts = "/posts"
	RoutePost  = "/post"

	// Operational Routes
	RouteHealth  = "/health"
	RouteMetrics = "/metrics"
)

// Response messages the frontend matches on
const (
	MsgMissingCode       = "Missing code"
	MsgAdminRequired     = "Admin access required"
	MsgNotOwner          = "Access denied: not the owner"
	MsgUserDeleted       = "User and all posts deleted successfully"
	MsgPostDeleted       = "Post deleted successfully"
	MsgLoggedOut         = "Logged out successfully"
	MsgUnauthenticated   = "Authentication required"
	MsgInvalidToken      = "Invalid or expired token"
	MsgExchangeFailed    = "Authentication with the identity provider failed"
	MsgIncompleteProfile = "Identity provider returned an incomplete profile"
	MsgTooManyRequests   = "Too many requests"
)

// sessionCookieName carries the session token in cookie delivery mode
const sessionCookieName = "token"
