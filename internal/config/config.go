package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetDatabaseURL() string
	GetAdminExternalIDs() []string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// envVars is the raw environment, parsed once at startup.
type envVars struct {
	Port             string        `env:"PORT" envDefault:"8080"`
	AppName          string        `env:"APP_NAME" envDefault:"Posts Auth Service"`
	Env              string        `env:"ENV" envDefault:"DEV"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL      string        `env:"DATABASE_URL"`
	AdminExternalIDs []string      `env:"ADMIN_EXTERNAL_IDS" envSeparator:","`
	AllowedOrigins   []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	GoogleClientID   string        `env:"GOOGLE_CLIENT_ID,required"`
	GoogleSecret     string        `env:"GOOGLE_CLIENT_SECRET,required"`
	GoogleRedirect   string        `env:"GOOGLE_REDIRECT_URL,required"`
	OIDCIssuer       string        `env:"OIDC_ISSUER" envDefault:"https://accounts.google.com"`
	FrontendURL      string        `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	OAuthTimeout     time.Duration `env:"OAUTH_TIMEOUT" envDefault:"10s"`
	JWTSecret        string        `env:"JWT_SECRET,required,notEmpty"`
	SessionTokenTTL  time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"168h"`
	TokenDelivery    string        `env:"TOKEN_DELIVERY" envDefault:"cookie"`
	AuthRateLimit    int           `env:"AUTH_RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	TrustedProxies   []string      `env:"TRUSTED_PROXIES" envSeparator:","`
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Security
}

// New parses the process environment. A missing signing secret or OAuth client
// registration is returned as an error; callers treat it as fatal.
func New() (Config, error) {
	var raw envVars
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("[config New] parse env: %w", err)
	}
	return newFromVars(raw)
}

func newFromVars(raw envVars) (Config, error) {
	delivery := TokenDelivery(raw.TokenDelivery)
	if !delivery.Valid() {
		return nil, fmt.Errorf("[config New] TOKEN_DELIVERY must be %q or %q, got %q", DeliveryCookie, DeliveryFragment, raw.TokenDelivery)
	}
	if raw.SessionTokenTTL <= 0 {
		return nil, fmt.Errorf("[config New] SESSION_TOKEN_TTL must be positive")
	}

	trustedProxies, err := parseTrustedProxies(trimCSV(raw.TrustedProxies))
	if err != nil {
		return nil, err
	}

	origins := trimCSV(raw.AllowedOrigins)
	if len(origins) == 0 && raw.FrontendURL != "" {
		origins = []string{raw.FrontendURL}
	}

	return mainConfig{
		EnvVars: EnvVars{
			port:             raw.Port,
			appName:          raw.AppName,
			env:              raw.Env,
			logLevel:         raw.LogLevel,
			databaseURL:      raw.DatabaseURL,
			adminExternalIDs: trimCSV(raw.AdminExternalIDs),
		},
		Cors: Cors{allowedOrigins: NewAllowedOrigins(origins...)},
		OAuth: OAuth{
			clientID:     raw.GoogleClientID,
			clientSecret: raw.GoogleSecret,
			redirectURL:  raw.GoogleRedirect,
			issuer:       raw.OIDCIssuer,
			frontendURL:  raw.FrontendURL,
			timeout:      raw.OAuthTimeout,
		},
		Security: Security{
			jwtSecret:       raw.JWTSecret,
			sessionTokenTTL: raw.SessionTokenTTL,
			tokenDelivery:   delivery,
			authRateLimit:   raw.AuthRateLimit,
			trustedProxies:  trustedProxies,
		},
	}, nil
}
