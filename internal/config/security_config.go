package config

import (
	"fmt"
	"net/netip"
	"time"
)

// TokenDelivery selects how the session token reaches the browser after /oauth.
type TokenDelivery string

const (
	DeliveryCookie   TokenDelivery = "cookie"   // HttpOnly cookie named "token"
	DeliveryFragment TokenDelivery = "fragment" // redirect to FRONTEND_URL#token=<jwt>
)

func (d TokenDelivery) Valid() bool {
	return d == DeliveryCookie || d == DeliveryFragment
}

type SecurityConfig interface {
	GetJWTSecret() string
	GetSessionTokenExpiry() time.Duration
	GetTokenDelivery() TokenDelivery
	GetAuthRateLimitPerMinute() int
	GetTrustedProxies() TrustedProxies
}

type Security struct {
	jwtSecret       string
	sessionTokenTTL time.Duration
	tokenDelivery   TokenDelivery
	authRateLimit   int
	trustedProxies  TrustedProxies
}

var _ SecurityConfig = Security{}

func (s Security) GetJWTSecret() string {
	return s.jwtSecret
}

func (s Security) GetSessionTokenExpiry() time.Duration {
	return s.sessionTokenTTL
}

func (s Security) GetTokenDelivery() TokenDelivery {
	return s.tokenDelivery
}

// GetAuthRateLimitPerMinute applies per client IP to /login and /oauth. Zero disables limiting.
func (s Security) GetAuthRateLimitPerMinute() int {
	return s.authRateLimit
}

func (s Security) GetTrustedProxies() TrustedProxies {
	return s.trustedProxies
}

// TrustedProxies are the peers whose X-Forwarded-For / X-Real-IP headers are believed.
// Empty means no forwarding header is trusted and the client is the TCP peer.
type TrustedProxies []netip.Prefix

// Contains reports whether remoteAddr ("ip:port" or a bare ip) is a trusted proxy
func (t TrustedProxies) Contains(remoteAddr string) bool {
	if len(t) == 0 {
		return false
	}
	addr, err := netip.ParseAddrPort(remoteAddr)
	ip := addr.Addr()
	if err != nil {
		if ip, err = netip.ParseAddr(remoteAddr); err != nil {
			return false
		}
	}
	ip = ip.Unmap()
	for _, prefix := range t {
		if prefix.Contains(ip) {
			return true
		}
	}
	return false
}

// parseTrustedProxies accepts CIDRs ("10.0.0.0/8") and single addresses ("127.0.0.1")
func parseTrustedProxies(values []string) (TrustedProxies, error) {
	proxies := make(TrustedProxies, 0, len(values))
	for _, v := range values {
		if prefix, err := netip.ParsePrefix(v); err == nil {
			proxies = append(proxies, prefix.Masked())
			continue
		}
		ip, err := netip.ParseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("[config New] TRUSTED_PROXIES entry %q is not an IP or CIDR", v)
		}
		ip = ip.Unmap()
		proxies = append(proxies, netip.PrefixFrom(ip, ip.BitLen()))
	}
	return proxies, nil
}
