package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-posts-auth/auth"
	apperrors "github.com/jrsteele09/go-posts-auth/internal/errors"
	"github.com/jrsteele09/go-posts-auth/storage/memstore"
	"github.com/jrsteele09/go-posts-auth/token"
	"github.com/jrsteele09/go-posts-auth/users"
	"github.com/stretchr/testify/require"
)

const (
	testClientID = "client-123.apps.example.com"
	testKeyID    = "test-key"
)

type oauthClientConfig struct {
	issuer string
}

func (c oauthClientConfig) GetGoogleClientID() string     { return testClientID }
func (c oauthClientConfig) GetGoogleClientSecret() string { return "client-secret" }
func (c oauthClientConfig) GetGoogleRedirectURL() string  { return "http://localhost:8080/oauth" }
func (c oauthClientConfig) GetOIDCIssuer() string         { return c.issuer }

// testIssuer is a minimal OpenID Connect provider: discovery, JWKS and a token endpoint.
// Codes: "good" returns a valid ID token, "no-id-token" omits it, "wrong-aud"
// signs for another client, anything else is rejected.
type testIssuer struct {
	server *httptest.Server
	key    *rsa.PrivateKey
}

func newTestIssuer(t *testing.T) *testIssuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	ti := &testIssuer{key: key}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", ti.discovery)
	mux.HandleFunc("GET /keys", ti.keys)
	mux.HandleFunc("POST /token", ti.token)
	ti.server = httptest.NewServer(mux)
	t.Cleanup(ti.server.Close)
	return ti
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (ti *testIssuer) discovery(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"issuer":                                ti.server.URL,
		"authorization_endpoint":                ti.server.URL + "/auth",
		"token_endpoint":                        ti.server.URL + "/token",
		"jwks_uri":                              ti.server.URL + "/keys",
		"id_token_signing_alg_values_supported": []string{"RS256"},
	})
}

func (ti *testIssuer) keys(w http.ResponseWriter, _ *http.Request) {
	pub := ti.key.PublicKey
	writeJSON(w, http.StatusOK, map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"alg": "RS256",
			"use": "sig",
			"kid": testKeyID,
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	})
}

func (ti *testIssuer) idToken(audience string) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":     ti.server.URL,
		"aud":     audience,
		"sub":     "google-sub-1",
		"email":   "alice@example.com",
		"name":    "Alice",
		"picture": "https://example.com/alice.png",
		"iat":     now.Unix(),
		"exp":     now.Add(time.Hour).Unix(),
	})
	tok.Header["kid"] = testKeyID
	return tok.SignedString(ti.key)
}

func (ti *testIssuer) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}

	resp := map[string]any{
		"access_token": "access-token",
		"token_type":   "Bearer",
		"expires_in":   3600,
	}
	switch r.PostForm.Get("code") {
	case "good":
		idToken, err := ti.idToken(testClientID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server_error"})
			return
		}
		resp["id_token"] = idToken
	case "wrong-aud":
		idToken, err := ti.idToken("someone-else")
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server_error"})
			return
		}
		resp["id_token"] = idToken
	case "no-id-token":
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func newGoogleProvider(t *testing.T) *auth.GoogleProvider {
	t.Helper()
	ti := newTestIssuer(t)
	provider, err := auth.NewGoogleProvider(context.Background(), oauthClientConfig{issuer: ti.server.URL})
	require.NoError(t, err)
	return provider
}

func TestNewGoogleProvider_DiscoveryFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := auth.NewGoogleProvider(context.Background(), oauthClientConfig{issuer: server.URL})
	require.Error(t, err)
}

func TestGoogleProvider_AuthCodeURL(t *testing.T) {
	provider := newGoogleProvider(t)

	u, err := url.Parse(provider.AuthCodeURL())
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(u.Path, "/auth"))

	q := u.Query()
	require.Equal(t, testClientID, q.Get("client_id"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "offline", q.Get("access_type"))
	require.Equal(t, "consent", q.Get("prompt"))
	require.Equal(t, "http://localhost:8080/oauth", q.Get("redirect_uri"))
	require.ElementsMatch(t, []string{"openid", "email", "profile"}, strings.Fields(q.Get("scope")))
}

func TestGoogleProvider_ExchangeAndVerify(t *testing.T) {
	ctx := context.Background()
	provider := newGoogleProvider(t)

	raw, err := provider.ExchangeCode(ctx, "good")
	require.NoError(t, err)

	identity, err := provider.VerifyAssertion(ctx, raw)
	require.NoError(t, err)
	require.Equal(t, &auth.Identity{
		Subject: "google-sub-1",
		Email:   "alice@example.com",
		Name:    "Alice",
		Picture: "https://example.com/alice.png",
	}, identity)
}

func TestGoogleProvider_Failures(t *testing.T) {
	ctx := context.Background()
	provider := newGoogleProvider(t)

	t.Run("rejected code", func(t *testing.T) {
		_, err := provider.ExchangeCode(ctx, "expired")
		require.Error(t, err)
	})

	t.Run("no id token", func(t *testing.T) {
		_, err := provider.ExchangeCode(ctx, "no-id-token")
		require.ErrorIs(t, err, apperrors.ErrNoIdentityAssertion)
	})

	t.Run("wrong audience", func(t *testing.T) {
		raw, err := provider.ExchangeCode(ctx, "wrong-aud")
		require.NoError(t, err)
		_, err = provider.VerifyAssertion(ctx, raw)
		require.Error(t, err)
	})

	t.Run("tampered id token", func(t *testing.T) {
		raw, err := provider.ExchangeCode(ctx, "good")
		require.NoError(t, err)
		parts := strings.Split(raw, ".")
		parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"attacker"}`))
		_, err = provider.VerifyAssertion(ctx, strings.Join(parts, "."))
		require.Error(t, err)
	})
}

func TestExchanger_WithGoogleProvider(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	directory, err := users.NewDirectory(store, store)
	require.NoError(t, err)
	codec, err := token.NewHMACCodec(testSecret)
	require.NoError(t, err)

	e, err := auth.NewExchanger(newGoogleProvider(t), directory, codec)
	require.NoError(t, err)

	result, err := e.Exchange(ctx, "good")
	require.NoError(t, err)
	require.Equal(t, "google-sub-1", result.User.ExternalID)

	_, err = e.Exchange(ctx, "no-id-token")
	require.ErrorIs(t, err, apperrors.ErrOAuthExchangeFailed)
	require.ErrorIs(t, err, apperrors.ErrNoIdentityAssertion)
}
