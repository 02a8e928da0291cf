package falcon

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const tokenPath = "/oauth2/token"

// Credentials selects how the client obtains its bearer token. ClientID and
// ClientSecret take precedence over AccessToken.
type Credentials struct {
	ClientID     string
	ClientSecret string
	MemberCID    string
	AccessToken  string
}

// TokenSource builds the token provider for baseURL. The returned source
// caches tokens and is safe for concurrent use.
func (c Credentials) TokenSource(ctx context.Context, baseURL string, httpClient *http.Client) (oauth2.TokenSource, error) {
	if c.ClientID != "" && c.ClientSecret != "" {
		return ClientCredentials(ctx, baseURL, c.ClientID, c.ClientSecret, c.MemberCID, httpClient), nil
	}
	if c.AccessToken != "" {
		return StaticToken(c.AccessToken), nil
	}
	return nil, errors.New("falcon: no client credentials or access token")
}

// ClientCredentials exchanges an API client id and secret at the region's
// token endpoint. memberCID scopes the token to a child tenant.
func ClientCredentials(ctx context.Context, baseURL, clientID, clientSecret, memberCID string, httpClient *http.Client) oauth2.TokenSource {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     strings.TrimRight(baseURL, "/") + tokenPath,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	if memberCID != "" {
		cfg.EndpointParams = url.Values{"member_cid": {memberCID}}
	}
	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}
	return cfg.TokenSource(ctx)
}

// StaticToken wraps a pre-issued bearer token. Falcon tokens are JWTs; when
// the token parses, its exp claim becomes the oauth2 expiry so an expired
// token fails locally instead of at the API.
func StaticToken(raw string) oauth2.TokenSource {
	tok := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	if exp, ok := tokenExpiry(raw); ok {
		tok.Expiry = exp
	}
	return &staticSource{tok: tok}
}

type staticSource struct {
	tok *oauth2.Token
}

func (s *staticSource) Token() (*oauth2.Token, error) {
	if !s.tok.Expiry.IsZero() && time.Now().After(s.tok.Expiry) {
		return nil, errors.New("falcon: access token expired")
	}
	return s.tok, nil
}

// tokenExpiry reads exp without verifying the signature; the API verifies it.
func tokenExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
