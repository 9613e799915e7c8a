package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultTokenURI = "https://oauth2.googleapis.com/token"

	// Access tokens are refreshed this long before they expire so a
	// request never rides on a token about to die mid-flight.
	tokenEarlyRefresh = time.Minute
)

var accessScopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive",
}

// tokenSource exchanges a signed service account assertion for an access
// token at the credentials' token URI and caches the result.
type tokenSource struct {
	creds  *Credentials
	client *http.Client

	mu      sync.Mutex
	token   string
	expires time.Time
}

func newTokenSource(creds *Credentials, client *http.Client) *tokenSource {
	return &tokenSource{creds: creds, client: client}
}

func (ts *tokenSource) tokenURI() string {
	if ts.creds.TokenURI != "" {
		return ts.creds.TokenURI
	}
	return defaultTokenURI
}

// Token returns a cached access token, fetching a fresh one when the
// cached token is absent or close to expiry.
func (ts *tokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && time.Now().Before(ts.expires.Add(-tokenEarlyRefresh)) {
		return ts.token, nil
	}

	assertion, err := ts.assertion()
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("grant_type", "urn:ietf:params:oauth:grant-type:jwt-bearer")
	params.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.tokenURI(), strings.NewReader(params.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if out.AccessToken == "" {
		return "", errors.New("token response missing access_token")
	}
	if out.ExpiresIn <= 0 {
		out.ExpiresIn = 3600
	}

	ts.token = out.AccessToken
	ts.expires = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	return ts.token, nil
}

// assertion builds the RS256-signed JWT the token endpoint accepts as a
// jwt-bearer grant.
func (ts *tokenSource) assertion() (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(ts.creds.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("parse private key: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   ts.creds.ClientEmail,
		"sub":   ts.creds.ClientEmail,
		"aud":   ts.tokenURI(),
		"scope": strings.Join(accessScopes, " "),
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})
	if ts.creds.PrivateKeyID != "" {
		token.Header["kid"] = ts.creds.PrivateKeyID
	}

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return signed, nil
}
