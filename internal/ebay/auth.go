package ebay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	productionAPIURL = "https://api.ebay.com"
	sandboxAPIURL    = "https://api.sandbox.ebay.com"
	tokenPath        = "/identity/v1/oauth2/token"
	defaultScope     = "https://api.ebay.com/oauth/api_scope"

	// refresh this long before the token actually expires
	expiryBuffer = 5 * time.Minute
)

// AuthError reports a failure to obtain an application access token.
type AuthError struct {
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ebay auth failed: HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("ebay auth failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// OAuthToken is an application access token from the client-credentials grant.
type OAuthToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int       `json:"expires_in"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"-"`
}

// TokenSource exchanges client credentials for application tokens and
// caches the current one until shortly before it expires.
type TokenSource struct {
	clientID     string
	clientSecret string
	tokenURL     string
	scopes       []string
	httpClient   *http.Client

	mu    sync.Mutex
	token *OAuthToken
}

// NewTokenSource creates a token source against baseURL (production when empty).
func NewTokenSource(clientID, clientSecret, baseURL string, httpClient *http.Client) *TokenSource {
	if baseURL == "" {
		baseURL = productionAPIURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &TokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     strings.TrimSuffix(baseURL, "/") + tokenPath,
		scopes:       []string{defaultScope},
		httpClient:   httpClient,
	}
}

// Token returns a valid access token, fetching a new one when the cached
// token is missing or about to expire.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil && time.Now().Add(expiryBuffer).Before(s.token.ExpiresAt) {
		return s.token.AccessToken, nil
	}

	token, err := s.fetchToken(ctx)
	if err != nil {
		return "", err
	}
	s.token = token
	return token.AccessToken, nil
}

// Invalidate drops the cached token so the next call re-authenticates.
func (s *TokenSource) Invalidate() {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()
}

func (s *TokenSource) fetchToken(ctx context.Context) (*OAuthToken, error) {
	if s.clientID == "" || s.clientSecret == "" {
		return nil, &AuthError{Err: fmt.Errorf("client credentials not configured")}
	}

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("scope", strings.Join(s.scopes, " "))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("creating request: %w", err)}
	}

	auth := base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%s", s.clientID, s.clientSecret)))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("executing request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &AuthError{StatusCode: resp.StatusCode, Err: fmt.Errorf("token exchange failed: %s", strings.TrimSpace(string(body)))}
	}

	var token OAuthToken
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, &AuthError{Err: fmt.Errorf("parsing token response: %w", err)}
	}
	if token.AccessToken == "" {
		return nil, &AuthError{Err: fmt.Errorf("token response missing access_token")}
	}

	token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	return &token, nil
}
