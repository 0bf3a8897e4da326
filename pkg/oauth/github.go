// Package oauth exchanges an authorization code for a verified
// external identity. It is the single outbound network dependency and
// runs strictly outside any store transaction.
package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tagme/pkg/errs"
	"tagme/pkg/logger"
)

// Identity is the verified external identity returned by the provider.
type Identity struct {
	ID          uint64
	Login       string
	Name        string
	AvatarURL   string
	Bio         string
	AccessToken string
}

// Client talks to the GitHub OAuth and REST endpoints.
type Client struct {
	clientID     string
	clientSecret string

	// Endpoints are overridable for tests.
	TokenURL string
	UserURL  string

	HTTP *http.Client
}

// NewClient returns a client against the public GitHub endpoints.
func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		TokenURL:     "https://github.com/login/oauth/access_token",
		UserURL:      "https://api.github.com/user",
		HTTP:         &http.Client{Timeout: 10 * time.Second},
	}
}

// Exchange trades an authorization code for the caller's identity and
// access token.
func (c *Client) Exchange(ctx context.Context, code string) (*Identity, error) {
	accessToken, err := c.exchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	ident, err := c.fetchUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	ident.AccessToken = accessToken
	return ident, nil
}

func (c *Client) exchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errs.Internal("oauth request failed")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		logger.Error("oauth_exchange_failed", "error", err)
		return "", errs.Internal("oauth exchange failed")
	}
	defer resp.Body.Close()

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.AccessToken == "" {
		logger.Warn("oauth_code_rejected", "status", resp.StatusCode)
		return "", errs.Unauthorized("code exchange failed")
	}
	return body.AccessToken, nil
}

func (c *Client) fetchUser(ctx context.Context, accessToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.UserURL, nil)
	if err != nil {
		return nil, errs.Internal("oauth request failed")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		logger.Error("oauth_user_fetch_failed", "error", err)
		return nil, errs.Internal("identity fetch failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.Warn("oauth_user_rejected", "status", resp.StatusCode)
		return nil, errs.Unauthorized("identity fetch failed")
	}

	var body struct {
		ID        uint64 `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
		Bio       string `json:"bio"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errs.Internal("identity decode failed")
	}
	return &Identity{
		ID:        body.ID,
		Login:     body.Login,
		Name:      body.Name,
		AvatarURL: body.AvatarURL,
		Bio:       body.Bio,
	}, nil
}
