// Package oauth is the bridge to third-party identity providers. Only the
// GitHub flow needs the code-exchange hop here; Google and Facebook logins
// arrive with an already-verified profile payload.
package oauth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/github"

	"github.com/tazhibayda/identity-service/internal/apperror"
)

const githubUserAPI = "https://api.github.com/user"

// Profile is the provider's profile representation reduced to the fields the
// pipeline resolves on.
type Profile struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio"`
}

type GitHub struct {
	clientID     string
	clientSecret string
	tokenURL     string
	apiURL       string
	hc           *http.Client
}

// NewGitHub builds the bridge from per-provider credentials passed in
// explicitly; there are no ambient config reads.
func NewGitHub(clientID, clientSecret string) *GitHub {
	return &GitHub{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     github.Endpoint.TokenURL,
		apiURL:       githubUserAPI,
		hc:           &http.Client{Timeout: 10 * time.Second},
	}
}

// ExchangeCode trades an authorization code for a provider access token.
// GitHub answers with a URL-encoded string, not JSON; an empty or missing
// access_token segment is an upstream failure, never a crash.
func (g *GitHub) ExchangeCode(ctx context.Context, code string) (string, error) {
	q := url.Values{
		"client_id":     {g.clientID},
		"client_secret": {g.clientSecret},
		"code":          {code},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.tokenURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", apperror.Upstream("github token exchange failed")
	}
	resp, err := g.hc.Do(req)
	if err != nil {
		return "", apperror.Upstream("github token exchange failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", apperror.Upstream("github rejected authorization code")
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", apperror.Upstream("github token exchange failed")
	}
	vals, err := url.ParseQuery(string(body))
	if err != nil || vals.Get("access_token") == "" {
		return "", apperror.Upstream("no access token in github response")
	}
	return vals.Get("access_token"), nil
}

// FetchProfile loads the provider's profile for the given access token.
func (g *GitHub) FetchProfile(ctx context.Context, token string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiURL, nil)
	if err != nil {
		return nil, apperror.Upstream("github profile fetch failed")
	}
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := g.hc.Do(req)
	if err != nil {
		return nil, apperror.Upstream("github profile fetch failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apperror.Upstream("github profile fetch failed")
	}
	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, apperror.Upstream("unparsable github profile")
	}
	return &p, nil
}
