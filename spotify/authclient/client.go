// Package authclient performs the three OAuth2 network operations of the
// Authorization Code flow against the provider's accounts service: building
// the login redirect, exchanging an authorization code, and refreshing an
// expired access token. Exchange and refresh are total over the Result type:
// every transport failure, malformed body, and provider error is classified
// into the envelope, never returned as a raw error.
package authclient

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/soundboard/soundboard/internal/config"
	"github.com/soundboard/soundboard/spotify"
)

const (
	accountsAuthorizeURL = "https://accounts.spotify.com/authorize"
	accountsTokenURL     = "https://accounts.spotify.com/api/token"

	stateLength   = 16
	stateAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// StateStore persists the pending CSRF state between the login redirect and
// the provider's callback.
type StateStore interface {
	SavePendingState(state string) error
}

// Client holds the provider endpoints and app credentials. The zero retry and
// classification behaviour lives here; session policy lives above it.
type Client struct {
	oauthCfg   *oauth2.Config
	tokenURL   string
	httpClient *http.Client
	states     StateStore
	nowTime    func() time.Time
	newState   func(length int) (string, error)
}

// Option modifies a Client, primarily for testing.
type Option func(*Client)

// WithHTTPClient overrides the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithEndpoints points the client at alternative authorize/token endpoints.
func WithEndpoints(authorizeURL, tokenURL string) Option {
	return func(c *Client) {
		c.oauthCfg.Endpoint = oauth2.Endpoint{AuthURL: authorizeURL, TokenURL: tokenURL}
		c.tokenURL = tokenURL
	}
}

// WithNowTime sets the clock used to stamp results.
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Client) { c.nowTime = nowFunc }
}

// WithStateGenerator overrides the random state source.
func WithStateGenerator(gen func(length int) (string, error)) Option {
	return func(c *Client) { c.newState = gen }
}

// New builds a Client from the app's provider settings.
func New(cfg config.SpotifyConfig, states StateStore, options ...Option) (*Client, error) {
	if states == nil {
		return nil, errors.New("[authclient.New] state store is required")
	}

	client := &Client{
		oauthCfg: &oauth2.Config{
			ClientID:     cfg.GetClientID(),
			ClientSecret: cfg.GetClientSecret(),
			RedirectURL:  cfg.GetRedirectURI(),
			Scopes:       strings.Fields(cfg.GetScopes()),
			Endpoint: oauth2.Endpoint{
				AuthURL:  accountsAuthorizeURL,
				TokenURL: accountsTokenURL,
			},
		},
		tokenURL:   accountsTokenURL,
		httpClient: http.DefaultClient,
		states:     states,
		nowTime:    time.Now,
		newState:   randomAlphanumeric,
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

// BuildLoginRedirect generates a fresh CSRF state, persists it (overwriting
// any prior pending state), and returns the provider login URL the caller
// should navigate to.
func (c *Client) BuildLoginRedirect() (string, error) {
	state, err := c.newState(stateLength)
	if err != nil {
		return "", errors.Wrap(err, "[BuildLoginRedirect] generate state")
	}
	if err := c.states.SavePendingState(state); err != nil {
		return "", errors.Wrap(err, "[BuildLoginRedirect] persist state")
	}
	return c.oauthCfg.AuthCodeURL(state), nil
}

// ExchangeCode swaps an authorization code for a token set. Known provider
// rejections map to expired-auth-code / invalid-auth-code; everything else is
// unclassified.
func (c *Client) ExchangeCode(ctx context.Context, code string) spotify.Result[spotify.TokenSet] {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.oauthCfg.RedirectURL)

	return c.tokenRequest(ctx, form, classifyExchangeError, "Access token acquired!")
}

// Refresh obtains a new token set from a refresh token. A failed refresh is
// always unclassified: the caller decides whether to restart login.
func (c *Client) Refresh(ctx context.Context, refreshToken string) spotify.Result[spotify.TokenSet] {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	result := c.tokenRequest(ctx, form, nil, "Refresh access token acquired!")

	// The provider may omit the refresh token on renewal; carry the old one
	// forward so the session stays renewable.
	if result.OK() && result.Payload.RefreshToken == "" {
		result.Payload.RefreshToken = refreshToken
	}
	return result
}

// providerError is the accounts service's structured error body.
type providerError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type errorClassifier func(providerError) (spotify.ErrorKind, string, bool)

func classifyExchangeError(pe providerError) (spotify.ErrorKind, string, bool) {
	if pe.Error == "invalid_grant" && pe.ErrorDescription == "Authorization code expired" {
		return spotify.KindExpiredAuthCode, "Authorization code has expired.", true
	}
	if pe.Error == "invalid_grant" && pe.ErrorDescription == "Invalid authorization code" {
		return spotify.KindInvalidAuthCode, "Authorization code is invalid.", true
	}
	return "", "", false
}

func (c *Client) tokenRequest(ctx context.Context, form url.Values, classify errorClassifier, successMessage string) spotify.Result[spotify.TokenSet] {
	now := c.nowTime()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return uncaught[spotify.TokenSet](err, now)
	}
	req.SetBasicAuth(c.oauthCfg.ClientID, c.oauthCfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return uncaught[spotify.TokenSet](err, now)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var pe providerError
		if err := json.NewDecoder(resp.Body).Decode(&pe); err != nil {
			return uncaught[spotify.TokenSet](err, now)
		}
		if classify != nil {
			if kind, message, ok := classify(pe); ok {
				return spotify.NewFailure[spotify.TokenSet](kind, message, now)
			}
		}
		return spotify.NewFailure[spotify.TokenSet](
			spotify.KindUncaught,
			fmt.Sprintf("Uncaught Error: %s - %s.", pe.Error, pe.ErrorDescription),
			now,
		)
	}

	var tokens spotify.TokenSet
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return uncaught[spotify.TokenSet](err, now)
	}
	if tokens.AccessToken == "" {
		return spotify.NewFailure[spotify.TokenSet](spotify.KindUncaught, "Uncaught Error: Access token data not found.", now)
	}

	return spotify.NewSuccess(tokens, successMessage, now)
}

func uncaught[T any](err error, at time.Time) spotify.Result[T] {
	return spotify.NewFailure[T](spotify.KindUncaught, fmt.Sprintf("Uncaught Error: %s.", err.Error()), at)
}

// randomAlphanumeric draws length characters from the alphanumeric alphabet
// using the crypto source.
func randomAlphanumeric(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "[randomAlphanumeric] rand.Read")
	}
	for i, b := range buf {
		buf[i] = stateAlphabet[int(b)%len(stateAlphabet)]
	}
	return string(buf), nil
}
