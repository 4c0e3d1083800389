// Package apiclient performs authenticated reads against the streaming API's
// resource endpoints. All three operations share one failure-classification
// rule: a 401 whose message reports token expiry becomes expired-access-token,
// any other non-success response or thrown transport error is unclassified.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/soundboard/soundboard/spotify"
)

const (
	defaultBaseURL = "https://api.spotify.com/v1"

	// expiredTokenMessage is the provider's exact phrasing for an expired
	// bearer token; other 401 messages (bad token, missing scope) stay fatal.
	expiredTokenMessage = "The access token expired"

	defaultTimeRange = spotify.TimeRangeShort
	defaultLimit     = 10
)

// Client reads the resource API. It carries no token state: the session layer
// passes the credential pair into every call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	nowTime    func() time.Time
}

// Option modifies a Client, primarily for testing.
type Option func(*Client)

// WithBaseURL points the client at an alternative API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient overrides the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithNowTime sets the clock used to stamp results.
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Client) { c.nowTime = nowFunc }
}

func New(options ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		nowTime:    time.Now,
	}
	for _, opt := range options {
		opt(client)
	}
	return client
}

// GetProfile fetches the authenticated user's account.
func (c *Client) GetProfile(ctx context.Context, tokenType, accessToken string) spotify.Result[spotify.Profile] {
	return getJSON[spotify.Profile](ctx, c, "/me", nil, tokenType, accessToken, "User profile acquired!")
}

// GetCurrentlyPlaying fetches the playback snapshot. A 204 from the provider
// is the expected idle state and is reported as the no-current-track kind with
// a nil payload, not as success and not as a fatal error.
func (c *Client) GetCurrentlyPlaying(ctx context.Context, tokenType, accessToken string) spotify.Result[spotify.CurrentlyPlaying] {
	result := getJSON[spotify.CurrentlyPlaying](ctx, c, "/me/player/currently-playing", nil, tokenType, accessToken, "User currently playing track acquired!")
	if result.Kind == kindNoContent {
		return spotify.NewFailure[spotify.CurrentlyPlaying](spotify.KindNoCurrentTrack, "The user currently has no currently playing track.", result.At)
	}
	return result
}

// TopItemsQuery parameterises the ranked top-items read. Zero values take the
// provider defaults: short_term, limit 10, offset 0.
type TopItemsQuery struct {
	TimeRange spotify.TimeRange
	Limit     int
	Offset    int
}

func (q TopItemsQuery) withDefaults() TopItemsQuery {
	if q.TimeRange == "" {
		q.TimeRange = defaultTimeRange
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// GetTopItems fetches one page of the user's ranked top items.
func (c *Client) GetTopItems(ctx context.Context, tokenType, accessToken string, itemType spotify.ItemType, query TopItemsQuery) spotify.Result[spotify.TopTracksPage] {
	query = query.withDefaults()

	params := url.Values{}
	params.Set("time_range", string(query.TimeRange))
	params.Set("limit", strconv.Itoa(query.Limit))
	params.Set("offset", strconv.Itoa(query.Offset))

	message := fmt.Sprintf("User top %s %d-%d %s acquired!", query.TimeRange, query.Offset+1, query.Offset+query.Limit, itemType)
	return getJSON[spotify.TopTracksPage](ctx, c, "/me/top/"+string(itemType), params, tokenType, accessToken, message)
}

// resourceError is the resource API's structured error body.
type resourceError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// kindNoContent is internal to this package: getJSON reports a 204 with it and
// the one endpoint that expects "no content" translates it.
const kindNoContent spotify.ErrorKind = "no-content"

func getJSON[T any](ctx context.Context, c *Client, path string, params url.Values, tokenType, accessToken, successMessage string) spotify.Result[T] {
	now := c.nowTime()

	link := c.baseURL + path
	if len(params) > 0 {
		link += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return uncaught[T](err, now)
	}
	req.Header.Set("Authorization", fmt.Sprintf("%s %s", tokenType, accessToken))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return uncaught[T](err, now)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return spotify.NewFailure[T](kindNoContent, "No content.", now)
	}

	if resp.StatusCode != http.StatusOK {
		var re resourceError
		if err := json.NewDecoder(resp.Body).Decode(&re); err != nil {
			return uncaught[T](err, now)
		}
		if re.Error.Status == http.StatusUnauthorized && re.Error.Message == expiredTokenMessage {
			return spotify.NewFailure[T](spotify.KindExpiredAccessToken, "Access token is expired.", now)
		}
		return spotify.NewFailure[T](
			spotify.KindUncaught,
			fmt.Sprintf("Uncaught Error: %d - %s.", re.Error.Status, re.Error.Message),
			now,
		)
	}

	var payload T
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return uncaught[T](err, now)
	}

	return spotify.NewSuccess(payload, successMessage, now)
}

func uncaught[T any](err error, at time.Time) spotify.Result[T] {
	return spotify.NewFailure[T](spotify.KindUncaught, fmt.Sprintf("Uncaught Error: %s.", err.Error()), at)
}
