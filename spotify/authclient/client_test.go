package authclient_test

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soundboard/soundboard/session"
	"github.com/soundboard/soundboard/spotify"
	"github.com/soundboard/soundboard/spotify/authclient"
	"github.com/soundboard/soundboard/store/storefakes"
)

const (
	testClientID     = "client-id-1"
	testClientSecret = "client-secret-1"
	testRedirectURI  = "http://localhost:8080/callback"
	testScopes       = "user-read-private user-top-read"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type testSpotifyConfig struct{}

func (testSpotifyConfig) GetClientID() string                  { return testClientID }
func (testSpotifyConfig) GetClientSecret() string              { return testClientSecret }
func (testSpotifyConfig) GetScopes() string                    { return testScopes }
func (testSpotifyConfig) GetRedirectURI() string               { return testRedirectURI }
func (testSpotifyConfig) GetRefreshMargin() time.Duration      { return 30 * time.Second }
func (testSpotifyConfig) GetNowPlayingInterval() time.Duration { return time.Second }

func newTestClient(t *testing.T, tokenHandler http.HandlerFunc, options ...authclient.Option) (*authclient.Client, *session.Store) {
	t.Helper()

	sessionStore := session.NewStore(storefakes.NewFakeStore())

	opts := []authclient.Option{authclient.WithNowTime(func() time.Time { return testNow })}
	if tokenHandler != nil {
		srv := httptest.NewServer(tokenHandler)
		t.Cleanup(srv.Close)
		opts = append(opts, authclient.WithEndpoints(srv.URL+"/authorize", srv.URL+"/api/token"))
	}
	opts = append(opts, options...)

	client, err := authclient.New(testSpotifyConfig{}, sessionStore, opts...)
	require.NoError(t, err)
	return client, sessionStore
}

func TestBuildLoginRedirectStateProperties(t *testing.T) {
	client, sessionStore := newTestClient(t, nil)

	redirectURL, err := client.BuildLoginRedirect()
	require.NoError(t, err)

	parsed, err := url.Parse(redirectURL)
	require.NoError(t, err)

	query := parsed.Query()
	require.Equal(t, "code", query.Get("response_type"))
	require.Equal(t, testClientID, query.Get("client_id"))
	require.Equal(t, testRedirectURI, query.Get("redirect_uri"))
	require.Equal(t, testScopes, query.Get("scope"))

	state := query.Get("state")
	require.Len(t, state, 16)
	for _, r := range state {
		require.Contains(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789", string(r))
	}

	// The persisted pending state round-trips exactly.
	pending, err := sessionStore.PendingState()
	require.NoError(t, err)
	require.Equal(t, state, pending)
}

func TestBuildLoginRedirectOverwritesPriorState(t *testing.T) {
	client, sessionStore := newTestClient(t, nil)

	first, err := client.BuildLoginRedirect()
	require.NoError(t, err)
	second, err := client.BuildLoginRedirect()
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	pending, err := sessionStore.PendingState()
	require.NoError(t, err)
	require.Contains(t, second, "state="+pending)
}

func TestExchangeCodeSuccess(t *testing.T) {
	var gotBody url.Values
	var gotAuth string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := url.ParseQuery(readBody(r))
		gotBody = body
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","scope":"user-read-private","expires_in":3600,"refresh_token":"rt-1"}`))
	})

	result := client.ExchangeCode(context.Background(), "code-1")
	require.True(t, result.OK())
	require.Equal(t, "at-1", result.Payload.AccessToken)
	require.Equal(t, "rt-1", result.Payload.RefreshToken)
	require.Equal(t, 3600, result.Payload.ExpiresIn)
	require.Equal(t, testNow, result.At)

	require.Equal(t, "authorization_code", gotBody.Get("grant_type"))
	require.Equal(t, "code-1", gotBody.Get("code"))
	require.Equal(t, testRedirectURI, gotBody.Get("redirect_uri"))

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte(testClientID+":"+testClientSecret))
	require.Equal(t, wantAuth, gotAuth)
}

func TestExchangeCodeClassifiesProviderErrors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantKind    spotify.ErrorKind
		wantMessage string
	}{
		{
			name:        "expired code",
			body:        `{"error":"invalid_grant","error_description":"Authorization code expired"}`,
			wantKind:    spotify.KindExpiredAuthCode,
			wantMessage: "Authorization code has expired.",
		},
		{
			name:        "invalid code",
			body:        `{"error":"invalid_grant","error_description":"Invalid authorization code"}`,
			wantKind:    spotify.KindInvalidAuthCode,
			wantMessage: "Authorization code is invalid.",
		},
		{
			name:     "unknown provider error",
			body:     `{"error":"invalid_client","error_description":"Invalid client"}`,
			wantKind: spotify.KindUncaught,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tc.body))
			})

			result := client.ExchangeCode(context.Background(), "code-1")
			require.False(t, result.OK())
			require.Equal(t, tc.wantKind, result.Kind)
			if tc.wantMessage != "" {
				require.Equal(t, tc.wantMessage, result.Message)
				require.False(t, result.Fatal())
			} else {
				require.True(t, result.Fatal())
			}
		})
	}
}

func TestExchangeCodeNeverPanicsOnBadBodies(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("not json"))
	})

	result := client.ExchangeCode(context.Background(), "code-1")
	require.False(t, result.OK())
	require.Equal(t, spotify.KindUncaught, result.Kind)
	require.True(t, result.Fatal())
}

func TestExchangeCodeTransportFailure(t *testing.T) {
	client, _ := newTestClient(t, nil, authclient.WithEndpoints("http://127.0.0.1:0/authorize", "http://127.0.0.1:0/api/token"))

	result := client.ExchangeCode(context.Background(), "code-1")
	require.False(t, result.OK())
	require.Equal(t, spotify.KindUncaught, result.Kind)
}

func TestRefreshFailureIsAlwaysUnclassified(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid refresh token"}`))
	})

	result := client.Refresh(context.Background(), "rt-1")
	require.False(t, result.OK())
	require.Equal(t, spotify.KindUncaught, result.Kind)
	require.True(t, result.Fatal())
}

func TestRefreshCarriesForwardRefreshToken(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := url.ParseQuery(readBody(r))
		require.Equal(t, "refresh_token", body.Get("grant_type"))
		require.Equal(t, "rt-old", body.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-2","token_type":"Bearer","scope":"user-read-private","expires_in":3600}`))
	})

	result := client.Refresh(context.Background(), "rt-old")
	require.True(t, result.OK())
	require.Equal(t, "at-2", result.Payload.AccessToken)
	require.Equal(t, "rt-old", result.Payload.RefreshToken)
}

func readBody(r *http.Request) string {
	body, _ := io.ReadAll(r.Body)
	return string(body)
}
