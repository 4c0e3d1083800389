package config

import (
	"os"
	"time"
)

type SpotifyConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetScopes() string
	GetRedirectURI() string
	GetRefreshMargin() time.Duration
	GetNowPlayingInterval() time.Duration
}

type Spotify struct{}

var _ SpotifyConfig = Spotify{}

// Scopes required to read the user's profile, top items, and playback state.
const spotifyScopes = "user-read-private user-read-email user-top-read user-read-currently-playing"

// devRedirectURI is the fixed callback used outside production deployments.
const devRedirectURI = "http://localhost:8080/callback"

func (Spotify) GetClientID() string {
	return os.Getenv("SPOTIFY_CLIENT_ID")
}

func (Spotify) GetClientSecret() string {
	return os.Getenv("SPOTIFY_CLIENT_SECRET")
}

func (Spotify) GetScopes() string {
	return spotifyScopes
}

// GetRedirectURI returns the registered OAuth callback: the configured base
// URL plus /callback in production, the fixed local URL otherwise.
func (Spotify) GetRedirectURI() string {
	env := EnvVars{}
	if env.GetEnv() == "PROD" {
		return env.GetBaseURL() + "/callback"
	}
	return devRedirectURI
}

// GetRefreshMargin is how long before the recorded expiry a token is treated
// as expired and refreshed proactively. The bounded refresh-and-retry policy
// still covers tokens the provider rejects inside the margin.
func (Spotify) GetRefreshMargin() time.Duration {
	return 30 * time.Second
}

// GetNowPlayingInterval is the poll period of the currently-playing feed.
func (Spotify) GetNowPlayingInterval() time.Duration {
	return 15 * time.Second
}
