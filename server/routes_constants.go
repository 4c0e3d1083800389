package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteLogin    = "/login"
	RouteLogout   = "/logout"
	RouteCallback = "/callback"

	// Data API routes
	RouteAPIMe             = "/api/me"
	RouteAPINowPlaying     = "/api/now-playing"
	RouteAPITopTracks      = "/api/top-tracks"
	RouteAPITopTracksMore  = "/api/top-tracks/more"
	RouteAPITopTracksRange = "/api/top-tracks/range"

	// WebSocket feed
	RouteWSNowPlaying = "/ws/now-playing"

	RouteHealthz = "/healthz"
)
