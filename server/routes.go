package server

import (
	"strings"

	"github.com/rs/zerolog/log"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET /{$}", s.IndexHandler())

	// LOGIN / CALLBACK
	s.RegisterRouteFunc("GET "+RouteLogin, s.LoginHandler())
	s.RegisterRouteFunc("GET "+RouteLogout, s.LogoutHandler())
	s.RegisterRouteFunc("GET "+RouteCallback, s.CallbackHandler())

	// Data API routes
	s.RegisterRouteHandler("GET "+RouteAPIMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPINowPlaying, ChainMiddleware(s.NowPlayingHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPITopTracks, ChainMiddleware(s.TopTracksHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPITopTracksMore, ChainMiddleware(s.TopTracksMoreHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPITopTracksRange, ChainMiddleware(s.TopTracksRangeHandler(), s.APIMiddleware()...))

	// WebSocket feed
	s.RegisterRouteFunc("GET "+RouteWSNowPlaying, s.NowPlayingFeedHandler())

	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Info().Str("method", parts[0]).Str("path", parts[1]).Msg("route")
		} else {
			log.Info().Str("path", parts[0]).Msg("route")
		}
	}
}
