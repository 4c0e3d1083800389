// Package server is the HTTP surface of the dashboard: the OAuth login and
// callback routes, the JSON data API, and the WebSocket now-playing feed.
package server

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/soundboard/soundboard/internal/config"
	"github.com/soundboard/soundboard/nowplaying"
	"github.com/soundboard/soundboard/session"
	"github.com/soundboard/soundboard/spotify/apiclient"
	"github.com/soundboard/soundboard/toptracks"
)

type Server struct {
	env       string
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	sessions  *session.Controller
	api       *apiclient.Client
	topTracks *toptracks.Controller
	poller    *nowplaying.Poller
}

func New(cfg config.Config, sessions *session.Controller, api *apiclient.Client, topTracks *toptracks.Controller, poller *nowplaying.Poller) (*Server, error) {
	if sessions == nil {
		return nil, errors.New("[server.New] session controller is required")
	}
	if api == nil {
		return nil, errors.New("[server.New] api client is required")
	}
	if topTracks == nil {
		return nil, errors.New("[server.New] top tracks controller is required")
	}

	s := &Server{
		mux:       http.NewServeMux(),
		config:    cfg,
		sessions:  sessions,
		api:       api,
		topTracks: topTracks,
		poller:    poller,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}
