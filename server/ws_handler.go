package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Same-host dashboard; the data is the viewer's own.
	},
}

// NowPlayingFeedHandler upgrades the connection and streams now-playing
// updates until the client disconnects.
func (s *Server) NowPlayingFeedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.poller == nil {
			http.Error(w, "now-playing feed disabled", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			writeError(w, err, http.StatusInternalServerError)
			return
		}
		defer conn.Close()

		updates, cancel := s.poller.Subscribe()
		defer cancel()

		// Drain reads so close frames are processed; the feed is write-only.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if err := conn.WriteJSON(update); err != nil {
					log.Err(err).Msg("now-playing feed write failed")
					return
				}
			}
		}
	}
}
