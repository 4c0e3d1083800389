package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/soundboard/soundboard/session"
	"github.com/soundboard/soundboard/spotify"
)

// IndexHandler renders a minimal landing page pointing at the dashboard API.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, indexPage, s.config.GetAppName())
	}
}

const indexPage = `<html><head><title>%s</title></head><body>
<h1>%[1]s</h1>
<p><a href="/login">Log in with Spotify</a></p>
<ul>
<li><a href="/api/me">Profile</a></li>
<li><a href="/api/now-playing">Now playing</a></li>
<li><a href="/api/top-tracks">Top tracks</a></li>
</ul>
</body></html>`

// LoginHandler restarts the login flow: stored state is cleared and the
// browser is sent to the provider's authorize page.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirectURL, err := s.sessions.StartLogin()
		if err != nil {
			writeError(w, errors.Wrap(err, "starting login"), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, redirectURL, http.StatusFound)
	}
}

// LogoutHandler clears the durable session and returns to the landing page.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.sessions.Logout(); err != nil {
			writeError(w, errors.Wrap(err, "logging out"), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// CallbackHandler receives the provider redirect and lets the session
// controller decide: exchange the code, resume, deny, or restart login.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		cb := session.Callback{
			Code:          query.Get("code"),
			State:         query.Get("state"),
			ProviderError: query.Get("error"),
		}

		decision, err := s.sessions.Resolve(r.Context(), cb)
		if err != nil {
			writeError(w, errors.Wrap(err, "resolving callback"), http.StatusBadGateway)
			return
		}

		switch {
		case decision.RedirectURL != "":
			http.Redirect(w, r, decision.RedirectURL, http.StatusFound)
		case decision.State == session.StateDenied:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprintf(w, deniedPage, decision.Reason)
		default:
			// Authenticated, or a benign duplicate callback.
			http.Redirect(w, r, "/", http.StatusFound)
		}
	}
}

const deniedPage = `<html><body>
<p>Something went wrong. Authentication denied.</p>
<p>ERROR: <code>%s</code></p>
<p><a href="/login">Retry</a></p>
</body></html>`

// MeHandler returns the authenticated user's profile.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := session.WithRefreshRetry(r.Context(), s.sessions, s.api.GetProfile)
		if err != nil {
			writeError(w, err, statusForSessionError(err))
			return
		}
		if !result.OK() {
			writeError(w, result.Err(), http.StatusBadGateway)
			return
		}
		writeJSON(w, result.Payload, http.StatusOK)
	}
}

// NowPlayingHandler returns the playback snapshot; 204 when nothing plays.
func (s *Server) NowPlayingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := session.WithRefreshRetry(r.Context(), s.sessions, s.api.GetCurrentlyPlaying)
		if err != nil {
			writeError(w, err, statusForSessionError(err))
			return
		}
		switch {
		case result.OK():
			writeJSON(w, result.Payload, http.StatusOK)
		case result.Kind == spotify.KindNoCurrentTrack:
			w.WriteHeader(http.StatusNoContent)
		default:
			writeError(w, result.Err(), http.StatusBadGateway)
		}
	}
}

// topTracksResponse is the accumulated listing the three top-tracks routes
// return.
type topTracksResponse struct {
	TimeRange spotify.TimeRange `json:"time_range"`
	Offset    int               `json:"offset"`
	Items     []spotify.Track   `json:"items"`
	HasMore   bool              `json:"has_more"`
}

func (s *Server) topTracksSnapshot() topTracksResponse {
	return topTracksResponse{
		TimeRange: s.topTracks.TimeRange(),
		Offset:    s.topTracks.Offset(),
		Items:     s.topTracks.Items(),
		HasMore:   s.topTracks.HasMore(),
	}
}

// TopTracksHandler returns the current listing, loading the first page when
// nothing is accumulated yet.
func (s *Server) TopTracksHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.topTracks.Items()) == 0 {
			timeRange := spotify.TimeRange(r.URL.Query().Get("time_range"))
			if err := s.topTracks.LoadInitial(r.Context(), timeRange); err != nil {
				writeError(w, err, statusForSessionError(err))
				return
			}
		}
		writeJSON(w, s.topTracksSnapshot(), http.StatusOK)
	}
}

// TopTracksMoreHandler appends the next page to the listing.
func (s *Server) TopTracksMoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.topTracks.LoadMore(r.Context()); err != nil {
			writeError(w, err, statusForSessionError(err))
			return
		}
		writeJSON(w, s.topTracksSnapshot(), http.StatusOK)
	}
}

// TopTracksRangeHandler switches the ranking window, resetting the listing.
func (s *Server) TopTracksRangeHandler() http.HandlerFunc {
	type rangeRequest struct {
		TimeRange spotify.TimeRange `json:"time_range"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req rangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, errors.Wrap(err, "decoding range request"), http.StatusBadRequest)
			return
		}
		if err := s.topTracks.ChangeTimeRange(r.Context(), req.TimeRange); err != nil {
			writeError(w, err, statusForSessionError(err))
			return
		}
		writeJSON(w, s.topTracksSnapshot(), http.StatusOK)
	}
}

func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	}
}

// statusForSessionError maps a lost or denied session to 401 so clients
// restart login; everything else is an upstream failure.
func statusForSessionError(err error) int {
	if errors.Is(err, session.ErrLoginRequired) || errors.Is(err, session.ErrAuthenticationDenied) {
		return http.StatusUnauthorized
	}
	return http.StatusBadGateway
}
