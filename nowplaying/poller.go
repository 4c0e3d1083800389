// Package nowplaying polls the playback endpoint at a fixed interval and fans
// the snapshots out to subscribers. The "no content" idle state is a normal
// update (nil snapshot), not a failure.
package nowplaying

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/soundboard/soundboard/session"
	"github.com/soundboard/soundboard/spotify"
)

// Fetcher is the slice of the resource client the poller drives.
type Fetcher interface {
	GetCurrentlyPlaying(ctx context.Context, tokenType, accessToken string) spotify.Result[spotify.CurrentlyPlaying]
}

// Update is one observation of the playback state. Playing is nil while
// nothing is playing.
type Update struct {
	Playing *spotify.CurrentlyPlaying `json:"playing"`
	At      time.Time                 `json:"at"`
}

// Poller periodically reads the currently-playing endpoint through the
// session's refresh-and-retry policy and broadcasts each observation.
type Poller struct {
	session  *session.Controller
	api      Fetcher
	interval time.Duration

	mu          sync.Mutex
	subscribers map[chan Update]struct{}
	last        *Update
}

// New builds a Poller. interval must be positive.
func New(sessions *session.Controller, api Fetcher, interval time.Duration) (*Poller, error) {
	if sessions == nil {
		return nil, errors.New("[nowplaying.New] session controller is required")
	}
	if api == nil {
		return nil, errors.New("[nowplaying.New] fetcher is required")
	}
	if interval <= 0 {
		return nil, errors.New("[nowplaying.New] interval must be positive")
	}

	return &Poller{
		session:     sessions,
		api:         api,
		interval:    interval,
		subscribers: make(map[chan Update]struct{}),
	}, nil
}

// Run polls until ctx is cancelled. Fatal fetch errors are logged and polling
// continues; a lost session stops the poll loop until the next Run.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	result, err := session.WithRefreshRetry(ctx, p.session, p.api.GetCurrentlyPlaying)
	if err != nil {
		if errors.Is(err, session.ErrLoginRequired) {
			return
		}
		log.Err(err).Msg("now-playing poll failed")
		return
	}

	update := Update{At: result.At}
	switch {
	case result.OK():
		update.Playing = result.Payload
	case result.Kind == spotify.KindNoCurrentTrack:
		// Idle: broadcast the nil snapshot.
	default:
		log.Warn().Str("kind", string(result.Kind)).Msg(result.Message)
		return
	}

	p.broadcast(update)
}

func (p *Poller) broadcast(update Update) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.last = &update
	for sub := range p.subscribers {
		select {
		case sub <- update:
		default:
			// Slow subscriber: drop this observation rather than block the
			// poll loop.
		}
	}
}

// Subscribe registers a listener and returns its channel plus a cancel func.
// The listener immediately receives the last observation when one exists.
func (p *Poller) Subscribe() (<-chan Update, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sub := make(chan Update, 8)
	p.subscribers[sub] = struct{}{}
	if p.last != nil {
		sub <- *p.last
	}

	cancel := func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if _, ok := p.subscribers[sub]; ok {
			delete(p.subscribers, sub)
			close(sub)
		}
	}
	return sub, cancel
}

// Last returns the most recent observation, or nil before the first poll.
func (p *Poller) Last() *Update {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.last == nil {
		return nil
	}
	copied := *p.last
	return &copied
}
