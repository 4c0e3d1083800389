package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/soundboard/soundboard/spotify"
)

// State is the controller's position in the authorization lifecycle.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
	StateRefreshing      State = "refreshing"
	StateDenied          State = "authentication-denied"
)

// AuthClient is the slice of the authorization client the controller drives.
type AuthClient interface {
	BuildLoginRedirect() (string, error)
	ExchangeCode(ctx context.Context, code string) spotify.Result[spotify.TokenSet]
	Refresh(ctx context.Context, refreshToken string) spotify.Result[spotify.TokenSet]
}

// Callback carries the query parameters the provider redirects back with.
type Callback struct {
	Code          string
	State         string
	ProviderError string
}

// Decision tells the caller what to do after resolving a visit: render for
// the given state, or navigate to RedirectURL when login must (re)start.
type Decision struct {
	State       State
	RedirectURL string
	Reason      string
}

// Controller is the session state machine. It keeps a transient in-memory
// mirror of the durable session for the lifetime of the process and is the
// single writer back to the store.
type Controller struct {
	mu    sync.Mutex
	store *Store
	auth  AuthClient

	state        State
	session      *StoredSession
	deniedReason string

	// exchanged guards each authorization code so a duplicate callback
	// delivery never issues a second exchange.
	exchanged map[string]struct{}

	refreshMargin time.Duration
	nowTime       func() time.Time
}

// Option modifies a Controller.
type Option func(*Controller)

// WithNowTime sets the clock (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Controller) { c.nowTime = nowFunc }
}

// WithRefreshMargin sets how long before recorded expiry a token is renewed
// proactively.
func WithRefreshMargin(margin time.Duration) Option {
	return func(c *Controller) { c.refreshMargin = margin }
}

// New builds a Controller over the durable store and authorization client.
func New(store *Store, auth AuthClient, options ...Option) (*Controller, error) {
	if store == nil {
		return nil, errors.New("[session.New] store is required")
	}
	if auth == nil {
		return nil, errors.New("[session.New] auth client is required")
	}

	controller := &Controller{
		store:     store,
		auth:      auth,
		state:     StateUnauthenticated,
		exchanged: make(map[string]struct{}),
		nowTime:   time.Now,
	}

	for _, opt := range options {
		opt(controller)
	}

	return controller, nil
}

// Resolve derives the session state from the stored record and the callback
// parameters: resume when a durable session exists, exchange when the
// provider sent back a code, otherwise restart login.
func (c *Controller) Resolve(ctx context.Context, cb Callback) (Decision, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		stored, err := c.store.Session()
		if err != nil {
			return Decision{}, errors.Wrap(err, "[Resolve] load session")
		}
		c.session = stored
	}

	// A durable session wins over callback parameters: the code was already
	// exchanged on a previous load.
	if c.session != nil {
		c.state = StateAuthenticated
		return Decision{State: StateAuthenticated}, nil
	}

	if cb.ProviderError != "" {
		return c.denyLocked(cb.ProviderError), nil
	}

	if cb.Code != "" && cb.State != "" {
		return c.exchangeLocked(ctx, cb)
	}

	// Neither callback parameters nor a session: restart login.
	redirectURL, err := c.startLoginLocked()
	if err != nil {
		return Decision{}, err
	}
	return Decision{State: StateUnauthenticated, RedirectURL: redirectURL}, nil
}

func (c *Controller) exchangeLocked(ctx context.Context, cb Callback) (Decision, error) {
	c.state = StateAuthenticating

	pending, err := c.store.PendingState()
	if err != nil {
		return Decision{}, errors.Wrap(err, "[exchangeLocked] pending state")
	}
	if cb.State != pending {
		return c.denyLocked("state_mismatch"), nil
	}

	// One-shot per code: a reload that replays the callback is a no-op.
	if _, done := c.exchanged[cb.Code]; done {
		log.Warn().Msg("authorization code already exchanged, ignoring duplicate callback")
		return Decision{State: StateAuthenticating}, nil
	}
	c.exchanged[cb.Code] = struct{}{}

	result := c.auth.ExchangeCode(ctx, cb.Code)
	switch {
	case result.OK():
		stored := NewStoredSession(*result.Payload, result.At)
		if err := c.store.SaveSession(stored); err != nil {
			return Decision{}, errors.Wrap(err, "[exchangeLocked] save session")
		}
		if err := c.store.DeletePendingState(); err != nil {
			return Decision{}, errors.Wrap(err, "[exchangeLocked] consume pending state")
		}
		c.session = stored
		c.state = StateAuthenticated
		return Decision{State: StateAuthenticated}, nil

	case result.Kind == spotify.KindInvalidAuthCode || result.Kind == spotify.KindExpiredAuthCode:
		// Benign: the code was consumed by an earlier delivery of the same
		// callback. Stay authenticating and expect a fresh redirect.
		log.Warn().Str("kind", string(result.Kind)).Msg(result.Message)
		return Decision{State: StateAuthenticating}, nil

	default:
		return Decision{}, errors.New("[exchangeLocked] " + result.Message)
	}
}

func (c *Controller) denyLocked(reason string) Decision {
	c.state = StateDenied
	c.deniedReason = reason
	return Decision{State: StateDenied, Reason: reason}
}

// StartLogin clears any stored state and returns the provider login URL.
func (c *Controller) StartLogin() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startLoginLocked()
}

func (c *Controller) startLoginLocked() (string, error) {
	if err := c.store.DeletePendingState(); err != nil {
		return "", errors.Wrap(err, "[startLoginLocked] clear pending state")
	}
	if err := c.store.DeleteSession(); err != nil {
		return "", errors.Wrap(err, "[startLoginLocked] clear session")
	}
	c.session = nil
	c.state = StateUnauthenticated

	redirectURL, err := c.auth.BuildLoginRedirect()
	if err != nil {
		return "", errors.Wrap(err, "[startLoginLocked] build login redirect")
	}
	return redirectURL, nil
}

// Token returns the credential pair for resource reads, renewing proactively
// when the recorded expiry falls inside the refresh margin.
func (c *Controller) Token(ctx context.Context) (tokenType, accessToken string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateDenied {
		return "", "", errors.Wrap(ErrAuthenticationDenied, c.deniedReason)
	}
	if c.session == nil {
		return "", "", ErrLoginRequired
	}

	if c.session.ExpiresWithin(c.refreshMargin, c.nowTime()) && c.session.CanRefresh() {
		if err := c.refreshLocked(ctx); err != nil {
			return "", "", err
		}
	}

	return c.session.Tokens.TokenType, c.session.Tokens.AccessToken, nil
}

// Refresh is the single choke point for renewal. On success the durable
// session is replaced wholesale; on failure the controller falls back to
// Unauthenticated and the caller must redirect to login.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

func (c *Controller) refreshLocked(ctx context.Context) error {
	if !c.session.CanRefresh() {
		c.clearLocked()
		return errors.Wrap(ErrLoginRequired, "session has no refresh token")
	}

	c.state = StateRefreshing
	result := c.auth.Refresh(ctx, c.session.Tokens.RefreshToken)
	if !result.OK() {
		log.Err(result.Err()).Msg("token refresh failed")
		c.clearLocked()
		return errors.Wrap(ErrLoginRequired, result.Message)
	}

	stored := NewStoredSession(*result.Payload, result.At)
	if err := c.store.SaveSession(stored); err != nil {
		return errors.Wrap(err, "[refreshLocked] save session")
	}
	c.session = stored
	c.state = StateAuthenticated
	return nil
}

func (c *Controller) clearLocked() {
	_ = c.store.DeleteSession()
	c.session = nil
	c.state = StateUnauthenticated
}

// Logout removes the durable session and pending state.
func (c *Controller) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.DeletePendingState(); err != nil {
		return errors.Wrap(err, "[Logout] clear pending state")
	}
	if err := c.store.DeleteSession(); err != nil {
		return errors.Wrap(err, "[Logout] clear session")
	}
	c.session = nil
	c.state = StateUnauthenticated
	return nil
}

// State reports the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// DeniedReason returns the diagnostic recorded when authentication was denied.
func (c *Controller) DeniedReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deniedReason
}

// Session returns a copy of the in-memory session mirror, or nil.
func (c *Controller) Session() *StoredSession {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil
	}
	copied := *c.session
	return &copied
}
