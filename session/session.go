// Package session owns the authorization session lifecycle: deciding from
// callback parameters and stored state whether to start login, exchange a
// code, or resume; holding the in-memory mirror of the durable session; and
// providing the single refresh choke point every dependent data fetch retries
// through.
package session

import (
	"time"

	"github.com/soundboard/soundboard/spotify"
)

// StoredSession is the durable session record: the provider's token set plus
// the expiry derived once at acquisition time. ExpiresAt is never recomputed
// from ExpiresIn afterwards.
type StoredSession struct {
	Tokens     spotify.TokenSet `json:"data"`
	AcquiredAt time.Time        `json:"acquired_at"`
	ExpiresAt  time.Time        `json:"expiry_date"`
}

// NewStoredSession derives the absolute expiry from the acquisition instant
// and the provider-declared lifetime.
func NewStoredSession(tokens spotify.TokenSet, acquiredAt time.Time) *StoredSession {
	return &StoredSession{
		Tokens:     tokens,
		AcquiredAt: acquiredAt,
		ExpiresAt:  acquiredAt.Add(time.Duration(tokens.ExpiresIn) * time.Second),
	}
}

// CanRefresh reports whether the session can be silently renewed.
func (s *StoredSession) CanRefresh() bool {
	return s != nil && s.Tokens.RefreshToken != ""
}

// ExpiresWithin reports whether the token's recorded expiry falls inside the
// margin from now.
func (s *StoredSession) ExpiresWithin(margin time.Duration, now time.Time) bool {
	return !now.Add(margin).Before(s.ExpiresAt)
}
