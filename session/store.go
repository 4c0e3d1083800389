package session

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/soundboard/soundboard/store"
)

// Durable keys. The session record is stored as JSON; the pending CSRF state
// is an opaque string.
const (
	sessionKey      = "access_token"
	pendingStateKey = "app_state"
)

// Store is the typed wrapper over the key/value capability. It owns the only
// durable copy of the session record and the pending auth state.
type Store struct {
	kv store.KV
}

func NewStore(kv store.KV) *Store {
	return &Store{kv: kv}
}

// Session loads the durable session record. A missing record returns
// (nil, nil); a corrupt record is an error.
func (s *Store) Session() (*StoredSession, error) {
	raw, err := s.kv.Get(sessionKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "[Store.Session] get")
	}

	var stored StoredSession
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, errors.Wrap(err, "[Store.Session] unmarshal")
	}
	return &stored, nil
}

// SaveSession replaces the durable session record wholesale.
func (s *Store) SaveSession(stored *StoredSession) error {
	if stored == nil {
		return errors.New("[Store.SaveSession] nil session")
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return errors.Wrap(err, "[Store.SaveSession] marshal")
	}
	if err := s.kv.Set(sessionKey, string(raw)); err != nil {
		return errors.Wrap(err, "[Store.SaveSession] set")
	}
	return nil
}

func (s *Store) DeleteSession() error {
	return errors.Wrap(s.kv.Remove(sessionKey), "[Store.DeleteSession] remove")
}

// PendingState reads the CSRF state persisted before the login redirect.
// Missing state returns ("", nil).
func (s *Store) PendingState() (string, error) {
	state, err := s.kv.Get(pendingStateKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		return "", errors.Wrap(err, "[Store.PendingState] get")
	}
	return state, nil
}

// SavePendingState overwrites any prior pending state. Implements
// authclient.StateStore.
func (s *Store) SavePendingState(state string) error {
	return errors.Wrap(s.kv.Set(pendingStateKey, state), "[Store.SavePendingState] set")
}

func (s *Store) DeletePendingState() error {
	return errors.Wrap(s.kv.Remove(pendingStateKey), "[Store.DeletePendingState] remove")
}
