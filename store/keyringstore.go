package store

import (
	"github.com/pkg/errors"
	"github.com/zalando/go-keyring"
)

const keyringService = "com.soundboard.app"

// KeyringStore persists values in the operating system keychain, one secret
// per key. Preferred over FileStore on hosts with a keychain because token
// material never touches disk in the clear.
type KeyringStore struct {
	service string
}

var _ KV = (*KeyringStore)(nil)

// NewKeyringStore returns a KeyringStore under the default service name.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: keyringService}
}

func (ks *KeyringStore) Get(key string) (string, error) {
	value, err := keyring.Get(ks.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", errors.Wrap(err, "[KeyringStore.Get] keyring get")
	}
	return value, nil
}

func (ks *KeyringStore) Set(key, value string) error {
	if err := keyring.Set(ks.service, key, value); err != nil {
		return errors.Wrap(err, "[KeyringStore.Set] keyring set")
	}
	return nil
}

func (ks *KeyringStore) Remove(key string) error {
	if err := keyring.Delete(ks.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return errors.Wrap(err, "[KeyringStore.Remove] keyring delete")
	}
	return nil
}
