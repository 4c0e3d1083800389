// Package store abstracts the durable per-user key/value storage the session
// layer persists its state into. Callers depend on the KV capability, never on
// a concrete backend, so tests can substitute an in-memory double.
package store

import "errors"

// ErrNotFound is returned by Get when no value exists under the key. Remove
// on a missing key is not an error.
var ErrNotFound = errors.New("key not found")

// KV is the minimal get/set/remove capability the session layer needs.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}
