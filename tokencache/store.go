// tokencache/store.go

/* The tokencache package provides pluggable persistence for service tokens. The
authentication handler keeps its working token in memory and mirrors it through a Store so
a still-valid token can outlive the process. The in-memory default is fine for a single
process; the file store shares a token between processes on one machine, and the Redis
store shares one across a fleet of workers hitting the same instance. */
package tokencache

import "time"

// Entry is a cached service token together with its expiry.
type Entry struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Valid reports whether the entry holds a token that is still at least bufferPeriod away
// from expiring.
func (e Entry) Valid(bufferPeriod time.Duration) bool {
	return e.Token != "" && time.Now().Add(bufferPeriod).Before(e.Expires)
}

// Store is a pluggable persistence layer for service tokens.
//
// Load reports a miss, not an error, when no usable entry exists: a corrupt or absent
// cache must never block authentication, the caller simply obtains a fresh token.
type Store interface {
	Save(entry Entry) error
	Load() (Entry, bool, error)
	Clear() error
}
