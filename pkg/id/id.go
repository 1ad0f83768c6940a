// Package id generates run identifiers.
package id

import (
	cryptoRand "crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader = ulid.Monotonic(cryptoRand.Reader, 0)
)

// New returns a ULID for the current time.
func New() string {
	return NewAt(time.Now())
}

// NewAt returns a ULID stamped with t. IDs made within the same millisecond
// stay lexicographically increasing.
func NewAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t.UTC()), mono)
	if err != nil {
		panic(err)
	}
	return id.String()
}

// Time returns the timestamp encoded in a ULID string.
func Time(s string) (time.Time, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(id.Time()).UTC(), nil
}
