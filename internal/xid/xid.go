package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

var seq atomic.Uint64

// New returns an id of the form prefix-<unix nanos>-<sequence>[-<random>].
// The sequence keeps ids distinct when the clock does not advance between calls.
func New(prefix string) string {
	n := seq.Add(1)
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), n)
	}
	return fmt.Sprintf("%s-%d-%d-%s", prefix, time.Now().UnixNano(), n, hex.EncodeToString(buf))
}
