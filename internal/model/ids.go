package model

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"

	"github.com/go-git/go-git/v5/plumbing"
)

// ShortIDLength is the number of hex digits kept from a generated hash,
// the same abbreviation git uses when it prints commit ids.
const ShortIDLength = 7

// IDGenerator produces candidate commit ids. Candidates may collide with ids
// already in a graph; the graph retries until it gets a fresh one.
type IDGenerator interface {
	Next() string
}

// HashIDs abbreviates a git object hash computed over a sequence number and a
// random nonce. Nothing about the commit is hashed: ids are opaque tokens that
// merely look like the short hashes users see in real repositories.
type HashIDs struct {
	mu  sync.Mutex
	seq uint64
}

func NewHashIDs() *HashIDs {
	return &HashIDs{}
}

func (h *HashIDs) Next() string {
	h.mu.Lock()
	h.seq++
	seq := h.seq
	h.mu.Unlock()

	payload := make([]byte, 16)
	binary.BigEndian.PutUint64(payload[:8], seq)
	binary.BigEndian.PutUint64(payload[8:], rand.Uint64())
	return plumbing.ComputeHash(plumbing.CommitObject, payload).String()[:ShortIDLength]
}

// SequenceIDs hands out a fixed list of ids first and then numbered ids
// ("c1", "c2", ...). Tests use it to get predictable commit ids.
type SequenceIDs struct {
	mu     sync.Mutex
	queued []string
	n      int
}

func NewSequenceIDs(ids ...string) *SequenceIDs {
	return &SequenceIDs{queued: ids}
}

func (s *SequenceIDs) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queued) > 0 {
		id := s.queued[0]
		s.queued = s.queued[1:]
		return id
	}
	s.n++
	return fmt.Sprintf("c%d", s.n)
}
