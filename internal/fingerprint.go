package internal

import (
	"hash/fnv"
	"sync"
)

const (
	processedHighWater = 100
	processedLowWater  = 50
)

// FingerprintID is a cheap digest of normalized message text.
type FingerprintID uint64

// Fingerprint computes the digest for a piece of message text. It is
// deterministic and order-sensitive; collisions only suppress optional
// reprocessing, never storage, so a fast non-cryptographic hash is enough.
func Fingerprint(text string) FingerprintID {
	h := fnv.New64a()
	h.Write([]byte(text))
	return FingerprintID(h.Sum64())
}

// FingerprintCache tracks which messages were already dispatched to the
// model service in this session, plus the single in-flight slot. It is
// session-scoped: unlike the history log it does not survive restarts.
type FingerprintCache struct {
	mu       sync.Mutex
	order    []FingerprintID
	seen     map[FingerprintID]struct{}
	inFlight FingerprintID
	busy     bool
}

// NewFingerprintCache creates an empty cache.
func NewFingerprintCache() *FingerprintCache {
	return &FingerprintCache{seen: make(map[FingerprintID]struct{})}
}

// HasProcessed reports whether id was already dispatched this session.
func (c *FingerprintCache) HasProcessed(id FingerprintID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.seen[id]
	return ok
}

// MarkProcessed records id. When the set grows past the high-water mark
// only the most recently added entries are retained.
func (c *FingerprintCache) MarkProcessed(id FingerprintID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.seen[id]; ok {
		return
	}
	c.order = append(c.order, id)
	c.seen[id] = struct{}{}
	if len(c.order) > processedHighWater {
		evicted := c.order[:len(c.order)-processedLowWater]
		for _, old := range evicted {
			delete(c.seen, old)
		}
		kept := make([]FingerprintID, processedLowWater)
		copy(kept, c.order[len(c.order)-processedLowWater:])
		c.order = kept
	}
}

// BeginProcessing claims the single in-flight slot for id. It returns
// false when a different fingerprint already holds the slot; the caller
// is expected to retry through the normal debounce path.
func (c *FingerprintCache) BeginProcessing(id FingerprintID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy && c.inFlight != id {
		return false
	}
	c.busy = true
	c.inFlight = id
	return true
}

// EndProcessing releases the slot if id holds it. It must run on every
// exit path of a dispatch, including failures.
func (c *FingerprintCache) EndProcessing(id FingerprintID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy && c.inFlight == id {
		c.busy = false
	}
}

// IsProcessing reports whether id currently holds the in-flight slot.
func (c *FingerprintCache) IsProcessing(id FingerprintID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy && c.inFlight == id
}

// Busy reports whether any fingerprint is in flight.
func (c *FingerprintCache) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// ProcessedLen reports the current size of the processed set.
func (c *FingerprintCache) ProcessedLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}
