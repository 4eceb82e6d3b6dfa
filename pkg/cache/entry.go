package cache

import (
	"encoding/json"
	"time"
)

// entry is the stored state of one signature. All fields are guarded by the
// store mutex.
type entry struct {
	sig  Signature
	data json.RawMessage

	// tags the current value provides; kept in sync with the byTag index.
	tags []Tag

	// fresh is cleared by Invalidate and restored by the next successful write.
	fresh bool

	// refs counts active subscribers. Entries with zero refs are eligible
	// for time-based eviction once lastAccess is old enough.
	refs int

	// refetch is the fetch captured at the last Read, used for background
	// refreshes triggered by invalidation or subscription.
	refetch FetchFunc

	// lastErr is the most recent fetch failure. The previous data survives a
	// failed fetch so callers can keep rendering last good state.
	lastErr error

	storedAt   time.Time
	lastAccess time.Time
}

// idleFor returns how long the entry has gone without access.
func (e *entry) idleFor(now time.Time) time.Duration {
	return now.Sub(e.lastAccess)
}

// evictable reports whether the entry may be dropped: no subscribers and
// unused for longer than the retention window.
func (e *entry) evictable(now time.Time, keepUnusedFor time.Duration) bool {
	return e.refs == 0 && e.idleFor(now) > keepUnusedFor
}

// EntryInfo is a point-in-time snapshot of one entry's bookkeeping state,
// returned by Peek. It never triggers a fetch.
type EntryInfo struct {
	// Fresh is false once an intersecting invalidation has marked the entry.
	Fresh bool

	// HasData reports whether a successful fetch has ever populated the entry.
	HasData bool

	// Tags is the provided-tag set of the current value.
	Tags []Tag

	// Subscribers is the active subscription count.
	Subscribers int

	// LastErr is the most recent fetch failure, nil after a successful fetch.
	LastErr error

	// StoredAt is when the current value was written.
	StoredAt time.Time

	// LastAccess is when the entry was last read or subscribed.
	LastAccess time.Time
}

func (e *entry) snapshot() EntryInfo {
	tags := make([]Tag, len(e.tags))
	copy(tags, e.tags)
	return EntryInfo{
		Fresh:       e.fresh,
		HasData:     e.data != nil,
		Tags:        tags,
		Subscribers: e.refs,
		LastErr:     e.lastErr,
		StoredAt:    e.storedAt,
		LastAccess:  e.lastAccess,
	}
}
