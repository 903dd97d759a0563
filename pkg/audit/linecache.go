package audit

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// EventContext is phase 1's per-event-id process context, built from a
// SYSCALL record and joined against in phase 2.
type EventContext struct {
	PID  int
	PPID int
	Comm string
	Exe  string
}

// MaxEventContextEntries bounds the event-context cache; golang-lru evicts
// the oldest entry once this capacity is exceeded, matching spec.md 4.3's
// "bounded at 256 entries; oldest-first eviction" rule without a hand-rolled
// ring buffer.
const MaxEventContextEntries = 256

// EventContextCache is the phase-1 SYSCALL-event-id -> process-context map.
type EventContextCache struct {
	cache *lru.Cache[string, EventContext]
}

// NewEventContextCache builds an empty, bounded event-context cache.
func NewEventContextCache() *EventContextCache {
	c, _ := lru.New[string, EventContext](MaxEventContextEntries)
	return &EventContextCache{cache: c}
}

// Put records the context for eventID, evicting the oldest entry if the
// cache is at capacity.
func (c *EventContextCache) Put(eventID string, ctx EventContext) {
	c.cache.Add(eventID, ctx)
}

// Get looks up the context recorded for eventID.
func (c *EventContextCache) Get(eventID string) (EventContext, bool) {
	return c.cache.Get(eventID)
}

// Len reports the number of cached event contexts.
func (c *EventContextCache) Len() int {
	return c.cache.Len()
}
