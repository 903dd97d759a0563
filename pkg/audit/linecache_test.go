package audit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventContextCachePutGet(t *testing.T) {
	c := NewEventContextCache()
	c.Put("1700000000.001:42", EventContext{PID: 100, PPID: 1, Comm: "sshd", Exe: "/usr/sbin/sshd"})

	ctx, ok := c.Get("1700000000.001:42")
	require.True(t, ok)
	assert.Equal(t, 100, ctx.PID)
	assert.Equal(t, "sshd", ctx.Comm)
}

func TestEventContextCacheMissReturnsFalse(t *testing.T) {
	c := NewEventContextCache()
	_, ok := c.Get("nonexistent")
	assert.False(t, ok)
}

func TestEventContextCacheEvictsOldestPastCapacity(t *testing.T) {
	c := NewEventContextCache()
	for i := 0; i < MaxEventContextEntries+10; i++ {
		c.Put(fmt.Sprintf("id-%d", i), EventContext{PID: i})
	}
	assert.Equal(t, MaxEventContextEntries, c.Len())

	_, ok := c.Get("id-0")
	assert.False(t, ok, "oldest entry should have been evicted")

	_, ok = c.Get(fmt.Sprintf("id-%d", MaxEventContextEntries+9))
	assert.True(t, ok, "most recent entry should still be cached")
}
