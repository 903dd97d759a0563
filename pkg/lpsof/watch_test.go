package lpsof

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchStopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf strings.Builder
	opts := WatchOptions{
		Interval: time.Hour,
		Filter:   ProcessFilter{PIDs: []int{-1}},
		Render:   RenderOptions{Mode: RenderPIDsOnly},
	}

	err := Watch(ctx, &buf, opts)
	require.NoError(t, err)
}

func TestWatchDeltaStopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := WatchOptions{
		Interval: time.Hour,
		Filter:   ProcessFilter{PIDs: []int{-1}},
	}

	var calls int
	err := WatchDelta(ctx, func(entries []DeltaEntry) { calls++ }, opts)
	require.NoError(t, err)
	assert.LessOrEqual(t, calls, 1)
}
