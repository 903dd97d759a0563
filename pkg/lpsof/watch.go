package lpsof

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// WatchOptions configures Watch's polling loop.
type WatchOptions struct {
	Interval time.Duration
	Filter   ProcessFilter
	FDFilter FDFilter
	Render   RenderOptions
}

// Watch polls EnumerateProcesses/EnumerateFDs at opts.Interval, rendering
// each poll to w, until ctx is cancelled or the process receives SIGINT or
// SIGTERM. It returns nil on a clean shutdown.
func Watch(ctx context.Context, w io.Writer, opts WatchOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	if err := pollOnce(w, opts); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := pollOnce(w, opts); err != nil {
				return err
			}
		}
	}
}

func pollOnce(w io.Writer, opts WatchOptions) error {
	procs, err := EnumerateProcesses(opts.Filter)
	if err != nil {
		return err
	}
	for _, p := range procs {
		if err := EnumerateFDs(p, opts.FDFilter); err != nil {
			continue
		}
	}
	return Render(w, procs, opts.Render)
}

// WatchDelta polls like Watch but emits only the DeltaEntry set between
// consecutive polls, for lpsof watch --delta.
func WatchDelta(ctx context.Context, onDelta func([]DeltaEntry), opts WatchOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	prev, err := pollSnapshot(opts)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			current, err := pollSnapshot(opts)
			if err != nil {
				return err
			}
			onDelta(Delta(prev, current))
			prev = current
		}
	}
}

func pollSnapshot(opts WatchOptions) ([]snapshotLine, error) {
	procs, err := EnumerateProcesses(opts.Filter)
	if err != nil {
		return nil, err
	}
	for _, p := range procs {
		if err := EnumerateFDs(p, opts.FDFilter); err != nil {
			continue
		}
	}
	return snapshotFromProcs(procs), nil
}
