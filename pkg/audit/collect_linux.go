//go:build linux

package audit

import (
	"context"
	"time"
)

// Collect dispatches to the platform-native collector; on linux this is
// CollectLinux.
func Collect(ctx context.Context, since time.Time, salt string, lookup ProcessLookup) (AuditSummary, error) {
	return CollectLinux(ctx, since, salt, lookup)
}
