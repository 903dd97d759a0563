//go:build aix

package audit

import (
	"context"
	"time"
)

// Collect dispatches to the platform-native collector; on aix this is
// CollectAIX.
func Collect(ctx context.Context, since time.Time, salt string, lookup ProcessLookup) (AuditSummary, error) {
	return CollectAIX(ctx, since, salt, lookup)
}
