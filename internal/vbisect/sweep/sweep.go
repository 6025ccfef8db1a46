// Package sweep runs periodic cleanup of expired cache entries and old
// bisect history.
package sweep

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/colonyops/vbisect/internal/core/history"
	"github.com/colonyops/vbisect/internal/core/kv"
)

// Options configures the sweeper.
type Options struct {
	Interval  time.Duration
	Retention time.Duration // finished sessions older than this are deleted; 0 keeps them
}

// Start launches a loop that periodically sweeps expired KV entries and old
// history. It runs once immediately and blocks until the context is cancelled.
func Start(ctx context.Context, kvStore kv.Sweeper, sessions history.Store, opts Options) {
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for {
		Once(ctx, kvStore, sessions, opts.Retention)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Once performs a single sweep.
func Once(ctx context.Context, kvStore kv.Sweeper, sessions history.Store, retention time.Duration) {
	if kvStore != nil {
		n, err := kvStore.SweepExpired(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("kv sweep failed")
		} else if n > 0 {
			log.Debug().Int64("removed", n).Msg("kv sweep")
		}
	}

	if sessions != nil && retention > 0 {
		n, err := sessions.DeleteOlderThan(ctx, time.Now().Add(-retention))
		if err != nil {
			log.Debug().Err(err).Msg("history sweep failed")
		} else if n > 0 {
			log.Debug().Int64("removed", n).Msg("history sweep")
		}
	}
}
