// Package watchdog runs the idle/size background poll loop (C6): it never
// touches the supervisor or fan-out directly, only through the State
// interface the API layer implements, keeping the three-lock ordering
// (catalog -> supervisor -> viewers) entirely inside that implementation.
package watchdog

import (
	"context"
	"log"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/snapetech/multiview/internal/broadcast"
)

// Config controls poll cadence and thresholds.
type Config struct {
	PollInterval time.Duration
	IdleTimeout  time.Duration
	SizeBound    int64 // bytes; <=0 disables size-triggered recycling
}

// DefaultConfig matches spec defaults: poll every 5s, idle out after 60s,
// recycle at 500 MB.
func DefaultConfig() Config {
	return Config{
		PollInterval: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
		SizeBound:    500 * 1024 * 1024,
	}
}

// State is the runtime surface the watchdog observes and acts on. The API
// layer's state machine implements this over its supervisor and viewer set.
type State interface {
	Mode() broadcast.Mode
	ViewerCount() int
	LastActivity() time.Time
	BytesSinceStart() int64
	Stop()
	Recycle()
}

// Run polls s every cfg.PollInterval until ctx is canceled.
func Run(ctx context.Context, cfg Config, s State) {
	if cfg.PollInterval <= 0 {
		cfg = DefaultConfig()
	}
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check(cfg, s)
		}
	}
}

// check runs one watchdog pass: idle timeout first, then size bound. Both
// are observations of a moment-in-time snapshot of s; the caller's own
// locking ensures acting on a stale read is harmless (Stop/Recycle are
// idempotent no-ops against a mode that already changed underneath).
func check(cfg Config, s State) {
	if s.Mode() != broadcast.ModeLive {
		return
	}
	if s.ViewerCount() == 0 && time.Since(s.LastActivity()) >= cfg.IdleTimeout {
		log.Printf("watchdog: idle for >= %s with no viewers, stopping", cfg.IdleTimeout)
		s.Stop()
		return
	}
	if cfg.SizeBound > 0 && s.BytesSinceStart() >= cfg.SizeBound {
		log.Printf("watchdog: child output reached %s, recycling", humanize.Bytes(uint64(s.BytesSinceStart())))
		s.Recycle()
	}
}
