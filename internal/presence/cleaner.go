package presence

import (
	"time"

	clog "boardsync/internal/log"
	"boardsync/internal/metrics"
)

// Cleaner periodically sweeps stale presence entries. Evictions are reported
// through OnEvict so the sync layer can broadcast the departure instead of
// leaving peers with ghost cursors until their next snapshot.
type Cleaner struct {
	registry *Registry
	interval time.Duration
	timeout  time.Duration
	onEvict  func(Eviction)
	stop     chan struct{}
}

func NewCleaner(registry *Registry, interval, timeout time.Duration, onEvict func(Eviction)) *Cleaner {
	return &Cleaner{
		registry: registry,
		interval: interval,
		timeout:  timeout,
		onEvict:  onEvict,
		stop:     make(chan struct{}),
	}
}

// Run blocks until Stop; callers start it in a goroutine.
func (c *Cleaner) Run() {
	logger := clog.Component("presence-cleaner")
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			evicted := c.registry.Sweep(time.Now().Add(-c.timeout))
			for _, ev := range evicted {
				metrics.PresenceEvictionsTotal.Inc()
				logger.Info().
					Str("board_id", ev.BoardID).
					Uint("user_id", ev.Entry.UserID).
					Time("last_seen", ev.Entry.LastSeen).
					Msg("evicted stale presence")
				if c.onEvict != nil {
					c.onEvict(ev)
				}
			}
		}
	}
}

// Stop terminates the sweep loop. Safe to call more than once.
func (c *Cleaner) Stop() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
}
