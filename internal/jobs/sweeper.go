package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"parking-reservation-backend/internal/notification"
	"parking-reservation-backend/internal/store"
)

// Sweeper cancels reservations that were booked but never started within the
// configured TTL, returning their spots to the pool.
type Sweeper struct {
	store store.Store
	ttl   time.Duration
	pool  *notification.WorkerPool
}

// NewSweeper creates a Sweeper. pool may be nil when push is disabled.
func NewSweeper(s store.Store, ttl time.Duration, pool *notification.WorkerPool) *Sweeper {
	return &Sweeper{store: s, ttl: ttl, pool: pool}
}

// Sweep runs one pass over stale reservations.
func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.ttl)

	freedLots, err := s.store.ExpireStaleReservations(ctx, cutoff)
	if err != nil {
		log.Printf("Sweeper: failed to expire stale reservations: %v", err)
		return
	}
	if len(freedLots) == 0 {
		return
	}

	log.Printf("Sweeper: cancelled %d stale reservations", len(freedLots))
	if s.pool != nil {
		for _, lotID := range freedLots {
			s.pool.Dispatch(lotID)
		}
	}
}

// Schedule registers the sweep on the given cron schedule and starts the cron
// runner. The returned cron can be stopped on shutdown.
func (s *Sweeper) Schedule(ctx context.Context, schedule string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { s.Sweep(ctx) }); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
