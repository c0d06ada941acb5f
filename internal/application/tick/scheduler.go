// Package tick drives the distributed 1Hz world clock: the Scheduler seeds
// a per-tick work queue, Workers drain it under short per-system leases, and
// the connected-pilots manager keeps presence bookkeeping fresh. Every loop
// here takes a shared.Clock so a full tick can be driven synchronously in
// tests with a MockClock.
package tick

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/cosmicverge/tickengine/internal/domain/shared"
	"github.com/cosmicverge/tickengine/internal/domain/universe"
	"github.com/cosmicverge/tickengine/internal/infrastructure/store"
)

const (
	schedulerInterval = 10 * time.Millisecond
	tickPeriod        = 1 * time.Second
	queuerLeaseTTL    = 1000 * time.Millisecond
)

// SchedulerStore is the slice of the coordination store the scheduler needs.
type SchedulerStore interface {
	AcquireLease(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Time(ctx context.Context) (time.Time, error)
	Incr(ctx context.Context, key string) (int64, error)
	Set(ctx context.Context, key, value string) error
	SAdd(ctx context.Context, key string, members ...string) error
	Publish(ctx context.Context, channel, message string) error
}

// Scheduler owns the system_queuer lease and, while it holds it, advances
// the world clock once per tick period.
type Scheduler struct {
	store   SchedulerStore
	uni     *universe.Universe
	logger  *slog.Logger
}

// NewScheduler builds a Scheduler over uni's system catalog.
func NewScheduler(s SchedulerStore, uni *universe.Universe, logger *slog.Logger) *Scheduler {
	return &Scheduler{store: s, uni: uni, logger: logger}
}

// Run acquires the system_queuer lease on a tight poll, ticking the world
// clock forward whenever it wins. It returns only when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, clock shared.Clock) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := s.Tick(ctx); err != nil {
			s.logger.Warn("scheduler: tick failed", "error", err)
		}
		clock.Sleep(schedulerInterval)
	}
}

// Tick attempts one system_queuer lease acquisition. If it loses the race it
// returns immediately with no error; some other process is the scheduler
// this second.
func (s *Scheduler) Tick(ctx context.Context) error {
	won, err := s.store.AcquireLease(ctx, store.LeaseSystemQueuer, queuerLeaseTTL)
	if err != nil {
		return fmt.Errorf("tick: acquire %s: %w", store.LeaseSystemQueuer, err)
	}
	if !won {
		return nil
	}

	storeTime, err := s.store.Time(ctx)
	if err != nil {
		return fmt.Errorf("tick: read store time: %w", err)
	}
	nominal, err := s.store.Incr(ctx, store.KeyWorldTimestamp)
	if err != nil {
		return fmt.Errorf("tick: incr %s: %w", store.KeyWorldTimestamp, err)
	}

	storeSeconds := storeTime.Sub(time.Unix(0, 0).UTC()).Seconds()
	timestamp := float64(nominal)
	if math.Abs(storeSeconds-timestamp) > tickPeriod.Seconds() {
		s.logger.Warn("scheduler: clock drift detected, resyncing to store time",
			"nominal", timestamp, "store_time", storeSeconds)
		timestamp = storeSeconds
		if err := s.store.Set(ctx, store.KeyWorldTimestamp, formatTimestamp(timestamp)); err != nil {
			return fmt.Errorf("tick: resync %s: %w", store.KeyWorldTimestamp, err)
		}
	}

	systemIDs := make([]string, 0, len(s.uni.Systems()))
	for _, id := range s.uni.Systems() {
		systemIDs = append(systemIDs, string(id))
	}
	if err := s.store.SAdd(ctx, store.KeySystemsToProcess, systemIDs...); err != nil {
		return fmt.Errorf("tick: seed %s: %w", store.KeySystemsToProcess, err)
	}
	if err := s.store.Publish(ctx, store.ChannelSystemsReadyToProcess, formatTimestamp(timestamp)); err != nil {
		return fmt.Errorf("tick: publish %s: %w", store.ChannelSystemsReadyToProcess, err)
	}
	return nil
}

func formatTimestamp(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}
