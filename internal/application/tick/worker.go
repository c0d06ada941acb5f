package tick

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/cosmicverge/tickengine/internal/application/cache"
	"github.com/cosmicverge/tickengine/internal/domain/flight"
	"github.com/cosmicverge/tickengine/internal/domain/hangar"
	"github.com/cosmicverge/tickengine/internal/domain/universe"
	"github.com/cosmicverge/tickengine/internal/infrastructure/store"
)

const (
	systemUpdateLeaseTTL   = 20 * time.Millisecond
	completionLeaseTTL     = 900 * time.Millisecond
	systemsPerPop          = 3
)

// WorkerStore is the slice of the coordination store a Worker needs: cache
// refresh reads, the per-system and completion leases, the work queue, and
// the pipeline used for writeback.
type WorkerStore interface {
	cache.Store
	AcquireLease(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	SRandMemberN(ctx context.Context, key string, count int64) ([]string, error)
	SRem(ctx context.Context, key, member string) error
	Publish(ctx context.Context, channel, message string) error
	Pipeline() store.Pipeliner
}

// Worker drains the per-tick systems_to_process queue, running the flight
// kernel over each claimed system and writing results back. One Worker
// remembers the systems it personally handled last tick, trying those first
// next time to reduce lease contention across ticks.
type Worker struct {
	store  WorkerStore
	cache  *cache.Cache
	uni    *universe.Universe
	specs  hangar.Table
	logger *slog.Logger
	rng    *rand.Rand

	lastTimestamp  float64
	haveLast       bool
	preferredFirst []string
}

// NewWorker builds a Worker sharing uni/specs with the rest of the process.
func NewWorker(s WorkerStore, c *cache.Cache, uni *universe.Universe, specs hangar.Table, logger *slog.Logger) *Worker {
	return &Worker{
		store:  s,
		cache:  c,
		uni:    uni,
		specs:  specs,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run subscribes logically to systems_ready_to_process by consuming
// timestamp payloads off messages; the caller (the websocket/pubsub
// transport wiring) is responsible for turning a redis.PubSub into this
// channel of payload strings.
func (w *Worker) Run(ctx context.Context, messages <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload, ok := <-messages:
			if !ok {
				return nil
			}
			if err := w.HandleTick(ctx, payload); err != nil {
				w.logger.Warn("worker: tick handling failed", "error", err)
			}
		}
	}
}

// HandleTick runs one full worker pass for a systems_ready_to_process
// message: refresh the cache, drain as much of the queue as this worker can
// claim, then race for the completion lease.
func (w *Worker) HandleTick(ctx context.Context, payload string) error {
	timestamp, err := strconv.ParseFloat(payload, 64)
	if err != nil {
		return fmt.Errorf("worker: parse tick payload %q: %w", payload, err)
	}

	if err := w.cache.Refresh(ctx, w.store); err != nil {
		return fmt.Errorf("worker: refresh cache: %w", err)
	}

	w.uni.UpdateOrbits(timestamp)

	prev, err := w.previousTimestamp(ctx, timestamp)
	if err != nil {
		return fmt.Errorf("worker: resolve previous timestamp: %w", err)
	}
	elapsed := timestamp - prev
	if elapsed < 0 {
		elapsed = 0
	}

	processed, err := w.drainQueue(ctx, elapsed)
	if err != nil {
		return err
	}

	if err := w.cache.Refresh(ctx, w.store); err != nil {
		w.logger.Warn("worker: post-drain cache refresh failed", "error", err)
	}

	w.preferredFirst = processed
	w.lastTimestamp = timestamp
	w.haveLast = true

	won, err := w.store.AcquireLease(ctx, store.LeaseSystemUpdateCompleted, completionLeaseTTL)
	if err != nil {
		return fmt.Errorf("worker: acquire completion lease: %w", err)
	}
	if won {
		if err := w.store.Publish(ctx, store.ChannelSystemUpdateComplete, payload); err != nil {
			return fmt.Errorf("worker: publish completion: %w", err)
		}
		if err := w.store.Set(ctx, store.KeyWorldTimestamp, payload); err != nil {
			return fmt.Errorf("worker: commit world_timestamp: %w", err)
		}
	}
	return nil
}

// previousTimestamp resolves T_prev for elapsed-time computation. A worker
// trusts its own last-processed timestamp once it has one; a freshly started
// worker falls back to whatever is currently stored (by the time a tick is
// handled, the scheduler's INCR or drift correction has usually already set
// that key to the current tick, which gives zero elapsed), and finally to the
// current timestamp itself (zero elapsed, the safest default for a cold
// start).
func (w *Worker) previousTimestamp(ctx context.Context, current float64) (float64, error) {
	if w.haveLast {
		return w.lastTimestamp, nil
	}
	raw, ok, err := w.store.Get(ctx, store.KeyWorldTimestamp)
	if err != nil {
		return 0, err
	}
	if !ok {
		return current, nil
	}
	prev, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return current, nil
	}
	return prev, nil
}

// drainQueue draws random members from systems_to_process, trying last
// tick's systems first, until SRANDMEMBER returns no members. A candidate
// whose lease another worker holds is skipped and can be drawn again until
// that worker removes it. Returns the system ids this worker personally
// updated.
func (w *Worker) drainQueue(ctx context.Context, elapsed float64) ([]string, error) {
	var processed []string

	for _, id := range w.preferredFirst {
		claimed, err := w.claimAndSimulate(ctx, universe.SystemID(id), elapsed)
		if err != nil {
			return processed, err
		}
		if claimed {
			processed = append(processed, id)
		}
	}

	for {
		candidates, err := w.store.SRandMemberN(ctx, store.KeySystemsToProcess, systemsPerPop)
		if err != nil {
			return processed, fmt.Errorf("worker: SRANDMEMBER: %w", err)
		}
		if len(candidates) == 0 {
			return processed, nil
		}
		for _, id := range candidates {
			claimed, err := w.claimAndSimulate(ctx, universe.SystemID(id), elapsed)
			if err != nil {
				return processed, err
			}
			if claimed {
				processed = append(processed, id)
			}
		}
	}
}

// claimAndSimulate tries to win the per-system lease; on success it steps
// every cached pilot in that system and writes results back, then removes
// the system from the queue.
func (w *Worker) claimAndSimulate(ctx context.Context, systemID universe.SystemID, elapsed float64) (bool, error) {
	won, err := w.store.AcquireLease(ctx, store.LeaseSystemUpdate(string(systemID)), systemUpdateLeaseTTL)
	if err != nil {
		return false, fmt.Errorf("worker: acquire system lease %s: %w", systemID, err)
	}
	if !won {
		return false, nil
	}

	ships := w.cache.ShipsInSystem(systemID)
	if len(ships) > 0 {
		flight.Simulate(ships, systemID, elapsed, w.uni, w.specs, w.rng)

		pipe := w.store.Pipeline()
		if err := cache.Writeback(ctx, pipe, w.cache, ships); err != nil {
			return false, fmt.Errorf("worker: writeback %s: %w", systemID, err)
		}
	}

	if err := w.store.SRem(ctx, store.KeySystemsToProcess, string(systemID)); err != nil {
		return false, fmt.Errorf("worker: SREM %s: %w", systemID, err)
	}
	return true, nil
}
